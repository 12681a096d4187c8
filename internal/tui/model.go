// Package tui provides the BubbleTea-based notification center.
package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/ludolib/notica/internal/config"
	"github.com/ludolib/notica/internal/model"
	"github.com/ludolib/notica/internal/store"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeHelp
)

// Model is the main notification center model.
type Model struct {
	cfg       *config.Config
	store     *store.Store
	profileID string

	mode Mode

	// Components
	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	help        help.Model

	// State
	notifications []model.Notification
	selected      *model.Notification
	searchQuery   string
	unreadOnly    bool
	width         int
	height        int
	ready         bool

	keys KeyMap

	statusMsg string
	statusErr bool

	refreshCh <-chan store.ChangeEvent
}

// notificationItem wraps a notification for the list component.
type notificationItem struct {
	notification model.Notification
	index        int
}

func (i notificationItem) Title() string {
	title := i.notification.Title
	if !i.notification.IsRead() {
		title = "● " + title
	}
	return title
}

func (i notificationItem) Description() string {
	return fmt.Sprintf("[%s/%s] %s - %s",
		i.notification.Type,
		i.notification.Priority.String(),
		humanize.Time(time.Unix(i.notification.CreatedAt, 0)),
		truncate(i.notification.Message, 50))
}

func (i notificationItem) FilterValue() string {
	return i.notification.Title + " " + i.notification.Message + " " + string(i.notification.Type)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// notificationDelegate is a custom list delegate that styles read
// notifications dimmed and urgent ones highlighted.
type notificationDelegate struct {
	list.DefaultDelegate
}

func newNotificationDelegate() notificationDelegate {
	d := list.NewDefaultDelegate()
	return notificationDelegate{DefaultDelegate: d}
}

// Render renders a list item. All items are rendered consistently to
// avoid visual glitches.
func (d notificationDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(notificationItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	isSelected := index == m.Index()
	isRead := ni.notification.IsRead()
	isUrgent := ni.notification.Priority.IsUrgent()

	itemWidth := m.Width() - d.DefaultDelegate.Styles.NormalTitle.GetHorizontalPadding()

	var titleStyle, descStyle lipgloss.Style
	switch {
	case isRead:
		// Read: dimmed/gray color
		if isSelected {
			titleStyle = d.DefaultDelegate.Styles.SelectedTitle.Foreground(lipgloss.Color("8"))
			descStyle = d.DefaultDelegate.Styles.SelectedDesc.Foreground(lipgloss.Color("8"))
		} else {
			titleStyle = d.DefaultDelegate.Styles.NormalTitle.Foreground(lipgloss.Color("8"))
			descStyle = d.DefaultDelegate.Styles.NormalDesc.Foreground(lipgloss.Color("8"))
		}
	case isUrgent:
		if isSelected {
			titleStyle = d.DefaultDelegate.Styles.SelectedTitle.Foreground(lipgloss.Color("9"))
			descStyle = d.DefaultDelegate.Styles.SelectedDesc
		} else {
			titleStyle = d.DefaultDelegate.Styles.NormalTitle.Foreground(lipgloss.Color("9"))
			descStyle = d.DefaultDelegate.Styles.NormalDesc
		}
	default:
		if isSelected {
			titleStyle = d.DefaultDelegate.Styles.SelectedTitle
			descStyle = d.DefaultDelegate.Styles.SelectedDesc
		} else {
			titleStyle = d.DefaultDelegate.Styles.NormalTitle
			descStyle = d.DefaultDelegate.Styles.NormalDesc
		}
	}

	title := ni.Title()
	if itemWidth > 0 && len(title) > itemWidth {
		title = title[:itemWidth-1] + "…"
	}
	desc := ni.Description()
	if itemWidth > 0 && len(desc) > itemWidth {
		desc = desc[:itemWidth-1] + "…"
	}

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

// New creates a new notification center model for one profile.
func New(cfg *config.Config, s *store.Store, profileID string) Model {
	delegate := newNotificationDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search..."
	searchInput.CharLimit = 100

	m := Model{
		cfg:         cfg,
		store:       s,
		profileID:   profileID,
		mode:        ModeList,
		list:        l,
		searchInput: searchInput,
		help:        help.New(),
		keys:        DefaultKeyMap(),
	}

	if s != nil {
		m.refreshCh = s.Subscribe()
	}
	return m
}

// Init initializes the notification center.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadNotifications,
		m.watchForChanges,
	)
}

func (m Model) loadNotifications() tea.Msg {
	return loadNotificationsMsg{}
}

type loadNotificationsMsg struct{}

// watchForChanges blocks on the next store change event.
func (m Model) watchForChanges() tea.Msg {
	if m.refreshCh == nil {
		return nil
	}
	<-m.refreshCh
	return refreshMsg{}
}

type refreshMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		m.viewport.YPosition = 2
		return m, nil

	case loadNotificationsMsg:
		m.notifications = m.fetchNotifications()
		m.list.SetItems(m.buildListItems())
		return m, nil

	case refreshMsg:
		m.notifications = m.fetchNotifications()
		m.list.SetItems(m.buildListItems())
		return m, m.watchForChanges

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Copy failed: " + msg.err.Error(), isErr: true}
			}
		}
		return m, func() tea.Msg {
			return statusMsg{text: "Copied to clipboard", isErr: false}
		}
	}

	switch m.mode {
	case ModeList:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	case ModeDetail:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	case ModeSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		if item, ok := m.list.SelectedItem().(notificationItem); ok {
			m.selected = &item.notification
			m.mode = ModeDetail
			m.viewport.SetContent(m.renderDetail(item.notification))
			m.viewport.GotoTop()
			// Opening a notification reads it
			if m.store != nil {
				m.store.MarkRead(item.notification.ID)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		if item, ok := m.list.SelectedItem().(notificationItem); ok && m.store != nil {
			m.store.MarkRead(item.notification.ID)
			m.notifications = m.fetchNotifications()
			m.list.SetItems(m.buildListItems())
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkAllRead):
		if m.store != nil {
			m.store.MarkAllRead(m.profileID)
			m.notifications = m.fetchNotifications()
			m.list.SetItems(m.buildListItems())
			return m, func() tea.Msg {
				return statusMsg{text: "All notifications marked read", isErr: false}
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.list.SelectedItem().(notificationItem); ok && m.store != nil {
			m.store.Delete(item.notification.ID)
			m.notifications = m.fetchNotifications()
			m.list.SetItems(m.buildListItems())
			return m, func() tea.Msg {
				return statusMsg{text: "Notification deleted", isErr: false}
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearAll):
		if m.store != nil {
			m.store.ClearAll(m.profileID)
			m.notifications = m.fetchNotifications()
			m.list.SetItems(m.buildListItems())
			return m, func() tea.Msg {
				return statusMsg{text: "All notifications cleared", isErr: false}
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleUnread):
		m.unreadOnly = !m.unreadOnly
		m.list.SetItems(m.buildListItems())
		if m.unreadOnly {
			return m, func() tea.Msg {
				return statusMsg{text: "Showing unread only", isErr: false}
			}
		}
		return m, func() tea.Msg {
			return statusMsg{text: "Showing all notifications", isErr: false}
		}

	case key.Matches(msg, m.keys.CopyMessage):
		if item, ok := m.list.SelectedItem().(notificationItem); ok {
			return m, m.copyToClipboard(item.notification.Message)
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyAllJSON):
		data, err := json.MarshalIndent(m.visibleNotifications(), "", "  ")
		if err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Failed to marshal JSON: " + err.Error(), isErr: true}
			}
		}
		return m, m.copyToClipboard(string(data))

	case key.Matches(msg, m.keys.CopyAllYAML):
		data, err := yaml.Marshal(m.visibleNotifications())
		if err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Failed to marshal YAML: " + err.Error(), isErr: true}
			}
		}
		return m, m.copyToClipboard(string(data))

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadNotifications
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.selected = nil
		m.notifications = m.fetchNotifications()
		m.list.SetItems(m.buildListItems())
		return m, nil

	case key.Matches(msg, m.keys.CopyMessage):
		if m.selected != nil {
			return m, m.copyToClipboard(m.selected.Message)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if m.selected != nil && m.store != nil {
			m.store.Delete(m.selected.ID)
			m.mode = ModeList
			m.selected = nil
			m.notifications = m.fetchNotifications()
			m.list.SetItems(m.buildListItems())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		if item, ok := m.list.SelectedItem().(notificationItem); ok {
			m.selected = &item.notification
			m.mode = ModeDetail
			m.searchInput.Blur()
			m.viewport.SetContent(m.renderDetail(item.notification))
			m.viewport.GotoTop()
		}
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filtering on every keystroke
	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())

	return m, cmd
}

func (m Model) fetchNotifications() []model.Notification {
	if m.store == nil {
		return nil
	}
	return m.store.List(m.profileID, store.FilterOptions{})
}

// visibleNotifications returns the notifications currently shown by the
// list, after unread and search filters.
func (m Model) visibleNotifications() []model.Notification {
	items := m.list.Items()
	notifications := make([]model.Notification, 0, len(items))
	for _, item := range items {
		if ni, ok := item.(notificationItem); ok {
			notifications = append(notifications, ni.notification)
		}
	}
	return notifications
}

func (m Model) buildListItems() []list.Item {
	notifications := m.notifications

	if m.unreadOnly {
		var unread []model.Notification
		for _, n := range notifications {
			if !n.IsRead() {
				unread = append(unread, n)
			}
		}
		notifications = unread
	}

	if m.searchQuery != "" {
		var filtered []model.Notification
		for _, n := range notifications {
			if matchesQuery(n, m.searchQuery) {
				filtered = append(filtered, n)
			}
		}
		notifications = filtered
	}

	items := make([]list.Item, len(notifications))
	for i, n := range notifications {
		items[i] = notificationItem{notification: n, index: i}
	}
	return items
}

// matchesQuery reports whether the notification matches a search query on
// title, message, type or tags (case-insensitive).
func matchesQuery(n model.Notification, query string) bool {
	if containsIgnoreCase(n.Title, query) ||
		containsIgnoreCase(n.Message, query) ||
		containsIgnoreCase(string(n.Type), query) {
		return true
	}
	for _, tag := range n.Tags {
		if containsIgnoreCase(tag, query) {
			return true
		}
	}
	return false
}

func (m Model) renderDetail(n model.Notification) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var s string
	s += headerStyle.Render(n.Title) + "\n\n"

	s += labelStyle.Render("Type: ") + string(n.Type) + "\n"
	s += labelStyle.Render("Priority: ") + n.Priority.String() + "\n"
	s += labelStyle.Render("Time: ") + humanize.Time(time.Unix(n.CreatedAt, 0)) + "\n"
	if n.IsRead() {
		s += labelStyle.Render("Read: ") + humanize.Time(time.Unix(n.ReadAt, 0)) + "\n"
	} else {
		s += labelStyle.Render("Read: ") + "no\n"
	}
	if n.Source != "" {
		s += labelStyle.Render("Source: ") + n.Source + "\n"
	}
	if n.Category != "" {
		s += labelStyle.Render("Category: ") + n.Category + "\n"
	}

	s += "\n" + labelStyle.Render("Message:") + "\n"
	s += n.Message + "\n"

	if n.ActionURL != "" {
		s += "\n" + labelStyle.Render("Action: ") + n.ActionURL + "\n"
	}
	if len(n.Tags) > 0 {
		s += labelStyle.Render("Tags: ")
		for i, tag := range n.Tags {
			if i > 0 {
				s += ", "
			}
			s += tag
		}
		s += "\n"
	}

	return s
}

func (m Model) copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text)}
	}
}

// View renders the notification center.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeDetail:
		return m.viewDetail()
	case ModeSearch:
		return m.viewSearch()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewList() string {
	s := m.list.View()

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else {
		s += "\n" + m.buildKeybindBar(m.width, "list")
	}
	return s
}

func (m Model) viewDetail() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)

	header := headerStyle.Render("Notification Detail")
	return header + "\n" + m.viewport.View() + "\n" + m.buildKeybindBar(m.width, "detail")
}

func (m Model) viewSearch() string {
	matchCount := len(m.list.Items())
	countStr := fmt.Sprintf("(%d matches)", matchCount)

	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, "search")
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"

	s += sectionStyle.Render("Navigation") + "\n"
	s += keyStyle.Render("  j/k, ↑/↓") + "     Move up/down\n"
	s += keyStyle.Render("  g/G") + "          Go to top/bottom\n"
	s += keyStyle.Render("  pgup/pgdn") + "    Page up/down\n"
	s += "\n"

	s += sectionStyle.Render("Actions") + "\n"
	s += keyStyle.Render("  enter") + "        View details (marks read)\n"
	s += keyStyle.Render("  m") + "            Mark read\n"
	s += keyStyle.Render("  M") + "            Mark all read\n"
	s += keyStyle.Render("  D") + "            Delete notification\n"
	s += keyStyle.Render("  X") + "            Clear all notifications\n"
	s += keyStyle.Render("  u") + "            Toggle unread only\n"
	s += keyStyle.Render("  c") + "            Copy message to clipboard\n"
	s += keyStyle.Render("  C") + "            Copy all visible as JSON\n"
	s += keyStyle.Render("  alt+c") + "        Copy all visible as YAML\n"
	s += keyStyle.Render("  /") + "            Search\n"
	s += keyStyle.Render("  r") + "            Refresh\n"
	s += "\n"

	s += sectionStyle.Render("General") + "\n"
	s += keyStyle.Render("  ?") + "            Toggle this help\n"
	s += keyStyle.Render("  esc") + "          Back / Cancel\n"
	s += keyStyle.Render("  q") + "            Quit\n"

	s += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		"Press ? or esc to return")

	return s
}

// containsIgnoreCase checks if s contains substr (case-insensitive, ASCII).
func containsIgnoreCase(s, substr string) bool {
	return len(s) >= len(substr) &&
		(s == substr ||
			len(substr) == 0 ||
			findIgnoreCase(s, substr))
}

func findIgnoreCase(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if equalFoldAt(s, i, substr) {
			return true
		}
	}
	return false
}

func equalFoldAt(s string, start int, substr string) bool {
	for j := 0; j < len(substr); j++ {
		c1 := s[start+j]
		c2 := substr[j]
		if c1 == c2 {
			continue
		}
		if c1 >= 'A' && c1 <= 'Z' {
			c1 += 32
		}
		if c2 >= 'A' && c2 <= 'Z' {
			c2 += 32
		}
		if c1 != c2 {
			return false
		}
	}
	return true
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int, mode string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var binds []keybind
	switch mode {
	case "list":
		binds = []keybind{
			{"q", "quit", 1},
			{"enter", "view", 2},
			{"?", "help", 3},
			{"/", "search", 4},
			{"m", "read", 5},
			{"M", "read all", 6},
			{"u", "unread", 7},
			{"D", "delete", 8},
			{"X", "clear", 9},
			{"r", "refresh", 10},
		}
	case "detail":
		binds = []keybind{
			{"q", "quit", 1},
			{"esc", "back", 2},
			{"c", "copy message", 3},
			{"D", "delete", 4},
			{"j/k", "scroll", 5},
		}
	case "search":
		binds = []keybind{
			{"enter", "view", 1},
			{"esc", "close", 2},
			{"↑/↓", "navigate", 3},
		}
	}

	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		plainItem := b.key + " " + b.desc
		testLen := len(result) + len(separator) + len(plainItem)
		if result != "" {
			testLen = len(stripANSI(result)) + len(separator) + len(plainItem)
		}

		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += item
	}

	return style.Render(result)
}

// stripANSI removes ANSI escape codes for length calculation.
func stripANSI(s string) string {
	result := make([]byte, 0, len(s))
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result = append(result, s[i])
	}
	return string(result)
}

// RunOptions configures the notification center.
type RunOptions struct {
	Config      *config.Config
	Store       *store.Store
	ProfileID   string
	HistoryPath string // Path to watch for external writes (empty = no watching)
}

// Run starts the notification center with the given options.
func Run(opts RunOptions) error {
	s := opts.Store
	if s == nil {
		s = store.NewStore(nil, 0)
	}

	var watcher *store.FileWatcher
	if opts.HistoryPath != "" {
		var err error
		watcher, err = store.NewFileWatcher(s, opts.HistoryPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create file watcher: %v\n", err)
		} else {
			if err := watcher.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to start file watcher: %v\n", err)
			}
		}
	}

	m := New(opts.Config, s, opts.ProfileID)
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err := p.Run()

	if watcher != nil {
		watcher.Stop()
	}
	return err
}
