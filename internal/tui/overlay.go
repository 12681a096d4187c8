package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ludolib/notica/internal/geometry"
	"github.com/ludolib/notica/internal/model"
)

var (
	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	toastTitleStyle = lipgloss.NewStyle().Bold(true)
	toastMetaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RenderToast renders one toast as a bordered card for terminal display.
// Urgent and high priorities get a colored border.
func RenderToast(n *model.Notification, placement geometry.Placement, width int) string {
	style := toastStyle
	switch n.Priority {
	case model.PriorityUrgent:
		style = style.BorderForeground(lipgloss.Color("9"))
	case model.PriorityHigh:
		style = style.BorderForeground(lipgloss.Color("11"))
	}

	meta := toastMetaStyle.Render(fmt.Sprintf("%s/%s at %s",
		n.Type, n.Priority.String(), placement.Corner))

	content := toastTitleStyle.Render(truncate(n.Title, width)) + "\n" +
		truncate(n.Message, width) + "\n" + meta
	return style.Width(width).Render(content)
}
