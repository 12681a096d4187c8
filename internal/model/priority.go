package model

// Priority orders notifications for display, eviction and queueing.
// All components compare priorities through this type; there is no
// other priority ordering anywhere in the codebase.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

// PriorityNames maps priorities to human-readable names.
var PriorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityNormal: "normal",
	PriorityHigh:   "high",
	PriorityUrgent: "urgent",
}

// String returns the human-readable name of the priority.
func (p Priority) String() string {
	if name, ok := PriorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityUrgent
}

// IsUrgent reports whether p is the urgent priority. Urgent notifications
// bypass the deferral queue and the visible-count cap, and never
// auto-dismiss.
func (p Priority) IsUrgent() bool {
	return p == PriorityUrgent
}

// Compare returns -1, 0 or 1 as p sorts before, equal to or after q.
// Higher priorities sort first.
func (p Priority) Compare(q Priority) int {
	switch {
	case p > q:
		return -1
	case p < q:
		return 1
	default:
		return 0
	}
}

// ParsePriority converts a name to a Priority. Unknown names map to
// PriorityNormal, matching the conservative default everywhere else.
func ParsePriority(name string) Priority {
	for p, n := range PriorityNames {
		if n == name {
			return p
		}
	}
	return PriorityNormal
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	*p = ParsePriority(string(text))
	return nil
}
