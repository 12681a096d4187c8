// Package surface tracks the overlay surfaces the host UI currently has
// open and derives the interference state toasts must route around.
//
// The core logic is pure classification over an observed Snapshot; the
// observation mechanism is behind the Observer interface so everything is
// testable without a real UI environment.
package surface

import (
	"github.com/ludolib/notica/internal/geometry"
)

// Kind identifies the flavor of an open overlay surface.
type Kind string

const (
	KindDialog   Kind = "dialog"
	KindModal    Kind = "modal"
	KindSheet    Kind = "sheet"
	KindDrawer   Kind = "drawer"
	KindDropdown Kind = "dropdown"
)

// Blocking reports whether the kind fully captures input while open.
// Dialogs and modals block; sheets, drawers and dropdowns only occlude.
func (k Kind) Blocking() bool {
	return k == KindDialog || k == KindModal
}

// Surface describes one overlay element the host UI reports as open.
type Surface struct {
	Kind   Kind          `json:"kind"`
	Rect   geometry.Rect `json:"rect"`
	ZIndex int           `json:"z_index"`
}

// Snapshot is the observed UI state at one instant: the open surfaces and
// the viewport they live in.
type Snapshot struct {
	Surfaces []Surface
	Viewport geometry.Viewport
}

// Observer is the environment observation contract. Implementations invoke
// the subscribed callback with a fresh Snapshot on every relevant mutation;
// the returned cancel func removes the subscription and is safe to call
// more than once.
type Observer interface {
	Subscribe(fn func(Snapshot)) (cancel func())
	Snapshot() Snapshot
}

// InterferencePriority ranks how strongly a surface interferes with toasts.
type InterferencePriority int

const (
	// InterferenceMedium surfaces occlude screen area but do not block input.
	InterferenceMedium InterferencePriority = iota
	// InterferenceHigh surfaces (dialogs, modals) block interaction entirely.
	InterferenceHigh
)

// String returns the human-readable name of the priority.
func (p InterferencePriority) String() string {
	if p == InterferenceHigh {
		return "high"
	}
	return "medium"
}

// Interference is one surface's contribution to the interference state.
// Records are transient: regenerated from the snapshot on every observation
// tick, never persisted.
type Interference struct {
	Kind     Kind
	Rect     geometry.Rect
	ZIndex   int
	Priority InterferencePriority
}

// Classify derives interference records from a snapshot. Surfaces with an
// empty rectangle are ignored; everything else maps 1:1.
func Classify(snap Snapshot) []Interference {
	if len(snap.Surfaces) == 0 {
		return nil
	}

	records := make([]Interference, 0, len(snap.Surfaces))
	for _, s := range snap.Surfaces {
		if s.Rect.Empty() {
			continue
		}

		priority := InterferenceMedium
		if s.Kind.Blocking() {
			priority = InterferenceHigh
		}

		records = append(records, Interference{
			Kind:     s.Kind,
			Rect:     s.Rect,
			ZIndex:   s.ZIndex,
			Priority: priority,
		})
	}
	return records
}

// Rects extracts the occupied rectangles from a set of interference records.
func Rects(records []Interference) []geometry.Rect {
	if len(records) == 0 {
		return nil
	}
	rects := make([]geometry.Rect, len(records))
	for i, r := range records {
		rects[i] = r.Rect
	}
	return rects
}

// HasHighPriority reports whether any record blocks interaction.
func HasHighPriority(records []Interference) bool {
	for _, r := range records {
		if r.Priority == InterferenceHigh {
			return true
		}
	}
	return false
}
