// Package geometry implements the toast placement math.
//
// Everything here is a pure function over value types so positioning can be
// tested without any UI environment. Coordinates are in pixels with the
// origin at the top-left of the viewport.
package geometry

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersects reports whether r and other overlap when other is grown by
// buffer pixels on every side. A zero buffer tests plain overlap; edge
// contact does not count as overlap.
func (r Rect) Intersects(other Rect, buffer int) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return r.X < other.Right()+buffer &&
		r.Right() > other.X-buffer &&
		r.Y < other.Bottom()+buffer &&
		r.Bottom() > other.Y-buffer
}

// Union returns the smallest rectangle containing both r and other.
// The union with an empty rectangle is the other rectangle.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	x := min(r.X, other.X)
	y := min(r.Y, other.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  max(r.Right(), other.Right()) - x,
		Height: max(r.Bottom(), other.Bottom()) - y,
	}
}

// Viewport is the visible screen area toasts are placed in.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Corner identifies one of the four screen corners a toast can anchor to.
type Corner string

const (
	CornerTopLeft     Corner = "top-left"
	CornerTopRight    Corner = "top-right"
	CornerBottomLeft  Corner = "bottom-left"
	CornerBottomRight Corner = "bottom-right"
)

// ValidCorners returns all valid corner values.
func ValidCorners() []Corner {
	return []Corner{CornerTopRight, CornerTopLeft, CornerBottomRight, CornerBottomLeft}
}

// Valid reports whether c is a known corner.
func (c Corner) Valid() bool {
	for _, v := range ValidCorners() {
		if c == v {
			return true
		}
	}
	return false
}

// Placement is a resolved toast position.
type Placement struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Corner Corner `json:"corner"`
}

// Rect returns the rectangle a toast of the given size occupies at p.
func (p Placement) Rect(size Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: size.Width, Height: size.Height}
}

// CornerRect returns the absolute rectangle for a toast of the given size
// anchored at the corner, inset by margin pixels from both screen edges.
func CornerRect(corner Corner, size Size, vp Viewport, margin int) Rect {
	r := Rect{Width: size.Width, Height: size.Height}

	switch corner {
	case CornerTopLeft:
		r.X = margin
		r.Y = margin
	case CornerTopRight:
		r.X = vp.Width - size.Width - margin
		r.Y = margin
	case CornerBottomLeft:
		r.X = margin
		r.Y = vp.Height - size.Height - margin
	case CornerBottomRight:
		r.X = vp.Width - size.Width - margin
		r.Y = vp.Height - size.Height - margin
	default:
		// Unknown corner falls back to top-right
		r.X = vp.Width - size.Width - margin
		r.Y = margin
	}

	return r
}

// CandidateCorners returns the four corners ordered with preferred first.
// The remaining corners keep the fixed ValidCorners order so results are
// deterministic for identical inputs.
func CandidateCorners(preferred Corner) []Corner {
	if !preferred.Valid() {
		preferred = CornerTopRight
	}

	candidates := make([]Corner, 0, 4)
	candidates = append(candidates, preferred)
	for _, c := range ValidCorners() {
		if c != preferred {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// OptimalPosition computes a placement for a toast of the given size that
// does not overlap any occupied rectangle, trying the preferred corner
// first and then the remaining corners. The spacing buffer grows every
// occupied rectangle during the overlap test.
//
// When every corner overlaps something, the preferred corner is returned
// anyway: overlap is accepted rather than failing, and the result is
// deterministic for the same inputs. This is a greedy scan, not bin
// packing; the occupied set is small (visible toasts plus open overlays)
// so O(corners x occupied) is fine.
func OptimalPosition(preferred Corner, size Size, vp Viewport, occupied []Rect, margin, spacing int) Placement {
	candidates := CandidateCorners(preferred)

	for _, corner := range candidates {
		r := CornerRect(corner, size, vp, margin)

		clear := true
		for _, occ := range occupied {
			if r.Intersects(occ, spacing) {
				clear = false
				break
			}
		}
		if clear {
			return Placement{X: r.X, Y: r.Y, Corner: corner}
		}
	}

	// Nothing is free: fall back to the preferred corner.
	fallback := CornerRect(candidates[0], size, vp, margin)
	return Placement{X: fallback.X, Y: fallback.Y, Corner: candidates[0]}
}

// StackedPosition returns the placement for a toast at the given index in a
// corner-anchored stack: index 0 sits at the corner, later indexes stack
// inward (downward from top corners, upward from bottom corners) separated
// by the gap.
func StackedPosition(corner Corner, index int, size Size, vp Viewport, margin, gap int) Placement {
	r := CornerRect(corner, size, vp, margin)
	offset := index * (size.Height + gap)

	switch corner {
	case CornerBottomLeft, CornerBottomRight:
		r.Y -= offset
	default:
		r.Y += offset
	}

	return Placement{X: r.X, Y: r.Y, Corner: corner}
}
