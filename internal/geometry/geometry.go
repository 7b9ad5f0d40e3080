// Package geometry holds the pure coordinate and layout math for the
// canvas: viewport mapping, grid snapping, bounds, hit-testing, resize
// handles, alignment and distribution. Nothing in here owns state.
//
// Hit-testing and resize math deliberately ignore element rotation: a
// rotated element keeps the clickable area and handles of its unrotated
// box. Rotation is visual-only at this layer.
package geometry

import (
	"math"
	"sort"

	"github.com/drawdeck/drawdeck/internal/element"
)

// MinElementSize is the smallest width/height a resize handle can produce.
const MinElementSize = 20.0

// SnapToGrid rounds each axis independently to the nearest multiple of
// gridSize. Identity when disabled or the grid size is degenerate.
func SnapToGrid(p element.Point, gridSize float64, enabled bool) element.Point {
	if !enabled || gridSize <= 0 {
		return p
	}
	return element.Point{
		X: math.Round(p.X/gridSize) * gridSize,
		Y: math.Round(p.Y/gridSize) * gridSize,
	}
}

// ElementRect returns the element's axis-aligned box, ignoring rotation.
func ElementRect(e *element.Element) Rect {
	return Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// BoundsOf returns the axis-aligned union of the elements' boxes, or nil
// for empty input.
func BoundsOf(elements []*element.Element) *Rect {
	if len(elements) == 0 {
		return nil
	}
	bounds := ElementRect(elements[0])
	for _, e := range elements[1:] {
		bounds = bounds.Union(ElementRect(e))
	}
	return &bounds
}

// HitTest scans draw order from topmost (last) to bottommost (first) and
// returns the first element whose box contains the point, or nil.
func HitTest(ordered []*element.Element, p element.Point) *element.Element {
	for i := len(ordered) - 1; i >= 0; i-- {
		if ElementRect(ordered[i]).Contains(p.X, p.Y) {
			return ordered[i]
		}
	}
	return nil
}

// BoxSelect returns the elements whose box lies fully inside the rectangle
// spanned by the two corners. Intersecting-but-overhanging elements are
// excluded.
func BoxSelect(elements []*element.Element, corner1, corner2 element.Point) []*element.Element {
	marquee := Normalized(corner1.X, corner1.Y, corner2.X, corner2.Y)
	var hits []*element.Element
	for _, e := range elements {
		if marquee.ContainsRect(ElementRect(e)) {
			hits = append(hits, e)
		}
	}
	return hits
}

// Handle names a resize grip on the selection box.
type Handle string

const (
	HandleNW       Handle = "nw"
	HandleN        Handle = "n"
	HandleNE       Handle = "ne"
	HandleW        Handle = "w"
	HandleE        Handle = "e"
	HandleSW       Handle = "sw"
	HandleS        Handle = "s"
	HandleSE       Handle = "se"
	HandleRotation Handle = "rotation"
)

// ApplyResize returns the element's box after dragging the given handle by
// (dx, dy) from the gesture start. West/north handles move the origin,
// east/south handles grow the size. Width and height clamp at
// MinElementSize; when a west/north edge clamps, the origin is pushed back
// so the opposite edge stays fixed. The rotation handle is not box math
// and yields the box unchanged.
func ApplyResize(e *element.Element, handle Handle, dx, dy float64) Rect {
	box := ElementRect(e)
	if handle == HandleRotation {
		return box
	}

	west := handle == HandleW || handle == HandleNW || handle == HandleSW
	east := handle == HandleE || handle == HandleNE || handle == HandleSE
	north := handle == HandleN || handle == HandleNW || handle == HandleNE
	south := handle == HandleS || handle == HandleSW || handle == HandleSE

	if west {
		box.X += dx
		box.Width -= dx
	}
	if east {
		box.Width += dx
	}
	if north {
		box.Y += dy
		box.Height -= dy
	}
	if south {
		box.Height += dy
	}

	if box.Width < MinElementSize {
		if west {
			// Keep the east edge fixed while the west edge clamps.
			box.X = e.X + e.Width - MinElementSize
		}
		box.Width = MinElementSize
	}
	if box.Height < MinElementSize {
		if north {
			box.Y = e.Y + e.Height - MinElementSize
		}
		box.Height = MinElementSize
	}
	return box
}

// RotationAngle returns the rotation implied by dragging the rotation
// handle to the given canvas point, measured in degrees from the element
// center with 0 pointing up.
func RotationAngle(e *element.Element, p element.Point) float64 {
	cx := e.X + e.Width/2
	cy := e.Y + e.Height/2
	return math.Atan2(p.X-cx, cy-p.Y) * 180 / math.Pi
}

// AlignMode selects the edge or axis elements align to.
type AlignMode string

const (
	AlignLeft   AlignMode = "left"
	AlignRight  AlignMode = "right"
	AlignTop    AlignMode = "top"
	AlignBottom AlignMode = "bottom"
	AlignCenter AlignMode = "center" // horizontal centers
	AlignMiddle AlignMode = "middle" // vertical centers
)

// AlignTo computes new positions aligning each element to the given bounds.
// Only the affected axis appears in the result, keyed by element id.
// Fewer than two elements is a policy no-op.
func AlignTo(elements []*element.Element, bounds Rect, mode AlignMode) map[string]element.Point {
	if len(elements) < 2 {
		return nil
	}
	moves := make(map[string]element.Point, len(elements))
	for _, e := range elements {
		p := element.Point{X: e.X, Y: e.Y}
		switch mode {
		case AlignLeft:
			p.X = bounds.X
		case AlignRight:
			p.X = bounds.X + bounds.Width - e.Width
		case AlignTop:
			p.Y = bounds.Y
		case AlignBottom:
			p.Y = bounds.Y + bounds.Height - e.Height
		case AlignCenter:
			p.X = bounds.X + (bounds.Width-e.Width)/2
		case AlignMiddle:
			p.Y = bounds.Y + (bounds.Height-e.Height)/2
		}
		moves[e.ID] = p
	}
	return moves
}

// Axis selects the direction of a distribution.
type Axis string

const (
	AxisHorizontal Axis = "horizontal"
	AxisVertical   Axis = "vertical"
)

// Distribute spaces elements evenly along the axis: the outermost elements
// stay put and the gap between neighbours becomes uniform. Only the
// affected axis appears in the result, keyed by element id. Fewer than
// three elements is a policy no-op.
func Distribute(elements []*element.Element, axis Axis) map[string]element.Point {
	if len(elements) < 3 {
		return nil
	}

	sorted := make([]*element.Element, len(elements))
	copy(sorted, elements)
	if axis == AxisHorizontal {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
	} else {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })
	}

	first := sorted[0]
	last := sorted[len(sorted)-1]

	var span, total float64
	if axis == AxisHorizontal {
		span = last.X + last.Width - first.X
	} else {
		span = last.Y + last.Height - first.Y
	}
	for _, e := range sorted {
		if axis == AxisHorizontal {
			total += e.Width
		} else {
			total += e.Height
		}
	}
	gap := (span - total) / float64(len(sorted)-1)

	moves := make(map[string]element.Point, len(sorted))
	if axis == AxisHorizontal {
		cursor := first.X
		for _, e := range sorted {
			moves[e.ID] = element.Point{X: cursor, Y: e.Y}
			cursor += e.Width + gap
		}
	} else {
		cursor := first.Y
		for _, e := range sorted {
			moves[e.ID] = element.Point{X: e.X, Y: cursor}
			cursor += e.Height + gap
		}
	}
	return moves
}
