package geometry

import "github.com/drawdeck/drawdeck/internal/element"

const (
	MinScale = 0.1
	MaxScale = 10.0

	// ZoomToFitPadding is the canvas-space margin added around the content
	// bounds before fitting.
	ZoomToFitPadding = 50.0
)

// Transform is the affine viewport mapping: canvas coordinates are
// translated by (X, Y) then scaled to reach screen coordinates.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// IdentityTransform returns the untranslated, unscaled viewport.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// ScreenToCanvas maps a screen point into canvas space. It is the exact
// inverse of CanvasToScreen.
func ScreenToCanvas(t Transform, p element.Point) element.Point {
	return element.Point{
		X: (p.X - t.X) / t.Scale,
		Y: (p.Y - t.Y) / t.Scale,
	}
}

// CanvasToScreen maps a canvas point into screen space, the paint-time
// transform: scale first, then translate.
func CanvasToScreen(t Transform, p element.Point) element.Point {
	return element.Point{
		X: p.X*t.Scale + t.X,
		Y: p.Y*t.Scale + t.Y,
	}
}

// ZoomAroundPoint applies one wheel step anchored at the given screen
// point: the canvas point under the cursor stays under the cursor. A
// positive delta zooms out, a negative delta zooms in.
func ZoomAroundPoint(t Transform, cursor element.Point, delta float64) Transform {
	factor := 1.1
	if delta > 0 {
		factor = 0.9
	}
	newScale := clamp(t.Scale*factor, MinScale, MaxScale)
	ratio := newScale / t.Scale
	return Transform{
		X:     cursor.X - (cursor.X-t.X)*ratio,
		Y:     cursor.Y - (cursor.Y-t.Y)*ratio,
		Scale: newScale,
	}
}

// ZoomToFit returns a transform that centers the given content bounds in a
// viewport of the given pixel size, never zooming in past 1:1. The current
// transform is returned unchanged for empty bounds or a degenerate
// viewport.
func ZoomToFit(t Transform, bounds *Rect, viewportWidth, viewportHeight float64) Transform {
	if bounds == nil || viewportWidth <= 0 || viewportHeight <= 0 {
		return t
	}
	padded := Rect{
		X:      bounds.X - ZoomToFitPadding,
		Y:      bounds.Y - ZoomToFitPadding,
		Width:  bounds.Width + 2*ZoomToFitPadding,
		Height: bounds.Height + 2*ZoomToFitPadding,
	}
	if padded.Width <= 0 || padded.Height <= 0 {
		return t
	}
	scale := min(viewportWidth/padded.Width, viewportHeight/padded.Height)
	scale = clamp(min(scale, 1), MinScale, MaxScale)

	cx, cy := padded.Center()
	return Transform{
		X:     viewportWidth/2 - cx*scale,
		Y:     viewportHeight/2 - cy*scale,
		Scale: scale,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
