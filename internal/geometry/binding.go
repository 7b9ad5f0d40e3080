package geometry

import "github.com/drawdeck/drawdeck/internal/element"

// BindingAnchor resolves the canvas point a bound line endpoint should sit
// at on the target's box. The edge facing the line's other endpoint is
// chosen, focus slides the anchor along that edge (-1 .. 1 between the
// corners) and gap pushes it outward off the outline.
func BindingAnchor(target Rect, focus, gap float64, toward element.Point) element.Point {
	cx, cy := target.Center()
	dx := toward.X - cx
	dy := toward.Y - cy

	// Pick the edge by the dominant direction toward the far endpoint.
	horizontal := abs(dx)*target.Height >= abs(dy)*target.Width

	var p element.Point
	if horizontal {
		if dx >= 0 {
			p.X = target.X + target.Width + gap
		} else {
			p.X = target.X - gap
		}
		p.Y = cy + focus*target.Height/2
	} else {
		if dy >= 0 {
			p.Y = target.Y + target.Height + gap
		} else {
			p.Y = target.Y - gap
		}
		p.X = cx + focus*target.Width/2
	}
	return p
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
