// Package interaction turns raw pointer and key events into scene store
// mutations. It is an explicit finite-state machine: one state variable,
// one transition method per event type, and at most one gesture in flight
// at a time. Intermediate gesture frames go through the store's silent
// update path; each completed gesture commits as a single undo step.
package interaction

import (
	"github.com/drawdeck/drawdeck/internal/element"
	"github.com/drawdeck/drawdeck/internal/geometry"
	"github.com/drawdeck/drawdeck/internal/scene"
)

type State string

const (
	StateIdle     State = "idle"
	StatePanning  State = "panning"
	StateMarquee  State = "marquee"
	StateDragging State = "dragging"
	StateResizing State = "resizing"
	StateDrawing  State = "drawing"
)

// MinDraftSize is the visible threshold a drawn draft must exceed on both
// axes to be committed.
const MinDraftSize = 5.0

// PointerEvent is one pointer sample in screen coordinates with the
// modifier state at that instant.
type PointerEvent struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Shift bool    `json:"shift,omitempty"`
	Space bool    `json:"space,omitempty"`
}

// Machine drives one client's gestures against a scene store.
type Machine struct {
	store *scene.Store
	state State

	// Panning
	panAnchor element.Point // screen space

	// Marquee selection, canvas space
	marqueeStart element.Point
	marqueeEnd   element.Point

	// Element drag
	dragAnchor element.Point            // canvas space
	dragStart  map[string]element.Point // id -> position at gesture start

	// Resize
	resizeHandle   geometry.Handle
	resizeSnapshot *element.Element
	resizeAnchor   element.Point
	resizeArmed    bool // snapshot not taken yet

	// Drawing
	draft     *element.Element
	drawStart element.Point   // canvas space, snapped
	drawPath  []element.Point // freedraw samples relative to drawStart
	toolType  element.Type
}

func NewMachine(store *scene.Store) *Machine {
	return &Machine{store: store, state: StateIdle}
}

// State returns the current gesture state.
func (m *Machine) State() State { return m.state }

// Draft returns a copy of the in-progress draft element, or nil. The
// draft lives outside the store until the gesture commits it.
func (m *Machine) Draft() *element.Element {
	if m.draft == nil {
		return nil
	}
	return m.draft.Clone()
}

// Marquee returns the live rubber-band rectangle, or nil.
func (m *Machine) Marquee() *geometry.Rect {
	if m.state != StateMarquee {
		return nil
	}
	r := geometry.Normalized(m.marqueeStart.X, m.marqueeStart.Y, m.marqueeEnd.X, m.marqueeEnd.Y)
	return &r
}

func (m *Machine) canvasPoint(ev PointerEvent) element.Point {
	return geometry.ScreenToCanvas(m.store.Transform(), element.Point{X: ev.X, Y: ev.Y})
}

func (m *Machine) snappedPoint(ev PointerEvent) element.Point {
	grid := m.store.GridSettings()
	return geometry.SnapToGrid(m.canvasPoint(ev), grid.Size, grid.Enabled)
}

var toolElements = map[scene.Tool]element.Type{
	scene.ToolRectangle: element.TypeRectangle,
	scene.ToolEllipse:   element.TypeEllipse,
	scene.ToolDiamond:   element.TypeDiamond,
	scene.ToolTriangle:  element.TypeTriangle,
	scene.ToolFrame:     element.TypeFrame,
	scene.ToolLine:      element.TypeLine,
	scene.ToolArrow:     element.TypeArrow,
	scene.ToolConnector: element.TypeConnector,
	scene.ToolFreedraw:  element.TypeFreedraw,
}

// PointerDown starts a gesture for the primary button.
func (m *Machine) PointerDown(ev PointerEvent) {
	if m.state != StateIdle {
		return
	}

	tool := m.store.Tool()

	if ev.Space || tool == scene.ToolHand {
		m.state = StatePanning
		m.panAnchor = element.Point{X: ev.X, Y: ev.Y}
		return
	}

	switch {
	case tool == scene.ToolSelect:
		m.downSelect(ev)
	case tool == scene.ToolText || tool == scene.ToolSticky:
		m.placeOneClick(tool, ev)
	default:
		if t, ok := toolElements[tool]; ok {
			m.beginDraft(t, ev)
		}
	}
}

func (m *Machine) downSelect(ev PointerEvent) {
	pt := m.canvasPoint(ev)
	hit := geometry.HitTest(m.store.Ordered(), pt)
	if hit == nil {
		m.store.ClearSelection()
		m.state = StateMarquee
		m.marqueeStart = pt
		m.marqueeEnd = pt
		return
	}

	// Move-set: the clicked element alone, the whole selection if the hit
	// is already part of it, or selection plus hit when shift-extending.
	switch {
	case ev.Shift:
		m.store.AddToSelection(hit.ID)
	case m.store.IsSelected(hit.ID):
		// keep selection
	default:
		m.store.SetSelection([]string{hit.ID})
	}

	m.dragAnchor = pt
	m.dragStart = make(map[string]element.Point)
	for _, id := range m.store.SelectedIDs() {
		e := m.store.Element(id)
		if e == nil || e.Locked {
			continue
		}
		m.dragStart[id] = element.Point{X: e.X, Y: e.Y}
	}
	m.state = StateDragging
}

func (m *Machine) placeOneClick(tool scene.Tool, ev PointerEvent) {
	pt := m.snappedPoint(ev)
	t := element.TypeText
	if tool == scene.ToolSticky {
		t = element.TypeSticky
	}
	e := element.New(t, pt.X, pt.Y, m.store.Defaults())
	m.store.AddElement(e)
	m.store.SetSelection([]string{e.ID})
	// One-click placements stay in Idle; no drag-to-size.
}

func (m *Machine) beginDraft(t element.Type, ev PointerEvent) {
	pt := m.snappedPoint(ev)
	m.draft = element.New(t, pt.X, pt.Y, m.store.Defaults())
	m.drawStart = pt
	if t == element.TypeFreedraw {
		m.drawPath = []element.Point{{}}
	}
	m.toolType = t
	m.state = StateDrawing
}

// StartResize arms a resize gesture on the single selected element. The
// element snapshot and anchor are taken lazily on the first move sample,
// because the handle press is signaled before any delta is known.
func (m *Machine) StartResize(handle geometry.Handle) {
	if m.state != StateIdle {
		return
	}
	ids := m.store.SelectedIDs()
	if len(ids) != 1 {
		return
	}
	if e := m.store.Element(ids[0]); e == nil || e.Locked {
		return
	}
	m.resizeHandle = handle
	m.resizeSnapshot = nil
	m.resizeArmed = true
	m.state = StateResizing
}

// PointerMove advances the active gesture. Only the current state's
// handling applies.
func (m *Machine) PointerMove(ev PointerEvent) {
	switch m.state {
	case StatePanning:
		t := m.store.Transform()
		t.X += ev.X - m.panAnchor.X
		t.Y += ev.Y - m.panAnchor.Y
		m.store.SetTransform(t)
		m.panAnchor = element.Point{X: ev.X, Y: ev.Y}

	case StateMarquee:
		m.marqueeEnd = m.canvasPoint(ev)

	case StateDragging:
		m.moveDrag(ev)

	case StateResizing:
		m.moveResize(ev)

	case StateDrawing:
		m.moveDraft(ev)

	case StateIdle:
		if m.store.Tool() == scene.ToolSelect {
			hit := geometry.HitTest(m.store.Ordered(), m.canvasPoint(ev))
			if hit != nil {
				m.store.SetHovered(hit.ID)
			} else {
				m.store.SetHovered("")
			}
		}
	}
}

func (m *Machine) moveDrag(ev PointerEvent) {
	pt := m.canvasPoint(ev)
	dx := pt.X - m.dragAnchor.X
	dy := pt.Y - m.dragAnchor.Y
	grid := m.store.GridSettings()
	var moved []string
	for id, start := range m.dragStart {
		target := geometry.SnapToGrid(element.Point{X: start.X + dx, Y: start.Y + dy}, grid.Size, grid.Enabled)
		m.store.UpdateElementSilent(id, func(e *element.Element) {
			e.X = target.X
			e.Y = target.Y
		})
		moved = append(moved, id)
	}
	m.refreshBindings(moved)
}

func (m *Machine) moveResize(ev PointerEvent) {
	pt := m.canvasPoint(ev)
	if m.resizeArmed {
		ids := m.store.SelectedIDs()
		if len(ids) != 1 {
			m.state = StateIdle
			return
		}
		m.resizeSnapshot = m.store.Snapshot(ids[0])
		if m.resizeSnapshot == nil {
			m.state = StateIdle
			return
		}
		m.resizeAnchor = pt
		m.resizeArmed = false
		return
	}

	dx := pt.X - m.resizeAnchor.X
	dy := pt.Y - m.resizeAnchor.Y

	if m.resizeHandle == geometry.HandleRotation {
		angle := geometry.RotationAngle(m.resizeSnapshot, pt)
		m.store.UpdateElementSilent(m.resizeSnapshot.ID, func(e *element.Element) {
			e.Rotation = angle
		})
		return
	}

	box := geometry.ApplyResize(m.resizeSnapshot, m.resizeHandle, dx, dy)
	box = m.snapBox(box)
	m.store.UpdateElementSilent(m.resizeSnapshot.ID, func(e *element.Element) {
		e.X = box.X
		e.Y = box.Y
		e.Width = box.Width
		e.Height = box.Height
	})
	m.refreshBindings([]string{m.resizeSnapshot.ID})
}

// snapBox re-applies grid snapping to a resized box, keeping the minimum
// size intact.
func (m *Machine) snapBox(box geometry.Rect) geometry.Rect {
	grid := m.store.GridSettings()
	if !grid.Enabled {
		return box
	}
	origin := geometry.SnapToGrid(element.Point{X: box.X, Y: box.Y}, grid.Size, grid.Enabled)
	corner := geometry.SnapToGrid(element.Point{X: box.X + box.Width, Y: box.Y + box.Height}, grid.Size, grid.Enabled)
	snapped := geometry.Rect{
		X:      origin.X,
		Y:      origin.Y,
		Width:  corner.X - origin.X,
		Height: corner.Y - origin.Y,
	}
	if snapped.Width < geometry.MinElementSize || snapped.Height < geometry.MinElementSize {
		return box
	}
	return snapped
}

func (m *Machine) moveDraft(ev PointerEvent) {
	pt := m.snappedPoint(ev)
	d := m.draft
	switch {
	case d.Type == element.TypeFreedraw:
		raw := m.canvasPoint(ev) // freedraw follows the pointer, not the grid
		m.drawPath = append(m.drawPath, element.Point{X: raw.X - m.drawStart.X, Y: raw.Y - m.drawStart.Y})
		var minX, minY, maxX, maxY float64
		for _, p := range m.drawPath {
			minX = min(minX, p.X)
			minY = min(minY, p.Y)
			maxX = max(maxX, p.X)
			maxY = max(maxY, p.Y)
		}
		// The origin follows the path minimum so the box always covers the
		// stroke, wherever the path wanders.
		d.X = m.drawStart.X + minX
		d.Y = m.drawStart.Y + minY
		d.Points = make([]element.Point, len(m.drawPath))
		for i, p := range m.drawPath {
			d.Points[i] = element.Point{X: p.X - minX, Y: p.Y - minY}
		}
		d.Width = maxX - minX
		d.Height = maxY - minY

	case d.Type.IsLinear():
		// Two-point path. The origin tracks the lesser endpoint on each
		// axis so the box covers the stroke in every drag direction; point
		// order stays start then end, preserving the arrowhead direction.
		dx := pt.X - m.drawStart.X
		dy := pt.Y - m.drawStart.Y
		d.X = m.drawStart.X + min(dx, 0)
		d.Y = m.drawStart.Y + min(dy, 0)
		d.Points[0] = element.Point{X: -min(dx, 0), Y: -min(dy, 0)}
		d.Points[len(d.Points)-1] = element.Point{X: dx - min(dx, 0), Y: dy - min(dy, 0)}
		d.Width = abs(dx)
		d.Height = abs(dy)

	default:
		box := geometry.Normalized(m.drawStart.X, m.drawStart.Y, pt.X, pt.Y)
		d.X = box.X
		d.Y = box.Y
		d.Width = box.Width
		d.Height = box.Height
	}
}

// PointerUp completes the active gesture and commits it as at most one
// undo step.
func (m *Machine) PointerUp(ev PointerEvent) {
	switch m.state {
	case StatePanning:
		m.state = StateIdle

	case StateMarquee:
		m.marqueeEnd = m.canvasPoint(ev)
		hits := geometry.BoxSelect(m.store.Ordered(), m.marqueeStart, m.marqueeEnd)
		ids := make([]string, 0, len(hits))
		for _, e := range hits {
			ids = append(ids, e.ID)
		}
		m.store.SetSelection(ids)
		m.state = StateIdle

	case StateDragging:
		m.commitDrag()
		m.state = StateIdle

	case StateResizing:
		m.commitResize()
		m.state = StateIdle

	case StateDrawing:
		m.commitDraft()
		m.state = StateIdle
	}
}

// PointerLeave is treated identically to PointerUp: releasing outside the
// canvas ends the gesture, there is no separate cancel.
func (m *Machine) PointerLeave(ev PointerEvent) {
	m.PointerUp(ev)
}

func (m *Machine) commitDrag() {
	for id, start := range m.dragStart {
		e := m.store.Element(id)
		if e == nil {
			continue
		}
		if e.X == start.X && e.Y == start.Y {
			// A click without movement must not produce an undo step.
			continue
		}
		x, y := e.X, e.Y
		m.store.UpdateElement(id, func(e *element.Element) {
			e.X = x
			e.Y = y
		})
	}
	m.dragStart = nil
}

func (m *Machine) commitResize() {
	snap := m.resizeSnapshot
	m.resizeSnapshot = nil
	m.resizeArmed = false
	if snap == nil {
		return
	}
	e := m.store.Element(snap.ID)
	if e == nil {
		return
	}
	if e.X == snap.X && e.Y == snap.Y && e.Width == snap.Width &&
		e.Height == snap.Height && e.Rotation == snap.Rotation {
		return
	}
	x, y, w, h, rot := e.X, e.Y, e.Width, e.Height, e.Rotation
	m.store.UpdateElement(snap.ID, func(e *element.Element) {
		e.X = x
		e.Y = y
		e.Width = w
		e.Height = h
		e.Rotation = rot
	})
}

func (m *Machine) commitDraft() {
	d := m.draft
	m.draft = nil
	m.drawPath = nil
	if d == nil {
		return
	}
	if d.Width <= MinDraftSize || d.Height <= MinDraftSize {
		return
	}
	m.store.AddElement(d)
	m.store.SetTool(scene.ToolSelect)
	m.store.SetSelection([]string{d.ID})
}

// KeyDown handles the keys the state machine owns. Escape clears the
// selection and forces the select tool; it does not rewind an in-progress
// drag, which only ends on pointer-up or leave.
func (m *Machine) KeyDown(key string) {
	if key != "Escape" {
		return
	}
	m.store.ClearSelection()
	m.store.SetTool(scene.ToolSelect)
}

// refreshBindings recomputes bound line endpoints after their targets
// moved or resized. Called on every drag/resize tick.
func (m *Machine) refreshBindings(movedIDs []string) {
	if len(movedIDs) == 0 {
		return
	}
	moved := make(map[string]bool, len(movedIDs))
	for _, id := range movedIDs {
		moved[id] = true
	}
	for _, e := range m.store.Ordered() {
		if len(e.Points) < 2 {
			continue
		}
		startHit := e.StartBind != nil && moved[e.StartBind.ElementID]
		endHit := e.EndBind != nil && moved[e.EndBind.ElementID]
		if !startHit && !endHit {
			continue
		}
		m.rebindEndpoints(e)
	}
}

func (m *Machine) rebindEndpoints(line *element.Element) {
	first := element.Point{X: line.X + line.Points[0].X, Y: line.Y + line.Points[0].Y}
	last := element.Point{
		X: line.X + line.Points[len(line.Points)-1].X,
		Y: line.Y + line.Points[len(line.Points)-1].Y,
	}

	if b := line.StartBind; b != nil {
		if target := m.store.Element(b.ElementID); target != nil {
			first = geometry.BindingAnchor(geometry.ElementRect(target), b.Focus, b.Gap, last)
		}
	}
	if b := line.EndBind; b != nil {
		if target := m.store.Element(b.ElementID); target != nil {
			last = geometry.BindingAnchor(geometry.ElementRect(target), b.Focus, b.Gap, first)
		}
	}

	// Same origin convention as drawing: the box corner is the lesser
	// endpoint per axis.
	originX := min(first.X, last.X)
	originY := min(first.Y, last.Y)
	m.store.UpdateElementSilent(line.ID, func(e *element.Element) {
		e.X = originX
		e.Y = originY
		e.Points[0] = element.Point{X: first.X - originX, Y: first.Y - originY}
		e.Points[len(e.Points)-1] = element.Point{X: last.X - originX, Y: last.Y - originY}
		e.Width = abs(last.X - first.X)
		e.Height = abs(last.Y - first.Y)
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
