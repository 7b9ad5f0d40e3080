package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdeck/drawdeck/internal/element"
	"github.com/drawdeck/drawdeck/internal/geometry"
	"github.com/drawdeck/drawdeck/internal/scene"
)

func newRect(s *scene.Store, x, y, w, h float64) *element.Element {
	e := element.New(element.TypeRectangle, x, y, element.DefaultStyle())
	e.Width = w
	e.Height = h
	s.AddElement(e)
	return e
}

func pt(x, y float64) PointerEvent {
	return PointerEvent{X: x, Y: y}
}

func TestDrawGestureCommitsOneElement(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	s.SetTool(scene.ToolRectangle)

	m.PointerDown(pt(10, 10))
	assert.Equal(t, StateDrawing, m.State())
	require.NotNil(t, m.Draft())

	m.PointerMove(pt(110, 90))
	draft := m.Draft()
	assert.Equal(t, 100.0, draft.Width)
	assert.Equal(t, 80.0, draft.Height)

	m.PointerUp(pt(110, 90))
	assert.Equal(t, StateIdle, m.State())
	assert.Nil(t, m.Draft())

	require.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.HistoryLen())
	assert.Equal(t, scene.ToolSelect, s.Tool())
	created := s.Ordered()[0]
	assert.Equal(t, []string{created.ID}, s.SelectedIDs())
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 100, Height: 80}, geometry.ElementRect(created))
}

func TestDrawReversedDragNormalizes(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	s.SetTool(scene.ToolEllipse)

	m.PointerDown(pt(100, 100))
	m.PointerMove(pt(20, 40))
	m.PointerUp(pt(20, 40))

	require.Equal(t, 1, s.Len())
	e := s.Ordered()[0]
	assert.Equal(t, geometry.Rect{X: 20, Y: 40, Width: 80, Height: 60}, geometry.ElementRect(e))
}

func TestTinyDraftDiscarded(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	s.SetTool(scene.ToolRectangle)

	m.PointerDown(pt(10, 10))
	m.PointerMove(pt(14, 13))
	m.PointerUp(pt(14, 13))

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.HistoryLen())
	// The tool is not switched when nothing was created.
	assert.Equal(t, scene.ToolRectangle, s.Tool())
}

func TestDrawSnapsToGrid(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	s.SetGrid(scene.Grid{Size: 20, Enabled: true})
	s.SetTool(scene.ToolRectangle)

	m.PointerDown(pt(7, 7))
	m.PointerMove(pt(94, 86))
	m.PointerUp(pt(94, 86))

	require.Equal(t, 1, s.Len())
	e := s.Ordered()[0]
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 100, Height: 80}, geometry.ElementRect(e))
}

func TestDrawArrowKeepsDirection(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	s.SetTool(scene.ToolArrow)

	m.PointerDown(pt(100, 100))
	m.PointerMove(pt(40, 30))
	m.PointerUp(pt(40, 30))

	require.Equal(t, 1, s.Len())
	e := s.Ordered()[0]
	require.Len(t, e.Points, 2)
	// Start stays first, end stays last: end minus start is the drag
	// vector, so the arrowhead points where the pointer went.
	assert.Equal(t, element.Point{X: 60, Y: 70}, e.Points[0])
	assert.Equal(t, element.Point{X: 0, Y: 0}, e.Points[1])
	assert.Equal(t, 60.0, e.Width)
	assert.Equal(t, 70.0, e.Height)
}

func TestLeftwardArrowBoxCoversStroke(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	s.SetTool(scene.ToolArrow)

	m.PointerDown(pt(100, 100))
	m.PointerMove(pt(40, 30))
	m.PointerUp(pt(40, 30))

	require.Equal(t, 1, s.Len())
	e := s.Ordered()[0]
	assert.Equal(t, geometry.Rect{X: 40, Y: 30, Width: 60, Height: 70}, geometry.ElementRect(e))

	// The box sits over the visible stroke, so it hit-tests and
	// marquee-selects like any other element.
	hit := geometry.HitTest(s.Ordered(), element.Point{X: 70, Y: 65})
	require.NotNil(t, hit)
	assert.Equal(t, e.ID, hit.ID)

	hits := geometry.BoxSelect(s.Ordered(), element.Point{X: 30, Y: 20}, element.Point{X: 110, Y: 110})
	require.Len(t, hits, 1)
	assert.Equal(t, e.ID, hits[0].ID)
}

func TestFreedrawOriginFollowsPathMinimum(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	s.SetTool(scene.ToolFreedraw)

	m.PointerDown(pt(100, 100))
	m.PointerMove(pt(60, 80))
	m.PointerMove(pt(120, 140))
	m.PointerUp(pt(120, 140))

	require.Equal(t, 1, s.Len())
	e := s.Ordered()[0]
	assert.Equal(t, geometry.Rect{X: 60, Y: 80, Width: 60, Height: 60}, geometry.ElementRect(e))

	// Points are relative to the normalized origin: none are negative.
	require.Len(t, e.Points, 3)
	assert.Equal(t, element.Point{X: 40, Y: 20}, e.Points[0])
	assert.Equal(t, element.Point{X: 0, Y: 0}, e.Points[1])
	assert.Equal(t, element.Point{X: 60, Y: 60}, e.Points[2])
}

func TestOneClickStickyPlacement(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	s.SetTool(scene.ToolSticky)

	m.PointerDown(pt(40, 60))
	assert.Equal(t, StateIdle, m.State())

	require.Equal(t, 1, s.Len())
	e := s.Ordered()[0]
	assert.Equal(t, element.TypeSticky, e.Type)
	assert.Equal(t, 40.0, e.X)
	assert.Equal(t, []string{e.ID}, s.SelectedIDs())
}

func TestDragIsOneUndoStep(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	e := newRect(s, 0, 0, 100, 100)
	base := s.HistoryLen()

	m.PointerDown(pt(50, 50))
	assert.Equal(t, StateDragging, m.State())
	assert.Equal(t, []string{e.ID}, s.SelectedIDs())

	// Intermediate frames are silent.
	m.PointerMove(pt(80, 70))
	m.PointerMove(pt(120, 90))
	assert.Equal(t, base, s.HistoryLen())

	m.PointerUp(pt(120, 90))
	assert.Equal(t, base+1, s.HistoryLen())
	got := s.Snapshot(e.ID)
	assert.Equal(t, 70.0, got.X)
	assert.Equal(t, 40.0, got.Y)

	require.True(t, s.Undo())
	got = s.Snapshot(e.ID)
	assert.Equal(t, 0.0, got.X)
	assert.Equal(t, 0.0, got.Y)
}

func TestClickWithoutMoveRecordsNothing(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	newRect(s, 0, 0, 100, 100)
	base := s.HistoryLen()

	m.PointerDown(pt(50, 50))
	m.PointerUp(pt(50, 50))
	assert.Equal(t, base, s.HistoryLen())
}

func TestDragRespectsViewportTransform(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	e := newRect(s, 0, 0, 100, 100)
	s.SetTransform(geometry.Transform{X: 100, Y: 0, Scale: 2})

	// Screen (200,100) is canvas (50,50): inside the element.
	m.PointerDown(pt(200, 100))
	require.Equal(t, StateDragging, m.State())

	// A 40px screen move is a 20-unit canvas move at scale 2.
	m.PointerMove(pt(240, 100))
	m.PointerUp(pt(240, 100))
	assert.Equal(t, 20.0, s.Snapshot(e.ID).X)
}

func TestDragSkipsLockedElement(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	e := element.New(element.TypeRectangle, 0, 0, element.DefaultStyle())
	e.Width = 100
	e.Height = 100
	e.Locked = true
	s.AddElement(e)
	base := s.HistoryLen()

	m.PointerDown(pt(50, 50))
	m.PointerMove(pt(150, 150))
	m.PointerUp(pt(150, 150))

	assert.Equal(t, 0.0, s.Snapshot(e.ID).X)
	assert.Equal(t, base, s.HistoryLen())
}

func TestShiftClickExtendsSelection(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	a := newRect(s, 0, 0, 50, 50)
	b := newRect(s, 100, 0, 50, 50)
	s.SetSelection([]string{a.ID})

	m.PointerDown(PointerEvent{X: 120, Y: 20, Shift: true})
	assert.ElementsMatch(t, []string{a.ID, b.ID}, s.SelectedIDs())
	m.PointerUp(pt(120, 20))
}

func TestClickOnSelectedKeepsSelection(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	a := newRect(s, 0, 0, 50, 50)
	b := newRect(s, 100, 0, 50, 50)
	s.SetSelection([]string{a.ID, b.ID})

	m.PointerDown(pt(120, 20))
	assert.ElementsMatch(t, []string{a.ID, b.ID}, s.SelectedIDs())

	// The whole selection moves together.
	m.PointerMove(pt(130, 30))
	m.PointerUp(pt(130, 30))
	assert.Equal(t, 10.0, s.Snapshot(a.ID).X)
	assert.Equal(t, 110.0, s.Snapshot(b.ID).X)
}

func TestMarqueeSelectsFullyContained(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	inside := newRect(s, 10, 10, 30, 30)
	newRect(s, 50, 50, 80, 80)

	m.PointerDown(pt(0, 0))
	assert.Equal(t, StateMarquee, m.State())

	m.PointerMove(pt(100, 100))
	marquee := m.Marquee()
	require.NotNil(t, marquee)
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100}, *marquee)

	m.PointerUp(pt(100, 100))
	assert.Equal(t, []string{inside.ID}, s.SelectedIDs())
	assert.Nil(t, m.Marquee())
}

func TestEmptyClickClearsSelection(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	a := newRect(s, 0, 0, 50, 50)
	s.SetSelection([]string{a.ID})

	m.PointerDown(pt(500, 500))
	assert.Empty(t, s.SelectedIDs())
	m.PointerUp(pt(500, 500))
}

func TestPanTranslatesTransform(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)

	m.PointerDown(PointerEvent{X: 100, Y: 100, Space: true})
	assert.Equal(t, StatePanning, m.State())

	m.PointerMove(pt(130, 80))
	m.PointerMove(pt(140, 90))
	m.PointerUp(pt(140, 90))

	tr := s.Transform()
	assert.Equal(t, 40.0, tr.X)
	assert.Equal(t, -10.0, tr.Y)
	assert.Equal(t, 0, s.HistoryLen())
}

func TestHandToolPans(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	s.SetTool(scene.ToolHand)

	m.PointerDown(pt(0, 0))
	assert.Equal(t, StatePanning, m.State())
	m.PointerUp(pt(0, 0))
}

func TestResizeGestureCommitsOnce(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	e := newRect(s, 0, 0, 100, 100)
	s.SetSelection([]string{e.ID})
	base := s.HistoryLen()

	m.StartResize(geometry.HandleSE)
	assert.Equal(t, StateResizing, m.State())

	// First sample anchors; the deltas are measured from it.
	m.PointerMove(pt(100, 100))
	m.PointerMove(pt(130, 120))
	assert.Equal(t, base, s.HistoryLen())

	live := s.Snapshot(e.ID)
	assert.Equal(t, 130.0, live.Width)
	assert.Equal(t, 120.0, live.Height)

	m.PointerUp(pt(130, 120))
	assert.Equal(t, StateIdle, m.State())
	assert.Equal(t, base+1, s.HistoryLen())

	require.True(t, s.Undo())
	got := s.Snapshot(e.ID)
	assert.Equal(t, 100.0, got.Width)
	assert.Equal(t, 100.0, got.Height)
}

func TestResizeClampsAtMinimum(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	e := newRect(s, 10, 10, 100, 100)
	s.SetSelection([]string{e.ID})

	m.StartResize(geometry.HandleSE)
	m.PointerMove(pt(110, 110))
	m.PointerMove(pt(20, 20))
	m.PointerUp(pt(20, 20))

	got := s.Snapshot(e.ID)
	assert.Equal(t, geometry.MinElementSize, got.Width)
	assert.Equal(t, geometry.MinElementSize, got.Height)
	assert.Equal(t, 10.0, got.X)
	assert.Equal(t, 10.0, got.Y)
}

func TestResizeRequiresSingleUnlockedSelection(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	a := newRect(s, 0, 0, 50, 50)
	b := newRect(s, 100, 0, 50, 50)

	s.SetSelection([]string{a.ID, b.ID})
	m.StartResize(geometry.HandleSE)
	assert.Equal(t, StateIdle, m.State())

	locked := element.New(element.TypeRectangle, 200, 0, element.DefaultStyle())
	locked.Width = 50
	locked.Height = 50
	locked.Locked = true
	s.AddElement(locked)
	s.SetSelection([]string{locked.ID})
	m.StartResize(geometry.HandleSE)
	assert.Equal(t, StateIdle, m.State())
}

func TestResizeWithoutMoveRecordsNothing(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	e := newRect(s, 0, 0, 100, 100)
	s.SetSelection([]string{e.ID})
	base := s.HistoryLen()

	m.StartResize(geometry.HandleSE)
	m.PointerUp(pt(0, 0))
	assert.Equal(t, base, s.HistoryLen())
}

func TestPointerLeaveEndsGesture(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	s.SetTool(scene.ToolRectangle)

	m.PointerDown(pt(0, 0))
	m.PointerMove(pt(60, 60))
	m.PointerLeave(pt(60, 60))

	assert.Equal(t, StateIdle, m.State())
	assert.Equal(t, 1, s.Len())
}

func TestEscapeClearsSelectionAndTool(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	a := newRect(s, 0, 0, 50, 50)
	s.SetSelection([]string{a.ID})
	s.SetTool(scene.ToolArrow)

	m.KeyDown("Escape")
	assert.Empty(t, s.SelectedIDs())
	assert.Equal(t, scene.ToolSelect, s.Tool())

	m.KeyDown("Delete")
	assert.Equal(t, scene.ToolSelect, s.Tool())
}

func TestIdleHoverTracksTopmostHit(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	a := newRect(s, 0, 0, 100, 100)

	m.PointerMove(pt(50, 50))
	assert.Equal(t, a.ID, s.Hovered())

	m.PointerMove(pt(500, 500))
	assert.Equal(t, "", s.Hovered())
}

func TestBoundLineFollowsDraggedTarget(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	target := newRect(s, 200, 0, 100, 100)

	line := element.New(element.TypeArrow, 0, 50, element.DefaultStyle())
	line.Points = []element.Point{{X: 0, Y: 0}, {X: 195, Y: 0}}
	line.Width = 195
	line.EndBind = &element.Binding{ElementID: target.ID, Gap: 5}
	s.AddElement(line)

	// Drag the target right by 100; the arrow endpoint tracks its west edge.
	s.SetSelection([]string{target.ID})
	m.PointerDown(pt(250, 50))
	m.PointerMove(pt(350, 50))
	m.PointerUp(pt(350, 50))

	got := s.Snapshot(line.ID)
	end := element.Point{
		X: got.X + got.Points[len(got.Points)-1].X,
		Y: got.Y + got.Points[len(got.Points)-1].Y,
	}
	assert.Equal(t, element.Point{X: 295, Y: 50}, end)
}

func TestDownIgnoredWhileGestureActive(t *testing.T) {
	s := scene.NewStore()
	m := NewMachine(s)
	s.SetTool(scene.ToolRectangle)

	m.PointerDown(pt(0, 0))
	m.PointerDown(pt(500, 500))
	m.PointerMove(pt(60, 60))
	m.PointerUp(pt(60, 60))

	require.Equal(t, 1, s.Len())
	e := s.Ordered()[0]
	assert.Equal(t, 0.0, e.X)
}
