package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdeck/drawdeck/internal/element"
)

func rect(id string, x, y, w, h float64) *element.Element {
	return &element.Element{ID: id, Type: element.TypeRectangle, X: x, Y: y, Width: w, Height: h}
}

func TestSnapToGrid(t *testing.T) {
	p := SnapToGrid(element.Point{X: 27, Y: 33}, 20, true)
	assert.Equal(t, element.Point{X: 20, Y: 40}, p)

	// Disabled grid is identity.
	p = SnapToGrid(element.Point{X: 27, Y: 33}, 20, false)
	assert.Equal(t, element.Point{X: 27, Y: 33}, p)

	// Degenerate grid size is identity.
	p = SnapToGrid(element.Point{X: 27, Y: 33}, 0, true)
	assert.Equal(t, element.Point{X: 27, Y: 33}, p)
}

func TestBoundsOf(t *testing.T) {
	assert.Nil(t, BoundsOf(nil))

	b := BoundsOf([]*element.Element{
		rect("a", 0, 0, 50, 50),
		rect("b", 100, 100, 50, 80),
	})
	require.NotNil(t, b)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 150, Height: 180}, *b)
}

func TestBoundsOfIgnoresRotation(t *testing.T) {
	e := rect("a", 10, 10, 40, 40)
	e.Rotation = 45
	b := BoundsOf([]*element.Element{e})
	require.NotNil(t, b)
	assert.Equal(t, Rect{X: 10, Y: 10, Width: 40, Height: 40}, *b)
}

func TestHitTestTopmostWins(t *testing.T) {
	bottom := rect("bottom", 0, 0, 100, 100)
	top := rect("top", 50, 50, 100, 100)
	ordered := []*element.Element{bottom, top}

	hit := HitTest(ordered, element.Point{X: 75, Y: 75})
	require.NotNil(t, hit)
	assert.Equal(t, "top", hit.ID)

	hit = HitTest(ordered, element.Point{X: 10, Y: 10})
	require.NotNil(t, hit)
	assert.Equal(t, "bottom", hit.ID)

	assert.Nil(t, HitTest(ordered, element.Point{X: 300, Y: 300}))
}

func TestBoxSelectRequiresFullContainment(t *testing.T) {
	inside := rect("inside", 10, 10, 30, 30)
	overhanging := rect("overhanging", 50, 50, 80, 80) // extends to 130,130
	outside := rect("outside", 200, 200, 20, 20)

	hits := BoxSelect(
		[]*element.Element{inside, overhanging, outside},
		element.Point{X: 0, Y: 0},
		element.Point{X: 100, Y: 100},
	)
	require.Len(t, hits, 1)
	assert.Equal(t, "inside", hits[0].ID)
}

func TestBoxSelectCornerOrderIrrelevant(t *testing.T) {
	e := rect("a", 10, 10, 30, 30)
	hits := BoxSelect([]*element.Element{e}, element.Point{X: 100, Y: 100}, element.Point{X: 0, Y: 0})
	assert.Len(t, hits, 1)
}

func TestApplyResizeSE(t *testing.T) {
	e := rect("a", 10, 10, 100, 100)
	box := ApplyResize(e, HandleSE, 30, -20)
	assert.Equal(t, Rect{X: 10, Y: 10, Width: 130, Height: 80}, box)
}

func TestApplyResizeSEClampKeepsOrigin(t *testing.T) {
	e := rect("a", 10, 10, 100, 100)
	box := ApplyResize(e, HandleSE, -90, -90)
	assert.Equal(t, Rect{X: 10, Y: 10, Width: MinElementSize, Height: MinElementSize}, box)
}

func TestApplyResizeWestClampKeepsEastEdge(t *testing.T) {
	e := rect("a", 0, 0, 100, 100)
	box := ApplyResize(e, HandleW, 95, 0)
	// East edge stays at 100 while the width clamps.
	assert.Equal(t, Rect{X: 80, Y: 0, Width: MinElementSize, Height: 100}, box)
}

func TestApplyResizeNW(t *testing.T) {
	e := rect("a", 10, 10, 100, 100)
	box := ApplyResize(e, HandleNW, 20, 30)
	assert.Equal(t, Rect{X: 30, Y: 40, Width: 80, Height: 70}, box)
}

func TestApplyResizeRotationLeavesBox(t *testing.T) {
	e := rect("a", 10, 10, 100, 100)
	box := ApplyResize(e, HandleRotation, 50, 50)
	assert.Equal(t, ElementRect(e), box)
}

func TestAlignTo(t *testing.T) {
	a := rect("a", 0, 0, 50, 50)
	b := rect("b", 100, 100, 30, 30)
	els := []*element.Element{a, b}
	bounds := *BoundsOf(els)

	moves := AlignTo(els, bounds, AlignLeft)
	require.NotNil(t, moves)
	assert.Equal(t, 0.0, moves["a"].X)
	assert.Equal(t, 0.0, moves["b"].X)

	moves = AlignTo(els, bounds, AlignRight)
	assert.Equal(t, 80.0, moves["a"].X)
	assert.Equal(t, 100.0, moves["b"].X)

	moves = AlignTo(els, bounds, AlignCenter)
	assert.Equal(t, 40.0, moves["a"].X)
	assert.Equal(t, 50.0, moves["b"].X)

	// Requires at least two elements.
	assert.Nil(t, AlignTo(els[:1], bounds, AlignLeft))
}

func TestDistributeEvenLayoutUnchanged(t *testing.T) {
	els := []*element.Element{
		rect("a", 0, 0, 50, 50),
		rect("b", 125, 0, 50, 50),
		rect("c", 250, 0, 50, 50),
	}
	moves := Distribute(els, AxisHorizontal)
	require.NotNil(t, moves)
	assert.Equal(t, 0.0, moves["a"].X)
	assert.Equal(t, 125.0, moves["b"].X)
	assert.Equal(t, 250.0, moves["c"].X)
}

func TestDistributeUneven(t *testing.T) {
	els := []*element.Element{
		rect("a", 0, 0, 50, 50),
		rect("b", 50, 0, 50, 50),
		rect("c", 250, 0, 50, 50),
	}
	moves := Distribute(els, AxisHorizontal)
	require.NotNil(t, moves)
	assert.Equal(t, 0.0, moves["a"].X)
	assert.Equal(t, 125.0, moves["b"].X)
	assert.Equal(t, 250.0, moves["c"].X)
}

func TestDistributeNeedsThree(t *testing.T) {
	els := []*element.Element{
		rect("a", 0, 0, 50, 50),
		rect("b", 100, 0, 50, 50),
	}
	assert.Nil(t, Distribute(els, AxisHorizontal))
}

func TestBindingAnchorPicksFacingEdge(t *testing.T) {
	target := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	// Endpoint far to the east: anchor sits on the east edge plus gap.
	p := BindingAnchor(target, 0, 5, element.Point{X: 300, Y: 50})
	assert.Equal(t, element.Point{X: 105, Y: 50}, p)

	// Focus slides along the edge.
	p = BindingAnchor(target, 1, 0, element.Point{X: 300, Y: 50})
	assert.Equal(t, element.Point{X: 100, Y: 100}, p)

	// Endpoint above: north edge.
	p = BindingAnchor(target, 0, 10, element.Point{X: 50, Y: -200})
	assert.Equal(t, element.Point{X: 50, Y: -10}, p)
}
