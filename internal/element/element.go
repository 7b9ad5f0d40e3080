package element

import (
	"time"

	"github.com/drawdeck/drawdeck/internal/typeid"
)

type Type string

const (
	TypeRectangle Type = "rectangle"
	TypeEllipse   Type = "ellipse"
	TypeDiamond   Type = "diamond"
	TypeTriangle  Type = "triangle"
	TypeLine      Type = "line"
	TypeArrow     Type = "arrow"
	TypeFreedraw  Type = "freedraw"
	TypeText      Type = "text"
	TypeImage     Type = "image"
	TypeFrame     Type = "frame"
	TypeSticky    Type = "sticky"
	TypeConnector Type = "connector"
)

// IsShape reports whether t is one of the closed drag-to-size shape kinds.
func (t Type) IsShape() bool {
	switch t {
	case TypeRectangle, TypeEllipse, TypeDiamond, TypeTriangle:
		return true
	}
	return false
}

// IsLinear reports whether t is drawn as a point path rather than a box.
func (t Type) IsLinear() bool {
	return t == TypeLine || t == TypeArrow || t == TypeFreedraw || t == TypeConnector
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type StickyColor string

const (
	StickyYellow StickyColor = "yellow"
	StickyPink   StickyColor = "pink"
	StickyBlue   StickyColor = "blue"
	StickyGreen  StickyColor = "green"
	StickyOrange StickyColor = "orange"
)

type RouteType string

const (
	RouteStraight   RouteType = "straight"
	RouteOrthogonal RouteType = "orthogonal"
	RouteCurved     RouteType = "curved"
)

// Binding attaches a line/arrow endpoint to a live anchor on another
// element's edge. Focus slides the anchor along the edge, gap keeps the
// endpoint off the outline. The bound endpoint must be recomputed whenever
// the target element moves or resizes.
type Binding struct {
	ElementID string  `json:"elementId"`
	Focus     float64 `json:"focus"` // [-1, 1]
	Gap       float64 `json:"gap"`
}

// Element is one visual object on the canvas. A single struct carries every
// variant; Type discriminates and the variant-specific fields are zero for
// other kinds.
type Element struct {
	ID        string  `json:"id"`
	Type      Type    `json:"type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Rotation  float64 `json:"rotation"`
	Opacity   float64 `json:"opacity"`
	Locked    bool    `json:"locked"`
	GroupID   string  `json:"groupId,omitempty"`
	ZIndex    int     `json:"zIndex"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`

	// Shape + text styling
	Stroke       string  `json:"stroke,omitempty"`
	Fill         string  `json:"fill,omitempty"`
	StrokeWidth  float64 `json:"strokeWidth,omitempty"`
	CornerRadius float64 `json:"cornerRadius,omitempty"`
	Text         string  `json:"text,omitempty"`
	FontSize     float64 `json:"fontSize,omitempty"`

	// Line / arrow / freedraw / connector path, relative to (X, Y)
	Points     []Point   `json:"points,omitempty"`
	StartArrow bool      `json:"startArrow,omitempty"`
	EndArrow   bool      `json:"endArrow,omitempty"`
	StartBind  *Binding  `json:"startBind,omitempty"`
	EndBind    *Binding  `json:"endBind,omitempty"`
	Pressure   bool      `json:"pressure,omitempty"`
	Route      RouteType `json:"route,omitempty"`
	Waypoints  []Point   `json:"waypoints,omitempty"`

	// Image
	AssetRef string `json:"assetRef,omitempty"`

	// Frame container
	Name     string   `json:"name,omitempty"`
	Children []string `json:"children,omitempty"`
	Clip     bool     `json:"clip,omitempty"`

	// Sticky note
	Color StickyColor `json:"color,omitempty"`
}

// Clone returns a deep copy of the element. Slices and bindings are copied
// so mutating the clone never touches the original.
func (e *Element) Clone() *Element {
	c := *e
	if e.Points != nil {
		c.Points = make([]Point, len(e.Points))
		copy(c.Points, e.Points)
	}
	if e.Waypoints != nil {
		c.Waypoints = make([]Point, len(e.Waypoints))
		copy(c.Waypoints, e.Waypoints)
	}
	if e.Children != nil {
		c.Children = make([]string, len(e.Children))
		copy(c.Children, e.Children)
	}
	if e.StartBind != nil {
		b := *e.StartBind
		c.StartBind = &b
	}
	if e.EndBind != nil {
		b := *e.EndBind
		c.EndBind = &b
	}
	return &c
}

// Touch stamps UpdatedAt with the current time.
func (e *Element) Touch() {
	e.UpdatedAt = time.Now().UnixMilli()
}

// Style carries the pending defaults applied to newly created elements.
type Style struct {
	Stroke      string  `json:"stroke"`
	Fill        string  `json:"fill"`
	StrokeWidth float64 `json:"strokeWidth"`
	FontSize    float64 `json:"fontSize"`
}

// DefaultStyle matches the values a fresh document starts with.
func DefaultStyle() Style {
	return Style{
		Stroke:      "#1a1a2e",
		Fill:        "transparent",
		StrokeWidth: 2,
		FontSize:    16,
	}
}

// New creates an element of the given type at (x, y) with zero size and the
// given style defaults applied.
func New(t Type, x, y float64, style Style) *Element {
	now := time.Now().UnixMilli()
	e := &Element{
		ID:          typeid.NewElementID(),
		Type:        t,
		X:           x,
		Y:           y,
		Opacity:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
		Stroke:      style.Stroke,
		StrokeWidth: style.StrokeWidth,
	}
	switch {
	case t.IsShape():
		e.Fill = style.Fill
	case t == TypeLine || t == TypeArrow:
		e.Points = []Point{{0, 0}, {0, 0}}
		e.EndArrow = t == TypeArrow
	case t == TypeFreedraw:
		e.Points = []Point{{0, 0}}
	case t == TypeConnector:
		e.Points = []Point{{0, 0}, {0, 0}}
		e.EndArrow = true
		e.Route = RouteOrthogonal
	case t == TypeText:
		e.Width = 160
		e.Height = 24
		e.FontSize = style.FontSize
	case t == TypeSticky:
		e.Width = 180
		e.Height = 180
		e.Color = StickyYellow
	case t == TypeFrame:
		e.Name = "Frame"
		e.Children = []string{}
	}
	return e
}
