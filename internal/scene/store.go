// Package scene owns the authoritative whiteboard document: the element
// map, its draw order, selection, viewport and clipboard. Every change to
// the document goes through a Store mutation, and every non-silent
// mutation appends exactly one history entry atomically with the change.
package scene

import (
	"sort"
	"sync"

	"github.com/drawdeck/drawdeck/internal/element"
	"github.com/drawdeck/drawdeck/internal/geometry"
	"github.com/drawdeck/drawdeck/internal/history"
)

// Tool identifies the active editing tool.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolHand      Tool = "hand"
	ToolRectangle Tool = "rectangle"
	ToolEllipse   Tool = "ellipse"
	ToolDiamond   Tool = "diamond"
	ToolTriangle  Tool = "triangle"
	ToolLine      Tool = "line"
	ToolArrow     Tool = "arrow"
	ToolFreedraw  Tool = "freedraw"
	ToolText      Tool = "text"
	ToolSticky    Tool = "sticky"
	ToolFrame     Tool = "frame"
	ToolConnector Tool = "connector"
)

// Grid holds the snapping settings.
type Grid struct {
	Size    float64 `json:"size"`
	Enabled bool    `json:"enabled"`
}

// DefaultGridSize matches a fresh document.
const DefaultGridSize = 20.0

// Observer is notified after every completed mutation. Observers must
// treat the store as read-only.
type Observer func()

// Store is the single-writer, in-memory document state for one board.
type Store struct {
	mu        sync.RWMutex
	elements  map[string]*element.Element
	order     []string
	selected  map[string]bool
	hovered   string
	transform geometry.Transform
	grid      Grid
	tool      Tool
	defaults  element.Style
	clipboard []*element.Element
	log       *history.Log
	observers map[int]Observer
	nextObs   int
}

// NewStore creates an empty document.
func NewStore() *Store {
	return &Store{
		elements:  make(map[string]*element.Element),
		selected:  make(map[string]bool),
		transform: geometry.IdentityTransform(),
		grid:      Grid{Size: DefaultGridSize},
		tool:      ToolSelect,
		defaults:  element.DefaultStyle(),
		log:       history.NewLog(),
		observers: make(map[int]Observer),
	}
}

// Subscribe registers an observer for post-mutation notifications and
// returns a function that removes it again.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.mu.RUnlock()

	for _, o := range observers {
		o()
	}
}

// --- Read accessors ---

// Element returns the live element for id, or nil. Callers must not
// mutate the result; use Update for changes.
func (s *Store) Element(id string) *element.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elements[id]
}

// Snapshot returns a deep copy of the element for id, or nil.
func (s *Store) Snapshot(id string) *element.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.elements[id]; ok {
		return e.Clone()
	}
	return nil
}

// Ordered returns the elements in back-to-front draw order.
func (s *Store) Ordered() []*element.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderedLocked()
}

func (s *Store) orderedLocked() []*element.Element {
	out := make([]*element.Element, 0, len(s.order))
	for _, id := range s.order {
		if e, ok := s.elements[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Order returns a copy of the draw-order id list.
func (s *Store) Order() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len returns the number of live elements.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

// SelectedIDs returns the current selection, sorted for determinism.
func (s *Store) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsSelected reports whether id is in the selection.
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// Hovered returns the hovered element id, or "".
func (s *Store) Hovered() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hovered
}

// Transform returns the viewport transform.
func (s *Store) Transform() geometry.Transform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transform
}

// SetTransform replaces the viewport transform. Never history-tracked.
func (s *Store) SetTransform(t geometry.Transform) {
	s.mu.Lock()
	s.transform = t
	s.mu.Unlock()
	s.notify()
}

// ZoomAround applies one wheel step anchored at the given screen point.
func (s *Store) ZoomAround(cursor element.Point, delta float64) {
	s.mu.Lock()
	s.transform = geometry.ZoomAroundPoint(s.transform, cursor, delta)
	s.mu.Unlock()
	s.notify()
}

// ZoomToFit frames all content in a viewport of the given pixel size.
func (s *Store) ZoomToFit(viewportWidth, viewportHeight float64) {
	s.mu.Lock()
	bounds := geometry.BoundsOf(s.orderedLocked())
	s.transform = geometry.ZoomToFit(s.transform, bounds, viewportWidth, viewportHeight)
	s.mu.Unlock()
	s.notify()
}

// GridSettings returns the snapping settings.
func (s *Store) GridSettings() Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

// SetGrid replaces the snapping settings.
func (s *Store) SetGrid(g Grid) {
	s.mu.Lock()
	s.grid = g
	s.mu.Unlock()
	s.notify()
}

// Tool returns the active tool.
func (s *Store) Tool() Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tool
}

// SetTool switches the active tool. Picking anything but the select tool
// clears the selection.
func (s *Store) SetTool(t Tool) {
	s.mu.Lock()
	s.tool = t
	if t != ToolSelect {
		s.selected = make(map[string]bool)
		s.hovered = ""
	}
	s.mu.Unlock()
	s.notify()
}

// Defaults returns the pending style applied to new elements.
func (s *Store) Defaults() element.Style {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// SetDefaults replaces the pending style for new elements.
func (s *Store) SetDefaults(st element.Style) {
	s.mu.Lock()
	s.defaults = st
	s.mu.Unlock()
}

// CanUndo reports whether an undo step is available.
func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (s *Store) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.CanRedo()
}

// HistoryLen returns the number of entries in the history log.
func (s *Store) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Len()
}
