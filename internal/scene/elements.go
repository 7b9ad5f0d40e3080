package scene

import (
	"time"

	"github.com/drawdeck/drawdeck/internal/element"
	"github.com/drawdeck/drawdeck/internal/geometry"
	"github.com/drawdeck/drawdeck/internal/history"
	"github.com/drawdeck/drawdeck/internal/typeid"
)

// DuplicateOffset shifts duplicated and pasted elements so they do not
// land exactly on their sources.
const DuplicateOffset = 12.0

// AddElement appends an element to the document and records one add entry.
func (s *Store) AddElement(e *element.Element) {
	s.mu.Lock()
	s.elements[e.ID] = e
	s.order = append(s.order, e.ID)
	s.log.Push(history.NewEntry(history.EntryAdd,
		map[string]*element.Element{e.ID: nil},
		map[string]*element.Element{e.ID: e.Clone()},
	))
	s.mu.Unlock()
	s.notify()
}

// UpdateElement applies mutate to the element, stamps UpdatedAt and
// records one update entry with full before/after snapshots. Unknown ids
// are a silent no-op.
func (s *Store) UpdateElement(id string, mutate func(*element.Element)) {
	s.mu.Lock()
	e, ok := s.elements[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	before := e.Clone()
	mutate(e)
	e.Touch()
	s.log.Push(history.NewEntry(history.EntryUpdate,
		map[string]*element.Element{id: before},
		map[string]*element.Element{id: e.Clone()},
	))
	s.mu.Unlock()
	s.notify()
}

// UpdateElementSilent applies the same merge as UpdateElement but records
// no history entry. Reserved for intermediate gesture frames; the gesture
// owner must finish with one non-silent UpdateElement so the whole gesture
// is a single undo step.
func (s *Store) UpdateElementSilent(id string, mutate func(*element.Element)) {
	s.mu.Lock()
	e, ok := s.elements[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	mutate(e)
	e.Touch()
	s.mu.Unlock()
	s.notify()
}

// UpdateElements applies mutate to every given element and records a
// single batch entry. Unknown ids are tolerated.
func (s *Store) UpdateElements(ids []string, mutate func(*element.Element)) {
	s.mu.Lock()
	before := make(map[string]*element.Element)
	after := make(map[string]*element.Element)
	for _, id := range ids {
		e, ok := s.elements[id]
		if !ok {
			continue
		}
		before[id] = e.Clone()
		mutate(e)
		e.Touch()
		after[id] = e.Clone()
	}
	if len(before) == 0 {
		s.mu.Unlock()
		return
	}
	s.log.Push(history.NewEntry(history.EntryBatch, before, after))
	s.mu.Unlock()
	s.notify()
}

// DeleteElements removes the elements from the map, the draw order and the
// selection, recording one delete entry. Absent ids are tolerated and
// recorded with a nil before snapshot.
func (s *Store) DeleteElements(ids []string) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	before := make(map[string]*element.Element, len(ids))
	after := make(map[string]*element.Element, len(ids))
	for _, id := range ids {
		if e, ok := s.elements[id]; ok {
			before[id] = e.Clone()
		} else {
			before[id] = nil
		}
		after[id] = nil
		delete(s.elements, id)
		s.removeFromOrderLocked(id)
		delete(s.selected, id)
		if s.hovered == id {
			s.hovered = ""
		}
	}
	s.log.Push(history.NewEntry(history.EntryDelete, before, after))
	s.mu.Unlock()
	s.notify()
}

// DuplicateElements deep-copies the given elements with fresh ids and
// timestamps, offsets them, appends them to the draw order and selects
// them. The whole duplication is one undoable add entry.
func (s *Store) DuplicateElements(ids []string) []*element.Element {
	s.mu.Lock()
	before := make(map[string]*element.Element)
	after := make(map[string]*element.Element)
	var created []*element.Element
	for _, id := range ids {
		src, ok := s.elements[id]
		if !ok {
			continue
		}
		dup := src.Clone()
		dup.ID = typeid.NewElementID()
		dup.X += DuplicateOffset
		dup.Y += DuplicateOffset
		now := time.Now().UnixMilli()
		dup.CreatedAt = now
		dup.UpdatedAt = now
		s.elements[dup.ID] = dup
		s.order = append(s.order, dup.ID)
		before[dup.ID] = nil
		after[dup.ID] = dup.Clone()
		created = append(created, dup)
	}
	if len(created) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.selected = make(map[string]bool, len(created))
	for _, e := range created {
		s.selected[e.ID] = true
	}
	s.log.Push(history.NewEntry(history.EntryAdd, before, after))
	s.mu.Unlock()
	s.notify()
	return created
}

// Group stamps a fresh group id onto every given element and records one
// batch entry. Returns the group id, or "" when nothing was grouped.
func (s *Store) Group(ids []string) string {
	groupID := typeid.NewGroupID()
	grouped := false
	s.UpdateElements(ids, func(e *element.Element) {
		e.GroupID = groupID
		grouped = true
	})
	if !grouped {
		return ""
	}
	return groupID
}

// Ungroup clears the group id on every element carrying it.
func (s *Store) Ungroup(groupID string) {
	if groupID == "" {
		return
	}
	s.mu.RLock()
	var ids []string
	for _, id := range s.order {
		if e, ok := s.elements[id]; ok && e.GroupID == groupID {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()
	s.UpdateElements(ids, func(e *element.Element) {
		e.GroupID = ""
	})
}

// GroupMembers returns the ids of every element in the given group, in
// draw order.
func (s *Store) GroupMembers(groupID string) []string {
	if groupID == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, id := range s.order {
		if e, ok := s.elements[id]; ok && e.GroupID == groupID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Align moves the given elements so the chosen edges or centers line up
// within their combined bounds. Locked elements are skipped. One batch
// entry; fewer than two movable elements is a no-op.
func (s *Store) Align(ids []string, mode geometry.AlignMode) {
	targets, moves := s.planLayout(ids, func(els []*element.Element) map[string]element.Point {
		bounds := geometry.BoundsOf(els)
		if bounds == nil {
			return nil
		}
		return geometry.AlignTo(els, *bounds, mode)
	})
	s.applyLayout(targets, moves)
}

// Distribute spaces the given elements evenly along the axis. Locked
// elements are skipped. One batch entry; fewer than three movable
// elements is a no-op.
func (s *Store) Distribute(ids []string, axis geometry.Axis) {
	targets, moves := s.planLayout(ids, func(els []*element.Element) map[string]element.Point {
		return geometry.Distribute(els, axis)
	})
	s.applyLayout(targets, moves)
}

func (s *Store) planLayout(ids []string, plan func([]*element.Element) map[string]element.Point) ([]string, map[string]element.Point) {
	s.mu.RLock()
	var els []*element.Element
	var targets []string
	for _, id := range ids {
		if e, ok := s.elements[id]; ok && !e.Locked {
			els = append(els, e.Clone())
			targets = append(targets, id)
		}
	}
	s.mu.RUnlock()
	return targets, plan(els)
}

func (s *Store) applyLayout(ids []string, moves map[string]element.Point) {
	if len(moves) == 0 {
		return
	}
	s.UpdateElements(ids, func(e *element.Element) {
		if p, ok := moves[e.ID]; ok {
			e.X = p.X
			e.Y = p.Y
		}
	})
}

// Undo reverts the last recorded entry by restoring every before snapshot.
// Elements restored after deletion are appended to the end of the draw
// order; they do not reclaim their original z-position.
func (s *Store) Undo() bool {
	s.mu.Lock()
	entry := s.log.Undo()
	if entry == nil {
		s.mu.Unlock()
		return false
	}
	s.applySnapshotsLocked(entry.ElementIDs, entry.Before)
	s.mu.Unlock()
	s.notify()
	return true
}

// Redo reapplies the next entry by restoring every after snapshot.
func (s *Store) Redo() bool {
	s.mu.Lock()
	entry := s.log.Redo()
	if entry == nil {
		s.mu.Unlock()
		return false
	}
	s.applySnapshotsLocked(entry.ElementIDs, entry.After)
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *Store) applySnapshotsLocked(ids []string, snapshots map[string]*element.Element) {
	for _, id := range ids {
		snap := snapshots[id]
		if snap == nil {
			delete(s.elements, id)
			s.removeFromOrderLocked(id)
			delete(s.selected, id)
			if s.hovered == id {
				s.hovered = ""
			}
			continue
		}
		_, existed := s.elements[id]
		s.elements[id] = snap.Clone()
		if !existed {
			s.order = append(s.order, id)
		}
	}
}
