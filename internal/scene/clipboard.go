package scene

import (
	"time"

	"github.com/drawdeck/drawdeck/internal/element"
	"github.com/drawdeck/drawdeck/internal/history"
	"github.com/drawdeck/drawdeck/internal/typeid"
)

// Copy deep-snapshots the selected elements into the clipboard, in draw
// order. The clipboard survives later edits to the originals.
func (s *Store) Copy() {
	s.mu.Lock()
	var snap []*element.Element
	for _, id := range s.order {
		if s.selected[id] {
			if e, ok := s.elements[id]; ok {
				snap = append(snap, e.Clone())
			}
		}
	}
	if len(snap) > 0 {
		s.clipboard = snap
	}
	s.mu.Unlock()
}

// Cut copies the selection then deletes it.
func (s *Store) Cut() {
	s.Copy()
	s.DeleteElements(s.SelectedIDs())
}

// Paste inserts deep copies of the clipboard contents with fresh ids and
// timestamps at an additive offset, selects them and records one add
// entry. Returns the new elements.
func (s *Store) Paste(offsetX, offsetY float64) []*element.Element {
	s.mu.Lock()
	if len(s.clipboard) == 0 {
		s.mu.Unlock()
		return nil
	}
	before := make(map[string]*element.Element, len(s.clipboard))
	after := make(map[string]*element.Element, len(s.clipboard))
	created := make([]*element.Element, 0, len(s.clipboard))
	for _, src := range s.clipboard {
		e := src.Clone()
		e.ID = typeid.NewElementID()
		e.X += offsetX
		e.Y += offsetY
		now := time.Now().UnixMilli()
		e.CreatedAt = now
		e.UpdatedAt = now
		s.elements[e.ID] = e
		s.order = append(s.order, e.ID)
		before[e.ID] = nil
		after[e.ID] = e.Clone()
		created = append(created, e)
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

// PasteDefault pastes at the standard duplicate offset.
func (s *Store) PasteDefault() []*element.Element {
	return s.Paste(DuplicateOffset, DuplicateOffset)
}

// ClipboardLen returns the number of elements on the clipboard.
func (s *Store) ClipboardLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clipboard)
}
