package scene

// Selection and hover mutations. None of these are history-tracked:
// selection is UI state, not document state.

// SetSelection replaces the selection. Ids not present in the document
// are dropped so the selection stays a subset of the live elements.
func (s *Store) SetSelection(ids []string) {
	s.mu.Lock()
	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.elements[id]; ok {
			s.selected[id] = true
		}
	}
	s.mu.Unlock()
	s.notify()
}

// AddToSelection adds the ids to the selection.
func (s *Store) AddToSelection(ids ...string) {
	s.mu.Lock()
	for _, id := range ids {
		if _, ok := s.elements[id]; ok {
			s.selected[id] = true
		}
	}
	s.mu.Unlock()
	s.notify()
}

// RemoveFromSelection drops the ids from the selection.
func (s *Store) RemoveFromSelection(ids ...string) {
	s.mu.Lock()
	for _, id := range ids {
		delete(s.selected, id)
	}
	s.mu.Unlock()
	s.notify()
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selected = make(map[string]bool)
	s.mu.Unlock()
	s.notify()
}

// SelectAll selects every unlocked element.
func (s *Store) SelectAll() {
	s.mu.Lock()
	s.selected = make(map[string]bool, len(s.elements))
	for id, e := range s.elements {
		if !e.Locked {
			s.selected[id] = true
		}
	}
	s.mu.Unlock()
	s.notify()
}

// SetHovered updates the hover feedback id. "" clears it.
func (s *Store) SetHovered(id string) {
	s.mu.Lock()
	if id != "" {
		if _, ok := s.elements[id]; !ok {
			id = ""
		}
	}
	changed := s.hovered != id
	s.hovered = id
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}
