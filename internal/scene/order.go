package scene

// Draw-order mutations. Z-order changes are not history-tracked: history
// entries snapshot elements, not the order list, and undo restores order
// by appending, so recording these would promise an order-preserving undo
// the engine does not implement.

func (s *Store) removeFromOrderLocked(id string) {
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// BringToFront moves the given ids to the end of the draw order,
// preserving their relative order.
func (s *Store) BringToFront(ids []string) {
	s.reorderToEdge(ids, true)
}

// SendToBack moves the given ids to the start of the draw order,
// preserving their relative order.
func (s *Store) SendToBack(ids []string) {
	s.reorderToEdge(ids, false)
}

func (s *Store) reorderToEdge(ids []string, front bool) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	moving := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.elements[id]; ok {
			moving[id] = true
		}
	}
	if len(moving) == 0 {
		s.mu.Unlock()
		return
	}
	kept := make([]string, 0, len(s.order))
	picked := make([]string, 0, len(moving))
	for _, id := range s.order {
		if moving[id] {
			picked = append(picked, id)
		} else {
			kept = append(kept, id)
		}
	}
	if front {
		s.order = append(kept, picked...)
	} else {
		s.order = append(picked, kept...)
	}
	s.mu.Unlock()
	s.notify()
}

// BringForward swaps each given id one position toward the front, bounded
// at the end of the order.
func (s *Store) BringForward(ids []string) {
	s.stepOrder(ids, true)
}

// SendBackward swaps each given id one position toward the back, bounded
// at the start of the order.
func (s *Store) SendBackward(ids []string) {
	s.stepOrder(ids, false)
}

func (s *Store) stepOrder(ids []string, forward bool) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	moving := make(map[string]bool, len(ids))
	for _, id := range ids {
		moving[id] = true
	}
	if forward {
		// Walk from the front so a block of selected ids does not leapfrog
		// itself.
		for i := len(s.order) - 2; i >= 0; i-- {
			if moving[s.order[i]] && !moving[s.order[i+1]] {
				s.order[i], s.order[i+1] = s.order[i+1], s.order[i]
			}
		}
	} else {
		for i := 1; i < len(s.order); i++ {
			if moving[s.order[i]] && !moving[s.order[i-1]] {
				s.order[i], s.order[i-1] = s.order[i-1], s.order[i]
			}
		}
	}
	s.mu.Unlock()
	s.notify()
}
