package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/drawdeck/drawdeck/internal/element"
)

// DocumentVersion is the canonical serialization version.
const DocumentVersion = 1

var (
	ErrBadVersion = errors.New("unsupported document version")
	ErrBadOrder   = errors.New("element order references unknown ids")
)

// Document is the canonical serialization of a board: the element map plus
// the back-to-front draw order.
type Document struct {
	Version      int                         `json:"version"`
	Elements     map[string]*element.Element `json:"elements"`
	ElementOrder []string                    `json:"elementOrder"`
}

// Export deep-copies the document for serialization.
func (s *Store) Export() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := &Document{
		Version:      DocumentVersion,
		Elements:     make(map[string]*element.Element, len(s.elements)),
		ElementOrder: append([]string(nil), s.order...),
	}
	for id, e := range s.elements {
		doc.Elements[id] = e.Clone()
	}
	return doc
}

// Import replaces the whole document and resets history: nothing before an
// import remains undoable. A missing element map defaults to empty and a
// missing order falls back to the map's key order. Validation failures
// leave the store untouched.
func (s *Store) Import(doc *Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	if doc.Version != 0 && doc.Version != DocumentVersion {
		return fmt.Errorf("%w: %d", ErrBadVersion, doc.Version)
	}

	src := doc.Elements
	if src == nil {
		src = map[string]*element.Element{}
	}

	order := doc.ElementOrder
	if order == nil {
		order = make([]string, 0, len(src))
		for id := range src {
			order = append(order, id)
		}
		sort.Strings(order)
	}

	// Validate into fresh structures before touching the live state, so a
	// failed import has no effect.
	elements := make(map[string]*element.Element, len(src))
	for id, e := range src {
		if e == nil || id == "" {
			return fmt.Errorf("invalid element entry %q", id)
		}
		c := e.Clone()
		c.ID = id
		elements[id] = c
	}

	seen := make(map[string]bool, len(order))
	cleanOrder := make([]string, 0, len(order))
	for _, id := range order {
		if _, ok := elements[id]; !ok {
			return fmt.Errorf("%w: %q", ErrBadOrder, id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		cleanOrder = append(cleanOrder, id)
	}
	// Elements missing from the order paint on top, in stable id order.
	if len(cleanOrder) < len(elements) {
		missing := make([]string, 0, len(elements)-len(cleanOrder))
		for id := range elements {
			if !seen[id] {
				missing = append(missing, id)
			}
		}
		sort.Strings(missing)
		cleanOrder = append(cleanOrder, missing...)
	}

	s.mu.Lock()
	s.elements = elements
	s.order = cleanOrder
	s.selected = make(map[string]bool)
	s.hovered = ""
	s.log.Reset()
	s.mu.Unlock()
	s.notify()
	return nil
}
