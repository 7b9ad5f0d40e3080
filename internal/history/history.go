// Package history implements the bounded linear undo/redo log. Entries
// carry full before/after snapshots per affected element id; replaying a
// snapshot onto the document is the scene store's job.
package history

import (
	"sort"
	"time"

	"github.com/drawdeck/drawdeck/internal/element"
	"github.com/drawdeck/drawdeck/internal/typeid"
)

// MaxEntries bounds the log. Once full, pushing drops the oldest entry and
// the earliest undo becomes unreachable.
const MaxEntries = 100

type EntryType string

const (
	EntryAdd    EntryType = "add"
	EntryUpdate EntryType = "update"
	EntryDelete EntryType = "delete"
	EntryBatch  EntryType = "batch"
)

// Entry records one undoable transition. A nil snapshot value means the
// element did not exist at that edge of the transition.
type Entry struct {
	ID         string                      `json:"id"`
	Timestamp  int64                       `json:"timestamp"`
	Type       EntryType                   `json:"type"`
	ElementIDs []string                    `json:"elementIds"`
	Before     map[string]*element.Element `json:"before"`
	After      map[string]*element.Element `json:"after"`
}

// NewEntry builds an entry from before/after snapshot maps. The affected
// id set is the union of both maps' keys, sorted for determinism.
func NewEntry(t EntryType, before, after map[string]*element.Element) *Entry {
	seen := make(map[string]bool, len(before)+len(after))
	for id := range before {
		seen[id] = true
	}
	for id := range after {
		seen[id] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &Entry{
		ID:         typeid.NewHistoryID(),
		Timestamp:  time.Now().UnixMilli(),
		Type:       t,
		ElementIDs: ids,
		Before:     before,
		After:      after,
	}
}

// Log is the undo/redo stack. The cursor points at the last applied entry;
// -1 means nothing is undoable.
type Log struct {
	entries []*Entry
	cursor  int
}

func NewLog() *Log {
	return &Log{cursor: -1}
}

// Push appends an entry, discarding any redo branch past the cursor. When
// the log exceeds MaxEntries the oldest entry is dropped.
func (l *Log) Push(e *Entry) {
	l.entries = append(l.entries[:l.cursor+1], e)
	l.cursor = len(l.entries) - 1

	if len(l.entries) > MaxEntries {
		drop := len(l.entries) - MaxEntries
		l.entries = append([]*Entry(nil), l.entries[drop:]...)
		l.cursor -= drop
	}
}

// Undo steps the cursor back and returns the entry to revert, or nil when
// nothing is undoable.
func (l *Log) Undo() *Entry {
	if l.cursor < 0 {
		return nil
	}
	e := l.entries[l.cursor]
	l.cursor--
	return e
}

// Redo steps the cursor forward and returns the entry to reapply, or nil
// when nothing is redoable.
func (l *Log) Redo() *Entry {
	if l.cursor >= len(l.entries)-1 {
		return nil
	}
	l.cursor++
	return l.entries[l.cursor]
}

func (l *Log) CanUndo() bool { return l.cursor >= 0 }

func (l *Log) CanRedo() bool { return l.cursor < len(l.entries)-1 }

func (l *Log) Len() int { return len(l.entries) }

// Reset empties the log. Import uses this: nothing before an import
// remains undoable.
func (l *Log) Reset() {
	l.entries = nil
	l.cursor = -1
}
