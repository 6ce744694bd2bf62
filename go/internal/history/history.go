// Package history implements a bounded linear undo/redo log of state
// snapshots. Pushes are deduplicated by structural content, not pointer
// identity: snapshots are freshly built values on every dispatch, so
// identity comparison would record a phantom edit on every render.
package history

import (
	"sync"

	"github.com/touchlineapp/touchline/go/internal/canon"
)

// DefaultMaxEntries bounds the log; each entry is a full snapshot that
// can run to tens of kilobytes, so the window stays in the hundreds.
const DefaultMaxEntries = 200

// Log is a cursor into a bounded sequence of snapshots of type T.
// A new forward push after an undo prunes the redo branch (linear undo,
// no redo tree).
type Log[T any] struct {
	mu      sync.Mutex
	entries []T
	keys    []string // canonical form of each entry, aligned with entries
	cursor  int
	max     int
}

// NewLog returns an empty log holding at most max entries; max <= 0
// selects DefaultMaxEntries.
func NewLog[T any](max int) *Log[T] {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Log[T]{max: max}
}

// Push records a snapshot. Structurally identical to the entry at the
// cursor is a no-op. Returns whether the log changed.
func (l *Log[T]) Push(next T) bool {
	key := canonical(next)

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) > 0 && key != "" && key == l.keys[l.cursor] {
		return false
	}

	if len(l.entries) == 0 {
		l.entries = []T{next}
		l.keys = []string{key}
		l.cursor = 0
		return true
	}

	// Drop the redo branch, append, advance.
	l.entries = append(l.entries[:l.cursor+1:l.cursor+1], next)
	l.keys = append(l.keys[:l.cursor+1:l.cursor+1], key)
	l.cursor = len(l.entries) - 1

	// Evict from the front: trims history, never future, so the cursor
	// keeps its position relative to surviving entries.
	if drop := len(l.entries) - l.max; drop > 0 {
		l.entries = append([]T(nil), l.entries[drop:]...)
		l.keys = append([]string(nil), l.keys[drop:]...)
		l.cursor -= drop
	}
	return true
}

// Undo steps the cursor back and returns the snapshot now under it.
// Reports false with nothing to undo; the cursor does not move.
func (l *Log[T]) Undo() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if l.cursor == 0 || len(l.entries) == 0 {
		return zero, false
	}
	l.cursor--
	return l.entries[l.cursor], true
}

// Redo steps the cursor forward and returns that snapshot. Reports false
// at the end of the sequence.
func (l *Log[T]) Redo() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if len(l.entries) == 0 || l.cursor >= len(l.entries)-1 {
		return zero, false
	}
	l.cursor++
	return l.entries[l.cursor], true
}

// Reset collapses the log to a single entry. Used when switching to a
// different match, whose old history is meaningless.
func (l *Log[T]) Reset(next T) {
	key := canonical(next)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = []T{next}
	l.keys = []string{key}
	l.cursor = 0
}

// CanUndo reports whether Undo would move the cursor.
func (l *Log[T]) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor > 0 && len(l.entries) > 0
}

// CanRedo reports whether Redo would move the cursor.
func (l *Log[T]) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries) > 0 && l.cursor < len(l.entries)-1
}

// Len returns the number of retained entries.
func (l *Log[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// canonical serializes a snapshot to canonical JSON. An empty string
// marks an uncomparable snapshot, which never matches anything.
func canonical(v any) string {
	c, err := canon.Canonical(v)
	if err != nil {
		return ""
	}
	return c
}
