package engine

import (
	"iter"
	"slices"

	"positions/types"
)

// Log is the append-only history of a position or cash balance. Rows can be
// read but only the owning entity appends to it.
type Log struct {
	entries []types.LogEntry
}

func (l *Log) append(e types.LogEntry) {
	l.entries = append(l.entries, e)
}

func (l *Log) Len() int { return len(l.entries) }

// At returns the i-th row. It panics when i is out of range, like a slice index.
func (l *Log) At(i int) types.LogEntry { return l.entries[i] }

func (l *Log) Last() (types.LogEntry, bool) {
	if len(l.entries) == 0 {
		return types.LogEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// All iterates the rows in the order they were appended.
func (l *Log) All() iter.Seq2[int, types.LogEntry] {
	return func(yield func(int, types.LogEntry) bool) {
		for i, e := range l.entries {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Entries returns a copy of every row.
func (l *Log) Entries() []types.LogEntry {
	return slices.Clone(l.entries)
}
