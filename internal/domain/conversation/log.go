package conversation

import (
	"fmt"
	"sync"
)

// Op identifies the log mutation an Event describes.
type Op string

const (
	OpAppend  Op = "append"
	OpReplace Op = "replace"
)

// Event notifies subscribers of a log mutation. The entry is a value
// copy; subscribers never observe later mutations.
type Event struct {
	Op    Op
	Entry Entry
}

// Handle refers back to an appended entry, carrying the identity needed
// for its one-and-only replace operation.
type Handle struct {
	id EntryID
}

// ID returns the identity of the appended entry.
func (h Handle) ID() EntryID {
	return h.id
}

// Log is the ordered, append-only collection of entries for one
// incident session. A single writer (the orchestrator) appends and
// replaces; any number of readers may take snapshots concurrently.
// No entry is ever removed; the log is the full audit trail.
type Log struct {
	mu          sync.RWMutex
	entries     []Entry
	index       map[EntryID]int
	replaced    map[EntryID]bool
	subscribers map[int]func(Event)
	nextSub     int
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{
		index:       make(map[EntryID]int),
		replaced:    make(map[EntryID]bool),
		subscribers: make(map[int]func(Event)),
	}
}

// Append adds the entry at the end of the log and returns a handle
// carrying its identity.
func (l *Log) Append(e Entry) Handle {
	l.mu.Lock()
	if e.ID.IsZero() {
		e.ID = NewEntryID()
	}
	l.index[e.ID] = len(l.entries)
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	l.publish(Event{Op: OpAppend, Entry: e})
	return Handle{id: e.ID}
}

// Replace substitutes the entry with the given identity in place,
// preserving position and identity. Replacing an unknown or already
// replaced identity is a programming defect in the caller, reported as
// an error and otherwise a no-op; the log state is unchanged.
func (l *Log) Replace(id EntryID, e Entry) error {
	l.mu.Lock()
	pos, ok := l.index[id]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("no entry with id %s", id)
	}
	if l.replaced[id] {
		l.mu.Unlock()
		return fmt.Errorf("entry %s has already been replaced", id)
	}

	// Position and identity survive the replacement.
	e.ID = id
	l.entries[pos] = e
	l.replaced[id] = true
	l.mu.Unlock()

	l.publish(Event{Op: OpReplace, Entry: e})
	return nil
}

// Snapshot returns a consistent copy of the current entries, safe to
// read while the writer keeps appending and replacing.
func (l *Log) Snapshot() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Subscribe registers a callback invoked after every append and replace.
// The returned function removes the subscription. Callbacks run on the
// writer's goroutine and must not block.
func (l *Log) Subscribe(fn func(Event)) func() {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subscribers[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subscribers, id)
		l.mu.Unlock()
	}
}

func (l *Log) publish(ev Event) {
	l.mu.RLock()
	fns := make([]func(Event), 0, len(l.subscribers))
	for _, fn := range l.subscribers {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
