package event

import "sync"

// DefaultCapacity bounds the activity feed to the twenty most recent
// entries, matching the cabinet display.
const DefaultCapacity = 20

// Entry is an immutable recorded notification.
type Entry = Notification

// Log is a bounded, most-recent-first record of notifications.
// Ingestion is idempotent within the retention window: recording a
// notification whose dedup key is already held is a no-op.
type Log struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
	seen     map[string]struct{}
}

// NewLog creates a log bounded to capacity entries. Non-positive
// capacities fall back to DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: capacity,
		seen:     make(map[string]struct{}, capacity),
	}
}

// Record prepends the notification unless an entry with the same dedup
// key is already retained. It reports whether a new entry was added.
// Record never blocks on I/O.
func (l *Log) Record(n Notification) bool {
	key := n.DedupKey()

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.seen[key]; dup {
		return false
	}

	l.entries = append([]Entry{n}, l.entries...)
	l.seen[key] = struct{}{}

	// The dedup window tracks retention: once an entry ages out, a very
	// late replay of it would be recorded again rather than tracked
	// forever.
	for len(l.entries) > l.capacity {
		oldest := l.entries[len(l.entries)-1]
		delete(l.seen, oldest.DedupKey())
		l.entries = l.entries[:len(l.entries)-1]
	}
	return true
}

// Entries returns a copy of the retained entries, most recent first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
