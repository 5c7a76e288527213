package cache

import (
	"sync"
)

// Key identifies a memoized entry: a resource name plus the invariant
// parameters it was produced from.
type Key struct {
	Resource string
	Param    string
}

// String renders the key for logs.
func (k Key) String() string {
	if k.Param == "" {
		return k.Resource
	}
	return k.Resource + "[" + k.Param + "]"
}

// Entry is one memoized text.
type Entry struct {
	Key  Key
	Text string
}

// Memo is a thread-safe keyed text cache without expiry.
type Memo struct {
	name    string
	metrics *Metrics

	mu      sync.Mutex
	entries map[Key]*Entry
}

// NewMemo creates an empty memo. metrics may be nil.
func NewMemo(name string, metrics *Metrics) *Memo {
	return &Memo{
		name:    name,
		metrics: metrics,
		entries: make(map[Key]*Entry),
	}
}

// Get returns the entry for key, calling produce on a miss. Errors are not
// cached. The lock is held while producing so a key is produced once.
func (m *Memo) Get(key Key, produce func() (string, error)) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		m.metrics.hit(m.name)
		return e.Text, nil
	}

	m.metrics.miss(m.name)
	text, err := produce()
	if err != nil {
		return "", err
	}
	m.entries[key] = &Entry{Key: key, Text: text}
	return text, nil
}

// Invalidate removes one entry.
func (m *Memo) Invalidate(key Key, reason Reason) {
	m.mu.Lock()
	_, ok := m.entries[key]
	delete(m.entries, key)
	m.mu.Unlock()

	if ok {
		m.metrics.invalidated(m.name, reason)
	}
}

// Len returns the number of entries.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
