package history

import (
	"sync"
	"time"
)

// Entry is one delivered alert.
type Entry struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Areas       []string  `json:"areas"`
	Time        time.Time `json:"time"`
}

// Buffer keeps the most recent alerts in memory, newest first, bounded at a
// fixed capacity. Safe for concurrent use; the status endpoint reads it
// while the poller writes.
type Buffer struct {
	mu      sync.RWMutex
	entries []Entry
	max     int
}

func NewBuffer(max int) *Buffer {
	if max < 1 {
		max = 1
	}
	return &Buffer{max: max}
}

func (b *Buffer) Add(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append([]Entry{e}, b.entries...)
	if len(b.entries) > b.max {
		b.entries = b.entries[:b.max]
	}
}

// Recent returns up to n entries, newest first. n <= 0 returns everything.
func (b *Buffer) Recent(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > len(b.entries) {
		n = len(b.entries)
	}
	out := make([]Entry, n)
	copy(out, b.entries[:n])
	return out
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
