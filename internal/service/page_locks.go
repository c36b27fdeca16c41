package service

import (
	"sort"
	"sync"
)

// PageLocks serializes work per page id. Entries are reference counted and removed once
// no goroutine holds or waits for them.
type PageLocks struct {
	mu      sync.Mutex
	entries map[string]*pageLockEntry
}

type pageLockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewPageLocks returns an empty lock table.
func NewPageLocks() *PageLocks {
	return &PageLocks{entries: make(map[string]*pageLockEntry)}
}

// Lock acquires the locks for ids in sorted order and returns the release func.
// Duplicate ids are locked once.
func (l *PageLocks) Lock(ids ...string) func() {
	keys := uniqueSorted(ids)

	held := make([]*pageLockEntry, 0, len(keys))
	for _, key := range keys {
		l.mu.Lock()
		entry, ok := l.entries[key]
		if !ok {
			entry = &pageLockEntry{}
			l.entries[key] = entry
		}
		entry.refs++
		l.mu.Unlock()

		entry.mu.Lock()
		held = append(held, entry)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			entry := held[i]
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.entries, keys[i])
			}
			l.mu.Unlock()
		}
	}
}

func (l *PageLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
