package history

import (
	"container/list"
	"sync"
)

// Store is the append-only history of accepted entries, ordered newest
// first. Removal by id is O(1) to support user deletion and external
// retention enforcement. The classification pipeline is the single writer;
// IPC readers get copies.
type Store struct {
	mu    sync.RWMutex
	order *list.List               // Entry values, front = newest
	byID  map[string]*list.Element // id → element in order
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		order: list.New(),
		byID:  make(map[string]*list.Element),
	}
}

// Append records e as the newest entry. Entries with a duplicate id are
// ignored; ids are ULIDs so this only happens on a durable-replay bug.
func (s *Store) Append(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[e.ID]; ok {
		return
	}
	s.byID[e.ID] = s.order.PushFront(e)
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	el, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	return el.Value.(Entry), true
}

// Remove deletes the entry with the given id, reporting whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.byID[id]
	if !ok {
		return false
	}
	s.order.Remove(el)
	delete(s.byID, id)
	return true
}

// List returns up to limit entries starting at offset, newest first.
// limit <= 0 means no limit.
func (s *Store) List(limit, offset int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, s.order.Len())
	i := 0
	for el := s.order.Front(); el != nil; el = el.Next() {
		if i < offset {
			i++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, el.Value.(Entry))
		i++
	}
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}
