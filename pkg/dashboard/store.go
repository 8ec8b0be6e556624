package dashboard

import (
	"sync"

	"marketplace-backend/internal/domain"
)

// Entry is one cached entity. Stale entries are waiting for a refetch.
type Entry struct {
	Key     string
	Version int64
	Value   interface{}
	Stale   bool
}

// Store is a normalised entity cache keyed by "<entity>:<id>".
// Writes carrying an older version than the one held are ignored.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
	subs    map[string]map[int]chan Entry
	nextSub int
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]Entry),
		subs:    make(map[string]map[int]chan Entry),
	}
}

func (s *Store) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// Put stores v at version and reports whether it was accepted.
func (s *Store) Put(key string, version int64, v interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[key]; ok && version < cur.Version {
		return false
	}
	e := Entry{Key: key, Version: version, Value: v}
	s.entries[key] = e
	s.notify(e)
	return true
}

// Invalidate marks key stale so subscribers refetch it.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = Entry{Key: key}
	}
	e.Stale = true
	s.entries[key] = e
	s.notify(e)
}

// Apply handles a StatusChanged event. Events no newer than the held
// version were already seen through a refetch.
func (s *Store) Apply(evt domain.StatusChanged) {
	key := evt.Key
	if key == "" {
		key = domain.EntityKey(evt.Entity, evt.EntityID)
	}
	if cur, ok := s.Get(key); ok && !cur.Stale && evt.Version <= cur.Version {
		return
	}
	s.Invalidate(key)
}

// Subscribe delivers the latest entry for key after every change. Slow
// readers only see the newest entry. cancel closes the channel.
func (s *Store) Subscribe(key string) (<-chan Entry, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Entry, 1)
	id := s.nextSub
	s.nextSub++
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]chan Entry)
	}
	s.subs[key][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[key], id)
			if len(s.subs[key]) == 0 {
				delete(s.subs, key)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// notify runs under s.mu.
func (s *Store) notify(e Entry) {
	for _, ch := range s.subs[e.Key] {
		select {
		case <-ch:
		default:
		}
		ch <- e
	}
}
