package state

import (
	"sort"
	"sync"
)

// Listener is called after every dispatch with the action and the
// resulting state.
type Listener func(a Action, s State)

// Store owns the State. Dispatch is the single writer: actions are
// applied one at a time under a mutex.
type Store struct {
	mu     sync.Mutex
	state  State
	subsMu sync.RWMutex
	subs   map[int]Listener
	nextID int
}

// NewStore creates a Store starting at Initial().
func NewStore() *Store {
	return NewStoreWith(Initial())
}

// NewStoreWith creates a Store starting at initial. Nil maps and an out of
// range history index are normalized first.
func NewStoreWith(initial State) *Store {
	return &Store{state: initial.normalized(), subs: make(map[int]Listener)}
}

// Dispatch applies a and returns a copy of the resulting state.
// Listeners run after the state is updated and outside the lock, so they
// may dispatch themselves; with concurrent dispatchers their calls may
// interleave.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	for _, fn := range s.listeners() {
		fn(a, snapshot)
	}
	return snapshot
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// listeners returns the registered listeners in subscription order.
func (s *Store) listeners() []Listener {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()

	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = s.subs[id]
	}
	return out
}
