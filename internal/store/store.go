package store

import (
	"sync"

	"question-index/internal/infra/logx"
)

// Store serializes dispatches; every Dispatch applies one action atomically
// and then notifies subscribers with the new state.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int
}

func New(initial State) *Store {
	return &Store{state: initial, subs: make(map[int]func(State))}
}

// GetState returns the current state.
func (s *Store) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces a into the state.
func (s *Store) Dispatch(a Action) {
	if a == nil {
		return
	}
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if f, ok := a.(LoadFailedAction); ok {
		logx.Errorw("load failed", "op", f.Op, "query", f.Query.Key(), "err", f.Err)
	} else {
		logx.Debugf("dispatch %T", a)
	}
	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe registers fn for state changes and returns its unsubscribe func.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
