// ABOUTME: Observable value holder with latest-wins subscriptions.
// ABOUTME: Subscribers get the current value on subscribe and every later change.
package session

import "sync"

// State holds a value that observers can read or follow.
type State[T any] struct {
	mu    sync.Mutex
	value T
	subs  map[chan T]struct{}
}

// NewState returns a State holding initial.
func NewState[T any](initial T) *State[T] {
	return &State[T]{
		value: initial,
		subs:  make(map[chan T]struct{}),
	}
}

// Get returns the current value.
func (s *State[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Subscribe returns a channel that immediately holds the current value and
// then receives each new value. A slow reader only sees the newest value.
// The returned func unsubscribes and closes the channel.
func (s *State[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	ch <- s.value
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, ch)
			close(ch)
		})
	}
	return ch, cancel
}

// set replaces the value and notifies subscribers.
func (s *State[T]) set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = v
	for ch := range s.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}
