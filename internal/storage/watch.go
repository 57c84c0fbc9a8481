// ABOUTME: Live workout query: per-user publish/subscribe of workout snapshots.
// ABOUTME: Each write recomputes the owner's list and pushes it to every subscriber.
package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/harperreed/gym/internal/models"
)

// Snapshot is one published state of a user's workout list.
// Seq increases with every publish, across all users.
type Snapshot struct {
	UserID   int64
	Seq      uint64
	Workouts []*models.Workout
}

// Subscription receives snapshots for one user until closed.
type Subscription struct {
	// C delivers the latest snapshot. Older undelivered snapshots are
	// replaced, so a slow reader only ever sees the newest state.
	C <-chan Snapshot

	ch     chan Snapshot
	userID int64
	hub    *hub
	sent   atomic.Uint64
	once   sync.Once

	mu   sync.Mutex
	stop func() bool
}

// UserID returns the user this subscription follows.
func (s *Subscription) UserID() int64 {
	return s.userID
}

// Sent returns the Seq of the newest snapshot handed to C, or 0.
func (s *Subscription) Sent() uint64 {
	return s.sent.Load()
}

// Close unsubscribes and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		stop := s.stop
		s.mu.Unlock()
		if stop != nil {
			stop()
		}
		s.hub.remove(s)
	})
}

// stopOn ends the subscription when ctx is done.
func (s *Subscription) stopOn(ctx context.Context) {
	stop := context.AfterFunc(ctx, s.Close)
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
}

type hub struct {
	mu   sync.Mutex
	seq  uint64
	subs map[int64]map[*Subscription]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[int64]map[*Subscription]struct{})}
}

func (h *hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[s.userID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.userID)
	}
	close(s.ch)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, set := range h.subs {
		for s := range set {
			close(s.ch)
		}
		delete(h.subs, userID)
	}
}

// deliver must be called with h.mu held.
func (h *hub) deliver(s *Subscription, snap Snapshot) {
	s.sent.Store(snap.Seq)
	select {
	case s.ch <- snap:
		return
	default:
	}
	// Replace the stale snapshot; only the hub sends, so this cannot block.
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

// WatchWorkouts subscribes to a user's workout list. The subscription
// starts with the current list and receives a fresh list after every
// insert or delete affecting that user. It ends when ctx is done or
// Close is called.
func (d *DB) WatchWorkouts(ctx context.Context, userID int64) (*Subscription, error) {
	ch := make(chan Snapshot, 1)
	sub := &Subscription{C: ch, ch: ch, userID: userID, hub: d.hub}

	d.hub.mu.Lock()
	workouts, err := d.ListWorkouts(ctx, userID)
	if err != nil {
		d.hub.mu.Unlock()
		return nil, err
	}
	if d.hub.subs[userID] == nil {
		d.hub.subs[userID] = make(map[*Subscription]struct{})
	}
	d.hub.subs[userID][sub] = struct{}{}
	d.hub.seq++
	d.hub.deliver(sub, Snapshot{UserID: userID, Seq: d.hub.seq, Workouts: workouts})
	d.hub.mu.Unlock()

	sub.stopOn(ctx)
	d.logger.Debug("live query subscribed", "user_id", userID)
	return sub, nil
}

// notifyWorkouts publishes the user's current workout list to all
// subscribers. Skips the query when nobody is watching.
func (d *DB) notifyWorkouts(ctx context.Context, userID int64) {
	d.hub.mu.Lock()
	defer d.hub.mu.Unlock()

	set := d.hub.subs[userID]
	if len(set) == 0 {
		return
	}

	// The write already happened; a cancelled caller must not stall observers.
	workouts, err := d.ListWorkouts(context.WithoutCancel(ctx), userID)
	if err != nil {
		d.logger.Error("live query refresh failed", "user_id", userID, "err", err)
		return
	}

	d.hub.seq++
	snap := Snapshot{UserID: userID, Seq: d.hub.seq, Workouts: workouts}
	for s := range set {
		d.hub.deliver(s, snap)
	}
}
