// ABOUTME: Tests for live workout queries.
// ABOUTME: Verifies initial snapshots, push on write, cancellation and latest-wins delivery.
package storage

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/gym/internal/models"
)

func TestWatchWorkoutsInitialSnapshot(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice", "p1")
	joinTestWorkout(t, db, u.ID, "Yoga", "Mon", "11:00", "12:00")

	sub, err := db.WatchWorkouts(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("WatchWorkouts failed: %v", err)
	}
	defer sub.Close()

	snap := receiveSnapshot(t, sub)
	if snap.UserID != u.ID {
		t.Errorf("UserID = %d, want %d", snap.UserID, u.ID)
	}
	if len(snap.Workouts) != 1 {
		t.Errorf("Expected 1 workout in initial snapshot, got %d", len(snap.Workouts))
	}
}

func TestWatchWorkoutsPushesWrites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "alice", "p1")

	sub, err := db.WatchWorkouts(ctx, u.ID)
	if err != nil {
		t.Fatalf("WatchWorkouts failed: %v", err)
	}
	defer sub.Close()

	initial := receiveSnapshot(t, sub)
	if len(initial.Workouts) != 0 {
		t.Fatalf("Expected empty initial snapshot, got %d", len(initial.Workouts))
	}

	w := joinTestWorkout(t, db, u.ID, "Yoga", "Mon", "11:00", "12:00")
	added := receiveSnapshot(t, sub)
	if len(added.Workouts) != 1 || added.Workouts[0].ID != w.ID {
		t.Fatalf("Expected snapshot with new workout, got %+v", added.Workouts)
	}
	if added.Seq <= initial.Seq {
		t.Errorf("Seq did not increase: %d then %d", initial.Seq, added.Seq)
	}

	if err := db.DeleteWorkout(ctx, w); err != nil {
		t.Fatalf("DeleteWorkout failed: %v", err)
	}
	removed := receiveSnapshot(t, sub)
	if len(removed.Workouts) != 0 {
		t.Errorf("Expected empty snapshot after delete, got %d", len(removed.Workouts))
	}
}

func TestWatchWorkoutsIgnoresOtherUsers(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice", "p1")
	bob := createTestUser(t, db, "bob", "p2")

	sub, err := db.WatchWorkouts(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("WatchWorkouts failed: %v", err)
	}
	defer sub.Close()
	receiveSnapshot(t, sub)

	joinTestWorkout(t, db, bob.ID, "Yoga", "Mon", "11:00", "12:00")

	select {
	case snap := <-sub.C:
		t.Errorf("Unexpected snapshot for alice after bob's write: %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatchWorkoutsLatestWins(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice", "p1")

	sub, err := db.WatchWorkouts(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("WatchWorkouts failed: %v", err)
	}
	defer sub.Close()

	// Nobody reads while three writes land.
	joinTestWorkout(t, db, u.ID, "Yoga", "Mon", "11:00", "12:00")
	joinTestWorkout(t, db, u.ID, "Pilates", "Tue", "09:00", "10:00")
	joinTestWorkout(t, db, u.ID, "Zumba", "Wed", "17:00", "18:00")

	snap := receiveSnapshot(t, sub)
	if len(snap.Workouts) != 3 {
		t.Errorf("Expected only the latest snapshot with 3 workouts, got %d", len(snap.Workouts))
	}

	select {
	case extra := <-sub.C:
		t.Errorf("Expected no stale snapshots, got %+v", extra)
	default:
	}
}

func TestWatchWorkoutsDeleteUser(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice", "p1")
	joinTestWorkout(t, db, u.ID, "Yoga", "Mon", "11:00", "12:00")

	sub, err := db.WatchWorkouts(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("WatchWorkouts failed: %v", err)
	}
	defer sub.Close()
	receiveSnapshot(t, sub)

	if err := db.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	snap := receiveSnapshot(t, sub)
	if len(snap.Workouts) != 0 {
		t.Errorf("Expected empty snapshot after cascade, got %d", len(snap.Workouts))
	}
}

func TestSubscriptionClose(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice", "p1")

	sub, err := db.WatchWorkouts(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("WatchWorkouts failed: %v", err)
	}
	receiveSnapshot(t, sub)

	sub.Close()
	sub.Close()

	if _, ok := <-sub.C; ok {
		t.Error("Expected channel to be closed")
	}

	// Writes after close must not panic on a closed channel.
	db.InsertWorkout(context.Background(), models.NewWorkout(u.ID, "Yoga", "Mon", "11:00", "12:00").WithColor("#000000"))
}

func TestWatchWorkoutsContextCancel(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice", "p1")

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := db.WatchWorkouts(ctx, u.ID)
	if err != nil {
		t.Fatalf("WatchWorkouts failed: %v", err)
	}
	receiveSnapshot(t, sub)

	cancel()

	select {
	case _, ok := <-sub.C:
		if ok {
			t.Error("Expected channel to close after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscription to close")
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	dbPath := t.TempDir() + "/close.db"
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	u := createTestUser(t, db, "alice", "p1")

	sub, err := db.WatchWorkouts(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("WatchWorkouts failed: %v", err)
	}
	receiveSnapshot(t, sub)

	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, ok := <-sub.C; ok {
		t.Error("Expected channel to be closed by DB.Close")
	}
	sub.Close()
}

func receiveSnapshot(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()

	select {
	case snap, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func TestWatchWorkoutsCancelDuringSubscribe(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice", "p1")

	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go cancel()

		sub, err := db.WatchWorkouts(ctx, u.ID)
		if err != nil {
			// Cancelled before the initial query ran.
			continue
		}

		deadline := time.After(time.Second)
	drain:
		for {
			select {
			case _, ok := <-sub.C:
				if !ok {
					break drain
				}
			case <-deadline:
				t.Fatal("timed out waiting for cancelled subscription to close")
			}
		}
		sub.Close()
	}
}

func TestSubscriptionSent(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice", "p1")

	sub, err := db.WatchWorkouts(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("WatchWorkouts failed: %v", err)
	}
	defer sub.Close()

	first := receiveSnapshot(t, sub)
	if sub.Sent() != first.Seq {
		t.Errorf("Sent() = %d, want %d", sub.Sent(), first.Seq)
	}

	joinTestWorkout(t, db, u.ID, "Yoga", "Mon", "11:00", "12:00")
	if sub.Sent() <= first.Seq {
		t.Errorf("Expected Sent() to advance past %d, got %d", first.Seq, sub.Sent())
	}
	if snap := receiveSnapshot(t, sub); snap.Seq != sub.Sent() {
		t.Errorf("Snapshot Seq = %d, want %d", snap.Seq, sub.Sent())
	}
}
