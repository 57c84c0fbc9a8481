// ABOUTME: Workout CRUD operations for SQLite storage.
// ABOUTME: Every write republishes the owner's workout list to live queries.
package storage

import (
	"context"
	"fmt"

	"github.com/harperreed/gym/internal/models"
)

const workoutColumns = `id, user_id, title, day, start_time, end_time, color`

// ListWorkouts retrieves all workouts for a user, ordered by ID.
func (d *DB) ListWorkouts(ctx context.Context, userID int64) ([]*models.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id = ? ORDER BY id`
	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	return d.scanWorkouts(rows)
}

// InsertWorkout inserts a workout, or replaces the row with the same ID.
// A zero ID is assigned by the database and written back to w.
// A duplicate booking returns ErrConflict.
func (d *DB) InsertWorkout(ctx context.Context, w *models.Workout) error {
	if err := insertWorkout(ctx, d.db, w); err != nil {
		return err
	}

	d.notifyWorkouts(ctx, w.UserID)
	return nil
}

func insertWorkout(ctx context.Context, ex execer, w *models.Workout) error {
	var id any
	if w.ID != 0 {
		id = w.ID
	}

	query := `
		INSERT INTO workouts (id, user_id, title, day, start_time, end_time, color)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			title = excluded.title,
			day = excluded.day,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			color = excluded.color
	`
	result, err := ex.ExecContext(ctx, query,
		id,
		w.UserID,
		w.Title,
		w.Day,
		w.StartTime,
		w.EndTime,
		w.Color,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert workout %s on %s %s: %w", w.Title, w.Day, w.StartTime, ErrConflict)
		}
		return fmt.Errorf("insert workout: %w", err)
	}

	if w.ID == 0 {
		newID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert workout: %w", err)
		}
		w.ID = newID
	}
	return nil
}

// DeleteWorkout removes a workout by ID.
func (d *DB) DeleteWorkout(ctx context.Context, w *models.Workout) error {
	// Owner is read back so live queries are notified even when the
	// caller only knows the ID.
	var userID int64
	err := d.db.QueryRowContext(ctx, "DELETE FROM workouts WHERE id = ? RETURNING user_id", w.ID).Scan(&userID)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("delete workout %d: %w", w.ID, ErrNotFound)
		}
		return fmt.Errorf("delete workout: %w", err)
	}

	d.notifyWorkouts(ctx, userID)
	return nil
}

// WorkoutExists counts workouts matching the full booking tuple.
func (d *DB) WorkoutExists(ctx context.Context, userID int64, title, day, start, end string) (int, error) {
	query := `
		SELECT COUNT(*) FROM workouts
		WHERE user_id = ? AND title = ? AND day = ? AND start_time = ? AND end_time = ?
	`
	var count int
	if err := d.db.QueryRowContext(ctx, query, userID, title, day, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("count workouts: %w", err)
	}
	return count, nil
}

// listAllWorkouts returns every workout ordered by ID.
func (d *DB) listAllWorkouts(ctx context.Context) ([]*models.Workout, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+workoutColumns+` FROM workouts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	return d.scanWorkouts(rows)
}

// scanWorkouts scans multiple rows into a slice of Workouts.
func (d *DB) scanWorkouts(rows rowsScanner) ([]*models.Workout, error) {
	workouts := []*models.Workout{}

	for rows.Next() {
		var w models.Workout
		err := rows.Scan(&w.ID, &w.UserID, &w.Title, &w.Day, &w.StartTime, &w.EndTime, &w.Color)
		if err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		workouts = append(workouts, &w)
	}

	return workouts, rows.Err()
}

// rowsScanner is the subset of *sql.Rows used by scanWorkouts.
type rowsScanner interface {
	rowScanner
	Next() bool
	Err() error
}
