// ABOUTME: User CRUD operations for SQLite storage.
// ABOUTME: Credential lookup verifies bcrypt hashes; deletes cascade to workouts.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/harperreed/gym/internal/models"
)

const userColumns = `id, username, password_hash, name, surname, email, height, weight, weight_goal, likes, profile_image`

// dummyUser gives unknown usernames the same bcrypt cost as a wrong password.
var dummyUser = sync.OnceValue(func() *models.User {
	u := &models.User{}
	_ = u.SetPassword("gym-dummy-password")
	return u
})

// InsertUser inserts a user, or replaces the row with the same ID.
// A zero ID is assigned by the database and written back to u.
func (d *DB) InsertUser(ctx context.Context, u *models.User) error {
	return insertUser(ctx, d.db, u)
}

func insertUser(ctx context.Context, ex execer, u *models.User) error {
	likes, err := encodeLikes(u.Likes)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	var id any
	if u.ID != 0 {
		id = u.ID
	}

	query := `
		INSERT INTO users (id, username, password_hash, name, surname, email, height, weight, weight_goal, likes, profile_image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			password_hash = excluded.password_hash,
			name = excluded.name,
			surname = excluded.surname,
			email = excluded.email,
			height = excluded.height,
			weight = excluded.weight,
			weight_goal = excluded.weight_goal,
			likes = excluded.likes,
			profile_image = excluded.profile_image
	`
	result, err := ex.ExecContext(ctx, query,
		id,
		u.Username,
		u.PasswordHash,
		u.Name,
		u.Surname,
		u.Email,
		u.Height,
		u.Weight,
		u.WeightGoal,
		likes,
		u.ProfileImage,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user %s: %w", u.Username, ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if u.ID == 0 {
		newID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		u.ID = newID
	}
	return nil
}

// GetUser returns the user matching both username and password.
// Unknown usernames and wrong passwords both yield ErrNotFound.
func (d *DB) GetUser(ctx context.Context, username, password string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	u, err := d.scanUser(d.db.QueryRowContext(ctx, query, username))
	if errors.Is(err, ErrNotFound) {
		dummyUser().CheckPassword(password)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, ErrNotFound
	}
	return u, nil
}

// IsUsernameTaken returns how many users have the given username.
func (d *DB) IsUsernameTaken(ctx context.Context, username string) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count username: %w", err)
	}
	return count, nil
}

// GetUserByID retrieves a user by ID.
func (d *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return d.scanUser(d.db.QueryRowContext(ctx, query, id))
}

// UpdateUser overwrites the user row matched by ID.
func (d *DB) UpdateUser(ctx context.Context, u *models.User) error {
	likes, err := encodeLikes(u.Likes)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	query := `
		UPDATE users SET
			username = ?, password_hash = ?, name = ?, surname = ?, email = ?,
			height = ?, weight = ?, weight_goal = ?, likes = ?, profile_image = ?
		WHERE id = ?
	`
	result, err := d.db.ExecContext(ctx, query,
		u.Username,
		u.PasswordHash,
		u.Name,
		u.Surname,
		u.Email,
		u.Height,
		u.Weight,
		u.WeightGoal,
		likes,
		u.ProfileImage,
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user %s: %w", u.Username, ErrConflict)
		}
		return fmt.Errorf("update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update user %d: %w", u.ID, ErrNotFound)
	}
	return nil
}

// DeleteUser removes a user and all their workouts (cascade delete).
func (d *DB) DeleteUser(ctx context.Context, id int64) error {
	// CASCADE is enabled, so deleting the user deletes their workouts
	result, err := d.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete user %d: %w", id, ErrNotFound)
	}

	d.notifyWorkouts(ctx, id)
	return nil
}

// listUsers returns every user ordered by ID.
func (d *DB) listUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := d.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser scans a single row into a User struct.
func (d *DB) scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var likes string
	var profileImage sql.NullString

	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Surname, &u.Email,
		&u.Height, &u.Weight, &u.WeightGoal, &likes, &profileImage)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if err := json.Unmarshal([]byte(likes), &u.Likes); err != nil {
		return nil, fmt.Errorf("decode likes for user %d: %w", u.ID, err)
	}
	if u.Likes == nil {
		u.Likes = []string{}
	}
	if profileImage.Valid {
		u.ProfileImage = &profileImage.String
	}

	return &u, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func encodeLikes(likes []string) (string, error) {
	if likes == nil {
		likes = []string{}
	}
	data, err := json.Marshal(likes)
	if err != nil {
		return "", fmt.Errorf("encode likes: %w", err)
	}
	return string(data), nil
}
