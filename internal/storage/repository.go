// ABOUTME: Repository interface for gym data storage.
// ABOUTME: Defines contract for user and workout persistence plus the live workout query.
package storage

import (
	"context"

	"github.com/harperreed/gym/internal/models"
)

// Repository defines the storage interface for gym data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// User operations
	InsertUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, username, password string) (*models.User, error)
	IsUsernameTaken(ctx context.Context, username string) (int, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id int64) error

	// Workout operations
	ListWorkouts(ctx context.Context, userID int64) ([]*models.Workout, error)
	WatchWorkouts(ctx context.Context, userID int64) (*Subscription, error)
	InsertWorkout(ctx context.Context, w *models.Workout) error
	DeleteWorkout(ctx context.Context, w *models.Workout) error
	WorkoutExists(ctx context.Context, userID int64, title, day, start, end string) (int, error)

	// Export/Import
	GetAllData(ctx context.Context) (*ExportData, error)
	ImportData(ctx context.Context, data *ExportData) error

	// Lifecycle
	Close() error
}

var _ Repository = (*DB)(nil)
