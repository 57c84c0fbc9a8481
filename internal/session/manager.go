// ABOUTME: Session manager that owns the current user and their observable workout list.
// ABOUTME: All user and workout writes go through here, with uniqueness checks first.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/gym/internal/models"
	"github.com/harperreed/gym/internal/schedule"
	"github.com/harperreed/gym/internal/storage"
)

var (
	// ErrInvalidCredentials is returned when username or password do not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUsernameTaken is returned when another user already has the username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrNotLoggedIn is returned by operations that need a current user.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrMissingFields is returned when a required field is empty.
	ErrMissingFields = errors.New("missing required fields")

	// ErrUnknownClass is returned when a class title is not in the catalog.
	ErrUnknownClass = errors.New("unknown class")
)

// Manager holds the session state and mediates every write to the store.
type Manager struct {
	repo   storage.Repository
	logger *log.Logger
	color  func() string
	now    func() time.Time

	// User is the logged-in user, nil when logged out.
	User *State[*models.User]
	// Workouts follows the live workout list of the loaded user.
	Workouts *State[[]*models.Workout]
	// Classes is the static class catalog.
	Classes *State[[]models.ClassInfo]

	mu             sync.Mutex
	sessionID      string
	loggedInAt     time.Time
	loginAttempted bool
	watch          *storage.Subscription
	pumpDone       chan struct{}
	pumping        bool
	applied        uint64
	synced         *sync.Cond
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithColorFunc sets the generator for new workout colors.
func WithColorFunc(f func() string) Option {
	return func(m *Manager) {
		if f != nil {
			m.color = f
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a Manager over repo with nobody logged in.
func New(repo storage.Repository, opts ...Option) *Manager {
	m := &Manager{
		repo:     repo,
		logger:   log.Default(),
		color:    RandomColor,
		now:      time.Now,
		User:     NewState[*models.User](nil),
		Workouts: NewState([]*models.Workout{}),
		Classes:  NewState(models.Classes()),
	}
	m.synced = sync.NewCond(&m.mu)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RandomColor returns a uniformly random "#RRGGBB" color.
func RandomColor() string {
	return fmt.Sprintf("#%06X", rand.IntN(0x1000000))
}

// Login makes the user matching username and password current.
// On failure the current user is cleared.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.User, error) {
	m.mu.Lock()
	m.loginAttempted = true
	m.mu.Unlock()

	u, err := m.repo.GetUser(ctx, strings.TrimSpace(username), password)
	if err != nil {
		m.User.set(nil)
		if errors.Is(err, storage.ErrNotFound) {
			m.logger.Info("login failed", "username", username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	m.setCurrent(u)
	m.logger.Info("logged in", "user_id", u.ID, "session_id", m.SessionID())
	return u.Clone(), nil
}

// Resume makes the user with id current without a password check.
// Used to restore a persisted login: the saved sessionID and loggedInAt
// are kept, and a new session is started when sessionID is empty.
func (m *Manager) Resume(ctx context.Context, userID int64, sessionID string, loggedInAt time.Time) (*models.User, error) {
	u, err := m.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("resume session: %w", err)
	}

	if sessionID == "" {
		m.setCurrent(u)
	} else {
		m.mu.Lock()
		m.sessionID = sessionID
		m.loggedInAt = loggedInAt
		m.mu.Unlock()
		m.User.set(u.Clone())
	}
	m.logger.Debug("session resumed", "user_id", u.ID, "session_id", m.SessionID())
	return u.Clone(), nil
}

func (m *Manager) setCurrent(u *models.User) {
	m.mu.Lock()
	m.sessionID = uuid.NewString()
	m.loggedInAt = m.now()
	m.mu.Unlock()

	m.User.set(u.Clone())
}

// Logout clears the current user and the login attempt flag and stops
// following workouts. The last workout list stays readable.
func (m *Manager) Logout() {
	m.stopWatch()

	m.mu.Lock()
	m.sessionID = ""
	m.loggedInAt = time.Time{}
	m.loginAttempted = false
	m.mu.Unlock()

	m.User.set(nil)
	m.logger.Debug("logged out")
}

// LoginAttempted reports whether Login ran since the last reset.
func (m *Manager) LoginAttempted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginAttempted
}

// ResetLoginAttempt clears the login attempt flag.
func (m *Manager) ResetLoginAttempt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginAttempted = false
}

// SessionID returns the id of the current login, or "" when logged out.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// LoggedInAt returns when the current login started.
func (m *Manager) LoggedInAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggedInAt
}

// CurrentUser returns the logged-in user or ErrNotLoggedIn.
func (m *Manager) CurrentUser() (*models.User, error) {
	u := m.User.Get()
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	return u.Clone(), nil
}

// Signup registers candidate with password. Username, password and email
// are required and the username must be unused.
func (m *Manager) Signup(ctx context.Context, candidate *models.User, password string) (*models.User, error) {
	candidate.Username = strings.TrimSpace(candidate.Username)
	candidate.Email = strings.TrimSpace(candidate.Email)
	if candidate.Username == "" || candidate.Email == "" || password == "" {
		return nil, ErrMissingFields
	}

	taken, err := m.repo.IsUsernameTaken(ctx, candidate.Username)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if taken > 0 {
		return nil, ErrUsernameTaken
	}

	if err := candidate.SetPassword(password); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	candidate.ID = 0

	if err := m.repo.InsertUser(ctx, candidate); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	m.logger.Info("user signed up", "user_id", candidate.ID, "username", candidate.Username)
	return candidate.Clone(), nil
}

// UpdateProfile saves updated as the current user's profile. A changed
// username must be unused. An empty newPassword keeps the old one.
func (m *Manager) UpdateProfile(ctx context.Context, updated *models.User, newPassword string) (*models.User, error) {
	current := m.User.Get()
	if current == nil {
		return nil, ErrNotLoggedIn
	}

	next := updated.Clone()
	next.ID = current.ID
	next.Username = strings.TrimSpace(next.Username)
	next.Email = strings.TrimSpace(next.Email)
	if next.Username == "" || next.Email == "" {
		return nil, ErrMissingFields
	}

	if next.Username != current.Username {
		taken, err := m.repo.IsUsernameTaken(ctx, next.Username)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		if taken > 0 {
			return nil, ErrUsernameTaken
		}
	}

	if newPassword != "" {
		if err := next.SetPassword(newPassword); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	} else {
		next.PasswordHash = current.PasswordHash
	}

	if err := m.repo.UpdateUser(ctx, next); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	m.User.set(next)
	m.logger.Info("profile updated", "user_id", next.ID)
	return next.Clone(), nil
}

// DeleteAccount removes the current user and all their workouts, then
// logs out.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	current := m.User.Get()
	if current == nil {
		return ErrNotLoggedIn
	}

	if err := m.repo.DeleteUser(ctx, current.ID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	m.Logout()
	m.Workouts.set([]*models.Workout{})
	m.logger.Info("account deleted", "user_id", current.ID)
	return nil
}

// JoinClass books a class slot for userID. An existing identical booking
// yields OutcomeDuplicate and nothing is written.
func (m *Manager) JoinClass(ctx context.Context, userID int64, title, day, start, end string) (Outcome, error) {
	w := models.NewWorkout(userID, title, day, start, end)
	if w.Title == "" || w.Day == "" || w.StartTime == "" || w.EndTime == "" {
		return OutcomeError, ErrMissingFields
	}

	exists, err := m.repo.WorkoutExists(ctx, userID, w.Title, w.Day, w.StartTime, w.EndTime)
	if err != nil {
		return OutcomeError, fmt.Errorf("join class: %w", err)
	}
	if exists > 0 {
		m.logger.Debug("duplicate booking", "user_id", userID, "title", w.Title, "day", w.Day, "start", w.StartTime)
		return OutcomeDuplicate, nil
	}

	w.WithColor(m.color())
	if err := m.repo.InsertWorkout(ctx, w); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return OutcomeDuplicate, nil
		}
		return OutcomeError, fmt.Errorf("join class: %w", err)
	}

	m.logger.Info("class joined", "user_id", userID, "workout_id", w.ID, "title", w.Title)
	return OutcomeJoined, nil
}

// JoinCatalogClass books the catalog class with the given title.
func (m *Manager) JoinCatalogClass(ctx context.Context, userID int64, classTitle string) (Outcome, error) {
	c, ok := models.FindClass(classTitle)
	if !ok {
		return OutcomeError, fmt.Errorf("%w: %s", ErrUnknownClass, classTitle)
	}
	day, start, end, err := c.Slot()
	if err != nil {
		return OutcomeError, fmt.Errorf("join class %s: %w", c.Title, err)
	}
	return m.JoinClass(ctx, userID, c.Title, day, start, end)
}

// Import restores an export. Nothing is written if any row fails.
// The current user is reloaded in case the import replaced their profile.
func (m *Manager) Import(ctx context.Context, data *storage.ExportData) error {
	if err := m.repo.ImportData(ctx, data); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if current := m.User.Get(); current != nil {
		u, err := m.repo.GetUserByID(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("import: reload user: %w", err)
		}
		m.User.set(u)
	}

	m.logger.Info("data imported", "users", len(data.Users), "workouts", len(data.Workouts))
	return nil
}

// DeleteWorkout removes a booked workout.
func (m *Manager) DeleteWorkout(ctx context.Context, w *models.Workout) error {
	if err := m.repo.DeleteWorkout(ctx, w); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	m.logger.Info("workout deleted", "workout_id", w.ID)
	return nil
}

// ListWorkouts returns the current user's workouts. While LoadWorkouts
// follows that user, the list comes from the live query once it has
// caught up with every snapshot already published to it; otherwise the
// store is queried.
func (m *Manager) ListWorkouts(ctx context.Context) ([]*models.Workout, error) {
	u := m.User.Get()
	if u == nil {
		return nil, ErrNotLoggedIn
	}

	if workouts, ok := m.liveWorkouts(u.ID); ok {
		return workouts, nil
	}

	workouts, err := m.repo.ListWorkouts(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

// Schedule resolves the current user's workouts onto the weekly grid.
func (m *Manager) Schedule(ctx context.Context) (*schedule.Grid, error) {
	workouts, err := m.ListWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.Resolve(workouts), nil
}

// LoadWorkouts follows userID's workouts in the Workouts state until the
// next LoadWorkouts, Logout, Close or until ctx is done.
func (m *Manager) LoadWorkouts(ctx context.Context, userID int64) error {
	sub, err := m.repo.WatchWorkouts(ctx, userID)
	if err != nil {
		return fmt.Errorf("load workouts: %w", err)
	}

	done := make(chan struct{})
	m.mu.Lock()
	prev, prevDone := m.watch, m.pumpDone
	m.watch, m.pumpDone = sub, done
	m.pumping, m.applied = true, 0
	m.synced.Broadcast()
	m.mu.Unlock()

	if prev != nil {
		prev.Close()
		<-prevDone
	}

	go m.pump(sub, done)
	return nil
}

// liveWorkouts waits for the pump to apply every snapshot already sent
// for userID and returns the Workouts state. ok is false when no live
// query follows userID.
func (m *Manager) liveWorkouts(userID int64) ([]*models.Workout, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := m.watch
	if sub == nil || sub.UserID() != userID {
		return nil, false
	}
	for m.watch == sub && m.pumping && m.applied < sub.Sent() {
		m.synced.Wait()
	}
	if m.watch != sub || !m.pumping {
		return nil, false
	}
	return m.Workouts.Get(), true
}

func (m *Manager) pump(sub *storage.Subscription, done chan struct{}) {
	defer close(done)
	defer func() {
		m.mu.Lock()
		if m.watch == sub {
			m.pumping = false
		}
		m.synced.Broadcast()
		m.mu.Unlock()
	}()

	for snap := range sub.C {
		m.mu.Lock()
		if m.watch != sub || snap.UserID != sub.UserID() {
			m.mu.Unlock()
			m.logger.Debug("dropped stale workout snapshot", "user_id", snap.UserID, "seq", snap.Seq)
			continue
		}
		m.Workouts.set(snap.Workouts)
		m.applied = snap.Seq
		m.synced.Broadcast()
		m.mu.Unlock()
	}
}

func (m *Manager) stopWatch() {
	m.mu.Lock()
	sub, done := m.watch, m.pumpDone
	m.watch, m.pumpDone = nil, nil
	m.pumping = false
	m.synced.Broadcast()
	m.mu.Unlock()

	if sub != nil {
		sub.Close()
		<-done
	}
}

// Notifications returns the notification feed.
func (m *Manager) Notifications() []models.Notification {
	return models.Notifications()
}

// Close stops following workouts.
func (m *Manager) Close() {
	m.stopWatch()
}
