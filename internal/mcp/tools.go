// ABOUTME: MCP tool implementations for the gym booking store.
// ABOUTME: Provides signup, login, class booking, workout listing and profile editing.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/gym/internal/models"
	"github.com/harperreed/gym/internal/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// signup
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "signup",
		Description: "Register a new gym member",
	}, s.handleSignup)

	// login
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "login",
		Description: "Log in as a gym member",
	}, s.handleLogin)

	// logout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "logout",
		Description: "Log out the current member",
	}, s.handleLogout)

	// list_classes
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_classes",
		Description: "List the classes offered by the gym",
	}, s.handleListClasses)

	// join_class
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "join_class",
		Description: "Book a class for the current member, by catalog name or explicit slot",
	}, s.handleJoinClass)

	// list_workouts
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List the current member's booked workouts",
	}, s.handleListWorkouts)

	// delete_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_workout",
		Description: "Cancel one of the current member's booked workouts",
	}, s.handleDeleteWorkout)

	// get_schedule
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_schedule",
		Description: "Show the current member's weekly schedule as a Markdown grid",
	}, s.handleGetSchedule)

	// update_profile
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_profile",
		Description: "Update the current member's profile; omitted fields are unchanged",
	}, s.handleUpdateProfile)

	// list_notifications
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_notifications",
		Description: "List gym notifications",
	}, s.handleListNotifications)
}

// Tool input/output types

type signupInput struct {
	Username string `json:"username" jsonschema:"Unique username"`
	Password string `json:"password" jsonschema:"Password"`
	Email    string `json:"email" jsonschema:"Email address"`
	Name     string `json:"name,omitempty" jsonschema:"First name"`
	Surname  string `json:"surname,omitempty" jsonschema:"Surname"`
}

type loginInput struct {
	Username string `json:"username" jsonschema:"Username"`
	Password string `json:"password" jsonschema:"Password"`
}

type emptyInput struct{}

type userOutput struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type classItem struct {
	Title       string `json:"title"`
	Day         string `json:"day"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Trainer     string `json:"trainer"`
	Description string `json:"description"`
}

type classesOutput struct {
	Classes []classItem `json:"classes"`
}

type joinClassInput struct {
	Class string `json:"class,omitempty" jsonschema:"Catalog class name such as Yoga; takes precedence over the slot fields"`
	Title string `json:"title,omitempty" jsonschema:"Workout title when booking an explicit slot"`
	Day   string `json:"day,omitempty" jsonschema:"Day label such as Mon"`
	Start string `json:"start,omitempty" jsonschema:"Start time such as 11:00"`
	End   string `json:"end,omitempty" jsonschema:"End time such as 12:00"`
}

type joinClassOutput struct {
	Outcome string `json:"outcome"`
	Message string `json:"message"`
}

type workoutItem struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
	Color string `json:"color"`
}

type workoutsOutput struct {
	Workouts []workoutItem `json:"workouts"`
	Message  string        `json:"message,omitempty"`
}

type deleteWorkoutInput struct {
	ID int64 `json:"id" jsonschema:"Workout ID from list_workouts"`
}

type scheduleOutput struct {
	Markdown string        `json:"markdown"`
	Placed   int           `json:"placed"`
	Unplaced []workoutItem `json:"unplaced,omitempty"`
}

type updateProfileInput struct {
	Username     *string  `json:"username,omitempty" jsonschema:"New username"`
	Email        *string  `json:"email,omitempty" jsonschema:"New email"`
	Name         *string  `json:"name,omitempty" jsonschema:"First name"`
	Surname      *string  `json:"surname,omitempty" jsonschema:"Surname"`
	Height       *float64 `json:"height,omitempty" jsonschema:"Height in cm"`
	Weight       *float64 `json:"weight,omitempty" jsonschema:"Weight in kg"`
	WeightGoal   *float64 `json:"weight_goal,omitempty" jsonschema:"Target weight in kg"`
	Likes        []string `json:"likes,omitempty" jsonschema:"Replaces the list of liked activities"`
	ProfileImage *string  `json:"profile_image,omitempty" jsonschema:"Profile image location"`
	NewPassword  string   `json:"new_password,omitempty" jsonschema:"New password; empty keeps the current one"`
}

type profileOutput struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	Name         string   `json:"name"`
	Surname      string   `json:"surname"`
	Email        string   `json:"email"`
	Height       float64  `json:"height"`
	Weight       float64  `json:"weight"`
	WeightGoal   float64  `json:"weight_goal"`
	Likes        []string `json:"likes"`
	ProfileImage string   `json:"profile_image,omitempty"`
	Message      string   `json:"message"`
}

type notificationsOutput struct {
	Notifications []models.Notification `json:"notifications"`
}

// Tool handlers

func (s *Server) handleSignup(ctx context.Context, req *mcp.CallToolRequest, input signupInput) (*mcp.CallToolResult, userOutput, error) {
	candidate := models.NewUser(input.Username, input.Email).WithName(input.Name, input.Surname)

	u, err := s.manager.Signup(ctx, candidate, input.Password)
	if err != nil {
		return nil, userOutput{}, fmt.Errorf("signup failed: %w", err)
	}

	return nil, userOutput{
		ID:       u.ID,
		Username: u.Username,
		Message:  fmt.Sprintf("Registered %s (ID: %d)", u.Username, u.ID),
	}, nil
}

func (s *Server) handleLogin(ctx context.Context, req *mcp.CallToolRequest, input loginInput) (*mcp.CallToolResult, userOutput, error) {
	u, err := s.manager.Login(ctx, input.Username, input.Password)
	if err != nil {
		return nil, userOutput{}, fmt.Errorf("login failed: %w", err)
	}

	// Follow the member's workouts for the life of the server, not the request.
	if err := s.manager.LoadWorkouts(context.WithoutCancel(ctx), u.ID); err != nil {
		s.logger.Warn("could not follow workouts", "user_id", u.ID, "err", err)
	}

	return nil, userOutput{
		ID:       u.ID,
		Username: u.Username,
		Message:  fmt.Sprintf("Logged in as %s", u.Username),
	}, nil
}

func (s *Server) handleLogout(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, simpleOutput, error) {
	s.manager.Logout()
	return nil, simpleOutput{Message: "Logged out"}, nil
}

func (s *Server) handleListClasses(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, classesOutput, error) {
	return nil, classesOutput{Classes: classItems(s.manager.Classes.Get())}, nil
}

func (s *Server) handleJoinClass(ctx context.Context, req *mcp.CallToolRequest, input joinClassInput) (*mcp.CallToolResult, joinClassOutput, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, joinClassOutput{}, err
	}

	var outcome session.Outcome
	title := input.Title
	if input.Class != "" {
		title = input.Class
		outcome, err = s.manager.JoinCatalogClass(ctx, u.ID, input.Class)
	} else {
		outcome, err = s.manager.JoinClass(ctx, u.ID, input.Title, input.Day, input.Start, input.End)
	}
	if err != nil {
		return nil, joinClassOutput{}, fmt.Errorf("failed to join class: %w", err)
	}

	msg := fmt.Sprintf("Joined %s", title)
	if outcome == session.OutcomeDuplicate {
		msg = fmt.Sprintf("Already booked: %s", title)
	}
	return nil, joinClassOutput{Outcome: outcome.String(), Message: msg}, nil
}

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, workoutsOutput, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, workoutsOutput{}, err
	}

	workouts, err := s.manager.ListWorkouts(ctx)
	if err != nil {
		return nil, workoutsOutput{}, err
	}

	out := workoutsOutput{Workouts: workoutItems(workouts)}
	if len(workouts) == 0 {
		out.Message = "No workouts booked."
	}
	return nil, out, nil
}

func (s *Server) handleDeleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input deleteWorkoutInput) (*mcp.CallToolResult, simpleOutput, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, simpleOutput{}, err
	}

	workouts, err := s.manager.ListWorkouts(ctx)
	if err != nil {
		return nil, simpleOutput{}, err
	}

	for _, w := range workouts {
		if w.ID != input.ID {
			continue
		}
		if err := s.manager.DeleteWorkout(ctx, w); err != nil {
			return nil, simpleOutput{}, fmt.Errorf("failed to delete workout: %w", err)
		}
		return nil, simpleOutput{
			Message: fmt.Sprintf("Cancelled %s on %s %s", w.Title, w.Day, w.StartTime),
		}, nil
	}

	return nil, simpleOutput{}, fmt.Errorf("workout not found: %d", input.ID)
}

func (s *Server) handleGetSchedule(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, scheduleOutput, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, scheduleOutput{}, err
	}

	grid, err := s.manager.Schedule(ctx)
	if err != nil {
		return nil, scheduleOutput{}, err
	}

	return nil, scheduleOutput{
		Markdown: grid.Markdown(),
		Placed:   grid.Placed(),
		Unplaced: workoutItems(grid.Unplaced),
	}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, req *mcp.CallToolRequest, input updateProfileInput) (*mcp.CallToolResult, profileOutput, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, profileOutput{}, err
	}

	applyProfile(u, input)

	saved, err := s.manager.UpdateProfile(ctx, u, input.NewPassword)
	if err != nil {
		if errors.Is(err, session.ErrUsernameTaken) {
			return nil, profileOutput{}, fmt.Errorf("username %q is already taken", u.Username)
		}
		return nil, profileOutput{}, fmt.Errorf("failed to update profile: %w", err)
	}

	out := profileFor(saved)
	out.Message = "Profile updated"
	return nil, out, nil
}

func (s *Server) handleListNotifications(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, notificationsOutput, error) {
	return nil, notificationsOutput{Notifications: s.manager.Notifications()}, nil
}

// currentUser returns the logged-in member. The first "not logged in"
// after a failed login says so, then the attempt is forgotten.
func (s *Server) currentUser() (*models.User, error) {
	u, err := s.manager.CurrentUser()
	if err == nil {
		return u, nil
	}
	if s.manager.LoginAttempted() {
		s.manager.ResetLoginAttempt()
		return nil, fmt.Errorf("%w: last login attempt failed", err)
	}
	return nil, err
}

func applyProfile(u *models.User, input updateProfileInput) {
	if input.Username != nil {
		u.Username = *input.Username
	}
	if input.Email != nil {
		u.Email = *input.Email
	}
	if input.Name != nil {
		u.Name = *input.Name
	}
	if input.Surname != nil {
		u.Surname = *input.Surname
	}
	if input.Height != nil {
		u.Height = *input.Height
	}
	if input.Weight != nil {
		u.Weight = *input.Weight
	}
	if input.WeightGoal != nil {
		u.WeightGoal = *input.WeightGoal
	}
	if input.Likes != nil {
		u.Likes = []string{}
		for _, l := range input.Likes {
			u.AddLike(l)
		}
	}
	if input.ProfileImage != nil {
		u.WithProfileImage(*input.ProfileImage)
	}
}

func profileFor(u *models.User) profileOutput {
	out := profileOutput{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Surname:    u.Surname,
		Email:      u.Email,
		Height:     u.Height,
		Weight:     u.Weight,
		WeightGoal: u.WeightGoal,
		Likes:      u.Likes,
	}
	if u.ProfileImage != nil {
		out.ProfileImage = *u.ProfileImage
	}
	return out
}

func classItems(classes []models.ClassInfo) []classItem {
	items := make([]classItem, 0, len(classes))
	for _, c := range classes {
		day, start, end, _ := c.Slot()
		items = append(items, classItem{
			Title:       c.Title,
			Day:         day,
			Start:       start,
			End:         end,
			Trainer:     c.Trainer,
			Description: c.Description,
		})
	}
	return items
}

func workoutItems(workouts []*models.Workout) []workoutItem {
	items := make([]workoutItem, 0, len(workouts))
	for _, w := range workouts {
		items = append(items, workoutItem{
			ID:    w.ID,
			Title: w.Title,
			Day:   w.Day,
			Start: w.StartTime,
			End:   w.EndTime,
			Color: w.Color,
		})
	}
	return items
}
