// ABOUTME: Export and import functionality for gym data.
// ABOUTME: Supports JSON and YAML exports of users and their booked workouts.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/gym/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion identifies the export file layout.
const ExportVersion = "1.0"

// ExportData represents the full export format for gym data.
type ExportData struct {
	Version    string            `json:"version" yaml:"version"`
	ExportedAt time.Time         `json:"exported_at" yaml:"exported_at"`
	Tool       string            `json:"tool" yaml:"tool"`
	Users      []*models.User    `json:"users" yaml:"users"`
	Workouts   []*models.Workout `json:"workouts" yaml:"workouts"`
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	users, err := d.listUsers(ctx)
	if err != nil {
		return nil, err
	}

	workouts, err := d.listAllWorkouts(ctx)
	if err != nil {
		return nil, err
	}

	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Tool:       "gym",
		Users:      users,
		Workouts:   workouts,
	}, nil
}

// ImportData imports users, then workouts, keeping their IDs. The import
// is a single transaction: on any error nothing is written. Live queries
// are refreshed after the commit.
func (d *DB) ImportData(ctx context.Context, data *ExportData) error {
	if data.Version != "" && data.Version != ExportVersion {
		return fmt.Errorf("unsupported export version %q", data.Version)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range data.Users {
		if err := insertUser(ctx, tx, u); err != nil {
			return fmt.Errorf("import user %s: %w", u.Username, err)
		}
	}

	touched := make(map[int64]struct{})
	for _, w := range data.Workouts {
		if err := insertWorkout(ctx, tx, w); err != nil {
			return fmt.Errorf("import workout %d: %w", w.ID, err)
		}
		touched[w.UserID] = struct{}{}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	for userID := range touched {
		d.notifyWorkouts(ctx, userID)
	}
	d.logger.Info("import committed", "users", len(data.Users), "workouts", len(data.Workouts))
	return nil
}

// DecodeJSON parses a JSON export.
func DecodeJSON(data []byte) (*ExportData, error) {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return &exportData, nil
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML, with workouts nested under their owner.
func (d *DB) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string     `yaml:"version"`
		ExportedAt string     `yaml:"exported_at"`
		Tool       string     `yaml:"tool"`
		Users      []yamlUser `yaml:"users"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Users:      make([]yamlUser, 0, len(data.Users)),
	}

	byUser := make(map[int64][]yamlWorkout)
	for _, w := range data.Workouts {
		byUser[w.UserID] = append(byUser[w.UserID], yamlWorkout{
			ID:    w.ID,
			Title: w.Title,
			Day:   w.Day,
			Start: w.StartTime,
			End:   w.EndTime,
			Color: w.Color,
		})
	}

	for _, u := range data.Users {
		yu := yamlUser{
			ID:         u.ID,
			Username:   u.Username,
			Name:       u.Name,
			Surname:    u.Surname,
			Email:      u.Email,
			Height:     u.Height,
			Weight:     u.Weight,
			WeightGoal: u.WeightGoal,
			Likes:      u.Likes,
			Workouts:   byUser[u.ID],
		}
		if u.ProfileImage != nil {
			yu.ProfileImage = *u.ProfileImage
		}
		yamlData.Users = append(yamlData.Users, yu)
	}

	return yaml.Marshal(yamlData)
}

type yamlUser struct {
	ID           int64         `yaml:"id"`
	Username     string        `yaml:"username"`
	Name         string        `yaml:"name,omitempty"`
	Surname      string        `yaml:"surname,omitempty"`
	Email        string        `yaml:"email"`
	Height       float64       `yaml:"height,omitempty"`
	Weight       float64       `yaml:"weight,omitempty"`
	WeightGoal   float64       `yaml:"weight_goal,omitempty"`
	Likes        []string      `yaml:"likes,omitempty"`
	ProfileImage string        `yaml:"profile_image,omitempty"`
	Workouts     []yamlWorkout `yaml:"workouts,omitempty"`
}

type yamlWorkout struct {
	ID    int64  `yaml:"id"`
	Title string `yaml:"title"`
	Day   string `yaml:"day"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Color string `yaml:"color"`
}

// ImportJSON imports data from JSON bytes.
func (d *DB) ImportJSON(ctx context.Context, data []byte) error {
	exportData, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	return d.ImportData(ctx, exportData)
}
