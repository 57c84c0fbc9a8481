// ABOUTME: Workout model for booked gym classes.
// ABOUTME: A workout is one user's booking of a class slot with a display color.
package models

import "strings"

// Workout represents a class booked by a user on the weekly schedule.
type Workout struct {
	ID        int64  `json:"id" yaml:"id"`
	UserID    int64  `json:"user_id" yaml:"user_id"`
	Title     string `json:"title" yaml:"title"`
	Day       string `json:"day" yaml:"day"`
	StartTime string `json:"start_time" yaml:"start_time"`
	EndTime   string `json:"end_time" yaml:"end_time"`
	Color     string `json:"color" yaml:"color"`
}

// NewWorkout creates a Workout for userID. Labels are trimmed of
// incidental whitespace; the ID is assigned by the store on insert.
func NewWorkout(userID int64, title, day, start, end string) *Workout {
	return &Workout{
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Day:       strings.TrimSpace(day),
		StartTime: strings.TrimSpace(start),
		EndTime:   strings.TrimSpace(end),
	}
}

// WithColor sets the display color ("#RRGGBB").
func (w *Workout) WithColor(color string) *Workout {
	w.Color = color
	return w
}

// Key returns the booking tuple that must be unique per user.
func (w *Workout) Key() BookingKey {
	return BookingKey{
		UserID:    w.UserID,
		Title:     w.Title,
		Day:       w.Day,
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
	}
}

// BookingKey identifies a booking for duplicate detection.
type BookingKey struct {
	UserID    int64
	Title     string
	Day       string
	StartTime string
	EndTime   string
}
