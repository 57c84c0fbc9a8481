// ABOUTME: Static class catalog and notification feed.
// ABOUTME: Reference data offered by the gym; never persisted.
package models

import (
	"fmt"
	"strings"
)

// ClassInfo describes a class the gym offers.
type ClassInfo struct {
	Title       string `json:"title"`
	Schedule    string `json:"schedule"` // "Mon : 11:00 - 12:00"
	Trainer     string `json:"trainer"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Slot parses Schedule into day, start and end labels.
func (c ClassInfo) Slot() (day, start, end string, err error) {
	dayPart, timePart, ok := strings.Cut(c.Schedule, ":")
	if !ok {
		return "", "", "", fmt.Errorf("invalid schedule %q", c.Schedule)
	}
	startPart, endPart, ok := strings.Cut(timePart, "-")
	if !ok {
		return "", "", "", fmt.Errorf("invalid schedule %q", c.Schedule)
	}
	day = strings.TrimSpace(dayPart)
	start = strings.TrimSpace(startPart)
	end = strings.TrimSpace(endPart)
	if day == "" || start == "" || end == "" {
		return "", "", "", fmt.Errorf("invalid schedule %q", c.Schedule)
	}
	return day, start, end, nil
}

// Classes returns the gym's class catalog.
func Classes() []ClassInfo {
	return []ClassInfo{
		{
			Title:       "Yoga",
			Schedule:    "Mon : 11:00 - 12:00",
			Trainer:     "Edward",
			Description: "Yoga is a practice that connects the body, breath, and mind. It uses physical postures, breathing exercises, and meditation to improve overall health.",
			Image:       "yoga",
		},
		{
			Title:       "Pilates",
			Schedule:    "Tue : 09:00 - 10:00",
			Trainer:     "Alice",
			Description: "Pilates is a method of exercise that consists of low-impact flexibility and muscular strength and endurance movements.",
			Image:       "pilates",
		},
		{
			Title:       "Zumba",
			Schedule:    "Wed : 17:00 - 18:00",
			Trainer:     "John",
			Description: "Zumba is a fitness program that combines Latin and international music with dance moves.",
			Image:       "zumba",
		},
		{
			Title:       "Cycling",
			Schedule:    "Fri : 08:00 - 09:00",
			Trainer:     "Michael",
			Description: "Cycling classes are high-intensity workouts on stationary bikes, combining cardiovascular training with strength training.",
			Image:       "cycling",
		},
		{
			Title:       "Boxing",
			Schedule:    "Thu : 10:00 - 11:00",
			Trainer:     "Sara",
			Description: "Boxing workouts are high-intensity workouts that combine strength training and cardio exercise.",
			Image:       "boxing",
		},
	}
}

// FindClass looks up a catalog class by title, case-insensitively.
func FindClass(title string) (ClassInfo, bool) {
	for _, c := range Classes() {
		if strings.EqualFold(c.Title, strings.TrimSpace(title)) {
			return c, true
		}
	}
	return ClassInfo{}, false
}

// Notification is an entry in the member's notification feed.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// Notifications returns the notification feed.
func Notifications() []Notification {
	return []Notification{
		{"Workout Reminder", "Don't forget your workout at 5 PM today!", "10 minutes ago"},
		{"New Message", "You have a new message from your coach.", "1 hour ago"},
		{"Achievement Unlocked", "Congratulations! You have completed 10 workouts!", "2 days ago"},
		{"Membership Renewal", "Your gym membership is due for renewal.", "1 week ago"},
	}
}
