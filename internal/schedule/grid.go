// ABOUTME: Weekly schedule grid that places booked workouts into half-hour slots.
// ABOUTME: Day and time labels are parsed into structured keys before matching.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/gym/internal/models"
)

const (
	firstSlotMinute = 8 * 60
	lastSlotMinute  = 17 * 60
	slotStep        = 30
)

// Days are the grid columns, Monday through Friday.
var Days = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
}

// Slots are the grid rows as minutes after midnight: 08:00, 08:30 ... 17:00.
var Slots = func() []int {
	var slots []int
	for m := firstSlotMinute; m <= lastSlotMinute; m += slotStep {
		slots = append(slots, m)
	}
	return slots
}()

// Key identifies a grid cell.
type Key struct {
	Weekday time.Weekday
	Minute  int
}

// String formats the key as "Mon 08:00".
func (k Key) String() string {
	return fmt.Sprintf("%s %s", k.Weekday.String()[:3], FormatMinute(k.Minute))
}

// Grid is a resolved weekly schedule. Cells is indexed [slot][day] in the
// order of Slots and Days; an empty cell is nil.
type Grid struct {
	Cells    [][]*models.Workout
	Unplaced []*models.Workout
}

// Resolve places each workout in the cell matching its day and start time.
// Workouts with unparsable labels, a start outside the grid, or a key
// already taken by an earlier workout are collected in Unplaced.
func Resolve(workouts []*models.Workout) *Grid {
	g := &Grid{Cells: make([][]*models.Workout, len(Slots))}
	for i := range g.Cells {
		g.Cells[i] = make([]*models.Workout, len(Days))
	}

	for _, w := range workouts {
		key, err := KeyFor(w.Day, w.StartTime)
		if err != nil {
			g.Unplaced = append(g.Unplaced, w)
			continue
		}
		row, col, ok := position(key)
		if !ok || g.Cells[row][col] != nil {
			g.Unplaced = append(g.Unplaced, w)
			continue
		}
		g.Cells[row][col] = w
	}

	return g
}

// Cell returns the workout at the given day and time labels, or nil.
func (g *Grid) Cell(day, start string) *models.Workout {
	key, err := KeyFor(day, start)
	if err != nil {
		return nil
	}
	row, col, ok := position(key)
	if !ok {
		return nil
	}
	return g.Cells[row][col]
}

// Placed returns the number of non-empty cells.
func (g *Grid) Placed() int {
	n := 0
	for _, row := range g.Cells {
		for _, w := range row {
			if w != nil {
				n++
			}
		}
	}
	return n
}

// KeyFor parses a day label and a start time label into a Key.
func KeyFor(day, start string) (Key, error) {
	wd, err := ParseDay(day)
	if err != nil {
		return Key{}, err
	}
	minute, err := ParseTime(start)
	if err != nil {
		return Key{}, err
	}
	return Key{Weekday: wd, Minute: minute}, nil
}

// ParseDay accepts short or long English weekday names in any case.
func ParseDay(label string) (time.Weekday, error) {
	s := strings.ToLower(strings.TrimSpace(label))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		long := strings.ToLower(wd.String())
		if s == long || s == long[:3] {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("parse day %q: unknown weekday", label)
}

// ParseTime accepts "H:MM" or "HH:MM" and returns minutes after midnight.
func ParseTime(label string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(label))
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", label, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinute formats minutes after midnight as "HH:MM".
func FormatMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

func position(k Key) (row, col int, ok bool) {
	col = -1
	for i, d := range Days {
		if d == k.Weekday {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, 0, false
	}
	if k.Minute < firstSlotMinute || k.Minute > lastSlotMinute || (k.Minute-firstSlotMinute)%slotStep != 0 {
		return 0, 0, false
	}
	return (k.Minute - firstSlotMinute) / slotStep, col, true
}
