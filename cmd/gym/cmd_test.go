// ABOUTME: Tests for CLI commands and helper functions.
// ABOUTME: Runs commands end-to-end against a temporary data and config directory.
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/harperreed/gym/internal/config"
	"github.com/harperreed/gym/internal/models"
	"github.com/harperreed/gym/internal/schedule"
	"github.com/harperreed/gym/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupTestCLI points the CLI at fresh temporary directories.
func setupTestCLI(t *testing.T) {
	t.Helper()

	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GYM_DATA_DIR", "")
	t.Setenv("GYM_LOG_LEVEL", "error")
	t.Setenv("GYM_LOG_FORMAT", "")

	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = prev
		_ = closeSession()
	})
}

// resetFlags restores every flag to its default between executions.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("gym %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// openTestStore opens the CLI's database from the test side.
func openTestStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(storage.DefaultDBPath())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func signupAndLogin(t *testing.T, username string) {
	t.Helper()
	mustRun(t, "signup", username, username+"@example.com", "--password", "p1")
	mustRun(t, "login", username, "--password", "p1")
}

func storedUser(t *testing.T, db *storage.DB, username string) *models.User {
	t.Helper()
	u, err := db.GetUser(context.Background(), username, "p1")
	if err != nil {
		t.Fatalf("GetUser(%q) failed: %v", username, err)
	}
	return u
}

func TestSignupLoginWhoami(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")

	out := mustRun(t, "whoami")
	if !strings.Contains(out, "alice") {
		t.Errorf("whoami output = %q, want alice", out)
	}

	saved, err := config.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if saved == nil || saved.SessionID == "" {
		t.Fatalf("Expected saved session, got %+v", saved)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	setupTestCLI(t)

	mustRun(t, "signup", "alice", "a@x.com", "-p", "p1")
	_, err := runCLI(t, "signup", "alice", "b@x.com", "-p", "p2")
	if err == nil || !strings.Contains(err.Error(), "already taken") {
		t.Errorf("Expected username taken error, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")

	_, err := runCLI(t, "login", "alice", "--password", "wrong")
	if err == nil || err.Error() != "invalid username or password" {
		t.Errorf("Expected invalid credentials error, got %v", err)
	}

	saved, err := config.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if saved != nil {
		t.Error("Expected failed login to clear the saved session")
	}

	if _, err := runCLI(t, "whoami"); err == nil {
		t.Error("Expected whoami to fail after failed login")
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	setupTestCLI(t)

	for _, args := range [][]string{
		{"workouts"},
		{"schedule"},
		{"join", "yoga"},
		{"profile", "show"},
		{"export", "markdown"},
	} {
		_, err := runCLI(t, args...)
		if err == nil || !strings.Contains(err.Error(), "not logged in") {
			t.Errorf("gym %s: expected not logged in error, got %v", strings.Join(args, " "), err)
		}
	}
}

func TestLogout(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")
	mustRun(t, "logout")

	if _, err := runCLI(t, "whoami"); err == nil {
		t.Error("Expected whoami to fail after logout")
	}
}

func TestJoinAndSchedule(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")
	mustRun(t, "join", "yoga")
	mustRun(t, "book", "Open Gym", "Tue", "08:30", "09:30")
	mustRun(t, "book", "Late Swim", "Mon", "19:00", "20:00")

	out := mustRun(t, "schedule", "--markdown")
	if !strings.Contains(out, "| 11:00 | Yoga (11:00-12:00) |") {
		t.Errorf("Expected Yoga on Monday 11:00, got:\n%s", out)
	}
	if !strings.Contains(out, "| 08:30 |  | Open Gym (08:30-09:30) |") {
		t.Errorf("Expected Open Gym on Tuesday 08:30, got:\n%s", out)
	}
	if !strings.Contains(out, "- Late Swim: Mon 19:00-20:00") {
		t.Errorf("Expected Late Swim to be unplaced, got:\n%s", out)
	}

	out = mustRun(t, "schedule")
	if !strings.Contains(out, "Not on the grid:") {
		t.Errorf("Expected unplaced section in grid output, got:\n%s", out)
	}

	out = mustRun(t, "workouts")
	for _, title := range []string{"Yoga", "Open Gym", "Late Swim"} {
		if !strings.Contains(out, title) {
			t.Errorf("Expected %q in workouts output, got:\n%s", title, out)
		}
	}
}

func TestJoinDuplicateKeepsOneBooking(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")
	mustRun(t, "join", "Yoga")
	mustRun(t, "join", "yoga")

	db := openTestStore(t)
	u := storedUser(t, db, "alice")
	workouts, err := db.ListWorkouts(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ListWorkouts failed: %v", err)
	}
	if len(workouts) != 1 {
		t.Errorf("Expected 1 workout, got %d", len(workouts))
	}
}

func TestJoinUnknownClass(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")
	_, err := runCLI(t, "join", "underwater-basket-weaving")
	if err == nil || !strings.Contains(err.Error(), "unknown class") {
		t.Errorf("Expected unknown class error, got %v", err)
	}
}

func TestDropWorkout(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")
	mustRun(t, "join", "boxing")

	db := openTestStore(t)
	u := storedUser(t, db, "alice")
	workouts, err := db.ListWorkouts(context.Background(), u.ID)
	if err != nil || len(workouts) != 1 {
		t.Fatalf("Expected 1 workout, got %d (err %v)", len(workouts), err)
	}

	id := workouts[0].ID
	if _, err := runCLI(t, "drop", "9999"); err == nil {
		t.Error("Expected error dropping unknown workout")
	}
	if _, err := runCLI(t, "drop", "abc"); err == nil {
		t.Error("Expected error for non-numeric id")
	}

	mustRun(t, "drop", strconv.FormatInt(id, 10))

	workouts, err = db.ListWorkouts(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ListWorkouts failed: %v", err)
	}
	if len(workouts) != 0 {
		t.Errorf("Expected no workouts after drop, got %d", len(workouts))
	}
}

func TestDropOtherUsersWorkout(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")
	mustRun(t, "join", "yoga")
	signupAndLogin(t, "bob")

	if _, err := runCLI(t, "drop", "1"); err == nil {
		t.Error("Expected bob to be unable to drop alice's workout")
	}

	db := openTestStore(t)
	u := storedUser(t, db, "alice")
	workouts, err := db.ListWorkouts(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ListWorkouts failed: %v", err)
	}
	if len(workouts) != 1 {
		t.Errorf("Expected alice to keep 1 workout, got %d", len(workouts))
	}
}

func TestProfileSet(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")
	mustRun(t, "profile", "set", "--height", "170", "--likes", "yoga, running,,yoga")
	mustRun(t, "profile", "set", "--name", "Alice")

	db := openTestStore(t)
	u := storedUser(t, db, "alice")
	if u.Height != 170 {
		t.Errorf("Height = %v, want 170", u.Height)
	}
	if u.Name != "Alice" {
		t.Errorf("Name = %q, want Alice", u.Name)
	}
	if strings.Join(u.Likes, ",") != "yoga,running" {
		t.Errorf("Likes = %v, want [yoga running]", u.Likes)
	}

	out := mustRun(t, "profile", "show")
	if !strings.Contains(out, "170.0 cm") {
		t.Errorf("Expected height in profile output, got:\n%s", out)
	}
}

func TestProfileSetUsernameTaken(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "bob")
	signupAndLogin(t, "alice")

	_, err := runCLI(t, "profile", "set", "--username", "bob")
	if err == nil || !strings.Contains(err.Error(), "already taken") {
		t.Errorf("Expected username taken error, got %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")
	mustRun(t, "join", "zumba")

	// Without --yes and no input the prompt declines.
	mustRun(t, "delete-account")
	mustRun(t, "whoami")

	mustRun(t, "delete-account", "--yes")

	saved, err := config.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if saved != nil {
		t.Error("Expected session to be cleared")
	}

	db := openTestStore(t)
	if _, err := db.GetUser(context.Background(), "alice", "p1"); err == nil {
		t.Error("Expected alice to be deleted")
	}
}

func TestStaleSessionIsCleared(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")

	db := openTestStore(t)
	u := storedUser(t, db, "alice")
	if err := db.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := runCLI(t, "whoami"); err == nil {
		t.Error("Expected whoami to fail for a deleted user")
	}

	saved, err := config.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if saved != nil {
		t.Error("Expected stale session to be cleared")
	}
}

func TestClassesAndNotifications(t *testing.T) {
	setupTestCLI(t)

	out := mustRun(t, "classes")
	for _, c := range models.Classes() {
		if !strings.Contains(out, c.Title) {
			t.Errorf("Expected %q in classes output", c.Title)
		}
	}

	out = mustRun(t, "notifications")
	for _, n := range models.Notifications() {
		if !strings.Contains(out, n.Title) {
			t.Errorf("Expected %q in notifications output", n.Title)
		}
	}
}

func TestExportImport(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")
	mustRun(t, "join", "pilates")

	out := mustRun(t, "export", "yaml")
	if strings.Contains(out, "password") {
		t.Error("YAML export must not contain password hashes")
	}
	if !strings.Contains(out, "Pilates") {
		t.Errorf("Expected Pilates in YAML export, got:\n%s", out)
	}

	out = mustRun(t, "export", "markdown")
	if !strings.Contains(out, "## Schedule for alice") {
		t.Errorf("Expected schedule header in markdown export, got:\n%s", out)
	}

	if _, err := runCLI(t, "export", "csv"); err == nil {
		t.Error("Expected error for unknown format")
	}

	backup := filepath.Join(t.TempDir(), "backup.json")
	mustRun(t, "export", "json", "-o", backup)
	if _, err := os.Stat(backup); err != nil {
		t.Fatalf("Expected backup file: %v", err)
	}

	// Restore into an empty installation.
	_ = closeSession()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	mustRun(t, "import", backup)
	mustRun(t, "login", "alice", "--password", "p1")

	out = mustRun(t, "workouts")
	if !strings.Contains(out, "Pilates") {
		t.Errorf("Expected Pilates after import, got:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"", 5, ""},
		{"Café au lait", 8, "Café ..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"abc", 5, "abc  "},
		{"abcde", 5, "abcde"},
		{"abcdef", 5, "abcdef"},
		{"", 3, "   "},
		{"·", 3, "·  "},
		{"Zoë", 5, "Zoë  "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.length); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		r, g, b int
		ok      bool
	}{
		{"#FF8000", 255, 128, 0, true},
		{"#abcdef", 171, 205, 239, true},
		{"FF8000", 0, 0, 0, false},
		{"#FFF", 0, 0, 0, false},
		{"#GGGGGG", 0, 0, 0, false},
	}

	for _, tt := range tests {
		r, g, b, ok := parseHexColor(tt.input)
		if ok != tt.ok || r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("parseHexColor(%q) = (%d, %d, %d, %v), want (%d, %d, %d, %v)",
				tt.input, r, g, b, ok, tt.r, tt.g, tt.b, tt.ok)
		}
	}
}

func TestScheduleGridColumnsAlign(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")
	mustRun(t, "join", "yoga")

	out := mustRun(t, "schedule")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	width := utf8.RuneCountInString(lines[0])
	for _, line := range lines[1 : 1+len(schedule.Slots)] {
		if got := utf8.RuneCountInString(line); got != width {
			t.Errorf("Row %q is %d columns wide, want %d", line, got, width)
		}
	}
}

func TestImportFailureLeavesStoreUntouched(t *testing.T) {
	setupTestCLI(t)

	signupAndLogin(t, "alice")

	backup := filepath.Join(t.TempDir(), "conflict.json")
	data := `{"version":"1.0","users":[` +
		`{"id":50,"username":"carol","email":"c@example.com"},` +
		`{"id":51,"username":"alice","email":"a2@example.com"}]}`
	if err := os.WriteFile(backup, []byte(data), 0600); err != nil {
		t.Fatalf("Failed to write backup: %v", err)
	}

	_, err := runCLI(t, "import", backup)
	if err == nil || !strings.Contains(err.Error(), "import failed") {
		t.Fatalf("Expected import to fail, got %v", err)
	}

	db := openTestStore(t)
	count, err := db.IsUsernameTaken(context.Background(), "carol")
	if err != nil {
		t.Fatalf("IsUsernameTaken failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no carol after failed import, found %d", count)
	}
}

func TestMCPUsesSharedStore(t *testing.T) {
	if !sharedStoreCommands[mcpCmd.Name()] {
		t.Error("Expected the mcp command to use the shared store")
	}
	if sharedStoreCommands[workoutsCmd.Name()] {
		t.Error("Expected short-lived commands to open their own store")
	}
}

func TestFormatMeasure(t *testing.T) {
	if got := formatMeasure(0, "kg"); got != "-" {
		t.Errorf("formatMeasure(0) = %q, want -", got)
	}
	if got := formatMeasure(65.5, "kg"); got != "65.5 kg" {
		t.Errorf("formatMeasure(65.5) = %q, want 65.5 kg", got)
	}
}

func TestRootCmd(t *testing.T) {
	if rootCmd.Use != "gym" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "gym")
	}
	if rootCmd.Short == "" {
		t.Error("Expected rootCmd.Short to be non-empty")
	}
}

func TestCommandAliases(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		alias string
	}{
		{classesCmd, "catalog"},
		{workoutsCmd, "ls"},
		{dropCmd, "cancel"},
		{dropCmd, "rm"},
		{scheduleCmd, "week"},
		{notificationsCmd, "inbox"},
	}

	for _, tt := range tests {
		found := false
		for _, a := range tt.cmd.Aliases {
			if a == tt.alias {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected %s to have alias %q", tt.cmd.Name(), tt.alias)
		}
	}
}

func TestExportCmdValidArgs(t *testing.T) {
	want := map[string]bool{"json": true, "yaml": true, "markdown": true}
	for _, v := range exportCmd.ValidArgs {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Errorf("exportCmd.ValidArgs missing %v", want)
	}

	flag := exportCmd.Flags().Lookup("output")
	if flag == nil || flag.Shorthand != "o" {
		t.Error("Expected --output/-o flag on export")
	}
}
