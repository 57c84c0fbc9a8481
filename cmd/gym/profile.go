// ABOUTME: CLI commands for viewing and editing the member profile.
// ABOUTME: Only flags that are set are changed; --password replaces the password.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/gym/internal/models"
	"github.com/harperreed/gym/internal/session"
	"github.com/spf13/cobra"
)

var (
	profileUsername   string
	profileEmail      string
	profileName       string
	profileSurname    string
	profileHeight     float64
	profileWeight     float64
	profileWeightGoal float64
	profileLikes      string
	profileImage      string
	profilePassword   string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View or edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := requireUser()
		if err != nil {
			return err
		}
		printProfile(cmd, u)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Edit your profile",
	Long: `Edit your profile. Only the flags you pass are changed.

EXAMPLES:

  gym profile set --name Alice --surname Smith
  gym profile set --height 170 --weight 65 --weight-goal 60
  gym profile set --likes "yoga, running"     # replaces the list
  gym profile set --username alice2 --password n3w`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := requireUser()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("username") {
			u.Username = profileUsername
		}
		if flags.Changed("email") {
			u.Email = profileEmail
		}
		if flags.Changed("name") {
			u.Name = profileName
		}
		if flags.Changed("surname") {
			u.Surname = profileSurname
		}
		if flags.Changed("height") {
			u.Height = profileHeight
		}
		if flags.Changed("weight") {
			u.Weight = profileWeight
		}
		if flags.Changed("weight-goal") {
			u.WeightGoal = profileWeightGoal
		}
		if flags.Changed("likes") {
			u.Likes = []string{}
			for _, l := range strings.Split(profileLikes, ",") {
				u.AddLike(l)
			}
		}
		if flags.Changed("image") {
			u.WithProfileImage(profileImage)
		}

		saved, err := manager.UpdateProfile(cmd.Context(), u, profilePassword)
		if err != nil {
			if errors.Is(err, session.ErrUsernameTaken) {
				return fmt.Errorf("username %q is already taken", u.Username)
			}
			return fmt.Errorf("failed to update profile: %w", err)
		}

		color.Green("✓ Profile updated")
		printProfile(cmd, saved)
		return nil
	},
}

func printProfile(cmd *cobra.Command, u *models.User) {
	out := cmd.OutOrStdout()
	faint := color.New(color.Faint)

	row := func(label, value string) {
		fmt.Fprintf(out, "%s %s\n", faint.Sprint(padRight(label, 12)), value)
	}

	row("Username", u.Username)
	row("Name", strings.TrimSpace(u.Name+" "+u.Surname))
	row("Email", u.Email)
	row("Height", formatMeasure(u.Height, "cm"))
	row("Weight", formatMeasure(u.Weight, "kg"))
	row("Weight goal", formatMeasure(u.WeightGoal, "kg"))
	row("Likes", strings.Join(u.Likes, ", "))
	if u.ProfileImage != nil {
		row("Image", *u.ProfileImage)
	}
}

func formatMeasure(v float64, unit string) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVar(&profileUsername, "username", "", "new username")
	f.StringVar(&profileEmail, "email", "", "email address")
	f.StringVar(&profileName, "name", "", "first name")
	f.StringVar(&profileSurname, "surname", "", "surname")
	f.Float64Var(&profileHeight, "height", 0, "height in cm")
	f.Float64Var(&profileWeight, "weight", 0, "weight in kg")
	f.Float64Var(&profileWeightGoal, "weight-goal", 0, "target weight in kg")
	f.StringVar(&profileLikes, "likes", "", "comma-separated liked activities (replaces the list)")
	f.StringVar(&profileImage, "image", "", "profile image location (empty clears it)")
	f.StringVar(&profilePassword, "password", "", "new password")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
