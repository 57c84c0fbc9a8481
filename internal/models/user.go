// ABOUTME: User model for gym members.
// ABOUTME: Holds profile fields and the bcrypt password hash.
package models

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User represents a registered gym member.
type User struct {
	ID           int64    `json:"id" yaml:"id"`
	Username     string   `json:"username" yaml:"username"`
	PasswordHash string   `json:"password_hash" yaml:"password_hash"`
	Name         string   `json:"name" yaml:"name"`
	Surname      string   `json:"surname" yaml:"surname"`
	Email        string   `json:"email" yaml:"email"`
	Height       float64  `json:"height" yaml:"height"`
	Weight       float64  `json:"weight" yaml:"weight"`
	WeightGoal   float64  `json:"weight_goal" yaml:"weight_goal"`
	Likes        []string `json:"likes" yaml:"likes"`
	ProfileImage *string  `json:"profile_image,omitempty" yaml:"profile_image,omitempty"`
}

// NewUser creates a User with empty measurements and no likes.
// The ID is assigned by the store on insert.
func NewUser(username, email string) *User {
	return &User{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Likes:    []string{},
	}
}

// WithName sets the first name and surname.
func (u *User) WithName(name, surname string) *User {
	u.Name = name
	u.Surname = surname
	return u
}

// WithMeasurements sets height, weight and weight goal.
func (u *User) WithMeasurements(height, weight, weightGoal float64) *User {
	u.Height = height
	u.Weight = weight
	u.WeightGoal = weightGoal
	return u
}

// WithProfileImage sets the profile image location. An empty string clears it.
func (u *User) WithProfileImage(location string) *User {
	if location == "" {
		u.ProfileImage = nil
		return u
	}
	u.ProfileImage = &location
	return u
}

// AddLike appends a like, ignoring blanks and exact duplicates.
func (u *User) AddLike(like string) *User {
	like = strings.TrimSpace(like)
	if like == "" {
		return u
	}
	for _, l := range u.Likes {
		if l == like {
			return u
		}
	}
	u.Likes = append(u.Likes, like)
	return u
}

// RemoveLike removes every occurrence of like.
func (u *User) RemoveLike(like string) *User {
	kept := u.Likes[:0]
	for _, l := range u.Likes {
		if l != like {
			kept = append(kept, l)
		}
	}
	u.Likes = kept
	return u
}

// SetPassword replaces the stored hash with a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	if password == "" {
		return errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Clone returns a deep copy, so callers can edit a profile without
// mutating the published current user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Likes = append([]string{}, u.Likes...)
	if u.ProfileImage != nil {
		img := *u.ProfileImage
		c.ProfileImage = &img
	}
	return &c
}
