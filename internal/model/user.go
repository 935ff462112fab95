// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Email is the login key and is unique across all users. The stored email keeps
// the case it was registered with; lookups compare it exactly.
//
// PasswordHash carries the bcrypt output. The `json:"-"` tag keeps it out of
// every JSON view of the user, so handlers can encode a *User directly.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserUpdate lists the user attributes callers may set after (or during)
// registration. Anything not declared here cannot be changed from request data:
// email, id and the password hash are deliberately absent.
//
// A nil field means "leave unchanged".
type UserUpdate struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.AvatarURL == nil
}

// Apply copies the set fields of u onto user and reports whether any field
// actually changed.
func (u UserUpdate) Apply(user *User) bool {
	changed := false
	if u.Name != nil && *u.Name != user.Name {
		user.Name = *u.Name
		changed = true
	}
	if u.AvatarURL != nil && *u.AvatarURL != user.AvatarURL {
		user.AvatarURL = *u.AvatarURL
		changed = true
	}
	return changed
}
