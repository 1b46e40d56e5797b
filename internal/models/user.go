package models

import "time"

type User struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	Role      string    `json:"role" yaml:"role"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
}

// UserSummary holds the display fields of a user.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Identity is the authenticated caller attached to a request by the credential guard.
type Identity struct {
	UserID int64
	Role   string
}

// HasRole reports whether the caller acts as role.
func (i Identity) HasRole(role string) bool { return i.Role == role }
