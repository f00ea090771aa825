package user

import (
	"time"
)

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"` // Never expose password hash in JSON
	IsActive     bool       `json:"-"`
	IsStaff      bool       `json:"-"`
	IsSuperuser  bool       `json:"-"`
	LastLogin    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

// Profile is the public representation of a user: {email, name}.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Profile returns the fields a user may see about themselves.
func (u *User) Profile() Profile {
	return Profile{Email: u.Email, Name: u.Name}
}
