package users

import "errors"

var (
	ErrNotReady      = errors.New("user directory not loaded")
	ErrNotFound      = errors.New("user not found")
	ErrInvalidUser   = errors.New("invalid user entry")
	ErrDuplicateUser = errors.New("duplicate user")
)

type User struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	DisplayName  string `yaml:"display_name,omitempty"`
	Admin        bool   `yaml:"admin,omitempty"`
	PasswordHash string `yaml:"password,omitempty"`
}

// Label is the name shown in the navbar.
func (u User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}

type file struct {
	Users []User `yaml:"users"`
}
