package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials is returned when Keycloak rejects the login.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrNotAuthenticated is returned when the session carries no access token.
	ErrNotAuthenticated = errors.New("auth: not authenticated")
)

// User is the operator identified by the access token.
type User struct {
	Subject  string
	Email    string
	Name     string
	Username string
	Roles    []string
	Expiry   time.Time
}

// DisplayName returns the best human readable name.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// HasRole reports whether the realm roles include role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
