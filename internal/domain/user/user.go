// Package user defines the caller identity model for authorization.
package user

import (
	"errors"
	"net/mail"
	"time"

	"github.com/cartforge/cartforge/internal/domain/tenant"
)

// Membership ties a user to one tenant with a set of roles scoped to that
// tenant. The tenant reference is never zero for a stored membership.
type Membership struct {
	Tenant tenant.ID `json:"tenant"`
	Roles  []string  `json:"roles,omitempty"`
}

// User represents an authenticated identity. Roles are free-form tags at the
// identity level; tenant-scoped roles live in Memberships.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	PasswordHash string       `json:"-"` // never serialized
	Roles        []string     `json:"roles,omitempty"`
	Memberships  []Membership `json:"tenants,omitempty"`
	Enabled      bool         `json:"enabled"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TenantIDs returns the tenants referenced by all memberships, regardless of
// role. Memberships with a zero tenant reference are skipped.
func (u *User) TenantIDs() []tenant.ID {
	if u == nil {
		return nil
	}
	var ids []tenant.ID
	for _, m := range u.Memberships {
		if !m.Tenant.IsZero() {
			ids = append(ids, m.Tenant)
		}
	}
	return ids
}

// CreateRequest is the input for registering a new user.
type CreateRequest struct {
	Email       string       `json:"email"`
	Name        string       `json:"name"`
	Password    string       `json:"password"`
	Roles       []string     `json:"roles,omitempty"`
	Memberships []Membership `json:"tenants,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("invalid email format")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	for _, m := range r.Memberships {
		if m.Tenant.IsZero() {
			return errors.New("membership tenant is required")
		}
	}
	return nil
}

// LoginRequest is the input for user authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that the LoginRequest has all required fields.
func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// LoginResponse is returned after successful authentication.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // seconds until the access token expires
	User        User   `json:"user"`
}
