// Package users manages admin accounts: role assignment, per-user
// permission overrides and resolution of the authorization snapshot
// consumed by the request guards and the screen resolver.
package users

import (
	"errors"
	"time"
)

// User represents an admin account under management.
type User struct {
	ID        int64
	Email     string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("users: not found")
	// ErrUnknownPermission rejects overrides referencing keys absent from
	// the catalog.
	ErrUnknownPermission = errors.New("users: unknown permission key")
)
