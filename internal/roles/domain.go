// Package roles administers the role store: role lifecycle, grant
// replacement and activation. All decisions are synchronous over
// already-fetched data; persistence I/O lives in the repository.
package roles

import "errors"

var (
	// ErrNotFound indicates the requested role does not exist.
	ErrNotFound = errors.New("roles: not found")
	// ErrDuplicateCode indicates another role already uses the code.
	ErrDuplicateCode = errors.New("roles: duplicate code")
	// ErrRoleAssigned rejects deleting a role while users still hold it.
	ErrRoleAssigned = errors.New("roles: role assigned to users")
	// ErrUnknownPermission rejects grants referencing keys absent from the
	// catalog.
	ErrUnknownPermission = errors.New("roles: unknown permission key")
)
