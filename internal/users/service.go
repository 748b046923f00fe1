package users

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/meridianshop/meridian-admin/internal/rbac"
)

// Notifier delivers out-of-band notices to users about changes to their
// account. Implementations handle their own failures; an undeliverable
// notice never rolls back the change it describes.
type Notifier interface {
	AccessChanged(ctx context.Context, email, summary string)
}

// Service handles user administration and authorization snapshot
// resolution.
type Service struct {
	repo     RepositoryPort
	catalog  *rbac.Catalog
	notifier Notifier
	group    singleflight.Group
}

// NewService builds Service instance. The notifier may be nil.
func NewService(repo RepositoryPort, catalog *rbac.Catalog, notifier Notifier) *Service {
	return &Service{repo: repo, catalog: catalog, notifier: notifier}
}

// ListUsers returns one page of users and the total count.
func (s *Service) ListUsers(ctx context.Context, page, perPage int) ([]User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.repo.ListUsers(ctx, page, perPage)
}

// GetUser fetches one user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// AssignRole adds a role to the user. The change is only visible to the
// user's sessions after their next context refresh.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	if err := s.repo.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.notify(ctx, userID, "A role was added to your account.")
	return nil
}

// RemoveRole removes a role from the user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	if err := s.repo.RemoveRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.notify(ctx, userID, "A role was removed from your account.")
	return nil
}

// ListOverrides returns the user's permission overrides.
func (s *Service) ListOverrides(ctx context.Context, userID int64) ([]rbac.Override, error) {
	return s.repo.ListOverrides(ctx, userID)
}

// PutOverride stores one override after checking the key exists in the
// catalog.
func (s *Service) PutOverride(ctx context.Context, userID int64, ov rbac.Override) error {
	if !s.catalog.Has(ov.Key) {
		return fmt.Errorf("%w: %s", ErrUnknownPermission, ov.Key)
	}
	if err := s.repo.PutOverride(ctx, userID, ov); err != nil {
		return err
	}
	s.notify(ctx, userID, fmt.Sprintf("Your %q permission was adjusted.", ov.Key))
	return nil
}

// DeleteOverride removes one override.
func (s *Service) DeleteOverride(ctx context.Context, userID int64, key string) error {
	if err := s.repo.DeleteOverride(ctx, userID, key); err != nil {
		return err
	}
	s.notify(ctx, userID, fmt.Sprintf("Your %q permission adjustment was lifted.", key))
	return nil
}

func (s *Service) notify(ctx context.Context, userID int64, summary string) {
	if s.notifier == nil {
		return
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil || user.Email == "" {
		return
	}
	s.notifier.AccessChanged(ctx, user.Email, summary)
}

// ResolveContext builds the authorization snapshot for the user from the
// current role assignments, role grants and overrides. Concurrent
// resolutions for the same user share a single flight. Overrides are
// re-derived on every call; nothing sticks across role reassignment.
func (s *Service) ResolveContext(ctx context.Context, userID int64) (*rbac.Context, error) {
	v, err, _ := s.group.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		roles, err := s.repo.ListUserRoles(ctx, userID)
		if err != nil {
			return nil, err
		}
		codes := make([]string, 0, len(roles))
		for _, role := range roles {
			codes = append(codes, role.Code)
		}
		grants, err := s.repo.GrantsFor(ctx, codes)
		if err != nil {
			return nil, err
		}
		overrides, err := s.repo.ListOverrides(ctx, userID)
		if err != nil {
			return nil, err
		}
		return rbac.EffectivePermissions(roles, grants, overrides), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*rbac.Context), nil
}
