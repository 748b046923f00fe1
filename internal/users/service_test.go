package users

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianshop/meridian-admin/internal/rbac"
)

type mockRepository struct {
	users     map[int64]User
	userRoles map[int64][]rbac.Role
	overrides map[int64][]rbac.Override
	grants    rbac.RolePermissionMap

	resolveCalls atomic.Int64
	resolveGate  chan struct{}
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:     make(map[int64]User),
		userRoles: make(map[int64][]rbac.Role),
		overrides: make(map[int64][]rbac.Override),
		grants:    make(rbac.RolePermissionMap),
	}
}

func (m *mockRepository) ListUsers(ctx context.Context, page, perPage int) ([]User, int, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(m.users), nil
}

func (m *mockRepository) GetUser(ctx context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *mockRepository) ListUserRoles(ctx context.Context, userID int64) ([]rbac.Role, error) {
	m.resolveCalls.Add(1)
	if m.resolveGate != nil {
		<-m.resolveGate
	}
	return m.userRoles[userID], nil
}

func (m *mockRepository) AssignRole(ctx context.Context, userID, roleID int64) error {
	return nil
}

func (m *mockRepository) RemoveRole(ctx context.Context, userID, roleID int64) error {
	return nil
}

func (m *mockRepository) ListOverrides(ctx context.Context, userID int64) ([]rbac.Override, error) {
	return m.overrides[userID], nil
}

func (m *mockRepository) PutOverride(ctx context.Context, userID int64, ov rbac.Override) error {
	m.overrides[userID] = append(m.overrides[userID], ov)
	return nil
}

func (m *mockRepository) DeleteOverride(ctx context.Context, userID int64, key string) error {
	kept := m.overrides[userID][:0]
	for _, ov := range m.overrides[userID] {
		if ov.Key != key {
			kept = append(kept, ov)
		}
	}
	m.overrides[userID] = kept
	return nil
}

func (m *mockRepository) GrantsFor(ctx context.Context, roleCodes []string) (rbac.RolePermissionMap, error) {
	out := make(rbac.RolePermissionMap, len(roleCodes))
	for _, code := range roleCodes {
		if set, ok := m.grants[code]; ok {
			out[code] = set
		}
	}
	return out, nil
}

func testCatalog(t *testing.T) *rbac.Catalog {
	t.Helper()
	catalog, err := rbac.NewCatalog([]rbac.Permission{
		{Key: "products.view", Group: "catalog", Label: "View products"},
		{Key: "products.edit", Group: "catalog", Label: "Edit products", Order: 1},
		{Key: "orders.refund", Group: "orders", Label: "Refund orders"},
	})
	require.NoError(t, err)
	return catalog
}

func TestResolveContextComposesRolesAndOverrides(t *testing.T) {
	repo := newMockRepository()
	repo.userRoles[7] = []rbac.Role{
		{Code: "staff", Priority: 1},
		{Code: "manager", Priority: 5},
	}
	repo.grants = rbac.RolePermissionMap{
		"staff":   {"products.view": nil, "products.edit": map[string]any{"own": true}},
		"manager": {"products.edit": nil, "orders.refund": nil},
	}
	repo.overrides[7] = []rbac.Override{{Key: "orders.refund", Revoke: true}}

	svc := NewService(repo, testCatalog(t), nil)
	ctx, err := svc.ResolveContext(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, []string{"staff", "manager"}, ctx.Roles)
	assert.True(t, ctx.Granted("products.view"))
	assert.False(t, ctx.Granted("orders.refund"), "override revoke wins")

	scope, ok := ctx.GrantedScope("products.edit")
	require.True(t, ok)
	assert.Equal(t, true, scope, "higher priority role's plain grant overwrites the scoped one")
}

func TestResolveContextSharesConcurrentFlights(t *testing.T) {
	repo := newMockRepository()
	repo.userRoles[3] = []rbac.Role{{Code: "staff", Priority: 1}}
	repo.grants = rbac.RolePermissionMap{"staff": {"products.view": nil}}
	repo.resolveGate = make(chan struct{})

	svc := NewService(repo, testCatalog(t), nil)

	var wg sync.WaitGroup
	results := make([]*rbac.Context, 8)
	errs := make([]error, len(results))
	for i := 0; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.ResolveContext(context.Background(), 3)
		}(i)
	}

	// Let every goroutine pile onto the in-flight resolution, then release.
	require.Eventually(t, func() bool {
		return repo.resolveCalls.Load() >= 1
	}, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(repo.resolveGate)
	wg.Wait()

	assert.Equal(t, int64(1), repo.resolveCalls.Load(), "one repository round-trip for concurrent callers")
	for i, ctx := range results {
		require.NoError(t, errs[i])
		require.NotNil(t, ctx)
		assert.True(t, ctx.Granted("products.view"))
	}
}

func TestResolveContextRefreshPicksUpChanges(t *testing.T) {
	repo := newMockRepository()
	repo.userRoles[5] = []rbac.Role{{Code: "staff", Priority: 1}}
	repo.grants = rbac.RolePermissionMap{"staff": {"products.view": nil}}

	svc := NewService(repo, testCatalog(t), nil)

	first, err := svc.ResolveContext(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, first.Granted("products.edit"))

	repo.grants["staff"]["products.edit"] = nil
	second, err := svc.ResolveContext(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, second.Granted("products.edit"), "each resolution reads current data")
}

func TestPutOverrideValidatesKey(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, testCatalog(t), nil)

	err := svc.PutOverride(context.Background(), 9, rbac.Override{Key: "products.fly"})
	assert.ErrorIs(t, err, ErrUnknownPermission)
	assert.Empty(t, repo.overrides[9])

	err = svc.PutOverride(context.Background(), 9, rbac.Override{Key: "products.view"})
	require.NoError(t, err)
	assert.Len(t, repo.overrides[9], 1)
}

type mockNotifier struct {
	emails    []string
	summaries []string
}

func (m *mockNotifier) AccessChanged(ctx context.Context, email, summary string) {
	m.emails = append(m.emails, email)
	m.summaries = append(m.summaries, summary)
}

func TestAccessChangesNotifyUser(t *testing.T) {
	repo := newMockRepository()
	repo.users[4] = User{ID: 4, Email: "staff@meridian.local"}
	notifier := &mockNotifier{}
	svc := NewService(repo, testCatalog(t), notifier)

	require.NoError(t, svc.AssignRole(context.Background(), 4, 2))
	require.NoError(t, svc.PutOverride(context.Background(), 4, rbac.Override{Key: "products.view"}))
	require.NoError(t, svc.DeleteOverride(context.Background(), 4, "products.view"))
	require.NoError(t, svc.RemoveRole(context.Background(), 4, 2))

	require.Len(t, notifier.emails, 4)
	for _, email := range notifier.emails {
		assert.Equal(t, "staff@meridian.local", email)
	}
	assert.Contains(t, notifier.summaries[1], "products.view")
}

func TestNotifySkippedForRejectedOverride(t *testing.T) {
	repo := newMockRepository()
	repo.users[4] = User{ID: 4, Email: "staff@meridian.local"}
	notifier := &mockNotifier{}
	svc := NewService(repo, testCatalog(t), notifier)

	err := svc.PutOverride(context.Background(), 4, rbac.Override{Key: "products.fly"})
	assert.ErrorIs(t, err, ErrUnknownPermission)
	assert.Empty(t, notifier.emails)
}

func TestListUsersClampsPaging(t *testing.T) {
	repo := newMockRepository()
	repo.users[1] = User{ID: 1, Email: "a@example.com"}
	svc := NewService(repo, testCatalog(t), nil)

	_, total, err := svc.ListUsers(context.Background(), -3, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
