package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardedProbe(t *testing.T, mw func(http.Handler) http.Handler, authz *Context) (*httptest.ResponseRecorder, *MatchedScope) {
	t.Helper()
	var captured *MatchedScope
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ms, ok := ScopeFromContext(r.Context()); ok {
			captured = &ms
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req = req.WithContext(ContextWithAuthz(req.Context(), authz))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func TestMiddlewareUnauthenticated(t *testing.T) {
	m := Middleware{}
	rec, _ := guardedProbe(t, m.RequireAny("products.view"), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthenticated")
}

func TestMiddlewareForbidden(t *testing.T) {
	m := Middleware{}
	authz := &Context{Roles: []string{"staff"}, Permissions: map[string]Scope{"orders.view": true}}
	rec, _ := guardedProbe(t, m.RequireAny("products.view"), authz)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Forbidden")
}

func TestMiddlewareAttachesMatchedScope(t *testing.T) {
	m := Middleware{}
	authz := &Context{
		Roles:       []string{"staff"},
		Permissions: map[string]Scope{"products.edit": map[string]any{"own": true}},
	}
	rec, scope := guardedProbe(t, m.Require("products.edit"), authz)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, scope)
	assert.Equal(t, "products.edit", scope.Key)
	assert.Equal(t, map[string]any{"own": true}, scope.Scope)
}

func TestMiddlewareRequireRole(t *testing.T) {
	m := Middleware{}
	authz := &Context{Roles: []string{"manager"}}

	rec, scope := guardedProbe(t, m.RequireRole("manager"), authz)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, scope, "role guards attach no permission scope")

	rec, _ = guardedProbe(t, m.RequireRole("owner"), authz)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddlewareRequireAll(t *testing.T) {
	m := Middleware{}
	authz := &Context{
		Roles:       []string{"manager"},
		Permissions: map[string]Scope{"orders.view": true, "orders.ship": true},
	}

	rec, _ := guardedProbe(t, m.RequireAll("orders.view", "orders.ship"), authz)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = guardedProbe(t, m.RequireAll("orders.view", "orders.refund"), authz)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
