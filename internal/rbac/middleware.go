package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/meridianshop/meridian-admin/internal/observability"
	"github.com/meridianshop/meridian-admin/internal/platform/httpx"
)

type authzContextKey struct{}
type scopeContextKey struct{}

// ContextWithAuthz stores the authorization snapshot in the request context.
func ContextWithAuthz(ctx context.Context, authz *Context) context.Context {
	return context.WithValue(ctx, authzContextKey{}, authz)
}

// AuthzFromContext extracts the snapshot; nil when absent, which guards
// treat as unauthenticated.
func AuthzFromContext(ctx context.Context) *Context {
	authz, _ := ctx.Value(authzContextKey{}).(*Context)
	return authz
}

// MatchedScope describes the permission a guard matched for this request.
type MatchedScope struct {
	Key   string
	Scope Scope
}

// ScopeFromContext returns the scope attached by the guard that admitted
// the request, if any. Business handlers use it to narrow their effect,
// for example to the caller's own records.
func ScopeFromContext(ctx context.Context) (MatchedScope, bool) {
	ms, ok := ctx.Value(scopeContextKey{}).(MatchedScope)
	return ms, ok
}

// Middleware wires guard predicates into chi routes.
type Middleware struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// RequireAny admits requests granted at least one of the listed keys.
func (m Middleware) RequireAny(keys ...string) func(http.Handler) http.Handler {
	return m.guard(PermissionAny(keys...))
}

// RequireAll admits requests granted every listed key.
func (m Middleware) RequireAll(keys ...string) func(http.Handler) http.Handler {
	return m.guard(PermissionAll(keys...))
}

// RequireRole admits requests holding at least one of the listed roles.
func (m Middleware) RequireRole(codes ...string) func(http.Handler) http.Handler {
	return m.guard(RoleAny(codes...))
}

// Require admits requests granted the single key.
func (m Middleware) Require(key string) func(http.Handler) http.Handler {
	return m.guard(RequirePermission(key))
}

func (m Middleware) guard(predicate Predicate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := AuthzFromContext(r.Context())
			decision := predicate(authz)
			m.Metrics.ObserveAuthzDecision(decision.Allowed, string(decision.Reason))
			if !decision.Allowed {
				if m.Logger != nil {
					m.Logger.Info("request denied",
						slog.String("path", r.URL.Path),
						slog.String("reason", string(decision.Reason)))
				}
				respondDenied(w, decision.Reason)
				return
			}
			ctx := r.Context()
			if decision.MatchedKey != "" {
				ctx = context.WithValue(ctx, scopeContextKey{}, MatchedScope{
					Key:   decision.MatchedKey,
					Scope: decision.Scope,
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondDenied(w http.ResponseWriter, reason DenyReason) {
	switch reason {
	case ReasonUnauthenticated:
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "no resolvable authorization context")
	default:
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "permission requirement not met")
	}
}
