package rbac

// DenyReason tags a rejected guard decision with the error taxonomy used by
// the HTTP layer.
type DenyReason string

const (
	// ReasonUnauthenticated means no resolvable identity: the context was
	// nil or carried neither roles nor permissions.
	ReasonUnauthenticated DenyReason = "unauthenticated"
	// ReasonForbidden means the context resolved but the requirement was
	// not met.
	ReasonForbidden DenyReason = "forbidden"
)

// Decision is the outcome of evaluating a guard predicate. On allow the
// matched permission key and its scope (true for a plain grant) are carried
// for business-layer consumption; attaching them is the only observable
// side effect of a guard.
type Decision struct {
	Allowed    bool
	Reason     DenyReason
	MatchedKey string
	Scope      Scope
}

func allow(key string, scope Scope) Decision {
	return Decision{Allowed: true, MatchedKey: key, Scope: scope}
}

func deny(c *Context) Decision {
	if c.Anonymous() {
		return Decision{Reason: ReasonUnauthenticated}
	}
	return Decision{Reason: ReasonForbidden}
}

// Predicate is a side-effect-free authorization check over a context.
// Predicates are total: nil and malformed contexts evaluate as "no
// permissions" and never panic.
type Predicate func(c *Context) Decision

// RoleAny passes when the context holds at least one of the listed roles.
func RoleAny(codes ...string) Predicate {
	return func(c *Context) Decision {
		if c.Anonymous() {
			return deny(c)
		}
		for _, code := range codes {
			if c.HasRole(code) {
				return allow("", true)
			}
		}
		return deny(c)
	}
}

// PermissionAny passes when at least one listed key is granted. The first
// matching key's scope is surfaced on the decision.
func PermissionAny(keys ...string) Predicate {
	return func(c *Context) Decision {
		if c.Anonymous() {
			return deny(c)
		}
		for _, key := range keys {
			if scope, ok := c.GrantedScope(key); ok {
				return allow(key, scope)
			}
		}
		return deny(c)
	}
}

// PermissionAll passes only when every listed key is granted.
func PermissionAll(keys ...string) Predicate {
	return func(c *Context) Decision {
		if c.Anonymous() {
			return deny(c)
		}
		for _, key := range keys {
			if !c.Granted(key) {
				return deny(c)
			}
		}
		return allow("", true)
	}
}

// RequirePermission is PermissionAny for a single key.
func RequirePermission(key string) Predicate {
	return PermissionAny(key)
}
