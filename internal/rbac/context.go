package rbac

import "encoding/json"

// Scope is the optional payload narrowing a granted permission, for example
// {"own": true} to restrict an operation to records the caller owns. A plain
// grant is represented by the boolean true. The core never interprets scope
// contents; business handlers do.
type Scope any

// Context is the resolved authorization snapshot for one session. It is
// computed at login or refresh from the then-current role and override data
// and is immutable until the next refresh; mid-session role edits do not
// affect an already issued snapshot.
type Context struct {
	Roles       []string         `json:"roles"`
	Permissions map[string]Scope `json:"permissions"`
}

// Granted reports whether the key is present with a truthy value. A nil
// receiver or an empty map behaves as "no permissions".
func (c *Context) Granted(key string) bool {
	_, ok := c.GrantedScope(key)
	return ok
}

// GrantedScope returns the scope stored under the key. For a plain grant the
// returned scope is the boolean true.
func (c *Context) GrantedScope(key string) (Scope, bool) {
	if c == nil || len(c.Permissions) == 0 {
		return nil, false
	}
	scope, ok := c.Permissions[key]
	if !ok || scope == nil || scope == false {
		return nil, false
	}
	return scope, true
}

// HasRole reports whether the context holds the given role code.
func (c *Context) HasRole(code string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if r == code {
			return true
		}
	}
	return false
}

// Anonymous reports whether the snapshot carries no identity data at all:
// no roles and no permissions. Guards reject such contexts as
// unauthenticated rather than forbidden.
func (c *Context) Anonymous() bool {
	return c == nil || (len(c.Roles) == 0 && len(c.Permissions) == 0)
}

// Encode serialises the snapshot for storage in the session.
func (c *Context) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeContext restores a snapshot produced by Encode. Malformed input
// yields nil, which every consumer treats as "no permissions".
func DecodeContext(raw string) *Context {
	if raw == "" {
		return nil
	}
	var c Context
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil
	}
	return &c
}
