package rbac

import (
	"sort"
	"strings"
)

// AccessMode selects the evaluation policy for screen access.
type AccessMode int

const (
	// ModeRoute judges a direct address hit on the screen's own declared
	// requirement only; nothing is inherited from parents or children.
	ModeRoute AccessMode = iota
	// ModeMenu judges navigation visibility: a screen without a declared
	// requirement is visible when anything beneath it is reachable.
	ModeMenu
)

const (
	paramScore = 10000
	childScore = 100000
)

// NormalizePath strips the query, fragment and any trailing slash (the root
// path keeps its single slash).
func NormalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}

// MatchPattern reports whether the pattern matches the path. Literal
// segments match exactly, ":name" segments match any single non-empty
// segment, and matching is prefix-bounded: a pattern also matches any
// deeper sub-path beneath it.
func MatchPattern(pattern, path string) bool {
	patternSegs := splitSegments(NormalizePath(pattern))
	pathSegs := splitSegments(NormalizePath(path))
	if len(pathSegs) < len(patternSegs) {
		return false
	}
	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, ":") {
			if pathSegs[i] == "" {
				return false
			}
			continue
		}
		if seg != pathSegs[i] {
			return false
		}
	}
	return true
}

func splitSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// FindScreenByPath resolves the owning screen for a concrete path. Every
// (screen, declared route) pair whose pattern matches competes on a score:
// the normalized pattern length, plus a bonus when the pattern carries a
// parameter segment, plus a larger bonus when the screen is a child node.
// Longer patterns beat shorter ones, a parameterized detail route beats a
// sibling list route for an id-bearing path, and deep links resolve to the
// sub-screen rather than its ancestor. Returns nil when nothing matches.
func (r *Registry) FindScreenByPath(path string) *FlatScreen {
	var (
		best      *FlatScreen
		bestScore = -1
	)
	for i := range r.flat {
		screen := &r.flat[i]
		for _, route := range screen.Routes {
			if !MatchPattern(route, path) {
				continue
			}
			score := len(NormalizePath(route))
			if strings.Contains(route, ":") {
				score += paramScore
			}
			if screen.IsChild() {
				score += childScore
			}
			if score > bestScore {
				bestScore = score
				best = screen
			}
		}
	}
	return best
}

// CanAccessScreen evaluates screen access for the context in the given
// mode. Public screens pass in both modes. Route mode honours only the
// screen's own declared requirement, with no requirement meaning open. Menu
// mode honours a declared requirement the same way, but an undeclared
// parent is visible when any descendant at any depth is menu-accessible; an
// undeclared childless screen is never menu-visible.
func CanAccessScreen(authz *Context, screen *FlatScreen, mode AccessMode) bool {
	if screen == nil {
		return false
	}
	return canAccessNode(authz, &screen.Screen, mode)
}

func canAccessNode(authz *Context, node *Screen, mode AccessMode) bool {
	if node.Public {
		return true
	}
	if mode == ModeRoute {
		return anyGranted(authz, node.AccessAny)
	}
	if node.AccessAny != nil {
		return anyGranted(authz, node.AccessAny)
	}
	for i := range node.Children {
		if canAccessNode(authz, &node.Children[i], ModeMenu) {
			return true
		}
	}
	return false
}

func anyGranted(authz *Context, keys []string) bool {
	if len(keys) == 0 {
		return true
	}
	for _, key := range keys {
		if authz.Granted(key) {
			return true
		}
	}
	return false
}

// CanAccessAction evaluates an in-screen action: absent or empty action
// entries deny, otherwise any listed key grants.
func CanAccessAction(authz *Context, screen *FlatScreen, actionKey string) bool {
	if screen == nil || len(screen.Actions) == 0 {
		return false
	}
	keys := screen.Actions[actionKey]
	if len(keys) == 0 {
		return false
	}
	for _, key := range keys {
		if authz.Granted(key) {
			return true
		}
	}
	return false
}

// FirstAccessibleScreen scans screens by group order then screen order
// (undefined orders sort last, declaration order breaks ties) and returns
// the first declared route of the first screen the context may address
// directly. Used to pick a safe post-login landing page; returns "" when
// nothing is reachable.
func (r *Registry) FirstAccessibleScreen(authz *Context) string {
	ordered := make([]*FlatScreen, 0, len(r.flat))
	for i := range r.flat {
		ordered = append(ordered, &r.flat[i])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		gi, gj := orderValue(r.groupOrder[ordered[i].Group]), orderValue(r.groupOrder[ordered[j].Group])
		if gi != gj {
			return gi < gj
		}
		return orderValue(ordered[i].Order) < orderValue(ordered[j].Order)
	})
	for _, screen := range ordered {
		if len(screen.Routes) == 0 {
			continue
		}
		if CanAccessScreen(authz, screen, ModeRoute) {
			return screen.Routes[0]
		}
	}
	return ""
}

func orderValue(order *int) int {
	if order == nil {
		return int(^uint(0) >> 1)
	}
	return *order
}
