package rbac

import (
	"fmt"
	"strings"
)

// Screen is one node of the admin navigation tree. AccessAny distinguishes
// nil (no declared requirement) from an empty slice (declared open): route
// guarding treats both as open, menu visibility only honours a declared
// value. Children never inherit AccessAny; a missing child group inherits
// the parent's group for ordering only.
type Screen struct {
	Key       string
	Group     string
	Routes    []string
	AccessAny []string
	Actions   map[string][]string
	Public    bool
	Order     *int
	Children  []Screen
}

// Group orders a set of screens in navigation. A nil Order sorts last.
type Group struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Order *int   `json:"order,omitempty"`
}

// FlatScreen is one flattened registry entry: the screen plus its resolved
// group and parent linkage. Children are preserved so menu-mode access can
// recurse over the subtree.
type FlatScreen struct {
	Screen
	ParentKey string
}

// IsChild reports whether the screen was declared beneath another screen.
// A child's own routes are authoritative over an ancestor's for the same
// concrete path.
func (f *FlatScreen) IsChild() bool {
	return f.ParentKey != ""
}

// Flatten walks the tree depth-first, emitting each parent before its
// children in stable declaration order. It resolves inherited groups and
// synthesises no access semantics.
func Flatten(screens []Screen) []FlatScreen {
	var out []FlatScreen
	var walk func(nodes []Screen, parentKey, parentGroup string)
	walk = func(nodes []Screen, parentKey, parentGroup string) {
		for _, node := range nodes {
			group := node.Group
			if group == "" {
				group = parentGroup
			}
			flat := FlatScreen{Screen: node, ParentKey: parentKey}
			flat.Screen.Group = group
			out = append(out, flat)
			walk(node.Children, node.Key, group)
		}
	}
	walk(screens, "", "")
	return out
}

// Registry is the validated, immutable screen index. It is built once at
// startup and never mutated afterwards; all resolver calls are read-only
// over the flattened entries.
type Registry struct {
	groups     []Group
	groupOrder map[string]*int
	flat       []FlatScreen
	byKey      map[string]*FlatScreen
}

// NewRegistry validates the screen tree against the catalog and builds the
// flattened index. All violations are collected in one pass: duplicate or
// cyclic screen keys, requirements and action maps referencing unknown
// permission keys, and unrelated screens competing for the same literal
// route.
func NewRegistry(catalog *Catalog, groups []Group, screens []Screen) (*Registry, error) {
	violations := validateScreens(catalog, screens)
	if len(violations) > 0 {
		sortViolations(violations)
		return nil, &MisconfigurationError{Violations: violations}
	}

	flat := Flatten(screens)
	byKey := make(map[string]*FlatScreen, len(flat))
	for i := range flat {
		byKey[flat[i].Key] = &flat[i]
	}
	groupOrder := make(map[string]*int, len(groups))
	for _, g := range groups {
		groupOrder[g.Key] = g.Order
	}
	return &Registry{groups: groups, groupOrder: groupOrder, flat: flat, byKey: byKey}, nil
}

// Screens returns the flattened entries in declaration order.
func (r *Registry) Screens() []FlatScreen {
	out := make([]FlatScreen, len(r.flat))
	copy(out, r.flat)
	return out
}

// Groups returns the navigation groups as declared.
func (r *Registry) Groups() []Group {
	out := make([]Group, len(r.groups))
	copy(out, r.groups)
	return out
}

// Lookup returns the flattened entry for a screen key.
func (r *Registry) Lookup(key string) (*FlatScreen, bool) {
	s, ok := r.byKey[key]
	return s, ok
}

func validateScreens(catalog *Catalog, screens []Screen) []Violation {
	var violations []Violation
	seen := make(map[string]struct{})

	type ownedRoute struct {
		screen   string
		ancestry map[string]struct{}
	}
	literalRoutes := make(map[string][]ownedRoute)

	var walk func(nodes []Screen, path []string)
	walk = func(nodes []Screen, path []string) {
		for _, node := range nodes {
			cyclic := false
			for _, ancestor := range path {
				if ancestor == node.Key {
					cyclic = true
					break
				}
			}
			if cyclic {
				violations = append(violations, Violation{
					Kind:   ViolationCycle,
					Ref:    node.Key,
					Detail: "screen appears among its own descendants",
				})
				// Do not descend into a cyclic subtree.
				continue
			}
			if _, dup := seen[node.Key]; dup {
				violations = append(violations, Violation{
					Kind:   ViolationDuplicateKey,
					Ref:    node.Key,
					Detail: "screen key defined more than once",
				})
			}
			seen[node.Key] = struct{}{}

			for _, key := range catalog.Unknown(node.AccessAny) {
				violations = append(violations, Violation{
					Kind:   ViolationUnknownPermission,
					Ref:    node.Key,
					Detail: fmt.Sprintf("accessAny references unknown permission %q", key),
				})
			}
			for action, keys := range node.Actions {
				for _, key := range catalog.Unknown(keys) {
					violations = append(violations, Violation{
						Kind:   ViolationUnknownPermission,
						Ref:    node.Key,
						Detail: fmt.Sprintf("action %q references unknown permission %q", action, key),
					})
				}
			}

			ancestry := make(map[string]struct{}, len(path))
			for _, ancestor := range path {
				ancestry[ancestor] = struct{}{}
			}
			for _, route := range node.Routes {
				normalized := NormalizePath(route)
				if strings.Contains(normalized, "/:") {
					continue
				}
				literalRoutes[normalized] = append(literalRoutes[normalized], ownedRoute{
					screen:   node.Key,
					ancestry: ancestry,
				})
			}

			walk(node.Children, append(path, node.Key))
		}
	}
	walk(screens, nil)

	// Two screens may share a literal pattern only when one is an ancestor
	// of the other; the child-node score bonus breaks that tie. Unrelated
	// screens competing for the same path have no deterministic winner.
	for route, owners := range literalRoutes {
		for i := 0; i < len(owners); i++ {
			for j := i + 1; j < len(owners); j++ {
				a, b := owners[i], owners[j]
				if a.screen == b.screen {
					continue
				}
				if _, ok := a.ancestry[b.screen]; ok {
					continue
				}
				if _, ok := b.ancestry[a.screen]; ok {
					continue
				}
				violations = append(violations, Violation{
					Kind:   ViolationRouteConflict,
					Ref:    a.screen,
					Detail: fmt.Sprintf("route %q also declared by unrelated screen %q", route, b.screen),
				})
			}
		}
	}
	return violations
}
