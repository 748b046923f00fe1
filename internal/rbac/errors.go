package rbac

import (
	"sort"
	"strings"
)

// ViolationKind classifies one configuration defect.
type ViolationKind string

const (
	// ViolationDuplicateKey flags a permission key, role code or screen key
	// defined more than once.
	ViolationDuplicateKey ViolationKind = "duplicate_key"
	// ViolationUnknownPermission flags a reference to a key absent from the
	// catalog.
	ViolationUnknownPermission ViolationKind = "unknown_permission"
	// ViolationUnknownRoleType flags a role with an unrecognised type.
	ViolationUnknownRoleType ViolationKind = "unknown_role_type"
	// ViolationCycle flags a screen appearing among its own descendants.
	ViolationCycle ViolationKind = "cycle"
	// ViolationRouteConflict flags two unrelated screens declaring the same
	// literal route pattern, which the path scorer cannot break.
	ViolationRouteConflict ViolationKind = "route_conflict"
)

// Violation describes one defect found while loading configuration.
type Violation struct {
	Kind   ViolationKind
	Ref    string
	Detail string
}

// MisconfigurationError aggregates every violation found in a single
// validation pass so operators can fix them together. It fails loudly at
// load time instead of silently denying every request later.
type MisconfigurationError struct {
	Violations []Violation
}

func (e *MisconfigurationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, string(v.Kind)+" "+v.Ref+": "+v.Detail)
	}
	return "rbac: misconfiguration: " + strings.Join(parts, "; ")
}

func sortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Ref != violations[j].Ref {
			return violations[i].Ref < violations[j].Ref
		}
		return violations[i].Kind < violations[j].Kind
	})
}
