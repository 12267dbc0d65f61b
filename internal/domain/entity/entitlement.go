package entity

import "strings"

// Entitlement is a permission required to invoke an operation on an entity.
type Entitlement string

const (
	EntitlementCreate Entitlement = "create"
	EntitlementRead   Entitlement = "read"
	EntitlementUpdate Entitlement = "update"
	EntitlementDelete Entitlement = "delete"
)

// Wildcard grants every entitlement on every entity.
const Wildcard = "*"

// Grant formats the token claim for an entitlement on an entity route,
// e.g. "treatment:read".
func Grant(entity string, e Entitlement) string {
	return strings.ToLower(entity) + ":" + string(e)
}

// Allows reports whether the granted claims cover e on entity. Claims of
// the form "entity:*", "*:read" and "*:*" are honored.
func Allows(granted []string, entity string, e Entitlement) bool {
	entity = strings.ToLower(entity)
	for _, g := range granted {
		name, perm, ok := strings.Cut(strings.ToLower(strings.TrimSpace(g)), ":")
		if !ok {
			continue
		}
		if (name == entity || name == Wildcard) && (perm == string(e) || perm == Wildcard) {
			return true
		}
	}
	return false
}
