// Package auth holds the caller identity resolved at the authentication
// boundary and the access policy evaluated against it.
package auth

import (
	"context"
	"strings"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// RoleSet is an immutable-by-convention set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// RolesFromGroups maps identity-provider group names to roles. Unknown groups
// are ignored; matching is case-insensitive.
func RolesFromGroups(groups []string) RoleSet {
	set := make(RoleSet, len(groups))
	for _, g := range groups {
		switch strings.ToUpper(strings.TrimSpace(g)) {
		case "ADMIN":
			set[RoleAdmin] = struct{}{}
		case "USER":
			set[RoleUser] = struct{}{}
		}
	}
	return set
}

// Identity is the caller resolved from a validated bearer token.
type Identity struct {
	Subject  string
	Username string
	Roles    RoleSet
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity attached to ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
