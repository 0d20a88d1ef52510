package auth

import (
	"context"

	"github.com/yukikurage/project-management-api/internal/constants"
)

// IsAdmin reports whether the identity carries the admin role.
func IsAdmin(id Identity) bool {
	return id.Roles.Has(RoleAdmin)
}

// IsAdminContext evaluates IsAdmin against the identity attached to ctx.
// A context without an identity is never admin.
func IsAdminContext(ctx context.Context) bool {
	id, ok := FromContext(ctx)
	return ok && IsAdmin(id)
}

// Actor returns the username recorded in audit columns for writes made
// under ctx.
func Actor(ctx context.Context) string {
	if id, ok := FromContext(ctx); ok && id.Username != "" {
		return id.Username
	}
	return constants.SystemActor
}
