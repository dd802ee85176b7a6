package auth

import (
	"edumanage/internal/apperr"
)

// RequirePermission succeeds iff the context's permission snapshot contains
// the named permission. Pure decision function: no database access, no
// ambient state.
func RequirePermission(ctx *Context, permission string) error {
	if ctx == nil || !ctx.HasPermission(permission) {
		return apperr.Forbiddenf("missing permission %q", permission)
	}
	return nil
}

// RequireRole succeeds iff the context's role name is one of the allowed
// roles.
func RequireRole(ctx *Context, allowed ...string) error {
	if ctx == nil {
		return apperr.Forbiddenf("no authenticated caller")
	}
	for _, role := range allowed {
		if ctx.RoleName == role {
			return nil
		}
	}
	return apperr.Forbiddenf("role %q is not permitted", ctx.RoleName)
}
