package auth

import "github.com/google/uuid"

// Context is the decoded, request-scoped identity and capability snapshot
// derived from a verified credential. The permission set is the one captured
// when the token was issued, not the role's current set.
type Context struct {
	UserID      uuid.UUID
	Email       string
	FullName    string
	RoleID      uuid.UUID
	RoleName    string
	Permissions map[string]struct{}
}

// HasPermission reports whether the snapshot contains the named permission
func (c *Context) HasPermission(name string) bool {
	_, ok := c.Permissions[name]
	return ok
}

// PermissionList returns the snapshot as a slice, for serialization
func (c *Context) PermissionList() []string {
	out := make([]string, 0, len(c.Permissions))
	for p := range c.Permissions {
		out = append(out, p)
	}
	return out
}
