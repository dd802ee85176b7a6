package auth

// Known permission names. Permissions form a closed vocabulary: creating or
// seeding a permission with a name outside this catalog is rejected, while
// membership checks keep plain string-set semantics.
const (
	PermCreateRole        = "can_create_role"
	PermUpdateRole        = "can_update_role"
	PermDeleteRole        = "can_delete_role"
	PermAssignPermissions = "can_assign_permissions"

	PermCreateUser = "can_create_user"
	PermUpdateUser = "can_update_user"
	PermDeleteUser = "can_delete_user"

	PermCreateCourse   = "can_create_course"
	PermUpdateCourse   = "can_update_course"
	PermUploadSyllabus = "can_upload_syllabus"

	PermGradeAssignment = "can_grade_assignment"
	PermViewAuditLogs   = "can_view_audit_logs"
)

// Catalog lists every permission the system recognizes
var Catalog = []string{
	PermCreateRole,
	PermUpdateRole,
	PermDeleteRole,
	PermAssignPermissions,
	PermCreateUser,
	PermUpdateUser,
	PermDeleteUser,
	PermCreateCourse,
	PermUpdateCourse,
	PermUploadSyllabus,
	PermGradeAssignment,
	PermViewAuditLogs,
}

var catalogSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Catalog))
	for _, p := range Catalog {
		m[p] = struct{}{}
	}
	return m
}()

// KnownPermission reports whether name is part of the catalog
func KnownPermission(name string) bool {
	_, ok := catalogSet[name]
	return ok
}
