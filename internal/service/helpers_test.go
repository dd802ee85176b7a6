package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"edumanage/internal/auth"
	"edumanage/internal/database"
	"edumanage/internal/model"
	"edumanage/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func actorWith(role string, permissions ...string) *auth.Context {
	perms := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		perms[p] = struct{}{}
	}
	return &auth.Context{
		UserID:      uuid.New(),
		Email:       role + "@example.edu",
		FullName:    "Test " + role,
		RoleID:      uuid.New(),
		RoleName:    role,
		Permissions: perms,
	}
}

// recordingSender captures outgoing mail instead of delivering it
type recordingSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	template  string
	recipient string
	data      map[string]string
}

func (r *recordingSender) Send(template, recipient string, data map[string]string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMail{template: template, recipient: recipient, data: data})
	return nil
}

// recordingBroadcaster captures realtime messages
type recordingBroadcaster struct {
	messages [][]byte
}

func (r *recordingBroadcaster) Broadcast(message []byte) {
	r.messages = append(r.messages, message)
}

func mustCreateRole(t *testing.T, db *gorm.DB, name string, isLogin bool) *model.Role {
	t.Helper()
	role := &model.Role{Name: name, Description: name + " role", IsLogin: isLogin}
	require.NoError(t, db.Create(role).Error)
	return role
}

func mustCreateUser(t *testing.T, db *gorm.DB, name, email string, roleID uuid.UUID) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: email, RoleID: roleID}
	require.NoError(t, db.Create(user).Error)
	return user
}

func mustCreateCourse(t *testing.T, db *gorm.DB, title string, lecturerID uuid.UUID) *model.Course {
	t.Helper()
	course := &model.Course{Title: title, Description: "about " + title, LecturerID: lecturerID}
	require.NoError(t, db.Create(course).Error)
	return course
}

func newTestRoleService(t *testing.T, db *gorm.DB) (RoleService, repository.RoleRepository) {
	t.Helper()
	repo := repository.NewRoleRepository(db)
	audit := NewAuditService(repository.NewAuditRepository(db), zerolog.Nop())
	return NewRoleService(repo, repository.NewTransactionManager(db), audit), repo
}
