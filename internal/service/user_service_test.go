package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"edumanage/internal/apperr"
	"edumanage/internal/auth"
	"edumanage/internal/mailer"
	"edumanage/internal/model"
	"edumanage/internal/repository"
)

type userFixture struct {
	svc           UserService
	db            *gorm.DB
	roleSvc       RoleService
	roleRepo      repository.RoleRepository
	authenticator *auth.Authenticator
	sender        *recordingSender
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	db := newTestDB(t)

	roleRepo := repository.NewRoleRepository(db)
	audit := NewAuditService(repository.NewAuditRepository(db), zerolog.Nop())
	roleSvc := NewRoleService(roleRepo, repository.NewTransactionManager(db), audit)
	require.NoError(t, roleSvc.SeedDefaults(context.Background()))

	authenticator, err := auth.NewAuthenticator([]byte("test-secret"))
	require.NoError(t, err)

	sender := &recordingSender{}
	svc := NewUserService(
		repository.NewUserRepository(db),
		roleRepo,
		authenticator,
		audit,
		sender,
		zerolog.Nop(),
	)
	return &userFixture{
		svc: svc, db: db, roleSvc: roleSvc, roleRepo: roleRepo,
		authenticator: authenticator, sender: sender,
	}
}

func (f *userFixture) role(t *testing.T, name string) *model.Role {
	t.Helper()
	role, err := f.roleRepo.FindByName(context.Background(), name)
	require.NoError(t, err)
	return role
}

func TestCreateUserGeneratesPasswordForLoginRole(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateUser(ctx, actorWith("admin"), CreateUserRequest{
		Name:   "Alan Kay",
		Email:  "alan@example.edu",
		RoleID: f.role(t, "student").ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "student", created.RoleName)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, mailer.TemplateSignup, f.sender.sent[0].template)
	assert.Equal(t, "alan@example.edu", f.sender.sent[0].recipient)

	// The mailed password matches the stored hash
	password := f.sender.sent[0].data["password"]
	require.Len(t, password, 8)
	var stored model.User
	require.NoError(t, f.db.Where("email = ?", "alan@example.edu").First(&stored).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(password)))
}

func TestCreateUserConflictsAndGates(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	studentRole := f.role(t, "student").ID.String()

	_, err := f.svc.CreateUser(ctx, actorWith("admin"), CreateUserRequest{
		Name: "Alan Kay", Email: "alan@example.edu", RoleID: studentRole,
	})
	require.NoError(t, err)

	_, err = f.svc.CreateUser(ctx, actorWith("admin"), CreateUserRequest{
		Name: "Alan Kay Jr", Email: "alan@example.edu", RoleID: studentRole,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = f.svc.CreateUser(ctx, actorWith("admin"), CreateUserRequest{
		Name: "Alan Kay", Email: "alan2@example.edu", RoleID: studentRole,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = f.svc.CreateUser(ctx, actorWith("student"), CreateUserRequest{
		Name: "Someone", Email: "someone@example.edu", RoleID: studentRole,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestLoginIssuesPermissionSnapshot(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, actorWith("admin"), CreateUserRequest{
		Name: "Grace Hopper", Email: "grace@example.edu", RoleID: f.role(t, "admin").ID.String(),
	})
	require.NoError(t, err)
	password := f.sender.sent[0].data["password"]

	tokenRes, err := f.svc.Login(ctx, LoginRequest{Email: "grace@example.edu", Password: password})
	require.NoError(t, err)
	require.NotEmpty(t, tokenRes.AccessToken)

	decoded, err := f.authenticator.Authenticate(tokenRes.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", decoded.RoleName)
	assert.Equal(t, "Grace Hopper", decoded.FullName)
	// seeded admin owns the whole catalog at login time
	assert.Len(t, decoded.PermissionList(), len(auth.Catalog))
	assert.True(t, decoded.HasPermission(auth.PermCreateRole))
}

func TestLoginSnapshotDoesNotFollowRevokes(t *testing.T) {
	// Revoking a permission after login leaves existing tokens carrying it.
	// A fresh login picks up the reduced set.
	f := newUserFixture(t)
	ctx := context.Background()
	admin := f.role(t, "admin")
	adminPerms, err := f.roleRepo.PermissionNamesForRole(ctx, admin.ID)
	require.NoError(t, err)
	adminActor := actorWith("admin", adminPerms...)

	_, err = f.svc.CreateUser(ctx, adminActor, CreateUserRequest{
		Name: "Grace Hopper", Email: "grace@example.edu", RoleID: admin.ID.String(),
	})
	require.NoError(t, err)
	password := f.sender.sent[0].data["password"]

	before, err := f.svc.Login(ctx, LoginRequest{Email: "grace@example.edu", Password: password})
	require.NoError(t, err)

	perm, err := f.roleRepo.FindPermissionByName(ctx, auth.PermCreateRole)
	require.NoError(t, err)
	_, err = f.roleSvc.RevokePermissions(ctx, adminActor, admin.ID.String(), []string{perm.ID.String()})
	require.NoError(t, err)

	stale, err := f.authenticator.Authenticate(before.AccessToken)
	require.NoError(t, err)
	assert.True(t, stale.HasPermission(auth.PermCreateRole), "old token keeps the revoked permission")

	after, err := f.svc.Login(ctx, LoginRequest{Email: "grace@example.edu", Password: password})
	require.NoError(t, err)
	fresh, err := f.authenticator.Authenticate(after.AccessToken)
	require.NoError(t, err)
	assert.False(t, fresh.HasPermission(auth.PermCreateRole), "new token reflects the revoke")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, actorWith("admin"), CreateUserRequest{
		Name: "Alan Kay", Email: "alan@example.edu", RoleID: f.role(t, "student").ID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "alan@example.edu", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))

	_, err = f.svc.Login(ctx, LoginRequest{Email: "nobody@example.edu", Password: "anything"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
}

func TestChangePassword(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateUser(ctx, actorWith("admin"), CreateUserRequest{
		Name: "Alan Kay", Email: "alan@example.edu", RoleID: f.role(t, "student").ID.String(),
	})
	require.NoError(t, err)
	password := f.sender.sent[0].data["password"]

	var stored model.User
	require.NoError(t, f.db.Where("email = ?", "alan@example.edu").First(&stored).Error)
	actor := &auth.Context{UserID: stored.ID, RoleName: created.RoleName}

	err = f.svc.ChangePassword(ctx, actor, ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "brand-new-pass",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	err = f.svc.ChangePassword(ctx, actor, ChangePasswordRequest{
		OldPassword: password, NewPassword: "brand-new-pass",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "alan@example.edu", Password: "brand-new-pass"})
	require.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, actorWith("admin"), CreateUserRequest{
		Name: "Alan Kay", Email: "alan@example.edu", RoleID: f.role(t, "student").ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "alan@example.edu"}))
	require.Len(t, f.sender.sent, 2)
	assert.Equal(t, mailer.TemplateForgotPassword, f.sender.sent[1].template)
	token := f.sender.sent[1].data["token"]
	require.NotEmpty(t, token)

	err = f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: "wrong-token", NewPassword: "reset-pass-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	require.NoError(t, f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "reset-pass-1"}))
	_, err = f.svc.Login(ctx, LoginRequest{Email: "alan@example.edu", Password: "reset-pass-1"})
	require.NoError(t, err)

	// token is single-use
	err = f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "reset-pass-2"})
	require.Error(t, err)
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, actorWith("admin"), CreateUserRequest{
		Name: "Alan Kay", Email: "alan@example.edu", RoleID: f.role(t, "student").ID.String(),
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "alan@example.edu"}))
	token := f.sender.sent[1].data["token"]

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, f.db.Model(&model.User{}).
		Where("email = ?", "alan@example.edu").
		Update("password_reset_expires", expired).Error)

	err = f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "reset-pass-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
