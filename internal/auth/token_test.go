package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edumanage/internal/apperr"
	"edumanage/internal/model"
)

func testUser() *model.User {
	roleID := uuid.New()
	return &model.User{
		ID:     uuid.New(),
		Name:   "Ada Lovelace",
		Email:  "ada@example.edu",
		RoleID: roleID,
		Role: model.Role{
			ID:   roleID,
			Name: "admin",
		},
	}
}

func TestNewAuthenticatorRejectsEmptySecret(t *testing.T) {
	_, err := NewAuthenticator(nil)
	require.Error(t, err)

	_, err = NewAuthenticator([]byte{})
	require.Error(t, err)
}

func TestIssueAndAuthenticateRoundtrip(t *testing.T) {
	authenticator, err := NewAuthenticator([]byte("test-secret"))
	require.NoError(t, err)

	user := testUser()
	token, err := authenticator.Issue(user, []string{PermCreateRole, PermUpdateRole})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ctx, err := authenticator.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, ctx.UserID)
	assert.Equal(t, user.Email, ctx.Email)
	assert.Equal(t, user.Name, ctx.FullName)
	assert.Equal(t, user.Role.ID, ctx.RoleID)
	assert.Equal(t, "admin", ctx.RoleName)
	assert.True(t, ctx.HasPermission(PermCreateRole))
	assert.True(t, ctx.HasPermission(PermUpdateRole))
	assert.False(t, ctx.HasPermission(PermDeleteRole))
}

func TestAuthenticatePermissionSnapshotIsFixed(t *testing.T) {
	// The permission set decoded from a token is whatever was current at
	// issuance. Later grants or revokes do not show up until reissue.
	authenticator, err := NewAuthenticator([]byte("test-secret"))
	require.NoError(t, err)

	user := testUser()
	token, err := authenticator.Issue(user, []string{PermCreateRole})
	require.NoError(t, err)

	ctx, err := authenticator.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, []string{PermCreateRole}, ctx.PermissionList())
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	authenticator, err := NewAuthenticator([]byte("test-secret"))
	require.NoError(t, err)

	other, err := NewAuthenticator([]byte("other-secret"))
	require.NoError(t, err)

	user := testUser()
	foreign, err := other.Issue(user, nil)
	require.NoError(t, err)

	cases := []struct {
		name       string
		credential string
	}{
		{"empty", ""},
		{"malformed", "not-a-token"},
		{"wrong signature", foreign},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := authenticator.Authenticate(tc.credential)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
		})
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	authenticator, err := NewAuthenticator(secret)
	require.NoError(t, err)

	user := testUser()
	past := time.Now().Add(-time.Hour)
	claims := &Claims{
		Email:       user.Email,
		UserID:      user.ID.String(),
		RoleID:      user.Role.ID.String(),
		RoleName:    user.Role.Name,
		FullName:    user.Name,
		Permissions: []string{},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past),
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
			Subject:   user.ID.String(),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = authenticator.Authenticate(expired)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("")
	require.Error(t, err)

	_, err = ExtractBearerToken("Basic abc")
	require.Error(t, err)

	_, err = ExtractBearerToken("abc.def.ghi")
	require.Error(t, err)
}
