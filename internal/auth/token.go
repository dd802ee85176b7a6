package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"edumanage/internal/apperr"
	"edumanage/internal/model"
)

// TokenTTL is how long an issued credential stays valid. Because the
// permission snapshot inside the token is fixed at issuance, this lifetime
// also bounds how stale an authorization decision can be: a grant or revoke
// only takes effect for a user once their token is reissued.
const TokenTTL = 24 * time.Hour

// Claims is the identity claim set embedded in every issued token
type Claims struct {
	Email       string   `json:"email"`
	UserID      string   `json:"userId"`
	RoleID      string   `json:"roleId"`
	RoleName    string   `json:"roleName"`
	FullName    string   `json:"fullName"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies signed bearer credentials
type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

// NewAuthenticator creates an Authenticator. The signing secret must come
// from configuration; an empty secret is refused rather than falling back to
// a hardcoded value.
func NewAuthenticator(secret []byte) (*Authenticator, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	return &Authenticator{secret: secret, ttl: TokenTTL}, nil
}

// Issue signs a token for the user carrying the role's current permission set
// as a snapshot.
func (a *Authenticator) Issue(user *model.User, permissions []string) (string, error) {
	if permissions == nil {
		permissions = []string{}
	}
	now := time.Now()
	claims := &Claims{
		Email:       user.Email,
		UserID:      user.ID.String(),
		RoleID:      user.Role.ID.String(),
		RoleName:    user.Role.Name,
		FullName:    user.Name,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID.String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Authenticate verifies the credential's signature and expiry and decodes the
// embedded claim set into a request Context. Absent, malformed,
// signature-invalid and expired credentials all fail the same way.
func (a *Authenticator) Authenticate(credential string) (*Context, error) {
	if credential == "" {
		return nil, apperr.Unauthenticatedf("missing credential")
	}

	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthenticatedf("credential expired")
		}
		return nil, apperr.Unauthenticatedf("invalid credential")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthenticatedf("invalid credential claims")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthenticatedf("invalid user id claim")
	}
	roleID, err := uuid.Parse(claims.RoleID)
	if err != nil {
		return nil, apperr.Unauthenticatedf("invalid role id claim")
	}

	perms := make(map[string]struct{}, len(claims.Permissions))
	for _, p := range claims.Permissions {
		perms[p] = struct{}{}
	}

	return &Context{
		UserID:      userID,
		Email:       claims.Email,
		FullName:    claims.FullName,
		RoleID:      roleID,
		RoleName:    claims.RoleName,
		Permissions: perms,
	}, nil
}

// ExtractBearerToken extracts the token from an Authorization header value
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.Unauthenticatedf("authorization header missing")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperr.Unauthenticatedf("invalid authorization format, expected 'Bearer <token>'")
	}
	return parts[1], nil
}
