package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"edumanage/internal/apperr"
	"edumanage/internal/auth"
	"edumanage/internal/mailer"
	"edumanage/internal/model"
	"edumanage/internal/repository"
)

const passwordResetTTL = 10 * time.Minute

// --- DTOs ---

type CreateUserRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	RoleID      string `json:"role_id" binding:"required"`
}

type UpdateUserRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
	RoleID      *string `json:"role_id"`
}

type FindUsersQuery struct {
	Name        string `form:"name"`
	Email       string `form:"email"`
	PhoneNumber string `form:"phone_number"`
	RoleID      string `form:"role_id"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type UserResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	RoleID      string `json:"role_id"`
	RoleName    string `json:"role_name"`
	CreatedAt   string `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// --- Interface ---

type UserService interface {
	CreateUser(ctx context.Context, actor *auth.Context, req CreateUserRequest) (*UserResponse, error)
	ListUsers(ctx context.Context, query FindUsersQuery) ([]UserResponse, error)
	GetUser(ctx context.Context, id string) (*UserResponse, error)
	UpdateUser(ctx context.Context, actor *auth.Context, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actor *auth.Context, id string) error

	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	ChangePassword(ctx context.Context, actor *auth.Context, req ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type userService struct {
	repo          repository.UserRepository
	roleRepo      repository.RoleRepository
	authenticator *auth.Authenticator
	audit         AuditService
	notifier      mailer.Sender
	logger        zerolog.Logger
}

func NewUserService(
	repo repository.UserRepository,
	roleRepo repository.RoleRepository,
	authenticator *auth.Authenticator,
	audit AuditService,
	notifier mailer.Sender,
	logger zerolog.Logger,
) UserService {
	return &userService{
		repo:          repo,
		roleRepo:      roleRepo,
		authenticator: authenticator,
		audit:         audit,
		notifier:      notifier,
		logger:        logger,
	}
}

// --- Implementation ---

func (s *userService) CreateUser(ctx context.Context, actor *auth.Context, req CreateUserRequest) (*UserResponse, error) {
	if err := auth.RequireRole(actor, "admin", "lecturer"); err != nil {
		return nil, err
	}

	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		return nil, apperr.Validationf("invalid role id")
	}
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("role not found")
		}
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperr.Conflictf("email %s already in use", req.Email)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing, err := s.repo.GetByName(ctx, req.Name); err == nil && existing != nil {
		return nil, apperr.Conflictf("user %s already exists", req.Name)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		RoleID:      role.ID,
	}

	// Accounts on login-capable roles get a generated initial password,
	// delivered by mail. Other accounts hold no credential at all.
	var initialPassword string
	if role.IsLogin {
		initialPassword, err = generatePassword(8)
		if err != nil {
			return nil, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(initialPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Role = *role

	if role.IsLogin && s.notifier != nil {
		err := s.notifier.Send(mailer.TemplateSignup, user.Email, map[string]string{
			"name":     user.Name,
			"role":     role.Name,
			"password": initialPassword,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("email", user.Email).Msg("signup mail failed")
		}
	}

	resp := toUserResponse(*user)
	s.audit.Record(ctx, actor, model.ActionCreateUser, "user", resp)
	return &resp, nil
}

func (s *userService) ListUsers(ctx context.Context, query FindUsersQuery) ([]UserResponse, error) {
	filter := repository.UserFilter{
		Name:        query.Name,
		Email:       query.Email,
		PhoneNumber: query.PhoneNumber,
	}
	if query.RoleID != "" {
		roleID, err := uuid.Parse(query.RoleID)
		if err != nil {
			return nil, apperr.Validationf("invalid role id")
		}
		filter.RoleID = &roleID
	}

	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	res := make([]UserResponse, 0, len(users))
	for _, u := range users {
		res = append(res, toUserResponse(u))
	}
	return res, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, err
	}
	resp := toUserResponse(*user)
	return &resp, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor *auth.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	if err := auth.RequireRole(actor, "admin", "lecturer"); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.RoleID != nil {
		roleID, err := uuid.Parse(*req.RoleID)
		if err != nil {
			return nil, apperr.Validationf("invalid role id")
		}
		role, err := s.roleRepo.FindByID(ctx, roleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFoundf("role not found")
			}
			return nil, err
		}
		user.RoleID = role.ID
		user.Role = *role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := toUserResponse(*user)
	s.audit.Record(ctx, actor, model.ActionUpdateUser, "user", resp)
	return &resp, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor *auth.Context, id string) error {
	if err := auth.RequireRole(actor, "admin", "lecturer"); err != nil {
		return err
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validationf("invalid user id")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("user not found")
		}
		return err
	}

	if err := s.repo.Delete(ctx, user); err != nil {
		return err
	}

	s.audit.Record(ctx, actor, model.ActionDeleteUser, "user", map[string]string{
		"id":    user.ID.String(),
		"email": user.Email,
	})
	return nil
}

// Login verifies the credentials and issues a token carrying the role's
// permission names as they stand right now. The snapshot is not refreshed
// until the user logs in again.
func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthenticatedf("invalid email or password")
		}
		return nil, err
	}
	if user.Password == "" {
		return nil, apperr.Unauthenticatedf("account cannot log in")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthenticatedf("invalid email or password")
	}

	permissions, err := s.roleRepo.PermissionNamesForRole(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	token, err := s.authenticator.Issue(user, permissions)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: token,
		User:        toUserResponse(*user),
	}, nil
}

func (s *userService) ChangePassword(ctx context.Context, actor *auth.Context, req ChangePasswordRequest) error {
	if actor == nil {
		return apperr.Unauthenticatedf("not authenticated")
	}

	user, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("user not found")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return apperr.Validationf("old password does not match")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.repo.Update(ctx, user)
}

// ForgotPassword mails a short-lived reset token. Unknown addresses are
// reported as not found.
func (s *userService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("no account for %s", req.Email)
		}
		return err
	}

	token, err := randomHex(32)
	if err != nil {
		return err
	}
	expires := time.Now().Add(passwordResetTTL)
	user.PasswordResetToken = token
	user.PasswordResetExpires = &expires
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	if s.notifier != nil {
		err := s.notifier.Send(mailer.TemplateForgotPassword, user.Email, map[string]string{
			"name":  user.Name,
			"token": token,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("email", user.Email).Msg("password reset mail failed")
		}
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	user, err := s.repo.GetByResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validationf("invalid reset token")
		}
		return err
	}
	if user.PasswordResetExpires == nil || time.Now().After(*user.PasswordResetExpires) {
		return apperr.Validationf("reset token expired")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	user.PasswordResetToken = ""
	user.PasswordResetExpires = nil
	return s.repo.Update(ctx, user)
}

// --- Helpers ---

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func generatePassword(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = passwordAlphabet[int(buf[i])%len(passwordAlphabet)]
	}
	return string(buf), nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		RoleID:      u.RoleID.String(),
		RoleName:    u.Role.Name,
		CreatedAt:   u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
