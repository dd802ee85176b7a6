package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"edumanage/internal/apperr"
	"edumanage/internal/auth"
	"edumanage/internal/model"
	"edumanage/internal/repository"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	IsLogin     bool     `json:"is_login"`
	Permissions []string `json:"permissions"` // Permission UUIDs to attach on creation
}

type UpdateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PermissionIDsRequest struct {
	PermissionIDs []string `json:"permission_ids" binding:"required"`
}

type CreatePermissionRequest struct {
	Name string `json:"name" binding:"required"`
}

type FindRolesQuery struct {
	ID          string `form:"id"`
	Name        string `form:"name"`
	Description string `form:"description"`
}

type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsLogin     bool                 `json:"is_login"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   string               `json:"created_at"`
}

type PermissionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// --- Interface ---

// RoleService owns role records and the set of permissions each role holds.
// A permission belongs to at most one role: granting it to another role moves
// it, silently detaching the previous owner.
type RoleService interface {
	CreateRole(ctx context.Context, actor *auth.Context, req CreateRoleRequest) (*RoleResponse, error)
	FindRoles(ctx context.Context, query FindRolesQuery) ([]RoleResponse, error)
	UpdateRole(ctx context.Context, actor *auth.Context, id string, req UpdateRoleRequest) (*RoleResponse, error)
	RemoveRole(ctx context.Context, actor *auth.Context, id string) (*RoleResponse, error)
	AssignPermissions(ctx context.Context, actor *auth.Context, roleID string, permissionIDs []string) (*RoleResponse, error)
	RevokePermissions(ctx context.Context, actor *auth.Context, roleID string, permissionIDs []string) (*RoleResponse, error)
	CreatePermission(ctx context.Context, actor *auth.Context, name string) (*PermissionResponse, error)
	PermissionNamesForRole(ctx context.Context, roleID uuid.UUID) ([]string, error)
	SeedDefaults(ctx context.Context) error
}

type roleService struct {
	repo  repository.RoleRepository
	tx    repository.TransactionManager
	audit AuditService
}

func NewRoleService(repo repository.RoleRepository, tx repository.TransactionManager, audit AuditService) RoleService {
	return &roleService{repo: repo, tx: tx, audit: audit}
}

// --- Implementation ---

func (s *roleService) CreateRole(ctx context.Context, actor *auth.Context, req CreateRoleRequest) (*RoleResponse, error) {
	if err := auth.RequirePermission(actor, auth.PermCreateRole); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, apperr.Conflictf("role name %q already exists", req.Name)
	}

	permIDs, err := parseUUIDs(req.Permissions)
	if err != nil {
		return nil, apperr.Validationf("invalid permission id")
	}

	role := &model.Role{
		Name:        req.Name,
		Description: req.Description,
		IsLogin:     req.IsLogin,
	}

	// Creation and initial permission attachment commit together
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, role); err != nil {
			return err
		}
		if len(permIDs) == 0 {
			return nil
		}
		perms, err := s.findAllPermissions(txCtx, permIDs)
		if err != nil {
			return err
		}
		for i := range perms {
			perms[i].RoleID = &role.ID
		}
		return s.repo.SavePermissions(txCtx, perms)
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.roleResponse(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, model.ActionCreateRole, "role", resp)
	return resp, nil
}

// FindRoles is a read path and is not permission-gated
func (s *roleService) FindRoles(ctx context.Context, query FindRolesQuery) ([]RoleResponse, error) {
	filter := repository.RoleFilter{
		Name:        query.Name,
		Description: query.Description,
	}
	if query.ID != "" {
		id, err := uuid.Parse(query.ID)
		if err != nil {
			return nil, apperr.Validationf("invalid role id")
		}
		filter.ID = &id
	}

	roles, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) UpdateRole(ctx context.Context, actor *auth.Context, id string, req UpdateRoleRequest) (*RoleResponse, error) {
	if err := auth.RequirePermission(actor, auth.PermUpdateRole); err != nil {
		return nil, err
	}

	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid role id")
	}

	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return nil, roleLookupError(err)
	}

	if req.Name != "" {
		role.Name = req.Name
	}
	if req.Description != "" {
		role.Description = req.Description
	}
	if err := s.repo.Save(ctx, role); err != nil {
		return nil, err
	}

	resp, err := s.roleResponse(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, model.ActionUpdateRole, "role", resp)
	return resp, nil
}

// RemoveRole deletes the role record. Permissions the role owned keep their
// owner reference and are left dangling; they are not detached or reassigned.
func (s *roleService) RemoveRole(ctx context.Context, actor *auth.Context, id string) (*RoleResponse, error) {
	if err := auth.RequirePermission(actor, auth.PermDeleteRole); err != nil {
		return nil, err
	}

	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid role id")
	}

	role, err := s.repo.FindByIDWithPermissions(ctx, roleID)
	if err != nil {
		return nil, roleLookupError(err)
	}

	if err := s.repo.Delete(ctx, role); err != nil {
		return nil, err
	}

	resp := toRoleResponse(*role)
	s.audit.Record(ctx, actor, model.ActionDeleteRole, "role", resp)
	return &resp, nil
}

// AssignPermissions moves each named permission to the role, overwriting its
// owner reference and silently detaching it from whatever role owned it
// before. The fetch-mutate-save sequence runs outside a transaction, so two
// concurrent grants against the same role can race.
func (s *roleService) AssignPermissions(ctx context.Context, actor *auth.Context, roleID string, permissionIDs []string) (*RoleResponse, error) {
	if err := auth.RequirePermission(actor, auth.PermAssignPermissions); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(roleID)
	if err != nil {
		return nil, apperr.Validationf("invalid role id")
	}
	permIDs, err := parseUUIDs(permissionIDs)
	if err != nil {
		return nil, apperr.Validationf("invalid permission id")
	}

	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, roleLookupError(err)
	}

	perms, err := s.findAllPermissions(ctx, permIDs)
	if err != nil {
		return nil, err
	}
	for i := range perms {
		perms[i].RoleID = &role.ID
	}
	if err := s.repo.SavePermissions(ctx, perms); err != nil {
		return nil, err
	}

	resp, err := s.roleResponse(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, model.ActionAssignPermissions, "role", resp)
	return resp, nil
}

// RevokePermissions sets each named permission's owner to unassigned. It does
// not verify that roleID is the current owner: passing a different role still
// detaches the permission from whoever holds it.
func (s *roleService) RevokePermissions(ctx context.Context, actor *auth.Context, roleID string, permissionIDs []string) (*RoleResponse, error) {
	if err := auth.RequirePermission(actor, auth.PermAssignPermissions); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(roleID)
	if err != nil {
		return nil, apperr.Validationf("invalid role id")
	}
	permIDs, err := parseUUIDs(permissionIDs)
	if err != nil {
		return nil, apperr.Validationf("invalid permission id")
	}

	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, roleLookupError(err)
	}

	perms, err := s.findAllPermissions(ctx, permIDs)
	if err != nil {
		return nil, err
	}
	for i := range perms {
		perms[i].RoleID = nil
	}
	if err := s.repo.SavePermissions(ctx, perms); err != nil {
		return nil, err
	}

	resp, err := s.roleResponse(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, model.ActionRevokePermissions, "role", resp)
	return resp, nil
}

// CreatePermission registers a permission from the closed catalog, initially
// unassigned. Free-form names are rejected.
func (s *roleService) CreatePermission(ctx context.Context, actor *auth.Context, name string) (*PermissionResponse, error) {
	if err := auth.RequirePermission(actor, auth.PermAssignPermissions); err != nil {
		return nil, err
	}
	if !auth.KnownPermission(name) {
		return nil, apperr.Validationf("unknown permission name %q", name)
	}
	if _, err := s.repo.FindPermissionByName(ctx, name); err == nil {
		return nil, apperr.Conflictf("permission %q already exists", name)
	}

	perm := &model.Permission{Name: name}
	if err := s.repo.CreatePermission(ctx, perm); err != nil {
		return nil, err
	}
	return &PermissionResponse{ID: perm.ID.String(), Name: perm.Name}, nil
}

func (s *roleService) PermissionNamesForRole(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	return s.repo.PermissionNamesForRole(ctx, roleID)
}

// SeedDefaults registers the permission catalog and the built-in roles.
// Catalog permissions that are still unassigned are granted to the admin
// role; permissions already owned elsewhere are left alone.
func (s *roleService) SeedDefaults(ctx context.Context) error {
	admin, err := s.ensureRole(ctx, "admin", "system administrator", true)
	if err != nil {
		return err
	}
	if _, err := s.ensureRole(ctx, "lecturer", "teaching staff", true); err != nil {
		return err
	}
	if _, err := s.ensureRole(ctx, "student", "enrolled student", true); err != nil {
		return err
	}

	for _, name := range auth.Catalog {
		perm, err := s.repo.FindPermissionByName(ctx, name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			perm = &model.Permission{Name: name, RoleID: &admin.ID}
			if err := s.repo.CreatePermission(ctx, perm); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		if perm.RoleID == nil {
			perm.RoleID = &admin.ID
			if err := s.repo.SavePermissions(ctx, []model.Permission{*perm}); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- Helpers ---

func (s *roleService) ensureRole(ctx context.Context, name, description string, isLogin bool) (*model.Role, error) {
	role, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	role = &model.Role{Name: name, Description: description, IsLogin: isLogin}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// findAllPermissions fails with NotFound when any requested id is missing
func (s *roleService) findAllPermissions(ctx context.Context, ids []uuid.UUID) ([]model.Permission, error) {
	perms, err := s.repo.FindPermissions(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(perms) != len(ids) {
		return nil, apperr.NotFoundf("one or more permissions not found")
	}
	return perms, nil
}

func (s *roleService) roleResponse(ctx context.Context, id uuid.UUID) (*RoleResponse, error) {
	role, err := s.repo.FindByIDWithPermissions(ctx, id)
	if err != nil {
		return nil, roleLookupError(err)
	}
	resp := toRoleResponse(*role)
	return &resp, nil
}

func roleLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("role not found")
	}
	return err
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toRoleResponse(r model.Role) RoleResponse {
	perms := make([]PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, PermissionResponse{ID: p.ID.String(), Name: p.Name})
	}
	return RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		IsLogin:     r.IsLogin,
		Permissions: perms,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
