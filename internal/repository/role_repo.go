package repository

import (
	"context"

	"edumanage/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleFilter narrows Find; zero-valued fields are ignored
type RoleFilter struct {
	ID          *uuid.UUID
	Name        string
	Description string
}

type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Save(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, role *model.Role) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error)
	FindByIDWithPermissions(ctx context.Context, id uuid.UUID) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	Find(ctx context.Context, filter RoleFilter) ([]model.Role, error)
	CreatePermission(ctx context.Context, perm *model.Permission) error
	FindPermissions(ctx context.Context, ids []uuid.UUID) ([]model.Permission, error)
	FindPermissionByName(ctx context.Context, name string) (*model.Permission, error)
	SavePermissions(ctx context.Context, perms []model.Permission) error
	PermissionNamesForRole(ctx context.Context, roleID uuid.UUID) ([]string, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Create(role).Error
}

func (r *roleRepository) Save(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Save(role).Error
}

// Delete removes the role record only. Permissions still pointing at this
// role keep their owner reference; they are not detached or reassigned.
func (r *roleRepository) Delete(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Delete(role).Error
}

func (r *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByIDWithPermissions(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) Find(ctx context.Context, filter RoleFilter) ([]model.Role, error) {
	query := GetDB(ctx, r.db).Model(&model.Role{}).Preload("Permissions")
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}
	if filter.Description != "" {
		query = query.Where("description = ?", filter.Description)
	}

	var roles []model.Role
	if err := query.Order("created_at asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) CreatePermission(ctx context.Context, perm *model.Permission) error {
	return GetDB(ctx, r.db).Create(perm).Error
}

func (r *roleRepository) FindPermissions(ctx context.Context, ids []uuid.UUID) ([]model.Permission, error) {
	var perms []model.Permission
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *roleRepository) FindPermissionByName(ctx context.Context, name string) (*model.Permission, error) {
	var perm model.Permission
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&perm).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

// SavePermissions bulk-saves mutated permission rows. Callers mutate owner
// references in memory first; the save is intentionally not wrapped in a
// transaction, matching the rest of the grant/revoke sequence.
func (r *roleRepository) SavePermissions(ctx context.Context, perms []model.Permission) error {
	db := GetDB(ctx, r.db)
	for i := range perms {
		if err := db.Save(&perms[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *roleRepository) PermissionNamesForRole(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	var names []string
	if err := GetDB(ctx, r.db).Model(&model.Permission{}).
		Where("role_id = ?", roleID).
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
