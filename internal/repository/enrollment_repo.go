package repository

import (
	"context"

	"edumanage/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	Save(ctx context.Context, enrollment *model.Enrollment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error)
	List(ctx context.Context, status string) ([]model.Enrollment, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return GetDB(ctx, r.db).Create(enrollment).Error
}

func (r *enrollmentRepository) Save(ctx context.Context, enrollment *model.Enrollment) error {
	return GetDB(ctx, r.db).Save(enrollment).Error
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := GetDB(ctx, r.db).Preload("Course").Preload("Student").
		First(&enrollment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) List(ctx context.Context, status string) ([]model.Enrollment, error) {
	query := GetDB(ctx, r.db).Model(&model.Enrollment{}).Preload("Course").Preload("Student")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var enrollments []model.Enrollment
	if err := query.Order("created_at desc").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}
