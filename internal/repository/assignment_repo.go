package repository

import (
	"context"

	"edumanage/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	Save(ctx context.Context, assignment *model.Assignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error)
	List(ctx context.Context, courseID, studentID *uuid.UUID) ([]model.Assignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	return GetDB(ctx, r.db).Create(assignment).Error
}

func (r *assignmentRepository) Save(ctx context.Context, assignment *model.Assignment) error {
	return GetDB(ctx, r.db).Save(assignment).Error
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := GetDB(ctx, r.db).Preload("Course").First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) List(ctx context.Context, courseID, studentID *uuid.UUID) ([]model.Assignment, error) {
	query := GetDB(ctx, r.db).Model(&model.Assignment{}).Preload("Course")
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	}
	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}

	var assignments []model.Assignment
	if err := query.Order("created_at desc").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
