package repository

import (
	"context"

	"edumanage/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	Save(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	List(ctx context.Context, lecturerID *uuid.UUID) ([]model.Course, error)
	CreateSyllabus(ctx context.Context, syllabus *model.Syllabus) error
	ListSyllabus(ctx context.Context, courseID uuid.UUID) ([]model.Syllabus, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return GetDB(ctx, r.db).Create(course).Error
}

func (r *courseRepository) Save(ctx context.Context, course *model.Course) error {
	return GetDB(ctx, r.db).Save(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	if err := GetDB(ctx, r.db).Preload("Lecturer").First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context, lecturerID *uuid.UUID) ([]model.Course, error) {
	query := GetDB(ctx, r.db).Model(&model.Course{}).Preload("Lecturer")
	if lecturerID != nil {
		query = query.Where("lecturer_id = ?", *lecturerID)
	}

	var courses []model.Course
	if err := query.Order("created_at asc").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) CreateSyllabus(ctx context.Context, syllabus *model.Syllabus) error {
	return GetDB(ctx, r.db).Create(syllabus).Error
}

func (r *courseRepository) ListSyllabus(ctx context.Context, courseID uuid.UUID) ([]model.Syllabus, error) {
	var entries []model.Syllabus
	if err := GetDB(ctx, r.db).Where("course_id = ?", courseID).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
