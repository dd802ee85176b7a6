package repository

import (
	"context"

	"edumanage/internal/model"

	"gorm.io/gorm"
)

// StatusCount is a per-status enrollment tally
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CourseEnrollmentCount ranks courses by enrollment volume
type CourseEnrollmentCount struct {
	CourseID    string `json:"course_id"`
	CourseTitle string `json:"course_title"`
	Total       int64  `json:"total"`
}

// RoleCount is a per-role user tally
type RoleCount struct {
	RoleName string `json:"role_name"`
	Count    int64  `json:"count"`
}

type StatisticsRepository interface {
	EnrollmentsByStatus(ctx context.Context) ([]StatusCount, error)
	EnrollmentsPerCourse(ctx context.Context, limit int) ([]CourseEnrollmentCount, error)
	UsersByRole(ctx context.Context) ([]RoleCount, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) EnrollmentsByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	if err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *statisticsRepository) EnrollmentsPerCourse(ctx context.Context, limit int) ([]CourseEnrollmentCount, error) {
	var counts []CourseEnrollmentCount
	if err := r.db.WithContext(ctx).Table("enrollments").
		Select("courses.id as course_id, courses.title as course_title, COUNT(enrollments.id) as total").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Group("courses.id, courses.title").
		Order("total DESC").
		Limit(limit).
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *statisticsRepository) UsersByRole(ctx context.Context) ([]RoleCount, error) {
	var counts []RoleCount
	if err := r.db.WithContext(ctx).Table("users").
		Select("roles.name as role_name, COUNT(users.id) as count").
		Joins("JOIN roles ON roles.id = users.role_id").
		Group("roles.name").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}
