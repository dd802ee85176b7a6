package service

import (
	"context"

	"edumanage/internal/auth"
	"edumanage/internal/repository"
)

type StatisticsOverview struct {
	EnrollmentsByStatus  []repository.StatusCount           `json:"enrollments_by_status"`
	EnrollmentsPerCourse []repository.CourseEnrollmentCount `json:"enrollments_per_course"`
	UsersByRole          []repository.RoleCount             `json:"users_by_role"`
}

type StatisticsService interface {
	Overview(ctx context.Context, actor *auth.Context) (*StatisticsOverview, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

func (s *statisticsService) Overview(ctx context.Context, actor *auth.Context) (*StatisticsOverview, error) {
	if err := auth.RequireRole(actor, "admin", "lecturer"); err != nil {
		return nil, err
	}

	byStatus, err := s.repo.EnrollmentsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	perCourse, err := s.repo.EnrollmentsPerCourse(ctx, 10)
	if err != nil {
		return nil, err
	}
	byRole, err := s.repo.UsersByRole(ctx)
	if err != nil {
		return nil, err
	}

	return &StatisticsOverview{
		EnrollmentsByStatus:  byStatus,
		EnrollmentsPerCourse: perCourse,
		UsersByRole:          byRole,
	}, nil
}
