package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"edumanage/internal/ai"
	"edumanage/internal/apperr"
	"edumanage/internal/auth"
	"edumanage/internal/model"
	"edumanage/internal/repository"
)

// --- DTOs ---

type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	LecturerID  string `json:"lecturer_id" binding:"required"`
}

type UpdateCourseRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	LecturerID  *string `json:"lecturer_id"`
}

type RecommendCoursesRequest struct {
	Interests []string `json:"interests" binding:"required"`
}

type GenerateSyllabusRequest struct {
	Topic string `json:"topic" binding:"required"`
}

type CourseResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	LecturerID   string `json:"lecturer_id"`
	LecturerName string `json:"lecturer_name"`
	CreatedAt    string `json:"created_at"`
}

type SyllabusResponse struct {
	ID       string `json:"id"`
	FilePath string `json:"file_path"`
	CourseID string `json:"course_id"`
}

// --- Interface ---

type CourseService interface {
	CreateCourse(ctx context.Context, actor *auth.Context, req CreateCourseRequest) (*CourseResponse, error)
	UpdateCourse(ctx context.Context, actor *auth.Context, id string, req UpdateCourseRequest) (*CourseResponse, error)
	ListCourses(ctx context.Context, lecturerID string) ([]CourseResponse, error)
	GetCourse(ctx context.Context, id string) (*CourseResponse, error)

	UploadSyllabus(ctx context.Context, actor *auth.Context, courseID, filePath string) (*SyllabusResponse, error)
	ListSyllabus(ctx context.Context, courseID string) ([]SyllabusResponse, error)

	RecommendCourses(ctx context.Context, req RecommendCoursesRequest) (string, error)
	GenerateSyllabus(ctx context.Context, actor *auth.Context, req GenerateSyllabusRequest) (string, error)
}

type courseService struct {
	repo      repository.CourseRepository
	users     UserDirectory
	audit     AuditService
	generator ai.TextGenerator
}

func NewCourseService(
	repo repository.CourseRepository,
	users UserDirectory,
	audit AuditService,
	generator ai.TextGenerator,
) CourseService {
	return &courseService{
		repo:      repo,
		users:     users,
		audit:     audit,
		generator: generator,
	}
}

// --- Implementation ---

func (s *courseService) CreateCourse(ctx context.Context, actor *auth.Context, req CreateCourseRequest) (*CourseResponse, error) {
	if err := auth.RequireRole(actor, "admin", "lecturer"); err != nil {
		return nil, err
	}

	lecturer, err := s.resolveLecturer(ctx, req.LecturerID)
	if err != nil {
		return nil, err
	}

	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		LecturerID:  lecturer.ID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}
	course.Lecturer = *lecturer

	resp := toCourseResponse(*course)
	s.audit.Record(ctx, actor, model.ActionCreateCourse, "course", resp)
	return &resp, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, actor *auth.Context, id string, req UpdateCourseRequest) (*CourseResponse, error) {
	if err := auth.RequireRole(actor, "admin", "lecturer"); err != nil {
		return nil, err
	}

	courseID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid course id")
	}
	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("course not found")
		}
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.LecturerID != nil {
		lecturer, err := s.resolveLecturer(ctx, *req.LecturerID)
		if err != nil {
			return nil, err
		}
		course.LecturerID = lecturer.ID
		course.Lecturer = *lecturer
	}

	if err := s.repo.Save(ctx, course); err != nil {
		return nil, err
	}

	resp := toCourseResponse(*course)
	s.audit.Record(ctx, actor, model.ActionUpdateCourse, "course", resp)
	return &resp, nil
}

func (s *courseService) ListCourses(ctx context.Context, lecturerID string) ([]CourseResponse, error) {
	var filter *uuid.UUID
	if lecturerID != "" {
		id, err := uuid.Parse(lecturerID)
		if err != nil {
			return nil, apperr.Validationf("invalid lecturer id")
		}
		filter = &id
	}

	courses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	res := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		res = append(res, toCourseResponse(c))
	}
	return res, nil
}

func (s *courseService) GetCourse(ctx context.Context, id string) (*CourseResponse, error) {
	courseID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid course id")
	}
	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("course not found")
		}
		return nil, err
	}
	resp := toCourseResponse(*course)
	return &resp, nil
}

func (s *courseService) UploadSyllabus(ctx context.Context, actor *auth.Context, courseID, filePath string) (*SyllabusResponse, error) {
	if err := auth.RequireRole(actor, "admin", "lecturer"); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(courseID)
	if err != nil {
		return nil, apperr.Validationf("invalid course id")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("course not found")
		}
		return nil, err
	}

	syllabus := &model.Syllabus{
		FilePath: filePath,
		CourseID: course.ID,
	}
	if err := s.repo.CreateSyllabus(ctx, syllabus); err != nil {
		return nil, err
	}

	resp := SyllabusResponse{
		ID:       syllabus.ID.String(),
		FilePath: syllabus.FilePath,
		CourseID: syllabus.CourseID.String(),
	}
	s.audit.Record(ctx, actor, model.ActionUploadSyllabus, "syllabus", resp)
	return &resp, nil
}

func (s *courseService) ListSyllabus(ctx context.Context, courseID string) ([]SyllabusResponse, error) {
	id, err := uuid.Parse(courseID)
	if err != nil {
		return nil, apperr.Validationf("invalid course id")
	}

	items, err := s.repo.ListSyllabus(ctx, id)
	if err != nil {
		return nil, err
	}

	res := make([]SyllabusResponse, 0, len(items))
	for _, item := range items {
		res = append(res, SyllabusResponse{
			ID:       item.ID.String(),
			FilePath: item.FilePath,
			CourseID: item.CourseID.String(),
		})
	}
	return res, nil
}

func (s *courseService) RecommendCourses(ctx context.Context, req RecommendCoursesRequest) (string, error) {
	if s.generator == nil {
		return "", apperr.Validationf("text generation is not configured")
	}
	return s.generator.RecommendCourses(ctx, req.Interests)
}

func (s *courseService) GenerateSyllabus(ctx context.Context, actor *auth.Context, req GenerateSyllabusRequest) (string, error) {
	if err := auth.RequireRole(actor, "admin", "lecturer"); err != nil {
		return "", err
	}
	if s.generator == nil {
		return "", apperr.Validationf("text generation is not configured")
	}
	return s.generator.GenerateSyllabus(ctx, req.Topic)
}

// --- Helpers ---

func (s *courseService) resolveLecturer(ctx context.Context, id string) (*model.User, error) {
	lecturerID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid lecturer id")
	}
	lecturer, err := s.users.GetByID(ctx, lecturerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("lecturer not found")
		}
		return nil, err
	}
	return lecturer, nil
}

func toCourseResponse(c model.Course) CourseResponse {
	return CourseResponse{
		ID:           c.ID.String(),
		Title:        c.Title,
		Description:  c.Description,
		LecturerID:   c.LecturerID.String(),
		LecturerName: c.Lecturer.Name,
		CreatedAt:    c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
