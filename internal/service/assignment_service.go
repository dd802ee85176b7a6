package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"edumanage/internal/apperr"
	"edumanage/internal/auth"
	"edumanage/internal/model"
	"edumanage/internal/repository"
)

// --- DTOs ---

type CreateAssignmentRequest struct {
	CourseID  string `json:"course_id" binding:"required"`
	StudentID string `json:"student_id" binding:"required"`
	File      string `json:"file" binding:"required"`
}

type GradeAssignmentRequest struct {
	Grade string `json:"grade" binding:"required"`
}

type FindAssignmentsQuery struct {
	CourseID  string `form:"course_id"`
	StudentID string `form:"student_id"`
}

type AssignmentResponse struct {
	ID        string  `json:"id"`
	CourseID  string  `json:"course_id"`
	StudentID string  `json:"student_id"`
	File      string  `json:"file"`
	Grade     *string `json:"grade"`
	CreatedAt string  `json:"created_at"`
}

// --- Interface ---

type AssignmentService interface {
	Create(ctx context.Context, actor *auth.Context, req CreateAssignmentRequest) (*AssignmentResponse, error)
	List(ctx context.Context, query FindAssignmentsQuery) ([]AssignmentResponse, error)
	Grade(ctx context.Context, actor *auth.Context, id string, req GradeAssignmentRequest) (*AssignmentResponse, error)
}

type assignmentService struct {
	repo    repository.AssignmentRepository
	courses CourseDirectory
	users   UserDirectory
	audit   AuditService
}

func NewAssignmentService(
	repo repository.AssignmentRepository,
	courses CourseDirectory,
	users UserDirectory,
	audit AuditService,
) AssignmentService {
	return &assignmentService{
		repo:    repo,
		courses: courses,
		users:   users,
		audit:   audit,
	}
}

// --- Implementation ---

func (s *assignmentService) Create(ctx context.Context, actor *auth.Context, req CreateAssignmentRequest) (*AssignmentResponse, error) {
	if err := auth.RequireRole(actor, "student"); err != nil {
		return nil, err
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return nil, apperr.Validationf("invalid course id")
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return nil, apperr.Validationf("invalid student id")
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("course not found")
		}
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("student not found")
		}
		return nil, err
	}

	assignment := &model.Assignment{
		CourseID:  courseID,
		StudentID: studentID,
		File:      req.File,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, err
	}

	resp := toAssignmentResponse(*assignment)
	s.audit.Record(ctx, actor, model.ActionCreateAssignment, "assignment", resp)
	return &resp, nil
}

func (s *assignmentService) List(ctx context.Context, query FindAssignmentsQuery) ([]AssignmentResponse, error) {
	var courseID, studentID *uuid.UUID
	if query.CourseID != "" {
		id, err := uuid.Parse(query.CourseID)
		if err != nil {
			return nil, apperr.Validationf("invalid course id")
		}
		courseID = &id
	}
	if query.StudentID != "" {
		id, err := uuid.Parse(query.StudentID)
		if err != nil {
			return nil, apperr.Validationf("invalid student id")
		}
		studentID = &id
	}

	assignments, err := s.repo.List(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}

	res := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		res = append(res, toAssignmentResponse(a))
	}
	return res, nil
}

func (s *assignmentService) Grade(ctx context.Context, actor *auth.Context, id string, req GradeAssignmentRequest) (*AssignmentResponse, error) {
	// Grading is open to lecturers, or anyone holding the grading permission.
	if err := auth.RequireRole(actor, "lecturer"); err != nil {
		if permErr := auth.RequirePermission(actor, auth.PermGradeAssignment); permErr != nil {
			return nil, err
		}
	}

	assignmentID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid assignment id")
	}
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("assignment not found")
		}
		return nil, err
	}

	grade, err := decimal.NewFromString(req.Grade)
	if err != nil {
		return nil, apperr.Validationf("invalid grade %q", req.Grade)
	}
	if grade.IsNegative() || grade.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperr.Validationf("grade must be between 0 and 100")
	}

	assignment.Grade = &grade
	if err := s.repo.Save(ctx, assignment); err != nil {
		return nil, err
	}

	resp := toAssignmentResponse(*assignment)
	s.audit.Record(ctx, actor, model.ActionGradeAssignment, "assignment", resp)
	return &resp, nil
}

func toAssignmentResponse(a model.Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:        a.ID.String(),
		CourseID:  a.CourseID.String(),
		StudentID: a.StudentID.String(),
		File:      a.File,
		CreatedAt: a.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if a.Grade != nil {
		g := a.Grade.StringFixed(2)
		resp.Grade = &g
	}
	return resp
}
