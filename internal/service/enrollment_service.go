package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"edumanage/internal/apperr"
	"edumanage/internal/auth"
	"edumanage/internal/mailer"
	"edumanage/internal/model"
	"edumanage/internal/repository"
)

// Narrow collaborator views consumed by the workflow. The repositories
// satisfy them; tests can substitute their own.

// CourseDirectory resolves course references
type CourseDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
}

// UserDirectory resolves user references
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Broadcaster pushes a message to connected realtime clients
type Broadcaster interface {
	Broadcast(message []byte)
}

// --- DTOs ---

type EnrollmentResponse struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	CourseTitle string `json:"course_title"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type SetEnrollmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- Interface ---

// EnrollmentService is the state machine governing enrollment status.
// Enrollments are created pending by students; admins may set any status to
// any other status: there is no transition table, so approved and rejected
// enrollments can be re-opened and a status can be re-set idempotently.
type EnrollmentService interface {
	Enroll(ctx context.Context, actor *auth.Context, courseID, studentID string) (*EnrollmentResponse, error)
	SetStatus(ctx context.Context, actor *auth.Context, enrollmentID, status string) (*EnrollmentResponse, error)
	List(ctx context.Context, status string) ([]EnrollmentResponse, error)
}

type enrollmentService struct {
	repo     repository.EnrollmentRepository
	courses  CourseDirectory
	users    UserDirectory
	audit    AuditService
	notifier mailer.Sender
	hub      Broadcaster
	logger   zerolog.Logger
}

func NewEnrollmentService(
	repo repository.EnrollmentRepository,
	courses CourseDirectory,
	users UserDirectory,
	audit AuditService,
	notifier mailer.Sender,
	hub Broadcaster,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		repo:     repo,
		courses:  courses,
		users:    users,
		audit:    audit,
		notifier: notifier,
		hub:      hub,
		logger:   logger,
	}
}

// --- Implementation ---

func (s *enrollmentService) Enroll(ctx context.Context, actor *auth.Context, courseID, studentID string) (*EnrollmentResponse, error) {
	if err := auth.RequireRole(actor, "student"); err != nil {
		return nil, err
	}

	cID, err := uuid.Parse(courseID)
	if err != nil {
		return nil, apperr.Validationf("invalid course id")
	}
	sID, err := uuid.Parse(studentID)
	if err != nil {
		return nil, apperr.Validationf("invalid student id")
	}

	course, err := s.courses.FindByID(ctx, cID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("course not found")
		}
		return nil, err
	}
	student, err := s.users.GetByID(ctx, sID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("student not found")
		}
		return nil, err
	}

	enrollment := &model.Enrollment{
		CourseID:  course.ID,
		StudentID: student.ID,
		Status:    model.EnrollmentPending,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	reloaded, err := s.repo.FindByID(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}

	resp := toEnrollmentResponse(*reloaded)
	s.audit.Record(ctx, actor, model.ActionEnrollStudent, "enrollment", resp)
	return &resp, nil
}

func (s *enrollmentService) SetStatus(ctx context.Context, actor *auth.Context, enrollmentID, status string) (*EnrollmentResponse, error) {
	if err := auth.RequireRole(actor, "admin"); err != nil {
		return nil, err
	}
	if !model.IsValidEnrollmentStatus(status) {
		return nil, apperr.Validationf("invalid enrollment status %q", status)
	}

	id, err := uuid.Parse(enrollmentID)
	if err != nil {
		return nil, apperr.Validationf("invalid enrollment id")
	}

	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("enrollment not found")
		}
		return nil, err
	}

	enrollment.Status = status
	if err := s.repo.Save(ctx, enrollment); err != nil {
		return nil, err
	}

	resp := toEnrollmentResponse(*enrollment)
	s.audit.Record(ctx, actor, model.ActionSetEnrollStatus, "enrollment", resp)
	s.announceDecision(enrollment)
	return &resp, nil
}

func (s *enrollmentService) List(ctx context.Context, status string) ([]EnrollmentResponse, error) {
	enrollments, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}

	res := make([]EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		res = append(res, toEnrollmentResponse(e))
	}
	return res, nil
}

// announceDecision notifies the student and realtime listeners. Both paths
// are best-effort: delivery failures never affect the status change.
func (s *enrollmentService) announceDecision(enrollment *model.Enrollment) {
	if s.notifier != nil {
		err := s.notifier.Send(mailer.TemplateEnrollmentDecision, enrollment.Student.Email, map[string]string{
			"name":   enrollment.Student.Name,
			"course": enrollment.Course.Title,
			"status": enrollment.Status,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("enrollment_id", enrollment.ID.String()).
				Msg("enrollment decision mail failed")
		}
	}

	if s.hub != nil {
		msg, err := json.Marshal(map[string]string{
			"event":         "enrollment_status",
			"enrollment_id": enrollment.ID.String(),
			"course_id":     enrollment.CourseID.String(),
			"student_id":    enrollment.StudentID.String(),
			"status":        enrollment.Status,
		})
		if err == nil {
			s.hub.Broadcast(msg)
		}
	}
}

func toEnrollmentResponse(e model.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:          e.ID.String(),
		CourseID:    e.CourseID.String(),
		CourseTitle: e.Course.Title,
		StudentID:   e.StudentID.String(),
		StudentName: e.Student.Name,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   e.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
