package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"edumanage/internal/apperr"
	"edumanage/internal/mailer"
	"edumanage/internal/model"
	"edumanage/internal/repository"
)

type enrollmentFixture struct {
	svc      EnrollmentService
	db       *gorm.DB
	course   *model.Course
	student  *model.User
	sender   *recordingSender
	hub      *recordingBroadcaster
	auditSvc AuditService
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()
	db := newTestDB(t)

	studentRole := mustCreateRole(t, db, "student", true)
	lecturerRole := mustCreateRole(t, db, "lecturer", true)
	lecturer := mustCreateUser(t, db, "Dr. Grace Hopper", "grace@example.edu", lecturerRole.ID)
	student := mustCreateUser(t, db, "Alan Kay", "alan@example.edu", studentRole.ID)
	course := mustCreateCourse(t, db, "Distributed Systems", lecturer.ID)

	sender := &recordingSender{}
	hub := &recordingBroadcaster{}
	auditSvc := NewAuditService(repository.NewAuditRepository(db), zerolog.Nop())
	svc := NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		repository.NewCourseRepository(db),
		repository.NewUserRepository(db),
		auditSvc,
		sender,
		hub,
		zerolog.Nop(),
	)
	return &enrollmentFixture{
		svc: svc, db: db, course: course, student: student,
		sender: sender, hub: hub, auditSvc: auditSvc,
	}
}

func TestEnrollAlwaysStartsPending(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	enrollment, err := f.svc.Enroll(ctx, actorWith("student"), f.course.ID.String(), f.student.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentPending, enrollment.Status)
	assert.Equal(t, "Distributed Systems", enrollment.CourseTitle)
	assert.Equal(t, "Alan Kay", enrollment.StudentName)
}

func TestEnrollGates(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Enroll(ctx, actorWith("lecturer"), f.course.ID.String(), f.student.ID.String())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = f.svc.Enroll(ctx, nil, f.course.ID.String(), f.student.ID.String())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = f.svc.Enroll(ctx, actorWith("student"), uuid.NewString(), f.student.ID.String())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = f.svc.Enroll(ctx, actorWith("student"), f.course.ID.String(), uuid.NewString())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSetStatusValidation(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	enrollment, err := f.svc.Enroll(ctx, actorWith("student"), f.course.ID.String(), f.student.ID.String())
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, actorWith("admin"), enrollment.ID, "bogus")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.svc.SetStatus(ctx, actorWith("student"), enrollment.ID, model.EnrollmentApproved)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = f.svc.SetStatus(ctx, actorWith("admin"), uuid.NewString(), model.EnrollmentApproved)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSetStatusAnyTransitionAllowed(t *testing.T) {
	// There is no transition table: a decided enrollment can be re-decided in
	// any direction, including back to pending.
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	admin := actorWith("admin")

	enrollment, err := f.svc.Enroll(ctx, actorWith("student"), f.course.ID.String(), f.student.ID.String())
	require.NoError(t, err)

	sequence := []string{
		model.EnrollmentApproved,
		model.EnrollmentRejected,
		model.EnrollmentPending,
		model.EnrollmentApproved,
		model.EnrollmentApproved, // idempotent re-set
	}
	for _, status := range sequence {
		updated, err := f.svc.SetStatus(ctx, admin, enrollment.ID, status)
		require.NoError(t, err, status)
		assert.Equal(t, status, updated.Status)
	}
}

func TestSetStatusNotifies(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	enrollment, err := f.svc.Enroll(ctx, actorWith("student"), f.course.ID.String(), f.student.ID.String())
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, actorWith("admin"), enrollment.ID, model.EnrollmentApproved)
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, mailer.TemplateEnrollmentDecision, f.sender.sent[0].template)
	assert.Equal(t, "alan@example.edu", f.sender.sent[0].recipient)
	assert.Equal(t, model.EnrollmentApproved, f.sender.sent[0].data["status"])

	require.Len(t, f.hub.messages, 1)
	var event map[string]string
	require.NoError(t, json.Unmarshal(f.hub.messages[0], &event))
	assert.Equal(t, "enrollment_status", event["event"])
	assert.Equal(t, enrollment.ID, event["enrollment_id"])
	assert.Equal(t, model.EnrollmentApproved, event["status"])
}

func TestSetStatusSurvivesMailFailure(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.sender.err = errors.New("smtp unreachable")
	ctx := context.Background()

	enrollment, err := f.svc.Enroll(ctx, actorWith("student"), f.course.ID.String(), f.student.ID.String())
	require.NoError(t, err)

	updated, err := f.svc.SetStatus(ctx, actorWith("admin"), enrollment.ID, model.EnrollmentRejected)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentRejected, updated.Status)
}

func TestListEnrollmentsByStatus(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	studentActor := actorWith("student")

	other := mustCreateUser(t, f.db, "Barbara Liskov", "barbara@example.edu", f.student.RoleID)

	first, err := f.svc.Enroll(ctx, studentActor, f.course.ID.String(), f.student.ID.String())
	require.NoError(t, err)
	_, err = f.svc.Enroll(ctx, studentActor, f.course.ID.String(), other.ID.String())
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, actorWith("admin"), first.ID, model.EnrollmentApproved)
	require.NoError(t, err)

	pending, err := f.svc.List(ctx, model.EnrollmentPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Barbara Liskov", pending[0].StudentName)

	approved, err := f.svc.List(ctx, model.EnrollmentApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)

	all, err := f.svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEnrollmentLifecycleScenario(t *testing.T) {
	// Student enrolls, lands pending; admin approves; the student role still
	// cannot decide anything afterwards.
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	enrollment, err := f.svc.Enroll(ctx, actorWith("student"), f.course.ID.String(), f.student.ID.String())
	require.NoError(t, err)
	require.Equal(t, model.EnrollmentPending, enrollment.Status)

	approved, err := f.svc.SetStatus(ctx, actorWith("admin"), enrollment.ID, model.EnrollmentApproved)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentApproved, approved.Status)

	_, err = f.svc.SetStatus(ctx, actorWith("student"), enrollment.ID, model.EnrollmentRejected)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}
