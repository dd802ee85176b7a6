package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"edumanage/internal/apperr"
	"edumanage/internal/auth"
	"edumanage/internal/model"
	"edumanage/internal/repository"
)

type assignmentFixture struct {
	svc     AssignmentService
	db      *gorm.DB
	course  *model.Course
	student *model.User
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	db := newTestDB(t)

	studentRole := mustCreateRole(t, db, "student", true)
	lecturerRole := mustCreateRole(t, db, "lecturer", true)
	lecturer := mustCreateUser(t, db, "Dr. Grace Hopper", "grace@example.edu", lecturerRole.ID)
	student := mustCreateUser(t, db, "Alan Kay", "alan@example.edu", studentRole.ID)
	course := mustCreateCourse(t, db, "Compilers", lecturer.ID)

	audit := NewAuditService(repository.NewAuditRepository(db), zerolog.Nop())
	svc := NewAssignmentService(
		repository.NewAssignmentRepository(db),
		repository.NewCourseRepository(db),
		repository.NewUserRepository(db),
		audit,
	)
	return &assignmentFixture{svc: svc, db: db, course: course, student: student}
}

func (f *assignmentFixture) submit(t *testing.T) *AssignmentResponse {
	t.Helper()
	assignment, err := f.svc.Create(context.Background(), actorWith("student"), CreateAssignmentRequest{
		CourseID:  f.course.ID.String(),
		StudentID: f.student.ID.String(),
		File:      "uploads/homework1.pdf",
	})
	require.NoError(t, err)
	return assignment
}

func TestCreateAssignment(t *testing.T) {
	f := newAssignmentFixture(t)

	assignment := f.submit(t)
	assert.Equal(t, "uploads/homework1.pdf", assignment.File)
	assert.Nil(t, assignment.Grade)

	_, err := f.svc.Create(context.Background(), actorWith("lecturer"), CreateAssignmentRequest{
		CourseID: f.course.ID.String(), StudentID: f.student.ID.String(), File: "x.pdf",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = f.svc.Create(context.Background(), actorWith("student"), CreateAssignmentRequest{
		CourseID: uuid.NewString(), StudentID: f.student.ID.String(), File: "x.pdf",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGradeAssignment(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	assignment := f.submit(t)

	graded, err := f.svc.Grade(ctx, actorWith("lecturer"), assignment.ID, GradeAssignmentRequest{Grade: "87.5"})
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)
	assert.Equal(t, "87.50", *graded.Grade)

	// the grading permission opens the gate for non-lecturer roles too
	_, err = f.svc.Grade(ctx, actorWith("teaching-assistant", auth.PermGradeAssignment), assignment.ID,
		GradeAssignmentRequest{Grade: "90"})
	require.NoError(t, err)

	_, err = f.svc.Grade(ctx, actorWith("student"), assignment.ID, GradeAssignmentRequest{Grade: "100"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestGradeAssignmentValidation(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	assignment := f.submit(t)
	lecturer := actorWith("lecturer")

	for _, bad := range []string{"not-a-number", "-1", "100.01"} {
		_, err := f.svc.Grade(ctx, lecturer, assignment.ID, GradeAssignmentRequest{Grade: bad})
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, apperr.ErrValidation), bad)
	}

	_, err := f.svc.Grade(ctx, lecturer, uuid.NewString(), GradeAssignmentRequest{Grade: "50"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListAssignmentsFilters(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	f.submit(t)

	other := mustCreateUser(t, f.db, "Barbara Liskov", "barbara@example.edu", f.student.RoleID)
	_, err := f.svc.Create(ctx, actorWith("student"), CreateAssignmentRequest{
		CourseID: f.course.ID.String(), StudentID: other.ID.String(), File: "essay.pdf",
	})
	require.NoError(t, err)

	byStudent, err := f.svc.List(ctx, FindAssignmentsQuery{StudentID: f.student.ID.String()})
	require.NoError(t, err)
	require.Len(t, byStudent, 1)

	byCourse, err := f.svc.List(ctx, FindAssignmentsQuery{CourseID: f.course.ID.String()})
	require.NoError(t, err)
	assert.Len(t, byCourse, 2)
}
