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
	"edumanage/internal/model"
	"edumanage/internal/repository"
)

// stubGenerator returns canned text for generation calls
type stubGenerator struct {
	lastPrompt string
}

func (s *stubGenerator) RecommendCourses(ctx context.Context, interests []string) (string, error) {
	if len(interests) > 0 {
		s.lastPrompt = interests[0]
	}
	return "Try Distributed Systems.", nil
}

func (s *stubGenerator) GenerateSyllabus(ctx context.Context, topic string) (string, error) {
	s.lastPrompt = topic
	return "Week 1: Introduction to " + topic, nil
}

type courseFixture struct {
	svc       CourseService
	db        *gorm.DB
	lecturer  *model.User
	generator *stubGenerator
}

func newCourseFixture(t *testing.T) *courseFixture {
	t.Helper()
	db := newTestDB(t)

	lecturerRole := mustCreateRole(t, db, "lecturer", true)
	lecturer := mustCreateUser(t, db, "Dr. Grace Hopper", "grace@example.edu", lecturerRole.ID)

	generator := &stubGenerator{}
	audit := NewAuditService(repository.NewAuditRepository(db), zerolog.Nop())
	svc := NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewUserRepository(db),
		audit,
		generator,
	)
	return &courseFixture{svc: svc, db: db, lecturer: lecturer, generator: generator}
}

func TestCreateCourse(t *testing.T) {
	f := newCourseFixture(t)
	ctx := context.Background()

	course, err := f.svc.CreateCourse(ctx, actorWith("lecturer"), CreateCourseRequest{
		Title:      "Operating Systems",
		LecturerID: f.lecturer.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Operating Systems", course.Title)
	assert.Equal(t, "Dr. Grace Hopper", course.LecturerName)

	_, err = f.svc.CreateCourse(ctx, actorWith("student"), CreateCourseRequest{
		Title: "Forbidden", LecturerID: f.lecturer.ID.String(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = f.svc.CreateCourse(ctx, actorWith("admin"), CreateCourseRequest{
		Title: "Orphan", LecturerID: uuid.NewString(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpdateCourse(t *testing.T) {
	f := newCourseFixture(t)
	ctx := context.Background()

	course, err := f.svc.CreateCourse(ctx, actorWith("lecturer"), CreateCourseRequest{
		Title: "Networks", LecturerID: f.lecturer.ID.String(),
	})
	require.NoError(t, err)

	title := "Computer Networks"
	updated, err := f.svc.UpdateCourse(ctx, actorWith("lecturer"), course.ID, UpdateCourseRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Computer Networks", updated.Title)

	_, err = f.svc.UpdateCourse(ctx, actorWith("lecturer"), uuid.NewString(), UpdateCourseRequest{Title: &title})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListCoursesByLecturer(t *testing.T) {
	f := newCourseFixture(t)
	ctx := context.Background()

	other := mustCreateUser(t, f.db, "Dr. Donald Knuth", "don@example.edu", f.lecturer.RoleID)
	mustCreateCourse(t, f.db, "Algorithms", other.ID)
	mustCreateCourse(t, f.db, "Databases", f.lecturer.ID)

	mine, err := f.svc.ListCourses(ctx, f.lecturer.ID.String())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Databases", mine[0].Title)

	all, err := f.svc.ListCourses(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUploadAndListSyllabus(t *testing.T) {
	f := newCourseFixture(t)
	ctx := context.Background()
	course := mustCreateCourse(t, f.db, "Graphics", f.lecturer.ID)

	uploaded, err := f.svc.UploadSyllabus(ctx, actorWith("lecturer"), course.ID.String(), "uploads/graphics.pdf")
	require.NoError(t, err)
	assert.Equal(t, "uploads/graphics.pdf", uploaded.FilePath)

	_, err = f.svc.UploadSyllabus(ctx, actorWith("student"), course.ID.String(), "x.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	items, err := f.svc.ListSyllabus(ctx, course.ID.String())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uploaded.ID, items[0].ID)
}

func TestGeneration(t *testing.T) {
	f := newCourseFixture(t)
	ctx := context.Background()

	text, err := f.svc.RecommendCourses(ctx, RecommendCoursesRequest{Interests: []string{"systems"}})
	require.NoError(t, err)
	assert.NotEmpty(t, text)

	syllabus, err := f.svc.GenerateSyllabus(ctx, actorWith("lecturer"), GenerateSyllabusRequest{Topic: "Compilers"})
	require.NoError(t, err)
	assert.Contains(t, syllabus, "Compilers")

	_, err = f.svc.GenerateSyllabus(ctx, actorWith("student"), GenerateSyllabusRequest{Topic: "Compilers"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}
