package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"edumanage/internal/middleware"
	"edumanage/internal/service"
	"edumanage/pkg/response"
)

type CourseHandler struct {
	courseService service.CourseService
	uploadDir     string
}

func NewCourseHandler(courseService service.CourseService, uploadDir string) *CourseHandler {
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &CourseHandler{courseService: courseService, uploadDir: uploadDir}
}

func (h *CourseHandler) RegisterRoutes(router *gin.RouterGroup) {
	courses := router.Group("/courses")
	{
		courses.GET("", h.ListCourses)
		courses.GET("/:id", h.GetCourse)
		courses.POST("", h.CreateCourse)
		courses.PUT("/:id", h.UpdateCourse)
		courses.POST("/:id/syllabus", h.UploadSyllabus)
		courses.GET("/:id/syllabus", h.ListSyllabus)
		courses.POST("/recommend", h.RecommendCourses)
		courses.POST("/generate-syllabus", h.GenerateSyllabus)
	}
}

// ListCourses returns courses, optionally filtered by lecturer
// @Summary      List courses
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        lecturer_id  query  string  false  "Lecturer ID"
// @Success      200  {object}  response.Response{data=[]service.CourseResponse}
// @Router       /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.ListCourses(c.Request.Context(), c.Query("lecturer_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, courses))
}

// GetCourse returns a single course by ID
// @Summary      Get course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Course ID"
// @Success      200  {object}  response.Response{data=service.CourseResponse}
// @Failure      404  {object}  response.Response
// @Router       /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, course))
}

// CreateCourse creates a course
// @Summary      Create course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCourseRequest  true  "Create Course Payload"
// @Success      201  {object}  response.Response{data=service.CourseResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	course, err := h.courseService.CreateCourse(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, course))
}

// UpdateCourse updates course details
// @Summary      Update course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Course ID"
// @Param        payload  body      service.UpdateCourseRequest  true  "Update Course Payload"
// @Success      200  {object}  response.Response{data=service.CourseResponse}
// @Failure      404  {object}  response.Response
// @Router       /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	course, err := h.courseService.UpdateCourse(c.Request.Context(), middleware.Actor(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, course))
}

// UploadSyllabus stores a syllabus file for a course
// @Summary      Upload syllabus
// @Tags         courses
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Course ID"
// @Param        file  formData  file    true  "Syllabus file"
// @Success      201  {object}  response.Response{data=service.SyllabusResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /courses/{id}/syllabus [post]
func (h *CourseHandler) UploadSyllabus(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file: "+err.Error()))
		return
	}

	dest := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, dest); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to store file"))
		return
	}

	syllabus, err := h.courseService.UploadSyllabus(c.Request.Context(), middleware.Actor(c), c.Param("id"), dest)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, syllabus))
}

// ListSyllabus returns syllabus files of a course
// @Summary      List syllabus files
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Course ID"
// @Success      200  {object}  response.Response{data=[]service.SyllabusResponse}
// @Router       /courses/{id}/syllabus [get]
func (h *CourseHandler) ListSyllabus(c *gin.Context) {
	items, err := h.courseService.ListSyllabus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// RecommendCourses generates course suggestions from interests
// @Summary      Recommend courses
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RecommendCoursesRequest  true  "Interests"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /courses/recommend [post]
func (h *CourseHandler) RecommendCourses(c *gin.Context) {
	var req service.RecommendCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	text, err := h.courseService.RecommendCourses(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"recommendation": text}))
}

// GenerateSyllabus drafts a syllabus outline for a topic
// @Summary      Generate syllabus
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.GenerateSyllabusRequest  true  "Topic"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /courses/generate-syllabus [post]
func (h *CourseHandler) GenerateSyllabus(c *gin.Context) {
	var req service.GenerateSyllabusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	text, err := h.courseService.GenerateSyllabus(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"syllabus": text}))
}
