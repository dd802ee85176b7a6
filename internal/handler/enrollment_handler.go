package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edumanage/internal/middleware"
	"edumanage/internal/service"
	"edumanage/pkg/response"
)

type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

func (h *EnrollmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	enrollments := router.Group("/enrollments")
	{
		enrollments.GET("", h.ListEnrollments)
		enrollments.POST("", h.Enroll)
		enrollments.PUT("/:id/status", h.SetStatus)
	}
}

type enrollRequest struct {
	CourseID  string `json:"course_id" binding:"required"`
	StudentID string `json:"student_id" binding:"required"`
}

// Enroll registers a student on a course; new enrollments are always pending
// @Summary      Enroll in course
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      enrollRequest  true  "Enrollment Payload"
// @Success      201  {object}  response.Response{data=service.EnrollmentResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), middleware.Actor(c), req.CourseID, req.StudentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, enrollment))
}

// SetStatus decides an enrollment
// @Summary      Set enrollment status
// @Description  Sets the enrollment to pending, approved or rejected; any current status may be overwritten
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                              true  "Enrollment ID"
// @Param        payload  body      service.SetEnrollmentStatusRequest  true  "Status Payload"
// @Success      200  {object}  response.Response{data=service.EnrollmentResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /enrollments/{id}/status [put]
func (h *EnrollmentHandler) SetStatus(c *gin.Context) {
	var req service.SetEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	enrollment, err := h.enrollmentService.SetStatus(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, enrollment))
}

// ListEnrollments returns enrollments, optionally filtered by status
// @Summary      List enrollments
// @Tags         enrollments
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "Status filter"  Enums(pending, approved, rejected)
// @Success      200  {object}  response.Response{data=[]service.EnrollmentResponse}
// @Router       /enrollments [get]
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	enrollments, err := h.enrollmentService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, enrollments))
}
