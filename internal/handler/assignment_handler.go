package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edumanage/internal/middleware"
	"edumanage/internal/service"
	"edumanage/pkg/response"
)

type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

func (h *AssignmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	assignments := router.Group("/assignments")
	{
		assignments.GET("", h.ListAssignments)
		assignments.POST("", h.CreateAssignment)
		assignments.PUT("/:id/grade", h.GradeAssignment)
	}
}

// CreateAssignment submits an assignment for a course
// @Summary      Submit assignment
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAssignmentRequest  true  "Assignment Payload"
// @Success      201  {object}  response.Response{data=service.AssignmentResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /assignments [post]
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, assignment))
}

// ListAssignments returns assignments filtered by course or student
// @Summary      List assignments
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Param        course_id   query  string  false  "Course ID"
// @Param        student_id  query  string  false  "Student ID"
// @Success      200  {object}  response.Response{data=[]service.AssignmentResponse}
// @Router       /assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	var query service.FindAssignmentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid query: "+err.Error()))
		return
	}

	assignments, err := h.assignmentService.List(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, assignments))
}

// GradeAssignment records a grade on an assignment
// @Summary      Grade assignment
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Assignment ID"
// @Param        payload  body      service.GradeAssignmentRequest  true  "Grade Payload"
// @Success      200  {object}  response.Response{data=service.AssignmentResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /assignments/{id}/grade [put]
func (h *AssignmentHandler) GradeAssignment(c *gin.Context) {
	var req service.GradeAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	assignment, err := h.assignmentService.Grade(c.Request.Context(), middleware.Actor(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, assignment))
}
