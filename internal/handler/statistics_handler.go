package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edumanage/internal/middleware"
	"edumanage/internal/service"
	"edumanage/pkg/response"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/statistics", h.Overview)
}

// Overview returns enrollment and user aggregates
// @Summary      Statistics overview
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.StatisticsOverview}
// @Failure      403  {object}  response.Response
// @Router       /statistics [get]
func (h *StatisticsHandler) Overview(c *gin.Context) {
	stats, err := h.statisticsService.Overview(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
