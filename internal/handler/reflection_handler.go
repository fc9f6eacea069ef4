package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "beproductive/backend/internal/errors"
	"beproductive/backend/internal/service"
)

type ReflectionHandler struct {
	reflectionService *service.ReflectionService
}

type saveReflectionRequest struct {
	WeekStartDate   string  `json:"weekStartDate"`
	WentWell        *string `json:"wentWell"`
	ToImprove       *string `json:"toImprove"`
	Accomplishments *string `json:"accomplishments"`
	Challenges      *string `json:"challenges"`
}

func NewReflectionHandler(reflectionService *service.ReflectionService) *ReflectionHandler {
	return &ReflectionHandler{reflectionService: reflectionService}
}

// Get answers with null when the week has no reflection yet.
func (h *ReflectionHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	week := c.Query("weekStartDate")
	if week == "" {
		writeError(c, apperrors.BadRequest("invalid_date", "weekStartDate query parameter is required"))
		return
	}

	reflection, apiErr := h.reflectionService.GetByWeek(c.Request.Context(), userID, week)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	if reflection == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, reflection)
}

func (h *ReflectionHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reflections, apiErr := h.reflectionService.History(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, reflections)
}

func (h *ReflectionHandler) Save(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req saveReflectionRequest
	if !bindJSON(c, &req) {
		return
	}

	reflection, apiErr := h.reflectionService.Save(c.Request.Context(), userID, service.SaveReflectionInput{
		WeekStartDate:   req.WeekStartDate,
		WentWell:        req.WentWell,
		ToImprove:       req.ToImprove,
		Accomplishments: req.Accomplishments,
		Challenges:      req.Challenges,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, reflection)
}

func (h *ReflectionHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	startDate, endDate := c.Query("startDate"), c.Query("endDate")
	if startDate == "" || endDate == "" {
		writeError(c, apperrors.BadRequest("invalid_range", "startDate and endDate are required"))
		return
	}

	stats, apiErr := h.reflectionService.Stats(c.Request.Context(), userID, startDate, endDate)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, stats)
}
