package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beproductive/backend/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

type createGoalRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Level        string  `json:"level"`
	ParentGoalID *string `json:"parentGoalId"`
}

type updateGoalRequest struct {
	Title        *string                `json:"title"`
	Description  service.OptionalString `json:"description"`
	Level        *string                `json:"level"`
	ParentGoalID service.OptionalString `json:"parentGoalId"`
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

func (h *GoalHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	goals, apiErr := h.goalService.List(c.Request.Context(), userID, c.Query("level"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, goals)
}

func (h *GoalHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	goal, apiErr := h.goalService.Get(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createGoalRequest
	if !bindJSON(c, &req) {
		return
	}

	goal, apiErr := h.goalService.Create(c.Request.Context(), userID, service.CreateGoalInput{
		Title:        req.Title,
		Description:  req.Description,
		Level:        req.Level,
		ParentGoalID: req.ParentGoalID,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (h *GoalHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req updateGoalRequest
	if !bindJSON(c, &req) {
		return
	}

	goal, apiErr := h.goalService.Update(c.Request.Context(), userID, c.Param("id"), service.UpdateGoalInput{
		Title:        req.Title,
		Description:  req.Description,
		Level:        req.Level,
		ParentGoalID: req.ParentGoalID,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if apiErr := h.goalService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "goal deleted"})
}
