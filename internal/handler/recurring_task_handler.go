package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beproductive/backend/internal/service"
)

type RecurringTaskHandler struct {
	recurringTaskService *service.RecurringTaskService
}

type createRecurringTaskRequest struct {
	Title             string             `json:"title"`
	Description       *string            `json:"description"`
	RecurrencePattern string             `json:"recurrencePattern"`
	DaysOfWeek        service.DaysOfWeek `json:"daysOfWeek"`
	StartTime         *string            `json:"startTime"`
	EndTime           *string            `json:"endTime"`
	Priority          *int               `json:"priority"`
	PomodorosTotal    *int               `json:"pomodorosTotal"`
	GoalID            *string            `json:"goalId"`
}

type updateRecurringTaskRequest struct {
	Title             *string                `json:"title"`
	Description       service.OptionalString `json:"description"`
	RecurrencePattern *string                `json:"recurrencePattern"`
	DaysOfWeek        service.DaysOfWeek     `json:"daysOfWeek"`
	StartTime         service.OptionalString `json:"startTime"`
	EndTime           service.OptionalString `json:"endTime"`
	Priority          *int                   `json:"priority"`
	PomodorosTotal    *int                   `json:"pomodorosTotal"`
	GoalID            service.OptionalString `json:"goalId"`
	IsActive          *bool                  `json:"isActive"`
}

func NewRecurringTaskHandler(recurringTaskService *service.RecurringTaskService) *RecurringTaskHandler {
	return &RecurringTaskHandler{recurringTaskService: recurringTaskService}
}

func (h *RecurringTaskHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rules, apiErr := h.recurringTaskService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (h *RecurringTaskHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rule, apiErr := h.recurringTaskService.Get(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *RecurringTaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createRecurringTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	rule, apiErr := h.recurringTaskService.Create(c.Request.Context(), userID, service.CreateRecurringTaskInput{
		Title:             req.Title,
		Description:       req.Description,
		RecurrencePattern: req.RecurrencePattern,
		DaysOfWeek:        req.DaysOfWeek.Value,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Priority:          req.Priority,
		PomodorosTotal:    req.PomodorosTotal,
		GoalID:            req.GoalID,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (h *RecurringTaskHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req updateRecurringTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	rule, apiErr := h.recurringTaskService.Update(c.Request.Context(), userID, c.Param("id"), service.UpdateRecurringTaskInput{
		Title:             req.Title,
		Description:       req.Description,
		RecurrencePattern: req.RecurrencePattern,
		DaysOfWeek:        req.DaysOfWeek.OptionalString,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Priority:          req.Priority,
		PomodorosTotal:    req.PomodorosTotal,
		GoalID:            req.GoalID,
		IsActive:          req.IsActive,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *RecurringTaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if apiErr := h.recurringTaskService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recurring task deleted"})
}
