package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "beproductive/backend/internal/errors"
	"beproductive/backend/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
}

type createTaskRequest struct {
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	Date           string  `json:"date"`
	StartTime      *string `json:"startTime"`
	EndTime        *string `json:"endTime"`
	Priority       *int    `json:"priority"`
	PomodorosTotal *int    `json:"pomodorosTotal"`
	GoalID         *string `json:"goalId"`
}

type updateTaskRequest struct {
	Title          *string                `json:"title"`
	Description    service.OptionalString `json:"description"`
	Date           *string                `json:"date"`
	StartTime      service.OptionalString `json:"startTime"`
	EndTime        service.OptionalString `json:"endTime"`
	Priority       *int                   `json:"priority"`
	PomodorosTotal *int                   `json:"pomodorosTotal"`
	GoalID         service.OptionalString `json:"goalId"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type progressRequest struct {
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

type logSessionRequest struct {
	StartTime          time.Time  `json:"startTime"`
	EndTime            *time.Time `json:"endTime"`
	InterruptionReason *string    `json:"interruptionReason"`
}

type reorderRequest struct {
	TaskIDs []string `json:"taskIds"`
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		writeError(c, apperrors.BadRequest("invalid_date", "date query parameter is required"))
		return
	}

	tasks, apiErr := h.taskService.ListByDate(c.Request.Context(), userID, date)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, apiErr := h.taskService.Create(c.Request.Context(), userID, service.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Priority:       req.Priority,
		PomodorosTotal: req.PomodorosTotal,
		GoalID:         req.GoalID,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, apiErr := h.taskService.Update(c.Request.Context(), userID, c.Param("id"), service.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Priority:       req.Priority,
		PomodorosTotal: req.PomodorosTotal,
		GoalID:         req.GoalID,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	count, apiErr := h.taskService.UpdateStatus(c.Request.Context(), userID, c.Param("id"), req.Status)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// UpdateProgress records one completed work interval. The body is optional.
func (h *TaskHandler) UpdateProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req progressRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	task, apiErr := h.taskService.RecordProgress(c.Request.Context(), userID, c.Param("id"), service.ProgressInput{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) LogSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req logSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, apiErr := h.taskService.LogSession(c.Request.Context(), userID, c.Param("id"), service.LogSessionInput{
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		InterruptionReason: req.InterruptionReason,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *TaskHandler) ListSessions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessions, apiErr := h.taskService.ListSessions(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *TaskHandler) Reorder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.TaskIDs == nil {
		writeError(c, apperrors.BadRequest("invalid_task_ids", "taskIds must be an array"))
		return
	}

	if apiErr := h.taskService.Reorder(c.Request.Context(), userID, req.TaskIDs); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if apiErr := h.taskService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}
