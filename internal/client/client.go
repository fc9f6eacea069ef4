package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "beproductive/backend/internal/errors"
	"beproductive/backend/internal/model"
)

const defaultTimeout = 15 * time.Second

// Client talks to the BeProductive REST API on behalf of one owner.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token is the bearer token used for requests, set by Login or WithToken.
func (c *Client) Token() string {
	return c.token
}

type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type CreateTaskRequest struct {
	Title          string  `json:"title"`
	Date           string  `json:"date"`
	Description    *string `json:"description,omitempty"`
	StartTime      *string `json:"startTime,omitempty"`
	EndTime        *string `json:"endTime,omitempty"`
	Priority       *int    `json:"priority,omitempty"`
	PomodorosTotal *int    `json:"pomodorosTotal,omitempty"`
	GoalID         *string `json:"goalId,omitempty"`
}

type CreateRecurringTaskRequest struct {
	Title             string  `json:"title"`
	RecurrencePattern string  `json:"recurrencePattern"`
	DaysOfWeek        *string `json:"daysOfWeek,omitempty"`
	Description       *string `json:"description,omitempty"`
	PomodorosTotal    *int    `json:"pomodorosTotal,omitempty"`
	Priority          *int    `json:"priority,omitempty"`
}

type LogSessionRequest struct {
	StartTime          time.Time  `json:"startTime"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	InterruptionReason *string    `json:"interruptionReason,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result); err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var result struct {
		User model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// ListTasks returns the day's tasks; the server materialises recurring
// rules before answering.
func (c *Client) ListTasks(ctx context.Context, date string) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks?date="+url.QueryEscape(date), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, taskID, status string) error {
	return c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(taskID)+"/status", map[string]string{
		"status": status,
	}, nil)
}

// ReportProgress records one completed work interval for taskID.
func (c *Client) ReportProgress(ctx context.Context, taskID string, start, end time.Time) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(taskID)+"/progress", map[string]time.Time{
		"startTime": start.UTC(),
		"endTime":   end.UTC(),
	}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) LogSession(ctx context.Context, taskID string, req LogSessionRequest) (*model.FocusSession, error) {
	var session model.FocusSession
	if err := c.do(ctx, http.MethodPost, "/api/tasks/"+url.PathEscape(taskID)+"/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) ListRecurringTasks(ctx context.Context) ([]model.RecurringTask, error) {
	var rules []model.RecurringTask
	if err := c.do(ctx, http.MethodGet, "/api/recurring-tasks", nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (c *Client) CreateRecurringTask(ctx context.Context, req CreateRecurringTaskRequest) (*model.RecurringTask, error) {
	var rule model.RecurringTask
	if err := c.do(ctx, http.MethodPost, "/api/recurring-tasks", req, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// do sends body as JSON and decodes a 2xx response into out. Error
// responses come back as *apperrors.APIError carrying the server's code.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	var envelope apperrors.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error == nil {
		return apperrors.New(status, "http_error", strings.TrimSpace(http.StatusText(status)))
	}
	envelope.Error.Status = status
	return envelope.Error
}
