package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/project-management-api/internal/dto"
	"github.com/yukikurage/project-management-api/internal/pagination"
	"github.com/yukikurage/project-management-api/internal/services"
)

type TaskHandler struct {
	tasks  *services.TaskService
	pages  pagination.Options
	logger *slog.Logger
}

func NewTaskHandler(tasks *services.TaskService, pages pagination.Options, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		pages:  pages,
		logger: logger,
	}
}

// ListTasks returns one page of a project's tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	params, err := h.pages.FromQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	page, err := h.tasks.ListTasks(c.Request.Context(), projectID, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(page, dto.ToTaskDTO))
}

// GetTask returns a specific task of the project
func (h *TaskHandler) GetTask(c *gin.Context) {
	projectID, taskID, ok := parseTaskPath(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), projectID, taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("ETag", etag(task.Version))
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task in the project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), projectID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		StatusID:    req.StatusID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/projects/%d/tasks/%d", projectID, task.ID))
	c.Header("ETag", etag(task.Version))
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	projectID, taskID, ok := parseTaskPath(c)
	if !ok {
		return
	}
	version, ok := expectedVersion(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), projectID, taskID, services.UpdateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		StatusID:        req.StatusID,
		Status:          req.Status,
		ExpectedVersion: version,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("ETag", etag(task.Version))
	c.Status(http.StatusNoContent)
}

// DeleteTask deletes a task of the project
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	projectID, taskID, ok := parseTaskPath(c)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), projectID, taskID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseTaskPath(c *gin.Context) (projectID, taskID uint64, ok bool) {
	if projectID, ok = parseID(c, "id"); !ok {
		return 0, 0, false
	}
	if taskID, ok = parseID(c, "taskId"); !ok {
		return 0, 0, false
	}
	return projectID, taskID, true
}
