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

type ProjectHandler struct {
	projects *services.ProjectService
	pages    pagination.Options
	logger   *slog.Logger
}

func NewProjectHandler(projects *services.ProjectService, pages pagination.Options, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		pages:    pages,
		logger:   logger,
	}
}

// ListProjects returns one page of projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params, err := h.pages.FromQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	page, err := h.projects.ListProjects(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(page, dto.ToProjectDTO))
}

// GetProject returns a project with its tasks
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.GetProject(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("ETag", etag(project.Version))
	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*project))
}

// CreateProject creates a new project
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/projects/%d", project.ID))
	c.Header("ETag", etag(project.Version))
	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject applies a partial update
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	version, ok := expectedVersion(c)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), id, services.UpdateProjectInput{
		Name:            req.Name,
		Description:     req.Description,
		ExpectedVersion: version,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("ETag", etag(project.Version))
	c.Status(http.StatusNoContent)
}

// DeleteProject deletes a project and its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.projects.DeleteProject(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
