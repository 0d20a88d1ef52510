package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/pagination"
	"github.com/yukikurage/project-management-api/internal/patch"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
}

// UpdateProjectInput represents a partial update of a project. A blank Name
// leaves the name unchanged. A nil ExpectedVersion skips the caller-side version check; the write itself is
// always conditional on the version that was read.
type UpdateProjectInput struct {
	Name            patch.Field[string]
	Description     patch.Field[string]
	ExpectedVersion *uint64
}

// ListProjects returns one page of projects
func (s *ProjectService) ListProjects(ctx context.Context, params pagination.Params) (pagination.Page[models.Project], error) {
	projects, total, err := s.projectRepo.List(ctx, params)
	if err != nil {
		return pagination.Page[models.Project]{}, fmt.Errorf("failed to list projects: %w", err)
	}
	return pagination.NewPage(projects, total, params), nil
}

// GetProject returns a project with its tasks
func (s *ProjectService) GetProject(ctx context.Context, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id, "Tasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// CreateProject validates and stores a new project
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	verr := &ValidationError{}
	verr.required("name", input.Name, constants.MaxProjectNameLength)
	verr.maxLength("description", input.Description, constants.MaxProjectDescriptionLength)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// UpdateProject applies the fields present in input
func (s *ProjectService) UpdateProject(ctx context.Context, id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	changes, err := projectChanges(input)
	if err != nil {
		return nil, err
	}

	if input.ExpectedVersion != nil && *input.ExpectedVersion != project.Version {
		return nil, ErrVersionConflict
	}
	if len(changes) == 0 {
		return project, nil
	}

	if err := s.projectRepo.Update(ctx, id, project.Version, changes); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, s.conflictOrGone(ctx, id)
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.GetProject(ctx, id)
}

// DeleteProject removes a project and its tasks. Only admins may delete.
func (s *ProjectService) DeleteProject(ctx context.Context, id uint64) error {
	if !auth.IsAdminContext(ctx) {
		return ErrForbidden
	}

	deleted, err := s.projectRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if !deleted {
		return ErrProjectNotFound
	}
	return nil
}

// conflictOrGone tells a lost race apart from a concurrent delete.
func (s *ProjectService) conflictOrGone(ctx context.Context, id uint64) error {
	exists, err := s.projectRepo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find project: %w", err)
	}
	if !exists {
		return ErrProjectNotFound
	}
	return ErrVersionConflict
}

func projectChanges(input UpdateProjectInput) (map[string]interface{}, error) {
	changes := map[string]interface{}{}
	verr := &ValidationError{}

	if input.Name.Set {
		if input.Name.Null {
			verr.Add("name", "cannot be null")
		} else if name := strings.TrimSpace(input.Name.Value); name != "" {
			verr.maxLength("name", name, constants.MaxProjectNameLength)
			changes["name"] = name
		}
	}
	if input.Description.Set {
		description := input.Description.ValueOr("")
		verr.maxLength("description", description, constants.MaxProjectDescriptionLength)
		changes["description"] = description
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}
