package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/pagination"
)

// ErrVersionConflict is returned by Update when the row no longer carries the
// expected version, either because it changed or because it is gone.
var ErrVersionConflict = errors.New("repository: version conflict")

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// List retrieves one page of projects ordered by id
	List(ctx context.Context, params pagination.Params) ([]models.Project, int64, error)

	// FindByID finds a project by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Project, error)

	// Exists reports whether a project with the given ID is stored
	Exists(ctx context.Context, id uint64) (bool, error)

	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// Update writes changes if the stored version still equals expectedVersion
	Update(ctx context.Context, id, expectedVersion uint64, changes map[string]interface{}) error

	// Delete deletes a project and its tasks, reporting whether it existed
	Delete(ctx context.Context, id uint64) (bool, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// List retrieves one page of a project's tasks ordered by id
	List(ctx context.Context, projectID uint64, params pagination.Params) ([]models.Task, int64, error)

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// Update writes changes if the stored version still equals expectedVersion
	Update(ctx context.Context, id, expectedVersion uint64, changes map[string]interface{}) error

	// Delete deletes a task, reporting whether it existed
	Delete(ctx context.Context, id uint64) (bool, error)
}

// UserRepository defines the interface for local account data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}
