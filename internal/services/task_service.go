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

// TaskService handles task business logic
type TaskService struct {
	taskRepo              repository.TaskRepository
	projectRepo           repository.ProjectRepository
	requireAdminForDelete bool
}

// TaskServiceOption configures a TaskService
type TaskServiceOption func(*TaskService)

// WithAdminOnlyTaskDelete restricts task deletion to admins, matching project
// deletion.
func WithAdminOnlyTaskDelete(enabled bool) TaskServiceOption {
	return func(s *TaskService) {
		s.requireAdminForDelete = enabled
	}
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, opts ...TaskServiceOption) *TaskService {
	s := &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	StatusID    *uint
}

// UpdateTaskInput represents a partial update of a task. A blank Title leaves
// the title unchanged. Status may name a status instead of, or in agreement
// with, StatusID.
type UpdateTaskInput struct {
	Title           patch.Field[string]
	Description     patch.Field[string]
	StatusID        patch.Field[uint]
	Status          patch.Field[string]
	ExpectedVersion *uint64
}

// ListTasks returns one page of a project's tasks
func (s *TaskService) ListTasks(ctx context.Context, projectID uint64, params pagination.Params) (pagination.Page[models.Task], error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return pagination.Page[models.Task]{}, err
	}

	tasks, total, err := s.taskRepo.List(ctx, projectID, params)
	if err != nil {
		return pagination.Page[models.Task]{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	return pagination.NewPage(tasks, total, params), nil
}

// GetTask returns a task owned by the project
func (s *TaskService) GetTask(ctx context.Context, projectID, id uint64) (*models.Task, error) {
	return s.findOwned(ctx, projectID, id)
}

// CreateTask validates and stores a new task under the project
func (s *TaskService) CreateTask(ctx context.Context, projectID uint64, input CreateTaskInput) (*models.Task, error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	verr.required("title", input.Title, constants.MaxTaskTitleLength)
	verr.maxLength("description", input.Description, constants.MaxTaskDescriptionLength)

	statusID := uint(models.StatusToDo)
	if input.StatusID != nil {
		if _, ok := models.LookupStatus(*input.StatusID); !ok {
			verr.Add("statusId", "must be one of 1, 2, 3")
		}
		statusID = *input.StatusID
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		StatusID:    statusID,
		ProjectID:   projectID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.findOwned(ctx, projectID, task.ID)
}

// UpdateTask applies the fields present in input
func (s *TaskService) UpdateTask(ctx context.Context, projectID, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findOwned(ctx, projectID, id)
	if err != nil {
		return nil, err
	}

	changes, err := taskChanges(input)
	if err != nil {
		return nil, err
	}

	if input.ExpectedVersion != nil && *input.ExpectedVersion != task.Version {
		return nil, ErrVersionConflict
	}
	if len(changes) == 0 {
		return task, nil
	}

	if err := s.taskRepo.Update(ctx, id, task.Version, changes); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			if _, findErr := s.findOwned(ctx, projectID, id); findErr != nil {
				return nil, findErr
			}
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.findOwned(ctx, projectID, id)
}

// DeleteTask removes a task owned by the project
func (s *TaskService) DeleteTask(ctx context.Context, projectID, id uint64) error {
	if s.requireAdminForDelete && !auth.IsAdminContext(ctx) {
		return ErrForbidden
	}

	if _, err := s.findOwned(ctx, projectID, id); err != nil {
		return err
	}

	deleted, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}

// findOwned loads a task and checks it belongs to projectID. A task under
// another project is a mismatch, not a missing task.
func (s *TaskService) findOwned(ctx context.Context, projectID, id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id, "Status")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.ProjectID != projectID {
		return nil, ErrTaskProjectMismatch
	}
	return task, nil
}

func (s *TaskService) ensureProject(ctx context.Context, projectID uint64) error {
	exists, err := s.projectRepo.Exists(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to find project: %w", err)
	}
	if !exists {
		return ErrProjectNotFound
	}
	return nil
}

func taskChanges(input UpdateTaskInput) (map[string]interface{}, error) {
	changes := map[string]interface{}{}
	verr := &ValidationError{}

	if input.Title.Set {
		if input.Title.Null {
			verr.Add("title", "cannot be null")
		} else if title := strings.TrimSpace(input.Title.Value); title != "" {
			verr.maxLength("title", title, constants.MaxTaskTitleLength)
			changes["title"] = title
		}
	}
	if input.Description.Set {
		description := input.Description.ValueOr("")
		verr.maxLength("description", description, constants.MaxTaskDescriptionLength)
		changes["description"] = description
	}

	var statusID uint
	if input.StatusID.Set {
		if input.StatusID.Null {
			verr.Add("statusId", "cannot be null")
		} else if status, ok := models.LookupStatus(input.StatusID.Value); ok {
			statusID = status.ID
		} else {
			verr.Add("statusId", "must be one of 1, 2, 3")
		}
	}
	if input.Status.Set {
		status, ok := models.LookupStatusByName(input.Status.ValueOr(""))
		switch {
		case !ok:
			verr.Add("status", "must be one of To Do, In Progress, Done")
		case statusID != 0 && status.ID != statusID:
			verr.Add("status", "does not match statusId")
		default:
			statusID = status.ID
		}
	}
	if statusID != 0 {
		changes["status_id"] = statusID
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}
