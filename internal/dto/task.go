package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/patch"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64     `json:"id"`
	ProjectID   uint64     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StatusID    uint       `json:"statusId"`
	Status      string     `json:"status"`
	Version     uint64     `json:"version"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedBy   *string    `json:"updatedBy"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// CreateTaskRequest is the body of POST /projects/{pid}/tasks
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"max=1000"`
	StatusID    *uint  `json:"statusId" binding:"omitempty,oneof=1 2 3"`
}

// UpdateTaskRequest is the body of PUT /projects/{pid}/tasks/{id}. Absent
// members are left unchanged.
type UpdateTaskRequest struct {
	Title       patch.Field[string] `json:"title"`
	Description patch.Field[string] `json:"description"`
	StatusID    patch.Field[uint]   `json:"statusId"`
	Status      patch.Field[string] `json:"status"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		StatusID:    task.StatusID,
		Version:     task.Version,
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedBy:   task.UpdatedBy,
		UpdatedAt:   task.UpdatedAt,
	}

	// Fall back to the seeded names when Status was not preloaded
	if task.Status.Name != "" {
		dto.Status = task.Status.Name
	} else if status, ok := models.LookupStatus(task.StatusID); ok {
		dto.Status = status.Name
	}

	return dto
}
