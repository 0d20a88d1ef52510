package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/pagination"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// List retrieves one page of projects ordered by id
func (r *GormProjectRepository) List(ctx context.Context, params pagination.Params) ([]models.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}
	if start, end := pagination.Window(total, params); start == end {
		return []models.Project{}, total, nil
	}

	var projects []models.Project
	if err := query.Order("projects.id ASC").Scopes(database.Paginate(params, total)).Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}

	return projects, total, nil
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Project, error) {
	query := r.db.WithContext(ctx)
	for _, p := range preload {
		query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
	}

	var project models.Project
	if err := query.First(&project, id).Error; err != nil {
		return nil, fmt.Errorf("find project %d: %w", id, err)
	}
	return &project, nil
}

// Exists reports whether a project with the given ID is stored
func (r *GormProjectRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check project %d: %w", id, err)
	}
	return count > 0, nil
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// Update writes changes if the stored version still equals expectedVersion
func (r *GormProjectRepository) Update(ctx context.Context, id, expectedVersion uint64, changes map[string]interface{}) error {
	return updateVersioned(r.db.WithContext(ctx), &models.Project{ID: id}, expectedVersion, changes)
}

// Delete deletes a project and all of its tasks in a transaction
func (r *GormProjectRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("delete tasks of project %d: %w", id, err)
		}

		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete project %d: %w", id, result.Error)
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// updateVersioned is a compare-and-swap on the version column. model must
// carry the primary key; its BeforeUpdate hook adds the audit columns to
// changes.
func updateVersioned(db *gorm.DB, model interface{}, expectedVersion uint64, changes map[string]interface{}) error {
	values := make(map[string]interface{}, len(changes)+1)
	for k, v := range changes {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")

	result := db.Model(model).
		Omit(clause.Associations).
		Where("version = ?", expectedVersion).
		Updates(values)
	if result.Error != nil {
		return fmt.Errorf("update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}
