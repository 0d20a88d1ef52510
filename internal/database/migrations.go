package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/project-management-api/internal/models"
)

// Migrate creates the schema, seeds the status lookup table and adds the
// secondary indexes.
func Migrate(db *gorm.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("running database migrations")
	err := db.AutoMigrate(
		&models.Status{},
		&models.Project{},
		&models.Task{},
		&models.User{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := SeedStatuses(db); err != nil {
		return err
	}

	if err := AddIndexes(db, logger); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	logger.Info("database migrations completed")
	return nil
}

// SeedStatuses inserts the fixed status rows, leaving existing rows alone.
func SeedStatuses(db *gorm.DB) error {
	rows := make([]models.Status, len(models.SeedStatuses))
	copy(rows, models.SeedStatuses)

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to seed task statuses: %w", err)
	}
	return nil
}

// AddIndexes adds the lookup indexes used by list and ownership queries.
func AddIndexes(db *gorm.DB, logger *slog.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"tasks", "idx_tasks_project_id", "project_id"},
		{"tasks", "idx_tasks_status_id", "status_id"},
		{"projects", "idx_projects_created_at", "created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			logger.Debug("index already exists, skipping", slog.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logger.Info("created index",
			slog.String("index", idx.name),
			slog.String("table", idx.table),
			slog.String("columns", idx.columns),
		)
	}

	return nil
}
