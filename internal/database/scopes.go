package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/pagination"
)

// Paginate applies the page window of a result set holding total rows to a
// GORM query
func Paginate(params pagination.Params, total int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		start, end := pagination.Window(total, params)
		return db.Offset(int(start)).Limit(int(end - start))
	}
}
