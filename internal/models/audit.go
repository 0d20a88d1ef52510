package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/auth"
)

func creationStamp(tx *gorm.DB) (string, time.Time) {
	return auth.Actor(tx.Statement.Context), tx.NowFunc()
}

// stampUpdate works for both struct saves and map updates; SetColumn writes
// into whichever destination the statement carries.
func stampUpdate(tx *gorm.DB) {
	tx.Statement.SetColumn("updated_by", auth.Actor(tx.Statement.Context))
	tx.Statement.SetColumn("updated_at", tx.NowFunc())
}
