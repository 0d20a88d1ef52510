package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"type:varchar(100);not null" json:"title"`
	Description string     `gorm:"type:varchar(1000)" json:"description"`
	StatusID    uint       `gorm:"not null;default:1" json:"statusId"`
	ProjectID   uint64     `gorm:"not null" json:"projectId"`
	Version     uint64     `gorm:"not null;default:1" json:"version"`
	CreatedBy   string     `gorm:"<-:create;type:varchar(255);not null" json:"createdBy"`
	CreatedAt   time.Time  `gorm:"<-:create" json:"createdAt"`
	UpdatedBy   *string    `gorm:"type:varchar(255)" json:"updatedBy"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`

	// Relations
	Status Status `gorm:"foreignKey:StatusID" json:"status,omitempty"`
}

// BeforeCreate stamps the creation audit columns and applies the default
// status.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.StatusID == 0 {
		t.StatusID = uint(StatusToDo)
	}
	t.CreatedBy, t.CreatedAt = creationStamp(tx)
	t.UpdatedBy, t.UpdatedAt = nil, nil
	t.Version = 1
	return nil
}

// BeforeUpdate stamps the modification audit columns.
func (t *Task) BeforeUpdate(tx *gorm.DB) error {
	stampUpdate(tx)
	return nil
}
