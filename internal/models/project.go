package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Description string     `gorm:"type:varchar(500)" json:"description"`
	Version     uint64     `gorm:"not null;default:1" json:"version"`
	CreatedBy   string     `gorm:"<-:create;type:varchar(255);not null" json:"createdBy"`
	CreatedAt   time.Time  `gorm:"<-:create" json:"createdAt"`
	UpdatedBy   *string    `gorm:"type:varchar(255)" json:"updatedBy"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`

	// Relations
	Tasks []Task `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// BeforeCreate stamps the creation audit columns.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	p.CreatedBy, p.CreatedAt = creationStamp(tx)
	p.UpdatedBy, p.UpdatedAt = nil, nil
	p.Version = 1
	return nil
}

// BeforeUpdate stamps the modification audit columns.
func (p *Project) BeforeUpdate(tx *gorm.DB) error {
	stampUpdate(tx)
	return nil
}
