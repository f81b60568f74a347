package designation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Designation is a job title; the employee report filters on it.
type Designation struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_designation_name,priority:1"`
	Name        string         `gorm:"size:255;not null;uniqueIndex:uq_designation_name,priority:2"`
	Description string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Designation) TableName() string {
	return "designations"
}
