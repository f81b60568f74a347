package movement

import (
	"time"

	"hr-backoffice/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Type string

const (
	TypeOfficial Type = "official"
	TypePersonal Type = "personal"
)

func (t Type) Valid() bool {
	return t == TypeOfficial || t == TypePersonal
}

type Movement struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	EmployeeID   uuid.UUID     `gorm:"type:uuid;not null;index"`
	MovementType Type          `gorm:"type:varchar(20);not null"`
	FromDatetime time.Time     `gorm:"not null;index"`
	ToDatetime   time.Time     `gorm:"not null"`
	Purpose      string        `gorm:"type:text;not null"`
	Destination  string        `gorm:"type:varchar(255);not null"`
	Remarks      *string       `gorm:"type:text"`
	Status       domain.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	ApproverID   *uuid.UUID    `gorm:"type:uuid"`
	DecidedAt    *time.Time
	CompletedAt  *time.Time
	CreatedBy    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Movement) TableName() string { return "movements" }

// DurationHours is the display duration of the movement.
func (m Movement) DurationHours() int {
	return Duration(m.FromDatetime, m.ToDatetime)
}
