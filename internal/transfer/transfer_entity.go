package transfer

import (
	"time"

	"hr-backoffice/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Transfer struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey"`
	CompanyID        uuid.UUID     `gorm:"type:uuid;not null;index"`
	EmployeeID       uuid.UUID     `gorm:"type:uuid;not null;index"`
	FromBranchID     *uuid.UUID    `gorm:"type:uuid"`
	ToBranchID       *uuid.UUID    `gorm:"type:uuid"`
	FromDepartmentID *uuid.UUID    `gorm:"type:uuid"`
	ToDepartmentID   *uuid.UUID    `gorm:"type:uuid"`
	EffectiveDate    time.Time     `gorm:"type:date;not null;index"`
	Reason           string        `gorm:"type:text"`
	Remarks          *string       `gorm:"type:text"`
	Status           domain.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	ApproverID       *uuid.UUID    `gorm:"type:uuid"`
	DecidedAt        *time.Time
	CompletedAt      *time.Time
	CreatedBy        uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Transfer) TableName() string { return "transfers" }

// Placement is where an employee sits in the organisation.
type Placement struct {
	BranchID     *uuid.UUID
	DepartmentID *uuid.UUID
}

func (p Placement) Equal(o Placement) bool {
	return sameID(p.BranchID, o.BranchID) && sameID(p.DepartmentID, o.DepartmentID)
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
