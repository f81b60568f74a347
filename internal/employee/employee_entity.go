package employee

import (
	"time"

	"hr-backoffice/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Employee struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uq_employee_number,priority:1;uniqueIndex:uq_employee_email,priority:1"`
	EmployeeNumber string         `gorm:"type:varchar(30);not null;uniqueIndex:uq_employee_number,priority:2"`
	FullName       string         `gorm:"type:varchar(255);not null"`
	Email          string         `gorm:"type:varchar(255);not null;uniqueIndex:uq_employee_email,priority:2"`
	Phone          string         `gorm:"type:varchar(30)"`
	Gender         Gender         `gorm:"type:varchar(10);not null"`
	DepartmentID   *uuid.UUID     `gorm:"type:uuid;index"`
	BranchID       *uuid.UUID     `gorm:"type:uuid;index"`
	DesignationID  *uuid.UUID     `gorm:"type:uuid;index"`
	ManagerID      *uuid.UUID     `gorm:"type:uuid"`
	Status         domain.Status  `gorm:"type:varchar(20);not null;default:'active';index"`
	JoinDate       time.Time      `gorm:"type:date;not null"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}
