package attendance

import (
	"time"

	"hr-backoffice/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SourceWeb    = "web"
	SourceManual = "manual"
)

type Attendance struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID      uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID     uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendance_employee_date,priority:1"`
	AttendanceDate time.Time      `gorm:"column:attendance_date;type:date;not null;uniqueIndex:uq_attendance_employee_date,priority:2"`
	CheckIn        *time.Time     `gorm:"column:check_in;type:timestamptz"`
	CheckOut       *time.Time     `gorm:"column:check_out;type:timestamptz"`
	WorkingHours   float64        `gorm:"column:working_hours;type:numeric(5,2);not null;default:0"`
	OvertimeHours  float64        `gorm:"column:overtime_hours;type:numeric(5,2);not null;default:0"`
	Status         domain.Status  `gorm:"column:status;type:varchar(20);not null;index"`
	Latitude       *float64       `gorm:"column:latitude"`
	Longitude      *float64       `gorm:"column:longitude"`
	Source         string         `gorm:"column:source;type:varchar(30);not null;default:'web'"`
	Notes          *string        `gorm:"column:notes;type:text"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Attendance) TableName() string {
	return "attendances"
}
