package report

import (
	"fmt"
	"strconv"
	"time"
)

// Record is one row of a report page. Cells renders it for the PDF export.
type Record interface {
	Cells() []string
}

type MovementRecord struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeNumber string    `json:"employee_number"`
	EmployeeName   string    `json:"employee_name"`
	DepartmentName string    `json:"department_name"`
	MovementType   string    `json:"movement_type"`
	FromDatetime   time.Time `json:"from_datetime"`
	ToDatetime     time.Time `json:"to_datetime"`
	DurationHours  int       `json:"duration_hours"`
	Purpose        string    `json:"purpose"`
	Destination    string    `json:"destination"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r MovementRecord) Cells() []string {
	return []string{
		r.EmployeeNumber,
		r.EmployeeName,
		r.MovementType,
		r.FromDatetime.Format("2006-01-02 15:04"),
		r.ToDatetime.Format("2006-01-02 15:04"),
		strconv.Itoa(r.DurationHours),
		r.Destination,
		r.Status,
	}
}

type AttendanceRecord struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employee_id"`
	EmployeeNumber string     `json:"employee_number"`
	EmployeeName   string     `json:"employee_name"`
	DepartmentName string     `json:"department_name"`
	AttendanceDate time.Time  `json:"attendance_date"`
	CheckIn        *time.Time `json:"check_in"`
	CheckOut       *time.Time `json:"check_out"`
	WorkingHours   float64    `json:"working_hours"`
	OvertimeHours  float64    `json:"overtime_hours"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (r AttendanceRecord) Cells() []string {
	return []string{
		r.EmployeeNumber,
		r.EmployeeName,
		r.AttendanceDate.Format(dateLayout),
		clock(r.CheckIn),
		clock(r.CheckOut),
		fmt.Sprintf("%.2f", r.WorkingHours),
		fmt.Sprintf("%.2f", r.OvertimeHours),
		r.Status,
	}
}

type LeaveRecord struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeNumber string    `json:"employee_number"`
	EmployeeName   string    `json:"employee_name"`
	DepartmentName string    `json:"department_name"`
	LeaveType      string    `json:"leave_type"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TotalDays      int       `json:"total_days"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r LeaveRecord) Cells() []string {
	return []string{
		r.EmployeeNumber,
		r.EmployeeName,
		r.LeaveType,
		r.StartDate.Format(dateLayout),
		r.EndDate.Format(dateLayout),
		strconv.Itoa(r.TotalDays),
		r.Status,
	}
}

type TransferRecord struct {
	ID                 string    `json:"id"`
	EmployeeID         string    `json:"employee_id"`
	EmployeeNumber     string    `json:"employee_number"`
	EmployeeName       string    `json:"employee_name"`
	FromBranchName     string    `json:"from_branch_name"`
	ToBranchName       string    `json:"to_branch_name"`
	FromDepartmentName string    `json:"from_department_name"`
	ToDepartmentName   string    `json:"to_department_name"`
	EffectiveDate      time.Time `json:"effective_date"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

func (r TransferRecord) Cells() []string {
	return []string{
		r.EmployeeNumber,
		r.EmployeeName,
		r.FromBranchName + " / " + r.FromDepartmentName,
		r.ToBranchName + " / " + r.ToDepartmentName,
		r.EffectiveDate.Format(dateLayout),
		r.Status,
	}
}

type EmployeeRecord struct {
	ID              string     `json:"id"`
	EmployeeNumber  string     `json:"employee_number"`
	FullName        string     `json:"full_name"`
	Email           string     `json:"email"`
	Gender          string     `json:"gender"`
	DepartmentName  string     `json:"department_name"`
	BranchName      string     `json:"branch_name"`
	DesignationName string     `json:"designation_name"`
	Status          string     `json:"status"`
	JoinDate        *time.Time `json:"join_date"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (r EmployeeRecord) Cells() []string {
	join := ""
	if r.JoinDate != nil {
		join = r.JoinDate.Format(dateLayout)
	}
	return []string{
		r.EmployeeNumber,
		r.FullName,
		r.Email,
		r.DepartmentName,
		r.DesignationName,
		r.Status,
		join,
	}
}

func clock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("15:04")
}

// rowSet lets the generic repository scan into a typed slice.
type rowSet interface {
	dest() any
	records() []Record
}

type rows[T Record] struct {
	items []T
}

func (r *rows[T]) dest() any { return &r.items }

func (r *rows[T]) records() []Record {
	out := make([]Record, len(r.items))
	for i := range r.items {
		out[i] = r.items[i]
	}
	return out
}
