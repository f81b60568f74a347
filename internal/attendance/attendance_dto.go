package attendance

import "time"

const dateLayout = "2006-01-02"

// CheckInRequest records for the caller unless EmployeeID is set by an admin.
type CheckInRequest struct {
	EmployeeID string   `json:"employee_id" binding:"omitempty,uuid"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Notes      *string  `json:"notes"`
}

type CheckOutRequest struct {
	EmployeeID string   `json:"employee_id" binding:"omitempty,uuid"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Notes      *string  `json:"notes"`
}

// ManualRecordRequest marks a day the employee did not check in.
type ManualRecordRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required,uuid"`
	Date       string  `json:"date" binding:"required"`
	Status     string  `json:"status" binding:"required,oneof=absent leave"`
	Notes      *string `json:"notes"`
}

type ListAttendanceQuery struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Status     string `form:"status"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

type AttendanceResponse struct {
	ID             string     `json:"id"`
	CompanyID      string     `json:"company_id"`
	EmployeeID     string     `json:"employee_id"`
	AttendanceDate string     `json:"attendance_date"`
	CheckIn        *time.Time `json:"check_in"`
	CheckOut       *time.Time `json:"check_out"`
	WorkingHours   float64    `json:"working_hours"`
	OvertimeHours  float64    `json:"overtime_hours"`
	Status         string     `json:"status"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	Source         string     `json:"source"`
	Notes          *string    `json:"notes,omitempty"`
}

func mapToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:             a.ID.String(),
		CompanyID:      a.CompanyID.String(),
		EmployeeID:     a.EmployeeID.String(),
		AttendanceDate: a.AttendanceDate.Format(dateLayout),
		CheckIn:        a.CheckIn,
		CheckOut:       a.CheckOut,
		WorkingHours:   a.WorkingHours,
		OvertimeHours:  a.OvertimeHours,
		Status:         a.Status.String(),
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		Source:         a.Source,
		Notes:          a.Notes,
	}
}

func mapToListResponse(items []Attendance) []AttendanceResponse {
	resp := make([]AttendanceResponse, 0, len(items))
	for _, a := range items {
		resp = append(resp, mapToResponse(a))
	}
	return resp
}
