package leave

import "time"

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	LeaveType  string `json:"leave_type" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Reason     string `json:"reason"`
}

// UpdateLeaveRequest edits the period of a pending leave.
type UpdateLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

type RejectLeaveRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

type ListLeavesQuery struct {
	Status     string `form:"status"`
	EmployeeID string `form:"employee_id"`
	LeaveType  string `form:"leave_type"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

type LeaveResponse struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"company_id"`
	EmployeeID      string     `json:"employee_id"`
	LeaveType       string     `json:"leave_type"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	TotalDays       int        `json:"total_days"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	CreatedBy       string     `json:"created_by"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
}

func mapToResponse(l Leave) LeaveResponse {
	var approvedBy *string
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		approvedBy = &v
	}

	return LeaveResponse{
		ID:              l.ID.String(),
		CompanyID:       l.CompanyID.String(),
		EmployeeID:      l.EmployeeID.String(),
		LeaveType:       string(l.LeaveType),
		StartDate:       l.StartDate.Format(dateLayout),
		EndDate:         l.EndDate.Format(dateLayout),
		TotalDays:       l.TotalDays,
		Reason:          l.Reason,
		Status:          l.Status.String(),
		CreatedBy:       l.CreatedBy.String(),
		ApprovedBy:      approvedBy,
		DecidedAt:       l.DecidedAt,
		RejectionReason: l.RejectionReason,
	}
}

func mapToListResponse(items []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, 0, len(items))
	for _, l := range items {
		resp = append(resp, mapToResponse(l))
	}
	return resp
}
