package movement

import "time"

type CreateMovementRequest struct {
	EmployeeID   string  `json:"employee_id" binding:"required,uuid"`
	MovementType string  `json:"movement_type" binding:"required"`
	FromDatetime string  `json:"from_datetime" binding:"required"`
	ToDatetime   string  `json:"to_datetime" binding:"required"`
	Purpose      string  `json:"purpose"`
	Destination  string  `json:"destination"`
	Remarks      *string `json:"remarks"`
}

// DecisionRequest is the body of approve and reject.
type DecisionRequest struct {
	Remarks *string `json:"remarks"`
}

type UpdateRemarksRequest struct {
	Remarks *string `json:"remarks"`
}

type ListMovementsQuery struct {
	Status     string `form:"status"`
	EmployeeID string `form:"employee_id"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

type MovementResponse struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	MovementType  string     `json:"movement_type"`
	FromDatetime  time.Time  `json:"from_datetime"`
	ToDatetime    time.Time  `json:"to_datetime"`
	DurationHours int        `json:"duration_hours"`
	Purpose       string     `json:"purpose"`
	Destination   string     `json:"destination"`
	Remarks       *string    `json:"remarks"`
	Status        string     `json:"status"`
	ApproverID    *string    `json:"approver_id"`
	DecidedAt     *time.Time `json:"decided_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
}

func mapToResponse(m Movement) MovementResponse {
	var approverID *string
	if m.ApproverID != nil {
		v := m.ApproverID.String()
		approverID = &v
	}

	return MovementResponse{
		ID:            m.ID.String(),
		EmployeeID:    m.EmployeeID.String(),
		MovementType:  string(m.MovementType),
		FromDatetime:  m.FromDatetime,
		ToDatetime:    m.ToDatetime,
		DurationHours: m.DurationHours(),
		Purpose:       m.Purpose,
		Destination:   m.Destination,
		Remarks:       m.Remarks,
		Status:        m.Status.String(),
		ApproverID:    approverID,
		DecidedAt:     m.DecidedAt,
		CompletedAt:   m.CompletedAt,
		CreatedBy:     m.CreatedBy.String(),
		CreatedAt:     m.CreatedAt,
	}
}

func mapToListResponse(items []Movement) []MovementResponse {
	resp := make([]MovementResponse, 0, len(items))
	for _, m := range items {
		resp = append(resp, mapToResponse(m))
	}
	return resp
}
