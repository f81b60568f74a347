package transfer

import (
	"time"

	"github.com/google/uuid"
)

type CreateTransferRequest struct {
	EmployeeID     string  `json:"employee_id" binding:"required,uuid"`
	ToBranchID     *string `json:"to_branch_id"`
	ToDepartmentID *string `json:"to_department_id"`
	EffectiveDate  string  `json:"effective_date" binding:"required"`
	Reason         string  `json:"reason"`
}

// DecisionRequest carries the optional approver remarks. Reject requires them.
type DecisionRequest struct {
	Remarks *string `json:"remarks"`
}

type ListTransfersQuery struct {
	Status     string `form:"status"`
	EmployeeID string `form:"employee_id"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

type TransferResponse struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employee_id"`
	FromBranchID     *string    `json:"from_branch_id"`
	ToBranchID       *string    `json:"to_branch_id"`
	FromDepartmentID *string    `json:"from_department_id"`
	ToDepartmentID   *string    `json:"to_department_id"`
	EffectiveDate    string     `json:"effective_date"`
	Reason           string     `json:"reason"`
	Remarks          *string    `json:"remarks"`
	Status           string     `json:"status"`
	ApproverID       *string    `json:"approver_id"`
	DecidedAt        *time.Time `json:"decided_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedBy        string     `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
}

func mapToResponse(t Transfer) TransferResponse {
	return TransferResponse{
		ID:               t.ID.String(),
		EmployeeID:       t.EmployeeID.String(),
		FromBranchID:     uuidToString(t.FromBranchID),
		ToBranchID:       uuidToString(t.ToBranchID),
		FromDepartmentID: uuidToString(t.FromDepartmentID),
		ToDepartmentID:   uuidToString(t.ToDepartmentID),
		EffectiveDate:    t.EffectiveDate.Format(dateLayout),
		Reason:           t.Reason,
		Remarks:          t.Remarks,
		Status:           t.Status.String(),
		ApproverID:       uuidToString(t.ApproverID),
		DecidedAt:        t.DecidedAt,
		CompletedAt:      t.CompletedAt,
		CreatedBy:        t.CreatedBy.String(),
		CreatedAt:        t.CreatedAt,
	}
}

func mapToListResponse(items []Transfer) []TransferResponse {
	resp := make([]TransferResponse, 0, len(items))
	for _, t := range items {
		resp = append(resp, mapToResponse(t))
	}
	return resp
}

func uuidToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}
