package department

import (
	"time"

	"github.com/google/uuid"
)

type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,max=150"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id" binding:"omitempty,uuid"`
	HeadID      string `json:"head_id" binding:"omitempty,uuid"`
	BranchID    string `json:"branch_id" binding:"omitempty,uuid"`
}

type UpdateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,max=150"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id" binding:"omitempty,uuid"`
	HeadID      string `json:"head_id" binding:"omitempty,uuid"`
	BranchID    string `json:"branch_id" binding:"omitempty,uuid"`
}

type DepartmentResponse struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	HeadID      string `json:"head_id,omitempty"`
	BranchID    string `json:"branch_id,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// DepartmentNode is a department with its sub-departments nested.
type DepartmentNode struct {
	DepartmentResponse
	Children []DepartmentNode `json:"children"`
}

func mapToResponse(d Department) DepartmentResponse {
	resp := DepartmentResponse{
		ID:          d.ID.String(),
		CompanyID:   d.CompanyID.String(),
		Name:        d.Name,
		Description: d.Description,
		ParentID:    uuidToString(d.ParentID),
		HeadID:      uuidToString(d.HeadID),
		BranchID:    uuidToString(d.BranchID),
	}
	if !d.CreatedAt.IsZero() {
		resp.CreatedAt = d.CreatedAt.Format(time.RFC3339)
	}
	if !d.UpdatedAt.IsZero() {
		resp.UpdatedAt = d.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = mapToResponse(d)
	}
	return res
}

func uuidToString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
