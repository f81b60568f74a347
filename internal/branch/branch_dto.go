package branch

import (
	"strings"
	"time"
)

type CreateBranchRequest struct {
	Name    string `json:"name" binding:"required,max=150"`
	Code    string `json:"code" binding:"required,max=30"`
	Address string `json:"address"`
}

type UpdateBranchRequest struct {
	Name    string `json:"name" binding:"required,max=150"`
	Code    string `json:"code" binding:"required,max=30"`
	Address string `json:"address"`
}

type BranchResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// normalizeCode keeps branch codes comparable: "jkt-01 " and "JKT-01" collide.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func mapToResponse(b Branch) BranchResponse {
	resp := BranchResponse{
		ID:      b.ID.String(),
		Name:    b.Name,
		Code:    b.Code,
		Address: b.Address,
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	if !b.UpdatedAt.IsZero() {
		resp.UpdatedAt = b.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(items []Branch) []BranchResponse {
	res := make([]BranchResponse, len(items))
	for i, b := range items {
		res[i] = mapToResponse(b)
	}
	return res
}
