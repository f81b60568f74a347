package designation

import "time"

type CreateDesignationRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

type UpdateDesignationRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

type DesignationResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func mapToResponse(d Designation) DesignationResponse {
	resp := DesignationResponse{
		ID:          d.ID.String(),
		Name:        d.Name,
		Description: d.Description,
	}
	if !d.CreatedAt.IsZero() {
		resp.CreatedAt = d.CreatedAt.Format(time.RFC3339)
	}
	if !d.UpdatedAt.IsZero() {
		resp.UpdatedAt = d.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(items []Designation) []DesignationResponse {
	res := make([]DesignationResponse, len(items))
	for i, d := range items {
		res[i] = mapToResponse(d)
	}
	return res
}
