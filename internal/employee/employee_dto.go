package employee

import "time"

const dateLayout = "2006-01-02"

type CreateEmployeeRequest struct {
	EmployeeNumber string `json:"employee_number" binding:"omitempty,max=30"`
	FullName       string `json:"full_name" binding:"required,max=255"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"omitempty,max=30"`
	Gender         string `json:"gender" binding:"required,oneof=male female"`
	DepartmentID   string `json:"department_id" binding:"omitempty,uuid"`
	BranchID       string `json:"branch_id" binding:"omitempty,uuid"`
	DesignationID  string `json:"designation_id" binding:"omitempty,uuid"`
	ManagerID      string `json:"manager_id" binding:"omitempty,uuid"`
	JoinDate       string `json:"join_date" binding:"required"`
}

type UpdateEmployeeRequest struct {
	FullName      string `json:"full_name" binding:"required,max=255"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"omitempty,max=30"`
	Gender        string `json:"gender" binding:"required,oneof=male female"`
	DepartmentID  string `json:"department_id" binding:"omitempty,uuid"`
	BranchID      string `json:"branch_id" binding:"omitempty,uuid"`
	DesignationID string `json:"designation_id" binding:"omitempty,uuid"`
	ManagerID     string `json:"manager_id" binding:"omitempty,uuid"`
	JoinDate      string `json:"join_date" binding:"required"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type ListEmployeesQuery struct {
	Search       string `form:"q"`
	Status       string `form:"status"`
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	BranchID     string `form:"branch_id" binding:"omitempty,uuid"`
	Page         int    `form:"page"`
	PerPage      int    `form:"per_page"`
}

type EmployeeResponse struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Gender         string `json:"gender"`
	CompanyID      string `json:"company_id"`
	DepartmentID   string `json:"department_id,omitempty"`
	BranchID       string `json:"branch_id,omitempty"`
	DesignationID  string `json:"designation_id,omitempty"`
	ManagerID      string `json:"manager_id,omitempty"`
	Status         string `json:"status"`
	JoinDate       string `json:"join_date"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// EmployeeOption is the light shape used by select inputs.
type EmployeeOption struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
}

func mapToResponse(empl Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:             empl.ID.String(),
		EmployeeNumber: empl.EmployeeNumber,
		FullName:       empl.FullName,
		Email:          empl.Email,
		Phone:          empl.Phone,
		Gender:         string(empl.Gender),
		CompanyID:      empl.CompanyID.String(),
		DepartmentID:   uuidToString(empl.DepartmentID),
		BranchID:       uuidToString(empl.BranchID),
		DesignationID:  uuidToString(empl.DesignationID),
		ManagerID:      uuidToString(empl.ManagerID),
		Status:         empl.Status.String(),
		JoinDate:       empl.JoinDate.Format(dateLayout),
	}
	if !empl.CreatedAt.IsZero() {
		resp.CreatedAt = empl.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(items []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(items))
	for i, e := range items {
		res[i] = mapToResponse(e)
	}
	return res
}

func mapToOptions(items []Employee) []EmployeeOption {
	res := make([]EmployeeOption, len(items))
	for i, e := range items {
		res[i] = EmployeeOption{ID: e.ID.String(), EmployeeNumber: e.EmployeeNumber, FullName: e.FullName}
	}
	return res
}
