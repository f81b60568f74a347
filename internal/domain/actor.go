package domain

import "strings"

const (
	RoleSuperAdmin = "SUPERADMIN"
	RoleOwner      = "OWNER"
	RoleAdmin      = "ADMIN"
	RoleHR         = "HR"
	RoleEmployee   = "EMPLOYEE"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       string
}

func (a Actor) IsAdmin() bool {
	switch strings.ToUpper(a.Role) {
	case RoleSuperAdmin, RoleOwner, RoleAdmin, RoleHR:
		return true
	}
	return false
}

func (a Actor) IsZero() bool {
	return a.UserID == "" && a.EmployeeID == ""
}

// Is reports whether the actor acts as the given employee.
func (a Actor) Is(employeeID string) bool {
	return employeeID != "" && a.EmployeeID == employeeID
}

// EnforceRequest builds the casbin request for this actor.
func (a Actor) EnforceRequest(resource, action string) EnforceRequest {
	return EnforceRequest{
		EmployeeID: a.EmployeeID,
		CompanyID:  a.CompanyID,
		Resource:   resource,
		Action:     action,
	}
}
