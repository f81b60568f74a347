package employee

import (
	"errors"

	employeeerrors "hr-backoffice/internal/employee/errors"
	"hr-backoffice/internal/shared/connection"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	if constraint, ok := connection.UniqueViolation(err); ok {
		switch constraint {
		case "uq_employee_number":
			return employeeerrors.ErrEmployeeNumberAlreadyExists
		case "uq_employee_email":
			return employeeerrors.ErrEmployeeAlreadyExists
		}
	}

	return err
}
