package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/shared/connection"
	"hr-backoffice/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RefBranches    = "branches"
	RefDepartments = "departments"
)

// StatusChange is applied by TransitionStatus in a single conditional write.
type StatusChange struct {
	To          domain.Status
	ApproverID  *uuid.UUID
	Remarks     *string
	DecidedAt   *time.Time
	CompletedAt *time.Time
}

type ListFilter struct {
	Status     domain.Status
	EmployeeID string
	Offset     int
	Limit      int
}

//go:generate mockgen -source=transfer_repo.go -destination=mock/transfer_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, t *Transfer) error
	FindByID(ctx context.Context, companyID, id string) (*Transfer, error)
	FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Transfer, int64, error)
	TransitionStatus(ctx context.Context, companyID, id string, from domain.Status, change StatusChange) (bool, error)
	DeletePending(ctx context.Context, companyID, id string) (bool, error)
	// FindPlacement returns gorm.ErrRecordNotFound for unknown or terminated
	// employees.
	FindPlacement(ctx context.Context, companyID, employeeID string) (Placement, error)
	ApplyPlacement(ctx context.Context, companyID, employeeID string, p Placement) (bool, error)
	ReferenceExists(ctx context.Context, companyID, table, id string) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return connection.BindTx(r.db, r.tx).WithContext(ctx)
}

func (r *repository) Create(ctx context.Context, t *Transfer) error {
	return r.conn(ctx).Create(t).Error
}

func (r *repository) FindByID(ctx context.Context, companyID, id string) (*Transfer, error) {
	var t Transfer
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Transfer, int64, error) {
	q := r.conn(ctx).Model(&Transfer{}).Scopes(tenant.Scope(companyID))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Transfer
	err := q.Order("created_at ASC, id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	return items, total, err
}

func (r *repository) TransitionStatus(ctx context.Context, companyID, id string, from domain.Status, change StatusChange) (bool, error) {
	updates := map[string]any{
		"status":     change.To,
		"updated_at": time.Now(),
	}
	if change.ApproverID != nil {
		updates["approver_id"] = *change.ApproverID
	}
	if change.Remarks != nil {
		updates["remarks"] = *change.Remarks
	}
	if change.DecidedAt != nil {
		updates["decided_at"] = *change.DecidedAt
	}
	if change.CompletedAt != nil {
		updates["completed_at"] = *change.CompletedAt
	}

	res := r.conn(ctx).
		Model(&Transfer{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeletePending(ctx context.Context, companyID, id string) (bool, error) {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Delete(&Transfer{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FindPlacement(ctx context.Context, companyID, employeeID string) (Placement, error) {
	var row struct {
		BranchID     *uuid.UUID
		DepartmentID *uuid.UUID
	}
	err := r.conn(ctx).
		Table("employees").
		Select("branch_id, department_id").
		Where("id = ?", employeeID).
		Where("company_id = ?", companyID).
		Where("status <> ?", domain.StatusTerminated).
		Where("deleted_at IS NULL").
		Take(&row).Error
	if err != nil {
		return Placement{}, err
	}
	return Placement{BranchID: row.BranchID, DepartmentID: row.DepartmentID}, nil
}

func (r *repository) ApplyPlacement(ctx context.Context, companyID, employeeID string, p Placement) (bool, error) {
	res := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("company_id = ?", companyID).
		Where("status <> ?", domain.StatusTerminated).
		Where("deleted_at IS NULL").
		Updates(map[string]any{
			"branch_id":     p.BranchID,
			"department_id": p.DepartmentID,
			"updated_at":    time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) ReferenceExists(ctx context.Context, companyID, table, id string) (bool, error) {
	switch table {
	case RefBranches, RefDepartments:
	default:
		return false, fmt.Errorf("transfer: unknown reference table %q", table)
	}

	var count int64
	err := r.conn(ctx).
		Table(table).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}
