package movement

import (
	"context"
	"database/sql"
	"time"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/shared/connection"
	"hr-backoffice/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
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

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, m *Movement) error
	FindByID(ctx context.Context, companyID, id string) (*Movement, error)
	FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Movement, int64, error)
	// TransitionStatus updates the row only while it is still in from and
	// reports whether a row was changed.
	TransitionStatus(ctx context.Context, companyID, id string, from domain.Status, change StatusChange) (bool, error)
	UpdateRemarks(ctx context.Context, companyID, id string, remarks *string) (bool, error)
	DeletePending(ctx context.Context, companyID, id string) (bool, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, m *Movement) error {
	return r.conn(ctx).Create(m).Error
}

func (r *repository) FindByID(ctx context.Context, companyID, id string) (*Movement, error) {
	var m Movement
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Movement, int64, error) {
	q := r.conn(ctx).Model(&Movement{}).Scopes(tenant.Scope(companyID))
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

	var items []Movement
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
		Model(&Movement{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// UpdateRemarks never clears the remarks of a rejected movement.
func (r *repository) UpdateRemarks(ctx context.Context, companyID, id string, remarks *string) (bool, error) {
	q := r.conn(ctx).
		Model(&Movement{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id)
	if remarks == nil {
		q = q.Where("status <> ?", domain.StatusRejected)
	}
	res := q.Updates(map[string]any{"remarks": remarks, "updated_at": time.Now()})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeletePending(ctx context.Context, companyID, id string) (bool, error) {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Delete(&Movement{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("company_id = ?", companyID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}
