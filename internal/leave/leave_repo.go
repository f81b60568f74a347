package leave

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
	To              domain.Status
	ApprovedBy      *uuid.UUID
	RejectionReason *string
	DecidedAt       *time.Time
}

type ListFilter struct {
	Status     domain.Status
	EmployeeID string
	LeaveType  Type
	Offset     int
	Limit      int
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Leave, int64, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Leave, error)
	UpdatePending(ctx context.Context, l *Leave) (bool, error)
	TransitionStatus(ctx context.Context, companyID, id string, from domain.Status, change StatusChange) (bool, error)
	DeletePending(ctx context.Context, companyID, id string) (bool, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
	// HasOverlappingPeriod ignores rejected leaves and excludeID.
	HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Leave, int64, error) {
	q := r.conn(ctx).Model(&Leave{}).Scopes(tenant.Scope(companyID))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.LeaveType != "" {
		q = q.Where("leave_type = ?", filter.LeaveType)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leaves []Leave
	err := q.Order("start_date DESC, id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&leaves).Error
	return leaves, total, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) UpdatePending(ctx context.Context, l *Leave) (bool, error) {
	res := r.conn(ctx).
		Model(&Leave{}).
		Scopes(tenant.Scope(l.CompanyID.String())).
		Where("id = ? AND status = ?", l.ID, domain.StatusPending).
		Updates(map[string]any{
			"leave_type": l.LeaveType,
			"start_date": l.StartDate,
			"end_date":   l.EndDate,
			"total_days": l.TotalDays,
			"reason":     l.Reason,
			"updated_at": time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) TransitionStatus(ctx context.Context, companyID, id string, from domain.Status, change StatusChange) (bool, error) {
	updates := map[string]any{
		"status":     change.To,
		"updated_at": time.Now(),
	}
	if change.ApprovedBy != nil {
		updates["approved_by"] = *change.ApprovedBy
	}
	if change.RejectionReason != nil {
		updates["rejection_reason"] = *change.RejectionReason
	}
	if change.DecidedAt != nil {
		updates["decided_at"] = *change.DecidedAt
	}

	res := r.conn(ctx).
		Model(&Leave{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeletePending(ctx context.Context, companyID, id string) (bool, error) {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Delete(&Leave{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND deleted_at IS NULL", employeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID string) (bool, error) {
	q := r.conn(ctx).
		Model(&Leave{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("status <> ?", domain.StatusRejected).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate)

	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}
