package employee

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/shared/connection"
	"hr-backoffice/internal/tenant"

	"gorm.io/gorm"
)

// Reference tables an employee may point at.
const (
	RefDepartments  = "departments"
	RefBranches     = "branches"
	RefDesignations = "designations"
	RefEmployees    = "employees"
)

var referenceTables = map[string]bool{
	RefDepartments:  true,
	RefBranches:     true,
	RefDesignations: true,
	RefEmployees:    true,
}

type ListFilter struct {
	Search       string
	Status       domain.Status
	DepartmentID string
	BranchID     string
	Offset       int
	Limit        int
}

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Employee, int64, error)
	FindOptionsByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error)
	Update(ctx context.Context, empl *Employee) error
	// TransitionStatus changes status only while the row is still in from.
	TransitionStatus(ctx context.Context, companyID, id string, from, to domain.Status) (bool, error)
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
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return connection.BindTx(r.db, r.tx).WithContext(ctx)
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Create(empl).Error
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Employee, int64, error) {
	q := r.conn(ctx).Model(&Employee{}).Scopes(tenant.Scope(companyID))
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := connection.ContainsPattern(s)
		q = q.Where("(full_name ILIKE ? OR employee_number ILIKE ? OR email ILIKE ?)", like, like, like)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.DepartmentID != "" {
		q = q.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.BranchID != "" {
		q = q.Where("branch_id = ?", filter.BranchID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []Employee{}, 0, nil
	}

	var items []Employee
	err := q.Order("full_name ASC, id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	return items, total, err
}

func (r *repository) FindOptionsByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var items []Employee
	err := r.conn(ctx).
		Select("id", "employee_number", "full_name").
		Scopes(tenant.Scope(companyID)).
		Where("status <> ?", domain.StatusTerminated).
		Order("full_name ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error) {
	var empl Employee
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Omit("status", "employee_number", "created_at").Save(empl).Error
}

func (r *repository) TransitionStatus(ctx context.Context, companyID, id string, from, to domain.Status) (bool, error) {
	res := r.conn(ctx).
		Model(&Employee{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) ReferenceExists(ctx context.Context, companyID, table, id string) (bool, error) {
	if !referenceTables[table] {
		return false, fmt.Errorf("employee: unknown reference table %q", table)
	}

	var count int64
	err := r.conn(ctx).
		Table(table).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}
