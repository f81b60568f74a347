package department

import (
	"context"
	"database/sql"
	"fmt"

	"hr-backoffice/internal/shared/connection"
	"hr-backoffice/internal/tenant"

	"gorm.io/gorm"
)

const (
	RefEmployees = "employees"
	RefBranches  = "branches"
)

//go:generate mockgen -source=department_repo.go -destination=mock/department_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, dept *Department) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Department, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Department, error)
	Update(ctx context.Context, dept *Department) error
	Delete(ctx context.Context, companyID, id string) error
	// ReferenceExists checks a row in one of the Ref* tables of the same company.
	ReferenceExists(ctx context.Context, companyID, table, id string) (bool, error)
	// CountDependents counts sub-departments and employees attached to the department.
	CountDependents(ctx context.Context, companyID, id string) (int64, error)
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

func (r *repository) Create(ctx context.Context, dept *Department) error {
	return r.conn(ctx).Create(dept).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Department, error) {
	var depts []Department
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("name ASC").
		Find(&depts).Error
	return depts, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Department, error) {
	var dept Department
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&dept, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *repository) Update(ctx context.Context, dept *Department) error {
	return r.conn(ctx).Save(dept).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Department{}, "id = ?", id).Error
}

func (r *repository) ReferenceExists(ctx context.Context, companyID, table, id string) (bool, error) {
	if table != RefEmployees && table != RefBranches {
		return false, fmt.Errorf("department: unknown reference table %q", table)
	}

	var count int64
	err := r.conn(ctx).
		Table(table).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountDependents(ctx context.Context, companyID, id string) (int64, error) {
	var children int64
	err := r.conn(ctx).
		Model(&Department{}).
		Scopes(tenant.Scope(companyID)).
		Where("parent_id = ?", id).
		Count(&children).Error
	if err != nil {
		return 0, err
	}

	var employees int64
	err = r.conn(ctx).
		Table(RefEmployees).
		Scopes(tenant.Scope(companyID)).
		Where("department_id = ? AND deleted_at IS NULL", id).
		Count(&employees).Error
	return children + employees, err
}
