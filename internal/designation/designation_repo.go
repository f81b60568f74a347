package designation

import (
	"context"
	"database/sql"

	"hr-backoffice/internal/shared/connection"
	"hr-backoffice/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=designation_repo.go -destination=mock/designation_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, d *Designation) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Designation, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Designation, error)
	Update(ctx context.Context, d *Designation) error
	Delete(ctx context.Context, companyID string, id string) error
	CountEmployees(ctx context.Context, companyID string, id string) (int64, error)
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

func (r *repository) Create(ctx context.Context, d *Designation) error {
	return connection.BindTx(r.db, r.tx).WithContext(ctx).Create(d).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Designation, error) {
	var items []Designation
	err := connection.BindTx(r.db, r.tx).WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Designation, error) {
	var d Designation
	err := connection.BindTx(r.db, r.tx).WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&d, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) Update(ctx context.Context, d *Designation) error {
	return connection.BindTx(r.db, r.tx).WithContext(ctx).Save(d).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	return connection.BindTx(r.db, r.tx).WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Designation{}, "id = ?", id).Error
}

func (r *repository) CountEmployees(ctx context.Context, companyID string, id string) (int64, error) {
	var count int64
	err := connection.BindTx(r.db, r.tx).WithContext(ctx).
		Table("employees").
		Scopes(tenant.Scope(companyID)).
		Where("designation_id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count, err
}
