package branch

import (
	"context"
	"database/sql"

	"hr-backoffice/internal/shared/connection"
	"hr-backoffice/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *Branch) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Branch, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Branch, error)
	Update(ctx context.Context, b *Branch) error
	Delete(ctx context.Context, companyID, id string) error
	// InUse reports whether an active employee or department points at the branch.
	InUse(ctx context.Context, companyID, id string) (bool, error)
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

func (r *repository) Create(ctx context.Context, b *Branch) error {
	return r.conn(ctx).Create(b).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Branch, error) {
	var items []Branch
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Branch, error) {
	var b Branch
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) Update(ctx context.Context, b *Branch) error {
	return r.conn(ctx).Save(b).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Branch{}, "id = ?", id).Error
}

func (r *repository) InUse(ctx context.Context, companyID, id string) (bool, error) {
	for _, table := range []string{"employees", "departments"} {
		var count int64
		err := r.conn(ctx).
			Table(table).
			Scopes(tenant.Scope(companyID)).
			Where("branch_id = ? AND deleted_at IS NULL", id).
			Count(&count).Error
		if err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}
