package report

import (
	"context"

	"gorm.io/gorm"
)

// Query is a report query before paging: a table with its joins and the
// scopes every read of that report shares.
type Query struct {
	Table   string
	Joins   []string
	Columns string
	Order   string
	Scopes  []func(*gorm.DB) *gorm.DB
}

type Repository interface {
	// Page counts the filtered set and scans one page of it into dest.
	Page(ctx context.Context, q Query, offset, limit int, dest any) (int64, error)
	GroupCount(ctx context.Context, q Query, column string) (map[string]int64, error)
	Sum(ctx context.Context, q Query, expr string) (float64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) base(ctx context.Context, q Query) *gorm.DB {
	db := r.db.WithContext(ctx).Table(q.Table)
	for _, join := range q.Joins {
		db = db.Joins(join)
	}
	return db.Scopes(q.Scopes...)
}

func (r *repository) Page(ctx context.Context, q Query, offset, limit int, dest any) (int64, error) {
	base := r.base(ctx, q).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	err := base.
		Select(q.Columns).
		Order(q.Order).
		Offset(offset).
		Limit(limit).
		Find(dest).Error
	return total, err
}

type bucketRow struct {
	Bucket string
	Total  int64
}

func (r *repository) GroupCount(ctx context.Context, q Query, column string) (map[string]int64, error) {
	var rows []bucketRow
	err := r.base(ctx, q).
		Select("COALESCE(" + column + ", '') AS bucket, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Bucket] += row.Total
	}
	return counts, nil
}

func (r *repository) Sum(ctx context.Context, q Query, expr string) (float64, error) {
	var total float64
	err := r.base(ctx, q).
		Select("COALESCE(SUM(" + expr + "), 0)::float8").
		Scan(&total).Error
	return total, err
}
