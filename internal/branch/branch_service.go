package branch

import (
	"context"
	"database/sql"
	"errors"

	brancherrors "hr-backoffice/internal/branch/errors"
	"hr-backoffice/internal/shared/cache"
	"hr-backoffice/internal/shared/connection"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const BranchAllKeyPrefix = "branches:all:"

func GetBranchAllKey(companyID string) string {
	return cache.Key(BranchAllKeyPrefix, companyID)
}

type Service interface {
	Create(ctx context.Context, companyID string, req CreateBranchRequest) (BranchResponse, error)
	GetAll(ctx context.Context, companyID string) ([]BranchResponse, error)
	GetByID(ctx context.Context, companyID, id string) (BranchResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateBranchRequest) (BranchResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("branch.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("branch.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(ctx context.Context, companyID string, req CreateBranchRequest) (BranchResponse, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return BranchResponse{}, brancherrors.ErrInvalidBranchID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BranchResponse{}, err
	}
	defer tx.Rollback()

	b := &Branch{
		ID:        uuid.New(),
		CompanyID: cid,
		Name:      req.Name,
		Code:      normalizeCode(req.Code),
		Address:   req.Address,
	}

	if err := s.repo.WithTx(tx).Create(ctx, b); err != nil {
		s.logger.Warn("create branch failed", zap.String("company_id", companyID), zap.Error(err))
		return BranchResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return BranchResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetBranchAllKey(companyID))
	s.logger.Info("create branch success", zap.String("branch_id", b.ID.String()), zap.String("code", b.Code))
	return mapToResponse(*b), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]BranchResponse, error) {
	return cache.GetOrLoad(ctx, s.rdb, s.sf, GetBranchAllKey(companyID), cache.DefaultTTL,
		func(ctx context.Context) ([]BranchResponse, error) {
			items, err := s.repo.FindAllByCompany(ctx, companyID)
			if err != nil {
				s.logger.Error("list branches failed", zap.String("company_id", companyID), zap.Error(err))
				return nil, err
			}
			return mapToListResponse(items), nil
		})
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (BranchResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return BranchResponse{}, brancherrors.ErrInvalidBranchID
	}

	b, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return BranchResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*b), nil
}

func (s *service) Update(ctx context.Context, companyID, id string, req UpdateBranchRequest) (BranchResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return BranchResponse{}, brancherrors.ErrInvalidBranchID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BranchResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return BranchResponse{}, mapRepositoryError(err)
	}

	b.Name = req.Name
	b.Code = normalizeCode(req.Code)
	b.Address = req.Address

	if err := qtx.Update(ctx, b); err != nil {
		return BranchResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return BranchResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetBranchAllKey(companyID))
	return mapToResponse(*b), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return brancherrors.ErrInvalidBranchID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByIDAndCompany(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	inUse, err := qtx.InUse(ctx, companyID, id)
	if err != nil {
		return err
	}
	if inUse {
		return brancherrors.ErrBranchInUse
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetBranchAllKey(companyID))
	s.logger.Info("delete branch success", zap.String("branch_id", id))
	return nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return brancherrors.ErrBranchNotFound
	}
	if constraint, ok := connection.UniqueViolation(err); ok && constraint == "uq_branch_code" {
		return brancherrors.ErrBranchCodeExists
	}
	return err
}
