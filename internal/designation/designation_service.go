package designation

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	designationerrors "hr-backoffice/internal/designation/errors"
	"hr-backoffice/internal/shared/cache"
	"hr-backoffice/internal/shared/connection"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const DesignationAllKeyPrefix = "designations:all:"

func GetDesignationAllKey(companyID string) string {
	return cache.Key(DesignationAllKeyPrefix, companyID)
}

type Service interface {
	Create(ctx context.Context, companyID string, req CreateDesignationRequest) (DesignationResponse, error)
	GetAll(ctx context.Context, companyID string) ([]DesignationResponse, error)
	GetByID(ctx context.Context, companyID, id string) (DesignationResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateDesignationRequest) (DesignationResponse, error)
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
	l := zap.L().Named("designation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("designation.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateDesignationRequest,
) (DesignationResponse, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return DesignationResponse{}, designationerrors.ErrInvalidDesignationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DesignationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	d := &Designation{
		ID:          uuid.New(),
		CompanyID:   cid,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}

	if err := qtx.Create(ctx, d); err != nil {
		return DesignationResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DesignationResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetDesignationAllKey(companyID))
	return mapToResponse(*d), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
) ([]DesignationResponse, error) {
	return cache.GetOrLoad(ctx, s.rdb, s.sf, GetDesignationAllKey(companyID), cache.DefaultTTL,
		func(ctx context.Context) ([]DesignationResponse, error) {
			items, err := s.repo.FindAllByCompany(ctx, companyID)
			if err != nil {
				return nil, err
			}
			return mapToListResponse(items), nil
		})
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (DesignationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DesignationResponse{}, designationerrors.ErrInvalidDesignationID
	}

	d, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return DesignationResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*d), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateDesignationRequest,
) (DesignationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DesignationResponse{}, designationerrors.ErrInvalidDesignationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DesignationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	d, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return DesignationResponse{}, mapRepositoryError(err)
	}

	d.Name = strings.TrimSpace(req.Name)
	d.Description = req.Description

	if err := qtx.Update(ctx, d); err != nil {
		return DesignationResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DesignationResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetDesignationAllKey(companyID))
	return mapToResponse(*d), nil
}

func (s *service) Delete(
	ctx context.Context,
	companyID, id string,
) error {
	if _, err := uuid.Parse(id); err != nil {
		return designationerrors.ErrInvalidDesignationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	assigned, err := qtx.CountEmployees(ctx, companyID, id)
	if err != nil {
		return err
	}
	if assigned > 0 {
		s.logger.Warn("delete designation still assigned",
			zap.String("designation_id", id),
			zap.Int64("employees", assigned),
		)
		return designationerrors.ErrDesignationInUse
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetDesignationAllKey(companyID))
	return nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return designationerrors.ErrDesignationNotFound
	}
	if constraint, ok := connection.UniqueViolation(err); ok && constraint == "uq_designation_name" {
		return designationerrors.ErrDesignationExists
	}
	return err
}
