package department

import (
	"context"
	"database/sql"
	"errors"

	departmenterrors "hr-backoffice/internal/department/errors"
	"hr-backoffice/internal/shared/cache"
	"hr-backoffice/internal/shared/connection"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const DepartmentAllKeyPrefix = "departments:all:"

func GetDepartmentAllKey(companyID string) string {
	return cache.Key(DepartmentAllKeyPrefix, companyID)
}

type Service interface {
	Create(ctx context.Context, companyID string, req CreateDepartmentRequest) (DepartmentResponse, error)
	GetAll(ctx context.Context, companyID string) ([]DepartmentResponse, error)
	GetTree(ctx context.Context, companyID string) ([]DepartmentNode, error)
	GetByID(ctx context.Context, companyID, id string) (DepartmentResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateDepartmentRequest) (DepartmentResponse, error)
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
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

type links struct {
	parentID *uuid.UUID
	headID   *uuid.UUID
	branchID *uuid.UUID
}

// resolveLinks validates parent, head and branch against the company. selfID
// is empty on create.
func (s *service) resolveLinks(ctx context.Context, qtx Repository, companyID, selfID, parent, head, branch string) (links, error) {
	var out links
	var err error

	if out.parentID, err = parseOptionalUUID(parent); err != nil {
		return links{}, departmenterrors.ErrInvalidDepartmentID
	}
	if out.headID, err = parseOptionalUUID(head); err != nil {
		return links{}, departmenterrors.ErrHeadNotFound
	}
	if out.branchID, err = parseOptionalUUID(branch); err != nil {
		return links{}, departmenterrors.ErrBranchNotFound
	}

	// Compare canonical forms so case differences in ids do not matter.
	if id, err := uuid.Parse(selfID); err == nil {
		selfID = id.String()
	}

	if out.parentID != nil {
		parent = out.parentID.String()
		if parent == selfID {
			return links{}, departmenterrors.ErrDepartmentCycle
		}

		all, err := qtx.FindAllByCompany(ctx, companyID)
		if err != nil {
			return links{}, err
		}
		a := newArena(mapToListResponse(all))
		if !a.has(parent) {
			return links{}, departmenterrors.ErrParentNotFound
		}
		if selfID != "" && a.wouldCycle(selfID, parent) {
			s.logger.Warn("department cycle rejected",
				zap.String("department_id", selfID),
				zap.String("parent_id", parent),
			)
			return links{}, departmenterrors.ErrDepartmentCycle
		}
	}

	if out.headID != nil {
		ok, err := qtx.ReferenceExists(ctx, companyID, RefEmployees, out.headID.String())
		if err != nil {
			return links{}, err
		}
		if !ok {
			return links{}, departmenterrors.ErrHeadNotFound
		}
	}

	if out.branchID != nil {
		ok, err := qtx.ReferenceExists(ctx, companyID, RefBranches, out.branchID.String())
		if err != nil {
			return links{}, err
		}
		if !ok {
			return links{}, departmenterrors.ErrBranchNotFound
		}
	}

	return out, nil
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateDepartmentRequest,
) (DepartmentResponse, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidDepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.resolveLinks(ctx, qtx, companyID, "", req.ParentID, req.HeadID, req.BranchID)
	if err != nil {
		return DepartmentResponse{}, err
	}

	dept := &Department{
		ID:          uuid.New(),
		CompanyID:   cid,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    l.parentID,
		HeadID:      l.headID,
		BranchID:    l.branchID,
	}

	if err := qtx.Create(ctx, dept); err != nil {
		s.logger.Warn("create department failed", zap.String("company_id", companyID), zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetDepartmentAllKey(companyID))
	s.logger.Info("create department success", zap.String("department_id", dept.ID.String()))
	return mapToResponse(*dept), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
) ([]DepartmentResponse, error) {
	return cache.GetOrLoad(ctx, s.rdb, s.sf, GetDepartmentAllKey(companyID), cache.DefaultTTL,
		func(ctx context.Context) ([]DepartmentResponse, error) {
			depts, err := s.repo.FindAllByCompany(ctx, companyID)
			if err != nil {
				s.logger.Error("list departments failed", zap.String("company_id", companyID), zap.Error(err))
				return nil, err
			}
			return mapToListResponse(depts), nil
		})
}

func (s *service) GetTree(ctx context.Context, companyID string) ([]DepartmentNode, error) {
	depts, err := s.GetAll(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return newArena(depts).roots(), nil
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (DepartmentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidDepartmentID
	}

	dept, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*dept), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateDepartmentRequest,
) (DepartmentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidDepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	l, err := s.resolveLinks(ctx, qtx, companyID, id, req.ParentID, req.HeadID, req.BranchID)
	if err != nil {
		return DepartmentResponse{}, err
	}

	dept.Name = req.Name
	dept.Description = req.Description
	dept.ParentID = l.parentID
	dept.HeadID = l.headID
	dept.BranchID = l.branchID

	if err := qtx.Update(ctx, dept); err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetDepartmentAllKey(companyID))
	return mapToResponse(*dept), nil
}

func (s *service) Delete(
	ctx context.Context,
	companyID, id string,
) error {
	if _, err := uuid.Parse(id); err != nil {
		return departmenterrors.ErrInvalidDepartmentID
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

	n, err := qtx.CountDependents(ctx, companyID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return departmenterrors.ErrDepartmentInUse
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetDepartmentAllKey(companyID))
	s.logger.Info("delete department success", zap.String("department_id", id))
	return nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return departmenterrors.ErrDepartmentNotFound
	}
	if constraint, ok := connection.UniqueViolation(err); ok && constraint == "uq_department_name" {
		return departmenterrors.ErrDepartmentExists
	}
	return err
}
