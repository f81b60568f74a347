package employee

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"hr-backoffice/internal/domain"
	employeeerrors "hr-backoffice/internal/employee/errors"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/shared/cache"
	"hr-backoffice/internal/shared/contextutil"
	"hr-backoffice/internal/shared/counter"
	"hr-backoffice/internal/shared/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	EmployeeOptionsKeyPrefix = "employees:options:"
	employeeNumberPrefix     = "EMP"
	optionsTTL               = time.Hour
)

func GetEmployeeOptionsKey(companyID string) string {
	return cache.Key(EmployeeOptionsKeyPrefix, companyID)
}

type Service interface {
	Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, companyID string, q ListEmployeesQuery) ([]EmployeeResponse, response.PaginationMeta, error)
	GetOptions(ctx context.Context, companyID string) ([]EmployeeOption, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	ChangeStatus(ctx context.Context, actor domain.Actor, id string, req ChangeStatusRequest) (EmployeeResponse, error)
	// Delete terminates the employee; rows are never removed.
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	rdb     *redis.Client
	sf      *singleflight.Group
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counter counter.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, counter, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	counter counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counter,
		outbox:  outboxRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		now:     time.Now,
		logger:  l,
	}
}

// refs holds the validated optional references of an employee.
type refs struct {
	departmentID  *uuid.UUID
	branchID      *uuid.UUID
	designationID *uuid.UUID
	managerID     *uuid.UUID
}

func (s *service) resolveRefs(ctx context.Context, qtx Repository, companyID, selfID string, department, branch, designation, manager string) (refs, error) {
	if manager != "" && manager == selfID {
		return refs{}, employeeerrors.ErrSelfManager
	}

	var out refs
	checks := []struct {
		table string
		id    string
		err   error
		dst   **uuid.UUID
	}{
		{RefDepartments, department, employeeerrors.ErrDepartmentNotFound, &out.departmentID},
		{RefBranches, branch, employeeerrors.ErrBranchNotFound, &out.branchID},
		{RefDesignations, designation, employeeerrors.ErrDesignationNotFound, &out.designationID},
		{RefEmployees, manager, employeeerrors.ErrManagerNotFound, &out.managerID},
	}

	for _, c := range checks {
		if c.id == "" {
			continue
		}
		ok, err := qtx.ReferenceExists(ctx, companyID, c.table, c.id)
		if err != nil {
			s.logger.Error("employee reference check failed", zap.String("table", c.table), zap.Error(err))
			return refs{}, err
		}
		if !ok {
			return refs{}, c.err
		}
		*c.dst = uuidPtr(c.id)
	}
	return out, nil
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateEmployeeRequest,
) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("email", req.Email),
	)

	cid, err := uuid.Parse(companyID)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidCompanyID
	}
	joinDate, err := time.Parse(dateLayout, req.JoinDate)
	if err != nil {
		s.logger.Warn("create employee invalid join_date", zap.String("join_date", req.JoinDate))
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoinDate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := s.resolveRefs(ctx, qtx, companyID, "", req.DepartmentID, req.BranchID, req.DesignationID, req.ManagerID)
	if err != nil {
		return EmployeeResponse{}, err
	}

	number := strings.TrimSpace(req.EmployeeNumber)
	if number == "" {
		next, err := s.counter.WithTx(tx).GetNextValue(ctx, companyID, counter.TypeEmployee)
		if err != nil {
			s.logger.Error("create employee generate number failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
		number = counter.Format(employeeNumberPrefix, next)
	}

	empl := &Employee{
		ID:             uuid.New(),
		CompanyID:      cid,
		EmployeeNumber: number,
		FullName:       strings.TrimSpace(req.FullName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          req.Phone,
		Gender:         Gender(req.Gender),
		DepartmentID:   r.departmentID,
		BranchID:       r.branchID,
		DesignationID:  r.designationID,
		ManagerID:      r.managerID,
		Status:         domain.StatusActive,
		JoinDate:       joinDate,
	}

	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event, err := kafka.NewOutboxEvent(ctx, "employee", empl.ID.String(), events.EventEmployeeCreated, events.EmployeeLifecycleTopic,
			events.EmployeeCreatedEvent{
				EventType:      events.EventEmployeeCreated,
				EmployeeID:     empl.ID.String(),
				EmployeeNumber: empl.EmployeeNumber,
				CompanyID:      companyID,
				OccurredAt:     s.now().UTC(),
			})
		if err != nil {
			return EmployeeResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("create employee outbox persist failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetEmployeeOptionsKey(companyID))

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("employee_number", empl.EmployeeNumber),
	)
	return mapToResponse(*empl), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
	q ListEmployeesQuery,
) ([]EmployeeResponse, response.PaginationMeta, error) {
	page, perPage := response.NormalizePage(q.Page, q.PerPage)

	filter := ListFilter{
		Search:       q.Search,
		DepartmentID: q.DepartmentID,
		BranchID:     q.BranchID,
		Offset:       (page - 1) * perPage,
		Limit:        perPage,
	}
	if q.Status != "" && q.Status != domain.FilterAll {
		status := domain.Status(strings.ToLower(q.Status))
		if !status.In(domain.EmployeeStatuses) {
			return nil, response.PaginationMeta{}, employeeerrors.ErrInvalidStatus
		}
		filter.Status = status
	}

	items, total, err := s.repo.FindAll(ctx, companyID, filter)
	if err != nil {
		s.logger.Error("get all employees failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, response.PaginationMeta{}, err
	}

	return mapToListResponse(items), response.NewPaginationMeta(total, page, perPage), nil
}

func (s *service) GetOptions(ctx context.Context, companyID string) ([]EmployeeOption, error) {
	return cache.GetOrLoad(ctx, s.rdb, s.sf, GetEmployeeOptionsKey(companyID), optionsTTL,
		func(ctx context.Context) ([]EmployeeOption, error) {
			items, err := s.repo.FindOptionsByCompany(ctx, companyID)
			if err != nil {
				return nil, mapRepositoryError(err)
			}
			return mapToOptions(items), nil
		})
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateEmployeeRequest,
) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", id),
	)

	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	joinDate, err := time.Parse(dateLayout, req.JoinDate)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoinDate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	if empl.Status == domain.StatusTerminated {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeTerminated
	}

	r, err := s.resolveRefs(ctx, qtx, companyID, id, req.DepartmentID, req.BranchID, req.DesignationID, req.ManagerID)
	if err != nil {
		return EmployeeResponse{}, err
	}

	empl.FullName = strings.TrimSpace(req.FullName)
	empl.Email = strings.ToLower(strings.TrimSpace(req.Email))
	empl.Phone = req.Phone
	empl.Gender = Gender(req.Gender)
	empl.DepartmentID = r.departmentID
	empl.BranchID = r.branchID
	empl.DesignationID = r.designationID
	empl.ManagerID = r.managerID
	empl.JoinDate = joinDate

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetEmployeeOptionsKey(companyID))
	s.logger.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*empl), nil
}

func (s *service) ChangeStatus(ctx context.Context, actor domain.Actor, id string, req ChangeStatusRequest) (EmployeeResponse, error) {
	to := domain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if !to.In(domain.EmployeeStatuses) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidStatus
	}
	return s.changeStatus(ctx, actor, id, to, req.Reason)
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	_, err := s.changeStatus(ctx, actor, id, domain.StatusTerminated, "")
	return err
}

func (s *service) changeStatus(ctx context.Context, actor domain.Actor, id string, to domain.Status, reason string) (EmployeeResponse, error) {
	log := s.logger.With(
		zap.String("company_id", actor.CompanyID),
		zap.String("employee_id", id),
		zap.String("to", to.String()),
	)
	log.Debug("employee status change requested")

	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("employee status change begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	from := empl.Status
	if !CanTransition(from, to) {
		log.Warn("employee status change rejected", zap.String("from", from.String()))
		return EmployeeResponse{}, employeeerrors.ErrInvalidTransition
	}

	changed, err := qtx.TransitionStatus(ctx, actor.CompanyID, id, from, to)
	if err != nil {
		log.Error("employee status change persist failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	if !changed {
		log.Warn("employee status changed concurrently", zap.String("from", from.String()))
		return EmployeeResponse{}, employeeerrors.ErrInvalidTransition
	}
	empl.Status = to

	if s.outbox != nil {
		event, err := kafka.NewOutboxEvent(ctx, "employee", id, events.EventEmployeeStatusChanged, events.EmployeeLifecycleTopic,
			events.StatusChangedEvent{
				EventType:     events.EventEmployeeStatusChanged,
				AggregateType: "employee",
				AggregateID:   id,
				CompanyID:     actor.CompanyID,
				EmployeeID:    id,
				FromStatus:    from.String(),
				ToStatus:      to.String(),
				ActorID:       actor.EmployeeID,
				Remarks:       strings.TrimSpace(reason),
				OccurredAt:    s.now().UTC(),
			})
		if err != nil {
			return EmployeeResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			log.Error("employee status outbox persist failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("employee status change commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, GetEmployeeOptionsKey(actor.CompanyID))
	log.Info("employee status change success", zap.String("from", from.String()))

	return mapToResponse(*empl), nil
}

func uuidPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func uuidToString(v *uuid.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}
