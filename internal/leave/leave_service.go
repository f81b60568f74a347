package leave

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/events"
	leaveerrors "hr-backoffice/internal/leave/errors"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/shared/apperror"
	"hr-backoffice/internal/shared/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	resourceLeave = "leave"
	actionApprove = "approve"
)

// Authorizer answers capability checks; rbac.Service satisfies it.
type Authorizer interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	List(ctx context.Context, actor domain.Actor, q ListLeavesQuery) ([]LeaveResponse, response.PaginationMeta, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Update(ctx context.Context, actor domain.Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor domain.Actor, id string, req RejectLeaveRequest) (LeaveResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	authz  Authorizer
	outbox kafka.OutboxRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, authz Authorizer, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, authz, nil, logger...)
}

func NewServiceWithOutbox(db *sql.DB, repo Repository, authz Authorizer, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		authz:  authz,
		outbox: outbox,
		now:    time.Now,
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("company_id", actor.CompanyID),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	companyID, actorID, err := parseActor(actor)
	if err != nil {
		return LeaveResponse{}, err
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	p, err := validatePeriod(req.LeaveType, req.StartDate, req.EndDate, req.Reason)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if !actor.IsAdmin() && !actor.Is(req.EmployeeID) {
		return LeaveResponse{}, leaveerrors.ErrActorForbidden
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	belongs, err := qtx.EmployeeBelongsToCompany(ctx, actor.CompanyID, req.EmployeeID)
	if err != nil {
		s.logger.Error("create leave employee company check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !belongs {
		return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
	}

	if err := s.checkOverlap(ctx, qtx, actor.CompanyID, req.EmployeeID, p, ""); err != nil {
		return LeaveResponse{}, err
	}

	l := &Leave{
		ID:         uuid.New(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		LeaveType:  p.leaveType,
		StartDate:  p.start,
		EndDate:    p.end,
		TotalDays:  TotalDays(p.start, p.end),
		Reason:     p.reason,
		Status:     domain.StatusPending,
		CreatedBy:  actorID,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.enqueueStatusChanged(ctx, tx, actor, l, ""); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("total_days", l.TotalDays),
	)
	return mapToResponse(*l), nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, q ListLeavesQuery) ([]LeaveResponse, response.PaginationMeta, error) {
	page, perPage := response.NormalizePage(q.Page, q.PerPage)

	filter := ListFilter{
		EmployeeID: q.EmployeeID,
		Offset:     (page - 1) * perPage,
		Limit:      perPage,
	}
	if q.Status != "" && q.Status != domain.FilterAll {
		status := domain.Status(q.Status)
		if !status.In(domain.LeaveStatuses) {
			return nil, response.PaginationMeta{}, apperror.InvalidField("Status")
		}
		filter.Status = status
	}
	if q.LeaveType != "" && q.LeaveType != domain.FilterAll {
		t := Type(strings.ToLower(q.LeaveType))
		if !t.Valid() {
			return nil, response.PaginationMeta{}, leaveerrors.ErrInvalidLeaveType
		}
		filter.LeaveType = t
	}

	// Employees without the approval capability only see their own leaves.
	if !actor.IsAdmin() {
		if err := s.requireApprover(actor); err != nil {
			if !errors.Is(err, leaveerrors.ErrApprovalForbidden) {
				return nil, response.PaginationMeta{}, err
			}
			filter.EmployeeID = actor.EmployeeID
		}
	}

	items, total, err := s.repo.FindAll(ctx, actor.CompanyID, filter)
	if err != nil {
		s.logger.Error("list leaves failed", zap.String("company_id", actor.CompanyID), zap.Error(err))
		return nil, response.PaginationMeta{}, err
	}

	return mapToListResponse(items), response.NewPaginationMeta(total, page, perPage), nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.find(ctx, s.repo, actor.CompanyID, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	if !actor.IsAdmin() && !actor.Is(l.EmployeeID.String()) {
		if err := s.requireApprover(actor); err != nil {
			return LeaveResponse{}, err
		}
	}
	return mapToResponse(*l), nil
}

// Update changes the period of a leave that is still pending.
func (s *service) Update(ctx context.Context, actor domain.Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	p, err := validatePeriod(req.LeaveType, req.StartDate, req.EndDate, req.Reason)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.find(ctx, qtx, actor.CompanyID, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != domain.StatusPending {
		return LeaveResponse{}, leaveerrors.ErrInvalidState
	}
	if !actor.IsAdmin() && !actor.Is(l.EmployeeID.String()) {
		return LeaveResponse{}, leaveerrors.ErrActorForbidden
	}

	if err := s.checkOverlap(ctx, qtx, actor.CompanyID, l.EmployeeID.String(), p, id); err != nil {
		return LeaveResponse{}, err
	}

	l.LeaveType = p.leaveType
	l.StartDate = p.start
	l.EndDate = p.end
	l.TotalDays = TotalDays(p.start, p.end)
	l.Reason = p.reason

	ok, err := qtx.UpdatePending(ctx, l)
	if err != nil {
		s.logger.Error("update leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrInvalidState
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("update leave success", zap.String("leave_id", id))
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, actor, id, domain.StatusApproved, nil)
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id string, req RejectLeaveRequest) (LeaveResponse, error) {
	reason := strings.TrimSpace(req.RejectionReason)
	if reason == "" {
		s.logger.Warn("reject leave without reason", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
	}
	return s.transition(ctx, actor, id, domain.StatusRejected, &reason)
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.find(ctx, s.repo, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && !actor.Is(l.EmployeeID.String()) {
		return leaveerrors.ErrActorForbidden
	}
	if l.Status != domain.StatusPending {
		return leaveerrors.ErrInvalidState
	}

	ok, err := s.repo.DeletePending(ctx, actor.CompanyID, id)
	if err != nil {
		s.logger.Error("delete leave failed", zap.String("leave_id", id), zap.Error(err))
		return err
	}
	if !ok {
		return leaveerrors.ErrInvalidState
	}

	s.logger.Info("delete leave success", zap.String("leave_id", id))
	return nil
}

// transition checks state before capability, then writes conditionally on
// the status that was read.
func (s *service) transition(ctx context.Context, actor domain.Actor, id string, to domain.Status, reason *string) (LeaveResponse, error) {
	log := s.logger.With(
		zap.String("leave_id", id),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("to", to.String()),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	_, actorID, err := parseActor(actor)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.find(ctx, qtx, actor.CompanyID, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	if !CanTransition(l.Status, to) {
		log.Warn("leave transition not allowed", zap.String("status", l.Status.String()))
		return LeaveResponse{}, leaveerrors.ErrInvalidState
	}
	if !actor.IsAdmin() {
		if err := s.requireApprover(actor); err != nil {
			log.Warn("leave transition forbidden", zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	now := s.now()
	change := StatusChange{To: to, ApprovedBy: &actorID, DecidedAt: &now, RejectionReason: reason}

	ok, err := qtx.TransitionStatus(ctx, actor.CompanyID, id, l.Status, change)
	if err != nil {
		log.Error("leave transition persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !ok {
		log.Warn("leave transition lost race", zap.String("read_status", l.Status.String()))
		return LeaveResponse{}, leaveerrors.ErrInvalidState
	}

	from := l.Status
	l.Status = to
	l.ApprovedBy = change.ApprovedBy
	l.DecidedAt = change.DecidedAt
	l.RejectionReason = reason

	if err := s.enqueueStatusChanged(ctx, tx, actor, l, from); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("leave transition commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	log.Info("leave transition success", zap.String("from", from.String()))
	return mapToResponse(*l), nil
}

func (s *service) checkOverlap(ctx context.Context, repo Repository, companyID, employeeID string, p period, excludeID string) error {
	overlap, err := repo.HasOverlappingPeriod(ctx, companyID, employeeID, p.start, p.end, excludeID)
	if err != nil {
		s.logger.Error("leave overlap check failed", zap.Error(err))
		return err
	}
	if overlap {
		s.logger.Warn("leave overlap detected",
			zap.String("employee_id", employeeID),
			zap.String("start_date", p.start.Format(dateLayout)),
			zap.String("end_date", p.end.Format(dateLayout)),
		)
		return leaveerrors.ErrLeaveOverlap
	}
	return nil
}

func (s *service) find(ctx context.Context, repo Repository, companyID, id string) (*Leave, error) {
	l, err := repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("find leave failed", zap.String("leave_id", id), zap.Error(err))
		return nil, err
	}
	return l, nil
}

func (s *service) requireApprover(actor domain.Actor) error {
	if s.authz == nil {
		return leaveerrors.ErrApprovalForbidden
	}
	allowed, err := s.authz.Enforce(actor.EnforceRequest(resourceLeave, actionApprove))
	if err != nil {
		s.logger.Error("leave approval capability check failed", zap.Error(err))
		return err
	}
	if !allowed {
		return leaveerrors.ErrApprovalForbidden
	}
	return nil
}

func (s *service) enqueueStatusChanged(ctx context.Context, tx *sql.Tx, actor domain.Actor, l *Leave, from domain.Status) error {
	if s.outbox == nil {
		return nil
	}

	payload := events.StatusChangedEvent{
		EventType:     events.EventLeaveStatusChanged,
		AggregateType: resourceLeave,
		AggregateID:   l.ID.String(),
		CompanyID:     l.CompanyID.String(),
		EmployeeID:    l.EmployeeID.String(),
		FromStatus:    from.String(),
		ToStatus:      l.Status.String(),
		ActorID:       actor.EmployeeID,
		OccurredAt:    s.now().UTC(),
	}
	if l.RejectionReason != nil {
		payload.Remarks = *l.RejectionReason
	}

	event, err := kafka.NewOutboxEvent(ctx, resourceLeave, l.ID.String(), events.EventLeaveStatusChanged, events.LeaveLifecycleTopic, payload)
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("leave outbox enqueue failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

func parseActor(actor domain.Actor) (companyID, employeeID uuid.UUID, err error) {
	companyID, err = uuid.Parse(actor.CompanyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.ErrUnauthorized
	}
	employeeID, err = uuid.Parse(actor.EmployeeID)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.ErrUnauthorized
	}
	return companyID, employeeID, nil
}
