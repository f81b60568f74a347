package transfer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/shared/apperror"
	"hr-backoffice/internal/shared/response"
	transfererrors "hr-backoffice/internal/transfer/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	resourceTransfer = "transfer"
	actionApprove    = "approve"
)

// Authorizer answers capability checks; rbac.Service satisfies it.
type Authorizer interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateTransferRequest) (TransferResponse, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (TransferResponse, error)
	List(ctx context.Context, actor domain.Actor, q ListTransfersQuery) ([]TransferResponse, response.PaginationMeta, error)
	Approve(ctx context.Context, actor domain.Actor, id string, req DecisionRequest) (TransferResponse, error)
	Reject(ctx context.Context, actor domain.Actor, id string, req DecisionRequest) (TransferResponse, error)
	Complete(ctx context.Context, actor domain.Actor, id string) (TransferResponse, error)
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
	l := zap.L().Named("transfer.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("transfer.service")
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

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateTransferRequest) (TransferResponse, error) {
	s.logger.Debug("create transfer requested",
		zap.String("company_id", actor.CompanyID),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("employee_id", req.EmployeeID),
	)

	companyID, actorID, err := parseActor(actor)
	if err != nil {
		return TransferResponse{}, err
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return TransferResponse{}, transfererrors.ErrInvalidEmployeeID
	}

	nt, err := validateCreate(req)
	if err != nil {
		s.logger.Warn("create transfer validation failed", zap.Error(err))
		return TransferResponse{}, err
	}

	if !actor.IsAdmin() && !actor.Is(req.EmployeeID) {
		return TransferResponse{}, transfererrors.ErrActorForbidden
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create transfer begin tx failed", zap.Error(err))
		return TransferResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	origin, err := qtx.FindPlacement(ctx, actor.CompanyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TransferResponse{}, transfererrors.ErrEmployeeNotFound
		}
		s.logger.Error("create transfer placement lookup failed", zap.Error(err))
		return TransferResponse{}, err
	}

	dst := nt.destination(origin)
	if dst.Equal(origin) {
		return TransferResponse{}, transfererrors.ErrSameDestination
	}

	if nt.toBranchID != nil {
		if err := s.requireReference(ctx, qtx, actor.CompanyID, RefBranches, *nt.toBranchID, transfererrors.ErrBranchNotFound); err != nil {
			return TransferResponse{}, err
		}
	}
	if nt.toDepartmentID != nil {
		if err := s.requireReference(ctx, qtx, actor.CompanyID, RefDepartments, *nt.toDepartmentID, transfererrors.ErrDepartmentNotFound); err != nil {
			return TransferResponse{}, err
		}
	}

	t := &Transfer{
		ID:               uuid.New(),
		CompanyID:        companyID,
		EmployeeID:       employeeID,
		FromBranchID:     origin.BranchID,
		ToBranchID:       dst.BranchID,
		FromDepartmentID: origin.DepartmentID,
		ToDepartmentID:   dst.DepartmentID,
		EffectiveDate:    nt.effectiveDate,
		Reason:           nt.reason,
		Status:           domain.StatusPending,
		CreatedBy:        actorID,
	}

	if err := qtx.Create(ctx, t); err != nil {
		s.logger.Error("create transfer persist failed", zap.Error(err))
		return TransferResponse{}, err
	}

	if err := s.enqueueStatusChanged(ctx, tx, actor, t, ""); err != nil {
		return TransferResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create transfer commit failed", zap.Error(err))
		return TransferResponse{}, err
	}

	s.logger.Info("create transfer success",
		zap.String("transfer_id", t.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("effective_date", t.EffectiveDate.Format(dateLayout)),
	)
	return mapToResponse(*t), nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (TransferResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TransferResponse{}, transfererrors.ErrInvalidTransferID
	}

	t, err := s.find(ctx, s.repo, actor.CompanyID, id)
	if err != nil {
		return TransferResponse{}, err
	}

	if !actor.IsAdmin() && !actor.Is(t.EmployeeID.String()) {
		if err := s.requireApprover(actor); err != nil {
			return TransferResponse{}, err
		}
	}
	return mapToResponse(*t), nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, q ListTransfersQuery) ([]TransferResponse, response.PaginationMeta, error) {
	page, perPage := response.NormalizePage(q.Page, q.PerPage)

	filter := ListFilter{
		EmployeeID: q.EmployeeID,
		Offset:     (page - 1) * perPage,
		Limit:      perPage,
	}
	if q.Status != "" && q.Status != domain.FilterAll {
		status := domain.Status(q.Status)
		if !status.In(domain.TransferStatuses) {
			return nil, response.PaginationMeta{}, apperror.InvalidField("Status")
		}
		filter.Status = status
	}

	if !actor.IsAdmin() {
		if err := s.requireApprover(actor); err != nil {
			if !errors.Is(err, transfererrors.ErrApprovalForbidden) {
				return nil, response.PaginationMeta{}, err
			}
			filter.EmployeeID = actor.EmployeeID
		}
	}

	items, total, err := s.repo.FindAll(ctx, actor.CompanyID, filter)
	if err != nil {
		s.logger.Error("list transfers failed", zap.String("company_id", actor.CompanyID), zap.Error(err))
		return nil, response.PaginationMeta{}, err
	}

	return mapToListResponse(items), response.NewPaginationMeta(total, page, perPage), nil
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id string, req DecisionRequest) (TransferResponse, error) {
	remarks := normalizeRemarks(req.Remarks)
	return s.transition(ctx, actor, id, transitionRule{
		action:    "approve",
		to:        domain.StatusApproved,
		authorize: s.authorizeDecision,
		change: func(now time.Time, actorID uuid.UUID) StatusChange {
			return StatusChange{ApproverID: &actorID, DecidedAt: &now, Remarks: remarks}
		},
	})
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id string, req DecisionRequest) (TransferResponse, error) {
	remarks := normalizeRemarks(req.Remarks)
	if remarks == nil {
		s.logger.Warn("reject transfer without remarks", zap.String("transfer_id", id))
		return TransferResponse{}, transfererrors.ErrRemarksRequired
	}

	return s.transition(ctx, actor, id, transitionRule{
		action:    "reject",
		to:        domain.StatusRejected,
		authorize: s.authorizeDecision,
		change: func(now time.Time, actorID uuid.UUID) StatusChange {
			return StatusChange{ApproverID: &actorID, DecidedAt: &now, Remarks: remarks}
		},
	})
}

// Complete moves the employee to the destination in the same transaction as
// the status write.
func (s *service) Complete(ctx context.Context, actor domain.Actor, id string) (TransferResponse, error) {
	return s.transition(ctx, actor, id, transitionRule{
		action:    "complete",
		to:        domain.StatusCompleted,
		authorize: s.authorizeDecision,
		guard: func(t *Transfer, now time.Time) error {
			if now.Before(t.EffectiveDate) {
				return transfererrors.ErrNotYetEffective
			}
			return nil
		},
		change: func(now time.Time, actorID uuid.UUID) StatusChange {
			return StatusChange{CompletedAt: &now}
		},
		apply: func(ctx context.Context, qtx Repository, t *Transfer) error {
			ok, err := qtx.ApplyPlacement(ctx, t.CompanyID.String(), t.EmployeeID.String(), Placement{
				BranchID:     t.ToBranchID,
				DepartmentID: t.ToDepartmentID,
			})
			if err != nil {
				return err
			}
			if !ok {
				return transfererrors.ErrEmployeeNotFound
			}
			return nil
		},
	})
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return transfererrors.ErrInvalidTransferID
	}

	t, err := s.find(ctx, s.repo, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && !actor.Is(t.EmployeeID.String()) {
		return transfererrors.ErrActorForbidden
	}
	if t.Status != domain.StatusPending {
		return transfererrors.ErrInvalidState
	}

	ok, err := s.repo.DeletePending(ctx, actor.CompanyID, id)
	if err != nil {
		s.logger.Error("delete transfer failed", zap.String("transfer_id", id), zap.Error(err))
		return err
	}
	if !ok {
		return transfererrors.ErrInvalidState
	}

	s.logger.Info("delete transfer success", zap.String("transfer_id", id))
	return nil
}

type transitionRule struct {
	action    string
	to        domain.Status
	authorize func(actor domain.Actor, t *Transfer) error
	guard     func(t *Transfer, now time.Time) error
	change    func(now time.Time, actorID uuid.UUID) StatusChange
	apply     func(ctx context.Context, qtx Repository, t *Transfer) error
}

// transition checks state before capability, then writes conditionally on
// the status that was read.
func (s *service) transition(ctx context.Context, actor domain.Actor, id string, rule transitionRule) (TransferResponse, error) {
	log := s.logger.With(
		zap.String("action", rule.action),
		zap.String("transfer_id", id),
		zap.String("actor_id", actor.EmployeeID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return TransferResponse{}, transfererrors.ErrInvalidTransferID
	}
	_, actorID, err := parseActor(actor)
	if err != nil {
		return TransferResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("transfer transition begin tx failed", zap.Error(err))
		return TransferResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	t, err := s.find(ctx, qtx, actor.CompanyID, id)
	if err != nil {
		return TransferResponse{}, err
	}

	if !CanTransition(t.Status, rule.to) {
		log.Warn("transfer transition not allowed", zap.String("status", t.Status.String()))
		return TransferResponse{}, transfererrors.ErrInvalidState
	}
	if err := rule.authorize(actor, t); err != nil {
		log.Warn("transfer transition forbidden", zap.Error(err))
		return TransferResponse{}, err
	}

	now := s.now()
	if rule.guard != nil {
		if err := rule.guard(t, now); err != nil {
			return TransferResponse{}, err
		}
	}

	change := rule.change(now, actorID)
	change.To = rule.to

	ok, err := qtx.TransitionStatus(ctx, actor.CompanyID, id, t.Status, change)
	if err != nil {
		log.Error("transfer transition persist failed", zap.Error(err))
		return TransferResponse{}, err
	}
	if !ok {
		log.Warn("transfer transition lost race", zap.String("read_status", t.Status.String()))
		return TransferResponse{}, transfererrors.ErrInvalidState
	}

	from := t.Status
	applyChange(t, change)

	if rule.apply != nil {
		if err := rule.apply(ctx, qtx, t); err != nil {
			log.Error("transfer transition side effect failed", zap.Error(err))
			return TransferResponse{}, err
		}
	}

	if err := s.enqueueStatusChanged(ctx, tx, actor, t, from); err != nil {
		return TransferResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("transfer transition commit failed", zap.Error(err))
		return TransferResponse{}, err
	}

	log.Info("transfer transition success",
		zap.String("from", from.String()),
		zap.String("to", t.Status.String()),
	)
	return mapToResponse(*t), nil
}

func applyChange(t *Transfer, change StatusChange) {
	t.Status = change.To
	if change.ApproverID != nil {
		t.ApproverID = change.ApproverID
	}
	if change.Remarks != nil {
		t.Remarks = change.Remarks
	}
	if change.DecidedAt != nil {
		t.DecidedAt = change.DecidedAt
	}
	if change.CompletedAt != nil {
		t.CompletedAt = change.CompletedAt
	}
}

func (s *service) authorizeDecision(actor domain.Actor, _ *Transfer) error {
	if actor.IsAdmin() {
		return nil
	}
	return s.requireApprover(actor)
}

func (s *service) requireApprover(actor domain.Actor) error {
	if s.authz == nil {
		return transfererrors.ErrApprovalForbidden
	}
	allowed, err := s.authz.Enforce(actor.EnforceRequest(resourceTransfer, actionApprove))
	if err != nil {
		s.logger.Error("transfer approval capability check failed", zap.Error(err))
		return err
	}
	if !allowed {
		return transfererrors.ErrApprovalForbidden
	}
	return nil
}

func (s *service) requireReference(ctx context.Context, repo Repository, companyID, table string, id uuid.UUID, notFound error) error {
	ok, err := repo.ReferenceExists(ctx, companyID, table, id.String())
	if err != nil {
		s.logger.Error("transfer reference check failed", zap.String("table", table), zap.Error(err))
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}

func (s *service) find(ctx context.Context, repo Repository, companyID, id string) (*Transfer, error) {
	t, err := repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transfererrors.ErrTransferNotFound
		}
		s.logger.Error("find transfer failed", zap.String("transfer_id", id), zap.Error(err))
		return nil, err
	}
	return t, nil
}

func (s *service) enqueueStatusChanged(ctx context.Context, tx *sql.Tx, actor domain.Actor, t *Transfer, from domain.Status) error {
	if s.outbox == nil {
		return nil
	}

	payload := events.StatusChangedEvent{
		EventType:     events.EventTransferStatusChanged,
		AggregateType: resourceTransfer,
		AggregateID:   t.ID.String(),
		CompanyID:     t.CompanyID.String(),
		EmployeeID:    t.EmployeeID.String(),
		FromStatus:    from.String(),
		ToStatus:      t.Status.String(),
		ActorID:       actor.EmployeeID,
		OccurredAt:    s.now().UTC(),
	}
	if t.Remarks != nil {
		payload.Remarks = *t.Remarks
	}

	event, err := kafka.NewOutboxEvent(ctx, resourceTransfer, t.ID.String(), events.EventTransferStatusChanged, events.TransferLifecycleTopic, payload)
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("transfer outbox enqueue failed", zap.String("transfer_id", t.ID.String()), zap.Error(err))
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
