package movement

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/messaging/kafka"
	movementerrors "hr-backoffice/internal/movement/errors"
	"hr-backoffice/internal/shared/apperror"
	"hr-backoffice/internal/shared/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	resourceMovement = "movement"
	actionApprove    = "approve"
)

// Authorizer answers capability checks; rbac.Service satisfies it.
type Authorizer interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateMovementRequest) (MovementResponse, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (MovementResponse, error)
	List(ctx context.Context, actor domain.Actor, q ListMovementsQuery) ([]MovementResponse, response.PaginationMeta, error)
	Approve(ctx context.Context, actor domain.Actor, id string, req DecisionRequest) (MovementResponse, error)
	Reject(ctx context.Context, actor domain.Actor, id string, req DecisionRequest) (MovementResponse, error)
	Cancel(ctx context.Context, actor domain.Actor, id string) (MovementResponse, error)
	Complete(ctx context.Context, actor domain.Actor, id string) (MovementResponse, error)
	UpdateRemarks(ctx context.Context, actor domain.Actor, id string, req UpdateRemarksRequest) (MovementResponse, error)
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
	l := zap.L().Named("movement.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("movement.service")
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

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateMovementRequest) (MovementResponse, error) {
	s.logger.Debug("create movement requested",
		zap.String("company_id", actor.CompanyID),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("employee_id", req.EmployeeID),
	)

	companyID, actorID, err := parseActor(actor)
	if err != nil {
		return MovementResponse{}, err
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return MovementResponse{}, movementerrors.ErrInvalidEmployeeID
	}

	nm, err := validateCreate(req)
	if err != nil {
		s.logger.Warn("create movement validation failed", zap.Error(err))
		return MovementResponse{}, err
	}

	if !actor.IsAdmin() && !actor.Is(req.EmployeeID) {
		s.logger.Warn("create movement for another employee denied",
			zap.String("actor_id", actor.EmployeeID),
			zap.String("employee_id", req.EmployeeID),
		)
		return MovementResponse{}, movementerrors.ErrActorForbidden
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create movement begin tx failed", zap.Error(err))
		return MovementResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	belongs, err := qtx.EmployeeBelongsToCompany(ctx, actor.CompanyID, req.EmployeeID)
	if err != nil {
		s.logger.Error("create movement employee company check failed", zap.Error(err))
		return MovementResponse{}, err
	}
	if !belongs {
		return MovementResponse{}, movementerrors.ErrEmployeeNotFound
	}

	m := &Movement{
		ID:           uuid.New(),
		CompanyID:    companyID,
		EmployeeID:   employeeID,
		MovementType: nm.movementType,
		FromDatetime: nm.from,
		ToDatetime:   nm.to,
		Purpose:      nm.purpose,
		Destination:  nm.destination,
		Remarks:      nm.remarks,
		Status:       domain.StatusPending,
		CreatedBy:    actorID,
	}

	if err := qtx.Create(ctx, m); err != nil {
		s.logger.Error("create movement persist failed", zap.Error(err))
		return MovementResponse{}, err
	}

	if err := s.enqueueStatusChanged(ctx, tx, actor, m, ""); err != nil {
		return MovementResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create movement commit failed", zap.Error(err))
		return MovementResponse{}, err
	}

	s.logger.Info("create movement success",
		zap.String("movement_id", m.ID.String()),
		zap.String("company_id", actor.CompanyID),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("duration_hours", m.DurationHours()),
	)
	return mapToResponse(*m), nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (MovementResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return MovementResponse{}, movementerrors.ErrInvalidMovementID
	}

	m, err := s.find(ctx, s.repo, actor.CompanyID, id)
	if err != nil {
		return MovementResponse{}, err
	}

	if !actor.IsAdmin() && !actor.Is(m.EmployeeID.String()) {
		if err := s.requireApprover(actor); err != nil {
			return MovementResponse{}, err
		}
	}

	return mapToResponse(*m), nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, q ListMovementsQuery) ([]MovementResponse, response.PaginationMeta, error) {
	page, perPage := response.NormalizePage(q.Page, q.PerPage)

	filter := ListFilter{
		EmployeeID: q.EmployeeID,
		Offset:     (page - 1) * perPage,
		Limit:      perPage,
	}
	if q.Status != "" && q.Status != domain.FilterAll {
		status := domain.Status(q.Status)
		if !status.In(domain.MovementStatuses) {
			return nil, response.PaginationMeta{}, apperror.InvalidField("Status")
		}
		filter.Status = status
	}

	// Employees without the approval capability only see their own movements.
	if !actor.IsAdmin() {
		if err := s.requireApprover(actor); err != nil {
			if !errors.Is(err, movementerrors.ErrApprovalForbidden) {
				return nil, response.PaginationMeta{}, err
			}
			filter.EmployeeID = actor.EmployeeID
		}
	}

	items, total, err := s.repo.FindAll(ctx, actor.CompanyID, filter)
	if err != nil {
		s.logger.Error("list movements failed", zap.String("company_id", actor.CompanyID), zap.Error(err))
		return nil, response.PaginationMeta{}, err
	}

	return mapToListResponse(items), response.NewPaginationMeta(total, page, perPage), nil
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id string, req DecisionRequest) (MovementResponse, error) {
	remarks := normalizeRemarks(req.Remarks)
	return s.transition(ctx, actor, id, transitionRule{
		action: "approve",
		to:     domain.StatusApproved,
		authorize: func(actor domain.Actor, m *Movement) error {
			return s.requireApprover(actor)
		},
		change: func(now time.Time, actorID uuid.UUID) StatusChange {
			return StatusChange{ApproverID: &actorID, DecidedAt: &now, Remarks: remarks}
		},
	})
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id string, req DecisionRequest) (MovementResponse, error) {
	remarks := normalizeRemarks(req.Remarks)
	if remarks == nil {
		s.logger.Warn("reject movement without remarks", zap.String("movement_id", id))
		return MovementResponse{}, movementerrors.ErrRemarksRequired
	}

	return s.transition(ctx, actor, id, transitionRule{
		action: "reject",
		to:     domain.StatusRejected,
		authorize: func(actor domain.Actor, m *Movement) error {
			return s.requireApprover(actor)
		},
		change: func(now time.Time, actorID uuid.UUID) StatusChange {
			return StatusChange{ApproverID: &actorID, DecidedAt: &now, Remarks: remarks}
		},
	})
}

func (s *service) Cancel(ctx context.Context, actor domain.Actor, id string) (MovementResponse, error) {
	return s.transition(ctx, actor, id, transitionRule{
		action: "cancel",
		to:     domain.StatusCancelled,
		authorize: func(actor domain.Actor, m *Movement) error {
			if actor.IsAdmin() || actor.Is(m.EmployeeID.String()) {
				return nil
			}
			return movementerrors.ErrActorForbidden
		},
		change: func(now time.Time, actorID uuid.UUID) StatusChange {
			return StatusChange{DecidedAt: &now}
		},
	})
}

func (s *service) Complete(ctx context.Context, actor domain.Actor, id string) (MovementResponse, error) {
	return s.transition(ctx, actor, id, transitionRule{
		action: "complete",
		to:     domain.StatusCompleted,
		authorize: func(actor domain.Actor, m *Movement) error {
			if actor.IsAdmin() || actor.Is(m.EmployeeID.String()) {
				return nil
			}
			if m.ApproverID != nil && actor.Is(m.ApproverID.String()) {
				return nil
			}
			return movementerrors.ErrActorForbidden
		},
		change: func(now time.Time, actorID uuid.UUID) StatusChange {
			return StatusChange{CompletedAt: &now}
		},
	})
}

// UpdateRemarks is the only change allowed on a terminal movement.
func (s *service) UpdateRemarks(ctx context.Context, actor domain.Actor, id string, req UpdateRemarksRequest) (MovementResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return MovementResponse{}, movementerrors.ErrInvalidMovementID
	}

	m, err := s.find(ctx, s.repo, actor.CompanyID, id)
	if err != nil {
		return MovementResponse{}, err
	}

	if !actor.IsAdmin() {
		if err := s.requireApprover(actor); err != nil {
			return MovementResponse{}, err
		}
	}

	// A rejected movement keeps its reason.
	remarks := normalizeRemarks(req.Remarks)
	if remarks == nil && m.Status == domain.StatusRejected {
		s.logger.Warn("clearing remarks of rejected movement refused", zap.String("movement_id", id))
		return MovementResponse{}, movementerrors.ErrRemarksRequired
	}

	ok, err := s.repo.UpdateRemarks(ctx, actor.CompanyID, id, remarks)
	if err != nil {
		s.logger.Error("update movement remarks failed", zap.String("movement_id", id), zap.Error(err))
		return MovementResponse{}, err
	}
	if !ok {
		if remarks == nil {
			// rejected between the read and the write
			return MovementResponse{}, movementerrors.ErrRemarksRequired
		}
		return MovementResponse{}, movementerrors.ErrMovementNotFound
	}

	m.Remarks = remarks
	s.logger.Info("update movement remarks success", zap.String("movement_id", id))
	return mapToResponse(*m), nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return movementerrors.ErrInvalidMovementID
	}

	m, err := s.find(ctx, s.repo, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && !actor.Is(m.EmployeeID.String()) {
		return movementerrors.ErrActorForbidden
	}
	if m.Status != domain.StatusPending {
		return movementerrors.ErrInvalidState
	}

	ok, err := s.repo.DeletePending(ctx, actor.CompanyID, id)
	if err != nil {
		s.logger.Error("delete movement failed", zap.String("movement_id", id), zap.Error(err))
		return err
	}
	if !ok {
		return movementerrors.ErrInvalidState
	}

	s.logger.Info("delete movement success", zap.String("movement_id", id))
	return nil
}

type transitionRule struct {
	action    string
	to        domain.Status
	authorize func(actor domain.Actor, m *Movement) error
	change    func(now time.Time, actorID uuid.UUID) StatusChange
}

// transition checks state before capability so a decided movement reports
// INVALID_STATE to every caller. The write itself is conditional on the
// status that was read; losing a race surfaces as INVALID_STATE.
func (s *service) transition(ctx context.Context, actor domain.Actor, id string, rule transitionRule) (MovementResponse, error) {
	log := s.logger.With(
		zap.String("action", rule.action),
		zap.String("movement_id", id),
		zap.String("actor_id", actor.EmployeeID),
	)
	log.Debug("movement transition requested")

	if _, err := uuid.Parse(id); err != nil {
		return MovementResponse{}, movementerrors.ErrInvalidMovementID
	}
	_, actorID, err := parseActor(actor)
	if err != nil {
		return MovementResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("movement transition begin tx failed", zap.Error(err))
		return MovementResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	m, err := s.find(ctx, qtx, actor.CompanyID, id)
	if err != nil {
		return MovementResponse{}, err
	}

	if !CanTransition(m.Status, rule.to) {
		log.Warn("movement transition not allowed", zap.String("status", m.Status.String()))
		return MovementResponse{}, movementerrors.ErrInvalidState
	}

	if err := rule.authorize(actor, m); err != nil {
		log.Warn("movement transition forbidden", zap.Error(err))
		return MovementResponse{}, err
	}

	change := rule.change(s.now(), actorID)
	change.To = rule.to

	ok, err := qtx.TransitionStatus(ctx, actor.CompanyID, id, m.Status, change)
	if err != nil {
		log.Error("movement transition persist failed", zap.Error(err))
		return MovementResponse{}, err
	}
	if !ok {
		if _, err := s.find(ctx, qtx, actor.CompanyID, id); err != nil {
			return MovementResponse{}, err
		}
		log.Warn("movement transition lost race", zap.String("read_status", m.Status.String()))
		return MovementResponse{}, movementerrors.ErrInvalidState
	}

	from := m.Status
	applyChange(m, change)

	if err := s.enqueueStatusChanged(ctx, tx, actor, m, from); err != nil {
		return MovementResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("movement transition commit failed", zap.Error(err))
		return MovementResponse{}, err
	}

	log.Info("movement transition success",
		zap.String("from", from.String()),
		zap.String("to", m.Status.String()),
	)
	return mapToResponse(*m), nil
}

func applyChange(m *Movement, change StatusChange) {
	m.Status = change.To
	if change.ApproverID != nil {
		m.ApproverID = change.ApproverID
	}
	if change.Remarks != nil {
		m.Remarks = change.Remarks
	}
	if change.DecidedAt != nil {
		m.DecidedAt = change.DecidedAt
	}
	if change.CompletedAt != nil {
		m.CompletedAt = change.CompletedAt
	}
}

func (s *service) find(ctx context.Context, repo Repository, companyID, id string) (*Movement, error) {
	m, err := repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, movementerrors.ErrMovementNotFound
		}
		s.logger.Error("find movement failed", zap.String("movement_id", id), zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (s *service) requireApprover(actor domain.Actor) error {
	allowed, err := s.authz.Enforce(actor.EnforceRequest(resourceMovement, actionApprove))
	if err != nil {
		s.logger.Error("movement approval capability check failed", zap.Error(err))
		return err
	}
	if !allowed {
		return movementerrors.ErrApprovalForbidden
	}
	return nil
}

func (s *service) enqueueStatusChanged(ctx context.Context, tx *sql.Tx, actor domain.Actor, m *Movement, from domain.Status) error {
	if s.outbox == nil {
		return nil
	}

	payload := events.StatusChangedEvent{
		EventType:     events.EventMovementStatusChanged,
		AggregateType: resourceMovement,
		AggregateID:   m.ID.String(),
		CompanyID:     m.CompanyID.String(),
		EmployeeID:    m.EmployeeID.String(),
		FromStatus:    from.String(),
		ToStatus:      m.Status.String(),
		ActorID:       actor.EmployeeID,
		OccurredAt:    s.now().UTC(),
	}
	if m.Remarks != nil {
		payload.Remarks = *m.Remarks
	}

	event, err := kafka.NewOutboxEvent(ctx, resourceMovement, m.ID.String(), events.EventMovementStatusChanged, events.MovementLifecycleTopic, payload)
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("movement outbox enqueue failed", zap.String("movement_id", m.ID.String()), zap.Error(err))
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
