package transfer

import (
	"strings"
	"time"

	"hr-backoffice/internal/domain"
	transfererrors "hr-backoffice/internal/transfer/errors"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// rejected and completed are terminal.
var transitions = domain.Transitions{
	domain.StatusPending:  {domain.StatusApproved, domain.StatusRejected},
	domain.StatusApproved: {domain.StatusCompleted},
}

func CanTransition(from, to domain.Status) bool {
	return transitions.Allows(from, to)
}

func IsTerminal(s domain.Status) bool {
	return transitions.Terminal(s)
}

type newTransfer struct {
	toBranchID     *uuid.UUID
	toDepartmentID *uuid.UUID
	effectiveDate  time.Time
	reason         string
}

func validateCreate(req CreateTransferRequest) (newTransfer, error) {
	toBranch, err := parseOptionalUUID(req.ToBranchID)
	if err != nil {
		return newTransfer{}, transfererrors.ErrInvalidBranchID
	}
	toDepartment, err := parseOptionalUUID(req.ToDepartmentID)
	if err != nil {
		return newTransfer{}, transfererrors.ErrInvalidDepartmentID
	}
	if toBranch == nil && toDepartment == nil {
		return newTransfer{}, transfererrors.ErrDestinationRequired
	}

	effective, err := time.Parse(dateLayout, strings.TrimSpace(req.EffectiveDate))
	if err != nil {
		return newTransfer{}, transfererrors.ErrInvalidEffectiveDate
	}

	return newTransfer{
		toBranchID:     toBranch,
		toDepartmentID: toDepartment,
		effectiveDate:  effective,
		reason:         strings.TrimSpace(req.Reason),
	}, nil
}

// destination fills the fields the request left empty from the origin.
func (n newTransfer) destination(origin Placement) Placement {
	dst := origin
	if n.toBranchID != nil {
		dst.BranchID = n.toBranchID
	}
	if n.toDepartmentID != nil {
		dst.DepartmentID = n.toDepartmentID
	}
	return dst
}

func parseOptionalUUID(v *string) (*uuid.UUID, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*v))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func normalizeRemarks(r *string) *string {
	if r == nil {
		return nil
	}
	v := strings.TrimSpace(*r)
	if v == "" {
		return nil
	}
	return &v
}
