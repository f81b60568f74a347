package employee

import "hr-backoffice/internal/domain"

// Terminated is final; Delete is a transition to it.
var statusTransitions = domain.Transitions{
	domain.StatusActive:     {domain.StatusInactive, domain.StatusOnLeave, domain.StatusTerminated},
	domain.StatusInactive:   {domain.StatusActive, domain.StatusTerminated},
	domain.StatusOnLeave:    {domain.StatusActive, domain.StatusTerminated},
	domain.StatusTerminated: nil,
}

func CanTransition(from, to domain.Status) bool {
	return statusTransitions.Allows(from, to)
}
