package models

import (
	"fmt"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
)

type transition struct {
	to             api.ClaimStatus
	action         api.ClaimAction
	requiresReason bool
}

func healthcareStatusTransitions() map[api.ClaimStatus][]transition {
	return map[api.ClaimStatus][]transition{
		api.ClaimStatusPendingMedical: {
			{to: api.ClaimStatusApprovedMedical, action: api.ClaimActionApprove},
			{to: api.ClaimStatusRejectedMedical, action: api.ClaimActionReject, requiresReason: true},
		},
		api.ClaimStatusApprovedMedical: {
			{to: api.ClaimStatusPendingCoordination, action: api.ClaimActionForward},
		},
		api.ClaimStatusPendingCoordination: {
			{to: api.ClaimStatusApprovedFinal, action: api.ClaimActionApprove},
			{to: api.ClaimStatusRejectedFinal, action: api.ClaimActionReject, requiresReason: true},
			{to: api.ClaimStatusReturnedForReview, action: api.ClaimActionReturn, requiresReason: true},
		},
		api.ClaimStatusReturnedForReview: {
			{to: api.ClaimStatusPendingCoordination, action: api.ClaimActionReapprove},
		},
		api.ClaimStatusApprovedFinal:   {},
		api.ClaimStatusRejectedMedical: {},
		api.ClaimStatusRejectedFinal:   {},
	}
}

func emergencyStatusTransitions() map[api.ClaimStatus][]transition {
	return map[api.ClaimStatus][]transition{
		api.ClaimStatusPendingMedical: {
			{to: api.ClaimStatusApprovedByMedical, action: api.ClaimActionApprove},
			{to: api.ClaimStatusRejectedByMedical, action: api.ClaimActionReject, requiresReason: true},
		},
		api.ClaimStatusApprovedByMedical: {},
		api.ClaimStatusRejectedByMedical: {},
	}
}

var statusTransitions = map[api.ClaimKind]map[api.ClaimStatus][]transition{
	api.ClaimKindHealthcare: healthcareStatusTransitions(),
	api.ClaimKindEmergency:  emergencyStatusTransitions(),
}

func findTransition(kind api.ClaimKind, from, to api.ClaimStatus) (transition, bool) {
	if IsTerminal(from) {
		return transition{}, false
	}
	for _, t := range statusTransitions[kind][from] {
		if t.to == to {
			return t, true
		}
	}
	return transition{}, false
}

// IsValidTransition reports whether the state machine of kind declares the edge from -> to.
// Staying in the same status is not a transition.
func IsValidTransition(kind api.ClaimKind, from, to api.ClaimStatus) bool {
	_, ok := findTransition(kind, from, to)
	return ok
}

// RequiresReason reports whether the edge from -> to needs a non-blank reason
func RequiresReason(kind api.ClaimKind, from, to api.ClaimStatus) bool {
	t, ok := findTransition(kind, from, to)
	return ok && t.requiresReason
}

// ValidateTransition returns an ErrorInvalidTransition AppError if the edge is not declared, or an
// ErrorMissingReason AppError if the edge needs a reason and reason is blank.
func ValidateTransition(kind api.ClaimKind, from, to api.ClaimStatus, reason string) error {
	t, ok := findTransition(kind, from, to)
	if !ok {
		err := fmt.Errorf("invalid %s status transition from %s to %s", kind, from, to)
		return api.NewAppError(err, api.ErrorInvalidTransition, api.CategoryUser).
			WithExtra("from", from).
			WithExtra("to", to)
	}

	if t.requiresReason && domain.IsBlank(reason) {
		err := fmt.Errorf("a reason is required to move a %s from %s to %s", kind, from, to)
		return api.NewAppError(err, api.ErrorMissingReason, api.CategoryUser)
	}

	return nil
}

// TargetFor resolves the status an action leads to from the given status
func TargetFor(kind api.ClaimKind, action api.ClaimAction, from api.ClaimStatus) (api.ClaimStatus, bool) {
	if IsTerminal(from) {
		return "", false
	}
	for _, t := range statusTransitions[kind][from] {
		if t.action == action {
			return t.to, true
		}
	}
	return "", false
}

// AllowedActions lists the actions available from a status, in declaration order
func AllowedActions(kind api.ClaimKind, from api.ClaimStatus) []api.ClaimAction {
	if IsTerminal(from) {
		return nil
	}
	var actions []api.ClaimAction
	for _, t := range statusTransitions[kind][from] {
		actions = append(actions, t.action)
	}
	return actions
}
