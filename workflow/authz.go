package workflow

import (
	"fmt"

	"github.com/silinternational/claimflow/api"
)

// reviewerPermissions lists, per reviewer role, the actions allowed from each status
var reviewerPermissions = map[api.ActorRole]map[api.ClaimStatus][]api.ClaimAction{
	api.ActorRoleMedicalAdmin: {
		api.ClaimStatusPendingMedical:    {api.ClaimActionApprove, api.ClaimActionReject},
		api.ClaimStatusApprovedMedical:   {api.ClaimActionForward},
		api.ClaimStatusReturnedForReview: {api.ClaimActionReapprove},
	},
	api.ActorRoleCoordinationAdmin: {
		api.ClaimStatusApprovedMedical: {api.ClaimActionForward},
		api.ClaimStatusPendingCoordination: {
			api.ClaimActionApprove,
			api.ClaimActionReject,
			api.ClaimActionReturn,
		},
	},
}

// IsActorAllowedTo reports whether the actor may take the action on a record in the given status.
// Provider roles may only submit, and only as themselves.
func IsActorAllowedTo(actor api.ActorRole, action api.ClaimAction, from api.ClaimStatus) bool {
	for _, a := range reviewerPermissions[actor][from] {
		if a == action {
			return true
		}
	}
	return false
}

// isReviewer reports whether the role reviews records rather than submitting them
func isReviewer(actor api.ActorRole) bool {
	_, ok := reviewerPermissions[actor]
	return ok
}

func notAuthorized(actor api.ActorRole, action api.ClaimAction, status api.ClaimStatus) error {
	err := fmt.Errorf("%s may not %s a record in status %s", actor, action, status)
	return api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden).
		WithExtra("actor", actor).
		WithExtra("action", action)
}
