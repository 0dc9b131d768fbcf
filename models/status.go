package models

import (
	"github.com/silinternational/claimflow/api"
)

// StatusInfo is the display metadata of a claim status
type StatusInfo struct {
	Label      string
	ShortLabel string
	Color      api.StatusColor
	Terminal   bool
}

var statusCatalog = map[api.ClaimStatus]StatusInfo{
	api.ClaimStatusPendingMedical: {
		Label:      "Pending medical review",
		ShortLabel: "Pending",
		Color:      api.StatusColorWarning,
	},
	api.ClaimStatusApprovedMedical: {
		Label:      "Approved by medical review",
		ShortLabel: "Medical approved",
		Color:      api.StatusColorInfo,
	},
	api.ClaimStatusPendingCoordination: {
		Label:      "Pending coordination review",
		ShortLabel: "Coordination",
		Color:      api.StatusColorWarning,
	},
	api.ClaimStatusApprovedFinal: {
		Label:      "Approved",
		ShortLabel: "Approved",
		Color:      api.StatusColorSuccess,
		Terminal:   true,
	},
	api.ClaimStatusRejectedMedical: {
		Label:      "Rejected by medical review",
		ShortLabel: "Rejected",
		Color:      api.StatusColorError,
		Terminal:   true,
	},
	api.ClaimStatusRejectedFinal: {
		Label:      "Rejected by coordination review",
		ShortLabel: "Rejected",
		Color:      api.StatusColorError,
		Terminal:   true,
	},
	api.ClaimStatusReturnedForReview: {
		Label:      "Returned for medical re-review",
		ShortLabel: "Returned",
		Color:      api.StatusColorInfo,
	},
	api.ClaimStatusApprovedByMedical: {
		Label:      "Emergency request approved",
		ShortLabel: "Approved",
		Color:      api.StatusColorSuccess,
		Terminal:   true,
	},
	api.ClaimStatusRejectedByMedical: {
		Label:      "Emergency request rejected",
		ShortLabel: "Rejected",
		Color:      api.StatusColorError,
		Terminal:   true,
	},
}

var kindStatuses = map[api.ClaimKind][]api.ClaimStatus{
	api.ClaimKindHealthcare: {
		api.ClaimStatusPendingMedical,
		api.ClaimStatusApprovedMedical,
		api.ClaimStatusPendingCoordination,
		api.ClaimStatusApprovedFinal,
		api.ClaimStatusRejectedMedical,
		api.ClaimStatusRejectedFinal,
		api.ClaimStatusReturnedForReview,
	},
	api.ClaimKindEmergency: {
		api.ClaimStatusPendingMedical,
		api.ClaimStatusApprovedByMedical,
		api.ClaimStatusRejectedByMedical,
	},
}

// StatusInfoFor returns the metadata of a status. The second value is false for an unknown status.
func StatusInfoFor(status api.ClaimStatus) (StatusInfo, bool) {
	info, ok := statusCatalog[status]
	return info, ok
}

// IsTerminal reports whether no further transition is possible from status. Unknown statuses are not terminal.
func IsTerminal(status api.ClaimStatus) bool {
	return statusCatalog[status].Terminal
}

// InitialStatus is the status a newly submitted record of the given kind starts in
func InitialStatus(kind api.ClaimKind) api.ClaimStatus {
	return api.ClaimStatusPendingMedical
}

// StatusesFor lists the statuses of the machine for a kind, in workflow order
func StatusesFor(kind api.ClaimKind) []api.ClaimStatus {
	statuses := kindStatuses[kind]
	out := make([]api.ClaimStatus, len(statuses))
	copy(out, statuses)
	return out
}

// IsStatusOfKind reports whether status belongs to the state machine of kind
func IsStatusOfKind(kind api.ClaimKind, status api.ClaimStatus) bool {
	for _, s := range kindStatuses[kind] {
		if s == status {
			return true
		}
	}
	return false
}
