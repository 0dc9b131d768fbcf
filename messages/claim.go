package messages

import (
	"fmt"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/models"
	"github.com/silinternational/claimflow/notifications"
)

// ClaimPendingMedicalSend notifies the medical reviewers that a claim or emergency request was submitted.
// It returns the messages that were sent.
func ClaimPendingMedicalSend(claim models.Claim, notifiers []notifications.Notifier) []notifications.Message {
	msg := newClaimMessage(claim).AddToMedicalReviewers()
	msg.Template = MessageTemplateClaimPendingMedical
	msg.Subject = fmt.Sprintf("New %s for %s", kindLabels[claim.Kind], claim.ClientName)
	if claim.Kind == api.ClaimKindEmergency {
		msg.Subject = "URGENT: " + msg.Subject
	}

	if !send(msg, notifiers) {
		return nil
	}
	return []notifications.Message{msg}
}

// ClaimPendingCoordinationSend notifies coordination that a claim entered its queue
func ClaimPendingCoordinationSend(claim models.Claim, notifiers []notifications.Notifier) []notifications.Message {
	msg := newClaimMessage(claim).AddToCoordinationReviewers()
	msg.Template = MessageTemplateClaimPendingCoordination
	msg.Subject = fmt.Sprintf("Claim for %s is ready for coordination review", claim.ClientName)

	if !send(msg, notifiers) {
		return nil
	}
	return []notifications.Message{msg}
}

// ClaimReturnedSend notifies the medical reviewers that coordination returned a claim
func ClaimReturnedSend(claim models.Claim, reason string, notifiers []notifications.Notifier) []notifications.Message {
	msg := newClaimMessage(claim).AddToMedicalReviewers()
	msg.Template = MessageTemplateClaimReturned
	msg.Subject = fmt.Sprintf("Claim for %s was returned for review", claim.ClientName)
	if reason != "" {
		msg.Data["reason"] = reason
	}

	if !send(msg, notifiers) {
		return nil
	}
	return []notifications.Message{msg}
}

// ClaimDecidedSend notifies the provider of a final outcome
func ClaimDecidedSend(claim models.Claim, reason string, notifiers []notifications.Notifier) []notifications.Message {
	msg := newClaimMessage(claim).AddToProvider(claim.ProviderName)
	msg.Template = MessageTemplateClaimDecided
	msg.Subject = fmt.Sprintf("Your %s for %s is %s", kindLabels[claim.Kind], claim.ClientName,
		msg.Data["statusLabel"])
	if reason != "" {
		msg.Data["reason"] = reason
	}

	if !send(msg, notifiers) {
		return nil
	}
	return []notifications.Message{msg}
}
