// Package messages builds the notifications sent for claim workflow events
package messages

import (
	"fmt"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
	"github.com/silinternational/claimflow/log"
	"github.com/silinternational/claimflow/models"
	"github.com/silinternational/claimflow/notifications"
)

// Email templates
const (
	MessageTemplateClaimPendingMedical      = "claim_pending_medical"
	MessageTemplateClaimPendingCoordination = "claim_pending_coordination"
	MessageTemplateClaimReturned            = "claim_returned"
	MessageTemplateClaimDecided             = "claim_decided"
)

var kindLabels = map[api.ClaimKind]string{
	api.ClaimKindHealthcare: "healthcare claim",
	api.ClaimKindEmergency:  "emergency request",
}

// newClaimMessage returns a message with the claim's data loaded
func newClaimMessage(claim models.Claim) notifications.Message {
	msg := notifications.NewEmailMessage()
	msg.Data["claimURL"] = fmt.Sprintf("%s/claims/%s", domain.Env.UIURL, claim.ID)
	msg.Data["clientName"] = claim.ClientName
	msg.Data["providerName"] = claim.ProviderName
	msg.Data["kindLabel"] = kindLabels[claim.Kind]
	msg.Data["amount"] = api.Currency(claim.Amount).String()
	msg.Data["serviceDate"] = claim.ServiceDate.Format(domain.LocalizedDate)

	if info, ok := models.StatusInfoFor(claim.Status); ok {
		msg.Data["statusLabel"] = info.Label
	}
	if claim.RejectionReason.Valid {
		msg.Data["reason"] = claim.RejectionReason.String
	}
	return msg
}

// send delivers msg and reports whether it went out
func send(msg notifications.Message, notifiers []notifications.Notifier) bool {
	if err := notifications.Send(msg, notifiers...); err != nil {
		log.Errorf("error sending %s notification, %s", msg.Template, err)
		return false
	}
	return true
}
