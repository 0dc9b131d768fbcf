package listeners

import (
	"context"
	"fmt"

	"github.com/gobuffalo/events"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
	"github.com/silinternational/claimflow/log"
	"github.com/silinternational/claimflow/messages"
	"github.com/silinternational/claimflow/models"
)

const wrongStatusMsg = "%s has unexpected status %s"

func claimPendingMedical(e events.Event) {
	defer panicRecover(e.Kind)

	claim, err := findClaim(e.Payload, e.Kind)
	if err != nil {
		return
	}

	if claim.Status != api.ClaimStatusPendingMedical {
		panic(fmt.Sprintf(wrongStatusMsg, "claimPendingMedical", claim.Status))
	}

	sent := messages.ClaimPendingMedicalSend(claim, getNotifiersFromEventPayload(e.Payload))
	notificationsCreated(claim, sent)
}

func claimPendingCoordination(e events.Event) {
	defer panicRecover(e.Kind)

	claim, err := findClaim(e.Payload, e.Kind)
	if err != nil {
		return
	}

	if claim.Status != api.ClaimStatusPendingCoordination {
		panic(fmt.Sprintf(wrongStatusMsg, "claimPendingCoordination", claim.Status))
	}

	sent := messages.ClaimPendingCoordinationSend(claim, getNotifiersFromEventPayload(e.Payload))
	notificationsCreated(claim, sent)
}

func claimReturned(e events.Event) {
	defer panicRecover(e.Kind)

	claim, err := findClaim(e.Payload, e.Kind)
	if err != nil {
		return
	}

	if claim.Status != api.ClaimStatusReturnedForReview {
		panic(fmt.Sprintf(wrongStatusMsg, "claimReturned", claim.Status))
	}

	sent := messages.ClaimReturnedSend(claim, getReason(e.Payload), getNotifiersFromEventPayload(e.Payload))
	notificationsCreated(claim, sent)
}

func claimDecided(e events.Event) {
	defer panicRecover(e.Kind)

	claim, err := findClaim(e.Payload, e.Kind)
	if err != nil {
		return
	}

	if !models.IsTerminal(claim.Status) {
		panic(fmt.Sprintf(wrongStatusMsg, "claimDecided", claim.Status))
	}

	sent := messages.ClaimDecidedSend(claim, getReason(e.Payload), getNotifiersFromEventPayload(e.Payload))
	notificationsCreated(claim, sent)
}

// createDerivedClaim submits the healthcare claim that follows an approved emergency request
func createDerivedClaim(e events.Event) {
	defer panicRecover(e.Kind)

	emergency, err := findClaim(e.Payload, e.Kind)
	if err != nil {
		return
	}

	input, ok := e.Payload[domain.EventPayloadDerived].(api.ClaimCreateInput)
	if !ok {
		log.Errorf("no derived claim input in %s event for %s", e.Kind, emergency.ID)
		return
	}

	if service == nil {
		log.Errorf("cannot create claim derived from %s, listeners are not registered", emergency.ID)
		return
	}

	res, err := service.SubmitClaim(context.Background(), emergency.ProviderRole, input)
	if err != nil {
		log.Errorf("failed to create claim derived from %s, %s", emergency.ID, err)
		return
	}

	log.WithFields(map[string]any{
		"claim_id":     res.Claim.ID.String(),
		"emergency_id": emergency.ID.String(),
	}).Info("derived claim created")
}
