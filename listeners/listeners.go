package listeners

import (
	"context"
	"fmt"

	"github.com/gobuffalo/events"
	"github.com/gobuffalo/nulls"
	"github.com/gofrs/uuid"

	"github.com/silinternational/claimflow/domain"
	"github.com/silinternational/claimflow/log"
	"github.com/silinternational/claimflow/models"
	"github.com/silinternational/claimflow/notifications"
	"github.com/silinternational/claimflow/workflow"
)

// EventPayloadNotifier is the payload key of an optional notifications.Notifier that overrides the default
const EventPayloadNotifier = "notifier"

type apiListener struct {
	name     string
	listener func(events.Event)
}

// apiListeners groups listeners by event kind. RegisterListeners makes sure each one only sees its own kind.
var apiListeners = map[string][]apiListener{
	domain.EventApiClaimSubmitted: {
		{
			name:     "claim-submitted",
			listener: claimPendingMedical,
		},
	},
	domain.EventApiEmergencySubmitted: {
		{
			name:     "emergency-submitted",
			listener: claimPendingMedical,
		},
	},
	domain.EventApiClaimForwarded: {
		{
			name:     "claim-forwarded",
			listener: claimPendingCoordination,
		},
	},
	domain.EventApiClaimReapproved: {
		{
			name:     "claim-reapproved",
			listener: claimPendingCoordination,
		},
	},
	domain.EventApiClaimReturned: {
		{
			name:     "claim-returned",
			listener: claimReturned,
		},
	},
	domain.EventApiClaimApproved: {
		{
			name:     "claim-approved",
			listener: claimDecided,
		},
	},
	domain.EventApiClaimRejected: {
		{
			name:     "claim-rejected",
			listener: claimDecided,
		},
	},
	domain.EventApiClaimMedicalRejected: {
		{
			name:     "claim-medical-rejected",
			listener: claimDecided,
		},
	},
	domain.EventApiEmergencyApproved: {
		{
			name:     "emergency-approved",
			listener: claimDecided,
		},
	},
	domain.EventApiEmergencyRejected: {
		{
			name:     "emergency-rejected",
			listener: claimDecided,
		},
	},
	domain.EventApiClaimDerived: {
		{
			name:     "emergency-approved-create-claim",
			listener: createDerivedClaim,
		},
	},
}

// service is used by listeners that read or create records
var service *workflow.Service

// RegisterListeners registers all the listeners to be used by the app
func RegisterListeners(svc *workflow.Service) {
	service = svc

	for kind, listeners := range apiListeners {
		for _, l := range listeners {
			_, err := events.NamedListen(l.name, forKind(kind, l.listener))
			if err != nil {
				log.Errorf("Failed registering listener: %s, err: %s", l.name, err)
			}
		}
	}
}

func forKind(kind string, listener func(events.Event)) func(events.Event) {
	return func(e events.Event) {
		if e.Kind != kind {
			return
		}
		listener(e)
	}
}

func getID(p events.Payload) (uuid.UUID, error) {
	i, ok := p[domain.EventPayloadID]
	if !ok {
		return uuid.UUID{}, fmt.Errorf("id not in event payload")
	}

	switch id := i.(type) {
	case string:
		return uuid.FromStringOrNil(id), nil
	case uuid.UUID:
		return id, nil
	case nulls.UUID:
		return id.UUID, nil
	default:
		return uuid.UUID{}, fmt.Errorf("id not a valid type: %T", id)
	}
}

// findClaim returns the claim carried by the event, or loads it by id through the service
func findClaim(p events.Payload, listenerName string) (models.Claim, error) {
	if c, ok := p[domain.EventPayloadClaim].(models.Claim); ok {
		return c, nil
	}

	id, err := getID(p)
	if err != nil {
		err = fmt.Errorf("failed to get claim ID from event payload in %s: %w", listenerName, err)
		log.Error(err)
		return models.Claim{}, err
	}

	if service == nil {
		err := fmt.Errorf("failed to find claim in %s, listeners are not registered", listenerName)
		log.Error(err)
		return models.Claim{}, err
	}

	c, err := service.Get(context.Background(), id)
	if err != nil {
		log.Errorf("failed to find claim in %s, %s", listenerName, err)
		return models.Claim{}, err
	}
	return c, nil
}

func getReason(p events.Payload) string {
	reason, _ := p[domain.EventPayloadReason].(string)
	return reason
}

func getNotifiersFromEventPayload(p events.Payload) []notifications.Notifier {
	n, ok := p[EventPayloadNotifier].(notifications.Notifier)
	if !ok {
		return nil
	}
	return []notifications.Notifier{n}
}

// notificationsCreated emits one event per sent message
func notificationsCreated(claim models.Claim, msgs []notifications.Message) {
	for _, msg := range msgs {
		e := events.Event{
			Kind:    domain.EventApiNotificationCreated,
			Message: msg.Subject,
			Payload: events.Payload{
				domain.EventPayloadID: claim.ID,
				"template":            msg.Template,
				"to":                  msg.ToEmail,
			},
		}
		if err := events.Emit(e); err != nil {
			log.Errorf("error emitting event %s ... %v", e.Kind, err)
		}
	}
}

func panicRecover(name string) {
	if err := recover(); err != nil {
		log.Errorf("panic occurred in %s: %s", name, err)
	}
}
