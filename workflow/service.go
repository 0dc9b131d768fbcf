// Package workflow applies review actions to claims and emergency requests. It checks the
// transition, the actor's role and the reason, mutates the record, stores it and emits events.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gobuffalo/events"
	"github.com/gobuffalo/nulls"
	"github.com/gofrs/uuid"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
	"github.com/silinternational/claimflow/log"
	"github.com/silinternational/claimflow/models"
)

// Emitter publishes a domain event
type Emitter func(events.Event) error

// Result is the record after an operation, plus the events it produced
type Result struct {
	Claim  models.Claim
	Events []events.Event
}

type Service struct {
	repo        models.Repository
	emit        Emitter
	now         func() time.Time
	autoForward bool
	inFlight    *inFlight
}

type Option func(*Service)

// WithAutoForward controls whether a medical approval of a healthcare claim also forwards it to coordination
func WithAutoForward(on bool) Option {
	return func(s *Service) {
		s.autoForward = on
	}
}

// WithEmitter replaces events.Emit. A nil emitter disables emission.
func WithEmitter(e Emitter) Option {
	return func(s *Service) {
		s.emit = e
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo models.Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		emit:        events.Emit,
		now:         time.Now,
		autoForward: domain.Env.AutoForwardToCoordination,
		inFlight:    newInFlight(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SubmitClaim creates a new record from a provider's submission
func (s *Service) SubmitClaim(ctx context.Context, role api.ProviderRole, input api.ClaimCreateInput) (Result, error) {
	if isReviewer(api.ActorRole(role)) {
		return Result{}, notAuthorized(api.ActorRole(role), api.ClaimActionSubmit, "")
	}

	now := s.now()
	c, err := models.NewClaimFromInput(role, input, now)
	if err != nil {
		return Result{}, err
	}
	c.AddHistory(api.ClaimActionSubmit, api.ActorRole(role), "", c.Status, "", now)

	if err := s.repo.Create(ctx, &c); err != nil {
		return Result{}, err
	}

	kind := domain.EventApiClaimSubmitted
	if c.Kind == api.ClaimKindEmergency {
		kind = domain.EventApiEmergencySubmitted
	}
	evts := []events.Event{newEvent(kind, c, api.ActorRole(role), "")}

	log.WithFields(map[string]any{
		"claim_id": c.ID.String(),
		"kind":     c.Kind,
		"actor":    role,
		"amount":   c.Amount,
	}).Info("claim submitted")

	s.publish(evts)
	return Result{Claim: c.Copy(), Events: evts}, nil
}

func (s *Service) Approve(ctx context.Context, id uuid.UUID, actor api.ActorRole) (Result, error) {
	return s.transition(ctx, id, actor, api.ClaimActionApprove, "")
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID, actor api.ActorRole, reason string) (Result, error) {
	return s.transition(ctx, id, actor, api.ClaimActionReject, reason)
}

func (s *Service) ReturnForReview(ctx context.Context, id uuid.UUID, actor api.ActorRole, reason string) (Result, error) {
	return s.transition(ctx, id, actor, api.ClaimActionReturn, reason)
}

// ReApprove sends a returned claim back to the coordination queue. The return reason is kept.
func (s *Service) ReApprove(ctx context.Context, id uuid.UUID, actor api.ActorRole) (Result, error) {
	return s.transition(ctx, id, actor, api.ClaimActionReapprove, "")
}

func (s *Service) ForwardToCoordination(ctx context.Context, id uuid.UUID, actor api.ActorRole) (Result, error) {
	return s.transition(ctx, id, actor, api.ClaimActionForward, "")
}

// Get returns a copy of a single record
func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.Claim, error) {
	return s.repo.Find(ctx, id)
}

// Query loads all records and runs the query engine over them
func (s *Service) Query(ctx context.Context, q api.ClaimQuery) (models.QueryResult, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return models.QueryResult{}, err
	}
	return models.QueryClaims(all, q), nil
}

// CountByStatus returns the number of stored records in each status
func (s *Service) CountByStatus(ctx context.Context) (map[api.ClaimStatus]int, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return models.CountByStatus(all), nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, actor api.ActorRole, action api.ClaimAction,
	reason string,
) (Result, error) {
	c, err := s.repo.Find(ctx, id)
	if err != nil {
		return Result{}, err
	}

	from := c.Status
	to, ok := models.TargetFor(c.Kind, action, from)
	if !ok {
		return Result{}, invalidTransition(c, action)
	}

	if !IsActorAllowedTo(actor, action, from) {
		// a repeat of an action the actor already took is reported as an illegal edge
		if hasTaken(c, actor, action) {
			return Result{}, invalidTransition(c, action)
		}
		return Result{}, notAuthorized(actor, action, from)
	}

	if err := models.ValidateTransition(c.Kind, from, to, reason); err != nil {
		return Result{}, err
	}
	reason = strings.TrimSpace(reason)

	if !s.inFlight.acquire(id) {
		err := fmt.Errorf("a transition of %s is already in progress", id)
		return Result{}, api.NewAppError(err, api.ErrorTransitionInProgress, api.CategoryConflict)
	}
	defer s.inFlight.release(id)

	now := s.now()
	evts := applyTransition(&c, action, actor, to, reason, now)

	if s.autoForward && c.Kind == api.ClaimKindHealthcare && c.Status == api.ClaimStatusApprovedMedical {
		evts = append(evts, applyTransition(&c, api.ClaimActionForward, actor, api.ClaimStatusPendingCoordination, "", now)...)
	}

	if err := s.repo.Update(ctx, &c); err != nil {
		return Result{}, err
	}

	log.WithFields(map[string]any{
		"claim_id": c.ID.String(),
		"from":     from,
		"to":       c.Status,
		"actor":    actor,
	}).Info("claim transition")

	s.publish(evts)
	return Result{Claim: c.Copy(), Events: evts}, nil
}

func invalidTransition(c models.Claim, action api.ClaimAction) error {
	err := fmt.Errorf("cannot %s a %s record in status %s", action, c.Kind, c.Status)
	return api.NewAppError(err, api.ErrorInvalidTransition, api.CategoryUser).
		WithExtra("status", c.Status).
		WithExtra("action", action)
}

// hasTaken reports whether the history shows the actor already took the action on c
func hasTaken(c models.Claim, actor api.ActorRole, action api.ClaimAction) bool {
	for _, h := range c.History {
		if h.ActorRole == actor && h.Action == action {
			return true
		}
	}
	return false
}

// applyTransition moves c to status `to`, stamps the fields that belong to the new status, records
// the change in the history and returns the resulting events
func applyTransition(c *models.Claim, action api.ClaimAction, actor api.ActorRole, to api.ClaimStatus,
	reason string, now time.Time,
) []events.Event {
	from := c.Status
	c.Status = to

	var kind string
	switch to {
	case api.ClaimStatusApprovedMedical:
		c.MarkMedicalReviewed(now)
		kind = domain.EventApiClaimMedicalApproved
	case api.ClaimStatusRejectedMedical:
		c.MarkMedicalReviewed(now)
		c.MarkRejected(reason, now)
		kind = domain.EventApiClaimMedicalRejected
	case api.ClaimStatusPendingCoordination:
		kind = domain.EventApiClaimForwarded
		if from == api.ClaimStatusReturnedForReview {
			kind = domain.EventApiClaimReapproved
		}
	case api.ClaimStatusApprovedFinal:
		c.FreezeAmount(now)
		kind = domain.EventApiClaimApproved
	case api.ClaimStatusRejectedFinal:
		c.MarkRejected(reason, now)
		kind = domain.EventApiClaimRejected
	case api.ClaimStatusReturnedForReview:
		c.SetReason(reason)
		kind = domain.EventApiClaimReturned
	case api.ClaimStatusApprovedByMedical:
		c.MarkMedicalReviewed(now)
		c.FreezeAmount(now)
		kind = domain.EventApiEmergencyApproved
	case api.ClaimStatusRejectedByMedical:
		c.MarkMedicalReviewed(now)
		c.MarkRejected(reason, now)
		kind = domain.EventApiEmergencyRejected
	}

	c.AddHistory(action, actor, from, to, reason, now)

	evts := []events.Event{newEvent(kind, *c, actor, reason)}
	if to == api.ClaimStatusApprovedByMedical {
		derived := newEvent(domain.EventApiClaimDerived, *c, actor, "")
		derived.Payload[domain.EventPayloadDerived] = DerivedClaimInput(*c)
		evts = append(evts, derived)
	}
	return evts
}

// DerivedClaimInput is the submission of the healthcare claim that follows an approved emergency request
func DerivedClaimInput(c models.Claim) api.ClaimCreateInput {
	input := api.ClaimCreateInput{
		Kind:                 api.ClaimKindHealthcare,
		ClientID:             c.ClientID,
		ClientName:           c.ClientName,
		FamilyMemberID:       c.FamilyMemberID,
		FamilyMemberRelation: c.FamilyMemberRelation,
		ProviderName:         c.ProviderName,
		Amount:               c.EnteredAmount,
		ReferencePrice:       c.ReferencePrice,
		IsFollowUp:           c.IsFollowUp,
		Diagnosis:            c.Diagnosis,
		TreatmentDetails:     c.TreatmentDetails,
		ServiceDate:          c.ServiceDate,
	}
	input.Description = nulls.NewString(fmt.Sprintf("Derived from emergency request %s", c.ID))

	if c.Payload != nil {
		if b, err := models.MarshalRolePayload(c.Payload); err == nil {
			input.RoleSpecificData = b
		}
	}
	return input
}

func newEvent(kind string, c models.Claim, actor api.ActorRole, reason string) events.Event {
	return events.Event{
		Kind:    kind,
		Message: fmt.Sprintf("claim %s is now %s", c.ID, c.Status),
		Payload: events.Payload{
			domain.EventPayloadID:     c.ID,
			domain.EventPayloadClaim:  c.Copy(),
			domain.EventPayloadActor:  actor,
			domain.EventPayloadReason: reason,
		},
	}
}

func (s *Service) publish(evts []events.Event) {
	if s.emit == nil {
		return
	}
	for _, e := range evts {
		if err := s.emit(e); err != nil {
			log.Errorf("error emitting event %s ... %v", e.Kind, err)
		}
	}
}
