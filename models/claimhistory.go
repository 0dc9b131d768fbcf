package models

import (
	"time"

	"github.com/gobuffalo/nulls"
	"github.com/gobuffalo/pop/v6"
	"github.com/gobuffalo/validate/v3"
	"github.com/gofrs/uuid"

	"github.com/silinternational/claimflow/api"
)

type ClaimHistories []ClaimHistory

type ClaimHistory struct {
	ID        uuid.UUID       `db:"id"`
	ClaimID   uuid.UUID       `db:"claim_id" validate:"required"`
	Action    api.ClaimAction `db:"action" validate:"claimAction"`
	ActorRole api.ActorRole   `db:"actor_role" validate:"actorRole"`
	OldStatus api.ClaimStatus `db:"old_status"`
	NewStatus api.ClaimStatus `db:"new_status" validate:"claimStatus"`
	Reason    nulls.String    `db:"reason"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Validate gets run every time you call a "pop.Validate*" (pop.ValidateAndSave, pop.ValidateAndCreate, pop.ValidateAndUpdate) method.
func (ch *ClaimHistory) Validate(tx *pop.Connection) (*validate.Errors, error) {
	return validateModel(ch), nil
}

func (ch *ClaimHistory) Create(tx *pop.Connection) error {
	return create(tx, ch)
}

// LoadForClaim reads the history of a claim, oldest first
func (chs *ClaimHistories) LoadForClaim(tx *pop.Connection, claimID uuid.UUID) error {
	err := tx.Where("claim_id = ?", claimID).Order("created_at asc").All(chs)
	return appErrorFromDB(err, api.ErrorQueryFailure)
}

// Last returns the most recent entry, if any
func (chs ClaimHistories) Last() (ClaimHistory, bool) {
	if len(chs) == 0 {
		return ClaimHistory{}, false
	}
	return chs[len(chs)-1], true
}

func ConvertClaimHistory(h ClaimHistory) api.ClaimHistory {
	return api.ClaimHistory{
		ID:        h.ID,
		ClaimID:   h.ClaimID,
		Action:    h.Action,
		ActorRole: h.ActorRole,
		OldStatus: h.OldStatus,
		NewStatus: h.NewStatus,
		Reason:    h.Reason,
		CreatedAt: h.CreatedAt,
	}
}

func ConvertClaimHistories(hs ClaimHistories) api.ClaimHistories {
	if len(hs) == 0 {
		return nil
	}
	out := make(api.ClaimHistories, len(hs))
	for i, h := range hs {
		out[i] = ConvertClaimHistory(h)
	}
	return out
}
