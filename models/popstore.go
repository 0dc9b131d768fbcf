package models

import (
	"context"
	"time"

	"github.com/gobuffalo/nulls"
	"github.com/gobuffalo/pop/v6"
	"github.com/gobuffalo/validate/v3"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
)

// PopStore is a Repository backed by a pop connection
type PopStore struct {
	DB *pop.Connection
}

func NewPopStore(db *pop.Connection) *PopStore {
	return &PopStore{DB: db}
}

type claimRow struct {
	ID                   uuid.UUID        `db:"id"`
	Kind                 api.ClaimKind    `db:"kind"`
	Status               api.ClaimStatus  `db:"status"`
	ProviderRole         api.ProviderRole `db:"provider_role"`
	ClientID             uuid.UUID        `db:"client_id"`
	ClientName           string           `db:"client_name"`
	FamilyMemberID       nulls.UUID       `db:"family_member_id"`
	FamilyMemberRelation nulls.String     `db:"family_member_relation"`
	ProviderName         string           `db:"provider_name"`
	Amount               int              `db:"amount"`
	EnteredAmount        int              `db:"entered_amount"`
	ReferencePrice       nulls.Int        `db:"reference_price"`
	IsFollowUp           bool             `db:"is_follow_up"`
	Diagnosis            nulls.String     `db:"diagnosis"`
	TreatmentDetails     nulls.String     `db:"treatment_details"`
	Description          nulls.String     `db:"description"`
	ServiceDate          time.Time        `db:"service_date"`
	SubmittedAt          time.Time        `db:"submitted_at"`
	MedicalReviewedAt    nulls.Time       `db:"medical_reviewed_at"`
	ApprovedAt           nulls.Time       `db:"approved_at"`
	RejectedAt           nulls.Time       `db:"rejected_at"`
	RejectionReason      nulls.String     `db:"rejection_reason"`
	RolePayload          nulls.String     `db:"role_payload"`
	IsPartialFulfillment bool             `db:"is_partial_fulfillment"`
	OriginalItemCount    int              `db:"original_item_count"`
	FulfilledItemCount   int              `db:"fulfilled_item_count"`
	Version              int              `db:"version"`
	CreatedAt            time.Time        `db:"created_at"`
	UpdatedAt            time.Time        `db:"updated_at"`
}

func (claimRow) TableName() string {
	return "claims"
}

// Validate gets run every time you call a "pop.Validate*" (pop.ValidateAndSave, pop.ValidateAndCreate, pop.ValidateAndUpdate) method.
func (r *claimRow) Validate(tx *pop.Connection) (*validate.Errors, error) {
	c, err := r.toClaim()
	if err != nil {
		return nil, err
	}
	return validateModel(&c), nil
}

func newClaimRow(c Claim) (claimRow, error) {
	payload, err := MarshalRolePayload(c.Payload)
	if err != nil {
		return claimRow{}, err
	}

	r := claimRow{
		ID:                   c.ID,
		Kind:                 c.Kind,
		Status:               c.Status,
		ProviderRole:         c.ProviderRole,
		ClientID:             c.ClientID,
		ClientName:           c.ClientName,
		FamilyMemberID:       c.FamilyMemberID,
		FamilyMemberRelation: c.FamilyMemberRelation,
		ProviderName:         c.ProviderName,
		Amount:               c.Amount,
		EnteredAmount:        c.EnteredAmount,
		ReferencePrice:       c.ReferencePrice,
		IsFollowUp:           c.IsFollowUp,
		Diagnosis:            c.Diagnosis,
		TreatmentDetails:     c.TreatmentDetails,
		Description:          c.Description,
		ServiceDate:          c.ServiceDate,
		SubmittedAt:          c.SubmittedAt,
		MedicalReviewedAt:    c.MedicalReviewedAt,
		ApprovedAt:           c.ApprovedAt,
		RejectedAt:           c.RejectedAt,
		RejectionReason:      c.RejectionReason,
		IsPartialFulfillment: c.IsPartialFulfillment,
		OriginalItemCount:    c.OriginalItemCount,
		FulfilledItemCount:   c.FulfilledItemCount,
		Version:              c.Version,
	}
	if payload != nil {
		r.RolePayload = nulls.NewString(string(payload))
	}
	return r, nil
}

func (r claimRow) toClaim() (Claim, error) {
	var payload RolePayload
	if r.RolePayload.Valid {
		p, err := UnmarshalRolePayload([]byte(r.RolePayload.String))
		if err != nil {
			return Claim{}, err
		}
		payload = p
	}

	return Claim{
		ID:                   r.ID,
		Kind:                 r.Kind,
		Status:               r.Status,
		ProviderRole:         r.ProviderRole,
		ClientID:             r.ClientID,
		ClientName:           r.ClientName,
		FamilyMemberID:       r.FamilyMemberID,
		FamilyMemberRelation: r.FamilyMemberRelation,
		ProviderName:         r.ProviderName,
		Amount:               r.Amount,
		EnteredAmount:        r.EnteredAmount,
		ReferencePrice:       r.ReferencePrice,
		IsFollowUp:           r.IsFollowUp,
		Diagnosis:            r.Diagnosis,
		TreatmentDetails:     r.TreatmentDetails,
		Description:          r.Description,
		ServiceDate:          r.ServiceDate.UTC(),
		SubmittedAt:          r.SubmittedAt.UTC(),
		MedicalReviewedAt:    r.MedicalReviewedAt,
		ApprovedAt:           r.ApprovedAt,
		RejectedAt:           r.RejectedAt,
		RejectionReason:      r.RejectionReason,
		Payload:              payload,
		IsPartialFulfillment: r.IsPartialFulfillment,
		OriginalItemCount:    r.OriginalItemCount,
		FulfilledItemCount:   r.FulfilledItemCount,
		Version:              r.Version,
	}, nil
}

func (p *PopStore) Create(ctx context.Context, c *Claim) error {
	if c.ID == uuid.Nil {
		c.ID = domain.GetUUID()
	}
	c.Version = 1

	row, err := newClaimRow(*c)
	if err != nil {
		return api.NewAppError(err, api.ErrorCreateFailure, api.CategoryInternal)
	}

	return p.DB.WithContext(ctx).Transaction(func(tx *pop.Connection) error {
		if err := create(tx, &row); err != nil {
			return err
		}
		return createHistories(tx, c.History)
	})
}

func (p *PopStore) Find(ctx context.Context, id uuid.UUID) (Claim, error) {
	tx := p.DB.WithContext(ctx)

	var row claimRow
	if err := tx.Find(&row, id); err != nil {
		if !domain.IsOtherThanNoRows(err) {
			return Claim{}, notFound(id)
		}
		return Claim{}, appErrorFromDB(err, api.ErrorQueryFailure)
	}

	c, err := row.toClaim()
	if err != nil {
		return Claim{}, err
	}

	if err := c.History.LoadForClaim(tx, c.ID); err != nil {
		return Claim{}, err
	}
	return c, nil
}

// Update writes the mutable fields of a claim and appends history entries that are not stored yet
func (p *PopStore) Update(ctx context.Context, c *Claim) error {
	if vErrs := validateModel(c); vErrs.HasAny() {
		return api.NewAppError(errors.New(flattenPopErrors(vErrs)), api.ErrorValidation, api.CategoryUser)
	}

	row, err := newClaimRow(*c)
	if err != nil {
		return api.NewAppError(err, api.ErrorUpdateFailure, api.CategoryInternal)
	}

	err = p.DB.WithContext(ctx).Transaction(func(tx *pop.Connection) error {
		count, err := tx.RawQuery(`UPDATE claims SET
			status = ?, amount = ?, medical_reviewed_at = ?, approved_at = ?, rejected_at = ?,
			rejection_reason = ?, role_payload = ?, is_partial_fulfillment = ?, original_item_count = ?,
			fulfilled_item_count = ?, version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?`,
			row.Status, row.Amount, row.MedicalReviewedAt, row.ApprovedAt, row.RejectedAt,
			row.RejectionReason, row.RolePayload, row.IsPartialFulfillment, row.OriginalItemCount,
			row.FulfilledItemCount, time.Now().UTC(),
			row.ID, row.Version,
		).ExecWithCount()
		if err != nil {
			return appErrorFromDB(err, api.ErrorUpdateFailure)
		}

		if count == 0 {
			exists, err := tx.Where("id = ?", row.ID).Exists(&claimRow{})
			if err != nil {
				return appErrorFromDB(err, api.ErrorQueryFailure)
			}
			if !exists {
				return notFound(row.ID)
			}
			return versionConflict(row.ID, row.Version)
		}

		var stored ClaimHistories
		if err := stored.LoadForClaim(tx, row.ID); err != nil {
			return err
		}
		known := map[uuid.UUID]bool{}
		for _, h := range stored {
			known[h.ID] = true
		}
		var added ClaimHistories
		for _, h := range c.History {
			if !known[h.ID] {
				added = append(added, h)
			}
		}
		return createHistories(tx, added)
	})
	if err != nil {
		return err
	}

	c.Version++
	return nil
}

// All returns every claim, oldest submission first
func (p *PopStore) All(ctx context.Context) (Claims, error) {
	tx := p.DB.WithContext(ctx)

	var rows []claimRow
	if err := tx.Order("submitted_at asc").All(&rows); err != nil {
		return nil, appErrorFromDB(err, api.ErrorQueryFailure)
	}

	var histories ClaimHistories
	if err := tx.Order("created_at asc").All(&histories); err != nil {
		return nil, appErrorFromDB(err, api.ErrorQueryFailure)
	}
	byClaim := map[uuid.UUID]ClaimHistories{}
	for _, h := range histories {
		byClaim[h.ClaimID] = append(byClaim[h.ClaimID], h)
	}

	claims := make(Claims, 0, len(rows))
	for _, r := range rows {
		c, err := r.toClaim()
		if err != nil {
			return nil, errors.Wrapf(err, "error reading claim %s", r.ID)
		}
		c.History = byClaim[c.ID]
		claims = append(claims, c)
	}
	return claims, nil
}

func createHistories(tx *pop.Connection, hs ClaimHistories) error {
	for i := range hs {
		if err := hs[i].Create(tx); err != nil {
			return err
		}
	}
	return nil
}
