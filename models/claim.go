package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gobuffalo/nulls"
	"github.com/gofrs/uuid"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
)

var ValidClaimKinds = map[api.ClaimKind]struct{}{
	api.ClaimKindHealthcare: {},
	api.ClaimKindEmergency:  {},
}

var ValidClaimStatus = map[api.ClaimStatus]struct{}{
	api.ClaimStatusPendingMedical:      {},
	api.ClaimStatusApprovedMedical:     {},
	api.ClaimStatusPendingCoordination: {},
	api.ClaimStatusApprovedFinal:       {},
	api.ClaimStatusRejectedMedical:     {},
	api.ClaimStatusRejectedFinal:       {},
	api.ClaimStatusReturnedForReview:   {},
	api.ClaimStatusApprovedByMedical:   {},
	api.ClaimStatusRejectedByMedical:   {},
}

var ValidProviderRoles = map[api.ProviderRole]struct{}{
	api.ProviderRoleDoctor:      {},
	api.ProviderRolePharmacist:  {},
	api.ProviderRoleLabTech:     {},
	api.ProviderRoleRadiologist: {},
}

var ValidActorRoles = map[api.ActorRole]struct{}{
	api.ActorRoleDoctor:            {},
	api.ActorRolePharmacist:        {},
	api.ActorRoleLabTech:           {},
	api.ActorRoleRadiologist:       {},
	api.ActorRoleMedicalAdmin:      {},
	api.ActorRoleCoordinationAdmin: {},
}

type Claims []Claim

// Claim is a healthcare claim or an emergency request. Status is only changed through the workflow.
type Claim struct {
	ID                   uuid.UUID        `validate:"required"`
	Kind                 api.ClaimKind    `validate:"claimKind"`
	Status               api.ClaimStatus  `validate:"claimStatus"`
	ProviderRole         api.ProviderRole `validate:"providerRole"`
	ClientID             uuid.UUID        `validate:"required"`
	ClientName           string
	FamilyMemberID       nulls.UUID
	FamilyMemberRelation nulls.String
	ProviderName         string
	Amount               int `validate:"min=0"`
	EnteredAmount        int `validate:"min=0"`
	ReferencePrice       nulls.Int
	IsFollowUp           bool
	Diagnosis            nulls.String
	TreatmentDetails     nulls.String
	Description          nulls.String
	ServiceDate          time.Time `validate:"required"`
	SubmittedAt          time.Time `validate:"required"`
	MedicalReviewedAt    nulls.Time
	ApprovedAt           nulls.Time
	RejectedAt           nulls.Time
	RejectionReason      nulls.String
	Payload              RolePayload `validate:"-"`
	IsPartialFulfillment bool
	OriginalItemCount    int `validate:"min=0"`
	FulfilledItemCount   int `validate:"min=0"`
	Version              int
	History              ClaimHistories `validate:"-"`
}

// NewClaimFromInput builds a new record from a provider's submission. The amount is resolved from the
// entered and reference prices, and partial fulfillment is applied to pharmacist claims.
func NewClaimFromInput(role api.ProviderRole, input api.ClaimCreateInput, now time.Time) (Claim, error) {
	if _, ok := ValidProviderRoles[role]; !ok {
		err := fmt.Errorf("invalid provider role %q", role)
		return Claim{}, api.NewAppError(err, api.ErrorValidation, api.CategoryUser)
	}

	if err := mValidate.Struct(input); err != nil {
		return Claim{}, api.NewAppError(err, api.ErrorValidation, api.CategoryUser)
	}

	payload, err := rolePayloadFromInput(role, input)
	if err != nil {
		return Claim{}, err
	}

	c := Claim{
		ID:                   domain.GetUUID(),
		Kind:                 input.Kind,
		Status:               InitialStatus(input.Kind),
		ProviderRole:         role,
		ClientID:             input.ClientID,
		ClientName:           input.ClientName,
		FamilyMemberID:       input.FamilyMemberID,
		FamilyMemberRelation: input.FamilyMemberRelation,
		ProviderName:         input.ProviderName,
		EnteredAmount:        input.Amount,
		ReferencePrice:       input.ReferencePrice,
		IsFollowUp:           input.IsFollowUp,
		Diagnosis:            input.Diagnosis,
		TreatmentDetails:     input.TreatmentDetails,
		Description:          input.Description,
		ServiceDate:          input.ServiceDate.UTC(),
		SubmittedAt:          now.UTC(),
		Payload:              payload,
	}

	if err := c.applyPricing(input.DispensedItemIDs); err != nil {
		return Claim{}, err
	}

	if vErrs := validateModel(&c); vErrs.HasAny() {
		return Claim{}, api.NewAppError(errors.New(flattenPopErrors(vErrs)), api.ErrorValidation, api.CategoryUser)
	}

	return c, nil
}

func rolePayloadFromInput(role api.ProviderRole, input api.ClaimCreateInput) (RolePayload, error) {
	if len(input.RoleSpecificData) > 0 {
		p, err := UnmarshalRolePayload(input.RoleSpecificData)
		if err != nil {
			return nil, err
		}
		if _, unknown := p.(UnknownPayload); !unknown && p != nil && p.Role() != role {
			err := fmt.Errorf("role specific data is for %s, not %s", p.Role(), role)
			return nil, api.NewAppError(err, api.ErrorClaimCreateInvalidInput, api.CategoryUser)
		}
		if pp, ok := p.(PharmacistPayload); ok && len(pp.Items) == 0 {
			return nil, noPrescribedItems()
		}
		return p, nil
	}

	items := lineItemsFromInput(input.Items)

	switch role {
	case api.ProviderRoleDoctor:
		return DoctorPayload{DoctorName: input.DoctorName, ProviderName: input.ProviderName}, nil
	case api.ProviderRolePharmacist:
		if len(items) == 0 {
			return nil, noPrescribedItems()
		}
		return PharmacistPayload{Items: items}, nil
	case api.ProviderRoleLabTech, api.ProviderRoleRadiologist:
		if domain.IsBlank(input.TestName) {
			err := fmt.Errorf("a %s claim needs a test name", role)
			return nil, api.NewAppError(err, api.ErrorClaimCreateInvalidInput, api.CategoryUser)
		}
		if role == api.ProviderRoleLabTech {
			return LabPayload{TestName: input.TestName, Items: items}, nil
		}
		return RadiologyPayload{TestName: input.TestName, Items: items}, nil
	}
	return nil, nil
}

func noPrescribedItems() error {
	err := errors.New("a pharmacist claim needs at least one prescribed item")
	return api.NewAppError(err, api.ErrorClaimCreateInvalidInput, api.CategoryUser)
}

// applyPricing resolves item prices, applies partial fulfillment and sets the amount
func (c *Claim) applyPricing(dispensedIDs []string) error {
	items := PayloadItems(c.Payload)

	if len(dispensedIDs) > 0 && c.ProviderRole != api.ProviderRolePharmacist {
		err := errors.New("only pharmacist claims can list dispensed items")
		return api.NewAppError(err, api.ErrorClaimCreateInvalidInput, api.CategoryUser)
	}

	if len(items) == 0 {
		if len(dispensedIDs) > 0 {
			err := fmt.Errorf("dispensed items %v are not among the prescribed items", dispensedIDs)
			return api.NewAppError(err, api.ErrorUnknownDispensedItem, api.CategoryUser)
		}
		c.Amount = ResolveClaimAmount(*c)
		return nil
	}

	f, err := ResolvePartialFulfillment(items, dispensedIDs)
	if err != nil {
		return err
	}
	c.Payload = withPayloadItems(c.Payload, f.Items)

	entered := 0
	for _, item := range f.Items {
		entered += item.Price
	}
	c.EnteredAmount = entered

	if c.ProviderRole == api.ProviderRolePharmacist && f.IsPartial {
		c.IsPartialFulfillment = true
		c.OriginalItemCount = f.OriginalCount
		c.FulfilledItemCount = f.FulfilledCount()
	}

	c.Amount = ResolveClaimAmount(*c)
	return nil
}

func withPayloadItems(p RolePayload, items LineItems) RolePayload {
	switch v := p.(type) {
	case PharmacistPayload:
		v.Items = items
		return v
	case LabPayload:
		v.Items = items
		return v
	case RadiologyPayload:
		v.Items = items
		return v
	}
	return p
}

// FreezeAmount fixes the approved amount. It has no effect once ApprovedAt is set.
func (c *Claim) FreezeAmount(now time.Time) {
	if c.ApprovedAt.Valid {
		return
	}
	c.Amount = ResolveClaimAmount(*c)
	c.ApprovedAt = nulls.NewTime(now.UTC())
}

// MarkRejected sets the rejection time, once, and the reason
func (c *Claim) MarkRejected(reason string, now time.Time) {
	if !c.RejectedAt.Valid {
		c.RejectedAt = nulls.NewTime(now.UTC())
	}
	c.SetReason(reason)
}

// SetReason records the reason for a rejection or return. A blank reason never clears an existing one.
func (c *Claim) SetReason(reason string) {
	if domain.IsBlank(reason) {
		return
	}
	c.RejectionReason = nulls.NewString(strings.TrimSpace(reason))
}

// MarkMedicalReviewed stamps the time of the first medical review action
func (c *Claim) MarkMedicalReviewed(now time.Time) {
	if c.MedicalReviewedAt.Valid {
		return
	}
	c.MedicalReviewedAt = nulls.NewTime(now.UTC())
}

// AddHistory appends an audit record of a status change
func (c *Claim) AddHistory(action api.ClaimAction, actor api.ActorRole, from, to api.ClaimStatus, reason string, now time.Time) {
	h := ClaimHistory{
		ID:        domain.GetUUID(),
		ClaimID:   c.ID,
		Action:    action,
		ActorRole: actor,
		OldStatus: from,
		NewStatus: to,
		CreatedAt: now.UTC(),
	}
	if !domain.IsBlank(reason) {
		h.Reason = nulls.NewString(reason)
	}
	c.History = append(c.History, h)
}

// Copy returns a deep copy of the claim
func (c Claim) Copy() Claim {
	out := c
	out.Payload = clonePayload(c.Payload)
	if c.History != nil {
		out.History = make(ClaimHistories, len(c.History))
		copy(out.History, c.History)
	}
	return out
}

// IsTerminal reports whether the claim can no longer change status
func (c Claim) IsTerminal() bool {
	return IsTerminal(c.Status)
}

func ConvertClaim(c Claim) api.Claim {
	info, _ := StatusInfoFor(c.Status)

	var roleData []byte
	if b, err := MarshalRolePayload(c.Payload); err == nil {
		roleData = b
	}

	return api.Claim{
		ID:                   c.ID,
		Kind:                 c.Kind,
		Status:               c.Status,
		StatusLabel:          info.Label,
		StatusColor:          info.Color,
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
		RoleSpecificData:     roleData,
		IsPartialFulfillment: c.IsPartialFulfillment,
		OriginalItemCount:    c.OriginalItemCount,
		FulfilledItemCount:   c.FulfilledItemCount,
		Version:              c.Version,
		History:              ConvertClaimHistories(c.History),
	}
}

func ConvertClaims(cs Claims) api.Claims {
	claims := make(api.Claims, len(cs))
	for i, c := range cs {
		claims[i] = ConvertClaim(c)
	}
	return claims
}

// ConvertAPIClaim turns a wire claim back into a record, decoding its role specific data
func ConvertAPIClaim(a api.Claim) (Claim, error) {
	payload, err := UnmarshalRolePayload(a.RoleSpecificData)
	if err != nil {
		return Claim{}, err
	}

	c := Claim{
		ID:                   a.ID,
		Kind:                 a.Kind,
		Status:               a.Status,
		ProviderRole:         a.ProviderRole,
		ClientID:             a.ClientID,
		ClientName:           a.ClientName,
		FamilyMemberID:       a.FamilyMemberID,
		FamilyMemberRelation: a.FamilyMemberRelation,
		ProviderName:         a.ProviderName,
		Amount:               a.Amount,
		EnteredAmount:        a.EnteredAmount,
		ReferencePrice:       a.ReferencePrice,
		IsFollowUp:           a.IsFollowUp,
		Diagnosis:            a.Diagnosis,
		TreatmentDetails:     a.TreatmentDetails,
		Description:          a.Description,
		ServiceDate:          a.ServiceDate,
		SubmittedAt:          a.SubmittedAt,
		MedicalReviewedAt:    a.MedicalReviewedAt,
		ApprovedAt:           a.ApprovedAt,
		RejectedAt:           a.RejectedAt,
		RejectionReason:      a.RejectionReason,
		Payload:              payload,
		IsPartialFulfillment: a.IsPartialFulfillment,
		OriginalItemCount:    a.OriginalItemCount,
		FulfilledItemCount:   a.FulfilledItemCount,
		Version:              a.Version,
	}
	for _, h := range a.History {
		c.History = append(c.History, ClaimHistory{
			ID:        h.ID,
			ClaimID:   h.ClaimID,
			Action:    h.Action,
			ActorRole: h.ActorRole,
			OldStatus: h.OldStatus,
			NewStatus: h.NewStatus,
			Reason:    h.Reason,
			CreatedAt: h.CreatedAt,
		})
	}
	return c, nil
}
