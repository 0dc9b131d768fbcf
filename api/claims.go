package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gobuffalo/nulls"
	"github.com/gofrs/uuid"
)

type (
	ClaimKind    string
	ClaimStatus  string
	ClaimAction  string
	ProviderRole string
	ActorRole    string
	StatusColor  string
)

const (
	ClaimKindHealthcare = ClaimKind("HEALTHCARE_CLAIM")
	ClaimKindEmergency  = ClaimKind("EMERGENCY_REQUEST")

	ClaimStatusPendingMedical      = ClaimStatus("PENDING_MEDICAL")
	ClaimStatusApprovedMedical     = ClaimStatus("APPROVED_MEDICAL")
	ClaimStatusPendingCoordination = ClaimStatus("PENDING_COORDINATION")
	ClaimStatusApprovedFinal       = ClaimStatus("APPROVED_FINAL")
	ClaimStatusRejectedMedical     = ClaimStatus("REJECTED_MEDICAL")
	ClaimStatusRejectedFinal       = ClaimStatus("REJECTED_FINAL")
	ClaimStatusReturnedForReview   = ClaimStatus("RETURNED_FOR_REVIEW")
	ClaimStatusApprovedByMedical   = ClaimStatus("APPROVED_BY_MEDICAL")
	ClaimStatusRejectedByMedical   = ClaimStatus("REJECTED_BY_MEDICAL")

	// ClaimStatusAll is only meaningful as a query filter
	ClaimStatusAll = ClaimStatus("ALL")

	ClaimActionSubmit    = ClaimAction("submit")
	ClaimActionApprove   = ClaimAction("approve")
	ClaimActionReject    = ClaimAction("reject")
	ClaimActionReturn    = ClaimAction("return_for_review")
	ClaimActionReapprove = ClaimAction("reapprove")
	ClaimActionForward   = ClaimAction("forward")

	ProviderRoleDoctor      = ProviderRole("DOCTOR")
	ProviderRolePharmacist  = ProviderRole("PHARMACIST")
	ProviderRoleLabTech     = ProviderRole("LAB_TECH")
	ProviderRoleRadiologist = ProviderRole("RADIOLOGIST")

	ActorRoleDoctor            = ActorRole("DOCTOR")
	ActorRolePharmacist        = ActorRole("PHARMACIST")
	ActorRoleLabTech           = ActorRole("LAB_TECH")
	ActorRoleRadiologist       = ActorRole("RADIOLOGIST")
	ActorRoleMedicalAdmin      = ActorRole("MEDICAL_ADMIN")
	ActorRoleCoordinationAdmin = ActorRole("COORDINATION_ADMIN")

	StatusColorWarning = StatusColor("warning")
	StatusColorSuccess = StatusColor("success")
	StatusColorError   = StatusColor("error")
	StatusColorInfo    = StatusColor("info")
)

// Currency is an amount of money in cents
type Currency int

func (c Currency) String() string {
	sign := ""
	v := int(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

type Claims []Claim

type Claim struct {
	ID                   uuid.UUID       `json:"id"`
	Kind                 ClaimKind       `json:"kind"`
	Status               ClaimStatus     `json:"status"`
	StatusLabel          string          `json:"status_label"`
	StatusColor          StatusColor     `json:"status_color"`
	ProviderRole         ProviderRole    `json:"provider_role"`
	ClientID             uuid.UUID       `json:"client_id"`
	ClientName           string          `json:"client_name"`
	FamilyMemberID       nulls.UUID      `json:"family_member_id"`
	FamilyMemberRelation nulls.String    `json:"family_member_relation"`
	ProviderName         string          `json:"provider_name"`
	Amount               int             `json:"amount"`
	EnteredAmount        int             `json:"entered_amount"`
	ReferencePrice       nulls.Int       `json:"reference_price"`
	IsFollowUp           bool            `json:"is_follow_up"`
	Diagnosis            nulls.String    `json:"diagnosis"`
	TreatmentDetails     nulls.String    `json:"treatment_details"`
	Description          nulls.String    `json:"description"`
	ServiceDate          time.Time       `json:"service_date"`
	SubmittedAt          time.Time       `json:"submitted_at"`
	MedicalReviewedAt    nulls.Time      `json:"medical_reviewed_at"`
	ApprovedAt           nulls.Time      `json:"approved_at"`
	RejectedAt           nulls.Time      `json:"rejected_at"`
	RejectionReason      nulls.String    `json:"rejection_reason"`
	RoleSpecificData     json.RawMessage `json:"role_specific_data"`
	IsPartialFulfillment bool            `json:"is_partial_fulfillment"`
	OriginalItemCount    int             `json:"original_item_count,omitempty"`
	FulfilledItemCount   int             `json:"fulfilled_item_count,omitempty"`
	Version              int             `json:"version"`
	History              ClaimHistories  `json:"history,omitempty"`
}

// ClaimCreateInput is what a provider submits. Amount and item prices are in cents.
type ClaimCreateInput struct {
	Kind                 ClaimKind    `json:"kind" validate:"claimKind"`
	ClientID             uuid.UUID    `json:"client_id" validate:"required"`
	ClientName           string       `json:"client_name"`
	FamilyMemberID       nulls.UUID   `json:"family_member_id"`
	FamilyMemberRelation nulls.String `json:"family_member_relation"`
	ProviderName         string       `json:"provider_name"`
	Amount               int          `json:"amount" validate:"min=0"`
	ReferencePrice       nulls.Int    `json:"reference_price"`
	IsFollowUp           bool         `json:"is_follow_up"`
	Diagnosis            nulls.String `json:"diagnosis"`
	TreatmentDetails     nulls.String `json:"treatment_details"`
	Description          nulls.String `json:"description"`
	ServiceDate          time.Time    `json:"service_date" validate:"required"`

	// doctor
	DoctorName string `json:"doctor_name"`

	// lab and radiology
	TestName string `json:"test_name"`

	// pharmacist, lab and radiology
	Items []LineItemInput `json:"items" validate:"dive"`

	// pharmacist only: the subset of Items actually dispensed. Empty means all were dispensed.
	DispensedItemIDs []string `json:"dispensed_item_ids"`

	// RoleSpecificData carries a payload that this version does not model. It is stored as-is.
	RoleSpecificData json.RawMessage `json:"role_specific_data,omitempty"`
}

type LineItemInput struct {
	ID             string    `json:"id" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Price          int       `json:"price" validate:"min=0"`
	ReferencePrice nulls.Int `json:"reference_price"`
	Dosage         string    `json:"dosage,omitempty"`
	Quantity       string    `json:"quantity,omitempty"`
	Form           string    `json:"form,omitempty"`
}

type ClaimHistories []ClaimHistory

type ClaimHistory struct {
	ID        uuid.UUID    `json:"id"`
	ClaimID   uuid.UUID    `json:"claim_id"`
	Action    ClaimAction  `json:"action"`
	ActorRole ActorRole    `json:"actor_role"`
	OldStatus ClaimStatus  `json:"old_status"`
	NewStatus ClaimStatus  `json:"new_status"`
	Reason    nulls.String `json:"reason"`
	CreatedAt time.Time    `json:"created_at"`
}

// ClaimPage is one page of query results plus the number of matches across all pages
type ClaimPage struct {
	Claims     Claims `json:"claims"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}
