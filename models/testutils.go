package models

import (
	"fmt"
	"time"

	"github.com/gobuffalo/nulls"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
)

// FixturesConfig controls the records made by CreateClaimFixtures
type FixturesConfig struct {
	NumberOfClaims int
	Kind           api.ClaimKind
	Status         api.ClaimStatus
	Start          time.Time
}

// Fixtures hold slices of model objects created for test fixtures
type Fixtures struct {
	Claims
}

// ClaimInputFixture returns a valid submission for the given kind and role
func ClaimInputFixture(kind api.ClaimKind, role api.ProviderRole) api.ClaimCreateInput {
	input := api.ClaimCreateInput{
		Kind:         kind,
		ClientID:     domain.GetUUID(),
		ClientName:   "Client " + domain.RandomString(6, ""),
		ProviderName: "Provider " + domain.RandomString(6, ""),
		Amount:       5000,
		Diagnosis:    nulls.NewString("seasonal flu"),
		ServiceDate:  time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
	}

	switch role {
	case api.ProviderRoleDoctor:
		input.DoctorName = "Dr. " + domain.RandomString(5, "")
		input.ReferencePrice = nulls.NewInt(4000)
	case api.ProviderRolePharmacist:
		input.Items = LineItemInputFixtures(3)
	case api.ProviderRoleLabTech:
		input.TestName = "Complete blood count"
		input.Items = LineItemInputFixtures(2)
	case api.ProviderRoleRadiologist:
		input.TestName = "Chest x-ray"
		input.Items = LineItemInputFixtures(1)
	}
	return input
}

// LineItemInputFixtures makes n items with ids item-0, item-1... Prices are 1000, 2000... and every
// other item has a reference price 500 below its price.
func LineItemInputFixtures(n int) []api.LineItemInput {
	items := make([]api.LineItemInput, n)
	for i := range items {
		price := (i + 1) * 1000
		items[i] = api.LineItemInput{
			ID:       fmt.Sprintf("item-%d", i),
			Name:     fmt.Sprintf("medicine %d", i),
			Price:    price,
			Dosage:   "500mg",
			Quantity: "10",
			Form:     "tablet",
		}
		if i%2 == 1 {
			items[i].ReferencePrice = nulls.NewInt(price - 500)
		}
	}
	return items
}

// ClaimFixture makes a record in the given status without going through the workflow
func ClaimFixture(kind api.ClaimKind, status api.ClaimStatus, clientName string, amount int, submittedAt time.Time) Claim {
	c := Claim{
		ID:            domain.GetUUID(),
		Kind:          kind,
		Status:        status,
		ProviderRole:  api.ProviderRoleDoctor,
		ClientID:      domain.GetUUID(),
		ClientName:    clientName,
		ProviderName:  "General Hospital",
		Amount:        amount,
		EnteredAmount: amount,
		ServiceDate:   domain.BeginningOfDay(submittedAt),
		SubmittedAt:   submittedAt,
		Payload:       DoctorPayload{DoctorName: "Dr. Who", ProviderName: "General Hospital"},
		Version:       1,
	}

	switch status {
	case api.ClaimStatusApprovedFinal, api.ClaimStatusApprovedByMedical:
		c.ApprovedAt = nulls.NewTime(submittedAt.Add(time.Hour))
	case api.ClaimStatusRejectedMedical, api.ClaimStatusRejectedFinal, api.ClaimStatusRejectedByMedical:
		c.RejectedAt = nulls.NewTime(submittedAt.Add(time.Hour))
		c.RejectionReason = nulls.NewString("not covered")
	case api.ClaimStatusReturnedForReview:
		c.RejectionReason = nulls.NewString("missing invoice")
	}
	return c
}

// CreateClaimFixtures makes config.NumberOfClaims records submitted one hour apart, with rising amounts
func CreateClaimFixtures(config FixturesConfig) Fixtures {
	kind := config.Kind
	if kind == "" {
		kind = api.ClaimKindHealthcare
	}
	status := config.Status
	if status == "" {
		status = api.ClaimStatusPendingMedical
	}
	start := config.Start
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	}

	claims := make(Claims, config.NumberOfClaims)
	for i := range claims {
		claims[i] = ClaimFixture(kind, status, fmt.Sprintf("client %02d", i), (i+1)*100,
			start.Add(time.Duration(i)*time.Hour))
	}
	return Fixtures{Claims: claims}
}
