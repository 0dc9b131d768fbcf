package models

import (
	"context"

	"github.com/gobuffalo/nulls"

	"github.com/silinternational/claimflow/api"
)

func (ms *ModelSuite) TestClaimRow_RoundTrip() {
	c := ClaimFixture(api.ClaimKindHealthcare, api.ClaimStatusReturnedForReview, "Ann", 2500, testNow)
	c.Payload = LabPayload{TestName: "CBC", Items: LineItems{{ID: "a", Name: "panel", Price: 2500, ResolvedPrice: 2500}}}
	c.ProviderRole = api.ProviderRoleLabTech
	c.ReferencePrice = nulls.NewInt(3000)

	row, err := newClaimRow(c)
	ms.NoError(err)
	ms.True(row.RolePayload.Valid)
	ms.Contains(row.RolePayload.String, `"LAB_TECH"`)
	ms.Equal("claims", row.TableName())

	back, err := row.toClaim()
	ms.NoError(err)
	ms.Equal(c, back)

	vErrs, err := row.Validate(nil)
	ms.NoError(err)
	ms.False(vErrs.HasAny())

	c.Payload = nil
	row, err = newClaimRow(c)
	ms.NoError(err)
	ms.False(row.RolePayload.Valid)
}

func (ms *ModelSuite) TestPopStore() {
	if ms.DB == nil {
		ms.T().Skip("no database available")
	}
	ctx := context.Background()
	store := NewPopStore(ms.DB)

	input := ClaimInputFixture(api.ClaimKindHealthcare, api.ProviderRolePharmacist)
	input.DispensedItemIDs = []string{"item-1"}
	c, err := NewClaimFromInput(api.ProviderRolePharmacist, input, testNow)
	ms.NoError(err)
	c.AddHistory(api.ClaimActionSubmit, api.ActorRolePharmacist, "", c.Status, "", testNow)

	ms.NoError(store.Create(ctx, &c))
	ms.Equal(1, c.Version)

	found, err := store.Find(ctx, c.ID)
	ms.NoError(err)
	ms.Equal(c.Amount, found.Amount)
	ms.Equal(c.Payload, found.Payload)
	ms.Len(found.History, 1)

	stale := found.Copy()

	found.Status = api.ClaimStatusRejectedMedical
	found.MarkRejected("not covered", testNow)
	found.AddHistory(api.ClaimActionReject, api.ActorRoleMedicalAdmin, api.ClaimStatusPendingMedical,
		found.Status, "not covered", testNow)
	ms.NoError(store.Update(ctx, &found))
	ms.Equal(2, found.Version)

	err = store.Update(ctx, &stale)
	ms.EqualAppError(api.AppError{Key: api.ErrorVersionConflict, Category: api.CategoryConflict}, err)

	reread, err := store.Find(ctx, c.ID)
	ms.NoError(err)
	ms.Equal(api.ClaimStatusRejectedMedical, reread.Status)
	ms.Equal("not covered", reread.RejectionReason.String)
	ms.Len(reread.History, 2)

	all, err := store.All(ctx)
	ms.NoError(err)
	ms.NotEmpty(all)
}
