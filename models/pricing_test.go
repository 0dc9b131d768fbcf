package models

import (
	"testing"

	"github.com/gobuffalo/nulls"

	"github.com/silinternational/claimflow/api"
)

func (ms *ModelSuite) TestResolvePrice() {
	tests := []struct {
		name       string
		entered    int
		reference  nulls.Int
		isFollowUp bool
		want       int
	}{
		{name: "entered below reference", entered: 900, reference: nulls.NewInt(1000), want: 900},
		{name: "entered above reference", entered: 1500, reference: nulls.NewInt(1000), want: 1000},
		{name: "equal", entered: 1000, reference: nulls.NewInt(1000), want: 1000},
		{name: "zero reference", entered: 1000, reference: nulls.NewInt(0), want: 0},
		{name: "no reference", entered: 1234, reference: nulls.Int{}, want: 1234},
		{name: "follow up", entered: 1500, reference: nulls.NewInt(1000), isFollowUp: true, want: 0},
		{name: "follow up without reference", entered: 1500, isFollowUp: true, want: 0},
	}
	for _, tt := range tests {
		ms.T().Run(tt.name, func(t *testing.T) {
			ms.Equal(tt.want, ResolvePrice(tt.entered, tt.reference, tt.isFollowUp))
		})
	}
}

func (ms *ModelSuite) TestResolvePrice_IsMinimum() {
	for entered := 0; entered <= 3000; entered += 250 {
		for ref := 0; ref <= 3000; ref += 300 {
			got := ResolvePrice(entered, nulls.NewInt(ref), false)
			want := entered
			if ref < want {
				want = ref
			}
			ms.Equal(want, got, "entered %d, reference %d", entered, ref)
			ms.Equal(0, ResolvePrice(entered, nulls.NewInt(ref), true))
		}
	}
}

func (ms *ModelSuite) TestResolvePartialFulfillment() {
	prescribed := lineItemsFromInput(LineItemInputFixtures(3))
	// prices 1000, 2000 (ref 1500), 3000

	tests := []struct {
		name        string
		dispensed   []string
		wantIDs     []string
		wantAmount  int
		wantPartial bool
		wantKey     api.ErrorKey
	}{
		{
			name:       "everything by default",
			wantIDs:    []string{"item-0", "item-1", "item-2"},
			wantAmount: 1000 + 1500 + 3000,
		},
		{
			name:        "two of three",
			dispensed:   []string{"item-2", "item-1"},
			wantIDs:     []string{"item-1", "item-2"},
			wantAmount:  1500 + 3000,
			wantPartial: true,
		},
		{
			name:       "all listed",
			dispensed:  []string{"item-0", "item-1", "item-2"},
			wantIDs:    []string{"item-0", "item-1", "item-2"},
			wantAmount: 5500,
		},
		{
			name:      "unknown id",
			dispensed: []string{"item-0", "item-9"},
			wantKey:   api.ErrorUnknownDispensedItem,
		},
		{
			name:      "duplicate id",
			dispensed: []string{"item-0", "item-0"},
			wantKey:   api.ErrorDuplicateDispensedItem,
		},
	}
	for _, tt := range tests {
		ms.T().Run(tt.name, func(t *testing.T) {
			got, err := ResolvePartialFulfillment(prescribed, tt.dispensed)
			if tt.wantKey != "" {
				ms.EqualAppError(api.AppError{Key: tt.wantKey, Category: api.CategoryUser}, err)
				return
			}
			ms.NoError(err)

			var ids []string
			for _, item := range got.Items {
				ids = append(ids, item.ID)
			}
			ms.Equal(tt.wantIDs, ids)
			ms.Equal(tt.wantAmount, got.Amount)
			ms.Equal(tt.wantPartial, got.IsPartial)
			ms.Equal(3, got.OriginalCount)
			ms.Equal(len(tt.wantIDs), got.FulfilledCount())
		})
	}

	ms.Equal(0, prescribed[1].ResolvedPrice, "input items must not be modified")
}

func (ms *ModelSuite) TestResolveClaimAmount() {
	c := Claim{EnteredAmount: 5000, ReferencePrice: nulls.NewInt(4200)}
	ms.Equal(4200, ResolveClaimAmount(c))

	c.IsFollowUp = true
	ms.Equal(0, ResolveClaimAmount(c))

	c = Claim{
		EnteredAmount: 99999,
		Payload: LabPayload{TestName: "CBC", Items: LineItems{
			{ID: "a", ResolvedPrice: 300},
			{ID: "b", ResolvedPrice: 400},
		}},
	}
	ms.Equal(700, ResolveClaimAmount(c))
}
