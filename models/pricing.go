package models

import (
	"fmt"

	"github.com/gobuffalo/nulls"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
)

// ResolvePrice returns the amount to approve for a service. Follow-up visits are free. Otherwise the
// entered price is capped at the reference price. A missing reference price leaves the entered price as is.
func ResolvePrice(entered int, reference nulls.Int, isFollowUp bool) int {
	if isFollowUp {
		return 0
	}
	if !reference.Valid {
		return entered
	}
	return domain.MinInt(entered, reference.Int)
}

// Fulfillment is the outcome of dispensing some or all of the prescribed items
type Fulfillment struct {
	Items         LineItems
	Amount        int
	OriginalCount int
	IsPartial     bool
}

// FulfilledCount is the number of dispensed items
func (f Fulfillment) FulfilledCount() int {
	return len(f.Items)
}

// ResolvePartialFulfillment keeps the prescribed items whose ID is in dispensedIDs, in prescription order,
// with their resolved prices filled in. An empty dispensedIDs means everything was dispensed.
func ResolvePartialFulfillment(prescribed LineItems, dispensedIDs []string) (Fulfillment, error) {
	resolved := make(LineItems, len(prescribed))
	byID := map[string]int{}
	for i, item := range prescribed {
		item.ResolvedPrice = ResolvePrice(item.Price, item.ReferencePrice, false)
		resolved[i] = item
		byID[item.ID] = i
	}

	f := Fulfillment{OriginalCount: len(prescribed)}

	if len(dispensedIDs) == 0 {
		f.Items = resolved
		f.Amount = resolved.Total()
		return f, nil
	}

	wanted := map[string]bool{}
	for _, id := range dispensedIDs {
		if _, ok := byID[id]; !ok {
			err := fmt.Errorf("dispensed item %q was not prescribed", id)
			return Fulfillment{}, api.NewAppError(err, api.ErrorUnknownDispensedItem, api.CategoryUser).
				WithExtra("item_id", id)
		}
		if wanted[id] {
			err := fmt.Errorf("dispensed item %q is listed more than once", id)
			return Fulfillment{}, api.NewAppError(err, api.ErrorDuplicateDispensedItem, api.CategoryUser).
				WithExtra("item_id", id)
		}
		wanted[id] = true
	}

	for _, item := range resolved {
		if wanted[item.ID] {
			f.Items = append(f.Items, item)
		}
	}
	f.Amount = f.Items.Total()
	f.IsPartial = len(f.Items) < f.OriginalCount
	return f, nil
}

// ResolveClaimAmount computes the amount of a claim from its stored pricing inputs. Item-based claims
// sum the resolved prices of their items. Other claims resolve the entered amount against the reference price.
func ResolveClaimAmount(c Claim) int {
	if c.IsFollowUp {
		return 0
	}
	if items := PayloadItems(c.Payload); len(items) > 0 {
		return items.Total()
	}
	return ResolvePrice(c.EnteredAmount, c.ReferencePrice, false)
}

func lineItemsFromInput(in []api.LineItemInput) LineItems {
	if len(in) == 0 {
		return nil
	}
	items := make(LineItems, len(in))
	for i, li := range in {
		items[i] = LineItem{
			ID:             li.ID,
			Name:           li.Name,
			Price:          li.Price,
			ReferencePrice: li.ReferencePrice,
			Dosage:         li.Dosage,
			Quantity:       li.Quantity,
			Form:           li.Form,
		}
	}
	return items
}
