package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gobuffalo/validate/v3"

	"github.com/silinternational/claimflow/api"
)

// Model validation tool
var mValidate *validator.Validate

var fieldValidators = map[string]func(validator.FieldLevel) bool{
	"actorRole":    validateActorRole,
	"claimAction":  validateClaimAction,
	"claimKind":    validateClaimKind,
	"claimStatus":  validateClaimStatus,
	"providerRole": validateProviderRole,
}

var validClaimActions = map[api.ClaimAction]struct{}{
	api.ClaimActionSubmit:    {},
	api.ClaimActionApprove:   {},
	api.ClaimActionReject:    {},
	api.ClaimActionReturn:    {},
	api.ClaimActionReapprove: {},
	api.ClaimActionForward:   {},
}

func validateModel(m interface{}) *validate.Errors {
	vErrs := validate.NewErrors()

	if err := mValidate.Struct(m); err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			vErrs.Add(err.StructNamespace(), err.Error())
		}
	}
	return vErrs
}

// flattenPopErrors - pop validation errors are complex structures, this flattens them to a simple string
func flattenPopErrors(popErrs *validate.Errors) string {
	var msgs []string
	for key, val := range popErrs.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", key, strings.Join(val, ", ")))
	}
	sort.Strings(msgs)
	msg := strings.Join(msgs, " |")
	return msg
}

func validateClaimKind(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(api.ClaimKind); ok {
		_, valid := ValidClaimKinds[value]
		return valid
	}
	return false
}

func validateClaimStatus(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(api.ClaimStatus); ok {
		_, valid := ValidClaimStatus[value]
		return valid
	}
	return false
}

func validateProviderRole(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(api.ProviderRole); ok {
		_, valid := ValidProviderRoles[value]
		return valid
	}
	return false
}

func validateActorRole(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(api.ActorRole); ok {
		_, valid := ValidActorRoles[value]
		return valid
	}
	return false
}

func validateClaimAction(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(api.ClaimAction); ok {
		_, valid := validClaimActions[value]
		return valid
	}
	return false
}

func claimStructLevelValidation(sl validator.StructLevel) {
	claim, ok := sl.Current().Interface().(Claim)
	if !ok {
		panic("claimStructLevelValidation registered to a type other than Claim")
	}

	if claim.FamilyMemberID.Valid && !claim.FamilyMemberRelation.Valid {
		sl.ReportError(claim.FamilyMemberRelation, "family_member_relation", "FamilyMemberRelation",
			"family_member_relation_required", "")
	}

	if !IsStatusOfKind(claim.Kind, claim.Status) {
		sl.ReportError(claim.Status, "status", "Status", "status_not_of_kind", "")
	}

	switch claim.Status {
	case api.ClaimStatusApprovedFinal, api.ClaimStatusApprovedByMedical:
		if !claim.ApprovedAt.Valid {
			sl.ReportError(claim.ApprovedAt, "approved_at", "ApprovedAt", "approved_at_required", "")
		}
	case api.ClaimStatusRejectedMedical, api.ClaimStatusRejectedFinal, api.ClaimStatusRejectedByMedical:
		if !claim.RejectedAt.Valid {
			sl.ReportError(claim.RejectedAt, "rejected_at", "RejectedAt", "rejected_at_required", "")
		}
		if !claim.RejectionReason.Valid {
			sl.ReportError(claim.RejectionReason, "rejection_reason", "RejectionReason",
				"rejection_reason_required", "")
		}
	case api.ClaimStatusReturnedForReview:
		if !claim.RejectionReason.Valid {
			sl.ReportError(claim.RejectionReason, "rejection_reason", "RejectionReason",
				"rejection_reason_required", "")
		}
	}

	if claim.IsPartialFulfillment {
		if claim.ProviderRole != api.ProviderRolePharmacist {
			sl.ReportError(claim.IsPartialFulfillment, "is_partial_fulfillment", "IsPartialFulfillment",
				"partial_fulfillment_pharmacist_only", "")
		}
		if claim.FulfilledItemCount >= claim.OriginalItemCount {
			sl.ReportError(claim.FulfilledItemCount, "fulfilled_item_count", "FulfilledItemCount",
				"fulfilled_count_must_be_less_than_original", "")
		}
	}
}

func lineItemInputStructLevelValidation(sl validator.StructLevel) {
	item, ok := sl.Current().Interface().(api.LineItemInput)
	if !ok {
		panic("lineItemInputStructLevelValidation registered to a type other than LineItemInput")
	}

	if item.ReferencePrice.Valid && item.ReferencePrice.Int < 0 {
		sl.ReportError(item.ReferencePrice, "reference_price", "ReferencePrice", "reference_price_negative", "")
	}
}

func claimCreateInputStructLevelValidation(sl validator.StructLevel) {
	input, ok := sl.Current().Interface().(api.ClaimCreateInput)
	if !ok {
		panic("claimCreateInputStructLevelValidation registered to a type other than ClaimCreateInput")
	}

	if input.FamilyMemberID.Valid && !input.FamilyMemberRelation.Valid {
		sl.ReportError(input.FamilyMemberRelation, "family_member_relation", "FamilyMemberRelation",
			"family_member_relation_required", "")
	}

	if input.ReferencePrice.Valid && input.ReferencePrice.Int < 0 {
		sl.ReportError(input.ReferencePrice, "reference_price", "ReferencePrice", "reference_price_negative", "")
	}
}
