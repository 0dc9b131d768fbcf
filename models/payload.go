package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gobuffalo/nulls"

	"github.com/silinternational/claimflow/api"
)

// RolePayload is the role-specific part of a claim. The concrete types are DoctorPayload,
// PharmacistPayload, LabPayload, RadiologyPayload and UnknownPayload.
type RolePayload interface {
	Role() api.ProviderRole
	isRolePayload()
}

type LineItems []LineItem

// LineItem is one prescribed or billed item. Prices are in cents.
type LineItem struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Price          int       `json:"price"`
	ReferencePrice nulls.Int `json:"reference_price"`
	ResolvedPrice  int       `json:"resolved_price"`
	Dosage         string    `json:"dosage,omitempty"`
	Quantity       string    `json:"quantity,omitempty"`
	Form           string    `json:"form,omitempty"`
}

// Total is the sum of the resolved prices
func (l LineItems) Total() int {
	total := 0
	for _, item := range l {
		total += item.ResolvedPrice
	}
	return total
}

type DoctorPayload struct {
	DoctorName   string `json:"doctor_name"`
	ProviderName string `json:"provider_name"`
}

type PharmacistPayload struct {
	Items LineItems `json:"items"`
}

type LabPayload struct {
	TestName string    `json:"test_name"`
	Items    LineItems `json:"items"`
}

type RadiologyPayload struct {
	TestName string    `json:"test_name"`
	Items    LineItems `json:"items"`
}

// UnknownPayload keeps a blob this version cannot interpret. Raw is the complete stored blob.
type UnknownPayload struct {
	RoleName string
	Raw      json.RawMessage
}

func (DoctorPayload) Role() api.ProviderRole     { return api.ProviderRoleDoctor }
func (PharmacistPayload) Role() api.ProviderRole { return api.ProviderRolePharmacist }
func (LabPayload) Role() api.ProviderRole        { return api.ProviderRoleLabTech }
func (RadiologyPayload) Role() api.ProviderRole  { return api.ProviderRoleRadiologist }
func (u UnknownPayload) Role() api.ProviderRole  { return api.ProviderRole(u.RoleName) }

func (DoctorPayload) isRolePayload()     {}
func (PharmacistPayload) isRolePayload() {}
func (LabPayload) isRolePayload()        {}
func (RadiologyPayload) isRolePayload()  {}
func (UnknownPayload) isRolePayload()    {}

type payloadEnvelope struct {
	Role string          `json:"role"`
	Data json.RawMessage `json:"data"`
}

// MarshalRolePayload encodes a payload as {"role": ..., "data": ...}. An UnknownPayload is returned
// exactly as it was read. A nil payload encodes as nil.
func MarshalRolePayload(p RolePayload) ([]byte, error) {
	switch v := p.(type) {
	case nil:
		return nil, nil
	case UnknownPayload:
		return append([]byte(nil), v.Raw...), nil
	case *UnknownPayload:
		return append([]byte(nil), v.Raw...), nil
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("error encoding %s payload: %w", p.Role(), err)
	}
	return json.Marshal(payloadEnvelope{Role: string(p.Role()), Data: data})
}

// UnmarshalRolePayload decodes a stored payload blob. Blobs with an unknown role, or with a shape that
// does not match the role exactly, become an UnknownPayload so they can be written back unchanged.
func UnmarshalRolePayload(b []byte) (RolePayload, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		err := errors.New("role specific data is not valid JSON")
		return nil, api.NewAppError(err, api.ErrorClaimPayloadDecode, api.CategoryUser)
	}

	raw := append(json.RawMessage(nil), b...)

	var loose struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(trimmed, &loose); err != nil {
		return UnknownPayload{Raw: raw}, nil
	}
	unknown := UnknownPayload{RoleName: loose.Role, Raw: raw}

	var env payloadEnvelope
	if err := strictUnmarshal(trimmed, &env); err != nil {
		return unknown, nil
	}

	var p RolePayload
	var err error
	switch api.ProviderRole(env.Role) {
	case api.ProviderRoleDoctor:
		var v DoctorPayload
		err = strictUnmarshal(env.Data, &v)
		p = v
	case api.ProviderRolePharmacist:
		var v PharmacistPayload
		err = strictUnmarshal(env.Data, &v)
		p = v
	case api.ProviderRoleLabTech:
		var v LabPayload
		err = strictUnmarshal(env.Data, &v)
		p = v
	case api.ProviderRoleRadiologist:
		var v RadiologyPayload
		err = strictUnmarshal(env.Data, &v)
		p = v
	default:
		return unknown, nil
	}
	if err != nil {
		return unknown, nil
	}
	return p, nil
}

func strictUnmarshal(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// PayloadItems returns the line items of a payload, if it has any
func PayloadItems(p RolePayload) LineItems {
	switch v := p.(type) {
	case PharmacistPayload:
		return v.Items
	case LabPayload:
		return v.Items
	case RadiologyPayload:
		return v.Items
	}
	return nil
}

// clonePayload returns a copy that shares no slices with p
func clonePayload(p RolePayload) RolePayload {
	switch v := p.(type) {
	case PharmacistPayload:
		v.Items = cloneItems(v.Items)
		return v
	case LabPayload:
		v.Items = cloneItems(v.Items)
		return v
	case RadiologyPayload:
		v.Items = cloneItems(v.Items)
		return v
	case UnknownPayload:
		v.Raw = append(json.RawMessage(nil), v.Raw...)
		return v
	}
	return p
}

func cloneItems(items LineItems) LineItems {
	if items == nil {
		return nil
	}
	out := make(LineItems, len(items))
	copy(out, items)
	return out
}

// payloadSearchText is the serialized payload used by free-text search
func payloadSearchText(p RolePayload) string {
	b, err := MarshalRolePayload(p)
	if err != nil {
		return ""
	}
	return string(b)
}
