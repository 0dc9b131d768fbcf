package models

import (
	"encoding/json"
	"testing"

	"github.com/gobuffalo/nulls"

	"github.com/silinternational/claimflow/api"
)

func (ms *ModelSuite) TestRolePayload_Envelope() {
	p := PharmacistPayload{Items: LineItems{
		{ID: "a", Name: "amoxicillin", Price: 1200, ReferencePrice: nulls.NewInt(1000), ResolvedPrice: 1000, Dosage: "250mg"},
	}}

	b, err := MarshalRolePayload(p)
	ms.NoError(err)

	var env map[string]json.RawMessage
	ms.NoError(json.Unmarshal(b, &env))
	ms.Equal(`"PHARMACIST"`, string(env["role"]))
	ms.Contains(string(env["data"]), `"amoxicillin"`)

	got, err := UnmarshalRolePayload(b)
	ms.NoError(err)
	ms.Equal(p, got)
}

func (ms *ModelSuite) TestUnmarshalRolePayload() {
	tests := []struct {
		name     string
		blob     string
		wantRole api.ProviderRole
		unknown  bool
		wantKey  api.ErrorKey
	}{
		{
			name:     "doctor",
			blob:     `{"role":"DOCTOR","data":{"doctor_name":"Dr. A","provider_name":"Clinic"}}`,
			wantRole: api.ProviderRoleDoctor,
		},
		{
			name:     "lab",
			blob:     `{"role":"LAB_TECH","data":{"test_name":"CBC","items":[]}}`,
			wantRole: api.ProviderRoleLabTech,
		},
		{
			name:     "unknown role",
			blob:     `{"role":"DENTIST","data":{"tooth":12}}`,
			wantRole: "DENTIST",
			unknown:  true,
		},
		{
			name:     "extra field in data",
			blob:     `{"role":"DOCTOR","data":{"doctor_name":"Dr. A","specialty":"ENT"}}`,
			wantRole: api.ProviderRoleDoctor,
			unknown:  true,
		},
		{
			name:     "extra field in envelope",
			blob:     `{"role":"DOCTOR","data":{"doctor_name":"Dr. A"},"legacy":true}`,
			wantRole: api.ProviderRoleDoctor,
			unknown:  true,
		},
		{
			name:    "not an object",
			blob:    `[1,2,3]`,
			unknown: true,
		},
		{
			name:    "invalid JSON",
			blob:    `{"role":`,
			wantKey: api.ErrorClaimPayloadDecode,
		},
	}
	for _, tt := range tests {
		ms.T().Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalRolePayload([]byte(tt.blob))
			if tt.wantKey != "" {
				ms.EqualAppError(api.AppError{Key: tt.wantKey, Category: api.CategoryUser}, err)
				return
			}
			ms.NoError(err)
			ms.Equal(tt.wantRole, got.Role())

			_, isUnknown := got.(UnknownPayload)
			ms.Equal(tt.unknown, isUnknown)

			if tt.unknown {
				b, err := MarshalRolePayload(got)
				ms.NoError(err)
				ms.Equal(tt.blob, string(b), "unknown payloads must be written back unchanged")
			}
		})
	}

	for _, empty := range []string{"", "  ", "null"} {
		got, err := UnmarshalRolePayload([]byte(empty))
		ms.NoError(err)
		ms.Nil(got)
	}
}

func (ms *ModelSuite) TestClonePayload() {
	p := RadiologyPayload{TestName: "MRI", Items: LineItems{{ID: "a", Price: 100}}}
	c := clonePayload(p).(RadiologyPayload)
	c.Items[0].Price = 999
	ms.Equal(100, p.Items[0].Price)

	u := UnknownPayload{RoleName: "X", Raw: json.RawMessage(`{"a":1}`)}
	cu := clonePayload(u).(UnknownPayload)
	cu.Raw[2] = 'b'
	ms.Equal(`{"a":1}`, string(u.Raw))
}

func (ms *ModelSuite) TestPayloadItems() {
	ms.Nil(PayloadItems(DoctorPayload{}))
	ms.Nil(PayloadItems(nil))
	ms.Len(PayloadItems(LabPayload{Items: LineItems{{ID: "a"}, {ID: "b"}}}), 2)
}
