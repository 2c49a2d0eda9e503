package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    Mode
	}{
		{"single email", []string{"email", "company", "website"}, ModeSingleEmail},
		{"email substring", []string{"Work Email", "Company"}, ModeSingleEmail},
		{"multi email", []string{"email_1", "email_2", "company"}, ModeMultiEmail},
		{"multi beats single", []string{"email", "email_1", "email_2"}, ModeMultiEmail},
		{"one slot is single", []string{"email_1", "company"}, ModeSingleEmail},
		{"domain only website", []string{"website", "company"}, ModeDomainOnly},
		{"domain only url", []string{"URL", "name"}, ModeDomainOnly},
		{"domain only site", []string{"Site", "name"}, ModeDomainOnly},
		{"domain only underscore joined", []string{"company_website", "company"}, ModeDomainOnly},
		{"domain only dash joined", []string{"company-url", "company"}, ModeDomainOnly},
		{"email beats domain", []string{"email", "website"}, ModeSingleEmail},
		{"unknown", []string{"name", "phone"}, ModeUnknown},
		{"empty", nil, ModeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.headers))
		})
	}
}

func TestEmailSlots(t *testing.T) {
	slots := EmailSlots([]string{"email_1", "email_1_full_name", "email_2", "company", "Email_3"})

	assert.Equal(t, []Slot{
		{Header: "email_1", Number: "1"},
		{Header: "email_2", Number: "2"},
		{Header: "Email_3", Number: "3"},
	}, slots)
}

func TestMapping_Validate(t *testing.T) {
	m := Mapping{RoleEmail: "email"}
	assert.NoError(t, m.Validate(ModeSingleEmail))
	assert.Error(t, m.Validate(ModeDomainOnly))

	assert.Error(t, Mapping{}.Validate(ModeSingleEmail))
	assert.NoError(t, Mapping{}.Validate(ModeMultiEmail))
	assert.NoError(t, Mapping{RoleWebsite: "site"}.Validate(ModeDomainOnly))
	assert.NoError(t, Mapping{}.Validate(ModeUnknown))
}

func TestAutoMap(t *testing.T) {
	m := AutoMap([]string{"Work Email", "Company Name", "Website", "First Name", "Last Name", "Job Title", "Phone Number"})

	assert.Equal(t, "Work Email", m.Header(RoleEmail))
	assert.Equal(t, "Company Name", m.Header(RoleCompany))
	assert.Equal(t, "Website", m.Header(RoleWebsite))
	assert.Equal(t, "First Name", m.Header(RoleFirstName))
	assert.Equal(t, "Last Name", m.Header(RoleLastName))
	assert.Equal(t, "Job Title", m.Header(RoleTitle))
	assert.Equal(t, "Phone Number", m.Header(RolePhone))
}

func TestAutoMap_SlotColumnsNotEmail(t *testing.T) {
	m := AutoMap([]string{"email_1", "email_2", "company"})
	assert.False(t, m.Has(RoleEmail))
	assert.Equal(t, "company", m.Header(RoleCompany))
}

func TestAutoMap_ExactBeatsSubstring(t *testing.T) {
	m := AutoMap([]string{"email opt-out", "email"})
	assert.Equal(t, "email", m.Header(RoleEmail))
}
