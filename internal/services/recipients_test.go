package services

import (
	"testing"

	"panveliq/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDeriveRecipientsWhatsApp(t *testing.T) {
	tests := []struct {
		name string
		rows []interface{}
		want []string
	}{
		{
			name: "lowercase phone field",
			rows: []interface{}{map[string]interface{}{"phone": "+5511999990000"}},
			want: []string{"+5511999990000"},
		},
		{
			name: "capitalized phone field",
			rows: []interface{}{map[string]interface{}{"Phone": "+5511999990001"}},
			want: []string{"+5511999990001"},
		},
		{
			name: "mobile fallback",
			rows: []interface{}{map[string]interface{}{"mobile": "+5511999990002"}},
			want: []string{"+5511999990002"},
		},
		{
			name: "phone wins over mobile",
			rows: []interface{}{map[string]interface{}{
				"phone":  "+5511999990003",
				"mobile": "+5511888880000",
			}},
			want: []string{"+5511999990003"},
		},
		{
			name: "bare string without at sign is a phone",
			rows: []interface{}{"+5511999990004"},
			want: []string{"+5511999990004"},
		},
		{
			name: "bare string with at sign is not a phone",
			rows: []interface{}{"someone@example.com"},
			want: nil,
		},
		{
			name: "rows without a phone are dropped",
			rows: []interface{}{
				map[string]interface{}{"email": "a@example.com"},
				map[string]interface{}{"phone": "+5511999990005"},
			},
			want: []string{"+5511999990005"},
		},
		{
			name: "whitespace only values are dropped",
			rows: []interface{}{map[string]interface{}{"phone": "   "}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveRecipients(tt.rows, models.CampaignChannelWhatsApp)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveRecipientsEmail(t *testing.T) {
	tests := []struct {
		name string
		rows []interface{}
		want []string
	}{
		{
			name: "lowercase email field",
			rows: []interface{}{map[string]interface{}{"email": "a@example.com"}},
			want: []string{"a@example.com"},
		},
		{
			name: "capitalized email field",
			rows: []interface{}{map[string]interface{}{"Email": "b@example.com"}},
			want: []string{"b@example.com"},
		},
		{
			name: "bare string with at sign is an email",
			rows: []interface{}{"c@example.com"},
			want: []string{"c@example.com"},
		},
		{
			name: "bare string without at sign is not an email",
			rows: []interface{}{"+5511999990000"},
			want: nil,
		},
		{
			name: "non string values are dropped",
			rows: []interface{}{42, nil, map[string]interface{}{"email": 7}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveRecipients(tt.rows, models.CampaignChannelEmail)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegmentRowsPrefersExpandedContacts(t *testing.T) {
	segment := &models.AudienceSegment{
		ContactsData: []byte(`[{"phone":"+111"}]`),
		Contacts: []models.SegmentContact{
			{Name: "Ana", Email: "ana@example.com", Phone: "+222"},
		},
	}

	rows, err := SegmentRows(segment)
	assert.NoError(t, err)
	assert.Len(t, rows, 1)

	phones := DeriveRecipients(rows, models.CampaignChannelWhatsApp)
	assert.Equal(t, []string{"+222"}, phones)
}

func TestSegmentRowsFallsBackToInlineData(t *testing.T) {
	segment := &models.AudienceSegment{
		ContactsData: []byte(`[{"email":"x@example.com"},"y@example.com"]`),
	}

	rows, err := SegmentRows(segment)
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	emails := DeriveRecipients(rows, models.CampaignChannelEmail)
	assert.Equal(t, []string{"x@example.com", "y@example.com"}, emails)
}

func TestSegmentRowsEmpty(t *testing.T) {
	rows, err := SegmentRows(&models.AudienceSegment{})
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecipientMergeValues(t *testing.T) {
	rows := []interface{}{
		map[string]interface{}{"email": "ana@example.com", "name": "Ana", "company": "Acme"},
		map[string]interface{}{"name": "No Address"},
		"bare@example.com",
	}

	values := RecipientMergeValues(rows, models.CampaignChannelEmail)

	assert.Len(t, values, 1)
	assert.Equal(t, map[string]string{
		"email":   "ana@example.com",
		"name":    "Ana",
		"company": "Acme",
	}, values["ana@example.com"])
	// Bare string rows resolve an address but carry no fields to merge.
	assert.NotContains(t, values, "bare@example.com")
}

func TestRecipientMergeValuesSkipsNonStringFields(t *testing.T) {
	rows := []interface{}{
		map[string]interface{}{"phone": "+5511999990000", "name": "Ana", "age": float64(30)},
	}

	values := RecipientMergeValues(rows, models.CampaignChannelWhatsApp)
	assert.Equal(t, map[string]string{"phone": "+5511999990000", "name": "Ana"}, values["+5511999990000"])
}
