package services

import (
	"encoding/json"
	"errors"
	"strings"

	"panveliq/internal/models"

	"gorm.io/gorm"
)

// ErrNoRecipients is returned when a segment yields no usable recipients
// for the requested channel. Callers must block the send entirely.
var ErrNoRecipients = errors.New("segment has no resolvable recipients for this channel")

// phone fields are probed in priority order; a bare string entry without an
// "@" is itself treated as a phone number.
var phoneFields = []string{"phone", "Phone", "mobile", "Mobile"}
var emailFields = []string{"email", "Email"}

// RecipientService turns audience segments into flat recipient lists at
// campaign-creation time.
type RecipientService struct {
	db *gorm.DB
}

func NewRecipientService(db *gorm.DB) *RecipientService {
	return &RecipientService{db: db}
}

// Resolve loads the segment and derives its recipient list for the channel.
func (s *RecipientService) Resolve(segmentID string, channel models.CampaignChannel) ([]string, error) {
	var segment models.AudienceSegment
	if err := s.db.Preload("Contacts").First(&segment, "id = ?", segmentID).Error; err != nil {
		return nil, err
	}

	rows, err := SegmentRows(&segment)
	if err != nil {
		return nil, err
	}

	recipients := DeriveRecipients(rows, channel)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	return recipients, nil
}

// SegmentRows flattens a segment's contacts into generic rows, whichever of
// the two storage shapes the segment uses.
func SegmentRows(segment *models.AudienceSegment) ([]interface{}, error) {
	if len(segment.Contacts) > 0 {
		rows := make([]interface{}, 0, len(segment.Contacts))
		for _, c := range segment.Contacts {
			rows = append(rows, map[string]interface{}{
				"name":    c.Name,
				"email":   c.Email,
				"phone":   c.Phone,
				"company": c.Company,
			})
		}
		return rows, nil
	}

	if len(segment.ContactsData) == 0 {
		return nil, nil
	}

	var rows []interface{}
	if err := json.Unmarshal(segment.ContactsData, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeriveRecipients extracts one address per contact row for the channel.
// Rows that do not resolve are dropped; blank or whitespace-only values are
// never emitted.
func DeriveRecipients(rows []interface{}, channel models.CampaignChannel) []string {
	var out []string
	for _, row := range rows {
		if value := DeriveRecipient(row, channel); value != "" {
			out = append(out, value)
		}
	}
	return out
}

// DeriveRecipient resolves one row to an address for the channel, empty
// when the row has none.
func DeriveRecipient(row interface{}, channel models.CampaignChannel) string {
	switch channel {
	case models.CampaignChannelWhatsApp:
		return derivePhone(row)
	case models.CampaignChannelEmail:
		return deriveEmail(row)
	default:
		return ""
	}
}

// RecipientMergeValues maps each resolvable recipient to its row's string
// fields, the values a {{variable}} message merge substitutes. Bare string
// rows carry no fields and are skipped.
func RecipientMergeValues(rows []interface{}, channel models.CampaignChannel) map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, row := range rows {
		addr := DeriveRecipient(row, channel)
		if addr == "" {
			continue
		}
		fields, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		values := make(map[string]string, len(fields))
		for key, raw := range fields {
			if s, ok := raw.(string); ok {
				values[key] = s
			}
		}
		out[addr] = values
	}
	return out
}

func derivePhone(row interface{}) string {
	switch v := row.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed != "" && !strings.Contains(trimmed, "@") {
			return trimmed
		}
		return ""
	case map[string]interface{}:
		for _, field := range phoneFields {
			if s := stringField(v, field); s != "" {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}

func deriveEmail(row interface{}) string {
	switch v := row.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.Contains(trimmed, "@") {
			return trimmed
		}
		return ""
	case map[string]interface{}:
		for _, field := range emailFields {
			if s := stringField(v, field); s != "" {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}

func stringField(row map[string]interface{}, field string) string {
	raw, ok := row[field]
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
