package services

import (
	"context"
	"encoding/json"

	"panveliq/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SegmentService builds audience segments from contact imports.
type SegmentService struct {
	db *gorm.DB
}

func NewSegmentService(db *gorm.DB) *SegmentService {
	return &SegmentService{db: db}
}

// CreateSegmentInput carries the segment form plus an optional parsed
// import to seed contacts from.
type CreateSegmentInput struct {
	Name     string                 `json:"name" validate:"required,min=2"`
	ClientID string                 `json:"clientId" validate:"required,uuid"`
	Platform models.SegmentPlatform `json:"platform" validate:"required,oneof=email whatsapp both all"`
	Import   *ImportResult          `json:"-"`
}

// CreateFromImport persists a segment and expands the import's rows into
// contact records. EstimatedSize is fixed at the import's row count and is
// not recomputed when contacts change later.
func (s *SegmentService) CreateFromImport(ctx context.Context, input *CreateSegmentInput) (*models.AudienceSegment, error) {
	segment := &models.AudienceSegment{
		Name:     input.Name,
		ClientID: input.ClientID,
		Platform: input.Platform,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Import != nil {
			segment.EstimatedSize = input.Import.EstimatedSize

			raw, err := json.Marshal(input.Import.Rows)
			if err != nil {
				return err
			}
			segment.ContactsData = datatypes.JSON(raw)
		}

		if err := tx.Create(segment).Error; err != nil {
			return err
		}

		if input.Import != nil {
			for _, row := range input.Import.Rows {
				contact := models.SegmentContact{
					SegmentID: segment.ID,
					Name:      row["name"],
					Email:     row["email"],
					Phone:     row["phone"],
					Company:   row["company"],
				}
				if extra := extraColumns(row); extra != nil {
					meta, err := json.Marshal(extra)
					if err != nil {
						return err
					}
					contact.Metadata = datatypes.JSON(meta)
				}
				if err := tx.Create(&contact).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return segment, nil
}

// extraColumns returns whatever the import row carried beyond the
// template's known columns.
func extraColumns(row map[string]string) map[string]string {
	known := map[string]bool{"name": true, "email": true, "phone": true, "company": true}
	var extra map[string]string
	for k, v := range row {
		if known[k] || v == "" {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = v
	}
	return extra
}
