package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"panveliq/internal/models"
	"panveliq/internal/utils/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var campaignLog = logger.New("campaigns")

var (
	ErrScheduledTimeRequired = errors.New("scheduled campaigns require a future send time")
	ErrCampaignNotSendable   = errors.New("campaign is not in a sendable state")
)

// CampaignEnqueuer is how the campaign service hands work to the background
// queue without depending on it.
type CampaignEnqueuer interface {
	EnqueueCampaignDispatch(ctx context.Context, campaignID string) error
	EnqueueCampaignSchedule(ctx context.Context, campaignID string, at time.Time) error
}

// CampaignService creates campaigns with denormalized recipient lists and
// drives the send lifecycle.
type CampaignService struct {
	db         *gorm.DB
	recipients *RecipientService
	enqueuer   CampaignEnqueuer
}

func NewCampaignService(db *gorm.DB, enqueuer CampaignEnqueuer) *CampaignService {
	return &CampaignService{
		db:         db,
		recipients: NewRecipientService(db),
		enqueuer:   enqueuer,
	}
}

// CreateCampaignInput is the campaign composer form.
type CreateCampaignInput struct {
	Name         string                 `json:"name" validate:"required,min=2"`
	Channel      models.CampaignChannel `json:"channel" validate:"required,oneof=whatsapp email"`
	ClientID     string                 `json:"clientId" validate:"required,uuid"`
	SegmentID    string                 `json:"segmentId" validate:"required,uuid"`
	Subject      string                 `json:"subject"`
	Message      string                 `json:"message" validate:"required"`
	ScheduleType models.ScheduleType    `json:"scheduleType" validate:"required,oneof=immediate scheduled"`
	ScheduledFor time.Time              `json:"scheduledFor"`
}

// Create resolves the segment into a recipient snapshot and persists the
// campaign. A segment with no usable recipients for the channel blocks
// creation outright.
func (s *CampaignService) Create(ctx context.Context, input *CreateCampaignInput) (*models.Campaign, error) {
	if input.ScheduleType == models.ScheduleTypeScheduled && !input.ScheduledFor.After(time.Now()) {
		return nil, ErrScheduledTimeRequired
	}

	recipients, err := s.recipients.Resolve(input.SegmentID, input.Channel)
	if err != nil {
		return nil, err
	}

	recipientsJSON, err := json.Marshal(recipients)
	if err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		Name:         input.Name,
		Channel:      input.Channel,
		ClientID:     input.ClientID,
		SegmentID:    input.SegmentID,
		Recipients:   datatypes.JSON(recipientsJSON),
		Subject:      input.Subject,
		Message:      input.Message,
		ScheduleType: input.ScheduleType,
		ScheduledFor: input.ScheduledFor,
		Status:       models.CampaignStatusDraft,
	}
	if err := s.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return nil, err
	}

	campaignLog.Info("created campaign %s with %d recipients", campaign.ID, len(recipients))
	return campaign, nil
}

// Send moves a draft into the queue. Scheduled campaigns get a delayed
// dispatch task; immediate ones dispatch right away.
func (s *CampaignService) Send(ctx context.Context, campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.WithContext(ctx).First(&campaign, "id = ? AND is_deleted = ?", campaignID, false).Error; err != nil {
		return nil, err
	}

	if campaign.Status != models.CampaignStatusDraft {
		return nil, fmt.Errorf("%w: %s", ErrCampaignNotSendable, campaign.Status)
	}

	if campaign.ScheduleType == models.ScheduleTypeScheduled {
		if err := s.enqueuer.EnqueueCampaignSchedule(ctx, campaign.ID, campaign.ScheduledFor); err != nil {
			return nil, err
		}
		campaign.Status = models.CampaignStatusScheduled
	} else {
		if err := s.enqueuer.EnqueueCampaignDispatch(ctx, campaign.ID); err != nil {
			return nil, err
		}
		campaign.Status = models.CampaignStatusSending
	}

	if err := s.db.WithContext(ctx).Model(&campaign).Update("status", campaign.Status).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// RecordEvent appends a delivery event and bumps the matching counter.
func (s *CampaignService) RecordEvent(ctx context.Context, campaignID, recipient string, event models.CampaignEventType, errMsg string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := models.CampaignEvent{
			CampaignID: campaignID,
			Recipient:  recipient,
			Event:      event,
			Error:      errMsg,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var column string
		switch event {
		case models.CampaignEventDelivered:
			column = "delivered"
		case models.CampaignEventOpened:
			column = "opened"
		case models.CampaignEventClicked:
			column = "clicked"
		default:
			return nil
		}
		return tx.Model(&models.Campaign{}).
			Where("id = ?", campaignID).
			Update(column, gorm.Expr(column+" + 1")).Error
	})
}

// AnalyticsSummary aggregates delivery stats across a client's campaigns.
type AnalyticsSummary struct {
	Campaigns int64   `json:"campaigns"`
	Sent      int64   `json:"sent"`
	Delivered int64   `json:"delivered"`
	Opened    int64   `json:"opened"`
	Clicked   int64   `json:"clicked"`
	OpenRate  float64 `json:"openRate"`
	ClickRate float64 `json:"clickRate"`
}

func (s *CampaignService) Analytics(ctx context.Context, clientID string) (*AnalyticsSummary, error) {
	query := s.db.WithContext(ctx).Model(&models.Campaign{}).Where("is_deleted = ?", false)
	if clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	summary := &AnalyticsSummary{}
	if err := query.Count(&summary.Campaigns).Error; err != nil {
		return nil, err
	}

	row := struct {
		Sent      int64
		Delivered int64
		Opened    int64
		Clicked   int64
	}{}
	sums := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Select("COUNT(CASE WHEN status = 'sent' THEN 1 END) AS sent, COALESCE(SUM(delivered),0) AS delivered, COALESCE(SUM(opened),0) AS opened, COALESCE(SUM(clicked),0) AS clicked").
		Where("is_deleted = ?", false)
	if clientID != "" {
		sums = sums.Where("client_id = ?", clientID)
	}
	if err := sums.Scan(&row).Error; err != nil {
		return nil, err
	}

	summary.Sent = row.Sent
	summary.Delivered = row.Delivered
	summary.Opened = row.Opened
	summary.Clicked = row.Clicked
	if summary.Delivered > 0 {
		summary.OpenRate = float64(summary.Opened) / float64(summary.Delivered)
		summary.ClickRate = float64(summary.Clicked) / float64(summary.Delivered)
	}
	return summary, nil
}
