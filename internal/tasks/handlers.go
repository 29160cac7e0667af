package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"panveliq/internal/models"
	"panveliq/internal/services"
	"panveliq/internal/utils"
	"panveliq/internal/utils/logger"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

var handlerLog = logger.New("worker")

// Handlers carry the dependencies the task processors need.
type Handlers struct {
	db        *gorm.DB
	campaigns *services.CampaignService
	proposals *services.ProposalService
	smtp      *utils.SMTPSender
	whatsapp  *utils.WhatsAppClient
	client    *TaskClient
}

func NewHandlers(db *gorm.DB, smtp *utils.SMTPSender, whatsapp *utils.WhatsAppClient, client *TaskClient) *Handlers {
	return &Handlers{
		db:        db,
		campaigns: services.NewCampaignService(db, client),
		proposals: services.NewProposalService(db),
		smtp:      smtp,
		whatsapp:  whatsapp,
		client:    client,
	}
}

// HandleCampaignDispatch sends a campaign to its recipient snapshot,
// recording a delivery or failure event per recipient.
func (h *Handlers) HandleCampaignDispatch(ctx context.Context, t *asynq.Task) error {
	var payload CampaignDispatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid dispatch payload: %v: %w", err, asynq.SkipRetry)
	}

	var campaign models.Campaign
	if err := h.db.First(&campaign, "id = ? AND is_deleted = ?", payload.CampaignID, false).Error; err != nil {
		return fmt.Errorf("campaign %s not found: %v: %w", payload.CampaignID, err, asynq.SkipRetry)
	}

	var recipients []string
	if err := json.Unmarshal(campaign.Recipients, &recipients); err != nil {
		return fmt.Errorf("campaign %s has invalid recipients: %v: %w", campaign.ID, err, asynq.SkipRetry)
	}

	if err := h.db.Model(&campaign).Update("status", models.CampaignStatusSending).Error; err != nil {
		return err
	}

	handlerLog.Info("dispatching campaign %s to %d recipients", campaign.ID, len(recipients))

	// Contact-field merge values only matter when the message carries
	// {{variable}} placeholders.
	var merge map[string]map[string]string
	if len(utils.ParseVariables(campaign.Subject+campaign.Message)) > 0 && campaign.SegmentID != "" {
		merge = h.segmentMergeValues(ctx, &campaign)
	}

	failed := 0
	if campaign.Channel == models.CampaignChannelEmail && merge == nil {
		// Uniform body: one rate-limited batch, per-recipient results.
		failures := h.smtp.SendBatch(recipients, campaign.Subject, campaign.Message, true)
		for _, recipient := range recipients {
			event, errMsg := models.CampaignEventDelivered, ""
			if sendErr, ok := failures[recipient]; ok {
				failed++
				event, errMsg = models.CampaignEventFailed, sendErr.Error()
			}
			if recErr := h.campaigns.RecordEvent(ctx, campaign.ID, recipient, event, errMsg); recErr != nil {
				handlerLog.Warn("failed to record event for %s: %v", recipient, recErr)
			}
		}
	} else {
		for _, recipient := range recipients {
			if err := h.deliver(ctx, &campaign, recipient, merge[recipient]); err != nil {
				failed++
				if recErr := h.campaigns.RecordEvent(ctx, campaign.ID, recipient, models.CampaignEventFailed, err.Error()); recErr != nil {
					handlerLog.Warn("failed to record event for %s: %v", recipient, recErr)
				}
				continue
			}
			if recErr := h.campaigns.RecordEvent(ctx, campaign.ID, recipient, models.CampaignEventDelivered, ""); recErr != nil {
				handlerLog.Warn("failed to record event for %s: %v", recipient, recErr)
			}
		}
	}

	status := models.CampaignStatusSent
	if failed == len(recipients) && len(recipients) > 0 {
		status = models.CampaignStatusFailed
	}
	if err := h.db.Model(&campaign).Update("status", status).Error; err != nil {
		return err
	}

	handlerLog.Success("campaign %s done, %d sent, %d failed", campaign.ID, len(recipients)-failed, failed)
	return nil
}

func (h *Handlers) deliver(ctx context.Context, campaign *models.Campaign, recipient string, values map[string]string) error {
	subject := utils.ReplaceVariables(campaign.Subject, values)
	body := utils.ReplaceVariables(campaign.Message, values)

	switch campaign.Channel {
	case models.CampaignChannelEmail:
		return h.smtp.Send(&utils.EmailMessage{
			To:      recipient,
			Subject: subject,
			Body:    body,
			HTML:    true,
		})
	case models.CampaignChannelWhatsApp:
		_, err := h.whatsapp.SendText(ctx, recipient, body)
		return err
	default:
		return fmt.Errorf("unknown channel %s", campaign.Channel)
	}
}

// segmentMergeValues loads the campaign's source segment and maps each
// recipient to its contact fields. A missing segment degrades to an unmerged
// send rather than failing the dispatch.
func (h *Handlers) segmentMergeValues(ctx context.Context, campaign *models.Campaign) map[string]map[string]string {
	var segment models.AudienceSegment
	if err := h.db.WithContext(ctx).Preload("Contacts").First(&segment, "id = ?", campaign.SegmentID).Error; err != nil {
		handlerLog.Warn("campaign %s: segment %s unavailable for merge: %v", campaign.ID, campaign.SegmentID, err)
		return nil
	}
	rows, err := services.SegmentRows(&segment)
	if err != nil {
		handlerLog.Warn("campaign %s: unreadable segment rows: %v", campaign.ID, err)
		return nil
	}
	return services.RecipientMergeValues(rows, campaign.Channel)
}

// HandleFlowExecute runs one step of a triggered flow for one recipient and
// chains the next step.
func (h *Handlers) HandleFlowExecute(ctx context.Context, t *asynq.Task) error {
	var payload FlowExecutePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid flow payload: %v: %w", err, asynq.SkipRetry)
	}

	var flow models.TriggeredFlow
	if err := h.db.First(&flow, "id = ? AND is_deleted = ?", payload.FlowID, false).Error; err != nil {
		return fmt.Errorf("flow %s not found: %v: %w", payload.FlowID, err, asynq.SkipRetry)
	}
	if !flow.IsActive {
		handlerLog.Info("flow %s deactivated, dropping run for %s", flow.ID, payload.Recipient)
		return nil
	}

	steps, err := services.DecodeFlowSteps(flow.Steps)
	if err != nil {
		return fmt.Errorf("flow %s: %v: %w", flow.ID, err, asynq.SkipRetry)
	}
	if payload.StepIndex >= len(steps) {
		return nil
	}

	step := steps[payload.StepIndex]
	next := FlowExecutePayload{
		FlowID:    flow.ID,
		Recipient: payload.Recipient,
		StepIndex: payload.StepIndex + 1,
	}

	switch step.Action {
	case models.FlowActionSendMessage:
		body := utils.ReplaceVariables(step.Template, map[string]string{"recipient": payload.Recipient})
		if flow.Channel == models.CampaignChannelEmail {
			err = h.smtp.Send(&utils.EmailMessage{To: payload.Recipient, Subject: flow.Name, Body: body, HTML: true})
		} else {
			_, err = h.whatsapp.SendText(ctx, payload.Recipient, body)
		}
		if err != nil {
			return err
		}
		return h.client.EnqueueFlowExecution(ctx, next, 0)
	case models.FlowActionWait:
		return h.client.EnqueueFlowExecution(ctx, next, stepDelay(step))
	case models.FlowActionAddTag:
		// Tags live on segment contact metadata; tagging is recorded and the
		// flow moves on.
		handlerLog.Info("flow %s tagged %s with %s", flow.ID, payload.Recipient, step.Template)
		return h.client.EnqueueFlowExecution(ctx, next, 0)
	default:
		return fmt.Errorf("flow %s step %d: unknown action: %w", flow.ID, payload.StepIndex, asynq.SkipRetry)
	}
}

func stepDelay(step models.FlowStep) time.Duration {
	return time.Duration(step.DelayMinutes) * time.Minute
}

// HandleShareLinkExpire sweeps expired proposal share links.
func (h *Handlers) HandleShareLinkExpire(ctx context.Context, t *asynq.Task) error {
	expired, err := h.proposals.ExpireStaleLinks()
	if err != nil {
		return err
	}
	if expired > 0 {
		handlerLog.Info("expired %d share links", expired)
	}
	return nil
}
