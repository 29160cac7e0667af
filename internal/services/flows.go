package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"panveliq/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNoFlowSteps  = errors.New("a flow needs at least one step")
	ErrFlowInactive = errors.New("flow is not active")
)

// FlowEnqueuer starts flow runs on the background queue.
type FlowEnqueuer interface {
	EnqueueFlowStart(ctx context.Context, flowID, recipient string) error
}

// ValidateFlowSteps checks the ordered step list a flow stores as JSON.
// Step order is array order.
func ValidateFlowSteps(steps []models.FlowStep) error {
	if len(steps) == 0 {
		return ErrNoFlowSteps
	}
	for i, step := range steps {
		switch step.Action {
		case models.FlowActionSendMessage:
			if step.Template == "" {
				return fmt.Errorf("step %d: send_message requires a template", i+1)
			}
		case models.FlowActionWait:
			if step.DelayMinutes <= 0 {
				return fmt.Errorf("step %d: wait requires a positive delay", i+1)
			}
		case models.FlowActionAddTag:
			if step.Template == "" {
				return fmt.Errorf("step %d: add_tag requires a tag name", i+1)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}
	}
	return nil
}

// DecodeFlowSteps parses and validates a flow's stored step list.
func DecodeFlowSteps(raw []byte) ([]models.FlowStep, error) {
	var steps []models.FlowStep
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, fmt.Errorf("invalid flow steps: %w", err)
	}
	if err := ValidateFlowSteps(steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// EncodeFlowSteps serializes a validated step list for storage.
func EncodeFlowSteps(steps []models.FlowStep) (datatypes.JSON, error) {
	raw, err := json.Marshal(steps)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// FlowService manages triggered flows on top of generic CRUD.
type FlowService struct {
	db       *gorm.DB
	enqueuer FlowEnqueuer
}

func NewFlowService(db *gorm.DB, enqueuer FlowEnqueuer) *FlowService {
	return &FlowService{db: db, enqueuer: enqueuer}
}

// SetActive flips a flow's active state. Activation revalidates the steps
// so a flow broken by editing cannot be switched on.
func (s *FlowService) SetActive(ctx context.Context, flowID string, active bool) (*models.TriggeredFlow, error) {
	var flow models.TriggeredFlow
	if err := s.db.WithContext(ctx).First(&flow, "id = ? AND is_deleted = ?", flowID, false).Error; err != nil {
		return nil, err
	}

	if active {
		if _, err := DecodeFlowSteps(flow.Steps); err != nil {
			return nil, err
		}
	}

	if flow.IsActive != active {
		if err := s.db.WithContext(ctx).Model(&flow).Update("is_active", active).Error; err != nil {
			return nil, err
		}
		flow.IsActive = active
	}
	return &flow, nil
}

// ActiveFlowsForTrigger returns the flows a trigger event should execute.
func (s *FlowService) ActiveFlowsForTrigger(ctx context.Context, trigger models.FlowTrigger) ([]models.TriggeredFlow, error) {
	var flows []models.TriggeredFlow
	err := s.db.WithContext(ctx).
		Where("`trigger` = ? AND is_active = ? AND is_deleted = ?", trigger, true, false).
		Find(&flows).Error
	return flows, err
}

// Run starts an active flow at its first step for one recipient.
func (s *FlowService) Run(ctx context.Context, flowID, recipient string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return errors.New("recipient is required")
	}

	var flow models.TriggeredFlow
	if err := s.db.WithContext(ctx).First(&flow, "id = ? AND is_deleted = ?", flowID, false).Error; err != nil {
		return err
	}
	if !flow.IsActive {
		return ErrFlowInactive
	}
	if _, err := DecodeFlowSteps(flow.Steps); err != nil {
		return err
	}
	return s.enqueuer.EnqueueFlowStart(ctx, flow.ID, recipient)
}

// FlowRecipient picks the address a flow's channel delivers to. Empty when
// the subject has no address for that channel.
func FlowRecipient(flow *models.TriggeredFlow, addresses map[models.CampaignChannel]string) string {
	return strings.TrimSpace(addresses[flow.Channel])
}

// RunsForTrigger starts every active flow bound to the trigger. Flows whose
// channel has no address for this subject are skipped.
func (s *FlowService) RunsForTrigger(ctx context.Context, trigger models.FlowTrigger, addresses map[models.CampaignChannel]string) error {
	flows, err := s.ActiveFlowsForTrigger(ctx, trigger)
	if err != nil {
		return err
	}
	for i := range flows {
		recipient := FlowRecipient(&flows[i], addresses)
		if recipient == "" {
			continue
		}
		if err := s.enqueuer.EnqueueFlowStart(ctx, flows[i].ID, recipient); err != nil {
			return err
		}
	}
	return nil
}
