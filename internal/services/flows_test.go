package services

import (
	"context"
	"testing"

	"panveliq/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFlowSteps(t *testing.T) {
	tests := []struct {
		name    string
		steps   []models.FlowStep
		wantErr string
	}{
		{
			name:    "empty",
			steps:   nil,
			wantErr: "at least one step",
		},
		{
			name: "valid sequence",
			steps: []models.FlowStep{
				{Action: models.FlowActionSendMessage, Template: "Welcome!"},
				{Action: models.FlowActionWait, DelayMinutes: 60},
				{Action: models.FlowActionAddTag, Template: "onboarded"},
			},
		},
		{
			name:    "send without template",
			steps:   []models.FlowStep{{Action: models.FlowActionSendMessage}},
			wantErr: "requires a template",
		},
		{
			name:    "wait without delay",
			steps:   []models.FlowStep{{Action: models.FlowActionWait}},
			wantErr: "positive delay",
		},
		{
			name:    "unknown action",
			steps:   []models.FlowStep{{Action: "jump"}},
			wantErr: "unknown action",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFlowSteps(tt.steps)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeFlowSteps(t *testing.T) {
	steps := []models.FlowStep{
		{Action: models.FlowActionSendMessage, Template: "Hi {{name}}"},
		{Action: models.FlowActionWait, DelayMinutes: 30},
	}

	raw, err := EncodeFlowSteps(steps)
	require.NoError(t, err)

	decoded, err := DecodeFlowSteps(raw)
	require.NoError(t, err)
	assert.Equal(t, steps, decoded)
}

func TestDecodeFlowStepsRejectsInvalid(t *testing.T) {
	_, err := DecodeFlowSteps([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeFlowSteps([]byte(`[{"action":"wait","delayMinutes":0}]`))
	assert.Error(t, err)
}

func TestFlowRecipient(t *testing.T) {
	addresses := map[models.CampaignChannel]string{
		models.CampaignChannelEmail:    "ana@example.com",
		models.CampaignChannelWhatsApp: " +5511999990000 ",
	}

	tests := []struct {
		name    string
		channel models.CampaignChannel
		want    string
	}{
		{name: "email channel", channel: models.CampaignChannelEmail, want: "ana@example.com"},
		{name: "whatsapp channel trims", channel: models.CampaignChannelWhatsApp, want: "+5511999990000"},
		{name: "unknown channel", channel: "sms", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := models.TriggeredFlow{Channel: tt.channel}
			assert.Equal(t, tt.want, FlowRecipient(&flow, addresses))
		})
	}
}

func TestFlowRecipientMissingAddress(t *testing.T) {
	flow := models.TriggeredFlow{Channel: models.CampaignChannelWhatsApp}
	assert.Empty(t, FlowRecipient(&flow, map[models.CampaignChannel]string{
		models.CampaignChannelEmail: "ana@example.com",
	}))
}

func TestFlowRunRequiresRecipient(t *testing.T) {
	svc := NewFlowService(nil, nil)
	err := svc.Run(context.Background(), "flow-1", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient is required")
}
