package tasks

import "time"

// Task type names.
const (
	TypeCampaignDispatch = "campaign:dispatch"
	TypeCampaignSchedule = "campaign:schedule"
	TypeFlowExecute      = "flow:execute"
	TypeShareLinkExpire  = "sharelink:expire"
)

// Queue names, highest priority first.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Retry and timeout defaults.
const (
	DefaultRetry   = 3
	DefaultTimeout = 5 * time.Minute

	DispatchRetry   = 5
	DispatchTimeout = 30 * time.Minute
)

// CampaignDispatchPayload identifies the campaign to send out.
type CampaignDispatchPayload struct {
	CampaignID string `json:"campaignId"`
}

// FlowExecutePayload carries one flow run for one contact.
type FlowExecutePayload struct {
	FlowID    string `json:"flowId"`
	Recipient string `json:"recipient"`
	StepIndex int    `json:"stepIndex"`
}
