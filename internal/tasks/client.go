package tasks

import (
	"context"
	"encoding/json"
	"time"

	"panveliq/internal/config"
	"panveliq/internal/utils/logger"

	"github.com/hibiken/asynq"
)

var clientLog = logger.New("tasks")

// TaskClient enqueues background work. It satisfies
// services.CampaignEnqueuer.
type TaskClient struct {
	client *asynq.Client
}

func NewTaskClient(cfg config.RedisConfig) *TaskClient {
	return &TaskClient{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *TaskClient) Close() error {
	return c.client.Close()
}

// EnqueueCampaignDispatch queues an immediate campaign send.
func (c *TaskClient) EnqueueCampaignDispatch(ctx context.Context, campaignID string) error {
	payload, err := json.Marshal(CampaignDispatchPayload{CampaignID: campaignID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeCampaignDispatch, payload)
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(DispatchRetry),
		asynq.Timeout(DispatchTimeout),
	)
	if err != nil {
		return clientLog.Error("failed to enqueue campaign dispatch", err)
	}
	clientLog.Info("enqueued %s id=%s queue=%s", TypeCampaignDispatch, info.ID, info.Queue)
	return nil
}

// EnqueueCampaignSchedule queues a campaign send to run at its scheduled
// time.
func (c *TaskClient) EnqueueCampaignSchedule(ctx context.Context, campaignID string, at time.Time) error {
	payload, err := json.Marshal(CampaignDispatchPayload{CampaignID: campaignID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeCampaignSchedule, payload)
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(DispatchRetry),
		asynq.Timeout(DispatchTimeout),
		asynq.ProcessAt(at),
	)
	if err != nil {
		return clientLog.Error("failed to enqueue campaign schedule", err)
	}
	clientLog.Info("enqueued %s id=%s at=%s", TypeCampaignSchedule, info.ID, at.Format(time.RFC3339))
	return nil
}

// EnqueueFlowStart begins a flow run at its first step. It satisfies
// services.FlowEnqueuer.
func (c *TaskClient) EnqueueFlowStart(ctx context.Context, flowID, recipient string) error {
	return c.EnqueueFlowExecution(ctx, FlowExecutePayload{FlowID: flowID, Recipient: recipient}, 0)
}

// EnqueueFlowExecution queues one flow step for one recipient, delayed by
// the step's wait if any.
func (c *TaskClient) EnqueueFlowExecution(ctx context.Context, p FlowExecutePayload, delay time.Duration) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}

	opts := []asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(DefaultRetry),
		asynq.Timeout(DefaultTimeout),
	}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	task := asynq.NewTask(TypeFlowExecute, payload)
	if _, err := c.client.EnqueueContext(ctx, task, opts...); err != nil {
		return clientLog.Error("failed to enqueue flow execution", err)
	}
	return nil
}
