package tasks

import (
	"panveliq/internal/config"
	"panveliq/internal/utils/logger"

	"github.com/hibiken/asynq"
)

var schedulerLog = logger.New("scheduler")

// Scheduler registers periodic tasks.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(cfg config.RedisConfig) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(
			asynq.RedisClientOpt{
				Addr:     cfg.Addr,
				Username: cfg.Username,
				Password: cfg.Password,
				DB:       cfg.DB,
			},
			nil,
		),
	}
}

// Start registers the periodic entries and runs the scheduler in the
// background.
func (s *Scheduler) Start() error {
	// Daily sweep of expired proposal share links.
	_, err := s.scheduler.Register("0 3 * * *",
		asynq.NewTask(TypeShareLinkExpire, nil),
		asynq.Queue(QueueLow),
	)
	if err != nil {
		return schedulerLog.Error("failed to register share link sweep", err)
	}

	if err := s.scheduler.Start(); err != nil {
		return schedulerLog.Error("failed to start scheduler", err)
	}
	schedulerLog.Success("scheduler started")
	return nil
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
	schedulerLog.Info("scheduler stopped")
}
