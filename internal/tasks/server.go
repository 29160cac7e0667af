package tasks

import (
	"panveliq/internal/config"
	"panveliq/internal/utils/logger"

	"github.com/hibiken/asynq"
)

var serverLog = logger.New("task-server")

// TaskServer runs the background worker pool.
type TaskServer struct {
	server   *asynq.Server
	handlers *Handlers
}

func NewTaskServer(cfg *config.Config, handlers *Handlers) *TaskServer {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
		},
	)

	return &TaskServer{server: server, handlers: handlers}
}

// Start registers handlers and runs the worker in the background.
func (s *TaskServer) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCampaignDispatch, s.handlers.HandleCampaignDispatch)
	mux.HandleFunc(TypeCampaignSchedule, s.handlers.HandleCampaignDispatch)
	mux.HandleFunc(TypeFlowExecute, s.handlers.HandleFlowExecute)
	mux.HandleFunc(TypeShareLinkExpire, s.handlers.HandleShareLinkExpire)

	if err := s.server.Start(mux); err != nil {
		return serverLog.Error("failed to start task server", err)
	}
	serverLog.Success("task server started")
	return nil
}

func (s *TaskServer) Shutdown() {
	s.server.Shutdown()
	serverLog.Info("task server stopped")
}
