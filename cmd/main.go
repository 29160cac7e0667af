package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"panveliq/internal/api"
	"panveliq/internal/config"
	"panveliq/internal/db"
	"panveliq/internal/events"
	"panveliq/internal/models"
	"panveliq/internal/services"
	"panveliq/internal/tasks"
	"panveliq/internal/utils"
	"panveliq/internal/utils/logger"

	"github.com/joho/godotenv"
)

var log = logger.New("main")

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", err)
		os.Exit(1)
	}

	if err := db.Connect(cfg); err != nil {
		log.Error("failed to connect to database", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Success("database connected")

	if err := models.SeedPermissions(db.GetDB()); err != nil {
		log.Error("failed to seed permissions", err)
		os.Exit(1)
	}
	if err := models.CreateAdminFromEnv(db.GetDB()); err != nil {
		log.Warn("admin bootstrap skipped: %v", err)
	}

	storage, err := services.NewS3Service(cfg.Storage.S3)
	if err != nil {
		log.Error("failed to initialize storage", err)
		os.Exit(1)
	}
	models.RegisterFileURLGenerator(storage)

	redisClient, err := utils.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	smtpSender := utils.NewSMTPSender(cfg.SMTP)
	whatsappClient := utils.NewWhatsAppClient(cfg.WhatsApp)

	taskClient := tasks.NewTaskClient(cfg.Redis)
	defer taskClient.Close()

	registerMailListeners(smtpSender)
	registerFlowTriggers(taskClient)

	taskHandlers := tasks.NewHandlers(db.GetDB(), smtpSender, whatsappClient, taskClient)
	taskServer := tasks.NewTaskServer(cfg, taskHandlers)
	if err := taskServer.Start(); err != nil {
		log.Error("failed to start task server", err)
		os.Exit(1)
	}
	defer taskServer.Shutdown()

	scheduler := tasks.NewScheduler(cfg.Redis)
	if err := scheduler.Start(); err != nil {
		log.Error("failed to start scheduler", err)
		os.Exit(1)
	}
	defer scheduler.Shutdown()

	server := api.NewServer(cfg, db.GetDB(), redisClient, taskClient, storage)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server exited", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := server.Shutdown(context.Background()); err != nil {
		log.Error("forced shutdown", err)
	}
}

// registerMailListeners wires the transactional emails that hang off the
// event bus.
func registerMailListeners(sender *utils.SMTPSender) {
	events.On("user.invited", func(payload interface{}) {
		user, ok := payload.(*models.User)
		if !ok {
			return
		}
		err := sender.Send(&utils.EmailMessage{
			To:      user.Email,
			Subject: "You have been invited to PanvelIQ",
			Body:    "An administrator has created an account for you. Sign in to set your password and get started.",
		})
		if err != nil {
			log.Warn("failed to send invite to %s: %v", user.Email, err)
		}
	})

	events.On("proposal.sent", func(payload interface{}) {
		proposal, ok := payload.(*models.ProjectProposal)
		if !ok {
			return
		}
		if err := services.SendProposalEmail(sender, proposal); err != nil {
			log.Warn("failed to email proposal %s to %s: %v", proposal.ID, proposal.ProspectEmail, err)
		}
	})

	events.On("user.password_reset_requested", func(payload interface{}) {
		reset, ok := payload.(*models.PasswordReset)
		if !ok {
			return
		}
		var user models.User
		if err := db.GetDB().First(&user, "id = ?", reset.UserID).Error; err != nil {
			return
		}
		err := sender.Send(&utils.EmailMessage{
			To:      user.Email,
			Subject: "Reset your PanvelIQ password",
			Body:    "Use this code to reset your password: " + reset.Code,
		})
		if err != nil {
			log.Warn("failed to send reset email to %s: %v", user.Email, err)
		}
	})
}

// registerFlowTriggers connects lifecycle events to triggered-flow runs.
func registerFlowTriggers(taskClient *tasks.TaskClient) {
	flows := services.NewFlowService(db.GetDB(), taskClient)

	events.On("user.registered", func(payload interface{}) {
		user, ok := payload.(*models.User)
		if !ok {
			return
		}
		err := flows.RunsForTrigger(context.Background(), models.FlowTriggerSignup,
			map[models.CampaignChannel]string{
				models.CampaignChannelEmail: user.Email,
			})
		if err != nil {
			log.Warn("failed to start signup flows for %s: %v", user.Email, err)
		}
	})
}
