package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"panveliq/internal/config"
	"panveliq/internal/services"
	"panveliq/internal/tasks"
	"panveliq/internal/utils/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var serverLog = logger.New("api")

// CustomValidator adapts go-playground/validator to echo's interface.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Server wraps the echo instance and its dependencies.
type Server struct {
	echo *echo.Echo
	cfg  *config.Config
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, taskClient *tasks.TaskClient, storage *services.S3Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	registerRoutes(e, cfg, db, redisClient, taskClient, storage)

	return &Server{echo: e, cfg: cfg}
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	serverLog.Info("listening on %s", addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return serverLog.Error("server stopped", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
