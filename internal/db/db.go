package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"panveliq/internal/config"
	"panveliq/internal/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=%t&loc=UTC",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.ParseTime,
	)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func runMigrations() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.PasswordReset{},
		&models.AuthSession{},
		&models.ClientProfile{},
		&models.AudienceSegment{},
		&models.SegmentContact{},
		&models.Campaign{},
		&models.CampaignEvent{},
		&models.TriggeredFlow{},
		&models.ProjectProposal{},
		&models.ProposalShareLink{},
		&models.ContentItem{},
		&models.File{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserPermission{},
		&models.AccessControlAudit{},
	)
}

func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
