package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Storage  StorageConfig
	SMTP     SMTPConfig
	WhatsApp WhatsAppConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	Name      string
	ParseTime bool
}

type JWTConfig struct {
	Secret string
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

type StorageConfig struct {
	S3 S3Config
}

type S3Config struct {
	BucketName string
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromEmail   string
	MaxSendRate int
}

type WhatsAppConfig struct {
	APIBaseURL  string
	AccessToken string
	PhoneID     string
}

type WorkerConfig struct {
	Concurrency int
}

var current *Config

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:      getEnv("MYSQL_HOST", "localhost"),
			Port:      getEnvAsInt("MYSQL_PORT", 3306),
			User:      getEnv("MYSQL_USER", "panveliq"),
			Password:  getEnv("MYSQL_PASSWORD", ""),
			Name:      getEnv("MYSQL_DB", "panveliq"),
			ParseTime: true,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-me"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			S3: S3Config{
				BucketName: getEnv("S3_BUCKET", ""),
				Endpoint:   getEnv("S3_ENDPOINT", ""),
				Region:     getEnv("S3_REGION", "us-east-1"),
				AccessKey:  getEnv("S3_ACCESS_KEY", ""),
				SecretKey:  getEnv("S3_SECRET_KEY", ""),
			},
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", "localhost"),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			FromEmail:   getEnv("SMTP_FROM_EMAIL", "no-reply@panveliq.com"),
			MaxSendRate: getEnvAsInt("SMTP_MAX_SEND_RATE", 10),
		},
		WhatsApp: WhatsAppConfig{
			APIBaseURL:  getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v18.0"),
			AccessToken: getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneID:     getEnv("WHATSAPP_PHONE_ID", ""),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 10),
		},
	}

	current = cfg
	return cfg, nil
}

// GetConfig returns the last loaded configuration.
func GetConfig() *Config {
	if current == nil {
		current, _ = Load()
	}
	return current
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
