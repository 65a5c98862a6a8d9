package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or a config file.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	AppPort         string        `mapstructure:"APP_PORT" validate:"required"`
	APIBasePath     string        `mapstructure:"API_BASE_PATH" validate:"required,startswith=/"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER" validate:"required,oneof=postgres sqlite"`
	DatabaseDSN    string `mapstructure:"DATABASE_DSN" validate:"required"`

	JWTSecret string        `mapstructure:"JWT_SECRET" validate:"required"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL" validate:"required"`

	CORSOrigin string `mapstructure:"CORS_ORIGIN" validate:"required"`

	GoogleClientID      string        `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret  string        `mapstructure:"GOOGLE_CLIENT_SECRET" validate:"required_with=GoogleClientID"`
	GoogleCallbackURL   string        `mapstructure:"GOOGLE_CALLBACK_URL" validate:"required_with=GoogleClientID"`
	FrontendCallbackURL string        `mapstructure:"FRONTEND_CALLBACK_URL" validate:"required,url"`
	OAuthStateTTL       time.Duration `mapstructure:"OAUTH_STATE_TTL" validate:"required"`
	RedisURL            string        `mapstructure:"REDIS_URL"`

	AssetBackend        string `mapstructure:"ASSET_BACKEND" validate:"required,oneof=cloudinary s3 none"`
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME" validate:"required_if=AssetBackend cloudinary"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY" validate:"required_if=AssetBackend cloudinary"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET" validate:"required_if=AssetBackend cloudinary"`
	AssetFolder         string `mapstructure:"ASSET_FOLDER" validate:"required"`
	S3Bucket            string `mapstructure:"S3_BUCKET" validate:"required_if=AssetBackend s3"`
	S3Region            string `mapstructure:"S3_REGION"`
	S3Endpoint          string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey         string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey         string `mapstructure:"S3_SECRET_KEY"`
	S3UsePathStyle      bool   `mapstructure:"S3_USE_PATH_STYLE"`
	S3PublicBaseURL     string `mapstructure:"S3_PUBLIC_BASE_URL"`

	RabbitMQURL       string `mapstructure:"RABBITMQ_URL"`
	ReconcileSchedule string `mapstructure:"RECONCILE_SCHEDULE"`

	DefaultProfileImage string `mapstructure:"DEFAULT_PROFILE_IMAGE" validate:"required"`
}

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	keys = []string{
		"APP_ENV", "APP_PORT", "API_BASE_PATH", "SHUTDOWN_TIMEOUT",
		"LOG_LEVEL", "LOG_FORMAT",
		"DATABASE_DRIVER", "DATABASE_DSN",
		"JWT_SECRET", "TOKEN_TTL",
		"CORS_ORIGIN",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_CALLBACK_URL",
		"FRONTEND_CALLBACK_URL", "OAUTH_STATE_TTL", "REDIS_URL",
		"ASSET_BACKEND",
		"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET", "ASSET_FOLDER",
		"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_USE_PATH_STYLE", "S3_PUBLIC_BASE_URL",
		"RABBITMQ_URL", "RECONCILE_SCHEDULE",
		"DEFAULT_PROFILE_IMAGE",
	}
)

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("API_BASE_PATH", "/api")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("TOKEN_TTL", "1h")
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("FRONTEND_CALLBACK_URL", "http://localhost:5173/auth/callback")
	v.SetDefault("OAUTH_STATE_TTL", "10m")
	v.SetDefault("ASSET_BACKEND", "none")
	v.SetDefault("ASSET_FOLDER", "user_profiles")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("RECONCILE_SCHEDULE", "@hourly")
	v.SetDefault("DEFAULT_PROFILE_IMAGE", "/assets/images/default-profile.png")

	// Optional config file
	_ = v.ReadInConfig()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}
