package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	ActivitySubjectBase    string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	TimeZone               string
	PlanCacheTTL           time.Duration
	EvidenceMaxSizeMB      int
	PDFRenderURL           string
	PDFRenderTimeout       time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PLANO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Plano API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "plano/evidence")
	v.SetDefault("activity.subject_base", "plano.activity")
	v.SetDefault("time.zone", "America/Sao_Paulo")
	v.SetDefault("plan.cache_ttl", "5m")
	v.SetDefault("evidence.max_size_mb", 10)
	v.SetDefault("pdf.render_timeout", "30s")

	ttlString := v.GetString("plan.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}
	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid plan cache ttl: %w", err)
	}

	renderTimeoutString := v.GetString("pdf.render_timeout")
	if renderTimeoutString == "" {
		renderTimeoutString = "30s"
	}
	renderTimeout, err := time.ParseDuration(renderTimeoutString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid pdf render timeout: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		ActivitySubjectBase:    v.GetString("activity.subject_base"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		TimeZone:               v.GetString("time.zone"),
		PlanCacheTTL:           ttl,
		EvidenceMaxSizeMB:      v.GetInt("evidence.max_size_mb"),
		PDFRenderURL:           v.GetString("pdf.render_url"),
		PDFRenderTimeout:       renderTimeout,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.EvidenceMaxSizeMB <= 0 {
		cfg.EvidenceMaxSizeMB = 10
	}

	return cfg, nil
}
