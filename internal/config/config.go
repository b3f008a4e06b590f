package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. Every value is explicit:
// services receive the sections they need through constructors and never
// read ambient process state.
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Analysis    AnalysisConfig
	Collector   CollectorConfig
	Export      ExportConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// AnalysisConfig holds the scoring configuration for one analysis run:
// the brand universe, the weight coefficients, and the fuzzy threshold.
type AnalysisConfig struct {
	TargetBrand         string
	CompetitorBrands    []string
	RankWeight          float64
	EngagementWeight    float64
	MentionWeight       float64
	SentimentWeight     float64
	FuzzyThreshold      float64
	Concurrency         int
	NormalizeEngagement bool
	EventsTopic         string
}

// CollectorConfig holds API keys and limits for the platform collectors.
type CollectorConfig struct {
	SerpAPIKey          string
	YouTubeAPIKey       string
	Region              string
	Language            string
	GoogleResultsCount  int
	YouTubeResultsCount int
	PrimaryKeywords     []string
}

// ExportConfig holds file export configuration.
type ExportConfig struct {
	Format    string
	OutputDir string
}

// Load loads configuration from environment variables.
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "sovlens"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Analysis: AnalysisConfig{
			TargetBrand:         getEnv("TARGET_BRAND", "Atomberg"),
			CompetitorBrands:    getEnvAsSlice("COMPETITOR_BRANDS", []string{"Havells", "Crompton", "Orient Electric", "Usha", "Bajaj", "Panasonic", "Syska", "Polycab", "Luminous"}),
			RankWeight:          getEnvAsFloat("SOV_RANK_WEIGHT", 1.0),
			EngagementWeight:    getEnvAsFloat("SOV_ENGAGEMENT_WEIGHT", 1.0),
			MentionWeight:       getEnvAsFloat("SOV_MENTION_WEIGHT", 0.5),
			SentimentWeight:     getEnvAsFloat("SOV_SENTIMENT_WEIGHT", 1.0),
			FuzzyThreshold:      getEnvAsFloat("SOV_FUZZY_THRESHOLD", 0.85),
			Concurrency:         getEnvAsInt("SOV_CONCURRENCY", 8),
			NormalizeEngagement: getEnvAsBool("SOV_NORMALIZE_ENGAGEMENT", true),
			EventsTopic:         getEnv("SOV_EVENTS_TOPIC", "sov"),
		},
		Collector: CollectorConfig{
			SerpAPIKey:          getEnv("SERPAPI_API_KEY", ""),
			YouTubeAPIKey:       getEnv("YOUTUBE_API_KEY", ""),
			Region:              getEnv("REGION", "IN"),
			Language:            getEnv("LANGUAGE", "en"),
			GoogleResultsCount:  getEnvAsInt("GOOGLE_RESULTS_COUNT", 30),
			YouTubeResultsCount: getEnvAsInt("YOUTUBE_RESULTS_COUNT", 40),
			PrimaryKeywords:     getEnvAsSlice("PRIMARY_KEYWORDS", []string{"smart fan", "BLDC fan"}),
		},
		Export: ExportConfig{
			Format:    getEnv("OUTPUT_FORMAT", "csv"),
			OutputDir: getEnv("OUTPUT_DIR", "data/reports"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid.
func validate(config Config) error {
	if config.Analysis.TargetBrand == "" {
		return fmt.Errorf("target brand must be set")
	}
	if t := config.Analysis.FuzzyThreshold; t < 0 || t > 1 {
		return fmt.Errorf("fuzzy threshold %v outside [0, 1]", t)
	}
	switch config.Export.Format {
	case "csv", "json", "both":
	default:
		return fmt.Errorf("unsupported output format %q", config.Export.Format)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
