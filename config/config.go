package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Matching MatchingConfig
	Data     DataConfig
	Cache    CacheConfig
	Notion   NotionConfig
	AI       AIConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LogLevel       string   `mapstructure:"log_level"`
}

// MatchingConfig holds the matching engine thresholds
type MatchingConfig struct {
	MinResolveScore       int  `mapstructure:"min_resolve_score"`
	ProductMatchThreshold int  `mapstructure:"product_match_threshold"`
	EnableDebugLogging    bool `mapstructure:"enable_debug_logging"`
}

// DataConfig holds file and persistence locations
type DataConfig struct {
	UploadDir    string `mapstructure:"upload_dir"`
	ExportDir    string `mapstructure:"export_dir"`
	DatabasePath string `mapstructure:"database_path"`
	MaxUploadMB  int64  `mapstructure:"max_upload_mb"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// NotionConfig holds workspace database sync configuration
type NotionConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	DatabaseID string `mapstructure:"database_id"`
	APIVersion string `mapstructure:"api_version"`
}

// AIConfig holds the completion provider configuration
type AIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/collabmatch/")

	// Environment variable settings
	v.SetEnvPrefix("COLLABMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.log_level", "info")

	// Matching defaults mirror the verification contract thresholds
	v.SetDefault("matching.min_resolve_score", 70)
	v.SetDefault("matching.product_match_threshold", 80)
	v.SetDefault("matching.enable_debug_logging", false)

	// Data defaults
	v.SetDefault("data.upload_dir", "data/uploads")
	v.SetDefault("data.export_dir", "data/exports")
	v.SetDefault("data.database_path", "data/collabmatch.db")
	v.SetDefault("data.max_upload_mb", 50)

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")

	// Notion defaults
	v.SetDefault("notion.base_url", "https://api.notion.com/v1")
	v.SetDefault("notion.api_version", "2022-06-28")

	// AI defaults
	v.SetDefault("ai.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.model", "openrouter/auto")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Matching.MinResolveScore < 0 || config.Matching.MinResolveScore > 100 {
		return fmt.Errorf("matching.min_resolve_score must be within 0-100, got: %d", config.Matching.MinResolveScore)
	}

	if config.Matching.ProductMatchThreshold < 0 || config.Matching.ProductMatchThreshold > 100 {
		return fmt.Errorf("matching.product_match_threshold must be within 0-100, got: %d", config.Matching.ProductMatchThreshold)
	}

	if config.Data.MaxUploadMB <= 0 {
		return fmt.Errorf("data.max_upload_mb must be positive, got: %d", config.Data.MaxUploadMB)
	}

	if config.Data.DatabasePath == "" {
		return fmt.Errorf("data.database_path is required")
	}

	return nil
}
