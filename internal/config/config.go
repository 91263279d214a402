// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Download DownloadConfig `mapstructure:"download"`
	DB       DBConfig       `mapstructure:"db"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ResolverConfig governs redirect-following behavior.
type ResolverConfig struct {
	MaxRedirectDepth    int    `mapstructure:"max_redirect_depth"`
	FetchTimeoutMs      int    `mapstructure:"fetch_timeout_ms"`
	UserAgent           string `mapstructure:"user_agent"`
	CacheCapacity       int    `mapstructure:"cache_capacity"`
	StripTrackingParams bool   `mapstructure:"strip_tracking_params"`
}

// DownloadConfig sets destination and filters for content downloads.
type DownloadConfig struct {
	Directory           string   `mapstructure:"directory"`
	AllowedContentTypes []string `mapstructure:"allowed_content_types"`
	// GCSBucket, when set, archives payloads to Google Cloud Storage.
	GCSBucket string `mapstructure:"gcs_bucket"`
	// ArchiveDir, when set and no bucket is configured, archives
	// payloads to the local filesystem instead.
	ArchiveDir string `mapstructure:"archive_dir"`
	Prefix     string `mapstructure:"prefix"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN          string `mapstructure:"dsn"`
	Table        string `mapstructure:"table"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// PubSubConfig holds metadata for publish-subscribe notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LINKWEAVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("resolver.max_redirect_depth", 10)
	v.SetDefault("resolver.fetch_timeout_ms", 2500)
	v.SetDefault("resolver.user_agent", "linkweaver/0.1")
	v.SetDefault("resolver.cache_capacity", 256)
	v.SetDefault("resolver.strip_tracking_params", true)
	v.SetDefault("download.directory", "downloads")
	v.SetDefault("download.prefix", "payloads")
	v.SetDefault("db.table", "resolutions")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Resolver.MaxRedirectDepth <= 0 {
		return fmt.Errorf("resolver.max_redirect_depth must be > 0")
	}
	if c.Resolver.FetchTimeoutMs <= 0 {
		return fmt.Errorf("resolver.fetch_timeout_ms must be > 0")
	}
	if c.Resolver.CacheCapacity < 0 {
		return fmt.Errorf("resolver.cache_capacity must be >= 0")
	}
	return nil
}

// FetchTimeout converts the configured timeout to a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Resolver.FetchTimeoutMs) * time.Millisecond
}
