// Package config provides configuration management for jav-meta using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort             = 8080
	defaultServerTimeout          = 30 * time.Second
	defaultShutdownTimeout        = 10 * time.Second
	defaultMaxOpenConns           = 6
	defaultMaxIdleConns           = 3
	defaultConnMaxIdleTime        = 30 * time.Minute
	defaultHTTPTimeout            = 30 * time.Second
	defaultHeadlessOpTimeout      = 60 * time.Second
	defaultHeadlessIdleTimeout    = 180 * time.Second
	defaultCircuitThreshold       = 5
	defaultCircuitTimeout         = 30 * time.Second
	defaultImageCacheEntries      = 2048
	defaultImageCacheMaxWeight    = 128 * 1024 * 1024
	defaultRescrapeInterval       = 7 * 24 * time.Hour
	defaultMaxConcurrentRescrapes = 2
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Transport   TransportConfig   `mapstructure:"transport"`
	Headless    HeadlessConfig    `mapstructure:"headless"`
	ImageCache  ImageCacheConfig  `mapstructure:"image_cache"`
	Translate   TranslateConfig   `mapstructure:"translate"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	QBittorrent QBittorrentConfig `mapstructure:"qbittorrent"`
}

// ServerConfig holds HTTP server configuration for the Command Facade's
// REST surface.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig holds the SQLite connection configuration for PS.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // fixed to "sqlite"
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// StorageConfig holds the AppLocalData filesystem layout (§6).
type StorageConfig struct {
	BaseDir        string `mapstructure:"base_dir"`
	DatabaseFile   string `mapstructure:"database_file"`
	CookieFile     string `mapstructure:"cookie_file"`
	CookieImport   string `mapstructure:"cookie_import_file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// TransportConfig holds settings for TR's HTTP variant.
type TransportConfig struct {
	// Proxy is one of: "" (system default), "<direct>" (no proxy), or an
	// explicit proxy URL, read from the external settings surface (§6).
	Proxy               string        `mapstructure:"proxy"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	UserAgent           string        `mapstructure:"user_agent"`
	RetryAttempts       int           `mapstructure:"retry_attempts"`
	CircuitThreshold    int           `mapstructure:"circuit_threshold"`
	CircuitResetTimeout time.Duration `mapstructure:"circuit_reset_timeout"`
}

// HeadlessConfig holds settings for TR's headless-browser variant.
type HeadlessConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BinaryPath   string        `mapstructure:"binary_path"` // empty = auto-detect
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	OpTimeout    time.Duration `mapstructure:"op_timeout"`
	ViewportW    int           `mapstructure:"viewport_width"`
	ViewportH    int           `mapstructure:"viewport_height"`
}

// ImageCacheConfig holds IC's weighted-cache sizing.
type ImageCacheConfig struct {
	MaxEntries int   `mapstructure:"max_entries"`
	MaxWeight  int64 `mapstructure:"max_weight_bytes"`
}

// TranslateConfig holds settings for TL's translation endpoint.
type TranslateConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	SourceTo string `mapstructure:"target_language"` // default zh-CN
}

// SchedulerConfig holds settings for the supplemented background rescrape
// sweep (SPEC_FULL.md §4.11).
type SchedulerConfig struct {
	Enabled                 bool          `mapstructure:"enabled"`
	RescrapeInterval        time.Duration `mapstructure:"rescrape_interval"`
	StaleAfter              time.Duration `mapstructure:"stale_after"`
	MaxConcurrentRescrapes  int           `mapstructure:"max_concurrent_rescrapes"`
	Cron                    string        `mapstructure:"cron"` // optional explicit cron expression
}

// QBittorrentConfig holds connection settings for the passthrough client
// (SPEC_FULL.md §4.12).
type QBittorrentConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BaseURL  string `mapstructure:"base_url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with JAVMETA_ and use underscores for
// nesting. Example: JAVMETA_SERVER_PORT=8080.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/javmeta")
		v.AddConfigPath("$HOME/.javmeta")
	}

	v.SetEnvPrefix("JAVMETA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "videos.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("storage.base_dir", "./data")
	v.SetDefault("storage.database_file", "videos.db")
	v.SetDefault("storage.cookie_file", "cookies.json")
	v.SetDefault("storage.cookie_import_file", "cookies.edit.json")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	v.SetDefault("transport.proxy", "")
	v.SetDefault("transport.request_timeout", defaultHTTPTimeout)
	v.SetDefault("transport.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("transport.retry_attempts", 2)
	v.SetDefault("transport.circuit_threshold", defaultCircuitThreshold)
	v.SetDefault("transport.circuit_reset_timeout", defaultCircuitTimeout)

	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.binary_path", "")
	v.SetDefault("headless.idle_timeout", defaultHeadlessIdleTimeout)
	v.SetDefault("headless.op_timeout", defaultHeadlessOpTimeout)
	v.SetDefault("headless.viewport_width", 1920)
	v.SetDefault("headless.viewport_height", 1080)

	v.SetDefault("image_cache.max_entries", defaultImageCacheEntries)
	v.SetDefault("image_cache.max_weight_bytes", defaultImageCacheMaxWeight)

	v.SetDefault("translate.enabled", true)
	v.SetDefault("translate.endpoint", "https://translate.googleapis.com/translate_a/single")
	v.SetDefault("translate.target_language", "zh-CN")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.rescrape_interval", defaultRescrapeInterval)
	v.SetDefault("scheduler.stale_after", defaultRescrapeInterval)
	v.SetDefault("scheduler.max_concurrent_rescrapes", defaultMaxConcurrentRescrapes)
	v.SetDefault("scheduler.cron", "")

	v.SetDefault("qbittorrent.enabled", false)
	v.SetDefault("qbittorrent.base_url", "http://localhost:8080")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be sqlite")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.ImageCache.MaxEntries < 1 {
		return fmt.Errorf("image_cache.max_entries must be at least 1")
	}
	if c.ImageCache.MaxWeight < 1 {
		return fmt.Errorf("image_cache.max_weight_bytes must be at least 1")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabasePath returns the full path to the SQLite database file.
func (c *StorageConfig) DatabasePath() string {
	return fmt.Sprintf("%s/%s", c.BaseDir, c.DatabaseFile)
}

// CookiePath returns the full path to the persistent cookie jar file.
func (c *StorageConfig) CookiePath() string {
	return fmt.Sprintf("%s/%s", c.BaseDir, c.CookieFile)
}

// CookieImportPath returns the full path to the optional EditThisCookie
// import file.
func (c *StorageConfig) CookieImportPath() string {
	return fmt.Sprintf("%s/%s", c.BaseDir, c.CookieImport)
}
