package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Shopee    ShopeeConfig
	Sync      SyncConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// ShopeeConfig holds Shopee Open Platform credentials and listing options
type ShopeeConfig struct {
	PartnerID      int64
	PartnerKey     string
	ShopID         int64
	AccessToken    string
	RefreshToken   string
	APIBaseURL     string
	IsSandbox      bool
	TimeoutSeconds int
	PageSize       int
	OrderStatus    string
}

// IsConfigured returns true if partner credentials and shop are set
func (s ShopeeConfig) IsConfigured() bool {
	return s.PartnerID > 0 && s.PartnerKey != "" && s.ShopID > 0
}

// SyncConfig holds order reconciliation scheduling configuration
type SyncConfig struct {
	Enabled      bool
	Interval     time.Duration // Wait between the end of one pass and the start of the next
	Lookback     time.Duration // Trailing window listed each pass
	PassTimeout  time.Duration // Upper bound for one pass
	HistorySize  int           // Number of pass records kept for /api/sync/history
	RunOnStartup bool
}

// RedisConfig holds Redis connection configuration for the token store
type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry export
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces and metrics
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	PrometheusEnabled bool // Serve /metrics for scraping
}

// Load reads configuration from config.toml and WMS_* environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/wms")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults and env vars
	}

	// Environment variable settings
	v.SetEnvPrefix("WMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans that default to true cannot be detected as unset after loading
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.run_on_startup", true)
	v.SetDefault("telemetry.prometheus_enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Shopee: ShopeeConfig{
			PartnerID:      v.GetInt64("shopee.partner_id"),
			PartnerKey:     v.GetString("shopee.partner_key"),
			ShopID:         v.GetInt64("shopee.shop_id"),
			AccessToken:    v.GetString("shopee.access_token"),
			RefreshToken:   v.GetString("shopee.refresh_token"),
			APIBaseURL:     v.GetString("shopee.api_base_url"),
			IsSandbox:      v.GetBool("shopee.is_sandbox"),
			TimeoutSeconds: v.GetInt("shopee.timeout_seconds"),
			PageSize:       v.GetInt("shopee.page_size"),
			OrderStatus:    v.GetString("shopee.order_status"),
		},
		Sync: SyncConfig{
			Enabled:      v.GetBool("sync.enabled"),
			Interval:     v.GetDuration("sync.interval"),
			Lookback:     v.GetDuration("sync.lookback"),
			PassTimeout:  v.GetDuration("sync.pass_timeout"),
			HistorySize:  v.GetInt("sync.history_size"),
			RunOnStartup: v.GetBool("sync.run_on_startup"),
		},
		Redis: RedisConfig{
			Enabled:   v.GetBool("redis.enabled"),
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			PrometheusEnabled: v.GetBool("telemetry.prometheus_enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for empty configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "wms-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Product lookup proxies the marketplace, allow for its timeout
		cfg.HTTP.WriteTimeout = 45 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Shopee.TimeoutSeconds == 0 {
		cfg.Shopee.TimeoutSeconds = 30
	}
	if cfg.Shopee.PageSize == 0 {
		cfg.Shopee.PageSize = 100
	}
	if cfg.Shopee.OrderStatus == "" {
		cfg.Shopee.OrderStatus = "READY_TO_SHIP"
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = time.Minute
	}
	if cfg.Sync.Lookback == 0 {
		cfg.Sync.Lookback = 15 * 24 * time.Hour
	}
	if cfg.Sync.PassTimeout == 0 {
		cfg.Sync.PassTimeout = 10 * time.Minute
	}
	if cfg.Sync.HistorySize == 0 {
		cfg.Sync.HistorySize = 100
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "wms:"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Sync.Interval < time.Second {
		return fmt.Errorf("sync.interval must be at least 1s, got %s", c.Sync.Interval)
	}
	if c.Sync.Lookback <= 0 || c.Sync.Lookback > 15*24*time.Hour {
		return fmt.Errorf("sync.lookback must be within (0, 360h], got %s", c.Sync.Lookback)
	}
	if c.Sync.HistorySize < 0 {
		return fmt.Errorf("sync.history_size cannot be negative")
	}
	if c.Shopee.PageSize < 0 || c.Shopee.PageSize > 100 {
		return fmt.Errorf("shopee.page_size must be between 1 and 100, got %d", c.Shopee.PageSize)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Sync.Enabled && !c.Shopee.IsConfigured() {
			return fmt.Errorf("shopee.partner_id, shopee.partner_key and shopee.shop_id are required in production when sync is enabled")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Addr returns the HTTP listen address
func (a AppConfig) Addr() string {
	return ":" + a.Port
}
