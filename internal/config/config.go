package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/futig/ba-assistant/internal/completeness"
	pkgRetry "github.com/futig/ba-assistant/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string    `env:"SERVER_ADDR" envDefault:":8080"`
	APICfg     APIConfig `envPrefix:"API_"`

	// Knowledge base store
	StoreCfg StoreConfig `envPrefix:"STORE_"`

	// External service configurations
	LLMConnectorCfg LLMConnectorConfig `envPrefix:"LLM_"`
	ConfluenceCfg   ConfluenceConfig   `envPrefix:"CONFLUENCE_"`
	DiagramCfg      DiagramConfig      `envPrefix:"DIAGRAM_"`

	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Document pipeline
	Continuation       pkgRetry.Policy         `envPrefix:"CONTINUATION_"`
	DraftThresholds    completeness.Thresholds `envPrefix:"DRAFT_"`
	FallbackThresholds completeness.Thresholds `envPrefix:"FALLBACK_"`
	ExportCfg          ExportConfig            `envPrefix:"EXPORT_"`
	SessionCfg         SessionConfig           `envPrefix:"SESSION_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// APIConfig limits request payloads accepted by the HTTP API.
type APIConfig struct {
	MaxTurnLength    int           `env:"MAX_TURN_LENGTH" envDefault:"20000"`
	MaxDocumentBytes int           `env:"MAX_DOCUMENT_BYTES" envDefault:"2097152"`
	MaxDiagramBytes  int           `env:"MAX_DIAGRAM_BYTES" envDefault:"65536"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5m"`
}

// StoreConfig selects where knowledge bases are persisted.
type StoreConfig struct {
	Driver     string `env:"DRIVER" envDefault:"memory"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/ba-assistant.db"`

	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	ChatEndpoint string               `env:"CHAT_ENDPOINT" envDefault:"/v1/chat/completions"`
	Model        string               `env:"MODEL" envDefault:"gpt-4o-mini"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// ConfluenceConfig enables publishing when URL, user, token and space are set.
type ConfluenceConfig struct {
	HTTPClientConfig
	Username string               `env:"USERNAME"`
	APIToken string               `env:"API_TOKEN"`
	SpaceKey string               `env:"SPACE_KEY"`
	ParentID string               `env:"PARENT_ID"`
	Retry    pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

func (c ConfluenceConfig) Enabled() bool {
	return c.Url != "" && c.Username != "" && c.APIToken != "" && c.SpaceKey != ""
}

// CallbackConnectorConfig configures delivery of asynchronous turn results.
// The target URL comes with each request.
type CallbackConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// DiagramConfig configures the headless browser used for diagrams and PDF.
type DiagramConfig struct {
	Enabled    bool          `env:"ENABLED" envDefault:"true"`
	BrowserBin string        `env:"BROWSER_BIN"`
	ControlURL string        `env:"CONTROL_URL"`
	MermaidURL string        `env:"MERMAID_URL" envDefault:"https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"20s"`
}

type ExportConfig struct {
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"30m"`
	ArtifactTTL time.Duration `env:"ARTIFACT_TTL" envDefault:"24h"`

	// metered key for unioffice, required to save DOCX and XLSX
	UnidocLicenseKey string `env:"UNIDOC_LICENSE_KEY"`
}

type SessionConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"2h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	HistoryLimit    int           `env:"HISTORY_LIMIT" envDefault:"20"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"5s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"30s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"110s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment.
func Parse() (*Config, error) {
	cfg := &Config{
		DraftThresholds:    completeness.DraftThresholds(),
		FallbackThresholds: completeness.FallbackThresholds(),
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.StoreCfg.Driver {
	case StoreDriverMemory, StoreDriverSQLite:
	case StoreDriverPostgres:
		if cfg.StoreCfg.DatabaseURL == "" {
			errors = append(errors, "STORE_DATABASE_URL is required for the postgres driver")
		}
		if cfg.StoreCfg.DBMaxConns < 1 || cfg.StoreCfg.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("STORE_DB_MAX_CONNS must be between 1 and 200, got %d", cfg.StoreCfg.DBMaxConns))
		}
		if cfg.StoreCfg.DBMinConns < 0 || cfg.StoreCfg.DBMinConns > cfg.StoreCfg.DBMaxConns {
			errors = append(errors, fmt.Sprintf("STORE_DB_MIN_CONNS must be between 0 and STORE_DB_MAX_CONNS(%d), got %d", cfg.StoreCfg.DBMaxConns, cfg.StoreCfg.DBMinConns))
		}
	default:
		errors = append(errors, fmt.Sprintf("STORE_DRIVER must be one of memory, sqlite, postgres, got %q", cfg.StoreCfg.Driver))
	}

	if !cfg.EnableMocks && cfg.LLMConnectorCfg.Url == "" {
		errors = append(errors, "LLM_SERVICE_URL is required unless ENABLE_MOCKS is set")
	}

	if cfg.Continuation.Total() == 0 {
		errors = append(errors, "CONTINUATION_MAX_ATTEMPTS and CONTINUATION_EXTRA_ATTEMPTS cannot both be zero")
	}

	for name, th := range map[string]completeness.Thresholds{
		"DRAFT":    cfg.DraftThresholds,
		"FALLBACK": cfg.FallbackThresholds,
	} {
		if th.MinSections < 0 || th.MinSections > len(completeness.RequiredSections) {
			errors = append(errors, fmt.Sprintf("%s_MIN_SECTIONS must be between 0 and %d, got %d", name, len(completeness.RequiredSections), th.MinSections))
		}
		if th.BadTableRatio < 0 || th.BadTableRatio > 1 {
			errors = append(errors, fmt.Sprintf("%s_BAD_TABLE_RATIO must be between 0 and 1, got %v", name, th.BadTableRatio))
		}
	}

	if cfg.APICfg.MaxTurnLength < 1 || cfg.APICfg.MaxDocumentBytes < 1 || cfg.APICfg.MaxDiagramBytes < 1 {
		errors = append(errors, "API_MAX_TURN_LENGTH, API_MAX_DOCUMENT_BYTES and API_MAX_DIAGRAM_BYTES must be positive")
	}

	if cfg.ExportCfg.ArtifactTTL <= 0 {
		errors = append(errors, fmt.Sprintf("EXPORT_ARTIFACT_TTL must be positive, got %s", cfg.ExportCfg.ArtifactTTL))
	}
	if cfg.ExportCfg.CacheTTL > cfg.ExportCfg.ArtifactTTL {
		errors = append(errors, fmt.Sprintf("EXPORT_CACHE_TTL (%s) cannot exceed EXPORT_ARTIFACT_TTL (%s)", cfg.ExportCfg.CacheTTL, cfg.ExportCfg.ArtifactTTL))
	}

	if cfg.SessionCfg.HistoryLimit < 1 {
		errors = append(errors, fmt.Sprintf("SESSION_HISTORY_LIMIT must be positive, got %d", cfg.SessionCfg.HistoryLimit))
	}

	// Validate Telegram configuration
	if cfg.TelegramCfg.BotToken != "" {
		if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
			errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
		}
		if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
			errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
		}
		if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
			errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
