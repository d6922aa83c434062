package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/datavault-fs/knowledge-backend/internal/entity"
	pkgRetry "github.com/datavault-fs/knowledge-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Vendor RAG service configuration
	NucliaCfg NucliaConnectorConfig `envPrefix:"NUCLIA_"`

	// Query cache configuration
	QueryCacheCfg QueryCacheConfig `envPrefix:"QUERY_CACHE_"`

	// Access session lifetime
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration. Mocks are also forced when no vendor API key is set.
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Knowledge box registry (loaded from JSON file)
	KnowledgeBoxes []entity.KnowledgeBox

	// Per-operation vendor prices (loaded from JSON file)
	Pricing map[entity.OperationType]float64

	// Environment (set from flag, not from env var)
	Environment string
}

// NucliaConnectorConfig configures the vendor RAG connector.
type NucliaConnectorConfig struct {
	HTTPClientConfig
	Zone       string               `env:"ZONE" envDefault:"aws-us-east-2-1"`
	APIKey     string               `env:"API_KEY"`
	AuthHeader string               `env:"AUTH_HEADER" envDefault:"X-NUCLIA-SERVICEACCOUNT"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// BaseURL returns the explicit service URL if set, otherwise the standard
// zone-derived vendor endpoint.
func (c *NucliaConnectorConfig) BaseURL() string {
	if c.Url != "" {
		return c.Url
	}
	return fmt.Sprintf("https://%s.nuclia.cloud/api/v1", c.Zone)
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Url                   string        `env:"SERVICE_URL"`
}

type QueryCacheConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
}

// knowledgeBoxesFile represents the structure of knowledge_boxes.json
type knowledgeBoxesFile struct {
	KnowledgeBoxes []entity.KnowledgeBox `json:"knowledge_boxes"`
}

// pricingFile represents the structure of pricing.json
type pricingFile struct {
	Prices map[entity.OperationType]float64 `json:"prices"`
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

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := loadKnowledgeBoxes(cfg); err != nil {
		return nil, fmt.Errorf("load knowledge boxes: %w", err)
	}

	if err := loadPricing(cfg); err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns)
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns)
	}

	if cfg.SessionTTL < time.Minute || cfg.SessionTTL > 24*time.Hour {
		return fmt.Errorf("SESSION_TTL must be between 1m and 24h, got %s", cfg.SessionTTL)
	}

	if cfg.QueryCacheCfg.TTL <= 0 {
		return fmt.Errorf("QUERY_CACHE_TTL must be positive, got %s", cfg.QueryCacheCfg.TTL)
	}

	return nil
}

// defaultKnowledgeBoxes is the registry used when no knowledge_boxes.json is
// present. Only global_research points at a live knowledge box by default;
// the rest are tenant placeholders resolved per deployment.
var defaultKnowledgeBoxes = []entity.KnowledgeBox{
	{Name: "global_research", ID: "45bd361a-7e42-487a-9ff9-c003e7a93560"},
	{Name: "us_compliance", ID: "kb_us_compliance_demo"},
	{Name: "eu_compliance", ID: "kb_eu_compliance_demo"},
	{Name: "client_analytics", ID: "kb_client_facing_demo"},
	{Name: "internal_training", ID: "kb_training_demo"},
}

func loadKnowledgeBoxes(cfg *Config) error {
	path := filepath.Join("internal", "config", "knowledge_boxes.json")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Warning: knowledge box registry not found at %s, using defaults\n", path)
		cfg.KnowledgeBoxes = defaultKnowledgeBoxes
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read knowledge box registry: %w", err)
	}

	var file knowledgeBoxesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse knowledge box registry JSON: %w", err)
	}

	if len(file.KnowledgeBoxes) == 0 {
		return fmt.Errorf("knowledge box registry contains no entries: %s", path)
	}

	cfg.KnowledgeBoxes = file.KnowledgeBoxes

	fmt.Printf("Loaded %d knowledge boxes from %s\n", len(cfg.KnowledgeBoxes), path)
	return nil
}

// defaultPricing mirrors the vendor's published per-operation rates.
var defaultPricing = map[entity.OperationType]float64{
	entity.OpEmbeddingGeneration: 0.0001,
	entity.OpSearchQuery:         0.001,
	entity.OpDocumentStorage:     0.00001,
	entity.OpAPICall:             0.0001,
	entity.OpOCRProcessing:       0.0005,
	entity.OpAudioTranscription:  0.01,
	entity.OpLargeModelQuery:     0.005,
	entity.OpStandardModelQuery:  0.002,
}

func loadPricing(cfg *Config) error {
	path := filepath.Join("internal", "config", "pricing.json")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg.Pricing = defaultPricing
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read pricing file: %w", err)
	}

	var file pricingFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse pricing JSON: %w", err)
	}

	// Unlisted operations keep their default rate.
	prices := make(map[entity.OperationType]float64, len(defaultPricing))
	for op, price := range defaultPricing {
		prices[op] = price
	}
	for op, price := range file.Prices {
		if err := op.Validate(); err != nil {
			return err
		}
		prices[op] = price
	}

	cfg.Pricing = prices
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
