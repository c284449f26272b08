package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultConfigPath is read when FUNDBAL_CONFIG is not set
const DefaultConfigPath = "fundbalance.toml"

// Config holds application configuration
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        DatabaseConfig  `toml:"database"`
	Logging         LoggingConfig   `toml:"logging"`
	Rebalance       RebalanceConfig `toml:"rebalance"`
	DisplayCurrency string          `toml:"display_currency"` // ISO code used by fundctl, default "CNY"
}

// ServerConfig holds HTTP and gRPC listener configuration
type ServerConfig struct {
	HTTPPort       int      `toml:"http_port"`
	GRPCPort       int      `toml:"grpc_port"`       // 0 disables the gRPC listener
	APIToken       string   `toml:"api_token"`       // Required by gRPC calls when set
	AllowedOrigins []string `toml:"allowed_origins"` // CORS; empty allows any
	RateLimitRPS   float64  `toml:"rate_limit_rps"`  // Mutating HTTP requests per second; 0 disables
}

// DatabaseConfig selects and locates the store
type DatabaseConfig struct {
	Driver  string `toml:"driver"`   // sqlite, postgres or memory
	Path    string `toml:"path"`     // SQLite file
	ConnStr string `toml:"conn_str"` // PostgreSQL connection string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// RebalanceConfig holds engine and history defaults
type RebalanceConfig struct {
	DefaultThreshold float64 `toml:"default_threshold"`
	HistoryLimit     int     `toml:"history_limit"`
	Schedule         string  `toml:"schedule"` // Cron expression for scheduled runs; empty disables
	SeedDefaults     bool    `toml:"seed_defaults"`
	EnforceWeightCap bool    `toml:"enforce_weight_cap"`
}

// NewDefaultConfig returns a configuration with every default filled in
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: 8080,
			GRPCPort: 9090,
			APIToken: "dev-token",
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "data/fundbalance.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Rebalance: RebalanceConfig{
			DefaultThreshold: 0.05,
			HistoryLimit:     10,
			SeedDefaults:     true,
		},
		DisplayCurrency: "CNY",
	}
}

// Load reads configuration from the TOML file, the .env file and the environment, in that
// order of increasing precedence
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := LoadFile(getEnv("FUNDBAL_CONFIG", DefaultConfigPath))
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadClient reads the same sources as Load for command line clients, which only use the
// display settings and so skip the server checks of Validate
func LoadClient() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := LoadFile(getEnv("FUNDBAL_CONFIG", DefaultConfigPath))
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if cfg.DisplayCurrency == "" {
		return nil, fmt.Errorf("display currency must not be empty")
	}

	return cfg, nil
}

// LoadFile returns the defaults merged with the TOML file at path
// A missing file is not an error
func LoadFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.HTTPPort = getEnvAsInt("HTTP_PORT", cfg.Server.HTTPPort)
	cfg.Server.GRPCPort = getEnvAsInt("GRPC_PORT", cfg.Server.GRPCPort)
	cfg.Server.APIToken = getEnv("API_TOKEN", cfg.Server.APIToken)
	cfg.Server.RateLimitRPS = getEnvAsFloat("RATE_LIMIT_RPS", cfg.Server.RateLimitRPS)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	cfg.Database.Driver = strings.ToLower(getEnv("DB_DRIVER", cfg.Database.Driver))
	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
	cfg.Database.ConnStr = getEnv("DB_CONN_STR", cfg.Database.ConnStr)
	if cfg.Database.Driver == DriverPostgres && cfg.Database.ConnStr == "" {
		// If explicit string is missing, build it from individual vars (Docker friendly)
		cfg.Database.ConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_NAME", "fundbalance"),
		)
	}

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Pretty = getEnvAsBool("LOG_PRETTY", cfg.Logging.Pretty)

	cfg.Rebalance.DefaultThreshold = getEnvAsFloat("DEFAULT_THRESHOLD", cfg.Rebalance.DefaultThreshold)
	cfg.Rebalance.HistoryLimit = getEnvAsInt("HISTORY_LIMIT", cfg.Rebalance.HistoryLimit)
	cfg.Rebalance.Schedule = getEnv("REBALANCE_SCHEDULE", cfg.Rebalance.Schedule)
	cfg.Rebalance.SeedDefaults = getEnvAsBool("SEED_DEFAULTS", cfg.Rebalance.SeedDefaults)
	cfg.Rebalance.EnforceWeightCap = getEnvAsBool("ENFORCE_WEIGHT_CAP", cfg.Rebalance.EnforceWeightCap)

	cfg.DisplayCurrency = strings.ToUpper(getEnv("DISPLAY_CURRENCY", cfg.DisplayCurrency))
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port %d", c.Server.GRPCPort)
	}
	if c.Server.GRPCPort != 0 && c.Server.GRPCPort == c.Server.HTTPPort {
		return fmt.Errorf("http and grpc ports must differ, both are %d", c.Server.HTTPPort)
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit must not be negative, got %v", c.Server.RateLimitRPS)
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("sqlite driver requires a database path")
		}
	case DriverPostgres:
		if c.Database.ConnStr == "" {
			return fmt.Errorf("postgres driver requires a connection string")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q (want sqlite, postgres or memory)", c.Database.Driver)
	}

	if c.Rebalance.DefaultThreshold <= 0 {
		return fmt.Errorf("default threshold must be positive, got %v", c.Rebalance.DefaultThreshold)
	}
	if c.Rebalance.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive, got %d", c.Rebalance.HistoryLimit)
	}
	if c.Rebalance.Schedule != "" {
		if _, err := cron.ParseStandard(c.Rebalance.Schedule); err != nil {
			return fmt.Errorf("invalid rebalance schedule %q: %w", c.Rebalance.Schedule, err)
		}
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
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
