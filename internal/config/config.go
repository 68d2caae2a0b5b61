package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	StorageModePostgres = "postgres"
	StorageModeMemory   = "memory"
)

type Config struct {
	PostgresAddress  string `koanf:"postgres_address"`
	PostgresPort     string `koanf:"postgres_port"`
	PostgresDB       string `koanf:"postgres_db"`
	PostgresUsername string `koanf:"postgres_username"`
	PostgresPassword string `koanf:"postgres_password"`

	Port              string `koanf:"port"`
	StorageMode       string `koanf:"storage"`
	Workers           int    `koanf:"workers"`
	LogLevel          string `koanf:"log_level"`
	MatchWindowDays   int    `koanf:"match_window_days"`
	MatchBatchSize    int    `koanf:"match_batch_size"`
	ImportConcurrency int    `koanf:"import_concurrency"`
}

// In all cases the default behavior should be for the docker compose setup
var defaults = map[string]any{
	"postgres_address":   "localhost",
	"postgres_port":      "5433",
	"postgres_db":        "postgres",
	"postgres_username":  "postgres",
	"postgres_password":  "testpassword",
	"port":               "9446",
	"storage":            StorageModePostgres,
	"workers":            4,
	"log_level":          "info",
	"match_window_days":  3,
	"match_batch_size":   100,
	"import_concurrency": 4,
}

// ProcessEnvironmentVariables layers defaults, an optional YAML file named by
// LEDGER_CONFIG_FILE, POSTGRES_* variables and LEDGER_* variables, in that
// order. A .env file in the working directory is loaded first if present.
func ProcessEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("godotenv.Load: %w", err)
	}
	return Load(os.Getenv("LEDGER_CONFIG_FILE"))
}

func Load(configFile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", configFile, err)
		}
	}

	err := k.Load(env.Provider("POSTGRES_", ".", strings.ToLower), nil)
	if err != nil {
		return nil, fmt.Errorf("load postgres env: %w", err)
	}

	err = k.Load(env.Provider("LEDGER_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "LEDGER_"))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load ledger env: %w", err)
	}

	cfg := Config{}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageMode {
	case StorageModePostgres, StorageModeMemory:
	default:
		return fmt.Errorf("storage must be %q or %q, got %q", StorageModePostgres, StorageModeMemory, c.StorageMode)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MatchWindowDays < 0 {
		return fmt.Errorf("match_window_days must not be negative, got %d", c.MatchWindowDays)
	}
	if c.MatchBatchSize < 1 {
		return fmt.Errorf("match_batch_size must be at least 1, got %d", c.MatchBatchSize)
	}
	if c.ImportConcurrency < 1 {
		return fmt.Errorf("import_concurrency must be at least 1, got %d", c.ImportConcurrency)
	}
	return nil
}

func (c *Config) PostgresDSN() string {
	return "postgres://" + c.PostgresUsername + ":" +
		c.PostgresPassword + "@" + c.PostgresAddress + ":" +
		c.PostgresPort + "/" + c.PostgresDB + "?sslmode=disable"
}
