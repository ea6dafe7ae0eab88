package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ringrace/server/internal/catalog"
)

// Duration wraps time.Duration so YAML configs can use "30s"-style values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Supported ranking store backends.
const (
	StoreMemory   = "memory"
	StoreBadger   = "badger"
	StorePostgres = "postgres"
)

// Config is the operator-facing server configuration, loaded from YAML.
// Zero values fall back to DefaultConfig; RINGRACE_LISTEN_ADDR overrides
// the listen address for containerized deploys.
type Config struct {
	ListenAddr string `yaml:"listenAddr"`

	Catalog catalog.Paths `yaml:"catalog"`

	Store struct {
		Backend     string `yaml:"backend"`
		PostgresDSN string `yaml:"postgresDsn"`
		BadgerDir   string `yaml:"badgerDir"`
	} `yaml:"store"`

	Cache struct {
		Enabled bool          `yaml:"enabled"`
		Addr    string        `yaml:"addr"`
		TTL     Duration `yaml:"ttl"`
	} `yaml:"cache"`

	NATS struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"nats"`

	Race struct {
		ScoreCapEnabled bool          `yaml:"scoreCapEnabled"`
		SessionExpiry   bool          `yaml:"sessionExpiry"`
		ExpiryGrace     Duration `yaml:"expiryGrace"`
	} `yaml:"race"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

func DefaultConfig() Config {
	var cfg Config
	cfg.ListenAddr = ":8080"
	cfg.Catalog = catalog.Paths{
		Races:   "config/races.yaml",
		Rewards: "config/rewards.yaml",
		Items:   "config/items.yaml",
	}
	cfg.Store.Backend = StoreMemory
	cfg.Cache.TTL = Duration(5 * time.Minute)
	cfg.Race.ScoreCapEnabled = true
	cfg.Race.ExpiryGrace = Duration(10 * time.Second)
	cfg.Log.Level = "info"
	return cfg
}

// LoadConfig reads a YAML config file on top of the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if addr := os.Getenv("RINGRACE_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StoreBadger:
		if c.Store.BadgerDir == "" {
			return fmt.Errorf("store backend %q requires badgerDir", c.Store.Backend)
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store backend %q requires postgresDsn", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("cache requires addr when enabled")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats requires url when enabled")
	}
	return nil
}
