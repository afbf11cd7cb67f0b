package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	RenderModeProxy   = "proxy"
	RenderModeBrowser = "browser"

	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	ListenAddr string           `yaml:"listen_addr" validate:"required"`
	Proxy      ProxyConfig      `yaml:"proxy"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Validation ValidationConfig `yaml:"validation"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Store      StoreConfig      `yaml:"store"`
	Lock       LockConfig       `yaml:"lock"`
}

type ProxyConfig struct {
	// Endpoint of the scraping proxy. The target URL is passed as a query parameter.
	Endpoint string `yaml:"endpoint" validate:"required,url"`
	Token    string `yaml:"token"`
	// Budget is the number of credits this process may spend. Zero means unlimited.
	Budget     int           `yaml:"budget" validate:"gte=0"`
	CreditCost int           `yaml:"credit_cost" validate:"gte=1"`
	RenderCost int           `yaml:"render_cost" validate:"gte=1"`
	RenderMode string        `yaml:"render_mode" validate:"oneof=proxy browser"`
	Timeout    time.Duration `yaml:"timeout" validate:"gt=0"`
	// BrowserProxy is the proxy server handed to the headless browser in browser render mode.
	BrowserProxy string `yaml:"browser_proxy"`
}

type ProviderToggle struct {
	Enabled bool `yaml:"enabled"`
}

type ProvidersConfig struct {
	Reference     ProviderToggle `yaml:"reference"`
	Aggregator    ProviderToggle `yaml:"aggregator"`
	Marketplace   ProviderToggle `yaml:"marketplace"`
	Manufacturer  ProviderToggle `yaml:"manufacturer"`
	MaxCandidates int            `yaml:"max_candidates" validate:"gte=1,lte=50"`
}

type ValidationConfig struct {
	// MinOverlap is the fraction of query tokens that must appear in a candidate title.
	MinOverlap float64 `yaml:"min_overlap" validate:"gte=0,lte=1"`
}

type NormalizerConfig struct {
	// Denylist holds extra regular expressions removed from raw names before matching.
	Denylist []string `yaml:"denylist"`
}

type StoreConfig struct {
	Driver  string `yaml:"driver" validate:"oneof=memory postgres"`
	DSN     string `yaml:"dsn" validate:"required_if=Driver postgres"`
	Migrate bool   `yaml:"migrate"`
}

type LockConfig struct {
	// RedisAddr enables cross-process lookup locks when set.
	RedisAddr string        `yaml:"redis_addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db" validate:"gte=0"`
	// TTL is the Redis key expiry; holders refresh it while a chain runs.
	TTL time.Duration `yaml:"ttl" validate:"gt=0"`
	// Wait caps how long a lookup queues behind another one for the same key.
	Wait   time.Duration `yaml:"wait" validate:"gt=0"`
	Prefix string        `yaml:"prefix"`
}

func Default() *Config {
	return &Config{
		ListenAddr: ":3000",
		Proxy: ProxyConfig{
			Endpoint:   "https://api.scrape.do",
			CreditCost: 1,
			RenderCost: 5,
			RenderMode: RenderModeProxy,
			Timeout:    60 * time.Second,
		},
		Providers: ProvidersConfig{
			Reference:     ProviderToggle{Enabled: true},
			Aggregator:    ProviderToggle{Enabled: true},
			Marketplace:   ProviderToggle{Enabled: true},
			Manufacturer:  ProviderToggle{Enabled: true},
			MaxCandidates: 10,
		},
		Validation: ValidationConfig{MinOverlap: 0.5},
		Store:      StoreConfig{Driver: StoreMemory, Migrate: true},
		Lock: LockConfig{
			TTL:    30 * time.Second,
			Wait:   5 * time.Minute,
			Prefix: "specs:lookup:",
		},
	}
}

// Load reads .env, the YAML file at path (or $SPECS_CONFIG) and environment overrides, in that order.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("SPECS_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("SCRAPEDO_TOKEN"); v != "" {
		c.Proxy.Token = v
	}
	if v := os.Getenv("SCRAPEDO_BUDGET"); v != "" {
		budget, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCRAPEDO_BUDGET %q: %w", v, err)
		}
		c.Proxy.Budget = budget
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Store.Driver = StorePostgres
		c.Store.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Lock.RedisAddr = v
	}
	return nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
