package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// GetConfig loads the JSON config file and then overrides fields from
// the environment. A .env file is honored when present; a missing one
// is not an error.
func GetConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err = json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

type Config struct {
	App       App       `json:"app"`
	Upstream  Upstream  `json:"upstream"`
	Dashboard Dashboard `json:"dashboard"`
	Cache     Cache     `json:"cache"`
}

type App struct {
	Port int `json:"port" envconfig:"PORT"`
}

type Upstream struct {
	InfoURL   string `json:"info_url" envconfig:"UPSTREAM_INFO_URL"`
	RatesURL  string `json:"rates_url" envconfig:"UPSTREAM_RATES_URL"`
	TimeoutMs int    `json:"timeout_ms" envconfig:"UPSTREAM_TIMEOUT_MS"`
}

type Dashboard struct {
	PriceStrategy    string          `json:"price_strategy" envconfig:"PRICE_STRATEGY"`
	PositionStrategy string          `json:"position_strategy" envconfig:"POSITION_STRATEGY"`
	FailurePolicy    string          `json:"failure_policy" envconfig:"FAILURE_POLICY"`
	LeaderboardTopN  int             `json:"leaderboard_top_n" envconfig:"LEADERBOARD_TOP_N"`
	Wallets          []string        `json:"wallets" envconfig:"TRACKED_WALLETS"`
	Assets           []Asset         `json:"assets"`
	SimulatedOpens   []SimulatedOpen `json:"simulated_positions"`
}

type Asset struct {
	Symbol         string  `json:"symbol"`
	Title          string  `json:"title"`
	ReferencePrice float64 `json:"reference_price"`
}

// SimulatedOpen is one hardcoded position used by the simulated
// position source and by the degrade fallback.
type SimulatedOpen struct {
	Asset            string  `json:"asset"`
	Side             string  `json:"side"`
	SizeUSD          float64 `json:"size_usd"`
	EntryPrice       float64 `json:"entry_price"`
	LiquidationPrice float64 `json:"liquidation_price"`
}

type Cache struct {
	RedisHost     string `json:"redis_host" envconfig:"REDIS_HOST"`
	RedisPort     int    `json:"redis_port" envconfig:"REDIS_PORT"`
	RedisPassword string `json:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `json:"redis_db" envconfig:"REDIS_DB"`
	PoolSize      int    `json:"pool_size" envconfig:"REDIS_POOL_SIZE"`
	TTLSeconds    int    `json:"ttl_seconds" envconfig:"CACHE_TTL_SECONDS"`
}

func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", c.App.Port)
	}
	if c.Upstream.InfoURL == "" {
		return fmt.Errorf("upstream info_url cannot be empty")
	}
	if len(c.Dashboard.Assets) == 0 {
		return fmt.Errorf("at least one tracked asset is required")
	}
	for _, a := range c.Dashboard.Assets {
		if a.Symbol == "" {
			return fmt.Errorf("tracked asset symbol cannot be empty")
		}
		if a.ReferencePrice <= 0 {
			return fmt.Errorf("reference price for %s must be positive", a.Symbol)
		}
	}
	for _, p := range c.Dashboard.SimulatedOpens {
		if p.EntryPrice <= 0 {
			return fmt.Errorf("simulated position entry price for %s must be positive", p.Asset)
		}
		if p.Side != "Long" && p.Side != "Short" {
			return fmt.Errorf("invalid simulated position side: %s", p.Side)
		}
	}
	return nil
}
