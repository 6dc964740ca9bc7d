// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, and logging levels.
type App struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

// Server configures the proxy HTTP surface.
type Server struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RatePerMinute  int      `yaml:"rate_per_minute"`
	RequestTimeout int      `yaml:"request_timeout_ms"`
}

// Jupiter defines the upstream aggregator endpoints.
type Jupiter struct {
	BaseURL string `yaml:"base_url"` // e.g. https://quote-api.jup.ag
}

// Solana defines RPC connectivity for transaction submission.
type Solana struct {
	RpcURL     string `yaml:"rpc_url"`
	Commitment string `yaml:"commitment"` // processed|confirmed|finalized
}

// Price configures the multi-source USD price fetcher.
type Price struct {
	CoinGeckoBase  string `yaml:"coingecko_base"`
	BirdeyeBase    string `yaml:"birdeye_base"`
	CacheTTL       int    `yaml:"cache_ttl_ms"`
	StreamInterval int    `yaml:"stream_interval_ms"`
}

// Swap groups tunables for the quote/swap session state machine.
type Swap struct {
	DebounceMs         int `yaml:"debounce_ms"`
	DefaultSlippageBps int `yaml:"default_slippage_bps"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App     App     `yaml:"app"`
	Server  Server  `yaml:"server"`
	Jupiter Jupiter `yaml:"jupiter"`
	Solana  Solana  `yaml:"solana"`
	Price   Price   `yaml:"price"`
	Swap    Swap    `yaml:"swap"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyDefaults()
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Jupiter.BaseURL == "" {
		c.Jupiter.BaseURL = "https://quote-api.jup.ag"
	}
	if c.Solana.RpcURL == "" {
		c.Solana.RpcURL = "https://api.mainnet-beta.solana.com"
	}
	if c.Solana.Commitment == "" {
		c.Solana.Commitment = "confirmed"
	}
	if c.Price.CoinGeckoBase == "" {
		c.Price.CoinGeckoBase = "https://api.coingecko.com"
	}
	if c.Price.BirdeyeBase == "" {
		c.Price.BirdeyeBase = "https://public-api.birdeye.so"
	}
	if c.Price.CacheTTL <= 0 {
		c.Price.CacheTTL = 30000
	}
	if c.Price.StreamInterval <= 0 {
		c.Price.StreamInterval = 5000
	}
	if c.Swap.DebounceMs <= 0 {
		c.Swap.DebounceMs = 500
	}
	if c.Swap.DefaultSlippageBps <= 0 {
		c.Swap.DefaultSlippageBps = 50
	}
}
