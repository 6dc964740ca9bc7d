package config

import (
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "jup-swap-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.LogLevel != "debug" {
		t.Fatalf("unexpected App.LogLevel: %s", cfg.App.LogLevel)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("unexpected Server.Addr: %s", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected allowed origins: %+v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.RatePerMinute != 60 {
		t.Fatalf("unexpected rate per minute: %d", cfg.Server.RatePerMinute)
	}
	if cfg.Jupiter.BaseURL != "https://quote-api.example.org" {
		t.Fatalf("unexpected Jupiter.BaseURL: %s", cfg.Jupiter.BaseURL)
	}
	if cfg.Solana.RpcURL != "https://rpc.example.org" {
		t.Fatalf("unexpected Solana.RpcURL: %s", cfg.Solana.RpcURL)
	}
	if cfg.Solana.Commitment != "processed" {
		t.Fatalf("expected processed commitment, got %s", cfg.Solana.Commitment)
	}
	if cfg.Price.CacheTTL != 1000 {
		t.Fatalf("unexpected price cache TTL: %d", cfg.Price.CacheTTL)
	}
	if cfg.Price.StreamInterval != 250 {
		t.Fatalf("unexpected stream interval: %d", cfg.Price.StreamInterval)
	}
	if cfg.Swap.DebounceMs != 100 {
		t.Fatalf("unexpected debounce: %d", cfg.Swap.DebounceMs)
	}
	if cfg.Swap.DefaultSlippageBps != 75 {
		t.Fatalf("unexpected default slippage: %d", cfg.Swap.DefaultSlippageBps)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := Save(path, &Config{}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr, got %s", cfg.Server.Addr)
	}
	if cfg.Jupiter.BaseURL != "https://quote-api.jup.ag" {
		t.Fatalf("expected default jupiter base, got %s", cfg.Jupiter.BaseURL)
	}
	if cfg.Solana.RpcURL != "https://api.mainnet-beta.solana.com" {
		t.Fatalf("expected default rpc url, got %s", cfg.Solana.RpcURL)
	}
	if cfg.Swap.DebounceMs != 500 {
		t.Fatalf("expected default debounce 500, got %d", cfg.Swap.DebounceMs)
	}
	if cfg.Swap.DefaultSlippageBps != 50 {
		t.Fatalf("expected default slippage 50, got %d", cfg.Swap.DefaultSlippageBps)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}
