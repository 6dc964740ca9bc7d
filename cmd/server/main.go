// Binary server runs the swap proxy HTTP service.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SauceFoong/jup-swap-app/internal/api"
	"github.com/SauceFoong/jup-swap-app/internal/config"
	"github.com/SauceFoong/jup-swap-app/internal/jupiter"
	"github.com/SauceFoong/jup-swap-app/internal/price"
	"github.com/SauceFoong/jup-swap-app/internal/submit"
	"github.com/SauceFoong/jup-swap-app/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := util.NewLogger(cfg.App.LogLevel)

	rpcURL := getEnv("SOLANA_RPC_URL", cfg.Solana.RpcURL)
	jupiterBase := getEnv("JUPITER_BASE_URL", cfg.Jupiter.BaseURL)

	jup := jupiter.NewClient(jupiterBase)
	submitter := submit.New(rpcURL, cfg.Solana.Commitment, logger)
	prices := price.NewFetcher(
		[]price.Source{
			price.CoinGecko{Base: cfg.Price.CoinGeckoBase},
			price.Birdeye{Base: cfg.Price.BirdeyeBase},
		},
		logger,
		price.WithCacheTTL(time.Duration(cfg.Price.CacheTTL)*time.Millisecond),
	)

	server := api.New(jup, submitter, prices, logger,
		api.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		api.WithRateLimit(cfg.Server.RatePerMinute),
		api.WithStreamInterval(time.Duration(cfg.Price.StreamInterval)*time.Millisecond),
	)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("jupiter", jupiterBase).Str("rpc", rpcURL).Msg("swap proxy listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("server shut down")
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
