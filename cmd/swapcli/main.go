// Binary swapcli runs the full swap pipeline from the terminal: quote,
// build, sign with a local key, submit, confirm.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SauceFoong/jup-swap-app/internal/config"
	"github.com/SauceFoong/jup-swap-app/internal/jupiter"
	"github.com/SauceFoong/jup-swap-app/internal/price"
	"github.com/SauceFoong/jup-swap-app/internal/submit"
	"github.com/SauceFoong/jup-swap-app/internal/swap"
	"github.com/SauceFoong/jup-swap-app/internal/token"
	"github.com/SauceFoong/jup-swap-app/internal/util"
	"github.com/SauceFoong/jup-swap-app/internal/wallet"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	from := flag.String("from", "USDC", "input token symbol")
	to := flag.String("to", "SOL", "output token symbol")
	amount := flag.String("amount", "1", "input amount in display units")
	slippageBps := flag.Int("slippage-bps", 50, "slippage tolerance in basis points")
	dryRun := flag.Bool("dry-run", false, "quote only, do not swap")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := util.NewLogger(cfg.App.LogLevel)

	input, ok := token.BySymbol(*from)
	if !ok {
		log.Fatalf("unknown token %q", *from)
	}
	output, ok := token.BySymbol(*to)
	if !ok {
		log.Fatalf("unknown token %q", *to)
	}
	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		log.Fatalf("amount: %v", err)
	}

	key, err := wallet.LoadPrivateKeyFromEnv()
	if err != nil {
		log.Fatalf("wallet: %v", err)
	}

	jup := jupiter.NewClient(cfg.Jupiter.BaseURL)
	submitter := submit.New(cfg.Solana.RpcURL, cfg.Solana.Commitment, logger)
	prices := price.NewFetcher(
		[]price.Source{
			price.CoinGecko{Base: cfg.Price.CoinGeckoBase},
			price.Birdeye{Base: cfg.Price.BirdeyeBase},
		},
		logger,
	)

	session := swap.NewSession(jup, submitter, prices, logger,
		swap.WithSlippageBps(*slippageBps),
	)
	defer session.Close()
	session.SetTokens(input, output)
	session.SetAmount(amt)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	quote, err := session.QuoteNow(ctx)
	if err != nil {
		log.Fatalf("quote: %v", err)
	}
	snap := session.Snapshot()
	logger.Info().
		Str("in", input.Symbol).
		Str("out", output.Symbol).
		Str("outAmount", quote.OutAmount).
		Float64("rate", snap.Rate).
		Float64("priceImpactPct", snap.PriceImpact).
		Float64("usdValue", snap.USDValue).
		Msg("quote ready")

	if *dryRun {
		return
	}

	sig, err := session.ExecuteSwap(ctx, wallet.NewLocalSigner(key))
	if err != nil {
		category, message := swap.Classify(err)
		logger.Fatal().Err(err).Str("category", string(category)).Msg(message)
	}
	logger.Info().Str("signature", sig).Msg("swap confirmed")
}
