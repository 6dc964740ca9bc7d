package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Source resolves a token mint to a USD price from one upstream API.
// Each implementation normalizes its own response shape to a bare float.
type Source interface {
	Name() string
	Fetch(ctx context.Context, client *http.Client, mint string) (float64, error)
}

// CoinGecko queries the Solana token price endpoint.
type CoinGecko struct {
	Base string
}

func (c CoinGecko) Name() string { return "coingecko" }

func (c CoinGecko) Fetch(ctx context.Context, client *http.Client, mint string) (float64, error) {
	u := fmt.Sprintf("%s/api/v3/simple/token_price/solana?contract_addresses=%s&vs_currencies=usd",
		c.Base, url.QueryEscape(mint))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	entry, ok := payload[mint]
	if !ok {
		return 0, fmt.Errorf("no price for %s", mint)
	}
	return entry.USD, nil
}

// Birdeye queries the public price endpoint.
type Birdeye struct {
	Base string
}

func (b Birdeye) Name() string { return "birdeye" }

func (b Birdeye) Fetch(ctx context.Context, client *http.Client, mint string) (float64, error) {
	u := fmt.Sprintf("%s/public/price?address=%s", b.Base, url.QueryEscape(mint))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return payload.Value, nil
}
