package price

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const testMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func TestFetchFirstSourceWins(t *testing.T) {
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("contract_addresses") != testMint {
			t.Fatalf("missing contract_addresses query")
		}
		fmt.Fprintf(w, `{"%s":{"usd":1.01}}`, testMint)
	}))
	defer gecko.Close()

	birdeyeCalled := false
	birdeye := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		birdeyeCalled = true
		fmt.Fprint(w, `{"value":2.02}`)
	}))
	defer birdeye.Close()

	f := NewFetcher([]Source{CoinGecko{Base: gecko.URL}, Birdeye{Base: birdeye.URL}}, zerolog.Nop())
	if px := f.Fetch(context.Background(), testMint); px != 1.01 {
		t.Fatalf("expected 1.01, got %v", px)
	}
	if birdeyeCalled {
		t.Fatalf("second source should not be tried when the first succeeds")
	}
}

func TestFetchFallsBackInOrder(t *testing.T) {
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer gecko.Close()
	birdeye := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") != testMint {
			t.Fatalf("missing address query")
		}
		fmt.Fprint(w, `{"value":2.02}`)
	}))
	defer birdeye.Close()

	f := NewFetcher([]Source{CoinGecko{Base: gecko.URL}, Birdeye{Base: birdeye.URL}}, zerolog.Nop())
	if px := f.Fetch(context.Background(), testMint); px != 2.02 {
		t.Fatalf("expected 2.02 from fallback, got %v", px)
	}
}

func TestFetchFailsOpenToZero(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer broken.Close()

	f := NewFetcher([]Source{CoinGecko{Base: broken.URL}, Birdeye{Base: broken.URL}}, zerolog.Nop())
	if px := f.Fetch(context.Background(), testMint); px != 0 {
		t.Fatalf("expected zero when every source fails, got %v", px)
	}
}

func TestFetchEmptyMint(t *testing.T) {
	f := NewFetcher(nil, zerolog.Nop())
	if px := f.Fetch(context.Background(), ""); px != 0 {
		t.Fatalf("expected zero for empty mint, got %v", px)
	}
}

func TestFetchCaches(t *testing.T) {
	calls := 0
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"%s":{"usd":3.5}}`, testMint)
	}))
	defer gecko.Close()

	f := NewFetcher([]Source{CoinGecko{Base: gecko.URL}}, zerolog.Nop(), WithCacheTTL(time.Minute))
	f.Fetch(context.Background(), testMint)
	f.Fetch(context.Background(), testMint)
	if calls != 1 {
		t.Fatalf("expected one upstream call with warm cache, got %d", calls)
	}
}

func TestFetchCacheExpiry(t *testing.T) {
	calls := 0
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"%s":{"usd":3.5}}`, testMint)
	}))
	defer gecko.Close()

	f := NewFetcher([]Source{CoinGecko{Base: gecko.URL}}, zerolog.Nop(), WithCacheTTL(time.Minute))
	now := time.Now()
	f.now = func() time.Time { return now }

	f.Fetch(context.Background(), testMint)
	now = now.Add(2 * time.Minute)
	f.Fetch(context.Background(), testMint)
	if calls != 2 {
		t.Fatalf("expected refetch after TTL, got %d calls", calls)
	}
}
