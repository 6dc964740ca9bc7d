package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"

	"github.com/SauceFoong/jup-swap-app/internal/apperrors"
)

const quoteBody = `{"inputMint":"AAA","inAmount":"1000000","outputMint":"BBB","outAmount":"519196",` +
	`"otherAmountThreshold":"516600","swapMode":"ExactIn","slippageBps":50,"platformFee":null,` +
	`"priceImpactPct":"0.12","routePlan":[{"swapInfo":{"ammKey":"amm1","label":"Orca",` +
	`"inputMint":"AAA","outputMint":"BBB","inAmount":"1000000","outAmount":"519196",` +
	`"feeAmount":"30","feeMint":"AAA"},"percent":100}],"contextSlot":277000000,"timeTaken":0.04}`

func TestGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v6/quote" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("inputMint") != "AAA" || q.Get("outputMint") != "BBB" {
			t.Fatalf("unexpected mints: %s -> %s", q.Get("inputMint"), q.Get("outputMint"))
		}
		if q.Get("amount") != "1000000" {
			t.Fatalf("unexpected amount %s", q.Get("amount"))
		}
		if q.Get("slippageBps") != "75" {
			t.Fatalf("unexpected slippageBps %s", q.Get("slippageBps"))
		}
		io.WriteString(w, quoteBody)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	quote, raw, err := client.GetQuote(context.Background(), QuoteRequest{
		InputMint: "AAA", OutputMint: "BBB", Amount: "1000000", SlippageBps: "75",
	})
	if err != nil {
		t.Fatalf("GetQuote returned error: %v", err)
	}
	if quote.OutAmount != "519196" {
		t.Fatalf("expected OutAmount 519196, got %s", quote.OutAmount)
	}
	if quote.PriceImpactPct != "0.12" {
		t.Fatalf("unexpected priceImpactPct %s", quote.PriceImpactPct)
	}
	if len(quote.RoutePlan) != 1 || quote.RoutePlan[0].SwapInfo.Label != "Orca" {
		t.Fatalf("unexpected route plan: %+v", quote.RoutePlan)
	}
	if string(raw) != quoteBody {
		t.Fatalf("raw body should pass through unmodified")
	}
}

func TestGetQuoteDefaultSlippage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("slippageBps"); got != "50" {
			t.Fatalf("expected default slippageBps 50, got %s", got)
		}
		io.WriteString(w, quoteBody)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, _, err := client.GetQuote(context.Background(), QuoteRequest{InputMint: "AAA", OutputMint: "BBB", Amount: "1"}); err != nil {
		t.Fatalf("GetQuote returned error: %v", err)
	}
}

func TestGetQuoteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"No routes found"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, _, err := client.GetQuote(context.Background(), QuoteRequest{InputMint: "AAA", OutputMint: "BBB", Amount: "1"})
	var ue *apperrors.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", ue.Status)
	}
	if !bytes.Contains(ue.Body, []byte("No routes found")) {
		t.Fatalf("expected upstream body preserved, got %s", ue.Body)
	}
}

func TestBuildSwapDefaults(t *testing.T) {
	var got map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v6/swap" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		io.WriteString(w, `{"swapTransaction":"dGVzdA==","lastValidBlockHeight":250000000,"prioritizationFeeLamports":5000}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	tx, _, err := client.BuildSwap(context.Background(), SwapRequest{
		QuoteResponse: json.RawMessage(quoteBody),
		UserPublicKey: "wallet111",
	})
	if err != nil {
		t.Fatalf("BuildSwap returned error: %v", err)
	}
	if tx.LastValidBlockHeight != 250000000 {
		t.Fatalf("unexpected lastValidBlockHeight %d", tx.LastValidBlockHeight)
	}
	if string(got["wrapAndUnwrapSol"]) != "true" {
		t.Fatalf("expected wrapAndUnwrapSol default true, got %s", got["wrapAndUnwrapSol"])
	}
	if string(got["dynamicComputeUnitLimit"]) != "true" {
		t.Fatalf("expected dynamicComputeUnitLimit default true, got %s", got["dynamicComputeUnitLimit"])
	}
	if string(got["prioritizationFeeLamports"]) != `"auto"` {
		t.Fatalf("expected prioritizationFeeLamports auto, got %s", got["prioritizationFeeLamports"])
	}
	if !bytes.Equal(got["quoteResponse"], []byte(quoteBody)) {
		t.Fatalf("quoteResponse should round-trip byte for byte")
	}
}

func TestBuildSwapExplicitFalseHonored(t *testing.T) {
	var got map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		io.WriteString(w, `{"swapTransaction":"dGVzdA==","lastValidBlockHeight":1,"prioritizationFeeLamports":0}`)
	}))
	defer server.Close()

	f := false
	client := NewClient(server.URL)
	_, _, err := client.BuildSwap(context.Background(), SwapRequest{
		QuoteResponse:           json.RawMessage(`{}`),
		UserPublicKey:           "wallet111",
		DynamicComputeUnitLimit: &f,
	})
	if err != nil {
		t.Fatalf("BuildSwap returned error: %v", err)
	}
	if string(got["dynamicComputeUnitLimit"]) != "false" {
		t.Fatalf("explicit false must not be coerced, got %s", got["dynamicComputeUnitLimit"])
	}
}

func TestBuildSwapUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "route expired", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, _, err := client.BuildSwap(context.Background(), SwapRequest{QuoteResponse: json.RawMessage(`{}`), UserPublicKey: "w"})
	var ue *apperrors.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", ue.Status)
	}
}
