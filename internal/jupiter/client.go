// Package jupiter is the client for the upstream Jupiter v6 aggregator API.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/SauceFoong/jup-swap-app/internal/apperrors"
)

const defaultSlippageBps = "50"

// Client talks to the aggregator's quote and swap-build endpoints.
type Client struct {
	Base string
	Http *http.Client
}

// NewClient constructs a client for the given base URL, e.g. https://quote-api.jup.ag.
func NewClient(base string) *Client {
	return &Client{
		Base: base,
		Http: &http.Client{Timeout: 8 * time.Second},
	}
}

// GetQuote fetches a quote. It returns both the decoded quote and the raw
// upstream body so proxy callers can pass the bytes through unmodified.
// A non-2xx upstream response comes back as *apperrors.UpstreamError.
func (c *Client) GetQuote(ctx context.Context, req QuoteRequest) (*Quote, []byte, error) {
	slippage := req.SlippageBps
	if slippage == "" {
		slippage = defaultSlippageBps
	}
	q := url.Values{}
	q.Set("inputMint", req.InputMint)
	q.Set("outputMint", req.OutputMint)
	q.Set("amount", req.Amount)
	q.Set("slippageBps", slippage)
	u := c.Base + "/v6/quote?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create quote request")
	}
	resp, err := c.Http.Do(httpReq)
	if err != nil {
		return nil, nil, errors.Wrap(err, "quote request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read quote response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &apperrors.UpstreamError{Status: resp.StatusCode, Body: body}
	}

	var out Quote
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, nil, errors.Wrap(err, "decode quote response")
	}
	return &out, body, nil
}

// BuildSwap asks the aggregator for a ready-to-sign transaction for a
// previously obtained quote. Absent flags default to wrapAndUnwrapSol=true,
// dynamicComputeUnitLimit=true and prioritizationFeeLamports="auto".
func (c *Client) BuildSwap(ctx context.Context, req SwapRequest) (*SwapTransaction, []byte, error) {
	c.applySwapDefaults(&req)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, nil, errors.Wrap(err, "marshal swap request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+"/v6/swap", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, errors.Wrap(err, "create swap request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Http.Do(httpReq)
	if err != nil {
		return nil, nil, errors.Wrap(err, "swap request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read swap response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &apperrors.UpstreamError{Status: resp.StatusCode, Body: body}
	}

	var out SwapTransaction
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, nil, errors.Wrap(err, "decode swap response")
	}
	return &out, body, nil
}

func (c *Client) applySwapDefaults(req *SwapRequest) {
	if req.WrapAndUnwrapSol == nil {
		t := true
		req.WrapAndUnwrapSol = &t
	}
	if req.DynamicComputeUnitLimit == nil {
		t := true
		req.DynamicComputeUnitLimit = &t
	}
	if len(req.PrioritizationFeeLamports) == 0 {
		req.PrioritizationFeeLamports = json.RawMessage(`"auto"`)
	}
}
