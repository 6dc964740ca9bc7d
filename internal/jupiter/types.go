package jupiter

import "encoding/json"

// Quote is the Jupiter v6 quote response.
type Quote struct {
	InputMint            string       `json:"inputMint"`
	InAmount             string       `json:"inAmount"`
	OutputMint           string       `json:"outputMint"`
	OutAmount            string       `json:"outAmount"`
	OtherAmountThreshold string       `json:"otherAmountThreshold"`
	SwapMode             string       `json:"swapMode"`
	SlippageBps          int          `json:"slippageBps"`
	PlatformFee          *PlatformFee `json:"platformFee"`
	PriceImpactPct       string       `json:"priceImpactPct"`
	RoutePlan            []RouteStep  `json:"routePlan"`
	ContextSlot          uint64       `json:"contextSlot"`
	TimeTaken            float64      `json:"timeTaken"`
}

// PlatformFee is nullable in the quote response.
type PlatformFee struct {
	Amount string `json:"amount"`
	FeeBps int    `json:"feeBps"`
}

// RouteStep is one hop of the route plan.
type RouteStep struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  int      `json:"percent"`
}

// SwapInfo names the venue and in/out amounts of a hop.
type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// QuoteRequest carries the quote query parameters. Amount and slippage stay
// strings so the proxy forwards exactly what it received.
type QuoteRequest struct {
	InputMint   string
	OutputMint  string
	Amount      string
	SlippageBps string
}

// SwapRequest is the body for the swap-build endpoint. QuoteResponse is kept
// raw so a previously returned quote round-trips byte for byte. The tri-state
// flags distinguish "absent" from an explicit false: only absent picks up the
// default.
type SwapRequest struct {
	QuoteResponse             json.RawMessage `json:"quoteResponse"`
	UserPublicKey             string          `json:"userPublicKey"`
	WrapAndUnwrapSol          *bool           `json:"wrapAndUnwrapSol,omitempty"`
	DynamicComputeUnitLimit   *bool           `json:"dynamicComputeUnitLimit,omitempty"`
	PrioritizationFeeLamports json.RawMessage `json:"prioritizationFeeLamports,omitempty"`
}

// SwapTransaction is the swap-build response: an unsigned transaction blob
// plus its validity bound.
type SwapTransaction struct {
	SwapTransaction           string `json:"swapTransaction"`
	LastValidBlockHeight      uint64 `json:"lastValidBlockHeight"`
	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports"`
}
