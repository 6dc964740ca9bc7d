// Package swap sequences price lookup, quoting, transaction building,
// signing and submission for a single swap form session.
package swap

import (
	"context"
	"encoding/base64"
	"strconv"
	"sync"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/SauceFoong/jup-swap-app/internal/apperrors"
	"github.com/SauceFoong/jup-swap-app/internal/jupiter"
	"github.com/SauceFoong/jup-swap-app/internal/token"
)

// State is the session's position in the swap lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateQuotePending State = "quote_pending"
	StateQuoteReady   State = "quote_ready"
	StateSwapPending  State = "swap_pending"
	StateSwapComplete State = "swap_complete"
	StateFailed       State = "failed"
)

// Aggregator is the slice of the Jupiter client the session needs.
type Aggregator interface {
	GetQuote(ctx context.Context, req jupiter.QuoteRequest) (*jupiter.Quote, []byte, error)
	BuildSwap(ctx context.Context, req jupiter.SwapRequest) (*jupiter.SwapTransaction, []byte, error)
}

// TxSubmitter submits a signed transaction and waits for confirmation.
type TxSubmitter interface {
	Submit(ctx context.Context, signedTxB64 string, lastValidBlockHeight uint64) (solana.Signature, error)
}

// PriceLookup resolves a mint to a USD price, zero on failure.
type PriceLookup interface {
	Fetch(ctx context.Context, mint string) float64
}

// Signer is the externally held wallet. PublicKey returns the base58
// address; SignTransaction receives and returns serialized transaction bytes.
type Signer interface {
	PublicKey() string
	SignTransaction(tx []byte) ([]byte, error)
}

// Snapshot is the UI-visible session state.
type Snapshot struct {
	State       State
	Quote       *jupiter.Quote
	Rate        float64
	PriceImpact float64
	USDValue    float64
	ErrCategory Category
	ErrMessage  string
}

// Session owns the swap form state. A change to amount or token pair arms a
// debounce timer; only the most recently issued quote request is applied,
// enforced by a monotonically increasing sequence number.
type Session struct {
	agg    Aggregator
	sub    TxSubmitter
	prices PriceLookup
	log    zerolog.Logger

	debounce    time.Duration
	slippageBps int
	quoteWait   time.Duration
	onUpdate    func(Snapshot)

	mu          sync.Mutex
	state       State
	input       token.Token
	output      token.Token
	amount      decimal.Decimal
	quote       *jupiter.Quote
	quoteRaw    []byte
	rate        float64
	priceImpact float64
	usdValue    float64
	errCategory Category
	errMessage  string
	seq         uint64
	timer       *time.Timer
}

// Option configures Session construction parameters.
type Option func(*Session)

// WithDebounce overrides the 500ms quote debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithSlippageBps overrides the default slippage tolerance.
func WithSlippageBps(bps int) Option {
	return func(s *Session) {
		if bps > 0 {
			s.slippageBps = bps
		}
	}
}

// WithUpdateFunc registers a callback invoked after every state transition.
func WithUpdateFunc(fn func(Snapshot)) Option {
	return func(s *Session) { s.onUpdate = fn }
}

// NewSession builds an idle session.
func NewSession(agg Aggregator, sub TxSubmitter, prices PriceLookup, log zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		agg:         agg,
		sub:         sub,
		prices:      prices,
		log:         log,
		debounce:    500 * time.Millisecond,
		slippageBps: 50,
		quoteWait:   10 * time.Second,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTokens replaces the token pair, invalidating any held quote.
func (s *Session) SetTokens(input, output token.Token) {
	s.mu.Lock()
	s.input = input
	s.output = output
	s.invalidateLocked()
	s.armTimerLocked()
	s.mu.Unlock()
	s.notify()
}

// SetAmount replaces the input amount, invalidating any held quote. A
// non-positive amount resets the session to idle without issuing a request.
func (s *Session) SetAmount(amount decimal.Decimal) {
	s.mu.Lock()
	s.amount = amount
	s.invalidateLocked()
	if amount.Sign() <= 0 {
		s.stopTimerLocked()
		s.state = StateIdle
	} else {
		s.armTimerLocked()
	}
	s.mu.Unlock()
	s.notify()
}

// Close cancels any pending debounce timer.
func (s *Session) Close() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.mu.Unlock()
}

// Snapshot returns a copy of the current UI-visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// QuoteNow bypasses the debounce and fetches a quote synchronously for the
// current pair and amount.
func (s *Session) QuoteNow(ctx context.Context) (*jupiter.Quote, error) {
	s.mu.Lock()
	s.stopTimerLocked()
	req, seq, ok := s.beginQuoteLocked()
	s.mu.Unlock()
	s.notify()
	if !ok {
		return nil, errors.Wrap(apperrors.ErrPrecondition, "no pair or amount set")
	}
	if err := s.fetchQuote(ctx, req, seq); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote, nil
}

// ExecuteSwap drives quote -> build -> sign -> submit. Requires a ready
// quote and a wallet; otherwise fails without any network call. Clears the
// quote and amount on success.
func (s *Session) ExecuteSwap(ctx context.Context, signer Signer) (string, error) {
	s.mu.Lock()
	if signer == nil || s.quote == nil || s.state != StateQuoteReady {
		s.mu.Unlock()
		return "", errors.Wrap(apperrors.ErrPrecondition, "need a quote and a connected wallet")
	}
	quoteRaw := s.quoteRaw
	s.state = StateSwapPending
	s.errCategory, s.errMessage = CategoryNone, ""
	s.mu.Unlock()
	s.notify()

	sig, err := s.runSwap(ctx, quoteRaw, signer)
	s.mu.Lock()
	if err != nil {
		s.state = StateFailed
		s.errCategory, s.errMessage = Classify(err)
		s.log.Warn().Err(err).Str("category", string(s.errCategory)).Msg("swap failed")
	} else {
		s.state = StateSwapComplete
		s.quote = nil
		s.quoteRaw = nil
		s.amount = decimal.Zero
		s.rate, s.priceImpact, s.usdValue = 0, 0, 0
	}
	s.mu.Unlock()
	s.notify()
	if err != nil {
		return "", err
	}
	return sig, nil
}

func (s *Session) runSwap(ctx context.Context, quoteRaw []byte, signer Signer) (string, error) {
	swapTx, _, err := s.agg.BuildSwap(ctx, jupiter.SwapRequest{
		QuoteResponse: quoteRaw,
		UserPublicKey: signer.PublicKey(),
	})
	if err != nil {
		return "", errors.Wrap(err, "build swap transaction")
	}

	raw, err := base64.StdEncoding.DecodeString(swapTx.SwapTransaction)
	if err != nil {
		return "", errors.Wrap(apperrors.ErrDeserialize, err.Error())
	}
	signed, err := signer.SignTransaction(raw)
	if err != nil {
		return "", errors.Wrap(err, "sign transaction")
	}

	sig, err := s.sub.Submit(ctx, base64.StdEncoding.EncodeToString(signed), swapTx.LastValidBlockHeight)
	if err != nil {
		return "", err
	}
	return sig.String(), nil
}

// invalidateLocked discards the held quote and supersedes any in-flight
// quote request by bumping the sequence number.
func (s *Session) invalidateLocked() {
	s.seq++
	s.quote = nil
	s.quoteRaw = nil
	s.rate, s.priceImpact, s.usdValue = 0, 0, 0
	s.errCategory, s.errMessage = CategoryNone, ""
}

func (s *Session) armTimerLocked() {
	s.stopTimerLocked()
	if s.input.Address == "" || s.output.Address == "" || s.amount.Sign() <= 0 {
		return
	}
	s.timer = time.AfterFunc(s.debounce, s.fireQuote)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fireQuote runs on the debounce timer goroutine.
func (s *Session) fireQuote() {
	s.mu.Lock()
	req, seq, ok := s.beginQuoteLocked()
	s.mu.Unlock()
	if !ok {
		return
	}
	s.notify()

	ctx, cancel := context.WithTimeout(context.Background(), s.quoteWait)
	defer cancel()
	_ = s.fetchQuote(ctx, req, seq)
}

// beginQuoteLocked stamps a new sequence number and moves to QuotePending.
func (s *Session) beginQuoteLocked() (jupiter.QuoteRequest, uint64, bool) {
	if s.input.Address == "" || s.output.Address == "" || s.amount.Sign() <= 0 {
		return jupiter.QuoteRequest{}, 0, false
	}
	s.seq++
	s.state = StateQuotePending
	s.errCategory, s.errMessage = CategoryNone, ""
	req := jupiter.QuoteRequest{
		InputMint:   s.input.Address,
		OutputMint:  s.output.Address,
		Amount:      strconv.FormatUint(token.ToTokenAmount(s.amount, s.input.Decimals), 10),
		SlippageBps: strconv.Itoa(s.slippageBps),
	}
	return req, s.seq, true
}

// fetchQuote performs the network calls and applies the result only when the
// sequence number still matches the latest issued request.
func (s *Session) fetchQuote(ctx context.Context, req jupiter.QuoteRequest, seq uint64) error {
	quote, raw, err := s.agg.GetQuote(ctx, req)
	var usd float64
	if err == nil && s.prices != nil {
		usd = s.prices.Fetch(ctx, req.InputMint)
	}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.log.Debug().Uint64("seq", seq).Uint64("latest", s.seq).Msg("dropping superseded quote response")
		return err
	}
	if err != nil {
		s.state = StateFailed
		s.errCategory, s.errMessage = Classify(err)
		s.mu.Unlock()
		s.notify()
		return err
	}

	s.quote = quote
	s.quoteRaw = raw
	s.rate = s.computeRateLocked(quote)
	s.priceImpact, _ = strconv.ParseFloat(quote.PriceImpactPct, 64)
	s.usdValue, _ = s.amount.Mul(decimal.NewFromFloat(usd)).Float64()
	s.state = StateQuoteReady
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Session) computeRateLocked(quote *jupiter.Quote) float64 {
	out, err := token.FromTokenAmount(quote.OutAmount, s.output.Decimals)
	if err != nil || s.amount.Sign() <= 0 {
		return 0
	}
	rate, _ := out.Div(s.amount).Float64()
	return rate
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:       s.state,
		Quote:       s.quote,
		Rate:        s.rate,
		PriceImpact: s.priceImpact,
		USDValue:    s.usdValue,
		ErrCategory: s.errCategory,
		ErrMessage:  s.errMessage,
	}
}

func (s *Session) notify() {
	if s.onUpdate == nil {
		return
	}
	s.onUpdate(s.Snapshot())
}
