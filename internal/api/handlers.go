package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/SauceFoong/jup-swap-app/internal/apperrors"
	"github.com/SauceFoong/jup-swap-app/internal/jupiter"
	"github.com/SauceFoong/jup-swap-app/internal/metrics"
	"github.com/SauceFoong/jup-swap-app/internal/token"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleQuote validates the three required parameters, then forwards the
// request upstream and passes the body through verbatim.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := jupiter.QuoteRequest{
		InputMint:   q.Get("inputMint"),
		OutputMint:  q.Get("outputMint"),
		Amount:      q.Get("amount"),
		SlippageBps: q.Get("slippageBps"),
	}
	if req.InputMint == "" || req.OutputMint == "" || req.Amount == "" {
		metrics.QuotesTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "Missing required parameters: inputMint, outputMint, amount", "")
		return
	}

	_, raw, err := s.agg.GetQuote(r.Context(), req)
	if err != nil {
		var ue *apperrors.UpstreamError
		if errors.As(err, &ue) {
			metrics.QuotesTotal.WithLabelValues("upstream_error").Inc()
			writeError(w, ue.Status, fmt.Sprintf("Jupiter API error: %d", ue.Status), string(ue.Body))
			return
		}
		metrics.QuotesTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("quote fetch failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch quote", err.Error())
		return
	}
	metrics.QuotesTotal.WithLabelValues("ok").Inc()
	writeRaw(w, raw)
}

// handleSwap forwards a quote plus wallet address to the swap-build endpoint.
func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req jupiter.SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.SwapsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}
	if len(req.QuoteResponse) == 0 || req.UserPublicKey == "" {
		metrics.SwapsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "Missing required parameters: quoteResponse, userPublicKey", "")
		return
	}

	_, raw, err := s.agg.BuildSwap(r.Context(), req)
	if err != nil {
		var ue *apperrors.UpstreamError
		if errors.As(err, &ue) {
			metrics.SwapsTotal.WithLabelValues("upstream_error").Inc()
			writeError(w, ue.Status, fmt.Sprintf("Jupiter Swap API error: %d", ue.Status), string(ue.Body))
			return
		}
		metrics.SwapsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("swap build failed")
		writeError(w, http.StatusInternalServerError, "Failed to create swap transaction", err.Error())
		return
	}
	metrics.SwapsTotal.WithLabelValues("ok").Inc()
	writeRaw(w, raw)
}

type submitRequest struct {
	SignedTransaction    string `json:"signedTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// handleSubmit forwards a signed transaction blob to the RPC node and waits
// for confirmation scoped to its validity bound.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.SubmitsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}
	if req.SignedTransaction == "" {
		metrics.SubmitsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "Missing required parameters: signedTransaction", "")
		return
	}

	sig, err := s.sub.Submit(r.Context(), req.SignedTransaction, req.LastValidBlockHeight)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDeserialize):
			metrics.SubmitsTotal.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusBadRequest, "Invalid signed transaction", err.Error())
		case errors.Is(err, apperrors.ErrExpired):
			metrics.SubmitsTotal.WithLabelValues("expired").Inc()
			writeError(w, http.StatusGatewayTimeout, "Transaction expired before confirmation", err.Error())
		case errors.Is(err, apperrors.ErrTransactionFailed):
			metrics.SubmitsTotal.WithLabelValues("failed").Inc()
			writeError(w, http.StatusBadGateway, "Transaction failed", err.Error())
		default:
			metrics.SubmitsTotal.WithLabelValues("error").Inc()
			s.log.Error().Err(err).Msg("submit failed")
			writeError(w, http.StatusInternalServerError, "Failed to submit transaction", err.Error())
		}
		return
	}
	metrics.SubmitsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"signature": sig.String()})
}

// handlePrice always answers 200: a pricing outage resolves to zero rather
// than an error so the UI keeps working.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query().Get("ids")
	if ids == "" {
		writeError(w, http.StatusBadRequest, "Missing ids parameter", "")
		return
	}
	px := s.prices.Fetch(r.Context(), ids)
	writeJSON(w, http.StatusOK, priceDocument(ids, px))
}

func priceDocument(mint string, px float64) map[string]any {
	return map[string]any{
		"data": map[string]any{
			mint: map[string]float64{"price": px},
		},
	}
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, token.All())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "jup-swap-proxy"})
}
