// Package api mounts the proxy HTTP surface the swap UI talks to.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/SauceFoong/jup-swap-app/internal/swap"
)

// Server holds the collaborators behind the proxy routes.
type Server struct {
	log            zerolog.Logger
	agg            swap.Aggregator
	sub            swap.TxSubmitter
	prices         swap.PriceLookup
	allowedOrigins []string
	ratePerMinute  int
	streamInterval time.Duration
	upgrader       websocket.Upgrader
}

// Option configures Server construction parameters.
type Option func(*Server)

// WithAllowedOrigins sets the CORS allow-list for the browser UI.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// WithRateLimit enables per-IP rate limiting on the proxy routes.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) { s.ratePerMinute = perMinute }
}

// WithStreamInterval overrides the websocket price push cadence.
func WithStreamInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.streamInterval = d
		}
	}
}

// New builds the server over an aggregator client, a transaction submitter
// and a price fetcher.
func New(agg swap.Aggregator, sub swap.TxSubmitter, prices swap.PriceLookup, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		log:            log,
		agg:            agg,
		sub:            sub,
		prices:         prices,
		streamInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      s.checkWSOrigin,
	}
	return s
}

// Handler assembles the chi router with middleware and routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	if s.ratePerMinute > 0 {
		r.Use(httprate.LimitByIP(s.ratePerMinute, time.Minute))
	}

	r.Get("/quote", s.handleQuote)
	r.Post("/swap", s.handleSwap)
	r.Post("/submit", s.handleSubmit)
	r.Get("/price", s.handlePrice)
	r.Get("/price/stream", s.handlePriceStream)
	r.Get("/tokens", s.handleTokens)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// recoverer turns a handler panic into a 500 envelope; nothing crashes the
// request loop.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
				writeError(w, http.StatusInternalServerError, "internal server error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkWSOrigin(r *http.Request) bool {
	if len(s.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
