package api

import (
	"context"
	"net/http"
	"time"
)

// handlePriceStream upgrades to a websocket and pushes the price document
// for the requested mint at the configured cadence until the client leaves.
func (s *Server) handlePriceStream(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query().Get("ids")
	if ids == "" {
		writeError(w, http.StatusBadRequest, "Missing ids parameter", "")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader pump: detects the client closing the socket.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for {
		px := s.prices.Fetch(ctx, ids)
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(priceDocument(ids, px)); err != nil {
			s.log.Debug().Err(err).Str("mint", ids).Msg("price stream closed")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
