// Package net exposes the engine over HTTP: a join endpoint, the websocket
// upgrade, a health probe, and a read-only leaderboard API.
package net

import (
	"encoding/json"
	nethttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"ringrace/server"
	"ringrace/server/internal/net/ws"
	"ringrace/server/internal/ranking"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

type joinResponse struct {
	PlayerID string `json:"playerId"`
}

type leaderboardRow struct {
	PlayerID  string `json:"playerId"`
	Score     int    `json:"score"`
	RingCount int    `json:"ringCount"`
	Time      int64  `json:"time"`
}

// NewHTTPHandler builds the server's router. board may be nil when the
// configured store has no leaderboard support; the endpoint then reports
// 404.
func NewHTTPHandler(hub *server.Hub, board ranking.Leaderboard, log zerolog.Logger) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	r.Post("/join", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		writeJSON(w, log, joinResponse{PlayerID: hub.Join()})
	})

	r.Get("/leaderboard/{raceID}", func(w nethttp.ResponseWriter, req *nethttp.Request) {
		if board == nil {
			nethttp.Error(w, "leaderboard not available", nethttp.StatusNotFound)
			return
		}
		raceID, err := strconv.ParseInt(chi.URLParam(req, "raceID"), 10, 32)
		if err != nil {
			nethttp.Error(w, "invalid race id", nethttp.StatusBadRequest)
			return
		}

		limit := defaultLeaderboardLimit
		if raw := req.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				nethttp.Error(w, "invalid limit", nethttp.StatusBadRequest)
				return
			}
			limit = parsed
		}
		if limit > maxLeaderboardLimit {
			limit = maxLeaderboardLimit
		}

		entries, err := board.Top(req.Context(), int32(raceID), limit)
		if err != nil {
			log.Error().Err(err).Int64("race", raceID).Msg("leaderboard query failed")
			nethttp.Error(w, "leaderboard query failed", nethttp.StatusInternalServerError)
			return
		}

		rows := make([]leaderboardRow, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, leaderboardRow{
				PlayerID:  entry.PlayerID,
				Score:     entry.Score,
				RingCount: entry.RingCount,
				Time:      entry.ElapsedSeconds,
			})
		}
		writeJSON(w, log, rows)
	})

	r.Get("/ws", ws.NewHandler(hub, log).Handle)

	return r
}

func writeJSON(w nethttp.ResponseWriter, log zerolog.Logger, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}
