// internal/httpserver/routes_leaderboard.go
//
// Leaderboard routes.
//   - GET /leaderboard?limit=N → best entries, highest score first
//   - GET /leaderboard/{name}  → one player's best entry
//
// A failing backend is reported as 503 with a placeholder so clients can
// keep rendering instead of erroring out.

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/runner/internal/leaderboard"
)

const maxLeaderboardLimit = 50

type leaderboardRes struct {
	Top         []leaderboard.Entry `json:"top"`
	Placeholder string              `json:"placeholder,omitempty"`
	Error       string              `json:"error,omitempty"`
}

func (s *Server) mountLeaderboard(r chi.Router) {
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/leaderboard/{name}", s.handlePlayerBest)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.LeaderboardSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	top, err := s.board.Top(r.Context(), limit)
	if err != nil {
		log.Warn().Err(err).Msg("leaderboard top")
		writeJSON(w, http.StatusServiceUnavailable, leaderboardRes{
			Top:         []leaderboard.Entry{},
			Placeholder: "Leaderboard unavailable",
			Error:       "leaderboard_unavailable",
		})
		return
	}
	res := leaderboardRes{Top: top}
	if len(top) == 0 {
		res.Top = []leaderboard.Entry{}
		res.Placeholder = "No scores yet"
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePlayerBest(w http.ResponseWriter, r *http.Request) {
	key := leaderboard.Key(chi.URLParam(r, "name"))
	if key == "" {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	e, ok, err := s.board.Get(r.Context(), key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("leaderboard get")
		writeError(w, http.StatusServiceUnavailable, "leaderboard_unavailable")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}
