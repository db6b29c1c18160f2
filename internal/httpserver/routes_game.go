// internal/httpserver/routes_game.go
//
// HTTP routes for client-paced game sessions.
//   - POST   /game/new          → start a session for a player name
//   - GET    /game/last-name    → name remembered from the previous session
//   - GET    /game/{id}         → state snapshot
//   - POST   /game/{id}/tick    → advance N ticks (optionally jumping first)
//   - POST   /game/{id}/jump    → tap: jump, or restart a finished run
//   - POST   /game/{id}/pause   → toggle pause
//   - POST   /game/{id}/restart → start a new run in the same session
//   - DELETE /game/{id}         → drop the session
//
// Sessions live in the store; every mutation runs inside store.Update.
// Finished runs are submitted to the leaderboard in the background.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/runner/internal/game"
	"github.com/robalobadob/runner/internal/leaderboard"
	"github.com/robalobadob/runner/internal/spawner"
	"github.com/robalobadob/runner/internal/store"
)

const nameCookie = "runner_name"

func defaultRand() spawner.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		// Websocket sessions outlive the request timeout.
		r.Get("/ws", s.handleLive)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(requestTimeout))
			r.Use(jsonContentType)

			r.Post("/new", s.handleNewGame)
			r.Get("/last-name", s.handleLastName)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGame)
				r.Delete("/", s.handleDeleteGame)
				r.Post("/tick", s.handleTick)
				r.Post("/jump", s.handleAction(func(g *game.Session) { g.Tap() }))
				r.Post("/pause", s.handleAction(func(g *game.Session) { g.TogglePause() }))
				r.Post("/restart", s.handleAction(func(g *game.Session) { g.Restart() }))
			})
		})
	})
}

// -----------------------------------------------------------------------------
// names

var errNameReserved = errors.New("name reserved")

// resolveName picks the name a request plays under. Signed-in users always
// play as their username; guests must pick a valid, unreserved name.
func (s *Server) resolveName(ctx context.Context, requested string) (name, userID string, err error) {
	if me := userFrom(ctx); me != nil {
		return me.Username, me.ID, nil
	}
	name, err = game.NormalizeName(requested)
	if err != nil {
		return "", "", err
	}
	if _, ok := s.reserved[leaderboard.Key(name)]; ok {
		return "", "", errNameReserved
	}
	if _, err := s.findUserByUsername(ctx, name); err == nil {
		return "", "", errNameReserved
	}
	return name, "", nil
}

func writeNameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNameReserved):
		writeError(w, http.StatusConflict, "name_reserved")
	case errors.Is(err, game.ErrNameRequired), errors.Is(err, game.ErrNameTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

// -----------------------------------------------------------------------------
// /game/new

type newGameReq struct {
	Name string `json:"name"`
}

type gameRes struct {
	GameID string     `json:"gameId"`
	State  game.State `json:"state"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	name, userID, err := s.resolveName(r.Context(), req.Name)
	if err != nil {
		writeNameError(w, err)
		return
	}

	g, err := game.NewSession(name, s.gameConfig(), s.newRand())
	if err != nil {
		writeNameError(w, err)
		return
	}
	g.UserID = userID
	if err := s.sessions.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     nameCookie,
		Value:    url.QueryEscape(name),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: s.cookieSameSite(),
		Expires:  s.now().Add(180 * 24 * time.Hour),
	})
	log.Info().Str("gameId", g.ID).Str("name", name).Bool("guest", userID == "").Msg("session started")
	writeJSON(w, http.StatusOK, gameRes{GameID: g.ID, State: g.Snapshot()})
}

// handleLastName returns the name used for the previous session, if any.
func (s *Server) handleLastName(w http.ResponseWriter, r *http.Request) {
	name := ""
	if c, err := r.Cookie(nameCookie); err == nil {
		if v, err := url.QueryUnescape(c.Value); err == nil {
			name = v
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

// -----------------------------------------------------------------------------
// /game/{id}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	_ = s.sessions.Delete(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// tickReq is the request payload for /game/{id}/tick.
type tickReq struct {
	Ticks int  `json:"ticks"` // defaults to 1
	Jump  bool `json:"jump"`  // jump before ticking
}

// tickRes reports how far the session actually advanced.
type tickRes struct {
	Advanced int        `json:"advanced"`
	Ended    bool       `json:"ended"` // the run ended during this call
	State    game.State `json:"state"`
}

// handleTick advances a session. Ticking stops early when the run ends or
// is paused.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var req tickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Ticks == 0 {
		req.Ticks = 1
	}
	if req.Ticks < 0 || req.Ticks > s.cfg.MaxTicksPerCall {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("ticks must be 1–%d", s.cfg.MaxTicksPerCall))
		return
	}

	var res tickRes
	var finished *runResult
	err := s.sessions.Update(r.Context(), chi.URLParam(r, "id"), func(g *game.Session) error {
		if req.Jump {
			g.Jump()
		}
		for i := 0; i < req.Ticks && !g.Paused && !g.Over; i++ {
			res.Advanced++
			if g.Tick() {
				res.Ended = true
				rr := resultOf(g)
				finished = &rr
			}
		}
		res.State = g.Snapshot()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if finished != nil {
		s.recordRun(*finished)
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAction applies a single input to a session and returns its state.
func (s *Server) handleAction(apply func(*game.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st game.State
		err := s.sessions.Update(r.Context(), chi.URLParam(r, "id"), func(g *game.Session) error {
			apply(g)
			st = g.Snapshot()
			return nil
		})
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// -----------------------------------------------------------------------------
// finished runs

// runResult captures a finished run for recording outside the session lock.
type runResult struct {
	RunID     string
	Name      string
	UserID    string
	Score     int
	StartedAt time.Time
}

func resultOf(g *game.Session) runResult {
	return runResult{
		RunID:     fmt.Sprintf("%s-%d", g.ID, g.Run),
		Name:      g.Name,
		UserID:    g.UserID,
		Score:     g.Score,
		StartedAt: g.StartedAt,
	}
}

// recordRun submits a finished run to the leaderboard and game history
// without blocking the caller. Failures are logged only.
func (s *Server) recordRun(rr runResult) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		wrote, err := leaderboard.Submit(ctx, s.board, rr.Name, rr.Score, s.now())
		if err != nil {
			log.Warn().Err(err).Str("name", rr.Name).Int("score", rr.Score).Msg("leaderboard submit")
		} else if wrote {
			log.Info().Str("name", rr.Name).Int("score", rr.Score).Msg("new personal best")
		}

		if err := s.saveRun(ctx, rr); err != nil {
			log.Warn().Err(err).Str("run", rr.RunID).Msg("record run")
		}
	}()
}

// saveRun writes the game history row and, for accounts, bumps stats.
func (s *Server) saveRun(ctx context.Context, rr runResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var owner any
	if rr.UserID != "" {
		owner = rr.UserID
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO games (id, user_id, player_name, status, score, started_at, finished_at)
	                     VALUES (?,?,?,?,?,?,?)`,
		rr.RunID, owner, rr.Name, "over", rr.Score,
		rr.StartedAt.UTC().Format(time.RFC3339), s.now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	if rr.UserID != "" {
		if err := bumpStats(ctx, tx, rr.UserID, rr.Score); err != nil {
			return fmt.Errorf("bump stats: %w", err)
		}
	}
	return tx.Commit()
}
