// internal/httpserver/server.go
//
// HTTP server wiring for the runner backend.
// Responsibilities:
//   - Router + middleware (request IDs, panic recovery, access log, CORS, timeouts).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): mounted under /game (routes_game.go).
//   - Live websocket sessions: GET /game/ws (ws.go).
//   - Leaderboard: /leaderboard (routes_leaderboard.go).
//   - Auth + profile endpoints: /auth/*, /stats/me, /games/mine (auth.go).
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - Finished runs are recorded in background goroutines; Wait drains them.

package httpserver

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/runner/internal/config"
	"github.com/robalobadob/runner/internal/game"
	"github.com/robalobadob/runner/internal/leaderboard"
	"github.com/robalobadob/runner/internal/spawner"
	"github.com/robalobadob/runner/internal/store"
)

const requestTimeout = 10 * time.Second

// Options bundles the server's collaborators.
type Options struct {
	Config      config.Config
	Sessions    store.Store
	Leaderboard leaderboard.Store
	DB          *sql.DB // users and game history

	// Reserved names nobody may play under (compared lowercased).
	Reserved []string

	// NewRand returns the random source for a new session. Defaults to a
	// time-seeded math/rand/v2 generator.
	NewRand func() spawner.Rand
}

// Server bundles router, session store, leaderboard and DB handle.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	sessions store.Store
	board    leaderboard.Store
	db       *sql.DB
	reserved map[string]struct{}
	newRand  func() spawner.Rand
	upgrader websocket.Upgrader
	now      func() time.Time

	bg   sync.WaitGroup // pending run recordings
	live sync.WaitGroup // open websocket sessions
	quit chan struct{}  // closed by Close; ends live sessions
	once sync.Once
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      opts.Config,
		sessions: opts.Sessions,
		board:    opts.Leaderboard,
		db:       opts.DB,
		reserved: make(map[string]struct{}, len(opts.Reserved)),
		newRand:  opts.NewRand,
		now:      time.Now,
		quit:     make(chan struct{}),
	}
	for _, n := range opts.Reserved {
		s.reserved[leaderboard.Key(n)] = struct{}{}
	}
	if s.newRand == nil {
		s.newRand = defaultRand
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)      // add X-Request-ID
	s.r.Use(chimw.RealIP)         // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)      // recover from panics
	s.r.Use(accessLog)            // one zerolog line per request
	s.r.Use(s.corsFromConfig)     // credentials-friendly CORS
	s.r.Use(s.withOptionalAuth()) // decorate with user when a token is present

	s.mountGame(s.r)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout)) // bound handler time
		r.Use(jsonContentType)               // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"runner-go","endpoints":["/health","POST /game/new","POST /game/{id}/tick","GET /game/ws","/leaderboard","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		s.mountLeaderboard(r)
		s.mountAuthRoutes(r)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
		})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Wait blocks until every pending run recording has finished.
func (s *Server) Wait() { s.bg.Wait() }

// Start serves HTTP on addr until ctx is cancelled, then shuts down and
// drains pending writes.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := hs.Shutdown(shutdownCtx)
	s.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close ends every live websocket session and waits for their loops to
// return. Plain HTTP handlers are unaffected.
func (s *Server) Close() {
	s.once.Do(func() { close(s.quit) })
	s.live.Wait()
}

func (s *Server) gameConfig() game.Config {
	return game.Config{Width: s.cfg.CanvasWidth, Height: s.cfg.CanvasHeight}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one line per request with status and latency.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("request")
})

// corsFromConfig enables credentialed CORS for the configured client origin.
func (s *Server) corsFromConfig(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkOrigin allows same-host and configured-origin websocket upgrades.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.cfg.ClientOrigin {
		return true
	}
	return strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://") == r.Host
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// genID creates a 22‑char URL‑safe, crypto‑random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	s := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b[:])
	if len(s) > 22 {
		return s[:22]
	}
	return s
}
