// internal/httpserver/ws.go
//
// Live sessions over a websocket.
//   - GET /game/ws?name=<player>
//
// The server paces the simulation at TICK_RATE and pushes a state frame
// after every tick that advanced and after every client command. The
// session is owned by the handler goroutine; the reader goroutine only
// forwards decoded commands over a channel.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/runner/internal/game"
)

const (
	writeWait    = 5 * time.Second
	pendingLimit = 16
)

// clientMessage is what the browser sends: {"type":"jump"|"tap"|"pause"|"restart"}.
type clientMessage struct {
	Type string `json:"type"`
}

// stateFrame is pushed to the client; State fields are inlined.
type stateFrame struct {
	Type string `json:"type"`
	game.State
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	name, userID, err := s.resolveName(r.Context(), r.URL.Query().Get("name"))
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

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.Warn().Err(err).Str("name", name).Msg("websocket upgrade")
		return
	}
	defer conn.Close()
	s.live.Add(1)
	defer s.live.Done()
	logger := log.With().Str("gameId", g.ID).Str("name", name).Logger()
	logger.Info().Msg("live session started")

	cmds := make(chan string, pendingLimit)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg clientMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				logger.Debug().Err(err).Msg("discarding malformed message")
				continue
			}
			select {
			case cmds <- msg.Type:
			default:
				logger.Debug().Str("type", msg.Type).Msg("command dropped, queue full")
			}
		}
	}()

	send := func() error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(stateFrame{Type: "state", State: g.Snapshot()})
	}
	if err := send(); err != nil {
		return
	}

	ticker := time.NewTicker(s.cfg.TickInterval())
	defer ticker.Stop()
	for {
		select {
		case <-done:
			logger.Info().Int("run", g.Run).Int("score", g.Score).Msg("live session closed")
			return

		case <-s.quit:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return

		case cmd := <-cmds:
			switch cmd {
			case "jump":
				g.Jump()
			case "tap":
				g.Tap()
			case "pause":
				g.TogglePause()
			case "restart":
				g.Restart()
			default:
				logger.Debug().Str("type", cmd).Msg("unknown command")
				continue
			}
			if err := send(); err != nil {
				return
			}

		case <-ticker.C:
			if g.Paused || g.Over {
				continue
			}
			if g.Tick() {
				s.recordRun(resultOf(g))
			}
			if err := send(); err != nil {
				return
			}
		}
	}
}
