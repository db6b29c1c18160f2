package httpserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialLive(t *testing.T, s *Server, name string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/ws?name=" + name
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) stateFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read frame: %v", err)
	}
	var f stateFrame
	if err := json.Unmarshal(payload, &f); err != nil {
		t.Fatalf("failed to decode frame %s: %v", payload, err)
	}
	if f.Type != "state" {
		t.Fatalf("unexpected frame type %q", f.Type)
	}
	return f
}

// readUntil reads frames until match returns true.
func readUntil(t *testing.T, conn *websocket.Conn, limit int, match func(stateFrame) bool) stateFrame {
	t.Helper()
	for i := 0; i < limit; i++ {
		if f := readFrame(t, conn); match(f) {
			return f
		}
	}
	t.Fatalf("no matching frame within %d frames", limit)
	return stateFrame{}
}

func send(t *testing.T, conn *websocket.Conn, typ string) {
	t.Helper()
	if err := conn.WriteJSON(clientMessage{Type: typ}); err != nil {
		t.Fatalf("failed to send %q: %v", typ, err)
	}
}

func TestLiveSessionStreamsTicks(t *testing.T) {
	s := newTestServer(t, nil)
	conn := dialLive(t, s, "Ann")

	first := readFrame(t, conn)
	if first.Name != "Ann" || first.Score != 0 || first.Run != 1 {
		t.Fatalf("unexpected initial frame %+v", first.State)
	}

	next := readUntil(t, conn, 50, func(f stateFrame) bool { return f.Score >= 3 })
	if len(next.Obstacles) == 0 {
		t.Fatalf("expected the first tick to spawn, got %+v", next.State)
	}
}

func TestLiveSessionPause(t *testing.T) {
	s := newTestServer(t, nil)
	conn := dialLive(t, s, "Ann")
	readFrame(t, conn)

	send(t, conn, "pause")
	paused := readUntil(t, conn, 1000, func(f stateFrame) bool { return f.Paused })

	// No frames are pushed while paused.
	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, payload, err := conn.ReadMessage()
	var ne net.Error
	if err == nil || !errors.As(err, &ne) || !ne.Timeout() {
		t.Fatalf("expected a read timeout while paused at score %d, got %s err=%v", paused.Score, payload, err)
	}
}

func TestLiveSessionGameOverAndRestart(t *testing.T) {
	s := newTestServer(t, nil)
	conn := dialLive(t, s, "Ann")
	readFrame(t, conn)

	over := readUntil(t, conn, 1000, func(f stateFrame) bool { return f.Over })
	send(t, conn, "tap")
	restarted := readUntil(t, conn, 1000, func(f stateFrame) bool { return f.Run == 2 })
	if restarted.Over || restarted.Score > 5 {
		t.Fatalf("tap should start a fresh run: %+v", restarted.State)
	}

	s.Wait()
	lb := decode[leaderboardRes](t, do(t, s, http.MethodGet, "/leaderboard", nil))
	if len(lb.Top) != 1 || lb.Top[0].Score != over.Score {
		t.Fatalf("expected the finished run on the board, got %+v", lb.Top)
	}
}

func TestLiveSessionRejectsReservedName(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/ws?name=admin"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatalf("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %+v", resp)
	}
	resp.Body.Close()
}
