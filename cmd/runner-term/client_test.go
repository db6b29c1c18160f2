package main

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/robalobadob/runner/internal/game"
	"github.com/robalobadob/runner/internal/leaderboard"
)

func newTestClient(t *testing.T) *client {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	g, err := game.NewSession("Ann", game.DefaultConfig(), rand.New(rand.NewPCG(3, 5)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return newClient(screen, g, leaderboard.NewMemoryStore(), zerolog.Nop())
}

func rowText(c *client, y int) string {
	var b strings.Builder
	for x := 0; x < c.width; x++ {
		r, _, _, _ := c.screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestToCellScalesWorld(t *testing.T) {
	c := newTestClient(t)
	if x, y := c.toCell(0, 0); x != 0 || y != hudRows {
		t.Fatalf("origin mapped to (%d,%d)", x, y)
	}
	if x, y := c.toCell(800, 200); x != 80 || y != 23 {
		t.Fatalf("far corner mapped to (%d,%d)", x, y)
	}
}

func TestDrawShowsHUDAndPlayer(t *testing.T) {
	c := newTestClient(t)
	c.draw()

	if hud := rowText(c, 0); !strings.HasPrefix(hud, "Ann  Score: 0") {
		t.Fatalf("unexpected HUD %q", hud)
	}
	if r, _, _, _ := c.screen.GetContent(5, 18); r != '▓' {
		t.Fatalf("expected the player at (5,18), got %q", r)
	}
	if r, _, _, _ := c.screen.GetContent(0, 23); r != '▔' {
		t.Fatalf("expected the ground on the last row, got %q", r)
	}
}

func TestHandleInput(t *testing.T) {
	c := newTestClient(t)

	if !c.handleInput(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)) || !c.game.Player.Jumping {
		t.Fatalf("space should jump")
	}
	if !c.handleInput(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone)) || !c.game.Paused {
		t.Fatalf("p should pause")
	}
	if c.handleInput(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatalf("q should quit")
	}
	if c.handleInput(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatalf("escape should quit")
	}
}

func TestGameOverShowsLeaderboard(t *testing.T) {
	c := newTestClient(t)
	for i := 0; i < 1000 && !c.game.Over; i++ {
		c.step()
	}
	if !c.game.Over {
		t.Fatalf("a grounded player should eventually collide")
	}

	select {
	case u := <-c.updates:
		c.applyUpdate(u)
	case <-time.After(2 * time.Second):
		t.Fatalf("no leaderboard update after game over")
	}
	if len(c.top) != 1 || c.top[0].Name != "Ann" || c.top[0].Score != c.game.Score {
		t.Fatalf("unexpected leaderboard %+v", c.top)
	}

	c.draw()
	if row := rowText(c, hudRows+1); !strings.Contains(row, "GAME OVER") {
		t.Fatalf("expected game over banner, got %q", row)
	}
	if row := rowText(c, hudRows+4); !strings.Contains(row, "1. Ann") {
		t.Fatalf("expected leaderboard row, got %q", row)
	}

	c.handleInput(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if c.game.Over || c.game.Run != 2 {
		t.Fatalf("space after game over should restart")
	}
}
