package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/robalobadob/runner/internal/game"
	"github.com/robalobadob/runner/internal/leaderboard"
)

const (
	frameInterval = 16 * time.Millisecond // ~60 FPS
	hudRows       = 2
	sampleRate    = beep.SampleRate(44100)
	jumpTone      = 660
	overTone      = 220
)

var (
	styleHUD      = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	stylePlayer   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleGround   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleNotice   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// boardUpdate carries a leaderboard refresh back to the render loop.
type boardUpdate struct {
	top []leaderboard.Entry
	err error
}

type client struct {
	screen        tcell.Screen
	width, height int

	game  *game.Session
	board leaderboard.Store
	log   zerolog.Logger

	top     []leaderboard.Entry
	topErr  error
	updates chan boardUpdate

	audioInit bool
}

func newClient(screen tcell.Screen, g *game.Session, board leaderboard.Store, log zerolog.Logger) *client {
	c := &client{
		screen:  screen,
		game:    g,
		board:   board,
		log:     log,
		updates: make(chan boardUpdate, 4),
	}
	c.width, c.height = screen.Size()
	return c
}

func (c *client) initAudio() error {
	err := speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	if err == nil {
		c.audioInit = true
	}
	return err
}

func (c *client) playTone(freq int, d time.Duration) {
	if !c.audioInit {
		return
	}
	sine, err := generators.SineTone(sampleRate, float64(freq))
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(d), sine))
}

// ----------------------------------------------------------------- input

// handleInput applies one terminal event. Returns false to quit.
func (c *client) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyUp:
			c.tap()
		case ev.Key() == tcell.KeyRune:
			switch ev.Rune() {
			case ' ':
				c.tap()
			case 'p', 'P':
				c.game.TogglePause()
			case 'q', 'Q':
				return false
			}
		}
	case *tcell.EventResize:
		c.width, c.height = c.screen.Size()
		c.screen.Sync()
	}
	return true
}

func (c *client) tap() {
	wasGrounded := !c.game.Player.Jumping && !c.game.Over
	c.game.Tap()
	if wasGrounded && c.game.Player.Jumping {
		c.playTone(jumpTone, 40*time.Millisecond)
	}
}

// ------------------------------------------------------------ simulation

// step advances the session by one tick and reacts to the run ending.
func (c *client) step() {
	if !c.game.Tick() {
		return
	}
	c.playTone(overTone, 250*time.Millisecond)
	c.log.Info().Int("run", c.game.Run).Int("score", c.game.Score).Msg("game over")
	c.submit(c.game.Name, c.game.Score)
}

// submit records a finished run off the render loop and refreshes the
// displayed leaderboard once the write lands.
func (c *client) submit(name string, score int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := leaderboard.Submit(ctx, c.board, name, score, time.Now()); err != nil {
			c.log.Warn().Err(err).Msg("leaderboard submit")
		}
		top, err := c.board.Top(ctx, leaderboard.DefaultSize)
		c.updates <- boardUpdate{top: top, err: err}
	}()
}

func (c *client) applyUpdate(u boardUpdate) {
	c.top, c.topErr = u.top, u.err
	if u.err != nil {
		c.log.Warn().Err(u.err).Msg("leaderboard top")
	}
}

// --------------------------------------------------------------- drawing

// toCell maps world coordinates onto the play area below the HUD.
func (c *client) toCell(x, y float64) (int, int) {
	cfg := c.game.Config()
	rows := c.height - hudRows - 1
	col := int(x * float64(c.width) / cfg.Width)
	row := hudRows + int(y*float64(rows)/cfg.Height)
	return col, row
}

// fillRect paints the cells covered by a world rectangle, at least one cell.
func (c *client) fillRect(x, y, w, h float64, ch rune, style tcell.Style) {
	x0, y0 := c.toCell(x, y)
	x1, y1 := c.toCell(x+w, y+h)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for row := max(y0, hudRows); row < y1 && row < c.height; row++ {
		for col := max(x0, 0); col < x1 && col < c.width; col++ {
			c.screen.SetContent(col, row, ch, nil, style)
		}
	}
}

func (c *client) drawText(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		if x >= c.width {
			return
		}
		c.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (c *client) draw() {
	c.screen.Clear()
	g := c.game

	c.drawText(0, 0, styleHUD, fmt.Sprintf("%s  Score: %d  Speed: %.1f", g.Name, g.Score, g.Speed))
	c.drawText(0, 1, styleGround, "space/up jump  p pause  q quit")

	_, ground := c.toCell(0, g.Config().Height)
	for col := 0; col < c.width; col++ {
		c.screen.SetContent(col, ground, '▔', nil, styleGround)
	}

	for _, o := range g.Obstacles {
		c.fillRect(o.X, o.Y, o.Width, o.Height, '█', styleObstacle)
	}
	p := g.Player
	c.fillRect(p.X, p.Y, p.Width, p.Height, '▓', stylePlayer)

	switch {
	case g.Over:
		c.drawGameOver()
	case g.Paused:
		c.drawText(max(0, c.width/2-3), c.height/2, styleNotice, "PAUSED")
	}
	c.screen.Show()
}

func (c *client) drawGameOver() {
	y := hudRows + 1
	x := max(0, c.width/2-15)
	c.drawText(x, y, styleNotice, fmt.Sprintf("GAME OVER  score %d", c.game.Score))
	c.drawText(x, y+1, styleHUD, "press space to play again")
	y += 3
	switch {
	case c.topErr != nil:
		c.drawText(x, y, styleHUD, "Leaderboard unavailable")
	case len(c.top) == 0:
		c.drawText(x, y, styleHUD, "No scores yet")
	default:
		for i, e := range c.top {
			c.drawText(x, y+i, styleHUD, fmt.Sprintf("%d. %-24s %6d", i+1, e.Name, e.Score))
		}
	}
}

// ------------------------------------------------------------------ loop

func (c *client) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- c.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if ev == nil || !c.handleInput(ev) {
				return
			}
		case u := <-c.updates:
			c.applyUpdate(u)
		case <-ticker.C:
			c.step()
			c.draw()
		}
	}
}

func (c *client) cleanup() {
	if c.audioInit {
		speaker.Close()
	}
	c.screen.Fini()
}
