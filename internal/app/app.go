//go:build ebiten

// Package app runs a registered sim in an ebiten window.
package app

import (
	"image/color"
	"time"

	"eca-morph/internal/core"
	"eca-morph/internal/logging"
	"eca-morph/internal/render"
	"eca-morph/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts a core.Sim to ebiten.Game.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	clock   *core.FixedStep

	onColor  color.Color
	offColor color.Color

	scale    int
	hudWidth int
	paused   bool
	tickOnce bool
	seed     int64
}

// New builds a Game for sim using cfg.
func New(sim core.Sim, cfg *Config) *Game {
	s := sim.Size()
	return &Game{
		sim:      sim,
		painter:  render.NewGridPainter(s.W, s.H),
		hud:      ui.NewHUD(sim, cfg.HUDWidth),
		overlay:  ui.NewOverlay(sim, cfg.Scale),
		clock:    core.NewFixedStep(cfg.TPS),
		onColor:  color.Black,
		offColor: color.White,
		scale:    cfg.Scale,
		hudWidth: cfg.HUDWidth,
		seed:     cfg.Seed,
	}
}

// Reset restarts the sim with seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
	logging.Logger().Debug("viewer reset", "seed", seed)
}

// Update handles keys and advances the sim at the configured rate.
func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ), inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.tickOnce = true
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.Reset(g.seed)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.Reset(time.Now().UnixNano())
	case inpututil.IsKeyJustPressed(ebiten.KeyI):
		g.onColor, g.offColor = g.offColor, g.onColor
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.clock.SetRate(g.clock.Rate() * 2)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.clock.SetRate(max(g.clock.Rate()/2, 1))
	}

	g.overlay.Update()
	g.hud.Update(g.sim.Size().W * g.scale)

	due := g.clock.ShouldStep()
	if g.tickOnce || (!g.paused && due) {
		g.sim.Step()
		g.tickOnce = false
	}
	return nil
}

// Draw paints the grid, the overlay and the panel.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.onColor, g.offColor, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.sim.Size().W*g.scale, g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(int, int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + g.hudWidth, s.H * g.scale
}
