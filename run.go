package raineffect

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// Scale is the window size multiplier. Zero means 1.
	Scale float64
	// ShowFPS overlays the frame and tick rates.
	ShowFPS bool
}

var weatherKeys = [weatherCount]ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5}

// Run creates an engine that renders into an ebiten window and blocks until
// the window closes. Keys 1 to 5 select rain, storm, drizzle, fallout and sun;
// L strikes lightning; S queues a screenshot; Escape quits.
func Run(provider TextureProvider, cfg Config, rc RunConfig) error {
	w, h := max(rc.Width, 1), max(rc.Height, 1)
	scale := rc.Scale
	if scale <= 0 {
		scale = 1
	}

	surface := NewEbitenSurface(ebiten.NewImage(w, h))
	engine, err := Create(context.Background(), surface, provider, cfg)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(int(float64(w)*scale), int(float64(h)*scale))
	if rc.Title != "" {
		ebiten.SetWindowTitle(rc.Title)
	}
	g := &game{engine: engine, surface: surface, w: w, h: h, showFPS: rc.ShowFPS}
	return ebiten.RunGame(g)
}

type game struct {
	engine  *Engine
	surface *EbitenSurface
	w, h    int
	showFPS bool
}

func (g *game) Update() error {
	for i, k := range weatherKeys {
		if inpututil.IsKeyJustPressed(k) {
			_ = g.engine.SetWeather(Weather(i))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		g.engine.Flash()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.engine.Screenshot(g.engine.Weather().String())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.engine.Draw()
	screen.DrawImage(g.surface.Image, nil)
	if g.showFPS {
		tr := g.engine.Transition()
		msg := fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nweather: %s\ndroplets: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), tr.Current, g.engine.DropletCount())
		if tr.Active {
			msg += fmt.Sprintf("\n-> %s %.0f%%", tr.Target, tr.Progress*100)
		}
		ebitenutil.DebugPrint(screen, msg)
	}
}

func (g *game) Layout(int, int) (int, int) {
	return g.w, g.h
}
