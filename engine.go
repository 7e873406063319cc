package raineffect

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"os"
	"time"
)

// ErrInvalidSurface is returned by Create for a nil or zero-sized surface.
var ErrInvalidSurface = errors.New("raineffect: invalid surface")

// Engine is the weather controller. It owns the simulation, the compositor,
// and the textures, and draws one frame per Draw call. An Engine is not safe
// for concurrent use; call every method from the host's frame thread.
type Engine struct {
	cfg      Config
	surface  Surface
	textures *Textures
	sim      *Simulation
	comp     *Compositor
	flash    *lightning

	flashValue float64
	clock      float64 // simulated seconds
	last       time.Time
	started    bool
	stats      StepStats

	screenshotQueue []string
	script          *ScriptRunner
}

// CreateResult carries the outcome of CreateAsync.
type CreateResult struct {
	Engine *Engine
	Err    error
}

// Create loads every texture from provider and builds an engine drawing into
// surface. Construction fails if the surface is invalid or any texture is
// missing, undecodable, or wrongly sized.
func Create(ctx context.Context, surface Surface, provider TextureProvider, cfg Config) (*Engine, error) {
	if surface == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidSurface)
	}
	w, h := surface.Size()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidSurface, w, h)
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: no texture provider", ErrMissingTexture)
	}
	textures, err := provider.LoadTextures(ctx)
	if err != nil {
		return nil, err
	}
	if textures == nil {
		return nil, fmt.Errorf("%w: provider returned no textures", ErrMissingTexture)
	}
	if err := textures.Validate(); err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()
	return &Engine{
		cfg:      cfg,
		surface:  surface,
		textures: textures,
		sim:      NewSimulation(w, h, cfg),
		comp:     NewCompositor(w, h, cfg.Compositor),
		flash:    newLightning(cfg.Seed, cfg.FlashDuration),
	}, nil
}

// CreateAsync runs Create on a new goroutine. The channel receives exactly one
// result.
func CreateAsync(ctx context.Context, surface Surface, provider TextureProvider, cfg Config) <-chan CreateResult {
	ch := make(chan CreateResult, 1)
	go func() {
		e, err := Create(ctx, surface, provider, cfg)
		ch <- CreateResult{Engine: e, Err: err}
	}()
	return ch
}

func (e *Engine) mustLive(op string) {
	if e == nil {
		panic(fmt.Sprintf("raineffect: %s called on a nil *Engine; check the error from Create", op))
	}
}

// Draw advances the simulation by the time since the previous Draw, renders
// one frame, and presents it. The first call advances by Config.NominalDT.
// Present failures are not returned; they are reported on stderr in debug
// mode.
func (e *Engine) Draw() {
	e.mustLive("Draw")
	now := e.cfg.Now()
	dt := e.cfg.NominalDT
	if e.started {
		dt = now.Sub(e.last).Seconds()
	}
	e.last, e.started = now, true
	if e.script != nil {
		e.script.step(e)
	}

	var ds debugStats
	t0 := time.Now()
	e.Step(dt)
	t1 := time.Now()
	frame := e.comp.Render(e.frameInfo(), e.sim.Pool())
	t2 := time.Now()
	if err := e.surface.Present(frame); err != nil && e.cfg.Debug {
		_, _ = fmt.Fprintf(os.Stderr, "[raineffect] present: %v\n", err)
	}
	t3 := time.Now()
	e.flushScreenshots(frame)

	if e.cfg.Debug {
		ds.stepTime, ds.renderTime, ds.presentTime = t1.Sub(t0), t2.Sub(t1), t3.Sub(t2)
		ds.dt = dt
		ds.step = e.stats
		ds.droplets = e.sim.Pool().Len()
		ds.capacity = e.sim.Pool().Cap()
		e.debugLog(ds)
	}
}

// Step advances the simulation and weather by dt seconds without rendering.
// Non-positive, NaN, and infinite dt are ignored.
func (e *Engine) Step(dt float64) {
	e.mustLive("Step")
	if !(dt > 0) || math.IsInf(dt, 0) {
		e.stats = StepStats{}
		return
	}
	before := e.sim.Transition()
	e.stats = e.sim.Step(dt)
	e.clock += dt
	if e.stats.Committed {
		e.emit(WeatherCommitted, before.Current, before.Target)
	}

	wasFlashing := e.flash.active
	e.flashValue = e.flash.update(dt, e.sim.Preset().FlashChance)
	if !wasFlashing && e.flash.active {
		tr := e.sim.Transition()
		e.emit(WeatherFlash, tr.Current, tr.Target)
	}
}

// SetWeather requests a transition to w. Requesting the current weather with
// no transition active, or the transition's own target, does nothing.
// Requesting the current weather mid-transition cancels it; any other weather
// retargets it with the progress reset to zero.
func (e *Engine) SetWeather(w Weather) error {
	e.mustLive("SetWeather")
	from := e.sim.Weather()
	change, err := e.sim.SetWeather(w)
	if err != nil {
		return fmt.Errorf("%w: %v", err, w)
	}
	if kind, ok := changeEvent(change); ok {
		e.emit(kind, from, w)
	}
	return nil
}

// SetWeatherName is SetWeather for a weather name such as "storm".
func (e *Engine) SetWeatherName(name string) error {
	e.mustLive("SetWeatherName")
	w, err := ParseWeather(name)
	if err != nil {
		return err
	}
	return e.SetWeather(w)
}

// Flash starts a lightning flash now and emits WeatherFlash in any weather.
// The flash lifts the foreground opacity toward 1, so it only shows in
// weathers whose Preset.ForegroundBase is below 1 (storm by default).
func (e *Engine) Flash() {
	e.mustLive("Flash")
	e.flash.strike()
	tr := e.sim.Transition()
	e.emit(WeatherFlash, tr.Current, tr.Target)
}

// Weather returns the committed current weather.
func (e *Engine) Weather() Weather {
	e.mustLive("Weather")
	return e.sim.Weather()
}

// Transition returns a copy of the transition state.
func (e *Engine) Transition() Transition {
	e.mustLive("Transition")
	return e.sim.Transition()
}

// Droplets yields the live droplets in ascending id order. The pointers must
// not be retained past the current frame.
func (e *Engine) Droplets() iter.Seq2[DropletID, *Droplet] {
	e.mustLive("Droplets")
	return e.sim.Pool().All()
}

// DropletCount returns the number of live droplets.
func (e *Engine) DropletCount() int {
	e.mustLive("DropletCount")
	return e.sim.Pool().Len()
}

// Stats returns the statistics of the most recent step.
func (e *Engine) Stats() StepStats {
	e.mustLive("Stats")
	return e.stats
}

// Frame returns the last rendered frame as straight-alpha RGBA. The slice is
// overwritten by the next Draw.
func (e *Engine) Frame() []byte {
	e.mustLive("Frame")
	return e.comp.Frame()
}

// Size returns the surface size the engine renders at.
func (e *Engine) Size() (int, int) {
	e.mustLive("Size")
	return e.comp.Size()
}

// Time returns the simulated seconds since creation.
func (e *Engine) Time() float64 {
	e.mustLive("Time")
	return e.clock
}

// frameInfo assembles the compositor input for the current state.
func (e *Engine) frameInfo() Frame {
	tr := e.sim.Transition()
	f := Frame{
		Current: e.textures.Set(tr.Current),
		Maps:    e.textures.Maps,
		ForegroundOpacity: [2]float64{
			foregroundOpacity(e.sim.presets[tr.Current], e.flashValue),
			foregroundOpacity(e.sim.presets[tr.Target], e.flashValue),
		},
	}
	if tr.Active {
		f.Target = e.textures.Set(tr.Target)
		f.Blend = tr.Progress
	}
	return f
}

func (e *Engine) emit(kind WeatherEventKind, from, to Weather) {
	if e.cfg.Events == nil {
		return
	}
	e.cfg.Events.EmitEvent(WeatherEvent{Kind: kind, From: from, To: to, Time: e.clock})
}
