package raineffect

import (
	"time"

	"github.com/tanema/gween/ease"
)

// Config controls the simulation, compositor, and engine. Zero-valued fields
// fall back to the values in DefaultConfig.
type Config struct {
	// Weather is the initial weather.
	Weather Weather
	// Presets overrides the built-in preset for individual weathers.
	Presets map[Weather]Preset
	// MaxDroplets is the pool capacity. Spawns beyond it are silently dropped.
	MaxDroplets int
	// Seed drives every random choice of the simulation.
	Seed uint64

	// Gravity is the base downward acceleration in pixels per second squared,
	// scaled per weather by Preset.GravityScale.
	Gravity float64
	// Drag is the friction coefficient per pixel of radius per second.
	// Larger droplets are slowed proportionally more.
	Drag float64
	// MergeOverlap is the fraction of the smaller radius two droplets must
	// overlap by before they merge.
	MergeOverlap float64
	// Lifetime is the age in seconds after which a droplet evaporates.
	Lifetime float64
	// FadeDuration is how long an evaporating droplet takes to fade out.
	FadeDuration float64
	// TrailSpacing is the distance, in multiples of the radius, a trailing
	// droplet travels between two trail emissions.
	TrailSpacing float64
	// MaxSubstep is the longest physics step in seconds; longer frames are
	// split.
	MaxSubstep float64
	// MaxSubsteps caps the substeps per frame. Frame time beyond
	// MaxSubstep*MaxSubsteps is dropped for physics only.
	MaxSubsteps int

	// TransitionDuration is the weather cross-fade length in seconds.
	TransitionDuration float64
	// TransitionEase shapes how preset parameters (spawn rate, gravity,
	// trail behaviour) move toward the target. Textures always cross-fade
	// linearly with the progress. Nil means linear.
	TransitionEase ease.TweenFunc
	// FlashDuration is the length of a lightning flash in seconds.
	FlashDuration float64

	// Compositor holds the refraction and blending options.
	Compositor CompositorOptions

	// NominalDT is the time step of the first Draw call, in seconds.
	NominalDT float64
	// Now is the clock used by Draw. Nil selects time.Now.
	Now func() time.Time
	// Events receives weather transition events. Optional.
	Events EventSink
	// ScreenshotDir is where Screenshot writes PNG frames.
	ScreenshotDir string
	// Debug prints per-frame timing and droplet stats to stderr.
	Debug bool
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Weather:            Rain,
		MaxDroplets:        900,
		Seed:               1,
		Gravity:            120,
		Drag:               0.04,
		MergeOverlap:       0.5,
		Lifetime:           20,
		FadeDuration:       0.6,
		TrailSpacing:       1.5,
		MaxSubstep:         1.0 / 30,
		MaxSubsteps:        8,
		TransitionDuration: 2,
		FlashDuration:      0.35,
		Compositor:         DefaultCompositorOptions(),
		NominalDT:          1.0 / 60,
		Now:                time.Now,
		ScreenshotDir:      "screenshots",
	}
}

// withDefaults fills every zero-valued field from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxDroplets <= 0 {
		c.MaxDroplets = d.MaxDroplets
	}
	if c.Gravity == 0 {
		c.Gravity = d.Gravity
	}
	if c.Drag < 0 || c.Drag == 0 {
		c.Drag = d.Drag
	}
	if c.MergeOverlap <= 0 {
		c.MergeOverlap = d.MergeOverlap
	}
	if c.Lifetime <= 0 {
		c.Lifetime = d.Lifetime
	}
	if c.FadeDuration <= 0 {
		c.FadeDuration = d.FadeDuration
	}
	if c.TrailSpacing <= 0 {
		c.TrailSpacing = d.TrailSpacing
	}
	if c.MaxSubstep <= 0 {
		c.MaxSubstep = d.MaxSubstep
	}
	if c.MaxSubsteps <= 0 {
		c.MaxSubsteps = d.MaxSubsteps
	}
	if c.TransitionDuration <= 0 {
		c.TransitionDuration = d.TransitionDuration
	}
	if c.FlashDuration <= 0 {
		c.FlashDuration = d.FlashDuration
	}
	c.Compositor = c.Compositor.withDefaults()
	if c.NominalDT <= 0 {
		c.NominalDT = d.NominalDT
	}
	if c.Now == nil {
		c.Now = d.Now
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = d.ScreenshotDir
	}
	if !c.Weather.valid() {
		c.Weather = d.Weather
	}
	return c
}

// presets resolves the preset table, applying overrides.
func (c Config) presets() [weatherCount]Preset {
	p := DefaultPresets()
	for w, o := range c.Presets {
		if w.valid() {
			p[w] = o
		}
	}
	return p
}
