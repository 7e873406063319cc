package raineffect

import (
	"math"
	"math/rand/v2"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// lightning drives the storm foreground flicker: a bright strike, a short dip,
// a second strike, and a slow fade. Strikes arrive as a Poisson process with
// the preset's FlashChance per second.
type lightning struct {
	rng    *rand.Rand
	seq    *gween.Sequence
	active bool
	value  float64
}

func newLightning(seed uint64, duration float64) *lightning {
	d := float32(duration)
	return &lightning{
		// Separate stream so flashes never perturb droplet spawning.
		rng: rand.New(rand.NewPCG(seed, 1)),
		seq: gween.NewSequence(
			gween.New(0, 1, d*0.1, ease.OutQuad),
			gween.New(1, 0.35, d*0.15, ease.InQuad),
			gween.New(0.35, 1, d*0.1, ease.OutQuad),
			gween.New(1, 0, d*0.65, ease.OutCubic),
		),
	}
}

// update advances the flash by dt and returns its intensity in [0, 1].
func (l *lightning) update(dt, chance float64) float64 {
	if !(dt > 0) {
		return l.value
	}
	if !l.active {
		if !(chance > 0) || l.rng.Float64() >= 1-math.Exp(-chance*dt) {
			l.value = 0
			return 0
		}
		l.seq.Reset()
		l.active = true
	}
	v, _, done := l.seq.Update(float32(dt))
	l.value = clamp01(float64(v))
	if done {
		l.active = false
		l.value = 0
	}
	return l.value
}

// strike starts a flash immediately.
func (l *lightning) strike() {
	l.seq.Reset()
	l.active = true
}

// foregroundOpacity lifts the preset's base opacity toward 1 by the flash
// intensity.
func foregroundOpacity(p Preset, flash float64) float64 {
	base := clamp01(p.ForegroundBase)
	return base + (1-base)*clamp01(flash)
}
