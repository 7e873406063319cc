package raineffect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownWeather is returned when a weather name cannot be parsed.
var ErrUnknownWeather = errors.New("raineffect: unknown weather")

// Weather selects one of the fixed weather presets.
type Weather uint8

const (
	Rain Weather = iota
	Storm
	Drizzle
	Fallout
	Sun

	weatherCount = int(Sun) + 1
)

var weatherNames = [weatherCount]string{"rain", "storm", "drizzle", "fallout", "sun"}

// Weathers lists every weather in declaration order.
func Weathers() []Weather {
	return []Weather{Rain, Storm, Drizzle, Fallout, Sun}
}

func (w Weather) String() string {
	if !w.valid() {
		return fmt.Sprintf("Weather(%d)", uint8(w))
	}
	return weatherNames[w]
}

func (w Weather) valid() bool {
	return int(w) < weatherCount
}

// ParseWeather maps a case-insensitive name ("rain", "storm", ...) to a
// Weather. Unknown names return ErrUnknownWeather, with a suggestion when the
// name is a near miss.
func ParseWeather(name string) (Weather, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range weatherNames {
		if n == key {
			return Weather(i), nil
		}
	}
	if s := suggest(key, weatherNames[:]); s != "" {
		return 0, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownWeather, name, s)
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownWeather, name)
}

// suggest returns the candidate closest to s by edit distance, or "" when
// nothing is within a third of the candidate's length.
func suggest(s string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(s, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == "" || bestDist > len(best)/3+1 {
		return ""
	}
	return best
}

// Preset is the constant table for one weather. Presets are fixed; the
// engine blends two of them while a transition is in flight.
type Preset struct {
	// SpawnRate is droplets per second at the 1024x768 reference area.
	SpawnRate float64
	// SpawnBurst caps spawns per step so a long stall cannot flood the pool.
	// Zero means no cap.
	SpawnBurst int
	// SpawnRadius is the spawn radius range in pixels, biased toward Min.
	SpawnRadius Range
	// SpawnBand is the fraction of the surface height, from the top, where
	// new droplets may appear.
	SpawnBand float64
	// MaxRadius bounds growth; droplets above it always shed a trail.
	MaxRadius float64
	// GravityScale multiplies the configured base gravity.
	GravityScale float64
	// TrailThreshold is the fraction of MaxRadius above which droplets trail.
	TrailThreshold float64
	// TrailShed is the range of the radius fraction handed to a trail child.
	TrailShed Range
	// FlashChance is the probability per second of a lightning flash.
	FlashChance float64
	// ForegroundBase is the foreground opacity between flashes. Presets
	// without lightning use 1.
	ForegroundBase float64
}

// DefaultPresets returns the built-in preset for every weather, indexed by
// Weather.
func DefaultPresets() [weatherCount]Preset {
	rain := Preset{
		SpawnRate:      50,
		SpawnBurst:     6,
		SpawnRadius:    Range{Min: 3, Max: 20},
		SpawnBand:      1,
		MaxRadius:      50,
		GravityScale:   1,
		TrailThreshold: 0.6,
		TrailShed:      Range{Min: 0.25, Max: 0.35},
		ForegroundBase: 1,
	}

	storm := rain
	storm.SpawnRate = 80
	storm.SpawnBurst = 8
	storm.MaxRadius = 55
	storm.GravityScale = 1.6
	storm.TrailShed = Range{Min: 0.25, Max: 0.4}
	storm.FlashChance = 0.1
	storm.ForegroundBase = 0.15

	drizzle := rain
	drizzle.SpawnRate = 10
	drizzle.SpawnBurst = 2
	drizzle.SpawnRadius = Range{Min: 3.5, Max: 12}
	drizzle.MaxRadius = 40
	drizzle.GravityScale = 0.7

	fallout := rain
	fallout.SpawnRate = 20
	fallout.SpawnBurst = 4
	fallout.SpawnRadius = Range{Min: 8, Max: 30}
	fallout.MaxRadius = 60
	fallout.GravityScale = 0.85
	fallout.TrailShed = Range{Min: 0.2, Max: 0.3}

	sun := rain
	sun.SpawnRate = 0
	sun.SpawnBurst = 0
	sun.GravityScale = 1

	var p [weatherCount]Preset
	p[Rain] = rain
	p[Storm] = storm
	p[Drizzle] = drizzle
	p[Fallout] = fallout
	p[Sun] = sun
	return p
}

// blendPresets interpolates every numeric field of a and b by t. Integer
// fields round to the nearest value.
func blendPresets(a, b Preset, t float64) Preset {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return Preset{
		SpawnRate:      lerp(a.SpawnRate, b.SpawnRate, t),
		SpawnBurst:     int(lerp(float64(a.SpawnBurst), float64(b.SpawnBurst), t) + 0.5),
		SpawnRadius:    a.SpawnRadius.Lerp(b.SpawnRadius, t),
		SpawnBand:      lerp(a.SpawnBand, b.SpawnBand, t),
		MaxRadius:      lerp(a.MaxRadius, b.MaxRadius, t),
		GravityScale:   lerp(a.GravityScale, b.GravityScale, t),
		TrailThreshold: lerp(a.TrailThreshold, b.TrailThreshold, t),
		TrailShed:      a.TrailShed.Lerp(b.TrailShed, t),
		FlashChance:    lerp(a.FlashChance, b.FlashChance, t),
		ForegroundBase: lerp(a.ForegroundBase, b.ForegroundBase, t),
	}
}
