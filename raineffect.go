package raineffect

import (
	"math"
	"math/rand/v2"
)

// Vec2 is a 2D vector used for positions and velocities in surface pixels.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Rect is a box in surface pixels with its origin at the top-left corner.
type Rect struct {
	X, Y, Width, Height float64
}

// Overlaps reports whether r and o share any area. Boxes that only touch
// along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// pixelSpan returns the half-open pixel range [x0, x1) x [y0, y1) touched by
// r, clipped to a w by h grid.
func (r Rect) pixelSpan(w, h int) (x0, y0, x1, y1 int) {
	x0 = max(int(math.Floor(r.X)), 0)
	y0 = max(int(math.Floor(r.Y)), 0)
	x1 = min(int(math.Ceil(r.X+r.Width)), w)
	y1 = min(int(math.Ceil(r.Y+r.Height)), h)
	return x0, y0, x1, y1
}

// Range is a general-purpose min/max range used by weather presets.
type Range struct {
	Min, Max float64
}

// Sample returns a value in [Min, Max] drawn from rng.
func (r Range) Sample(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// SampleBiased returns a value in [Min, Max] where the unit draw is raised to
// the given power first. Exponents above 1 favor values near Min.
func (r Range) SampleBiased(rng *rand.Rand, exp float64) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + math.Pow(rng.Float64(), exp)*(r.Max-r.Min)
}

// Lerp returns the range whose bounds are interpolated between r and o by t.
func (r Range) Lerp(o Range, t float64) Range {
	return Range{Min: lerp(r.Min, o.Min, t), Max: lerp(r.Max, o.Max, t)}
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// clamp01 limits v to [0, 1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
