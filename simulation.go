package raineffect

import (
	"math"
	"math/rand/v2"
)

const (
	// referenceArea is the surface area the preset spawn rates are tuned for.
	referenceArea = 1024 * 768
	// spawnBias skews spawn radii toward the small end of the range.
	spawnBias = 3
	// minColumnWidth bounds the spawn column width for tiny radius ranges.
	minColumnWidth = 8
)

// MergeEvent records one collision resolved during a step.
type MergeEvent struct {
	Survivor DropletID
	Absorbed DropletID
}

// StepStats summarizes one Simulation.Step call.
type StepStats struct {
	Spawned int
	// Dropped counts spawns and trail emissions lost to a full pool.
	Dropped  int
	Merged   int
	Trailed  int
	Removed  int
	Substeps int
	// Committed is true when the weather transition completed this step.
	Committed bool
	// Merges lists the resolved collisions. The slice is reused by the next
	// Step call.
	Merges []MergeEvent
}

// Simulation owns the droplet pool and advances it through the spawn, fall,
// collide, trail, and evaporate phases. It is not safe for concurrent use.
type Simulation struct {
	cfg     Config
	w, h    float64
	area    float64 // spawn rate multiplier for the surface size
	presets [weatherCount]Preset
	pool    *Pool
	rng     *rand.Rand
	grid    bucketGrid
	trans   Transition

	spawnAccum float64
	columns    []int // shuffled spawn column order
	colCursor  int

	trailQueue []DropletID
	merges     []MergeEvent
	stats      StepStats
}

// NewSimulation creates a simulation for a surface of the given pixel size.
// Zero-valued config fields take their defaults.
func NewSimulation(width, height int, cfg Config) *Simulation {
	cfg = cfg.withDefaults()
	w := float64(max(width, 1))
	h := float64(max(height, 1))
	return &Simulation{
		cfg:     cfg,
		w:       w,
		h:       h,
		area:    math.Sqrt(w * h / referenceArea),
		presets: cfg.presets(),
		pool:    NewPool(cfg.MaxDroplets),
		rng:     rand.New(rand.NewPCG(cfg.Seed, 0)),
		trans:   Transition{Current: cfg.Weather, Target: cfg.Weather},
	}
}

// Pool returns the droplet pool. Callers may inspect droplets between steps.
func (s *Simulation) Pool() *Pool {
	return s.pool
}

// Size returns the surface size in pixels.
func (s *Simulation) Size() (float64, float64) {
	return s.w, s.h
}

// Transition returns a copy of the weather transition state.
func (s *Simulation) Transition() Transition {
	return s.trans
}

// Weather returns the committed current weather.
func (s *Simulation) Weather() Weather {
	return s.trans.Current
}

// SetWeather requests a transition toward w.
func (s *Simulation) SetWeather(w Weather) (TransitionChange, error) {
	if !w.valid() {
		return TransitionUnchanged, ErrUnknownWeather
	}
	return s.trans.Request(w), nil
}

// BlendWeight returns the preset blend weight in [0, 1], shaped by
// Config.TransitionEase.
func (s *Simulation) BlendWeight() float64 {
	return s.trans.Weight(s.cfg.TransitionEase)
}

// Preset returns the effective preset: the current weather's, or the blend
// toward the target while a transition is active.
func (s *Simulation) Preset() Preset {
	cur := s.presets[s.trans.Current]
	if !s.trans.Active {
		return cur
	}
	return blendPresets(cur, s.presets[s.trans.Target], s.BlendWeight())
}

// Step advances the simulation by dt seconds. Non-positive and NaN dt leave
// the state untouched.
func (s *Simulation) Step(dt float64) StepStats {
	s.stats = StepStats{Merges: s.merges[:0]}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return s.stats
	}

	p := s.Preset()
	physics := min(dt, s.cfg.MaxSubstep*float64(s.cfg.MaxSubsteps))
	n := max(1, int(math.Ceil(physics/s.cfg.MaxSubstep-commitEpsilon)))
	sub := physics / float64(n)

	s.spawn(p, physics)
	for range n {
		s.fall(p, sub)
		s.collide()
	}
	s.trail(p)
	s.evaporate()
	s.stats.Substeps = n
	s.stats.Committed = s.trans.Advance(dt / s.cfg.TransitionDuration)

	s.merges = s.stats.Merges
	return s.stats
}

// spawn emits new droplets at the blended rate, scaled by surface area.
func (s *Simulation) spawn(p Preset, dt float64) {
	if !(p.SpawnRate > 0) {
		s.spawnAccum = 0
		return
	}
	s.spawnAccum += p.SpawnRate * s.area * dt
	n := int(s.spawnAccum)
	s.spawnAccum -= float64(n)
	if p.SpawnBurst > 0 && n > p.SpawnBurst {
		n = p.SpawnBurst
	}
	band := s.h * clamp01(p.SpawnBand)
	for range n {
		r := p.SpawnRadius.SampleBiased(s.rng, spawnBias)
		pos := Vec2{X: s.nextColumnX(p), Y: s.rng.Float64() * band}
		if _, err := s.pool.Spawn(pos, r); err != nil {
			s.stats.Dropped++
			continue
		}
		s.stats.Spawned++
	}
}

// nextColumnX picks the next spawn x from a shuffled set of columns about one
// maximum spawn diameter wide, jittered within the column. Every column is
// used once before the order is reshuffled.
func (s *Simulation) nextColumnX(p Preset) float64 {
	width := max(2*p.SpawnRadius.Max, minColumnWidth)
	cols := max(1, int(s.w/width))
	if cols != len(s.columns) {
		s.columns = make([]int, cols)
		for i := range s.columns {
			s.columns[i] = i
		}
		s.colCursor = cols
	}
	if s.colCursor >= len(s.columns) {
		s.rng.Shuffle(len(s.columns), func(i, j int) {
			s.columns[i], s.columns[j] = s.columns[j], s.columns[i]
		})
		s.colCursor = 0
	}
	c := s.columns[s.colCursor]
	s.colCursor++
	return (float64(c) + s.rng.Float64()) * s.w / float64(cols)
}

// fall applies gravity and radius-proportional drag to every moving droplet
// and ages all of them.
func (s *Simulation) fall(p Preset, dt float64) {
	g := s.cfg.Gravity * p.GravityScale
	for _, d := range s.pool.All() {
		d.Age += dt
		if d.State == Evaporating {
			continue
		}
		if d.State == Merging {
			d.State = Falling
		}
		d.Vel.Y += g * dt
		d.Vel = d.Vel.Scale(math.Exp(-s.cfg.Drag * d.Radius * dt))
		d.Pos = d.Pos.Add(d.Vel.Scale(dt))
		d.TrailAccum += d.Vel.Len() * dt
	}
}

// maxCollidePasses bounds the rescans collide runs after a survivor outgrows
// the grid cell.
const maxCollidePasses = 4

// collide merges every pair of droplets that overlap by more than the
// configured fraction of the smaller radius. Pairs are visited once per pass,
// in ascending id order, so results are deterministic. A survivor that grows
// past half the cell size can reach droplets outside its 3x3 neighbourhood,
// so the grid is rebuilt and scanned again.
func (s *Simulation) collide() {
	for range maxCollidePasses {
		if !s.collidePass() {
			return
		}
	}
}

// collidePass runs one bucketed scan and reports whether a rescan is needed.
func (s *Simulation) collidePass() bool {
	maxR := 0.0
	moving := 0
	for _, d := range s.pool.All() {
		if d.State != Evaporating {
			maxR = max(maxR, d.Radius)
			moving++
		}
	}
	if moving < 2 {
		return false
	}
	s.grid.rebuild(s.pool, s.w, s.h, 2*maxR)
	reach := s.grid.cell / 2

	outgrown := false
	for a, da := range s.pool.All() {
		if da.State == Evaporating {
			continue
		}
		s.grid.neighbors(da.Pos, func(b DropletID) bool {
			if b <= a {
				return true
			}
			db, ok := s.pool.Get(b)
			if !ok || db.State == Evaporating || !s.overlaps(da, db) {
				return true
			}
			survivor, err := s.pool.Merge(a, b)
			if err != nil {
				return true
			}
			s.stats.Merged++
			s.stats.Merges = append(s.stats.Merges, MergeEvent{Survivor: survivor, Absorbed: a + b - survivor})
			if d, _ := s.pool.Get(survivor); d.Radius > reach {
				outgrown = true
			}
			return survivor == a
		})
	}
	return outgrown
}

func (s *Simulation) overlaps(a, b *Droplet) bool {
	dist := math.Hypot(a.Pos.X-b.Pos.X, a.Pos.Y-b.Pos.Y)
	overlap := a.Radius + b.Radius - dist
	return overlap > s.cfg.MergeOverlap*min(a.Radius, b.Radius)
}

// trail sheds a child droplet from every droplet above the trail threshold.
// A droplet that just crossed the threshold emits at once; afterwards it emits
// every TrailSpacing radii travelled. Droplets above MaxRadius always emit.
func (s *Simulation) trail(p Preset) {
	threshold := p.TrailThreshold * p.MaxRadius
	s.trailQueue = s.trailQueue[:0]
	for id, d := range s.pool.All() {
		if d.State == Evaporating {
			continue
		}
		if d.Radius <= threshold {
			if d.State == Trailing {
				d.State = Falling
			}
			continue
		}
		forced := d.Radius > p.MaxRadius
		if d.State == Trailing && !forced && d.TrailAccum < s.cfg.TrailSpacing*d.Radius {
			continue
		}
		s.trailQueue = append(s.trailQueue, id)
	}

	for _, id := range s.trailQueue {
		d, _ := s.pool.Get(id)
		shed := min(max(p.TrailShed.Sample(s.rng), 0.05), 0.95)
		parentR := d.Radius * (1 - shed)
		childR := d.Radius * shed
		pos := Vec2{X: d.Pos.X, Y: d.Pos.Y + parentR + childR}
		cid, err := s.pool.Spawn(pos, childR)
		if err != nil {
			s.stats.Dropped++
			continue
		}
		// Slots never move, so d is still valid after Spawn.
		c, _ := s.pool.Get(cid)
		c.Vel = d.Vel
		d.Radius = parentR
		d.State = Trailing
		d.TrailAccum = 0
		s.stats.Trailed++
	}
}

// evaporate starts the fade for droplets that left the surface or outlived
// their lifetime, and removes droplets whose fade completed.
func (s *Simulation) evaporate() {
	for id, d := range s.pool.All() {
		if d.Pos.Y > s.h || d.Age > s.cfg.Lifetime {
			d.evaporate(s.cfg.FadeDuration)
		}
		if d.State == Evaporating && d.Opacity() <= 0 {
			s.pool.Remove(id)
			s.stats.Removed++
		}
	}
}
