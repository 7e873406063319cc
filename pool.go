package raineffect

import (
	"errors"
	"iter"
	"math"
)

var (
	// ErrPoolExhausted is returned by Pool.Spawn when every slot is in use.
	ErrPoolExhausted = errors.New("raineffect: droplet pool exhausted")
	// ErrInvalidRadius is returned by Pool.Spawn for non-positive radii.
	ErrInvalidRadius = errors.New("raineffect: droplet radius must be positive")
	// ErrDeadDroplet is returned by Pool.Merge when an id is not live.
	ErrDeadDroplet = errors.New("raineffect: droplet is not live")
)

const defaultPoolCapacity = 512

// Pool is a fixed-capacity arena of droplets. Slots are allocated up front and
// recycled, so spawning and removal never allocate after construction.
type Pool struct {
	slots []Droplet
	alive []bool
	free  []DropletID // LIFO stack of released slots
	high  int         // slots [0, high) have been handed out at least once
	count int
}

// NewPool creates a Pool with room for capacity droplets. A non-positive
// capacity selects the default of 512.
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = defaultPoolCapacity
	}
	return &Pool{
		slots: make([]Droplet, capacity),
		alive: make([]bool, capacity),
		free:  make([]DropletID, 0, capacity),
	}
}

// Len returns the number of live droplets.
func (p *Pool) Len() int {
	return p.count
}

// Cap returns the maximum number of live droplets.
func (p *Pool) Cap() int {
	return len(p.slots)
}

// Spawn places a new Falling droplet at pos with the given radius.
func (p *Pool) Spawn(pos Vec2, radius float64) (DropletID, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return -1, ErrInvalidRadius
	}
	var id DropletID
	switch {
	case len(p.free) > 0:
		id = p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
	case p.high < len(p.slots):
		id = DropletID(p.high)
		p.high++
	default:
		return -1, ErrPoolExhausted
	}
	p.slots[id] = Droplet{Pos: pos, Radius: radius, State: Falling}
	p.alive[id] = true
	p.count++
	return id, nil
}

// Remove releases the slot for reuse. Removing a dead or out-of-range id is a
// no-op.
func (p *Pool) Remove(id DropletID) {
	if !p.Alive(id) {
		return
	}
	p.alive[id] = false
	p.free = append(p.free, id)
	p.count--
}

// Alive reports whether id refers to a live droplet.
func (p *Pool) Alive(id DropletID) bool {
	return id >= 0 && int(id) < p.high && p.alive[id]
}

// Get returns the droplet stored at id. The pointer stays valid until the
// slot is removed.
func (p *Pool) Get(id DropletID) (*Droplet, bool) {
	if !p.Alive(id) {
		return nil, false
	}
	return &p.slots[id], true
}

// All yields live droplets in ascending id order. The sequence may be
// restarted; droplets removed during iteration are skipped.
func (p *Pool) All() iter.Seq2[DropletID, *Droplet] {
	return func(yield func(DropletID, *Droplet) bool) {
		// high is re-read each iteration so droplets spawned mid-walk are seen.
		for i := 0; i < p.high; i++ {
			if !p.alive[i] {
				continue
			}
			if !yield(DropletID(i), &p.slots[i]) {
				return
			}
		}
	}
}

// Reset removes every droplet.
func (p *Pool) Reset() {
	clear(p.alive)
	p.free = p.free[:0]
	p.high = 0
	p.count = 0
}

// Merge combines two droplets into one and returns the surviving id. The
// result keeps the total cross-section (r = sqrt(ra² + rb²)), takes the
// area-weighted velocity, and sits at the position of the larger droplet so
// the absorbing droplet does not jump. The smaller droplet is removed; on a
// tie a survives.
func (p *Pool) Merge(a, b DropletID) (DropletID, error) {
	if a == b || !p.Alive(a) || !p.Alive(b) {
		return -1, ErrDeadDroplet
	}
	da, db := &p.slots[a], &p.slots[b]
	survivor, absorbed := a, b
	if db.Radius > da.Radius {
		survivor, absorbed = b, a
	}
	s, o := &p.slots[survivor], &p.slots[absorbed]

	wa := s.Radius * s.Radius
	wb := o.Radius * o.Radius
	total := wa + wb
	s.Vel = Vec2{
		X: (s.Vel.X*wa + o.Vel.X*wb) / total,
		Y: (s.Vel.Y*wa + o.Vel.Y*wb) / total,
	}
	s.Radius = math.Sqrt(total)
	if s.State != Evaporating {
		s.State = Merging
	}

	p.Remove(absorbed)
	return survivor, nil
}
