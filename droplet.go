package raineffect

// DropletState is the lifecycle phase of a droplet.
type DropletState uint8

const (
	Falling     DropletState = iota // sliding down the surface under gravity
	Merging                         // absorbed another droplet during the last step
	Trailing                        // large enough to shed trail droplets as it slides
	Evaporating                     // fading out; removed once opacity reaches zero
)

func (s DropletState) String() string {
	switch s {
	case Falling:
		return "falling"
	case Merging:
		return "merging"
	case Trailing:
		return "trailing"
	case Evaporating:
		return "evaporating"
	default:
		return "unknown"
	}
}

// DropletID identifies a pool slot. IDs are reused after removal.
type DropletID int32

// Droplet is a simulated liquid particle. Droplets are owned by a Pool and
// must not be retained across simulation steps.
type Droplet struct {
	Pos    Vec2
	Vel    Vec2
	Radius float64
	// Age is the elapsed lifetime in seconds.
	Age   float64
	State DropletState
	// TrailAccum is the distance travelled since the last trail emission.
	TrailAccum float64

	fadeStart    float64 // Age at which evaporation began
	fadeDuration float64
}

// Opacity returns the render opacity: 1 normally, fading linearly to 0 over
// the fade duration once the droplet is evaporating.
func (d *Droplet) Opacity() float64 {
	if d.State != Evaporating {
		return 1
	}
	if d.fadeDuration <= 0 {
		return 0
	}
	return clamp01(1 - (d.Age-d.fadeStart)/d.fadeDuration)
}

// evaporate moves d into the Evaporating state. Calling it again is a no-op.
func (d *Droplet) evaporate(fade float64) {
	if d.State == Evaporating {
		return
	}
	d.State = Evaporating
	d.fadeStart = d.Age
	d.fadeDuration = fade
}

// Bounds returns the droplet's bounding box in surface space.
func (d *Droplet) Bounds() Rect {
	return Rect{
		X:      d.Pos.X - d.Radius,
		Y:      d.Pos.Y - d.Radius,
		Width:  d.Radius * 2,
		Height: d.Radius * 2,
	}
}
