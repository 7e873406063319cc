package raineffect

import "github.com/tanema/gween/ease"

// commitEpsilon absorbs float drift so dt slices summing to the duration
// commit on the last slice.
const commitEpsilon = 1e-9

// TransitionChange reports what a SetWeather request did to the transition.
type TransitionChange uint8

const (
	TransitionUnchanged  TransitionChange = iota // request was redundant
	TransitionStarted                            // new blend from the current weather
	TransitionRetargeted                         // in-flight blend restarted toward a new target
	TransitionCancelled                          // in-flight blend dropped, current weather kept
)

// Transition is the cross-fade state between two weathers.
type Transition struct {
	Current Weather
	Target  Weather
	// Progress is the blend completion in [0, 1]. It never decreases while
	// a transition is active and is reset to 0 when retargeted.
	Progress float64
	Active   bool
}

// Request asks the transition to move toward w.
func (t *Transition) Request(w Weather) TransitionChange {
	switch {
	case !t.Active && w == t.Current:
		return TransitionUnchanged
	case !t.Active:
		t.Target, t.Progress, t.Active = w, 0, true
		return TransitionStarted
	case w == t.Target:
		return TransitionUnchanged
	case w == t.Current:
		t.Target, t.Progress, t.Active = t.Current, 0, false
		return TransitionCancelled
	default:
		t.Target, t.Progress = w, 0
		return TransitionRetargeted
	}
}

// Advance adds delta to the progress and commits the target once the blend
// completes. It reports whether a commit happened.
func (t *Transition) Advance(delta float64) bool {
	if !t.Active || !(delta > 0) {
		return false
	}
	t.Progress += delta
	if t.Progress < 1-commitEpsilon {
		return false
	}
	t.Progress = 1
	t.Current = t.Target
	t.Active = false
	return true
}

// Weight maps the linear progress through fn to the visual blend weight.
// Inactive transitions weigh 0. A nil fn means linear.
func (t *Transition) Weight(fn ease.TweenFunc) float64 {
	if !t.Active {
		return 0
	}
	if fn == nil {
		return clamp01(t.Progress)
	}
	return clamp01(float64(fn(float32(t.Progress), 0, 1, 1)))
}
