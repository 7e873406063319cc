package raineffect

import "fmt"

// WeatherEventKind identifies what happened to the weather transition.
type WeatherEventKind uint8

const (
	WeatherStarted     WeatherEventKind = iota // a transition began
	WeatherRetargeted                          // an in-flight transition changed target
	WeatherCancelled                           // an in-flight transition was dropped
	WeatherCommitted                           // the target became the current weather
	WeatherFlash                               // a lightning flash began
)

func (k WeatherEventKind) String() string {
	switch k {
	case WeatherStarted:
		return "started"
	case WeatherRetargeted:
		return "retargeted"
	case WeatherCancelled:
		return "cancelled"
	case WeatherCommitted:
		return "committed"
	case WeatherFlash:
		return "flash"
	default:
		return fmt.Sprintf("WeatherEventKind(%d)", uint8(k))
	}
}

// WeatherEvent is emitted on every transition change.
type WeatherEvent struct {
	Kind WeatherEventKind
	// From is the committed weather when the event fired; To is the target.
	From, To Weather
	// Time is the simulated time in seconds since the engine was created.
	Time float64
}

// EventSink receives weather events. EmitEvent is called synchronously from
// Draw, Step, and SetWeather.
type EventSink interface {
	EmitEvent(WeatherEvent)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(WeatherEvent)

// EmitEvent calls f(e).
func (f EventSinkFunc) EmitEvent(e WeatherEvent) {
	f(e)
}

func changeEvent(c TransitionChange) (WeatherEventKind, bool) {
	switch c {
	case TransitionStarted:
		return WeatherStarted, true
	case TransitionRetargeted:
		return WeatherRetargeted, true
	case TransitionCancelled:
		return WeatherCancelled, true
	default:
		return 0, false
	}
}
