package ecs

import (
	raineffect "github.com/kaisawind/rain-effect"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// WeatherEventType is the Donburi event type for raineffect weather events.
// Subscribe to this in your ECS systems to react to weather changes and
// lightning.
var WeatherEventType = events.NewEventType[raineffect.WeatherEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// queued on WeatherEventType and delivered by ProcessEvents.
func NewDonburiSink(world donburi.World) raineffect.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event raineffect.WeatherEvent) {
	WeatherEventType.Publish(s.world, event)
}
