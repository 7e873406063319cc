// Package ecs provides ECS adapters for raineffect's weather events.
//
// The primary adapter is [NewDonburiSink], which forwards weather transition
// and lightning events into a [Donburi] world as typed events. Subscribe to
// [WeatherEventType] in your ECS systems to receive them.
//
// Usage:
//
//	cfg := raineffect.DefaultConfig()
//	cfg.Events = ecs.NewDonburiSink(world)
//	engine, err := raineffect.Create(ctx, surface, provider, cfg)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
