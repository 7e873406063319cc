// Package raineffect renders a real-time weather effect: raindrops sliding
// down a pane of glass, refracting the scene behind them.
//
// The package has two halves. A [Simulation] owns a fixed-capacity [Pool] of
// droplets and advances it every frame: droplets spawn near the top, fall
// under gravity and radius-scaled drag, merge when they overlap, shed trail
// droplets once they grow large, and fade out when they leave the surface or
// grow old. A [Compositor] then draws the frame on the CPU by sampling the
// background through each droplet's alpha mask and color map, and blends the
// foreground on top.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens an [Ebitengine]
// window and drives the engine for you:
//
//	textures := raineffect.GenerateTextures(640, 480, 64, 1)
//	if err := raineffect.Run(textures, raineffect.DefaultConfig(), raineffect.RunConfig{
//		Title: "Rain", Width: 640, Height: 480,
//	}); err != nil {
//		log.Fatal(err)
//	}
//
// For full control, create an [Engine] on any [Surface] and call
// [Engine.Draw] once per frame:
//
//	surface := raineffect.NewImageSurface(640, 480)
//	engine, err := raineffect.Create(ctx, surface, provider, raineffect.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	engine.SetWeather(raineffect.Storm)
//	engine.Draw()
//
// # Weather
//
// There are five weathers: [Rain], [Storm], [Drizzle], [Fallout] and [Sun].
// Each has a fixed [Preset] (spawn rate, radius range, gravity, trail
// behaviour, lightning) and a [TextureSet]. [Engine.SetWeather] cross-fades
// presets and textures over Config.TransitionDuration seconds. Requesting
// another weather mid-fade restarts the fade toward it.
//
// # Textures
//
// A [TextureProvider] supplies all images before the engine starts.
// [ManifestProvider] decodes PNG, JPEG, GIF, WebP and BMP files named by a
// [Manifest] from any [io/fs.FS]; [GenerateTextures] builds a procedural set.
//
// # Determinism
//
// Given the same Config.Seed and the same sequence of Step durations, the
// simulation produces the same droplets, and rendering the same pool twice
// produces byte-identical frames.
//
// [Ebitengine]: https://ebitengine.org
package raineffect
