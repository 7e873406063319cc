package raineffect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *ImageSurface) {
	t.Helper()
	const w, h = 64, 48
	surface := NewImageSurface(w, h)
	if cfg.Now == nil {
		clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), step: time.Second / 60}
		cfg.Now = clock.now
	}
	e, err := Create(context.Background(), surface, GenerateTextures(w, h, 16, 1), cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return e, surface
}

type recorder struct {
	events []WeatherEvent
}

func (r *recorder) EmitEvent(e WeatherEvent) {
	r.events = append(r.events, e)
}

// kinds returns the recorded event kinds, ignoring random lightning.
func (r *recorder) kinds() []WeatherEventKind {
	var out []WeatherEventKind
	for _, e := range r.events {
		if e.Kind != WeatherFlash {
			out = append(out, e.Kind)
		}
	}
	return out
}

type failingProvider struct{ err error }

func (p failingProvider) LoadTextures(context.Context) (*Textures, error) {
	return nil, p.err
}

func TestCreateErrors(t *testing.T) {
	ctx := context.Background()
	tex := GenerateTextures(8, 8, 4, 1)
	bad := GenerateTextures(8, 8, 4, 1)
	bad.Sets[Drizzle].Foreground = NewTexture(4, 4)
	boom := errors.New("boom")

	tests := []struct {
		name     string
		surface  Surface
		provider TextureProvider
		want     error
	}{
		{"nil surface", nil, tex, ErrInvalidSurface},
		{"empty surface", NewImageSurface(0, 10), tex, ErrInvalidSurface},
		{"nil provider", NewImageSurface(8, 8), nil, ErrMissingTexture},
		{"mismatched textures", NewImageSurface(8, 8), bad, ErrResolutionMismatch},
		{"provider error", NewImageSurface(8, 8), failingProvider{boom}, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Create(ctx, tt.surface, tt.provider, Config{})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if e != nil {
				t.Error("engine returned alongside an error")
			}
		})
	}
}

func TestCreateAsync(t *testing.T) {
	res := <-CreateAsync(context.Background(), NewImageSurface(8, 8), GenerateTextures(8, 8, 4, 1), Config{})
	if res.Err != nil || res.Engine == nil {
		t.Fatalf("CreateAsync = %v, %v", res.Engine, res.Err)
	}
	if w, h := res.Engine.Size(); w != 8 || h != 8 {
		t.Errorf("Size() = %d, %d, want 8, 8", w, h)
	}
}

func TestNilEnginePanics(t *testing.T) {
	var e *Engine
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on nil engine, got none")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "nil *Engine") {
			t.Errorf("panic message = %q, want it to mention nil *Engine", msg)
		}
	}()
	e.Draw()
}

func TestEngineSunToStorm(t *testing.T) {
	rec := &recorder{}
	clock := &fakeClock{t: time.Unix(0, 0), step: 500 * time.Millisecond}
	e, surface := newTestEngine(t, Config{
		Weather:            Sun,
		TransitionDuration: 2,
		NominalDT:          0.5,
		Now:                clock.now,
		Events:             rec,
	})

	if err := e.SetWeather(Storm); err != nil {
		t.Fatalf("SetWeather: %v", err)
	}
	for frame := range 3 {
		e.Draw()
		if tr := e.Transition(); !tr.Active || e.Weather() != Sun {
			t.Fatalf("frame %d: transition = %+v, want active from sun", frame, tr)
		}
	}
	e.Draw()
	if e.Weather() != Storm || e.Transition().Active {
		t.Errorf("after 2s Weather() = %v, transition = %+v, want committed storm", e.Weather(), e.Transition())
	}
	if got := e.Time(); got < 2-1e-9 || got > 2+1e-9 {
		t.Errorf("Time() = %v, want 2", got)
	}

	kinds := rec.kinds()
	if len(kinds) != 2 || kinds[0] != WeatherStarted || kinds[1] != WeatherCommitted {
		t.Errorf("events = %v, want [started committed]", kinds)
	}
	for _, ev := range rec.events {
		if ev.Kind == WeatherCommitted && (ev.From != Sun || ev.To != Storm) {
			t.Errorf("committed event = %+v, want sun -> storm", ev)
		}
	}
	if !bytes.Equal(surface.Image.Pix, e.Frame()) {
		t.Error("surface does not hold the last rendered frame")
	}
}

func TestEngineSetWeatherEvents(t *testing.T) {
	var got []WeatherEventKind
	e, _ := newTestEngine(t, Config{
		Weather: Sun,
		Events:  EventSinkFunc(func(ev WeatherEvent) { got = append(got, ev.Kind) }),
	})

	steps := []Weather{Storm, Storm, Rain, Sun, Sun}
	for _, w := range steps {
		if err := e.SetWeather(w); err != nil {
			t.Fatalf("SetWeather(%v): %v", w, err)
		}
	}
	e.Flash()

	want := []WeatherEventKind{WeatherStarted, WeatherRetargeted, WeatherCancelled, WeatherFlash}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEngineSetWeatherName(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	err := e.SetWeatherName("strom")
	if !errors.Is(err, ErrUnknownWeather) || !strings.Contains(err.Error(), "storm") {
		t.Errorf("err = %v, want ErrUnknownWeather suggesting storm", err)
	}
	if err := e.SetWeatherName("drizzle"); err != nil {
		t.Fatalf("SetWeatherName: %v", err)
	}
	if tr := e.Transition(); tr.Target != Drizzle {
		t.Errorf("target = %v, want drizzle", tr.Target)
	}
	if err := e.SetWeather(Weather(42)); !errors.Is(err, ErrUnknownWeather) {
		t.Errorf("err = %v, want ErrUnknownWeather", err)
	}
}

func TestEngineStepIgnoresBadDT(t *testing.T) {
	e, _ := newTestEngine(t, Config{Weather: Storm})
	e.Step(0.5)
	n := e.DropletCount()
	for _, dt := range []float64{0, -0.1} {
		e.Step(dt)
		if st := e.Stats(); st.Substeps != 0 || st.Spawned != 0 || len(st.Merges) != 0 {
			t.Errorf("Step(%v) stats = %+v, want zero", dt, e.Stats())
		}
	}
	if e.DropletCount() != n || e.Time() != 0.5 {
		t.Errorf("count = %d, time = %v, want %d and 0.5", e.DropletCount(), e.Time(), n)
	}
}

func TestEngineDroplets(t *testing.T) {
	e, _ := newTestEngine(t, Config{Weather: Sun})
	for i := range 3 {
		if _, err := e.sim.Pool().Spawn(Vec2{float64(10 + 20*i), 10}, 3); err != nil {
			t.Fatal(err)
		}
	}
	e.Draw()
	n := 0
	for range e.Droplets() {
		n++
	}
	if n != 3 || n != e.DropletCount() {
		t.Errorf("Droplets yielded %d, DropletCount() = %d", n, e.DropletCount())
	}
}

func TestEngineScreenshot(t *testing.T) {
	dir := t.TempDir()
	e, _ := newTestEngine(t, Config{ScreenshotDir: dir})
	e.Screenshot("first frame")
	e.Draw()

	files, _ := filepath.Glob(filepath.Join(dir, "*_first_frame.png"))
	if len(files) != 1 {
		t.Fatalf("screenshots = %v, want one", files)
	}
	f, err := os.Open(files[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("screenshot size = %v, want 64x48", b.Size())
	}

	e.Draw()
	more, _ := filepath.Glob(filepath.Join(dir, "*.png"))
	if len(more) != 1 {
		t.Errorf("queue not cleared: %d files", len(more))
	}
}

func TestEngineScript(t *testing.T) {
	dir := t.TempDir()
	e, _ := newTestEngine(t, Config{ScreenshotDir: dir})
	runner, err := LoadScript([]byte(`{"steps": [
		{"action": "weather", "weather": "fallout"},
		{"action": "wait", "frames": 2},
		{"action": "screenshot", "label": "fallout"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetScript(runner)
	for range 4 {
		e.Draw()
	}
	if !runner.Done() {
		t.Error("script not done after four frames")
	}
	if tr := e.Transition(); tr.Target != Fallout {
		t.Errorf("target = %v, want fallout", tr.Target)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "*_fallout.png"))
	if len(files) != 1 {
		t.Errorf("screenshots = %v, want one", files)
	}
}

func TestEngineDebugLog(t *testing.T) {
	e, _ := newTestEngine(t, Config{Debug: true})

	// Capture stderr output.
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	e.Draw()

	w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	for _, want := range []string{"[raineffect] dt:", "[raineffect] droplets:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in stderr, got: %q", want, output)
		}
	}
}

func TestWeatherEventKindString(t *testing.T) {
	if WeatherRetargeted.String() != "retargeted" {
		t.Errorf("String() = %q", WeatherRetargeted.String())
	}
	if got := WeatherEventKind(9).String(); got != "WeatherEventKind(9)" {
		t.Errorf("String() = %q", got)
	}
}

func TestEngineCrossFadeIsLinear(t *testing.T) {
	const w, h = 16, 16
	tex := GenerateTextures(w, h, 8, 1)
	empty := solidTexture(w, h, 0, 0, 0, 0)
	tex.Sets[Sun] = TextureSet{Background: solidTexture(w, h, 0, 0, 0, 255), Foreground: empty}
	tex.Sets[Storm] = TextureSet{Background: solidTexture(w, h, 200, 200, 200, 255), Foreground: empty}

	cfg := Config{Weather: Sun, TransitionDuration: 2}
	e, err := Create(context.Background(), NewImageSurface(w, h), tex, cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := e.SetWeather(Storm); err != nil {
		t.Fatal(err)
	}
	e.Step(0.5)

	f := e.frameInfo()
	tr := e.Transition()
	if f.Blend != tr.Progress {
		t.Errorf("Blend = %v, want progress %v", f.Blend, tr.Progress)
	}
	out := e.comp.Render(f, nil)
	want := byte(lerp(0, 200, tr.Progress))
	if got := pixelAt(out, w, 8, 8)[0]; got != want {
		t.Errorf("mid-transition red = %d, want %d", got, want)
	}
}

func TestEngineFlashVisibleOnlyBelowFullForeground(t *testing.T) {
	tests := []struct {
		weather Weather
		visible bool
	}{
		{Storm, true},
		{Sun, false},
	}
	for _, tt := range tests {
		t.Run(tt.weather.String(), func(t *testing.T) {
			e, _ := newTestEngine(t, Config{Weather: tt.weather})
			before := e.frameInfo().ForegroundOpacity[0]
			e.Flash()
			e.Step(0.02)
			after := e.frameInfo().ForegroundOpacity[0]
			if got := after > before; got != tt.visible {
				t.Errorf("opacity %v -> %v, visible = %v, want %v", before, after, got, tt.visible)
			}
		})
	}
}
