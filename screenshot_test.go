package raineffect

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"storm", "storm"},
		{"rain-1.5", "rain-1.5"},
		{"heavy rain", "heavy_rain"},
		{"a/b\\c", "a_b_c"},
		{"pluie fine é", "pluie_fine__"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueueAppend(t *testing.T) {
	e, _ := newTestEngine(t, Config{ScreenshotDir: t.TempDir()})
	e.Screenshot("a")
	e.Screenshot("b")
	if len(e.screenshotQueue) != 2 {
		t.Fatalf("expected 2 queued, got %d", len(e.screenshotQueue))
	}
}

func TestScreenshotDirDefault(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.ScreenshotDir != "screenshots" {
		t.Errorf("default ScreenshotDir = %q, want %q", cfg.ScreenshotDir, "screenshots")
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := WritePNG(path, 2, 1, []byte{255, 0, 0, 255, 0, 255, 0, 128}); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("stat = %v, %v", fi, err)
	}
	if err := WritePNG(path, 3, 3, make([]byte, 4)); !errors.Is(err, ErrFrameSize) {
		t.Errorf("err = %v, want ErrFrameSize", err)
	}
}
