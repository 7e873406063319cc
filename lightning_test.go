package raineffect

import "testing"

func TestLightningNoChanceNoFlash(t *testing.T) {
	l := newLightning(1, 1)
	for range 100 {
		if v := l.update(1, 0); v != 0 {
			t.Fatalf("update = %v, want 0", v)
		}
	}
	if l.active {
		t.Error("flash active with zero chance")
	}
}

func TestLightningCertainChanceFlashes(t *testing.T) {
	l := newLightning(1, 1)
	if v := l.update(0.05, 1000); v <= 0 {
		t.Errorf("update = %v, want a flash", v)
	}
}

func TestLightningStrikeDecays(t *testing.T) {
	l := newLightning(3, 1)
	l.strike()
	if v := l.update(0.02, 0); v <= 0 || v > 1 {
		t.Fatalf("first update = %v, want in (0, 1]", v)
	}
	peak := 0.0
	for range 8 {
		peak = max(peak, l.update(0.05, 0))
	}
	if peak < 0.9 {
		t.Errorf("peak = %v, want near 1", peak)
	}
	for range 20 {
		l.update(0.05, 0)
	}
	if l.active || l.value != 0 {
		t.Errorf("after the duration active = %v, value = %v", l.active, l.value)
	}
}

func TestForegroundOpacity(t *testing.T) {
	tests := []struct {
		base, flash, want float64
	}{
		{1, 0, 1},
		{0.4, 0, 0.4},
		{0.4, 1, 1},
		{0.4, 0.5, 0.7},
		{0, 2, 1},
	}
	for _, tt := range tests {
		got := foregroundOpacity(Preset{ForegroundBase: tt.base}, tt.flash)
		if d := got - tt.want; d > 1e-12 || d < -1e-12 {
			t.Errorf("foregroundOpacity(%v, %v) = %v, want %v", tt.base, tt.flash, got, tt.want)
		}
	}
}
