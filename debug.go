package raineffect

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-frame timing and simulation counters.
// Only populated when Config.Debug is true.
type debugStats struct {
	dt          float64
	stepTime    time.Duration
	renderTime  time.Duration
	presentTime time.Duration
	step        StepStats
	droplets    int
	capacity    int
}

// debugLog prints timing and droplet stats to stderr.
func (e *Engine) debugLog(s debugStats) {
	if !e.cfg.Debug {
		return
	}
	total := s.stepTime + s.renderTime + s.presentTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[raineffect] dt: %.4fs | step: %v | render: %v | present: %v | total: %v\n",
		s.dt, s.stepTime, s.renderTime, s.presentTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[raineffect] droplets: %d/%d | spawned: %d | merged: %d | trailed: %d | removed: %d | dropped: %d\n",
		s.droplets, s.capacity, s.step.Spawned, s.step.Merged, s.step.Trailed, s.step.Removed, s.step.Dropped)
	if s.capacity > 0 && s.droplets >= s.capacity {
		_, _ = fmt.Fprintf(os.Stderr, "[raineffect] warning: droplet pool full (%d)\n", s.capacity)
	}
}
