package raineffect

import (
	"encoding/json"
	"fmt"
)

var scriptActions = []string{"screenshot", "weather", "flash", "wait"}

// scriptStep is a single action in a weather script.
type scriptStep struct {
	Action  string `json:"action"`
	Label   string `json:"label,omitempty"`
	Weather string `json:"weather,omitempty"`
	Frames  int    `json:"frames,omitempty"`

	weather Weather
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner replays weather changes, flashes, and screenshots across
// frames. Attach it with Engine.SetScript; Draw advances it one step per
// frame before simulating.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON script such as
//
//	{"steps": [
//		{"action": "weather", "weather": "storm"},
//		{"action": "wait", "frames": 120},
//		{"action": "screenshot", "label": "storm"}
//	]}
//
// Unknown actions and weather names are rejected.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var f scriptFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i := range f.Steps {
		st := &f.Steps[i]
		switch st.Action {
		case "weather":
			w, err := ParseWeather(st.Weather)
			if err != nil {
				return nil, fmt.Errorf("parse script: step %d: %w", i, err)
			}
			st.weather = w
		case "screenshot", "flash", "wait":
		default:
			if s := suggest(st.Action, scriptActions); s != "" {
				return nil, fmt.Errorf("parse script: step %d: unknown action %q (did you mean %q?)", i, st.Action, s)
			}
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: f.Steps}, nil
}

// SetScript attaches a script runner. Pass nil to detach.
func (e *Engine) SetScript(r *ScriptRunner) {
	e.mustLive("SetScript")
	e.script = r
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step runs the next action, or counts down a wait.
func (r *ScriptRunner) step(e *Engine) {
	if r.done {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		e.Screenshot(st.Label)
	case "weather":
		_ = e.SetWeather(st.weather)
	case "flash":
		e.Flash()
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}
