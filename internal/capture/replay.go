package capture

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/nomutin/Push2D/internal/env"
	"github.com/nomutin/Push2D/internal/render"
)

// Stepper is the slice of the episode controller replay needs.
type Stepper interface {
	Reset(seed int64, opts *env.ResetOptions) (render.Frame, env.Info, error)
	Step(action []float64) (render.Frame, float64, bool, bool, env.Info, error)
}

// ReplayOptions describe the rate mismatch between capture and physics.
// Actions sampled at SaveFPS are each held for
// span = PhysicsFPS/SaveFPS consecutive ticks. When the ratio is not
// exact the remainder ticks are dropped, unless Distribute is set, in
// which case the first PhysicsFPS mod SaveFPS actions get one extra
// tick each.
type ReplayOptions struct {
	SaveFPS    int
	PhysicsFPS int
	Distribute bool
	Seed       int64
}

// Span is the number of physics ticks one sampled action covers.
func Span(physicsFPS, saveFPS int) int {
	if saveFPS <= 0 {
		return 0
	}
	return physicsFPS / saveFPS
}

// Replay resets the stepper and reapplies every recorded action,
// smoothing the sparse action sequence into full-rate motion. It
// returns every observation including the reset frame.
func Replay(e Stepper, actions *mat.Dense, opts ReplayOptions) ([]render.Frame, error) {
	span := Span(opts.PhysicsFPS, opts.SaveFPS)
	if span < 1 {
		return nil, fmt.Errorf("capture: physics fps %d below save fps %d", opts.PhysicsFPS, opts.SaveFPS)
	}
	remainder := 0
	if opts.Distribute {
		remainder = opts.PhysicsFPS % opts.SaveFPS
	}

	first, _, err := e.Reset(opts.Seed, nil)
	if err != nil {
		return nil, err
	}
	frames := []render.Frame{first}

	rows, cols := actions.Dims()
	action := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(action, i, actions)
		ticks := span
		if i < remainder {
			ticks++
		}
		for j := 0; j < ticks; j++ {
			frame, _, _, _, _, err := e.Step(action)
			if err != nil {
				return nil, err
			}
			frames = append(frames, frame)
		}
	}
	return frames, nil
}
