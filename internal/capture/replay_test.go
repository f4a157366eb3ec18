package capture

import (
	"bytes"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/nomutin/Push2D/internal/config"
	"github.com/nomutin/Push2D/internal/env"
	"github.com/nomutin/Push2D/internal/render"
)

// fakeStepper records every action it is stepped with.
type fakeStepper struct {
	resets int
	steps  [][]float64
}

func (f *fakeStepper) Reset(seed int64, opts *env.ResetOptions) (render.Frame, env.Info, error) {
	f.resets++
	return testFrame(0), env.Info{}, nil
}

func (f *fakeStepper) Step(action []float64) (render.Frame, float64, bool, bool, env.Info, error) {
	a := make([]float64, len(action))
	copy(a, action)
	f.steps = append(f.steps, a)
	return testFrame(uint8(len(f.steps))), 0, false, false, env.Info{}, nil
}

func TestSpan(t *testing.T) {
	tests := []struct {
		physics, save, want int
	}{
		{60, 10, 6},
		{60, 60, 1},
		{15, 10, 1},
		{25, 10, 2},
		{10, 60, 0},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := Span(tt.physics, tt.save); got != tt.want {
			t.Errorf("Span(%d, %d) = %d, want %d", tt.physics, tt.save, got, tt.want)
		}
	}
}

func TestReplaySmoothsActions(t *testing.T) {
	f := &fakeStepper{}
	actions := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})

	frames, err := Replay(f, actions, ReplayOptions{SaveFPS: 10, PhysicsFPS: 60})
	if err != nil {
		t.Fatal(err)
	}

	// span = 6: each sampled action held for 6 consecutive ticks, plus
	// the reset frame.
	if len(frames) != 4*6+1 {
		t.Errorf("expected %d frames, got %d", 4*6+1, len(frames))
	}
	if f.resets != 1 {
		t.Errorf("expected 1 reset, got %d", f.resets)
	}
	for i, step := range f.steps {
		want := i / 6
		if step[want] != 1 {
			t.Errorf("tick %d: expected action %d held, got %v", i, want, step)
		}
	}
}

func TestReplayDistributesRemainder(t *testing.T) {
	f := &fakeStepper{}
	actions := mat.NewDense(10, 4, make([]float64, 40))

	// physics 25 / save 10: span 2, remainder 5. Distributed, the first
	// 5 actions run one extra tick.
	frames, err := Replay(f, actions, ReplayOptions{SaveFPS: 10, PhysicsFPS: 25, Distribute: true})
	if err != nil {
		t.Fatal(err)
	}
	if want := 10*2 + 5 + 1; len(frames) != want {
		t.Errorf("expected %d frames, got %d", want, len(frames))
	}

	// Dropped instead.
	f = &fakeStepper{}
	frames, err = Replay(f, actions, ReplayOptions{SaveFPS: 10, PhysicsFPS: 25})
	if err != nil {
		t.Fatal(err)
	}
	if want := 10*2 + 1; len(frames) != want {
		t.Errorf("expected %d frames without distribution, got %d", want, len(frames))
	}
}

func TestReplayRejectsImpossibleRates(t *testing.T) {
	f := &fakeStepper{}
	actions := mat.NewDense(1, 4, []float64{1, 0, 0, 0})
	if _, err := Replay(f, actions, ReplayOptions{SaveFPS: 60, PhysicsFPS: 10}); err == nil {
		t.Error("expected error when save fps exceeds physics fps")
	}
}

func TestCaptureReplayRoundTrip(t *testing.T) {
	preset := config.GetPreset("red-and-green")
	sc := *preset
	sc.Space.FPS = 10
	sc.Capture.FPS = 10 // span 1: capture and replay tick identically

	e, err := env.New(&sc, env.Accelerated())
	if err != nil {
		t.Fatal(err)
	}

	const seed = 3
	if _, _, err := e.Reset(seed, nil); err != nil {
		t.Fatal(err)
	}

	actions := [][]float64{
		{0, 0, 0, 1},
		{0, 0, 0, 1},
		{0, 1, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 1, 0},
	}
	captured := make([]render.Frame, 0, len(actions))
	for _, a := range actions {
		frame, _, _, _, _, err := e.Step(a)
		if err != nil {
			t.Fatal(err)
		}
		captured = append(captured, frame)
	}

	flat := make([]float64, 0, len(actions)*4)
	for _, a := range actions {
		flat = append(flat, a...)
	}
	frames, err := Replay(e, mat.NewDense(len(actions), 4, flat), ReplayOptions{
		SaveFPS:    sc.Capture.FPS,
		PhysicsFPS: sc.Space.FPS,
		Seed:       seed,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(frames) != len(actions)+1 {
		t.Fatalf("expected %d frames, got %d", len(actions)+1, len(frames))
	}
	for i, want := range captured {
		got := frames[i+1]
		if !bytes.Equal(got.Pix, want.Pix) {
			t.Errorf("replay frame %d diverged from capture", i)
		}
	}
}
