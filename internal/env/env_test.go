package env

import (
	"errors"
	"math"
	"testing"

	"github.com/nomutin/Push2D/internal/config"
)

func testScenario() *config.Scenario {
	sc := config.GetPreset("red-and-green")
	clone := *sc
	return &clone
}

func testEnv(t *testing.T, sc *config.Scenario) *Env {
	t.Helper()
	e, err := New(sc, Accelerated())
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestStepNeverTerminates(t *testing.T) {
	e := testEnv(t, testScenario())
	if _, _, err := e.Reset(42, nil); err != nil {
		t.Fatal(err)
	}

	actions := [][]float64{
		{0, 0, 0, 0},
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{1, 0, 1, 0},
	}
	for _, action := range actions {
		_, _, terminated, truncated, _, err := e.Step(action)
		if err != nil {
			t.Fatalf("step %v: %v", action, err)
		}
		if terminated || truncated {
			t.Errorf("step %v: episodes are endless, got terminated=%v truncated=%v",
				action, terminated, truncated)
		}
	}
}

func TestStepBeforeReset(t *testing.T) {
	e := testEnv(t, testScenario())
	if _, _, _, _, _, err := e.Step([]float64{0, 0, 0, 0}); !errors.Is(err, ErrNotReset) {
		t.Errorf("expected ErrNotReset, got %v", err)
	}
}

func TestBadActions(t *testing.T) {
	e := testEnv(t, testScenario())
	if _, _, err := e.Reset(42, nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		action []float64
	}{
		{"too short", []float64{1, 0}},
		{"too long", []float64{1, 0, 0, 0, 0}},
		{"empty", nil},
		{"non-binary lane", []float64{0.5, 0, 0, 0}},
		{"nan", []float64{math.NaN(), 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, _, _, err := e.Step(tt.action)
			if !errors.Is(err, ErrBadAction) {
				t.Errorf("expected ErrBadAction, got %v", err)
			}
		})
	}
}

func TestStepMovesAgent(t *testing.T) {
	e := testEnv(t, testScenario())
	_, info, err := e.Reset(42, nil)
	if err != nil {
		t.Fatal(err)
	}
	startX := info.Agent.Position.X

	for i := 0; i < 10; i++ {
		if _, _, _, _, info, err = e.Step([]float64{0, 0, 0, 1}); err != nil {
			t.Fatal(err)
		}
	}
	if info.Agent.Position.X <= startX {
		t.Errorf("agent did not move right: %g -> %g", startX, info.Agent.Position.X)
	}
	if info.Agent.Velocity.X <= 0 {
		t.Errorf("agent velocity should point right, got %g", info.Agent.Velocity.X)
	}
}

func TestInfoContents(t *testing.T) {
	sc := testScenario()
	e := testEnv(t, sc)
	_, info, err := e.Reset(42, nil)
	if err != nil {
		t.Fatal(err)
	}

	if info.Arena.Width != float64(sc.Space.Width) || info.Arena.Height != float64(sc.Space.Height) {
		t.Errorf("arena info %gx%g does not match scenario", info.Arena.Width, info.Arena.Height)
	}
	if len(info.Obstacles) != len(sc.Obstacles) {
		t.Fatalf("expected %d obstacles, got %d", len(sc.Obstacles), len(info.Obstacles))
	}
	if info.Obstacles[0].ColorName != "red" || info.Obstacles[1].ColorName != "green" {
		t.Error("obstacle colors out of order")
	}
	if info.Steps != 0 {
		t.Errorf("fresh episode should report step 0, got %d", info.Steps)
	}

	_, _, _, _, info, err = e.Step([]float64{0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if info.Steps != 1 {
		t.Errorf("expected step 1, got %d", info.Steps)
	}
}

func TestResetSeedDeterminism(t *testing.T) {
	sc := testScenario()
	sc.Agent.Position = nil // force random placement
	e := testEnv(t, sc)

	_, a, err := e.Reset(7, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, b, err := e.Reset(7, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Agent.Position != b.Agent.Position {
		t.Errorf("same seed placed agent at %v then %v", a.Agent.Position, b.Agent.Position)
	}

	_, c, err := e.Reset(8, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Agent.Position == c.Agent.Position {
		t.Error("different seeds should place the agent differently")
	}
}

func TestRandomPlacementWithinBounds(t *testing.T) {
	sc := testScenario()
	sc.Agent.Position = nil
	e := testEnv(t, sc)

	for seed := int64(0); seed < 20; seed++ {
		_, info, err := e.Reset(seed, nil)
		if err != nil {
			t.Fatal(err)
		}
		p, r := info.Agent.Position, info.Agent.Radius
		if p.X < r || p.X > info.Arena.Width-r || p.Y < r || p.Y > info.Arena.Height-r {
			t.Errorf("seed %d: agent at %v outside [r, dim-r]", seed, p)
		}
	}
}

func TestResetOptionsOverride(t *testing.T) {
	e := testEnv(t, testScenario())
	if _, _, err := e.Reset(42, nil); err != nil {
		t.Fatal(err)
	}

	_, info, err := e.Reset(42, &ResetOptions{
		Obstacles: []config.CircleParams{
			{Radius: 15, Position: &config.Point{X: 100, Y: 100}, Color: "yellow"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Obstacles) != 1 {
		t.Fatalf("expected 1 obstacle after override, got %d", len(info.Obstacles))
	}
	if info.Obstacles[0].ColorName != "yellow" {
		t.Errorf("expected yellow obstacle, got %s", info.Obstacles[0].ColorName)
	}
}

func TestResetOptionsInvalidOverrideLeavesScenarioIntact(t *testing.T) {
	e := testEnv(t, testScenario())
	if _, _, err := e.Reset(42, nil); err != nil {
		t.Fatal(err)
	}

	_, _, err := e.Reset(42, &ResetOptions{
		Obstacles: []config.CircleParams{{Radius: 0, Color: "red"}},
	})
	if err == nil {
		t.Fatal("expected validation error for zero-radius obstacle")
	}

	// The rejected override must not stick.
	_, info, err := e.Reset(42, nil)
	if err != nil {
		t.Fatalf("reset after rejected override failed: %v", err)
	}
	if len(info.Obstacles) != 2 {
		t.Errorf("expected the 2 scenario obstacles back, got %d", len(info.Obstacles))
	}
}

func TestTrackingDecode(t *testing.T) {
	sc := testScenario()
	sc.Tracking = true
	e := testEnv(t, sc)
	_, info, err := e.Reset(42, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Target far to the right of the agent.
	target := []float64{info.Arena.Width, info.Agent.Position.Y}
	for i := 0; i < 5; i++ {
		if _, _, _, _, info, err = e.Step(target); err != nil {
			t.Fatal(err)
		}
	}
	if info.Agent.Velocity.X <= 0 {
		t.Errorf("agent should head toward target, vx=%g", info.Agent.Velocity.X)
	}

	// Wrong shape for tracking mode.
	if _, _, _, _, _, err := e.Step([]float64{1, 0, 0, 0}); !errors.Is(err, ErrBadAction) {
		t.Errorf("expected ErrBadAction for 4-vector in tracking mode, got %v", err)
	}
}

func TestObservationShape(t *testing.T) {
	sc := testScenario()
	e := testEnv(t, sc)
	frame, _, err := e.Reset(42, nil)
	if err != nil {
		t.Fatal(err)
	}
	if frame.H != sc.Space.Height || frame.W != sc.Space.Width {
		t.Errorf("frame %dx%d does not match arena %dx%d",
			frame.H, frame.W, sc.Space.Height, sc.Space.Width)
	}
	if len(frame.Pix) != frame.H*frame.W*3 {
		t.Errorf("frame buffer length %d, want %d", len(frame.Pix), frame.H*frame.W*3)
	}
}

func TestRewardFromPolicy(t *testing.T) {
	sc := testScenario()
	sc.Reward.Policy = "top-left-red-bottom-left-green"
	sc.Obstacles = []config.CircleParams{
		{Radius: 30, Position: &config.Point{X: 10, Y: 10}, Color: "red"},
		{Radius: 30, Position: &config.Point{X: 10, Y: 190}, Color: "green"},
	}
	e := testEnv(t, sc)
	if _, _, err := e.Reset(42, nil); err != nil {
		t.Fatal(err)
	}
	_, score, _, _, _, err := e.Step([]float64{0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if score != 1.0 {
		t.Errorf("expected reward 1.0 with both circles in place, got %g", score)
	}
}
