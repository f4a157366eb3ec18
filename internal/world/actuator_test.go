package world

import (
	"image/color"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func testSpace(t *testing.T) *Space {
	t.Helper()
	return NewSpace(Params{
		Width: 300, Height: 225, FPS: 60,
		Background:    color.RGBA{0, 0, 0, 255},
		WallThickness: 1,
	})
}

func centerAgent(speed float64) *Actuator {
	return NewAgent(CircleSpec{
		Radius: 20,
		Pos:    cp.Vector{X: 150, Y: 110},
		Color:  color.RGBA{0, 0, 255, 255},
		Speed:  speed,
	})
}

func TestActuatorConvergence(t *testing.T) {
	s := testSpace(t)
	agent := centerAgent(100)
	if err := s.Populate(agent, nil); err != nil {
		t.Fatal(err)
	}

	commanded := 100.0
	agent.SetVelocity(cp.Vector{X: commanded, Y: 0})

	prev := agent.Velocity().X
	for i := 0; i < 30; i++ {
		s.AcceleratedTick()
		vx := agent.Velocity().X
		if vx < prev-1e-9 {
			t.Fatalf("tick %d: velocity regressed from %g to %g", i, prev, vx)
		}
		if vx > commanded+1e-6 {
			t.Fatalf("tick %d: velocity %g overshot commanded %g", i, vx, commanded)
		}
		prev = vx
	}
	if prev < commanded*0.9 {
		t.Errorf("velocity %g never approached commanded %g", prev, commanded)
	}
}

func TestActuatorConvergenceRate(t *testing.T) {
	// The force cap bounds acceleration to max-force/mass, which is the
	// entire friction model: one tick may close at most
	// (cap/mass)*dt of the velocity gap.
	s := testSpace(t)
	agent := centerAgent(100)
	if err := s.Populate(agent, nil); err != nil {
		t.Fatal(err)
	}

	agent.SetVelocity(cp.Vector{X: 100, Y: 0})
	s.AcceleratedTick()

	maxStep := agentPivotMax / agentMass * s.Dt()
	if vx := agent.Velocity().X; vx > maxStep+1e-6 {
		t.Errorf("one tick gained %g, force cap allows at most %g", vx, maxStep)
	}
}

func TestObstacleDampsInPlace(t *testing.T) {
	s := testSpace(t)
	agent := centerAgent(0)
	obstacle := NewObstacle(CircleSpec{
		Radius: 30,
		Pos:    cp.Vector{X: 60, Y: 60},
		Color:  color.RGBA{255, 0, 0, 255},
	}, s.StaticBody())
	if err := s.Populate(agent, []*Obstacle{obstacle}); err != nil {
		t.Fatal(err)
	}

	obstacle.Body.SetVelocityVector(cp.Vector{X: 50, Y: 0})

	prev := math.Inf(1)
	for i := 0; i < 20; i++ {
		s.AcceleratedTick()
		speed := obstacle.Velocity().Length()
		if speed > prev+1e-9 {
			t.Fatalf("tick %d: obstacle sped up from %g to %g", i, prev, speed)
		}
		prev = speed
	}
	if prev > 1e-6 {
		t.Errorf("obstacle never settled, residual speed %g", prev)
	}
}

func TestSetVelocityOnlyMovesControlBody(t *testing.T) {
	s := testSpace(t)
	agent := centerAgent(100)
	if err := s.Populate(agent, nil); err != nil {
		t.Fatal(err)
	}

	agent.SetVelocity(cp.Vector{X: 100, Y: 0})
	if got := agent.Control.Velocity().X; got != 100 {
		t.Errorf("control body velocity = %g, want 100", got)
	}
	// Before any tick the dynamic body has not been pulled yet.
	if got := agent.Velocity().X; got != 0 {
		t.Errorf("dynamic body velocity = %g before stepping, want 0", got)
	}
}
