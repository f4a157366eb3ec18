package world

import (
	"errors"
	"image/color"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/nomutin/Push2D/internal/render"
)

// ErrPopulated is returned when Populate is called on a space that was
// not cleared first.
var ErrPopulated = errors.New("world: space already populated")

// Params describe the arena surface.
type Params struct {
	Width, Height int
	FPS           int
	Background    color.RGBA
	WallThickness float64
}

type wall struct {
	a, b  cp.Vector
	shape *cp.Shape
}

// Space owns the solver space, the registry, the renderer and the frame
// clock. Lifecycle: empty --Populate--> populated --Tick--> populated
// --Clear--> empty. Tick preserves render-then-step ordering: the frame
// it returns shows the state before the solver advanced.
type Space struct {
	params    Params
	cp        *cp.Space
	registry  *Registry
	renderer  *render.Renderer
	presenter func(render.Frame)

	agent     *Actuator
	obstacles []*Obstacle
	walls     []wall

	populated bool
	lastTick  time.Time
}

func NewSpace(params Params) *Space {
	space := cp.NewSpace()
	return &Space{
		params:   params,
		cp:       space,
		registry: NewRegistry(space),
		renderer: render.New(params.Width, params.Height, params.Background),
	}
}

func (s *Space) Params() Params       { return s.params }
func (s *Space) Registry() *Registry  { return s.registry }
func (s *Space) StaticBody() *cp.Body { return s.cp.StaticBody }
func (s *Space) Dt() float64          { return 1.0 / float64(s.params.FPS) }

// SetPresenter installs a hook called with each presented frame. Only
// paced ticks present; accelerated ticks skip it.
func (s *Space) SetPresenter(fn func(render.Frame)) { s.presenter = fn }

// Populate installs the agent, the obstacles and the four walls. The
// space must be empty.
func (s *Space) Populate(agent *Actuator, obstacles []*Obstacle) error {
	if s.populated {
		return ErrPopulated
	}
	s.registry.Add(agent)
	for _, o := range obstacles {
		s.registry.Add(o)
	}
	s.agent = agent
	s.obstacles = obstacles
	s.buildWalls()
	s.populated = true
	s.lastTick = time.Now()
	return nil
}

// buildWalls rings the arena with four static segments inset one unit
// from each edge. Walls bounce (elasticity 1.0); everything else in the
// arena does not.
func (s *Space) buildWalls() {
	w, h := float64(s.params.Width), float64(s.params.Height)
	t := s.params.WallThickness
	corners := []cp.Vector{
		{X: 1, Y: 1},
		{X: w - 1, Y: 1},
		{X: w - 1, Y: h - 1},
		{X: 1, Y: h - 1},
	}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%4]
		shape := cp.NewSegment(s.cp.StaticBody, a, b, t)
		shape.SetElasticity(1.0)
		s.registry.AddShape(shape)
		s.walls = append(s.walls, wall{a: a, b: b, shape: shape})
	}
}

// Clear removes everything and returns the space to empty. Idempotent:
// clearing an empty space is a no-op and the space stays steppable.
func (s *Space) Clear() {
	s.registry.RemoveAll()
	s.agent = nil
	s.obstacles = nil
	s.walls = nil
	s.populated = false
}

// Tick rasterizes the current state, presents it, advances the solver
// by one fixed timestep, then blocks out the rest of the 1/fps frame
// budget.
func (s *Space) Tick() render.Frame {
	frame := s.rasterize()
	if s.presenter != nil {
		s.presenter(frame)
	}
	s.cp.Step(s.Dt())
	s.pace()
	return frame
}

// AcceleratedTick is Tick without presentation or pacing, for replay.
func (s *Space) AcceleratedTick() render.Frame {
	frame := s.rasterize()
	s.cp.Step(s.Dt())
	return frame
}

func (s *Space) rasterize() render.Frame {
	var circles []render.Circle
	var segments []render.Segment
	// Walls carry the background color: they bound the arena physically
	// but never show up in observations.
	for _, w := range s.walls {
		segments = append(segments, render.Segment{
			X1: w.a.X, Y1: w.a.Y, X2: w.b.X, Y2: w.b.Y,
			Thickness: s.params.WallThickness,
			Color:     s.params.Background,
		})
	}
	for _, o := range s.obstacles {
		p := o.Position()
		circles = append(circles, render.Circle{X: p.X, Y: p.Y, R: o.Radius, Color: o.Color})
	}
	if s.agent != nil {
		p := s.agent.Position()
		circles = append(circles, render.Circle{X: p.X, Y: p.Y, R: s.agent.Radius, Color: s.agent.Color})
	}
	return s.renderer.Rasterize(circles, segments)
}

func (s *Space) pace() {
	budget := time.Second / time.Duration(s.params.FPS)
	if elapsed := time.Since(s.lastTick); elapsed < budget {
		time.Sleep(budget - elapsed)
	}
	s.lastTick = time.Now()
}
