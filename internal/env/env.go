// Package env implements the episode controller: the step/reset
// contract over the simulation space, action decoding, and pluggable
// reward evaluation.
package env

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/nomutin/Push2D/internal/config"
	"github.com/nomutin/Push2D/internal/render"
	"github.com/nomutin/Push2D/internal/reward"
	"github.com/nomutin/Push2D/internal/world"
)

const defaultSeed = 42

// directions maps the one-hot action lanes [up, down, left, right] to
// unit cardinal vectors. Multiple set lanes sum, so up+left moves
// diagonally.
var directions = [4]cp.Vector{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

// ResetOptions override parts of the scenario for one reset onward.
type ResetOptions struct {
	Agent     *config.CircleParams
	Obstacles []config.CircleParams
}

// Env drives one arena. Episodes are endless: Step always reports
// terminated=false, truncated=false and termination is a caller
// concern.
type Env struct {
	scenario    config.Scenario
	space       *world.Space
	agent       *world.Actuator
	obstacles   []*world.Obstacle
	policy      reward.Policy
	rng         *rand.Rand
	log         *zap.Logger
	accelerated bool
	steps       int
	ready       bool
}

type Option func(*Env)

// WithLogger attaches a structured logger; the default is a nop.
func WithLogger(l *zap.Logger) Option { return func(e *Env) { e.log = l } }

// Accelerated makes every tick skip presentation and frame pacing.
// Replay and tests run this way.
func Accelerated() Option { return func(e *Env) { e.accelerated = true } }

// New validates the scenario and builds an empty space. Call Reset to
// populate it.
func New(sc *config.Scenario, opts ...Option) (*Env, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	background, err := render.ParseColor(sc.Space.Color)
	if err != nil {
		return nil, err
	}
	policy, err := reward.New(sc.Reward.Policy, sc.Reward.Margin)
	if err != nil {
		return nil, err
	}

	e := &Env{
		scenario: *sc,
		policy:   policy,
		rng:      rand.New(rand.NewSource(defaultSeed)),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.space = world.NewSpace(world.Params{
		Width:         sc.Space.Width,
		Height:        sc.Space.Height,
		FPS:           sc.Space.FPS,
		Background:    background,
		WallThickness: sc.Space.WallThickness,
	})
	return e, nil
}

func (e *Env) Space() *world.Space       { return e.space }
func (e *Env) Scenario() config.Scenario { return e.scenario }
func (e *Env) Policy() reward.Policy     { return e.policy }

// Reset seeds the RNG (seed < 0 keeps the current one), clears the
// space, rebuilds agent, obstacles and walls from the scenario
// (optionally overridden), performs one tick and returns the first
// observation. No physics state survives a reset.
func (e *Env) Reset(seed int64, opts *ResetOptions) (render.Frame, Info, error) {
	if seed >= 0 {
		e.rng = rand.New(rand.NewSource(seed))
	}
	if opts != nil {
		// Validate on a copy so a bad override leaves the scenario
		// untouched for later resets.
		sc := e.scenario
		if opts.Agent != nil {
			sc.Agent = *opts.Agent
		}
		if opts.Obstacles != nil {
			sc.Obstacles = opts.Obstacles
		}
		if err := sc.Validate(); err != nil {
			return render.Frame{}, Info{}, err
		}
		e.scenario = sc
	}

	e.space.Clear()

	agentSpec, err := e.resolve(e.scenario.Agent)
	if err != nil {
		return render.Frame{}, Info{}, err
	}
	agent := world.NewAgent(agentSpec)

	obstacles := make([]*world.Obstacle, 0, len(e.scenario.Obstacles))
	for _, params := range e.scenario.Obstacles {
		spec, err := e.resolve(params)
		if err != nil {
			return render.Frame{}, Info{}, err
		}
		obstacles = append(obstacles, world.NewObstacle(spec, e.space.StaticBody()))
	}

	if err := e.space.Populate(agent, obstacles); err != nil {
		return render.Frame{}, Info{}, err
	}
	e.agent = agent
	e.obstacles = obstacles
	e.steps = 0
	e.ready = true

	frame := e.tick()
	info := e.info()
	e.log.Debug("reset", zap.Int64("seed", seed), zap.Int("obstacles", len(obstacles)))
	return frame, info, nil
}

// Step decodes the action, commands the actuator, ticks the space once
// and scores the post-tick state. The returned observation reflects the
// state rasterized before the solver advanced.
func (e *Env) Step(action []float64) (render.Frame, float64, bool, bool, Info, error) {
	if !e.ready {
		return render.Frame{}, 0, false, false, Info{}, ErrNotReset
	}
	velocity, err := e.decode(action)
	if err != nil {
		return render.Frame{}, 0, false, false, Info{}, err
	}
	e.agent.SetVelocity(velocity)

	frame := e.tick()
	e.steps++
	info := e.info()
	score := e.policy.Evaluate(info.snapshot())
	return frame, score, false, false, info, nil
}

// decode turns an action into a commanded velocity. One-hot mode takes
// a binary 4-vector over [up, down, left, right]; tracking mode takes a
// raw target position and heads toward it at full speed, rounded to the
// nearest cardinal/diagonal like the mouse tracker.
func (e *Env) decode(action []float64) (cp.Vector, error) {
	for _, v := range action {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return cp.Vector{}, fmt.Errorf("%w: non-finite value", ErrBadAction)
		}
	}
	if e.scenario.Tracking {
		if len(action) != 2 {
			return cp.Vector{}, fmt.Errorf("%w: tracking mode wants 2 values, got %d", ErrBadAction, len(action))
		}
		target := cp.Vector{X: action[0], Y: action[1]}
		dir := target.Sub(e.agent.Position())
		if dir.Length() > 0 {
			dir = dir.Normalize()
		}
		dir = cp.Vector{X: math.Round(dir.X), Y: math.Round(dir.Y)}
		return dir.Mult(e.agent.Speed), nil
	}

	if len(action) != 4 {
		return cp.Vector{}, fmt.Errorf("%w: one-hot mode wants 4 values, got %d", ErrBadAction, len(action))
	}
	var v cp.Vector
	for i, lane := range action {
		switch lane {
		case 0:
		case 1:
			v = v.Add(directions[i])
		default:
			return cp.Vector{}, fmt.Errorf("%w: lane %d is %g, want 0 or 1", ErrBadAction, i, lane)
		}
	}
	return v.Mult(e.agent.Speed), nil
}

func (e *Env) tick() render.Frame {
	if e.accelerated {
		return e.space.AcceleratedTick()
	}
	return e.space.Tick()
}

func (e *Env) info() Info {
	info := Info{
		Arena: ArenaInfo{
			Width:  float64(e.scenario.Space.Width),
			Height: float64(e.scenario.Space.Height),
			FPS:    e.scenario.Space.FPS,
			Margin: e.scenario.Reward.Margin,
		},
		Agent: BodyInfo{
			Position:  e.agent.Position(),
			Velocity:  e.agent.Velocity(),
			Radius:    e.agent.Radius,
			Color:     e.agent.Color,
			ColorName: e.agent.ColorName,
		},
		Steps: e.steps,
	}
	for _, o := range e.obstacles {
		info.Obstacles = append(info.Obstacles, BodyInfo{
			Position:  o.Position(),
			Velocity:  o.Velocity(),
			Radius:    o.Radius,
			Color:     o.Color,
			ColorName: o.ColorName,
		})
	}
	return info
}

// resolve turns circle parameters into a concrete spec, drawing a
// random position within [radius, dimension-radius] when none is given.
func (e *Env) resolve(params config.CircleParams) (world.CircleSpec, error) {
	c, err := render.ParseColor(params.Color)
	if err != nil {
		return world.CircleSpec{}, err
	}
	spec := world.CircleSpec{
		Radius:    params.Radius,
		Color:     c,
		ColorName: params.Color,
		Speed:     params.Speed,
	}
	if params.Position != nil {
		spec.Pos = cp.Vector{X: params.Position.X, Y: params.Position.Y}
		return spec, nil
	}
	w := float64(e.scenario.Space.Width)
	h := float64(e.scenario.Space.Height)
	r := params.Radius
	spec.Pos = cp.Vector{
		X: r + e.rng.Float64()*(w-2*r),
		Y: r + e.rng.Float64()*(h-2*r),
	}
	return spec, nil
}
