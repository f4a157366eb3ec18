package world

import (
	"image/color"

	"github.com/jakecoffman/cp"
)

// Friction here is emulated, not solved: each dynamic body is tied to a
// control body by a force-capped pivot (position) and gear (rotation)
// joint. The body converges on the control body's velocity at a rate
// bounded by max-force over mass, which reads as friction. The agent's
// control body is kinematic and externally commanded; obstacles anchor
// to the space's static body and merely settle in place.
const (
	agentMass      = 10.0
	obstacleMass   = 1.0
	circleFriction = 0.7
	agentPivotMax  = 10000.0
	agentGearMax   = 50000.0
	// The agent's gear keeps a small correction bias so spin from
	// glancing collisions bleeds off instead of running away.
	agentGearBias    = 1.2
	obstaclePivotMax = 1000.0
	obstacleGearMax  = 5000.0
)

// CircleSpec is a resolved circle parameter set: explicit position,
// parsed color. Random placement is decided by the caller before a spec
// reaches the world.
type CircleSpec struct {
	Radius    float64
	Pos       cp.Vector
	Color     color.RGBA
	ColorName string
	Speed     float64
}

// Actuator is the commandable agent: a dynamic body chasing a kinematic
// control body through force-capped joints. SetVelocity on the control
// body is the only external input; the dynamic body's velocity is
// solver-derived.
type Actuator struct {
	Body    *cp.Body
	Control *cp.Body
	Shape   *cp.Shape
	pivot   *cp.Constraint
	gear    *cp.Constraint

	Radius    float64
	Speed     float64
	Color     color.RGBA
	ColorName string
}

func NewAgent(spec CircleSpec) *Actuator {
	body := cp.NewBody(agentMass, cp.MomentForCircle(agentMass, 0, spec.Radius, cp.Vector{}))
	body.SetPosition(spec.Pos)

	shape := cp.NewCircle(body, spec.Radius, cp.Vector{})
	shape.SetFriction(circleFriction)
	shape.SetElasticity(0)

	control := cp.NewKinematicBody()
	control.SetPosition(spec.Pos)

	pivot := cp.NewPivotJoint2(control, body, cp.Vector{}, cp.Vector{})
	pivot.SetMaxBias(0) // no positional snap, corrective force only
	pivot.SetMaxForce(agentPivotMax)

	gear := cp.NewGearJoint(control, body, 0.0, 1.0)
	gear.SetErrorBias(0)
	gear.SetMaxBias(agentGearBias)
	gear.SetMaxForce(agentGearMax)

	return &Actuator{
		Body:      body,
		Control:   control,
		Shape:     shape,
		pivot:     pivot,
		gear:      gear,
		Radius:    spec.Radius,
		Speed:     spec.Speed,
		Color:     spec.Color,
		ColorName: spec.ColorName,
	}
}

func (a *Actuator) Install(reg *Registry) {
	reg.AddBody(a.Control)
	reg.AddBody(a.Body)
	reg.AddShape(a.Shape)
	reg.AddConstraint(a.pivot)
	reg.AddConstraint(a.gear)
}

// SetVelocity commands the control body. The dynamic body follows at
// whatever rate the joint force caps allow.
func (a *Actuator) SetVelocity(v cp.Vector) {
	a.Control.SetVelocityVector(v)
}

func (a *Actuator) Position() cp.Vector { return a.Body.Position() }
func (a *Actuator) Velocity() cp.Vector { return a.Body.Velocity() }

// Obstacle is a pushable circle damped in place by the same joint trick
// against a zero-velocity static anchor.
type Obstacle struct {
	Body  *cp.Body
	Shape *cp.Shape
	pivot *cp.Constraint
	gear  *cp.Constraint

	Radius    float64
	Color     color.RGBA
	ColorName string
}

// NewObstacle builds an obstacle anchored to anchor, normally the
// space's static body.
func NewObstacle(spec CircleSpec, anchor *cp.Body) *Obstacle {
	body := cp.NewBody(obstacleMass, cp.MomentForCircle(obstacleMass, 0, spec.Radius, cp.Vector{}))
	body.SetPosition(spec.Pos)

	shape := cp.NewCircle(body, spec.Radius, cp.Vector{})
	shape.SetFriction(circleFriction)
	shape.SetElasticity(0)

	pivot := cp.NewPivotJoint2(anchor, body, cp.Vector{}, cp.Vector{})
	pivot.SetMaxBias(0)
	pivot.SetMaxForce(obstaclePivotMax)

	gear := cp.NewGearJoint(anchor, body, 0.0, 1.0)
	gear.SetMaxBias(0)
	gear.SetMaxForce(obstacleGearMax)

	return &Obstacle{
		Body:      body,
		Shape:     shape,
		pivot:     pivot,
		gear:      gear,
		Radius:    spec.Radius,
		Color:     spec.Color,
		ColorName: spec.ColorName,
	}
}

func (o *Obstacle) Install(reg *Registry) {
	reg.AddBody(o.Body)
	reg.AddShape(o.Shape)
	reg.AddConstraint(o.pivot)
	reg.AddConstraint(o.gear)
}

func (o *Obstacle) Position() cp.Vector { return o.Body.Position() }
func (o *Obstacle) Velocity() cp.Vector { return o.Body.Velocity() }
