// Package world wraps the rigid-body solver: entity registry, the
// velocity-constrained actuators, and the ticking simulation space.
package world

import "github.com/jakecoffman/cp"

// Entity is anything that installs a set of bodies, shapes and
// constraints into a registry.
type Entity interface {
	Install(reg *Registry)
}

// Registry owns every body, shape and constraint currently in the
// solver space. Entities enter through Add and only leave all at once
// through RemoveAll; removed entities are inert and callers must drop
// their references.
type Registry struct {
	space       *cp.Space
	bodies      []*cp.Body
	shapes      []*cp.Shape
	constraints []*cp.Constraint
}

func NewRegistry(space *cp.Space) *Registry {
	return &Registry{space: space}
}

func (r *Registry) Add(e Entity) { e.Install(r) }

func (r *Registry) AddBody(b *cp.Body) *cp.Body {
	r.bodies = append(r.bodies, b)
	return r.space.AddBody(b)
}

func (r *Registry) AddShape(s *cp.Shape) *cp.Shape {
	r.shapes = append(r.shapes, s)
	return r.space.AddShape(s)
}

func (r *Registry) AddConstraint(c *cp.Constraint) *cp.Constraint {
	r.constraints = append(r.constraints, c)
	return r.space.AddConstraint(c)
}

// RemoveAll empties the space. Constraints go first so no constraint is
// ever left referencing a removed body, then shapes, then bodies. The
// space's built-in static body is never tracked and survives.
func (r *Registry) RemoveAll() {
	for _, c := range r.constraints {
		r.space.RemoveConstraint(c)
	}
	for _, s := range r.shapes {
		r.space.RemoveShape(s)
	}
	for _, b := range r.bodies {
		r.space.RemoveBody(b)
	}
	r.constraints = r.constraints[:0]
	r.shapes = r.shapes[:0]
	r.bodies = r.bodies[:0]
}

// Counts reports tracked entities, in body/shape/constraint order.
func (r *Registry) Counts() (int, int, int) {
	return len(r.bodies), len(r.shapes), len(r.constraints)
}
