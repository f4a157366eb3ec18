// Package reward scores arena snapshots. Policies are stateless values
// picked by name at construction; each awards 0.5 per positional
// condition met, so every policy returns 0.0, 0.5 or 1.0.
package reward

import (
	"fmt"
	"image/color"
	"strings"
)

// Circle is the position/color slice of a snapshot the policies see.
type Circle struct {
	X, Y   float64
	Radius float64
	Color  color.RGBA
}

// Snapshot is a pure position/color view of the arena at one instant.
type Snapshot struct {
	Width, Height float64
	Obstacles     []Circle
}

// Policy evaluates one snapshot. Implementations hold no state beyond
// their margin.
type Policy interface {
	Name() string
	Evaluate(s Snapshot) float64
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
)

// zones answers the quadrant predicates for one circle. A circle is
// "top" when it sits within radius+margin of the top edge; the other
// sides are symmetric. Corner predicates are conjunctions.
type zones struct {
	margin float64
}

func (z zones) top(c Circle, s Snapshot) bool    { return c.Y < c.Radius+z.margin }
func (z zones) bottom(c Circle, s Snapshot) bool { return c.Y > s.Height-c.Radius-z.margin }
func (z zones) left(c Circle, s Snapshot) bool   { return c.X < c.Radius+z.margin }
func (z zones) right(c Circle, s Snapshot) bool  { return c.X > s.Width-c.Radius-z.margin }

func (z zones) topLeft(c Circle, s Snapshot) bool     { return z.top(c, s) && z.left(c, s) }
func (z zones) topRight(c Circle, s Snapshot) bool    { return z.top(c, s) && z.right(c, s) }
func (z zones) bottomLeft(c Circle, s Snapshot) bool  { return z.bottom(c, s) && z.left(c, s) }
func (z zones) bottomRight(c Circle, s Snapshot) bool { return z.bottom(c, s) && z.right(c, s) }

// byColor finds the first obstacle of the wanted color, falling back to
// the first obstacle when none matches.
func byColor(s Snapshot, want color.RGBA) (Circle, bool) {
	for _, c := range s.Obstacles {
		if c.Color == want {
			return c, true
		}
	}
	if len(s.Obstacles) > 0 {
		return s.Obstacles[0], true
	}
	return Circle{}, false
}

type predicate func(zones, Circle, Snapshot) bool

// pairPolicy scores the red circle against one zone and the green
// circle against another, 0.5 each. Names read zone-then-color: in
// "top-left-red-bottom-left-green" red belongs top-left and green
// bottom-left.
type pairPolicy struct {
	name      string
	z         zones
	redZone   predicate
	greenZone predicate
}

func (p pairPolicy) Name() string { return p.name }

func (p pairPolicy) Evaluate(s Snapshot) float64 {
	score := 0.0
	if c, ok := byColor(s, red); ok && p.redZone(p.z, c, s) {
		score += 0.5
	}
	if c, ok := byColor(s, green); ok && p.greenZone(p.z, c, s) {
		score += 0.5
	}
	return score
}

// always is the trivial policy: constant full reward.
type always struct{}

func (always) Name() string              { return "always" }
func (always) Evaluate(Snapshot) float64 { return 1.0 }

func all(margin float64) []Policy {
	z := zones{margin: margin}
	return []Policy{
		always{},
		pairPolicy{name: "top-left-red-top-right-green", z: z, redZone: zones.topLeft, greenZone: zones.topRight},
		pairPolicy{name: "top-right-red-top-left-green", z: z, redZone: zones.topRight, greenZone: zones.topLeft},
		pairPolicy{name: "top-left-red-bottom-left-green", z: z, redZone: zones.topLeft, greenZone: zones.bottomLeft},
		pairPolicy{name: "bottom-left-red-top-left-green", z: z, redZone: zones.bottomLeft, greenZone: zones.topLeft},
		pairPolicy{name: "bottom-left-red-bottom-right-green", z: z, redZone: zones.bottomLeft, greenZone: zones.bottomRight},
		pairPolicy{name: "bottom-right-red-bottom-left-green", z: z, redZone: zones.bottomRight, greenZone: zones.bottomLeft},
		pairPolicy{name: "top-left-red-bottom-right-green", z: z, redZone: zones.topLeft, greenZone: zones.bottomRight},
		pairPolicy{name: "bottom-right-red-top-left-green", z: z, redZone: zones.bottomRight, greenZone: zones.topLeft},
		pairPolicy{name: "top-right-red-bottom-left-green", z: z, redZone: zones.topRight, greenZone: zones.bottomLeft},
		pairPolicy{name: "bottom-left-red-top-right-green", z: z, redZone: zones.bottomLeft, greenZone: zones.topRight},
		pairPolicy{name: "top-right-red-bottom-right-green", z: z, redZone: zones.topRight, greenZone: zones.bottomRight},
		pairPolicy{name: "bottom-right-red-top-right-green", z: z, redZone: zones.bottomRight, greenZone: zones.topRight},
	}
}

// aliases map green-first and side-first spellings onto the canonical
// red-first names.
var aliases = map[string]string{
	"toprightgreentopleftred":       "topleftredtoprightgreen",
	"topleftgreentoprightred":       "toprightredtopleftgreen",
	"bottomleftgreentopleftred":     "topleftredbottomleftgreen",
	"topleftgreenbottomleftred":     "bottomleftredtopleftgreen",
	"bottomrightgreenbottomleftred": "bottomleftredbottomrightgreen",
	"bottomleftgreenbottomrightred": "bottomrightredbottomleftgreen",
	"bottomrightgreentopleftred":    "topleftredbottomrightgreen",
	"topleftgreenbottomrightred":    "bottomrightredtopleftgreen",
	"bottomleftgreentoprightred":    "toprightredbottomleftgreen",
	"toprightgreenbottomleftred":    "bottomleftredtoprightgreen",
	"bottomrightgreentoprightred":   "toprightredbottomrightgreen",
	"toprightgreenbottomrightred":   "bottomrightredtoprightgreen",
	"righttopredrightbottomgreen":   "toprightredbottomrightgreen",
	"righttopgreenrightbottomred":   "bottomrightredtoprightgreen",
}

// New resolves a policy by name. Matching ignores case and separators,
// so "TopLeftRedBottomLeftGreen" resolves the same policy as
// "top-left-red-bottom-left-green"; green-first spellings resolve to
// the equivalent red-first policy.
func New(name string, margin float64) (Policy, error) {
	want := normalize(name)
	if canonical, ok := aliases[want]; ok {
		want = canonical
	}
	for _, p := range all(margin) {
		if normalize(p.Name()) == want {
			return p, nil
		}
	}
	return nil, fmt.Errorf("reward: unknown policy %q", name)
}

// Names lists every selectable policy.
func Names() []string {
	policies := all(0)
	names := make([]string, 0, len(policies))
	for _, p := range policies {
		names = append(names, p.Name())
	}
	return names
}

func normalize(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}
