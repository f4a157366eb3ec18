package env

import (
	"image/color"

	"github.com/jakecoffman/cp"

	"github.com/nomutin/Push2D/internal/reward"
)

// ArenaInfo echoes the arena parameters with every observation.
type ArenaInfo struct {
	Width, Height float64
	FPS           int
	Margin        float64
}

// BodyInfo is one circle's state in an info snapshot.
type BodyInfo struct {
	Position  cp.Vector
	Velocity  cp.Vector
	Radius    float64
	Color     color.RGBA
	ColorName string
}

// Info is the auxiliary state returned with every observation. Steps is
// the episode progress counter; displaying it is the caller's concern.
type Info struct {
	Arena     ArenaInfo
	Agent     BodyInfo
	Obstacles []BodyInfo
	Steps     int
}

// snapshot projects the info down to what reward policies consume.
func (i Info) snapshot() reward.Snapshot {
	s := reward.Snapshot{Width: i.Arena.Width, Height: i.Arena.Height}
	for _, o := range i.Obstacles {
		s.Obstacles = append(s.Obstacles, reward.Circle{
			X: o.Position.X, Y: o.Position.Y,
			Radius: o.Radius, Color: o.Color,
		})
	}
	return s
}
