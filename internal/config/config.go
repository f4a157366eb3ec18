package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth         = 300
	DefaultHeight        = 225
	DefaultFPS           = 60
	DefaultWallThickness = 1.0
	DefaultAgentRadius   = 20
	DefaultAgentSpeed    = 100
	DefaultCaptureLength = 200
	DefaultCaptureFPS    = 10
	DefaultRewardMargin  = 30
)

// ErrMissingPosition is returned when a circle has neither an explicit
// position nor arena bounds to draw a random one from.
var ErrMissingPosition = errors.New("config: no position and no arena bounds for random placement")

// Point is an explicit 2-D placement.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// SpaceParams describe the arena and its render surface.
type SpaceParams struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	FPS           int     `yaml:"fps"`
	Color         string  `yaml:"color"`
	WallThickness float64 `yaml:"wall_thickness"`
}

// CircleParams describe the agent or one obstacle. A nil Position means
// "place randomly within [radius, dimension-radius] at reset". Speed is
// only meaningful for the agent.
type CircleParams struct {
	Radius   float64 `yaml:"radius"`
	Position *Point  `yaml:"position,omitempty"`
	Color    string  `yaml:"color"`
	Speed    float64 `yaml:"speed,omitempty"`
}

// CaptureParams configure the recorder. FPS is the action sampling rate,
// distinct from the physics rate in SpaceParams.
type CaptureParams struct {
	Length int    `yaml:"length"`
	FPS    int    `yaml:"fps"`
	Dir    string `yaml:"dir"`
}

// RewardParams select the scoring policy.
type RewardParams struct {
	Policy string  `yaml:"policy"`
	Margin float64 `yaml:"margin"`
}

// Scenario is the full environment configuration.
type Scenario struct {
	Space     SpaceParams    `yaml:"space"`
	Agent     CircleParams   `yaml:"agent"`
	Obstacles []CircleParams `yaml:"obstacles"`
	Capture   CaptureParams  `yaml:"capture"`
	Reward    RewardParams   `yaml:"reward"`
	Tracking  bool           `yaml:"tracking"`
}

func Default() *Scenario {
	return &Scenario{
		Space: SpaceParams{
			Width:         DefaultWidth,
			Height:        DefaultHeight,
			FPS:           DefaultFPS,
			Color:         "black",
			WallThickness: DefaultWallThickness,
		},
		Agent: CircleParams{
			Radius: DefaultAgentRadius,
			Color:  "blue",
			Speed:  DefaultAgentSpeed,
		},
		Capture: CaptureParams{
			Length: DefaultCaptureLength,
			FPS:    DefaultCaptureFPS,
			Dir:    "data",
		},
		Reward: RewardParams{
			Policy: "always",
			Margin: DefaultRewardMargin,
		},
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := Default()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks that every circle is placeable and the rates are sane.
// An invalid scenario never reaches the simulation.
func (s *Scenario) Validate() error {
	if s.Space.FPS <= 0 {
		return fmt.Errorf("config: space fps must be positive, got %d", s.Space.FPS)
	}
	if s.Capture.FPS <= 0 || s.Capture.FPS > s.Space.FPS {
		return fmt.Errorf("config: capture fps must be in (0, %d], got %d", s.Space.FPS, s.Capture.FPS)
	}
	if s.Capture.Length <= 0 {
		return fmt.Errorf("config: capture length must be positive, got %d", s.Capture.Length)
	}
	if err := s.checkPlaceable(&s.Agent, "agent"); err != nil {
		return err
	}
	for i := range s.Obstacles {
		if err := s.checkPlaceable(&s.Obstacles[i], fmt.Sprintf("obstacle %d", i)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scenario) checkPlaceable(c *CircleParams, name string) error {
	if c.Radius <= 0 {
		return fmt.Errorf("config: %s radius must be positive, got %g", name, c.Radius)
	}
	if c.Position != nil {
		return nil
	}
	if s.Space.Width <= 0 || s.Space.Height <= 0 {
		return fmt.Errorf("%w (%s)", ErrMissingPosition, name)
	}
	if float64(s.Space.Width) < 2*c.Radius || float64(s.Space.Height) < 2*c.Radius {
		return fmt.Errorf("%w (%s: radius %g does not fit %dx%d)",
			ErrMissingPosition, name, c.Radius, s.Space.Width, s.Space.Height)
	}
	return nil
}
