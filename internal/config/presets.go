package config

func point(x, y float64) *Point { return &Point{X: x, Y: y} }

var Presets = map[string]*Scenario{
	// Red circle top-left, green circle bottom-right, blue agent between
	// them. The canonical pushing scenario.
	"red-and-green": {
		Space: SpaceParams{Width: 300, Height: 225, FPS: 60, Color: "black", WallThickness: 10},
		Agent: CircleParams{Radius: 20, Position: point(150, 110), Color: "blue", Speed: 110},
		Obstacles: []CircleParams{
			{Radius: 30, Position: point(50, 50), Color: "red"},
			{Radius: 30, Position: point(250, 175), Color: "green"},
		},
		Capture: CaptureParams{Length: 200, FPS: 10, Dir: "data"},
		Reward:  RewardParams{Policy: "top-right-red-top-left-green", Margin: DefaultRewardMargin},
	},
	// Same arrangement at a human-friendly physics rate on a white
	// background, for teleoperated data collection.
	"red-and-green-slow": {
		Space: SpaceParams{Width: 300, Height: 225, FPS: 15, Color: "white", WallThickness: 1},
		Agent: CircleParams{Radius: 20, Position: point(150, 110), Color: "blue", Speed: 100},
		Obstacles: []CircleParams{
			{Radius: 30, Position: point(50, 50), Color: "red"},
			{Radius: 30, Position: point(250, 175), Color: "green"},
		},
		Capture: CaptureParams{Length: 200, FPS: 10, Dir: "data"},
		Reward:  RewardParams{Policy: "top-right-red-top-left-green", Margin: DefaultRewardMargin},
	},
	// Randomly scattered obstacles, mouse-tracked agent.
	"scatter-track": {
		Space: SpaceParams{Width: 300, Height: 225, FPS: 30, Color: "black", WallThickness: 1},
		Agent: CircleParams{Radius: 10, Position: point(1, 1), Color: "blue", Speed: 120},
		Obstacles: []CircleParams{
			{Radius: 25, Color: "red"},
			{Radius: 25, Color: "green"},
			{Radius: 25, Color: "yellow"},
		},
		Capture:  CaptureParams{Length: 200, FPS: 10, Dir: "data"},
		Reward:   RewardParams{Policy: "always", Margin: DefaultRewardMargin},
		Tracking: true,
	},
}

func GetPreset(name string) *Scenario {
	sc, ok := Presets[name]
	if !ok {
		return nil
	}
	return sc
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
