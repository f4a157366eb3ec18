package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/nomutin/Push2D/internal/capture"
	"github.com/nomutin/Push2D/internal/config"
	"github.com/nomutin/Push2D/internal/env"
	"github.com/nomutin/Push2D/internal/reward"
	"github.com/nomutin/Push2D/internal/teleop"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	verbose    bool
	// replay
	distribute bool
	replayOut  string
	// rollout
	steps int
	fast  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "push2d",
		Short: "pushing-task arena for play data collection",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "capture directory (overrides scenario)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "red-and-green", "scenario preset")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "reset seed")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log to stderr")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "teleoperate the agent and record captures",
		RunE:  runRecord,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [capture-index]",
		Short: "replay a capture at full physics rate",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}
	replayCmd.Flags().BoolVar(&distribute, "distribute", false, "spread remainder ticks instead of dropping them")
	replayCmd.Flags().StringVar(&replayOut, "out", "replay.npy", "derived observation file")

	rolloutCmd := &cobra.Command{
		Use:   "rollout",
		Short: "run a random-action episode",
		RunE:  runRollout,
	}
	rolloutCmd.Flags().IntVar(&steps, "steps", 100, "number of steps")
	rolloutCmd.Flags().BoolVar(&fast, "fast", false, "skip frame pacing")

	plotCmd := &cobra.Command{
		Use:   "plot [capture-index]",
		Short: "plot the reward curve of a capture",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded captures",
		RunE:  runList,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets and reward policies",
		Run: func(cmd *cobra.Command, args []string) {
			names := config.ListPresets()
			sort.Strings(names)
			fmt.Println("presets:")
			for _, n := range names {
				fmt.Printf("  %s\n", n)
			}
			fmt.Println("reward policies:")
			for _, n := range reward.Names() {
				fmt.Printf("  %s\n", n)
			}
		},
	}

	rootCmd.AddCommand(recordCmd, replayCmd, rolloutCmd, listCmd, plotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadScenario() (*config.Scenario, error) {
	var sc *config.Scenario
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		sc = loaded
	} else {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		clone := *p
		sc = &clone
	}
	if dataDir != "" {
		sc.Capture.Dir = dataDir
	}
	return sc, nil
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func runRecord(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario()
	if err != nil {
		return err
	}
	log := newLogger()
	defer log.Sync()

	// The TUI timer paces capture ticks, so physics runs accelerated.
	e, err := env.New(sc, env.Accelerated(), env.WithLogger(log))
	if err != nil {
		return err
	}
	store := capture.NewStore(sc.Capture.Dir, log)
	recorder := capture.NewRecorder(store, sc.Capture.Length, capture.Metadata{
		Height:     sc.Space.Height,
		Width:      sc.Space.Width,
		Channels:   3,
		PhysicsFPS: sc.Space.FPS,
		CaptureFPS: sc.Capture.FPS,
	}, log)

	app := teleop.NewApp(sc.Capture.FPS)
	session := teleop.NewSession(e, recorder, app, capture.Span(sc.Space.FPS, sc.Capture.FPS), log)
	app.Bind(session)
	if err := session.Start(seed); err != nil {
		return err
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if sc.Tracking {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	if _, err := tea.NewProgram(app, opts...).Run(); err != nil {
		return err
	}
	return app.Err()
}

func runReplay(cmd *cobra.Command, args []string) error {
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("capture index must be an integer: %w", err)
	}
	sc, err := loadScenario()
	if err != nil {
		return err
	}
	log := newLogger()
	defer log.Sync()

	e, err := env.New(sc, env.Accelerated(), env.WithLogger(log))
	if err != nil {
		return err
	}
	store := capture.NewStore(sc.Capture.Dir, log)
	actions, err := store.LoadActions(idx)
	if err != nil {
		return err
	}
	frames, err := capture.Replay(e, actions, capture.ReplayOptions{
		SaveFPS:    sc.Capture.FPS,
		PhysicsFPS: sc.Space.FPS,
		Distribute: distribute,
		Seed:       seed,
	})
	if err != nil {
		return err
	}
	if err := store.SaveReplay(replayOut, frames); err != nil {
		return err
	}
	fmt.Printf("replayed capture %d: %d frames -> %s\n", idx, len(frames), replayOut)
	return nil
}

func runRollout(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario()
	if err != nil {
		return err
	}
	log := newLogger()
	defer log.Sync()

	opts := []env.Option{env.WithLogger(log)}
	if fast {
		opts = append(opts, env.Accelerated())
	}
	e, err := env.New(sc, opts...)
	if err != nil {
		return err
	}
	if _, _, err := e.Reset(seed, nil); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	total := 0.0
	for i := 0; i < steps; i++ {
		action := []float64{0, 0, 0, 0}
		action[rng.Intn(4)] = 1
		if sc.Tracking {
			action = []float64{
				rng.Float64() * float64(sc.Space.Width),
				rng.Float64() * float64(sc.Space.Height),
			}
		}
		_, score, _, _, _, err := e.Step(action)
		if err != nil {
			return err
		}
		total += score
	}
	fmt.Printf("rollout: %d steps, mean reward %.3f\n", steps, total/float64(steps))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario()
	if err != nil {
		return err
	}
	store := capture.NewStore(sc.Capture.Dir, zap.NewNop())
	indices, err := store.ListCaptures()
	if err != nil {
		return err
	}
	if len(indices) == 0 {
		fmt.Printf("no captures in %s\n", sc.Capture.Dir)
		return nil
	}
	meta, err := store.LoadMetadata()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %dx%d obs, action dim %d, physics %d fps, capture %d fps\n",
		sc.Capture.Dir, meta.Height, meta.Width, meta.ActionDim, meta.PhysicsFPS, meta.CaptureFPS)
	for _, idx := range indices {
		fmt.Printf("  capture %d\n", idx)
	}
	return nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("capture index must be an integer: %w", err)
	}
	sc, err := loadScenario()
	if err != nil {
		return err
	}
	e, err := env.New(sc, env.Accelerated())
	if err != nil {
		return err
	}
	store := capture.NewStore(sc.Capture.Dir, zap.NewNop())
	actions, err := store.LoadActions(idx)
	if err != nil {
		return err
	}
	if _, _, err := e.Reset(seed, nil); err != nil {
		return err
	}

	span := capture.Span(sc.Space.FPS, sc.Capture.FPS)
	rows, cols := actions.Dims()
	action := make([]float64, cols)
	rewards := make([]float64, 0, rows)
	for i := 0; i < rows; i++ {
		mat.Row(action, i, actions)
		score := 0.0
		for j := 0; j < span; j++ {
			_, s, _, _, _, stepErr := e.Step(action)
			if stepErr != nil {
				return stepErr
			}
			score = s
		}
		rewards = append(rewards, score)
	}

	fmt.Printf("capture %d reward per sampled action\n", idx)
	fmt.Println(asciigraph.Plot(rewards, asciigraph.Height(10), asciigraph.Width(72)))
	return nil
}
