// Package capture records teleoperated episodes as parallel
// action/observation arrays and replays them at full physics rate.
package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sbinet/npyio"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/nomutin/Push2D/internal/render"
)

// Metadata is the per-directory sidecar describing the stacked array
// layout. Observations are stored flat (length·height·width·3 bytes,
// height-major) and reshaped from here on load.
type Metadata struct {
	Height     int `json:"height"`
	Width      int `json:"width"`
	Channels   int `json:"channels"`
	ActionDim  int `json:"action_dim"`
	PhysicsFPS int `json:"physics_fps"`
	CaptureFPS int `json:"capture_fps"`
}

// Store persists captures under a base directory as action_<n>.npy /
// observation_<n>.npy pairs plus one metadata.json.
type Store struct {
	baseDir string
	log     *zap.Logger
}

func NewStore(baseDir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{baseDir: baseDir, log: log}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// NextIndex derives the next capture index from the files already
// present: floor(pair-file-count / 2). Counting files rather than
// remembering state keeps indices correct across process restarts.
func (s *Store) NextIndex() (int, error) {
	actions, err := filepath.Glob(filepath.Join(s.baseDir, "action_*.npy"))
	if err != nil {
		return 0, err
	}
	observations, err := filepath.Glob(filepath.Join(s.baseDir, "observation_*.npy"))
	if err != nil {
		return 0, err
	}
	return (len(actions) + len(observations)) / 2, nil
}

// ListCaptures returns the indices that have both halves of the pair on
// disk, ascending.
func (s *Store) ListCaptures() ([]int, error) {
	actions, err := filepath.Glob(filepath.Join(s.baseDir, "action_*.npy"))
	if err != nil {
		return nil, err
	}
	var indices []int
	for _, path := range actions {
		var idx int
		if _, err := fmt.Sscanf(filepath.Base(path), "action_%d.npy", &idx); err != nil {
			continue
		}
		obs := filepath.Join(s.baseDir, fmt.Sprintf("observation_%d.npy", idx))
		if _, err := os.Stat(obs); err != nil {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

// SaveCapture writes one action/observation pair under the next free
// index and returns that index.
func (s *Store) SaveCapture(actions *mat.Dense, frames []render.Frame, meta Metadata) (int, error) {
	if err := s.Init(); err != nil {
		return 0, err
	}
	idx, err := s.NextIndex()
	if err != nil {
		return 0, err
	}

	actionPath := filepath.Join(s.baseDir, fmt.Sprintf("action_%d.npy", idx))
	if err := writeNpy(actionPath, actions); err != nil {
		return 0, fmt.Errorf("capture: save actions: %w", err)
	}

	obsPath := filepath.Join(s.baseDir, fmt.Sprintf("observation_%d.npy", idx))
	if err := writeNpy(obsPath, flatten(frames)); err != nil {
		return 0, fmt.Errorf("capture: save observations: %w", err)
	}

	if err := s.writeMetadata(meta); err != nil {
		return 0, err
	}
	s.log.Info("capture saved",
		zap.Int("index", idx),
		zap.Int("length", len(frames)),
		zap.String("dir", s.baseDir),
	)
	return idx, nil
}

// SaveReplay writes a derived full-rate observation sequence to path.
func (s *Store) SaveReplay(path string, frames []render.Frame) error {
	if len(frames) == 0 {
		return nil
	}
	if err := writeNpy(path, flatten(frames)); err != nil {
		return fmt.Errorf("capture: save replay: %w", err)
	}
	return nil
}

func (s *Store) LoadActions(idx int) (*mat.Dense, error) {
	f, err := os.Open(filepath.Join(s.baseDir, fmt.Sprintf("action_%d.npy", idx)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, fmt.Errorf("capture: load actions %d: %w", idx, err)
	}
	return &m, nil
}

func (s *Store) LoadObservations(idx int) ([]render.Frame, error) {
	meta, err := s.LoadMetadata()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.baseDir, fmt.Sprintf("observation_%d.npy", idx)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var pix []uint8
	if err := npyio.Read(f, &pix); err != nil {
		return nil, fmt.Errorf("capture: load observations %d: %w", idx, err)
	}
	stride := meta.Height * meta.Width * meta.Channels
	if stride == 0 || len(pix)%stride != 0 {
		return nil, fmt.Errorf("capture: observation %d does not match metadata shape", idx)
	}
	frames := make([]render.Frame, 0, len(pix)/stride)
	for off := 0; off < len(pix); off += stride {
		frames = append(frames, render.Frame{
			H:   meta.Height,
			W:   meta.Width,
			Pix: pix[off : off+stride],
		})
	}
	return frames, nil
}

func (s *Store) LoadMetadata() (Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, "metadata.json"))
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

func (s *Store) writeMetadata(meta Metadata) error {
	f, err := os.Create(filepath.Join(s.baseDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeNpy(path string, val interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return npyio.Write(f, val)
}

func flatten(frames []render.Frame) []uint8 {
	if len(frames) == 0 {
		return nil
	}
	pix := make([]uint8, 0, len(frames)*len(frames[0].Pix))
	for _, fr := range frames {
		pix = append(pix, fr.Pix...)
	}
	return pix
}
