package capture

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/nomutin/Push2D/internal/render"
)

// Recorder accumulates index-aligned action/observation pairs and
// flushes them through a Store when the configured length is reached.
type Recorder struct {
	store  *Store
	length int
	meta   Metadata
	log    *zap.Logger

	actions [][]float64
	frames  []render.Frame
}

func NewRecorder(store *Store, length int, meta Metadata, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{store: store, length: length, meta: meta, log: log}
}

func (r *Recorder) Len() int    { return len(r.actions) }
func (r *Recorder) Length() int { return r.length }

// Append records one pair. When the buffer reaches the capture length
// it flushes; the returned index is the saved capture's index, or -1
// when nothing was flushed.
func (r *Recorder) Append(action []float64, frame render.Frame) (int, error) {
	a := make([]float64, len(action))
	copy(a, action)
	r.actions = append(r.actions, a)
	r.frames = append(r.frames, frame.Clone())
	if len(r.actions) < r.length {
		return -1, nil
	}
	return r.Flush()
}

// Flush persists the buffered pairs and clears the buffers. Flushing an
// empty recorder is a no-op. On persistence failure the buffers are
// left intact so the caller can retry.
func (r *Recorder) Flush() (int, error) {
	if len(r.actions) == 0 {
		return -1, nil
	}
	dim := len(r.actions[0])
	data := make([]float64, 0, len(r.actions)*dim)
	for i, a := range r.actions {
		if len(a) != dim {
			return -1, fmt.Errorf("capture: action %d has %d values, want %d", i, len(a), dim)
		}
		data = append(data, a...)
	}
	meta := r.meta
	meta.ActionDim = dim

	idx, err := r.store.SaveCapture(mat.NewDense(len(r.actions), dim, data), r.frames, meta)
	if err != nil {
		return -1, err
	}
	r.Discard()
	return idx, nil
}

// Discard drops the in-memory buffers without persisting.
func (r *Recorder) Discard() {
	r.actions = r.actions[:0]
	r.frames = r.frames[:0]
}
