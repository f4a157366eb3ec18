// Package teleop drives the environment from keyboard (or pointer)
// input, one input poll per capture tick, and previews the arena in the
// terminal.
package teleop

import (
	"go.uber.org/zap"

	"github.com/nomutin/Push2D/internal/capture"
	"github.com/nomutin/Push2D/internal/env"
	"github.com/nomutin/Push2D/internal/render"
)

// EventKind classifies one input event.
type EventKind int

const (
	EventQuit EventKind = iota
	EventReset
	EventSave
	EventDirection // Lane holds the action lane: 0 up, 1 down, 2 left, 3 right
	EventPoint     // X, Y hold a pointer position for tracking mode
)

type Event struct {
	Kind EventKind
	Lane int
	X, Y float64
}

// Source yields the events that arrived since the last poll. The
// session polls exactly once per capture tick.
type Source interface {
	Poll() []Event
}

// Session is the cooperative capture loop: poll input, hold the decoded
// action for span physics ticks, record when armed. Everything runs on
// the caller's stack; Quit() reports when a quit event was consumed.
type Session struct {
	env      *env.Env
	recorder *capture.Recorder
	source   Source
	span     int
	tracking bool
	log      *zap.Logger

	armed   bool
	quit    bool
	pointer [2]float64
	frame   render.Frame
	info    env.Info
	score   float64
	saved   int // index of the last flushed capture, -1 before any
}

func NewSession(e *env.Env, rec *capture.Recorder, src Source, span int, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		env:      e,
		recorder: rec,
		source:   src,
		span:     span,
		tracking: e.Scenario().Tracking,
		log:      log,
		saved:    -1,
	}
}

// Start resets the environment and primes the preview frame.
func (s *Session) Start(seed int64) error {
	frame, info, err := s.env.Reset(seed, nil)
	if err != nil {
		return err
	}
	s.frame, s.info = frame, info
	return nil
}

// Tick consumes pending input once and advances the episode by one
// capture tick (span physics ticks under the held action).
func (s *Session) Tick() error {
	action := s.decodeEvents(s.source.Poll())
	if s.quit {
		return nil
	}

	for i := 0; i < s.span; i++ {
		frame, score, _, _, info, err := s.env.Step(action)
		if err != nil {
			return err
		}
		s.frame, s.info, s.score = frame, info, score
	}

	if s.armed {
		idx, err := s.recorder.Append(action, s.frame)
		if err != nil {
			return err
		}
		if idx >= 0 {
			s.saved = idx
			s.armed = false
			s.log.Info("capture complete", zap.Int("index", idx))
			return s.Start(-1)
		}
	}
	return nil
}

func (s *Session) decodeEvents(events []Event) []float64 {
	var action []float64
	if s.tracking {
		action = []float64{s.pointer[0], s.pointer[1]}
	} else {
		action = []float64{0, 0, 0, 0}
	}
	for _, ev := range events {
		switch ev.Kind {
		case EventQuit:
			s.quit = true
		case EventReset:
			s.armed = false
			s.recorder.Discard()
			if err := s.Start(-1); err != nil {
				s.log.Warn("reset failed", zap.Error(err))
			}
		case EventSave:
			s.armed = true
		case EventDirection:
			if !s.tracking && ev.Lane >= 0 && ev.Lane < 4 {
				action[ev.Lane] = 1
			}
		case EventPoint:
			s.pointer = [2]float64{ev.X, ev.Y}
			if s.tracking {
				action = []float64{ev.X, ev.Y}
			}
		}
	}
	return action
}

func (s *Session) Quit() bool          { return s.quit }
func (s *Session) Armed() bool         { return s.armed }
func (s *Session) Frame() render.Frame { return s.frame }
func (s *Session) Info() env.Info      { return s.info }
func (s *Session) Score() float64      { return s.score }
func (s *Session) Recorded() int       { return s.recorder.Len() }
func (s *Session) LastSaved() int      { return s.saved }
