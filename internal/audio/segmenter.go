// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     audio
// Description: Utterance segmentation (capture + VAD + buffer)
// License:     MIT
// ============================================================================

package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/supervisia/supervisia/internal/session"
	"github.com/supervisia/supervisia/internal/vad"
	"github.com/supervisia/supervisia/pkg/logging"
)

// Utterance is one speech segment ready for transcription
type Utterance struct {
	Samples    []float32
	SampleRate int
	Source     session.Source
	CapturedAt time.Time
	Duration   time.Duration
}

// Segmenter drives one capture channel through VAD and cuts the sample
// stream into utterances at silence boundaries.
type Segmenter struct {
	mu       sync.Mutex
	capture  *Capture
	detector vad.Detector
	tracker  *vad.SpeechTracker
	buffer   *Buffer
	logger   *logging.Logger
	out      chan Utterance
	cancel   context.CancelFunc
	running  bool
}

// SegmenterConfig holds segmenter configuration
type SegmenterConfig struct {
	Capture  *Capture
	Detector vad.Detector
	VAD      vad.Config

	// MaxUtteranceSeconds bounds a single utterance buffer.
	MaxUtteranceSeconds float64
}

// NewSegmenter creates a segmenter for one capture channel
func NewSegmenter(cfg SegmenterConfig) (*Segmenter, error) {
	if cfg.Capture == nil {
		return nil, fmt.Errorf("capture is required")
	}
	if cfg.Detector == nil {
		return nil, fmt.Errorf("VAD detector is required")
	}

	maxSeconds := cfg.MaxUtteranceSeconds
	if maxSeconds == 0 {
		maxSeconds = 60
	}

	return &Segmenter{
		capture:  cfg.Capture,
		detector: cfg.Detector,
		tracker:  vad.NewSpeechTracker(cfg.VAD),
		buffer:   NewBuffer(int(cfg.Capture.SampleRate()), maxSeconds),
		logger:   logging.New("segmenter"),
		out:      make(chan Utterance, 8),
	}, nil
}

// Start begins capture and segmentation
func (s *Segmenter) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("segmenter already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := s.capture.Start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("failed to start capture: %w", err)
	}

	s.cancel = cancel
	s.running = true

	go s.loop(runCtx)

	s.logger.Info("Segmentation started", "source", s.capture.Source().String())
	return nil
}

func (s *Segmenter) loop(ctx context.Context) {
	source := s.capture.Source()
	sampleRate := int(s.capture.SampleRate())

	for {
		select {
		case <-ctx.Done():
			return
		case samples, ok := <-s.capture.Output():
			if !ok {
				return
			}

			isSpeech, err := s.detector.Process(samples)
			if err != nil {
				s.logger.Debug("VAD processing failed", "error", err)
				continue
			}

			state := s.tracker.Update(isSpeech)

			if isSpeech || state.IsSpeaking || s.buffer.Len() > 0 {
				s.buffer.Append(samples)
			}

			if !s.tracker.ShouldEndUtterance() {
				continue
			}

			if !s.tracker.IsValidSpeech() {
				// Too short to be real speech; discard and rearm.
				s.buffer.Clear()
				s.tracker.Reset()
				continue
			}

			utterance := Utterance{
				Samples:    s.buffer.Drain(),
				SampleRate: sampleRate,
				Source:     source,
				CapturedAt: time.Now(),
				Duration:   state.SpeechDuration,
			}
			s.tracker.Reset()

			select {
			case s.out <- utterance:
				s.logger.Debug("Utterance segmented",
					"source", source.String(),
					"duration", utterance.Duration.Round(time.Millisecond).String(),
					"samples", len(utterance.Samples))
			default:
				s.logger.Warn("Utterance dropped, consumer too slow", "source", source.String())
			}
		}
	}
}

// Utterances returns the channel of segmented utterances
func (s *Segmenter) Utterances() <-chan Utterance {
	return s.out
}

// Stop stops segmentation and the underlying capture
func (s *Segmenter) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if err := s.capture.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture: %w", err)
	}

	s.logger.Info("Segmentation stopped", "source", s.capture.Source().String())
	return nil
}

// IsRunning returns whether the segmenter is active
func (s *Segmenter) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
