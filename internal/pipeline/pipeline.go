// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     pipeline
// Description: Capture-to-engine wiring (segmenters, transcription, submit)
// License:     MIT
// ============================================================================

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/supervisia/supervisia/internal/audio"
	"github.com/supervisia/supervisia/internal/session"
	"github.com/supervisia/supervisia/internal/stt"
	"github.com/supervisia/supervisia/pkg/logging"
)

// Pipeline runs both capture channels, transcribes segmented utterances and
// feeds the resulting transcripts to the session engine.
type Pipeline struct {
	mu          sync.Mutex
	engine      *session.Engine
	transcriber stt.Transcriber
	segmenters  []*audio.Segmenter
	logger      *logging.Logger
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	running     bool
}

// Config holds pipeline configuration
type Config struct {
	Engine      *session.Engine
	Transcriber stt.Transcriber
	Segmenters  []*audio.Segmenter
}

// New creates a pipeline
func New(cfg Config) (*Pipeline, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.Transcriber == nil {
		return nil, fmt.Errorf("transcriber is required")
	}
	if len(cfg.Segmenters) == 0 {
		return nil, fmt.Errorf("at least one segmenter is required")
	}

	return &Pipeline{
		engine:      cfg.Engine,
		transcriber: cfg.Transcriber,
		segmenters:  cfg.Segmenters,
		logger:      logging.New("pipeline"),
	}, nil
}

// Start begins capture on every channel. The engine gets a fresh session so
// a new capture run never appends into an old conversation.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("pipeline already running")
	}

	probeCtx, probeCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := p.transcriber.HealthCheck(probeCtx); err != nil {
		p.logger.Warn("Transcription backend unreachable, transcripts will fail until it comes up",
			"backend", p.transcriber.Name(),
			"error", err)
	}
	probeCancel()

	runCtx, cancel := context.WithCancel(ctx)

	started := make([]*audio.Segmenter, 0, len(p.segmenters))
	for _, seg := range p.segmenters {
		if err := seg.Start(runCtx); err != nil {
			for _, s := range started {
				_ = s.Stop()
			}
			cancel()
			return fmt.Errorf("failed to start capture channel: %w", err)
		}
		started = append(started, seg)
	}

	p.cancel = cancel
	p.running = true
	p.engine.NewSession()

	for _, seg := range p.segmenters {
		p.wg.Add(1)
		go p.consume(runCtx, seg)
	}

	p.logger.Info("Pipeline started", "channels", len(p.segmenters))
	return nil
}

func (p *Pipeline) consume(ctx context.Context, seg *audio.Segmenter) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case utt, ok := <-seg.Utterances():
			if !ok {
				return
			}
			p.transcribe(ctx, utt)
		}
	}
}

func (p *Pipeline) transcribe(ctx context.Context, utt audio.Utterance) {
	result, err := p.transcriber.Transcribe(ctx, utt.Samples, utt.SampleRate)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("Transcription failed",
			"source", utt.Source.String(),
			"error", &session.TranscriptionError{Err: err})
		return
	}

	p.engine.SubmitTranscript(session.Transcript{
		Text:       result.Text,
		Source:     utt.Source,
		CapturedAt: utt.CapturedAt,
	})

	p.logger.Debug("Transcript submitted",
		"source", utt.Source.String(),
		"latency", result.Duration.Round(time.Millisecond).String())
}

// Stop stops all capture channels and waits for in-flight transcriptions
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	var firstErr error
	for _, seg := range p.segmenters {
		if err := seg.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	p.wg.Wait()
	p.logger.Info("Pipeline stopped")
	return firstErr
}

// IsRunning reports whether capture is active
func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
