// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     vad
// Description: WebRTC VAD implementation
// License:     MIT
// ============================================================================

package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// WebRTCVAD implements voice activity detection using WebRTC's VAD
type WebRTCVAD struct {
	vad        *webrtcvad.VAD
	sampleRate int
	mode       int
}

// NewWebRTCVAD creates a new WebRTC VAD instance
func NewWebRTCVAD(cfg Config) (*WebRTCVAD, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create WebRTC VAD: %w", err)
	}

	mode := cfg.Mode
	if mode < 0 {
		mode = 0
	}
	if mode > 3 {
		mode = 3
	}
	if err := v.SetMode(mode); err != nil {
		return nil, fmt.Errorf("failed to set VAD mode: %w", err)
	}

	switch cfg.SampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return nil, fmt.Errorf("invalid sample rate %d, must be 8000, 16000, 32000 or 48000", cfg.SampleRate)
	}

	return &WebRTCVAD{
		vad:        v,
		sampleRate: cfg.SampleRate,
		mode:       mode,
	}, nil
}

// Process processes float32 samples and reports whether any 10ms frame in
// them contains speech.
func (w *WebRTCVAD) Process(samples []float32) (bool, error) {
	int16Samples := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		}
		if s < -1.0 {
			s = -1.0
		}
		int16Samples[i] = int16(s * 32767)
	}
	return w.processInt16(int16Samples)
}

func (w *WebRTCVAD) processInt16(samples []int16) (bool, error) {
	// WebRTC VAD accepts 10/20/30ms frames; 10ms at the configured rate.
	frameSize := w.sampleRate / 100

	if len(samples) < frameSize {
		padded := make([]int16, frameSize)
		copy(padded, samples)
		samples = padded
	}

	for i := 0; i+frameSize <= len(samples); i += frameSize {
		frame := samples[i : i+frameSize]
		active, err := w.vad.Process(w.sampleRate, int16ToBytes(frame))
		if err != nil {
			return false, fmt.Errorf("VAD processing failed: %w", err)
		}
		if active {
			return true, nil
		}
	}

	return false, nil
}

// int16ToBytes converts int16 samples to little-endian bytes
func int16ToBytes(samples []int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		b[i*2] = byte(s)
		b[i*2+1] = byte(s >> 8)
	}
	return b
}

// Close releases resources
func (w *WebRTCVAD) Close() error {
	// WebRTC VAD has no explicit cleanup.
	return nil
}

// SampleRate returns the sample rate
func (w *WebRTCVAD) SampleRate() int {
	return w.sampleRate
}
