// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     audio
// Description: Sample buffer for utterance accumulation
// License:     MIT
// ============================================================================

package audio

import (
	"sync"
)

// Buffer accumulates float32 samples for one utterance. Safe for concurrent
// use; the capture callback appends while the segmenter reads.
type Buffer struct {
	mu         sync.RWMutex
	samples    []float32
	sampleRate int
	maxSamples int
}

// NewBuffer creates a buffer for the given sample rate. maxSeconds bounds the
// buffer; older samples are dropped when it overflows.
func NewBuffer(sampleRate int, maxSeconds float64) *Buffer {
	return &Buffer{
		samples:    make([]float32, 0, sampleRate*int(maxSeconds)),
		sampleRate: sampleRate,
		maxSamples: int(float64(sampleRate) * maxSeconds),
	}
}

// Append adds samples to the buffer
func (b *Buffer) Append(samples []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = append(b.samples, samples...)

	if len(b.samples) > b.maxSamples {
		excess := len(b.samples) - b.maxSamples
		b.samples = b.samples[excess:]
	}
}

// Drain returns a copy of the accumulated samples and clears the buffer
func (b *Buffer) Drain() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]float32, len(b.samples))
	copy(out, b.samples)
	b.samples = b.samples[:0]
	return out
}

// Clear discards the accumulated samples
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = b.samples[:0]
}

// Len returns the number of buffered samples
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// DurationSeconds returns the buffered audio duration in seconds
func (b *Buffer) DurationSeconds() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.sampleRate == 0 {
		return 0
	}
	return float64(len(b.samples)) / float64(b.sampleRate)
}
