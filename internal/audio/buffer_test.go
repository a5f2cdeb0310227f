// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     audio
// Description: Tests for the sample buffer
// License:     MIT
// ============================================================================

package audio

import (
	"testing"
)

func TestBufferAppendAndDrain(t *testing.T) {
	b := NewBuffer(16000, 10)

	b.Append([]float32{1, 2, 3})
	b.Append([]float32{4, 5})

	if b.Len() != 5 {
		t.Errorf("len = %d", b.Len())
	}

	samples := b.Drain()
	if len(samples) != 5 || samples[0] != 1 || samples[4] != 5 {
		t.Errorf("drained = %v", samples)
	}
	if b.Len() != 0 {
		t.Error("drain should empty the buffer")
	}
}

func TestBufferOverflowDropsOldest(t *testing.T) {
	b := NewBuffer(4, 1) // max 4 samples

	b.Append([]float32{1, 2, 3, 4})
	b.Append([]float32{5, 6})

	samples := b.Drain()
	if len(samples) != 4 {
		t.Fatalf("len = %d, want max capacity", len(samples))
	}
	if samples[0] != 3 || samples[3] != 6 {
		t.Errorf("overflow kept wrong window: %v", samples)
	}
}

func TestBufferDuration(t *testing.T) {
	b := NewBuffer(16000, 10)
	b.Append(make([]float32, 8000))

	if d := b.DurationSeconds(); d != 0.5 {
		t.Errorf("duration = %v, want 0.5", d)
	}
}

func TestBufferClear(t *testing.T) {
	b := NewBuffer(16000, 10)
	b.Append([]float32{1, 2, 3})
	b.Clear()
	if b.Len() != 0 {
		t.Error("clear should empty the buffer")
	}
}
