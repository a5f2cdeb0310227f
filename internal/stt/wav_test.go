// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     stt
// Description: Tests for WAV encoding
// License:     MIT
// ============================================================================

package stt

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWriteWAVHeader(t *testing.T) {
	samples := make([]float32, 1600) // 100ms at 16kHz
	var buf bytes.Buffer

	if err := writeWAV(&buf, samples, 16000); err != nil {
		t.Fatalf("writeWAV failed: %v", err)
	}

	data := buf.Bytes()
	if len(data) != 44+len(samples)*2 {
		t.Fatalf("wav size = %d, want %d", len(data), 44+len(samples)*2)
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		t.Error("missing fmt/data chunks")
	}

	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 16000 {
		t.Errorf("sample rate = %d", rate)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		t.Errorf("bits per sample = %d", bits)
	}
	if channels := binary.LittleEndian.Uint16(data[22:24]); channels != 1 {
		t.Errorf("channels = %d", channels)
	}
	if dataSize := binary.LittleEndian.Uint32(data[40:44]); dataSize != uint32(len(samples)*2) {
		t.Errorf("data size = %d", dataSize)
	}
}

func TestFloat32ToPCM16Clamping(t *testing.T) {
	pcm := float32ToPCM16([]float32{0, 0.5, 1.0, 2.0, -1.0, -3.0})

	if pcm[0] != 0 {
		t.Errorf("zero sample = %d", pcm[0])
	}
	if pcm[1] != 16383 {
		t.Errorf("half scale = %d", pcm[1])
	}
	if pcm[2] != 32767 || pcm[3] != 32767 {
		t.Errorf("positive clamp = %d, %d", pcm[2], pcm[3])
	}
	if pcm[4] != -32767 || pcm[5] != -32767 {
		t.Errorf("negative clamp = %d, %d", pcm[4], pcm[5])
	}
}

func TestPCM16ToBytesLittleEndian(t *testing.T) {
	b := pcm16ToBytes([]int16{0x0102, -1})
	want := []byte{0x02, 0x01, 0xFF, 0xFF}
	if !bytes.Equal(b, want) {
		t.Errorf("bytes = %v, want %v", b, want)
	}
}
