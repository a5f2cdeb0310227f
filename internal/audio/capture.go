// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     audio
// Description: Audio capture using PortAudio
// License:     MIT
// ============================================================================

package audio

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/supervisia/supervisia/internal/session"
)

const (
	// DefaultSampleRate is 16kHz, what the transcription backends expect
	DefaultSampleRate = 16000

	// DefaultFramesPerBuffer is the default buffer size
	DefaultFramesPerBuffer = 512

	// DefaultChannels is mono audio
	DefaultChannels = 1
)

// DeviceInfo describes an audio input device
type DeviceInfo struct {
	Index      int
	Name       string
	Channels   int
	SampleRate float64
	IsDefault  bool
	IsLoopback bool
}

// Capture reads audio from one input device and tags every chunk with the
// session source it feeds (microphone or system audio).
type Capture struct {
	mu          sync.RWMutex
	stream      *portaudio.Stream
	source      session.Source
	sampleRate  float64
	bufferSize  int
	channels    int
	deviceName  string
	running     bool
	outputChan  chan []float32
	initialized bool
}

// CaptureConfig holds configuration for audio capture
type CaptureConfig struct {
	Source     session.Source
	SampleRate float64
	BufferSize int
	Channels   int
	DeviceName string // empty = default input device
}

// DefaultCaptureConfig returns default capture configuration for a source
func DefaultCaptureConfig(source session.Source) CaptureConfig {
	return CaptureConfig{
		Source:     source,
		SampleRate: DefaultSampleRate,
		BufferSize: DefaultFramesPerBuffer,
		Channels:   DefaultChannels,
	}
}

// NewCapture creates a new audio capture instance
func NewCapture(cfg CaptureConfig) (*Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	bufferSize := cfg.BufferSize
	if bufferSize == 0 {
		bufferSize = DefaultFramesPerBuffer
	}
	channels := cfg.Channels
	if channels == 0 {
		channels = DefaultChannels
	}

	return &Capture{
		source:      cfg.Source,
		sampleRate:  sampleRate,
		bufferSize:  bufferSize,
		channels:    channels,
		deviceName:  cfg.DeviceName,
		outputChan:  make(chan []float32, 100),
		initialized: true,
	}, nil
}

// Source returns the session source this capture feeds
func (c *Capture) Source() session.Source {
	return c.source
}

// Start begins audio capture
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("capture already running")
	}

	buffer := make([]float32, c.bufferSize)

	stream, err := c.openStream(buffer)
	if err != nil {
		return err
	}

	c.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	c.running = true

	go c.captureLoop(ctx, buffer)

	return nil
}

func (c *Capture) openStream(buffer []float32) (*portaudio.Stream, error) {
	if c.deviceName != "" && c.deviceName != "default" {
		device, err := findInputDevice(c.deviceName)
		if err != nil {
			// A named device that vanished is an access problem for the
			// system-audio channel, not something to silently fall back from.
			if c.source == session.SourceSystemAudio {
				return nil, fmt.Errorf("%w: %v", session.ErrCaptureAccessDenied, err)
			}
			return c.openDefaultStream(buffer)
		}

		params := portaudio.StreamParameters{
			Input: portaudio.StreamDeviceParameters{
				Device:   device,
				Channels: c.channels,
				Latency:  device.DefaultLowInputLatency,
			},
			SampleRate:      c.sampleRate,
			FramesPerBuffer: c.bufferSize,
		}
		stream, err := portaudio.OpenStream(params, buffer)
		if err != nil {
			return nil, fmt.Errorf("failed to open audio stream: %w", err)
		}
		return stream, nil
	}

	return c.openDefaultStream(buffer)
}

func (c *Capture) openDefaultStream(buffer []float32) (*portaudio.Stream, error) {
	stream, err := portaudio.OpenDefaultStream(
		c.channels,
		0, // no output channels
		c.sampleRate,
		c.bufferSize,
		buffer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	return stream, nil
}

// findInputDevice finds a PortAudio input device by name
func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	for _, dev := range devices {
		if dev.Name == name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}

	return nil, fmt.Errorf("device not found: %s", name)
}

// captureLoop continuously reads audio from the stream
func (c *Capture) captureLoop(ctx context.Context, buffer []float32) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			c.mu.RLock()
			if !c.running || c.stream == nil {
				c.mu.RUnlock()
				return
			}
			stream := c.stream
			c.mu.RUnlock()

			if err := stream.Read(); err != nil {
				c.mu.RLock()
				stillRunning := c.running
				c.mu.RUnlock()
				if !stillRunning {
					return
				}
				continue
			}

			samples := make([]float32, len(buffer))
			copy(samples, buffer)

			select {
			case c.outputChan <- samples:
			default:
				// Channel full, skip this buffer
			}
		}
	}
}

// Stop stops audio capture
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	c.running = false

	if c.stream != nil {
		_ = c.stream.Stop()
		if err := c.stream.Close(); err != nil {
			return fmt.Errorf("failed to close audio stream: %w", err)
		}
		c.stream = nil
	}

	return nil
}

// Close cleans up resources
func (c *Capture) Close() error {
	if err := c.Stop(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		if err := portaudio.Terminate(); err != nil {
			return fmt.Errorf("failed to terminate PortAudio: %w", err)
		}
		c.initialized = false
	}

	close(c.outputChan)
	return nil
}

// Output returns the channel that receives audio samples
func (c *Capture) Output() <-chan []float32 {
	return c.outputChan
}

// IsRunning returns whether capture is currently running
func (c *Capture) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// SampleRate returns the sample rate
func (c *Capture) SampleRate() float64 {
	return c.sampleRate
}

// ListInputDevices returns the available input devices
func ListInputDevices() ([]DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	defaultInput, _ := portaudio.DefaultInputDevice()
	var defaultInputName string
	if defaultInput != nil {
		defaultInputName = defaultInput.Name
	}

	var inputDevices []DeviceInfo
	for i, dev := range devices {
		if dev.MaxInputChannels == 0 {
			continue
		}
		inputDevices = append(inputDevices, DeviceInfo{
			Index:      i,
			Name:       dev.Name,
			Channels:   dev.MaxInputChannels,
			SampleRate: dev.DefaultSampleRate,
			IsDefault:  dev.Name == defaultInputName,
			IsLoopback: isLoopbackName(dev.Name),
		})
	}

	return inputDevices, nil
}

// isLoopbackName reports whether a device name looks like a system-audio
// loopback (PulseAudio monitors, Stereo Mix, BlackHole, Soundflower).
func isLoopbackName(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range []string{"monitor", "loopback", "stereo mix", "blackhole", "soundflower", "what u hear"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
