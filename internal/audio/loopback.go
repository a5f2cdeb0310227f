// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     audio
// Description: System-audio loopback device discovery and access check
// License:     MIT
// ============================================================================

package audio

import (
	"fmt"

	"github.com/supervisia/supervisia/internal/session"
)

// FindLoopbackDevice returns the first input device that exposes the system's
// audio output. Returns session.ErrCaptureAccessDenied when no loopback
// source is available, so callers can surface the setup problem to the user
// instead of silently losing the patient channel.
func FindLoopbackDevice() (DeviceInfo, error) {
	devices, err := ListInputDevices()
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("failed to list input devices: %w", err)
	}

	for _, dev := range devices {
		if dev.IsLoopback {
			return dev, nil
		}
	}

	return DeviceInfo{}, fmt.Errorf("%w: no system-audio loopback device found", session.ErrCaptureAccessDenied)
}

// CheckCaptureAccess verifies that both capture channels can be served: a
// default microphone and a loopback device for system audio. It is a cheap
// preflight before a session starts.
func CheckCaptureAccess() error {
	devices, err := ListInputDevices()
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrCaptureAccessDenied, err)
	}

	if len(devices) == 0 {
		return fmt.Errorf("%w: no audio input devices available", session.ErrCaptureAccessDenied)
	}

	hasLoopback := false
	for _, dev := range devices {
		if dev.IsLoopback {
			hasLoopback = true
			break
		}
	}
	if !hasLoopback {
		return fmt.Errorf("%w: no system-audio loopback device found", session.ErrCaptureAccessDenied)
	}

	return nil
}
