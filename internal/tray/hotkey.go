// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     tray
// Description: Global hotkey registration
// License:     MIT
// ============================================================================

package tray

import (
	"fmt"
	"runtime"

	"golang.design/x/hotkey"

	"github.com/supervisia/supervisia/pkg/logging"
)

// Hotkey wraps the global capture-toggle shortcut
type Hotkey struct {
	hk     *hotkey.Hotkey
	logger *logging.Logger
}

// RegisterHotkey registers Ctrl+Shift+S as the capture toggle. On macOS the
// hotkey library can crash with SIGTRAP through CGO, so registration is
// skipped there and the tray menu is the only toggle.
func RegisterHotkey(onToggle func()) (*Hotkey, error) {
	logger := logging.New("hotkey")

	if runtime.GOOS == "darwin" {
		logger.Info("Hotkey disabled on macOS (use the tray menu)")
		return nil, nil
	}

	hk := hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyS)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("failed to register hotkey: %w", err)
	}

	go func() {
		for range hk.Keydown() {
			logger.Debug("Hotkey pressed")
			onToggle()
		}
	}()

	logger.Info("Hotkey registered", "shortcut", "Ctrl+Shift+S")
	return &Hotkey{hk: hk, logger: logger}, nil
}

// Unregister releases the hotkey
func (h *Hotkey) Unregister() error {
	if h == nil || h.hk == nil {
		return nil
	}
	return h.hk.Unregister()
}
