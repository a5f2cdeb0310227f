// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     tray
// Description: System tray integration using fyne.io/systray
// License:     MIT
// ============================================================================

package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"fyne.io/systray"
)

// IconState represents the current state for icon coloring
type IconState string

const (
	IconStateStopped     IconState = "stopped"     // Gray - capture off
	IconStateListening   IconState = "listening"   // Green - session live
	IconStateSupervising IconState = "supervising" // Blue - completion in flight
	IconStateError       IconState = "error"       // Orange - setup or stream problem
)

// App is the system tray application
type App struct {
	onToggleCapture func()
	onNewSession    func()
	onQuit          func()

	menuStatus  *systray.MenuItem
	menuToggle  *systray.MenuItem
	menuNew     *systray.MenuItem
	menuQuit    *systray.MenuItem
	capturing   bool
	currentIcon IconState
}

// Callbacks holds callback functions for tray events
type Callbacks struct {
	OnToggleCapture func()
	OnNewSession    func()
	OnQuit          func()
}

// NewApp creates a new system tray application
func NewApp(callbacks Callbacks) *App {
	return &App{
		onToggleCapture: callbacks.OnToggleCapture,
		onNewSession:    callbacks.OnNewSession,
		onQuit:          callbacks.OnQuit,
		currentIcon:     IconStateStopped,
	}
}

// Run starts the system tray application (blocking)
func (a *App) Run() {
	systray.Run(a.onReady, a.onExit)
}

// onReady is called when the system tray is ready
func (a *App) onReady() {
	systray.SetIcon(iconBytes(IconStateStopped))
	systray.SetTitle("")
	systray.SetTooltip("Supervisia")

	a.menuStatus = systray.AddMenuItem("Sessão: parada", "Estado atual")
	a.menuStatus.Disable()

	systray.AddSeparator()

	a.menuToggle = systray.AddMenuItem("Iniciar captura", "Iniciar ou parar a captura de áudio")
	a.menuNew = systray.AddMenuItem("Nova sessão", "Descartar a sessão atual e começar outra")

	systray.AddSeparator()

	a.menuQuit = systray.AddMenuItem("Sair", "Encerrar o Supervisia")

	go a.handleClicks()
}

// handleClicks handles menu item clicks
func (a *App) handleClicks() {
	for {
		select {
		case <-a.menuToggle.ClickedCh:
			if a.onToggleCapture != nil {
				a.onToggleCapture()
			}
		case <-a.menuNew.ClickedCh:
			if a.onNewSession != nil {
				a.onNewSession()
			}
		case <-a.menuQuit.ClickedCh:
			if a.onQuit != nil {
				a.onQuit()
			}
			systray.Quit()
			return
		}
	}
}

// onExit is called when the tray exits
func (a *App) onExit() {
}

// SetCapturing updates the capture state shown in the menu
func (a *App) SetCapturing(capturing bool) {
	a.capturing = capturing
	if a.menuStatus == nil {
		return
	}
	if capturing {
		a.menuStatus.SetTitle("Sessão: ao vivo")
		a.menuToggle.SetTitle("Parar captura")
		a.SetIcon(IconStateListening)
	} else {
		a.menuStatus.SetTitle("Sessão: parada")
		a.menuToggle.SetTitle("Iniciar captura")
		a.SetIcon(IconStateStopped)
	}
}

// SetIcon updates the tray icon for a state
func (a *App) SetIcon(state IconState) {
	if state == a.currentIcon {
		return
	}
	a.currentIcon = state
	systray.SetIcon(iconBytes(state))
}

// Quit quits the system tray
func (a *App) Quit() {
	systray.Quit()
}

// iconBytes renders a filled circle PNG in the state's color
func iconBytes(state IconState) []byte {
	const size = 22
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	var c color.RGBA
	switch state {
	case IconStateListening:
		c = color.RGBA{52, 199, 89, 255} // Green
	case IconStateSupervising:
		c = color.RGBA{0, 122, 255, 255} // Blue
	case IconStateError:
		c = color.RGBA{255, 149, 0, 255} // Orange
	default:
		c = color.RGBA{128, 128, 128, 255} // Gray
	}

	cx, cy, r := size/2, size/2, size/2-3
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
