// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     cmd
// Description: Run command (capture, transcription and supervision loop)
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/supervisia/supervisia/internal/audio"
	"github.com/supervisia/supervisia/internal/config"
	"github.com/supervisia/supervisia/internal/pipeline"
	"github.com/supervisia/supervisia/internal/provider"
	"github.com/supervisia/supervisia/internal/session"
	"github.com/supervisia/supervisia/internal/store"
	"github.com/supervisia/supervisia/internal/stt"
	"github.com/supervisia/supervisia/internal/tray"
	"github.com/supervisia/supervisia/internal/tui"
	"github.com/supervisia/supervisia/internal/vad"
	"github.com/supervisia/supervisia/pkg/logging"
)

var (
	runHeadless bool
	runNoAudio  bool
	runModel    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Inicia o motor de supervisão",
	Long: `Inicia a captura de áudio (microfone e áudio do sistema), a transcrição
e o loop de supervisão. Sem --headless, abre a interface de observação.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "roda sem interface (bandeja do sistema e atalho global)")
	runCmd.Flags().BoolVar(&runNoAudio, "no-audio", false, "não inicia a captura de áudio (apenas ações rápidas)")
	runCmd.Flags().StringVar(&runModel, "model", "", "modelo a usar (ex.: openai:gpt-4o, ollama:llama3.2)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := logging.New("supervisia")

	cfg, err := loadConfig()
	if err != nil {
		printError("falha ao carregar configuração", err)
		return err
	}

	settingsPath := cfg.Store.SettingsPath
	if settingsPath == "" {
		settingsPath, err = store.SettingsPath()
		if err != nil {
			return err
		}
	}
	settings := store.LoadSettings(settingsPath)
	if cfg.General.Supervised != nil {
		settings.Supervised = *cfg.General.Supervised
	}

	st, err := store.New(store.Config{Path: cfg.Store.DatabasePath})
	if err != nil {
		printError("falha ao abrir o banco de sessões", err)
		return err
	}
	defer st.Close()

	manager, err := buildManager(cfg)
	if err != nil {
		return err
	}

	model := runModel
	if model == "" {
		model = cfg.Providers.Model
	}
	if model == "" {
		model = settings.Model
	}
	completer := provider.NewSessionCompleter(manager, model)

	engine := session.NewEngine(session.EngineConfig{
		Supervised:  settings.Supervised,
		Store:       st,
		Completer:   completer,
		Supervision: settings.SupervisionContext(),
	})
	engine.Start()
	defer engine.Stop()

	var pipe *pipeline.Pipeline
	if !runNoAudio {
		pipe, err = buildPipeline(cfg, engine)
		if err != nil {
			if errors.Is(err, session.ErrCaptureAccessDenied) {
				printError("captura de áudio indisponível, verifique os dispositivos", err)
			} else {
				printError("falha ao montar a captura", err)
			}
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if pipe != nil {
		if err := pipe.Start(ctx); err != nil {
			printError("falha ao iniciar a captura", err)
			return err
		}
		defer pipe.Stop()
	}

	headless := runHeadless || !cfg.UI.TUIEnabled()

	logger.Info("Supervisia started",
		"supervised", settings.Supervised,
		"headless", headless,
		"audio", pipe != nil)

	if headless {
		return runWithTray(ctx, cfg, engine, pipe)
	}

	return runWithTUI(ctx, engine, settings)
}

// buildManager assembles the provider manager from config
func buildManager(cfg *config.Config) (*provider.Manager, error) {
	var descriptors []provider.Descriptor
	if cfg.Providers.DescriptorFile != "" {
		var err error
		descriptors, err = provider.LoadDescriptors(cfg.Providers.DescriptorFile)
		if err != nil {
			printError("falha ao carregar provedores personalizados", err)
			return nil, err
		}
	}

	return provider.NewManager(provider.ManagerConfig{
		OllamaURL:        cfg.Providers.OllamaURL,
		OllamaModel:      cfg.Providers.OllamaModel,
		OpenAIKey:        cfg.Providers.OpenAIKey,
		OpenAIModel:      cfg.Providers.OpenAIModel,
		AnthropicKey:     cfg.Providers.AnthropicKey,
		AnthropicModel:   cfg.Providers.AnthropicModel,
		UseHosted:        cfg.Providers.UseHosted,
		HostedURL:        cfg.Providers.HostedURL,
		HostedLicenseKey: cfg.Providers.HostedKey,
		Descriptors:      descriptors,
		Selected:         cfg.Providers.Selected,
	}), nil
}

// buildPipeline assembles both capture channels and the transcriber
func buildPipeline(cfg *config.Config, engine *session.Engine) (*pipeline.Pipeline, error) {
	vadCfg := vad.Config{
		SampleRate:        cfg.Audio.SampleRate,
		Mode:              cfg.VAD.Mode,
		SilenceDuration:   time.Duration(cfg.VAD.SilenceDurationMs) * time.Millisecond,
		MinSpeechDuration: time.Duration(cfg.VAD.MinSpeechDurationMs) * time.Millisecond,
	}

	// Preflight both channels unless the user pinned a loopback device; a
	// pinned name may not carry a recognizable loopback marker.
	if cfg.Audio.LoopbackDevice == "" {
		if err := audio.CheckCaptureAccess(); err != nil {
			return nil, err
		}
	}

	transcriber, err := stt.New(stt.Config{
		Backend:  cfg.STT.Backend,
		BaseURL:  cfg.STT.URL,
		Language: cfg.General.Language,
		Timeout:  time.Duration(cfg.STT.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	loopbackDevice := cfg.Audio.LoopbackDevice
	if loopbackDevice == "" {
		dev, err := audio.FindLoopbackDevice()
		if err != nil {
			return nil, err
		}
		loopbackDevice = dev.Name
	}

	var segmenters []*audio.Segmenter
	channels := []struct {
		source session.Source
		device string
	}{
		{session.SourceMicrophone, cfg.Audio.MicrophoneDevice},
		{session.SourceSystemAudio, loopbackDevice},
	}

	for _, ch := range channels {
		capture, err := audio.NewCapture(audio.CaptureConfig{
			Source:     ch.source,
			SampleRate: float64(cfg.Audio.SampleRate),
			BufferSize: cfg.Audio.BufferSize,
			Channels:   1,
			DeviceName: ch.device,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create capture for %s: %w", ch.source, err)
		}

		detector, err := vad.NewWebRTCVAD(vadCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create VAD: %w", err)
		}

		seg, err := audio.NewSegmenter(audio.SegmenterConfig{
			Capture:  capture,
			Detector: detector,
			VAD:      vadCfg,
		})
		if err != nil {
			return nil, err
		}
		segmenters = append(segmenters, seg)
	}

	return pipeline.New(pipeline.Config{
		Engine:      engine,
		Transcriber: transcriber,
		Segmenters:  segmenters,
	})
}

// runWithTUI runs the observer interface until it exits or ctx is canceled
func runWithTUI(ctx context.Context, engine *session.Engine, settings store.Settings) error {
	model := tui.New(tui.Config{
		Engine:       engine,
		QuickActions: settings.QuickActions,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("observer interface failed: %w", err)
	}
	return nil
}

// runWithTray runs headless with the system tray (unless disabled) and the
// global hotkey
func runWithTray(ctx context.Context, cfg *config.Config, engine *session.Engine, pipe *pipeline.Pipeline) error {
	logger := logging.New("tray-runner")

	var app *tray.App

	toggle := func() {
		if pipe == nil {
			return
		}
		if pipe.IsRunning() {
			if err := pipe.Stop(); err != nil {
				logger.Warn("Failed to stop capture", "error", err)
			}
			if app != nil {
				app.SetCapturing(false)
			}
		} else {
			if err := pipe.Start(ctx); err != nil {
				logger.Warn("Failed to start capture", "error", err)
				if app != nil {
					app.SetIcon(tray.IconStateError)
				}
				return
			}
			if app != nil {
				app.SetCapturing(true)
			}
		}
	}

	if cfg.UI.TrayEnabled() {
		app = tray.NewApp(tray.Callbacks{
			OnToggleCapture: toggle,
			OnNewSession:    engine.NewSession,
			OnQuit:          func() {},
		})
	}

	if cfg.UI.Hotkey {
		hk, err := tray.RegisterHotkey(toggle)
		if err != nil {
			logger.Warn("Failed to register hotkey", "error", err)
		} else if hk != nil {
			defer hk.Unregister()
		}
	}

	if app == nil {
		// Fully headless: no tray surface, the engine just runs until the
		// process is signalled.
		<-ctx.Done()
		return nil
	}

	// Mirror engine state onto the tray icon.
	go func() {
		for ev := range engine.Events() {
			switch ev.Kind {
			case session.EventStateChanged:
				if ev.State == session.StateAwaitingResponse {
					app.SetIcon(tray.IconStateSupervising)
				} else if pipe != nil && pipe.IsRunning() {
					app.SetIcon(tray.IconStateListening)
				} else {
					app.SetIcon(tray.IconStateStopped)
				}
			case session.EventFailure:
				app.SetIcon(tray.IconStateError)
			}
		}
	}()

	go func() {
		<-ctx.Done()
		app.Quit()
	}()

	app.Run()
	return nil
}
