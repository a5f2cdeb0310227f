// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     cmd
// Description: Root command
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/supervisia/supervisia/internal/config"
	"github.com/supervisia/supervisia/pkg/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "supervisia",
	Short: "Supervisia - supervisão clínica em tempo real",
	Long: `Supervisia escuta uma sessão de terapia (microfone e áudio do sistema),
transcreve as falas de terapeuta e paciente e gera orientações de
supervisão clínica em streaming.

Comandos:
  run      - inicia o motor de supervisão
  devices  - lista os dispositivos de áudio de entrada
  models   - lista os modelos disponíveis nos provedores
  history  - gerencia o histórico de sessões`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "arquivo de configuração (default: diretório de configuração do usuário)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "saída detalhada")
}

// loadConfig loads the TOML config honoring the --config flag
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if verbose {
		logging.SetLevel("debug")
	} else {
		logging.SetLevel(cfg.General.LogLevel)
	}

	return cfg, nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Erro: %s: %v\n", msg, err)
}
