// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     cmd
// Description: Devices command (audio input listing)
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supervisia/supervisia/internal/audio"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Lista os dispositivos de áudio de entrada",
	Long: `Lista os dispositivos de entrada disponíveis. Dispositivos marcados com
[loopback] capturam o áudio do sistema (fala do paciente em chamadas).`,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	devices, err := audio.ListInputDevices()
	if err != nil {
		printError("falha ao listar dispositivos", err)
		return err
	}

	if len(devices) == 0 {
		fmt.Println("Nenhum dispositivo de entrada encontrado.")
		return nil
	}

	for _, dev := range devices {
		marker := " "
		if dev.IsDefault {
			marker = "*"
		}
		suffix := ""
		if dev.IsLoopback {
			suffix = " [loopback]"
		}
		fmt.Printf("%s %2d: %s (%d canais, %.0f Hz)%s\n",
			marker, dev.Index, dev.Name, dev.Channels, dev.SampleRate, suffix)
	}

	fmt.Println("\n* = dispositivo padrão")
	return nil
}
