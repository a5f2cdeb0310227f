// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     cmd
// Description: Models command (provider model listing)
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var modelsCheck bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Lista os modelos disponíveis nos provedores configurados",
	RunE:  runModels,
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsCheck, "check", false, "verifica a conectividade de cada provedor")
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("falha ao carregar configuração", err)
		return err
	}

	manager, err := buildManager(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if modelsCheck {
		for name, err := range manager.CheckHealth(ctx) {
			if err != nil {
				fmt.Printf("%s: indisponível (%v)\n", name, err)
			} else {
				fmt.Printf("%s: ok\n", name)
			}
		}
		return nil
	}

	models := manager.ListAllModels(ctx)
	if len(models) == 0 {
		fmt.Println("Nenhum modelo encontrado. Os provedores estão acessíveis?")
		return nil
	}

	for _, m := range models {
		fmt.Printf("%s:%s\n", m.Provider, m.Name)
	}

	return nil
}
