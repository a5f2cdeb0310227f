// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     cmd
// Description: History command (session listing and cleanup)
// License:     MIT
// ============================================================================

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/supervisia/supervisia/internal/session"
	"github.com/supervisia/supervisia/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Gerencia o histórico de sessões",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista as sessões gravadas",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Mostra a sessão mais recente",
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Apaga todo o histórico de sessões",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func openStore() (*store.SessionStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		printError("falha ao carregar configuração", err)
		return nil, err
	}

	st, err := store.New(store.Config{Path: cfg.Store.DatabasePath})
	if err != nil {
		printError("falha ao abrir o banco de sessões", err)
		return nil, err
	}
	return st, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessions, err := st.ListSessions(ctx, 50)
	if err != nil {
		printError("falha ao listar sessões", err)
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("Nenhuma sessão gravada.")
		return nil
	}

	for _, s := range sessions {
		fmt.Printf("%s  %s  (atualizada %s)\n",
			s.ID, s.Title, time.UnixMilli(s.UpdatedAt).Format("02/01/2006 15:04"))
	}

	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conv, err := st.LoadLatest(ctx)
	if err != nil {
		printError("falha ao carregar a sessão", err)
		return err
	}
	if conv == nil {
		fmt.Println("Nenhuma sessão gravada.")
		return nil
	}

	fmt.Printf("%s  %s\n\n", conv.ID, conv.Title)
	for _, t := range conv.Turns {
		fmt.Printf("[%s] %s: %s\n",
			time.UnixMilli(t.Timestamp).Format("15:04:05"), roleLabel(t.Role), t.Content)
	}
	return nil
}

func roleLabel(r session.Role) string {
	switch r {
	case session.RoleTherapist:
		return "Terapeuta"
	case session.RolePatient:
		return "Paciente"
	default:
		return "Supervisor"
	}
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	fmt.Print("Apagar TODO o histórico de sessões? [s/N] ")
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	if strings.TrimSpace(strings.ToLower(answer)) != "s" {
		fmt.Println("Cancelado.")
		return nil
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := st.DeleteAll(ctx); err != nil {
		printError("falha ao apagar o histórico", err)
		return err
	}

	fmt.Println("Histórico apagado.")
	return nil
}
