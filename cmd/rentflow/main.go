// Command rentflow runs the rental marketplace API and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rentflow/internal/platform/config"
)

var (
	version = "dev"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:           "rentflow",
	Short:         "Rental marketplace: listings, co-signed offers and tenancies",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (YAML); RENTFLOW_* env vars override it")
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgFile)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rentflow:", err)
		os.Exit(1)
	}
}
