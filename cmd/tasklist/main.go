// Package main runs the tasklist server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tasklist/internal/app"
	"tasklist/internal/config"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "tasklist",
	Short:        "Serve a single-user task list over HTTP",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML config file")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
