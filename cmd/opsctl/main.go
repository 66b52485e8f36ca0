package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/container"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "opsctl",
	Short:         "Operate the studio dashboard backend",
	Long:          `opsctl applies migrations and runs the scorecard reconciler and the Monday project sync outside the HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(migrateCmd(), reconcileCmd(), reconcileWeekCmd(), syncCmd(), dedupeCmd(), scheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*config.Settings, error) {
	config.Init()

	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := config.Connect(ctx, settings.DatabaseDSN); err != nil {
		return nil, err
	}
	return settings, nil
}

func build(ctx context.Context) (*container.Container, error) {
	return container.New(ctx)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
