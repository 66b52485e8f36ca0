package main

import (
	"fmt"
	"strconv"

	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/database"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := connect(cmd.Context()); err != nil {
				return err
			}
			return database.Up(config.DB)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied and latest migration versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := connect(cmd.Context()); err != nil {
				return err
			}
			status, err := database.Status(config.DB)
			if err != nil {
				return err
			}
			return printJSON(status)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid steps %q", args[0])
				}
				steps = n
			}
			if _, err := connect(cmd.Context()); err != nil {
				return err
			}
			return database.Down(config.DB, steps)
		},
	})
	return cmd
}
