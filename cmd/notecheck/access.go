package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/notecheck/internal/access"
	"github.com/Veraticus/notecheck/internal/cli"
	"github.com/Veraticus/notecheck/internal/config"
	"github.com/spf13/cobra"
)

func accessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "access",
		Short: "Check whether the report tool is enabled",
		Long: `Ask the access service whether the report tool should be shown.
Prints "visible" or "hidden". Any failure to reach the service counts as hidden.`,
		RunE: runAccess,
	}
}

func runAccess(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadAccessConfig()
	if err != nil {
		return err
	}
	checker, err := access.NewChecker(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create access checker: %w", err)
	}

	result := checker.Check(cmd.Context())
	line := cli.FormatSuccess(result.String())
	if result != access.Visible {
		line = cli.FormatWarning(result.String())
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}
