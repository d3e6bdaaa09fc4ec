package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/notecheck/internal/access"
	"github.com/Veraticus/notecheck/internal/auth"
	"github.com/Veraticus/notecheck/internal/cli"
	"github.com/Veraticus/notecheck/internal/config"
	"github.com/Veraticus/notecheck/internal/engine"
	"github.com/Veraticus/notecheck/internal/excel"
	"github.com/Veraticus/notecheck/internal/portal"
	"github.com/Veraticus/notecheck/internal/sheets"
	"github.com/Veraticus/notecheck/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the document compliance report",
		Long: `Sign in to Noteable, fetch every document written between --start and --end,
and write a compliance matrix with one row per MCR or CS client.

Missing credentials and dates are prompted for. When the portal asks for a
second factor, the code sent by text message is read from the terminal.`,
		Example: `  notecheck report --start 2024-01-01 --end 2024-01-31
  notecheck report --output ~/reports/january.xlsx --sheets
  notecheck report --tui`,
		RunE: runReport,
	}

	cmd.Flags().String("start", "", "first day of the report (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "last day of the report (YYYY-MM-DD)")
	cmd.Flags().StringP("output", "o", "", "xlsx file to write (default: report.xlsx)")
	cmd.Flags().String("email", "", "portal login email")
	cmd.Flags().Bool("sheets", false, "also write the report to Google Sheets")
	cmd.Flags().Bool("tui", false, "run the interactive terminal UI")
	cmd.Flags().Bool("fail-on-empty", false, "fail instead of writing an empty report")

	_ = viper.BindPFlag("portal.email", cmd.Flags().Lookup("email"))
	_ = viper.BindPFlag("report.fail_on_empty", cmd.Flags().Lookup("fail-on-empty"))

	return cmd
}

// reportDeps holds everything a report run is built from.
type reportDeps struct {
	checker  *access.Checker
	flow     *auth.Flow
	pipeline *engine.Pipeline
	outputs  []string
}

func buildReportDeps(cmd *cobra.Command, progress engine.Progress) (*reportDeps, error) {
	logger := slog.Default()

	accessCfg, err := config.LoadAccessConfig()
	if err != nil {
		return nil, err
	}
	checker, err := access.NewChecker(accessCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create access checker: %w", err)
	}

	portalCfg, err := config.LoadPortalConfig()
	if err != nil {
		return nil, err
	}
	client, err := portal.NewClient(portalCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create portal client: %w", err)
	}

	flow := auth.NewFlow(client, append(config.LoadAuthOptions(), auth.WithLogger(logger))...)
	fetcher := engine.NewFetcher(client, flow, logger)

	output, _ := cmd.Flags().GetString("output")
	excelCfg, err := config.LoadExcelConfig(output)
	if err != nil {
		return nil, err
	}
	excelWriter, err := excel.NewWriter(excelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create xlsx writer: %w", err)
	}

	renderers := []engine.Renderer{excelWriter}
	outputs := []string{excelWriter.Path()}

	if useSheets, _ := cmd.Flags().GetBool("sheets"); useSheets {
		sheetsCfg, sheetsErr := config.LoadSheetsConfig()
		if sheetsErr != nil {
			return nil, fmt.Errorf("google sheets is not configured (run 'notecheck auth sheets'): %w", sheetsErr)
		}
		sheetsWriter, sheetsErr := sheets.NewWriter(cmd.Context(), *sheetsCfg, logger)
		if sheetsErr != nil {
			return nil, fmt.Errorf("failed to create sheets writer: %w", sheetsErr)
		}
		renderers = append(renderers, sheetsWriter)
		outputs = append(outputs, "Google Sheets: "+sheetsCfg.SpreadsheetName)
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithConfig(config.LoadEngineConfig()),
	}
	if progress != nil {
		opts = append(opts, engine.WithProgress(progress))
	}

	pipeline, err := engine.NewPipeline(flow, fetcher, renderers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	return &reportDeps{
		checker:  checker,
		flow:     flow,
		pipeline: pipeline,
		outputs:  outputs,
	}, nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	creds := auth.Credentials{
		Email:          viper.GetString("portal.email"),
		Password:       viper.GetString("portal.password"),
		TimezoneOffset: portal.TimezoneOffset(time.Now()),
	}

	if useTUI, _ := cmd.Flags().GetBool("tui"); useTUI {
		return runReportTUI(cmd, creds, start, end)
	}

	handler := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	deps, err := buildReportDeps(cmd, cli.NewBuildProgress(os.Stderr))
	if err != nil {
		return err
	}

	warnIfHidden(ctx, deps.checker, os.Stderr)

	fmt.Fprintln(os.Stderr, cli.FormatTitle("Noteable Compliance Report"))

	prompter := cli.NewCLIPrompter(os.Stdin, os.Stderr)

	creds, err = prompter.Credentials(ctx, creds)
	if err != nil {
		prompter.ReportError(err)
		return interruptedOr(handler, err)
	}
	dateRange, err := prompter.DateRange(ctx, start, end)
	if err != nil {
		prompter.ReportError(err)
		return interruptedOr(handler, err)
	}

	result, err := deps.pipeline.Run(ctx, creds, prompter, dateRange)
	if err != nil {
		prompter.ReportError(err)
		return interruptedOr(handler, err)
	}

	fmt.Fprintln(os.Stdout, cli.RenderSummary(result, deps.outputs))
	return nil
}

func runReportTUI(cmd *cobra.Command, creds auth.Credentials, start, end string) error {
	deps, err := buildReportDeps(cmd, nil)
	if err != nil {
		return err
	}

	opts := []tui.Option{
		tui.WithCredentials(creds),
		tui.WithDateRange(start, end),
		tui.WithOutputs(deps.outputs...),
	}
	if viper.IsSet("tui.alt_screen") {
		opts = append(opts, tui.WithAltScreen(viper.GetBool("tui.alt_screen")))
	}

	result, err := tui.Run(cmd.Context(), tui.Deps{
		Auth:     deps.flow,
		Reporter: deps.pipeline,
		Access:   deps.checker,
	}, opts...)
	if err != nil {
		return err
	}

	if result != nil {
		fmt.Fprintln(os.Stdout, cli.RenderSummary(result, deps.outputs))
	}
	return nil
}

// warnIfHidden runs the access check. A hidden result is reported but does
// not stop the run.
func warnIfHidden(ctx context.Context, checker tui.AccessChecker, w io.Writer) {
	if checker.Check(ctx) == access.Visible {
		return
	}
	fmt.Fprintln(w, cli.FormatWarning("The access service did not enable this tool; continuing anyway."))
}

// interruptedOr swallows err when the user pressed Ctrl+C; the handler has
// already told them nothing was written.
func interruptedOr(handler *cli.InterruptHandler, err error) error {
	if handler.WasInterrupted() {
		return nil
	}
	return err
}
