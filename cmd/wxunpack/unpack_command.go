package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wxunpack/internal/config"
	"wxunpack/internal/history"
	"wxunpack/internal/logging"
	"wxunpack/internal/unpacker"
)

func newUnpackCommand(ctx *commandContext) *cobra.Command {
	var keepOld bool
	var includeFramework bool

	cmd := &cobra.Command{
		Use:   "unpack [path]",
		Short: "Unpack archives from a file or directory",
		Long: "Unpack decodes every .wxapkg archive reachable from the given path,\n" +
			"relocates split subpackages, merges everything into the main package,\n" +
			"and writes a developer-tool project descriptor.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if keepOld {
				cfg.Unpack.CleanOld = false
			}
			if includeFramework {
				cfg.Unpack.FilterFramework = false
			}

			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			report, err := unpacker.NewService(cfg, logger).Run(runCtx, args[0])
			if err != nil {
				return err
			}

			if cfg.Unpack.History {
				recordRun(cmd, logger, cfg, report)
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Root", report.Root},
				{"Main package", valueOrDash(report.MainPackage)},
				{"Plugin", yesNo(report.Plugin)},
				{"Archives", strconv.Itoa(len(report.Archives))},
				{"Elapsed", report.Elapsed.Round(time.Millisecond).String()},
				{"Session", report.SessionID},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
			if !report.OK {
				return fmt.Errorf("no archives were unpacked under %s", report.Root)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepOld, "keep-old", false, "Keep existing unpack directories instead of removing them first")
	cmd.Flags().BoolVar(&includeFramework, "include-framework", false, "Also unpack bundled runtime framework archives")
	return cmd
}

// recordRun persists the run into the history ledger. Ledger failures are
// logged, never fatal.
func recordRun(cmd *cobra.Command, logger *slog.Logger, cfg *config.Config, report *unpacker.Report) {
	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn("open history ledger", logging.Error(err))
		return
	}
	defer store.Close()

	_, err = store.RecordRun(cmd.Context(), history.Run{
		SessionID:   report.SessionID,
		Root:        report.Root,
		MainPackage: report.MainPackage,
		Plugin:      report.Plugin,
		OK:          report.OK,
		Elapsed:     report.Elapsed,
	}, report.Archives)
	if err != nil {
		logger.Warn("record run", logging.Error(err))
	}
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
