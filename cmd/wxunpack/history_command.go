package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"wxunpack/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded unpack runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history ledger: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					run.Root,
					valueOrDash(run.MainPackage),
					strconv.Itoa(run.ArchiveCount),
					yesNo(run.Plugin),
					yesNo(run.OK),
					run.Elapsed.Round(time.Millisecond).String(),
				})
			}
			headers := []string{"ID", "Created", "Root", "Main Package", "Archives", "Plugin", "OK", "Elapsed"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the archives decoded by one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history ledger: %w", err)
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %d not found", id)
			}
			archives, err := store.Archives(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %d (%s) root=%s ok=%s\n", run.ID, run.SessionID, run.Root, yesNo(run.OK))
			rows := make([][]string, 0, len(archives))
			for i, archive := range archives {
				rows = append(rows, []string{strconv.Itoa(i + 1), archive})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Archive"}, rows, []columnAlignment{alignRight, alignLeft}))
			return nil
		},
	}
}
