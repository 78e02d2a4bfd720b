package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediathek/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cmd.Context(), cfg.JournalPath())
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if strings.TrimSpace(runID) != "" {
				outcomes, err := store.Outcomes(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if len(outcomes) == 0 {
					fmt.Fprintf(out, "No outcomes recorded for run %s\n", runID)
					return nil
				}
				rows := make([][]string, 0, len(outcomes))
				for _, outcome := range outcomes {
					rows = append(rows, []string{
						outcome.Mediaset, outcome.Kind, outcome.Result, outcome.Detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Mediaset", "Kind", "Result", "Detail"}, rows, nil))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				status := "running"
				if run.Success != nil {
					status = "failed"
					if *run.Success {
						status = "ok"
					}
				}
				finished := ""
				if run.FinishedAt != nil {
					finished = run.FinishedAt.Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{
					run.ID,
					run.Command,
					run.StartedAt.Format("2006-01-02 15:04"),
					finished,
					status,
					run.Summary,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Command", "Started", "Finished", "Status", "Summary"},
				rows, nil))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the per-mediaset outcomes of one run")
	return cmd
}
