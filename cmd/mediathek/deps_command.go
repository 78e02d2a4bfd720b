package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediathek/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and directory preconditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := preflight.CheckTools(cfg)
			toolRows := make([][]string, 0, len(statuses))
			missingRequired := false
			for _, status := range statuses {
				detail := status.Detail
				if status.Available {
					detail = status.Command
				}
				if !status.Available && !status.Optional {
					missingRequired = true
				}
				toolRows = append(toolRows, []string{
					status.Name,
					yesNo(status.Available),
					yesNo(!status.Optional),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Available", "Required", "Detail"}, toolRows, nil))

			results := preflight.RunAll(cfg)
			checkRows := make([][]string, 0, len(results))
			for _, result := range results {
				checkRows = append(checkRows, []string{
					result.Name, yesNo(result.Passed), result.Detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Passed", "Detail"}, checkRows, nil))

			if missingRequired {
				return fmt.Errorf("required tools are missing")
			}
			if !preflight.AllPassed(results) {
				return fmt.Errorf("preflight checks failed")
			}
			return nil
		},
	}
}
