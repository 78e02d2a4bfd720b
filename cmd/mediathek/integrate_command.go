package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediathek/internal/config"
	"mediathek/internal/mediaset"
)

func newIntegrateCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "integrate <mediaset-dir>",
		Short: "Integrate a single materialized mediaset directory into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseMode(modeFlag)
			if err != nil {
				return err
			}
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if issues := mediaset.Validate(dir); len(issues) > 0 {
				return fmt.Errorf("mediaset directory fails validation:\n%s", mediaset.IssuesText(issues))
			}
			manager, err := ctx.manager()
			if err != nil {
				return err
			}
			outcome, err := manager.Integrator().Integrate(dir, mode)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outcome.Created {
				fmt.Fprintf(out, "Created library slot %s (version %d)\n", outcome.Slot, outcome.Version)
				return nil
			}
			fmt.Fprintf(out, "Integrated into %s via %s (version %d)\n", outcome.Slot, outcome.Mode, outcome.Version)
			if outcome.ArchivedTo != "" {
				fmt.Fprintf(out, "Previous version archived to %s\n", outcome.ArchivedTo)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "auto", "Integration mode: auto, overwrite or new-version")
	return cmd
}
