package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mediathek/internal/assembler"
	"mediathek/internal/library"
	"mediathek/internal/workflow"
)

const summaryRounding = 100 * time.Millisecond

// pipelineFlags carries the flag set shared by import, assemble and
// transcode.
type pipelineFlags struct {
	searchDirs     []string
	additionalDirs []string
	mode           string
	noPrompt       bool
	jpegPoster     bool

	untertyp            string
	aufnahmedatum       string
	zeitraum            string
	beschreibung        string
	notiz               string
	album               string
	fassungName         string
	fassungBeschreibung string
}

func (f *pipelineFlags) register(cmd *cobra.Command, withIntegration bool) {
	cmd.Flags().StringArrayVar(&f.searchDirs, "search-dir", nil, "Directory to scan instead of the configured sources (repeatable)")
	cmd.Flags().StringArrayVar(&f.additionalDirs, "add-dir", nil, "Additional directory to scan on top of the configured sources (repeatable)")
	cmd.Flags().BoolVarP(&f.noPrompt, "yes", "y", false, "Answer every overwrite prompt with yes")
	cmd.Flags().BoolVar(&f.jpegPoster, "jpeg-poster", false, "Also derive a Titelbild.jpg from PNG posters")
	cmd.Flags().StringVar(&f.untertyp, "untertyp", "", "Override the mediaset Untertyp (Ereignis or Rückblick)")
	cmd.Flags().StringVar(&f.aufnahmedatum, "aufnahmedatum", "", "Override the recording date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.zeitraum, "zeitraum", "", "Covered period for Rückblick mediasets")
	cmd.Flags().StringVar(&f.beschreibung, "beschreibung", "", "Override the description")
	cmd.Flags().StringVar(&f.notiz, "notiz", "", "Attach an operator note")
	cmd.Flags().StringVar(&f.album, "album", "", "Override the album")
	cmd.Flags().StringVar(&f.fassungName, "fassung-name", "", "Name of the film cut")
	cmd.Flags().StringVar(&f.fassungBeschreibung, "fassung-beschreibung", "", "Description of the film cut")
	if withIntegration {
		cmd.Flags().StringVar(&f.mode, "mode", "auto", "Integration mode: auto, overwrite or new-version")
	}
}

func (f *pipelineFlags) options(base workflow.Options) (workflow.Options, error) {
	base.SearchDirs = f.searchDirs
	base.AdditionalDirs = f.additionalDirs
	base.NoPrompt = f.noPrompt
	base.JPEGPoster = f.jpegPoster
	base.Overrides = assembler.Overrides{
		Untertyp:                f.untertyp,
		Aufnahmedatum:           f.aufnahmedatum,
		Zeitraum:                f.zeitraum,
		Beschreibung:            f.beschreibung,
		Notiz:                   f.notiz,
		Album:                   f.album,
		FilmfassungName:         f.fassungName,
		FilmfassungBeschreibung: f.fassungBeschreibung,
	}
	if f.mode != "" {
		mode, err := parseMode(f.mode)
		if err != nil {
			return base, err
		}
		base.Mode = mode
	}
	return base, nil
}

func parseMode(value string) (library.Mode, error) {
	switch library.Mode(value) {
	case library.ModeAuto, library.ModeOverwrite, library.ModeNewVersion:
		return library.Mode(value), nil
	default:
		return "", fmt.Errorf("unknown integration mode %q (use auto, overwrite or new-version)", value)
	}
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	flags := &pipelineFlags{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Assemble, transcode and integrate mediasets end to end",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(workflow.ImportOptions())
			if err != nil {
				return err
			}
			return runPipeline(ctx, cmd, opts)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newAssembleCommand(ctx *commandContext) *cobra.Command {
	flags := &pipelineFlags{}
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Probe and group source files without transcoding or integrating",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(workflow.Options{})
			if err != nil {
				return err
			}
			return runPipeline(ctx, cmd, opts)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newTranscodeCommand(ctx *commandContext) *cobra.Command {
	flags := &pipelineFlags{}
	cmd := &cobra.Command{
		Use:   "transcode",
		Short: "Assemble and supervise transcodes, stopping short of the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(workflow.Options{Transcode: true, Materialize: true})
			if err != nil {
				return err
			}
			return runPipeline(ctx, cmd, opts)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func runPipeline(ctx *commandContext, cmd *cobra.Command, opts workflow.Options) error {
	manager, err := ctx.manager()
	if err != nil {
		return err
	}
	runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := manager.OpenJournal(runCtx); err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer manager.Close()

	summary, err := manager.Run(runCtx, opts)
	if errors.Is(err, workflow.ErrInstanceRunning) {
		return err
	}
	if summary != nil {
		printSummary(cmd.OutOrStdout(), summary)
	}
	if err != nil {
		return err
	}
	if summary.ExitCode() != 0 {
		return fmt.Errorf("run finished with %d fatal failures", summary.Fatal)
	}
	return nil
}

func printSummary(out io.Writer, summary *workflow.Summary) {
	fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Duration.Round(summaryRounding))
	fmt.Fprintln(out, renderTable(
		[]string{"Probed", "Grouped", "Submitted", "Transcoded", "Materialized", "Integrated", "Skipped", "Failed"},
		[][]string{{
			fmt.Sprint(summary.Probed),
			fmt.Sprint(summary.Grouped),
			fmt.Sprint(summary.Submitted),
			fmt.Sprint(summary.Transcoded),
			fmt.Sprint(summary.Materialized),
			fmt.Sprint(summary.Integrated),
			fmt.Sprint(summary.Skipped),
			fmt.Sprint(summary.Failed),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	if len(summary.Outcomes) > 0 {
		rows := make([][]string, 0, len(summary.Outcomes))
		for _, outcome := range summary.Outcomes {
			rows = append(rows, []string{
				outcome.Title, outcome.Stage, outcome.Result, outcome.Detail,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Mediaset", "Stage", "Result", "Detail"},
			rows, nil,
		))
	}
	for _, warning := range summary.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
}
