package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediathek/internal/config"
	"mediathek/internal/media/probe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Probe a media file and show the derived metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			prober := probe.New(cfg.ExiftoolBinary(), cfg.FFprobeBinary(), logger)
			file, err := prober.Probe(cmd.Context(), path)
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Path", file.Path},
				{"Kind", file.Kind.String()},
				{"Size", humanize.IBytes(uint64(file.Size))},
				{"Created", file.CreatedAt.Format("2006-01-02 15:04:05 -0700")},
			}
			if file.TimezoneAssumed {
				rows = append(rows, []string{"Timezone", "assumed local"})
			}
			if file.Tags.Title != "" {
				rows = append(rows, []string{"Title", file.Tags.Title})
			}
			if file.Tags.Producer != "" {
				rows = append(rows, []string{"Producer", file.Tags.Producer})
			}
			if len(file.Tags.Keywords) > 0 {
				rows = append(rows, []string{"Keywords", strings.Join(file.Tags.Keywords, ", ")})
			}
			if file.Kind == probe.KindVideo {
				rows = append(rows, []string{"Codec", file.Video.Codec})
				if file.Video.Width > 0 || file.Video.Height > 0 {
					rows = append(rows, []string{"Resolution", fmt.Sprintf("%dx%d", file.Video.Width, file.Video.Height)})
				}
				if file.Video.BitRate != nil {
					rows = append(rows, []string{"Bit rate", fmt.Sprintf("%.1f Mbit/s", float64(*file.Video.BitRate)/1e6)})
				}
				if file.Video.Duration != nil {
					rows = append(rows, []string{"Duration", fmt.Sprintf("%.0f s", *file.Video.Duration)})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}
