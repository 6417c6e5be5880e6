package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shotlist/internal/deps"
	"shotlist/internal/textutil"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external binaries (ffprobe, ffmpeg)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(cmd.Context(), deps.Requirements(cfg))
			statuses = append(statuses, deps.CheckFFmpegForProbe(cmd.Context(), cfg.FFprobeBinary()))

			if jsonOutput {
				if err := writeJSON(cmd, statuses); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(statuses))
				for _, status := range statuses {
					state := textutil.Ternary(status.Available, "ok", "missing")
					detail := status.Version
					if !status.Available {
						detail = status.Detail
					}
					rows = append(rows, []string{status.Name, status.Command, state, yesNo(status.Optional), detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), textutil.RenderTable(
					[]string{"Name", "Command", "Status", "Optional", "Detail"}, rows, nil))
			}

			var missing []string
			for _, status := range statuses {
				if !status.Available && !status.Optional {
					missing = append(missing, status.Name)
				}
			}
			if len(missing) > 0 {
				return errors.New("missing required dependencies: " + strings.Join(missing, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	return cmd
}
