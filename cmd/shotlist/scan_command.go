package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shotlist/internal/sequence"
	"shotlist/internal/textutil"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var output outputFlags

	cmd := &cobra.Command{
		Use:   "scan <path>...",
		Short: "Classify files and directories into shot groups and single images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.validate(); err != nil {
				return err
			}
			classifier, cleanup, err := ctx.newClassifier(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := classifier.Classify(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("classify: %w", err)
			}
			if done, err := output.write(cmd, result); done || err != nil {
				return err
			}
			printScanResult(cmd, result)
			return nil
		},
	}
	output.register(cmd)
	return cmd
}

func printScanResult(cmd *cobra.Command, result sequence.Result) {
	out := cmd.OutOrStdout()
	if result.Empty() {
		fmt.Fprintln(out, "No images found")
		return
	}

	if len(result.Groups) > 0 {
		rows := make([][]string, 0, len(result.Groups))
		for _, group := range result.Groups {
			if len(group.Members) == 0 {
				continue
			}
			first := group.Members[0]
			rows = append(rows, []string{
				group.Key,
				strconv.Itoa(len(group.Members)),
				frameRangeCell(group),
				first.Format,
				first.ImageSize,
			})
		}
		fmt.Fprintln(out, "Shot groups")
		fmt.Fprintln(out, textutil.RenderTable(
			[]string{"Group", "Frames", "Range", "Format", "Size"},
			rows,
			[]textutil.Align{textutil.AlignLeft, textutil.AlignRight, textutil.AlignLeft, textutil.AlignLeft, textutil.AlignRight},
		))
	}

	if len(result.Singles) > 0 {
		rows := make([][]string, 0, len(result.Singles))
		for _, entry := range result.Singles {
			rows = append(rows, []string{entry.FileName, entry.Format, entry.ImageSize, entry.FileSize, entry.Path})
		}
		fmt.Fprintln(out, "Single images")
		fmt.Fprintln(out, textutil.RenderTable(
			[]string{"File", "Format", "Size", "File Size", "Path"},
			rows,
			[]textutil.Align{textutil.AlignLeft, textutil.AlignLeft, textutil.AlignRight, textutil.AlignRight},
		))
	}
}

// frameRangeCell summarizes a group's frames, or explains why they cannot
// be encoded as one sequence.
func frameRangeCell(group *sequence.ShotGroup) string {
	frames, err := sequence.ValidateFrameRange(sequence.FrameTokens(group.Paths()))
	if err == nil {
		return frames.Summary()
	}
	var gap *sequence.DiscontinuousSequenceError
	if errors.As(err, &gap) {
		return fmt.Sprintf("%d-%d, %d missing", gap.First, gap.Last, gap.MissingCount)
	}
	return err.Error()
}
