package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"shotlist/internal/fileutil"
	"shotlist/internal/handoff"
	"shotlist/internal/logging"
	"shotlist/internal/selection"
	"shotlist/internal/textutil"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var output outputFlags
	var padding int
	var excludes []string
	var concatPath string

	cmd := &cobra.Command{
		Use:   "plan <path>...",
		Short: "Build encoder input (sequence templates and a concat list) from paths",
		Long: "Classify the given paths, uncheck any --exclude paths, and print the\n" +
			"sequence templates and single-image list an encoder would receive.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.validate(); err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
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
			tree := selection.New(logger)
			if _, err := tree.Insert(result); err != nil {
				return err
			}
			if err := excludePaths(tree, excludes); err != nil {
				return err
			}
			if err := tree.ValidateUniformFormat(); err != nil {
				return err
			}

			width := cfg.Sequence.Padding
			if cmd.Flags().Changed("padding") {
				width = padding
			}
			plan, err := handoff.Build(selection.Extract(tree), handoff.Options{Padding: width})
			if err != nil {
				return err
			}

			if path := strings.TrimSpace(concatPath); path != "" {
				if err := fileutil.WriteFileAtomic(path, []byte(handoff.ConcatList(plan.Singles)), 0o644); err != nil {
					return fmt.Errorf("write concat list: %w", err)
				}
				logger.Info("concat list written",
					logging.String(logging.FieldPath, path),
					logging.Int("entries", len(plan.Singles)))
			}

			if done, err := output.write(cmd, plan); done || err != nil {
				return err
			}
			printPlan(cmd, plan)
			return nil
		},
	}
	output.register(cmd)
	cmd.Flags().IntVar(&padding, "padding", 0, "Frame number width for templates (0 derives it from the frames)")
	cmd.Flags().StringSliceVar(&excludes, "exclude", nil, "Path to leave unchecked (repeatable)")
	cmd.Flags().StringVar(&concatPath, "concat", "", "Write the single-image concat list to this file")
	return cmd
}

// excludePaths unchecks the nodes whose path matches one of paths. Unknown
// paths are an error so typos do not pass silently.
func excludePaths(tree *selection.Tree, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	want := make(map[string]string, len(paths))
	for _, path := range paths {
		want[selection.PathKey(path)] = path
	}
	var ids []selection.NodeID
	tree.Walk(func(node selection.Node, _ int) bool {
		if node.Path == "" {
			return true
		}
		key := selection.PathKey(node.Path)
		if _, ok := want[key]; ok {
			ids = append(ids, node.ID)
			delete(want, key)
		}
		return true
	})
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for _, path := range want {
			missing = append(missing, path)
		}
		sort.Strings(missing)
		return fmt.Errorf("exclude: not in the selection: %s", strings.Join(missing, ", "))
	}
	for _, id := range ids {
		if err := tree.Toggle(id, false); err != nil {
			return err
		}
	}
	return nil
}

func printPlan(cmd *cobra.Command, plan handoff.Plan) {
	out := cmd.OutOrStdout()
	if plan.Empty() {
		fmt.Fprintln(out, "Nothing checked")
		return
	}
	if len(plan.Sequences) > 0 {
		rows := make([][]string, 0, len(plan.Sequences))
		for _, seq := range plan.Sequences {
			rows = append(rows, []string{seq.Group, seq.Template, seq.Range.Summary(), seq.Format})
		}
		fmt.Fprintln(out, "Sequences")
		fmt.Fprintln(out, textutil.RenderTable([]string{"Group", "Template", "Frames", "Format"}, rows, nil))
	}
	if len(plan.Singles) > 0 {
		fmt.Fprintln(out, "Concat list")
		fmt.Fprint(out, handoff.ConcatList(plan.Singles))
	}
}
