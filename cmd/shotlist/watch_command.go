package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shotlist/internal/selection"
	"shotlist/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var scanExisting bool

	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Add new images from directories to a selection as they appear",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			out := cmd.OutOrStdout()
			tree := selection.New(logger)
			watcher, err := watch.New(watch.Options{
				Dirs:         args,
				Classifier:   classifier,
				Tree:         tree,
				Debounce:     cfg.WatchDebounce(),
				LockDir:      cfg.LockDir(),
				ScanExisting: scanExisting,
				Logger:       logger,
				OnBatch: func(batch watch.Batch) {
					printBatch(cmd, batch)
				},
			})
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(out, "Watching %d director(ies); press Ctrl+C to stop\n", len(args))
			if err := watcher.Run(runCtx); err != nil {
				return err
			}
			records := selection.Extract(tree)
			fmt.Fprintf(out, "Collected %d item(s) across %d node(s)\n", len(records), tree.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&scanExisting, "scan-existing", false, "Add images already present before watching")
	return cmd
}

func printBatch(cmd *cobra.Command, batch watch.Batch) {
	out := cmd.OutOrStdout()
	var dup *selection.DuplicatePathError
	if batch.Err != nil && !errors.As(batch.Err, &dup) {
		fmt.Fprintf(out, "error: %v\n", batch.Err)
	}
	if len(batch.Added) > 0 {
		fmt.Fprintf(out, "added %d group(s) and %d single image(s)\n", batch.Groups, batch.Singles)
	}
	for _, path := range batch.Duplicates {
		fmt.Fprintf(out, "already listed: %s\n", path)
	}
}
