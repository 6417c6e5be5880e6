package main

import (
	"os"

	"github.com/spf13/cobra"

	"shotlist/internal/session"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "session [path]...",
		Short: "Edit a selection interactively (type help for commands)",
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

			in := cmd.InOrStdin()
			interactive := false
			if f, ok := in.(*os.File); ok {
				interactive = session.IsTerminal(f)
			}
			sess := session.New(session.Options{
				Classifier:  classifier,
				Padding:     cfg.Sequence.Padding,
				Out:         cmd.OutOrStdout(),
				Interactive: interactive,
				Logger:      logger,
			})
			if len(args) > 0 {
				if err := sess.Add(cmd.Context(), args); err != nil {
					return err
				}
			}
			return sess.Run(cmd.Context(), in)
		},
	}
}
