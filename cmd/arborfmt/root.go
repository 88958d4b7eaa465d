package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "arborfmt",
		Short:         "Validate, reformat, and benchmark JSON documents with arbor",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(cmd.Flags()); err != nil {
				return err
			}
			l, err := newLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			log = l.With(zap.String("run_id", runID()))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if log != nil {
				return log.Sync()
			}
			return nil
		},
	}

	cfg.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newValidateCmd())
	root.AddCommand(newFormatCmd())
	root.AddCommand(newBenchCmd())

	return root
}
