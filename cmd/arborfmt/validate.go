package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arbor-json/arbor"
	"github.com/arbor-json/arbor/memres"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Parse each file and report the first syntax error, if any",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
	return cmd
}

func runValidate(paths []string) error {
	opts := arbor.ParseOptions{
		AllowComments: cfg.AllowComments,
		MaxDepth:      cfg.MaxDepth,
	}

	failed := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("reading file", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}

		handle := memres.NewHandle(memres.NewDefault())
		if _, err := arbor.Parse(data, handle, opts); err != nil {
			fmt.Printf("%s: %v\n", path, err)
			log.Warn("validation failed", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		log.Debug("validated", zap.String("path", path))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(paths))
	}
	fmt.Printf("%d file(s) valid\n", len(paths))
	return nil
}
