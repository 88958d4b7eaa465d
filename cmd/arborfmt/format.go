package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arbor-json/arbor"
	"github.com/arbor-json/arbor/memres"
)

func newFormatCmd() *cobra.Command {
	var write bool
	var glob string
	var nonFinite string

	cmd := &cobra.Command{
		Use:   "format [files...]",
		Short: "Parse and reserialize JSON documents, normalizing their formatting",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if glob != "" {
				matches, err := filepath.Glob(glob)
				if err != nil {
					return fmt.Errorf("invalid --glob pattern: %w", err)
				}
				paths = append(paths, matches...)
			}
			if len(paths) == 0 {
				return fmt.Errorf("no input files (pass file arguments or --glob)")
			}
			if !write && len(paths) > 1 {
				return fmt.Errorf("formatting %d files to stdout would interleave output; pass --write", len(paths))
			}

			mode, err := parseNonFiniteMode(nonFinite)
			if err != nil {
				return err
			}
			return runFormat(paths, write, mode)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the formatted document back to each file instead of stdout")
	cmd.Flags().StringVar(&glob, "glob", "", "glob pattern selecting additional files to format")
	cmd.Flags().StringVar(&nonFinite, "non-finite", "null", "how to render NaN/Infinity: null, literal, string")

	return cmd
}

func parseNonFiniteMode(s string) (arbor.NonFiniteMode, error) {
	switch s {
	case "null", "":
		return arbor.NonFiniteAsNull, nil
	case "literal":
		return arbor.NonFiniteAsLiteral, nil
	case "string":
		return arbor.NonFiniteAsQuotedString, nil
	default:
		return 0, fmt.Errorf("unknown --non-finite mode %q", s)
	}
}

// runFormat fans out across paths with bounded concurrency, one arena-
// backed document build per file, the way a cobra subcommand here would
// use golang.org/x/sync/errgroup to cap fan-out the way arx-os-arxos and
// edirooss-zmux-server depend on the same errgroup/singleflight family for
// bounded concurrent work.
func runFormat(paths []string, write bool, nonFinite arbor.NonFiniteMode) error {
	parseOpts := arbor.ParseOptions{
		AllowComments: cfg.AllowComments,
		MaxDepth:      cfg.MaxDepth,
	}
	serOpts := arbor.SerializeOptions{NonFinite: nonFinite}

	g := new(errgroup.Group)
	g.SetLimit(cfg.Concurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			return formatOne(path, write, parseOpts, serOpts)
		})
	}
	return g.Wait()
}

func formatOne(path string, write bool, parseOpts arbor.ParseOptions, serOpts arbor.SerializeOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	handle := memres.NewHandle(memres.NewMonotonic())
	v, err := arbor.Parse(data, handle, parseOpts)
	if err != nil {
		log.Warn("format failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s: %w", path, err)
	}

	out := arbor.Serialize(v, serOpts)
	if !write {
		os.Stdout.Write(out)
		os.Stdout.Write([]byte("\n"))
		return nil
	}

	info, err := os.Stat(path)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, out, mode); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Info("formatted", zap.String("path", path), zap.Int("bytes", len(out)))
	return nil
}
