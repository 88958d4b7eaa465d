// Command arborfmt is a batch CLI over the arbor JSON library: validate
// documents, reformat them, or benchmark the parser/serializer, the way
// MacroPower-x/cmd/magicschema and arx-os-arxos/cmd/arx structure a small
// cobra command tree over a library package.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/arbor-json/arbor/cmd/arborfmt/internal/config"
)

var (
	// Version is stamped at build time via -ldflags; dev by default.
	Version = "dev"

	cfg = config.NewConfig()
	log *zap.Logger
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if log != nil {
			log.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
