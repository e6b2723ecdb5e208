// Package main provides the sporocarp CLI for playing a single audio file
// to completion on the default output device.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mycophonic/primordium/app"

	"github.com/mycophonic/sporocarp/version"
)

func main() {
	ctx := context.Background()
	app.New(ctx, version.Name())

	appl := &cli.Command{
		Name:      version.Name(),
		Usage:     "Audio playback cli",
		ArgsUsage: "<file>",
		Version:   version.Version() + " (" + version.Commit() + " - " + version.Date() + ")",
		Action:    runPlay,
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		if errors.Is(err, errInvalidArgCount) {
			_, _ = fmt.Fprintf(os.Stderr, "usage: %s <file>\n", version.Name())
		}

		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)

		os.Exit(exitCode(err))
	}
}
