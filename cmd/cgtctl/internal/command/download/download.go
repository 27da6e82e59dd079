// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package download implements the "download" command.
package download

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/cgtctl/cmd/cgtctl/internal/cgtctlcmd"
)

// NewCommand returns a new download command that fetches a statement via the
// IBKR Flex Query API into the input directory.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Download a Flex Query statement into the input directory",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(ctx context.Context, container appext.Container) error {
	// Construct the downloader using shared command wiring.
	downloader, err := cgtctlcmd.NewDownloader(container)
	if err != nil {
		return err
	}
	filePath, err := downloader.Download(ctx)
	if err != nil {
		return err
	}
	// Print the written file path so it can be piped to other tools.
	_, err = fmt.Fprintf(container.Stdout(), "%s\n", filePath)
	return err
}
