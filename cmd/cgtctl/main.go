// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/cgtctl/cmd/cgtctl/internal/command/config"
	"github.com/bufdev/cgtctl/cmd/cgtctl/internal/command/convert"
	"github.com/bufdev/cgtctl/cmd/cgtctl/internal/command/download"
	"github.com/bufdev/cgtctl/cmd/cgtctl/internal/command/ledger"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("cgtctl"))
}

// newRootCommand creates the root cgtctl command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:                 name,
		Short:               "Convert IBKR Flex Query statements into a capital-gains-tax ledger",
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			config.NewCommand("config", builder),
			convert.NewCommand("convert", builder),
			download.NewCommand("download", builder),
			ledger.NewCommand("ledger", builder),
		},
	}
}
