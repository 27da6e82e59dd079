// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package convert implements the "convert" command.
package convert

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/cgtctl/cmd/cgtctl/internal/cgtctlcmd"
	"github.com/bufdev/cgtctl/internal/cgtctl/cgtctlbatch"
	"github.com/bufdev/cgtctl/internal/cgtctl/cgtctlcsv"
)

// NewCommand returns a new convert command that converts statement XML files
// into the ledger CSV file.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Convert statement XML files into the CGT ledger CSV file",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(_ context.Context, container appext.Container) error {
	config, err := cgtctlcmd.ReadConfig(container)
	if err != nil {
		return err
	}
	logger := container.Logger()
	rows, err := cgtctlbatch.ConvertDirectory(logger, config.InputDirPath)
	if err != nil {
		return err
	}
	// By policy no file is written for an empty ledger.
	if len(rows) == 0 {
		logger.Info("no trades to write", "input_dir", config.InputDirPath)
		return nil
	}
	if err := cgtctlcsv.WriteFile(config.OutputFilePath, rows); err != nil {
		return err
	}
	logger.Info("ledger written", "count", len(rows), "path", config.OutputFilePath)
	return nil
}
