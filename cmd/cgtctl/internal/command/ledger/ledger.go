// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package ledger implements the "ledger" command.
package ledger

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/cgtctl/cmd/cgtctl/internal/cgtctlcmd"
	"github.com/bufdev/cgtctl/internal/cgtctl/cgtctlbatch"
	"github.com/bufdev/cgtctl/internal/cgtctl/cgtctlledger"
	"github.com/bufdev/cgtctl/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

// formatFlagName is the flag name for the output format.
const formatFlagName = "format"

// NewCommand returns a new ledger command that prints the converted ledger to stdout.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Print the converted CGT ledger to stdout",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Format is the output format (table, csv, json).
	Format string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Format, formatFlagName, "table", "Output format (table, csv, json)")
}

func run(_ context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	config, err := cgtctlcmd.ReadConfig(container)
	if err != nil {
		return err
	}
	rows, err := cgtctlbatch.ConvertDirectory(container.Logger(), config.InputDirPath)
	if err != nil {
		return err
	}
	// Write output in the requested format.
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable:
		tableRows := make([][]string, 0, len(rows))
		for _, row := range rows {
			tableRows = append(tableRows, row.ToRecord())
		}
		return cliio.WriteTable(writer, cgtctlledger.Headers(), tableRows)
	case cliio.FormatCSV:
		records := make([][]string, 0, len(rows)+1)
		records = append(records, cgtctlledger.Headers())
		for _, row := range rows {
			records = append(records, row.ToRecord())
		}
		return cliio.WriteCSVRecords(writer, records)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, rows...)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}
