// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cgtctlcsv reads and writes the CGT ledger CSV file.
//
// The file has one header row (side,date,company,shares,price,charges,tax)
// followed by one record per ledger row in traversal order.
package cgtctlcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/bufdev/cgtctl/internal/cgtctl/cgtctlledger"
	"github.com/bufdev/cgtctl/internal/pkg/cliio"
)

// Write writes the header and rows to the writer.
func Write(writer io.Writer, rows []cgtctlledger.Row) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, cgtctlledger.Headers())
	for _, row := range rows {
		records = append(records, row.ToRecord())
	}
	return cliio.WriteCSVRecords(writer, records)
}

// WriteFile writes the ledger to the given file path.
//
// Callers are expected to skip the call entirely for an empty ledger; by
// policy no file is written when there are no rows.
func WriteFile(filePath string, rows []cgtctlledger.Row) error {
	return cliio.ForWriteFile(filePath, func(writer io.Writer) error {
		return Write(writer, rows)
	})
}

// Read reads a ledger back from the reader, verifying the header.
func Read(reader io.Reader) ([]cgtctlledger.Row, error) {
	csvReader := csv.NewReader(reader)
	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}
	var rows []cgtctlledger.Row
	for i := 0; ; i++ {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", i, err)
		}
		row, err := recordToRow(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadFile reads a ledger back from the given file path.
func ReadFile(filePath string) ([]cgtctlledger.Row, error) {
	var rows []cgtctlledger.Row
	if err := cliio.ForFile(filePath, func(reader io.Reader) error {
		var err error
		rows, err = Read(reader)
		return err
	}); err != nil {
		return nil, err
	}
	return rows, nil
}

// *** PRIVATE ***

func checkHeader(header []string) error {
	expected := cgtctlledger.Headers()
	if len(header) != len(expected) {
		return fmt.Errorf("unexpected header %v, want %v", header, expected)
	}
	for i, field := range header {
		if field != expected[i] {
			return fmt.Errorf("unexpected header %v, want %v", header, expected)
		}
	}
	return nil
}

func recordToRow(record []string) (cgtctlledger.Row, error) {
	if len(record) != len(cgtctlledger.Headers()) {
		return cgtctlledger.Row{}, fmt.Errorf("unexpected field count %d", len(record))
	}
	shares, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return cgtctlledger.Row{}, fmt.Errorf("parsing shares %q: %w", record[3], err)
	}
	price, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return cgtctlledger.Row{}, fmt.Errorf("parsing price %q: %w", record[4], err)
	}
	charges, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return cgtctlledger.Row{}, fmt.Errorf("parsing charges %q: %w", record[5], err)
	}
	tax, err := strconv.ParseInt(record[6], 10, 64)
	if err != nil {
		return cgtctlledger.Row{}, fmt.Errorf("parsing tax %q: %w", record[6], err)
	}
	return cgtctlledger.Row{
		Side:    record[0],
		Date:    record[1],
		Company: record[2],
		Shares:  shares,
		Price:   price,
		Charges: charges,
		Tax:     tax,
	}, nil
}
