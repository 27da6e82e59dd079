// Copyright 2026 Peter Edge
//
// All rights reserved.

package cgtctlcsv

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bufdev/cgtctl/internal/cgtctl/cgtctlledger"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	rows := []cgtctlledger.Row{
		{Side: cgtctlledger.SideSell, Date: "2024-01-05", Company: "AAPL", Shares: 10, Price: 150.0, Charges: 1.0},
		{Side: cgtctlledger.SideBuy, Date: "2024-02-10", Company: "VUSA", Shares: 12, Price: 68.4, Charges: 0},
		{Side: cgtctlledger.SideBuy, Date: "2024-05-20", Company: "MSFT", Shares: 5, Price: 320.0, Charges: 1.185},
	}
	var buffer bytes.Buffer
	require.NoError(t, Write(&buffer, rows))

	// The header row uses the exact downstream field names.
	firstLine, _, _ := strings.Cut(buffer.String(), "\n")
	require.Equal(t, "side,date,company,shares,price,charges,tax", firstLine)

	readRows, err := Read(&buffer)
	require.NoError(t, err)
	require.Equal(t, rows, readRows)
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()
	filePath := filepath.Join(t.TempDir(), "trades.csv")
	rows := []cgtctlledger.Row{
		{Side: cgtctlledger.SideSell, Date: "2024-01-05", Company: "AAPL", Shares: 10, Price: 118.5, Charges: 0.79},
	}
	require.NoError(t, WriteFile(filePath, rows))
	readRows, err := ReadFile(filePath)
	require.NoError(t, err)
	require.Equal(t, rows, readRows)
}

func TestReadUnexpectedHeader(t *testing.T) {
	t.Parallel()
	_, err := Read(strings.NewReader("side,date,company\nSELL,2024-01-05,AAPL\n"))
	require.ErrorContains(t, err, "unexpected header")
}

func TestReadEmpty(t *testing.T) {
	t.Parallel()
	_, err := Read(strings.NewReader(""))
	require.ErrorContains(t, err, "missing header")
}

func TestReadNonNumericShares(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	require.NoError(t, Write(&buffer, nil))
	buffer.WriteString("SELL,2024-01-05,AAPL,ten,150,1,0\n")
	_, err := Read(&buffer)
	require.ErrorContains(t, err, "parsing shares")
}

func TestWriteFileErrors(t *testing.T) {
	t.Parallel()
	// Writing into a missing directory surfaces the create error.
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "trades.csv"), nil)
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}
