// Copyright 2026 Peter Edge
//
// All rights reserved.

package cgtctlconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name           string
		externalConfig ExternalConfig
		expectedErr    string
	}{
		{
			name: "valid",
			externalConfig: ExternalConfig{
				Version: "v1",
				Ledger: ExternalLedgerConfig{
					InputDir:   "statements",
					OutputFile: "trades.csv",
				},
			},
		},
		{
			name: "unsupported version",
			externalConfig: ExternalConfig{
				Version: "v2",
				Ledger: ExternalLedgerConfig{
					InputDir:   "statements",
					OutputFile: "trades.csv",
				},
			},
			expectedErr: "unsupported config version",
		},
		{
			name: "missing input dir",
			externalConfig: ExternalConfig{
				Version: "v1",
				Ledger: ExternalLedgerConfig{
					OutputFile: "trades.csv",
				},
			},
			expectedErr: "ledger.input_dir is required",
		},
		{
			name: "missing output file",
			externalConfig: ExternalConfig{
				Version: "v1",
				Ledger: ExternalLedgerConfig{
					InputDir: "statements",
				},
			},
			expectedErr: "ledger.output_file is required",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			config, err := NewConfig(testCase.externalConfig)
			if testCase.expectedErr != "" {
				require.ErrorContains(t, err, testCase.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "statements", config.InputDirPath)
			require.Equal(t, "trades.csv", config.OutputFilePath)
		})
	}
}

func TestReadConfig(t *testing.T) {
	t.Parallel()
	configDirPath := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(configDirPath, ConfigFileName),
		[]byte("version: v1\nledger:\n  input_dir: statements\n  output_file: trades.csv\nibkr:\n  query_id: \"123456\"\n"),
		0o644,
	))
	config, err := ReadConfig(configDirPath)
	require.NoError(t, err)
	require.Equal(t, "statements", config.InputDirPath)
	require.Equal(t, "trades.csv", config.OutputFilePath)
	require.Equal(t, "123456", config.IBKRQueryID)
}

func TestReadConfigUnknownField(t *testing.T) {
	t.Parallel()
	configDirPath := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(configDirPath, ConfigFileName),
		[]byte("version: v1\nledgerr: {}\n"),
		0o644,
	))
	_, err := ReadConfig(configDirPath)
	require.ErrorContains(t, err, "could not unmarshal as YAML")
}

func TestReadConfigNotFound(t *testing.T) {
	t.Parallel()
	_, err := ReadConfig(t.TempDir())
	require.ErrorContains(t, err, "cgtctl config init")
}

func TestInitConfig(t *testing.T) {
	t.Parallel()
	configDirPath := filepath.Join(t.TempDir(), "cgtctl")
	filePath, err := InitConfig(configDirPath)
	require.NoError(t, err)
	require.Equal(t, ConfigFilePath(configDirPath), filePath)
	// The template itself is a valid configuration.
	require.NoError(t, ValidateConfig(configDirPath))
	// A second init must not overwrite the existing file.
	_, err = InitConfig(configDirPath)
	require.ErrorContains(t, err, "already exists")
}
