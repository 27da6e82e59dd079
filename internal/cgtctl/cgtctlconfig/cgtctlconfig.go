// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cgtctlconfig provides configuration parsing and validation for cgtctl.
//
// Configuration is stored at ~/.config/cgtctl/config.yaml (or
// $CGTCTL_CONFIG_DIR/config.yaml). The input directory and output file are
// fixed configuration, not runtime flags.
package cgtctlconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bufdev/cgtctl/internal/standard/xos"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the configuration file within the config directory.
const ConfigFileName = "config.yaml"

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# Ledger conversion configuration.
ledger:
  # The directory containing Flex Query statement XML exports.
  #
  # Required. A leading ~ is expanded to the home directory.
  input_dir: "statements"
  # The CSV file the converted ledger is written to.
  #
  # Required. Not written when the ledger is empty.
  output_file: "trades.csv"
# IBKR Flex Web Service configuration.
#
# Optional. Only needed for "cgtctl download". Create a Flex Query at
# https://www.interactivebrokers.com under Performance & Reports >
# Flex Queries, with the Trades section and Account Information enabled.
#
# The Flex Web Service token must be set via the IBKR_TOKEN environment variable.
# ibkr:
#   query_id: ""
`

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// Ledger holds the conversion input/output configuration.
	Ledger ExternalLedgerConfig `yaml:"ledger"`
	// IBKR holds the optional Flex Web Service configuration.
	IBKR ExternalIBKRConfig `yaml:"ibkr"`
}

// ExternalLedgerConfig holds the conversion input/output configuration.
type ExternalLedgerConfig struct {
	// InputDir is the directory of statement XML exports.
	InputDir string `yaml:"input_dir"`
	// OutputFile is the ledger CSV file path.
	OutputFile string `yaml:"output_file"`
}

// ExternalIBKRConfig holds IBKR-specific configuration.
type ExternalIBKRConfig struct {
	// QueryID is the Flex Query ID.
	QueryID string `yaml:"query_id"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// InputDirPath is the directory of statement XML exports, with ~ expanded.
	InputDirPath string
	// OutputFilePath is the ledger CSV file path, with ~ expanded.
	OutputFilePath string
	// IBKRQueryID is the optional Flex Query ID for "cgtctl download".
	IBKRQueryID string
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
func NewConfig(externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	if externalConfig.Ledger.InputDir == "" {
		return nil, errors.New("ledger.input_dir is required")
	}
	if externalConfig.Ledger.OutputFile == "" {
		return nil, errors.New("ledger.output_file is required")
	}
	inputDirPath, err := xos.ExpandHome(externalConfig.Ledger.InputDir)
	if err != nil {
		return nil, err
	}
	outputFilePath, err := xos.ExpandHome(externalConfig.Ledger.OutputFile)
	if err != nil {
		return nil, err
	}
	return &Config{
		InputDirPath:   inputDirPath,
		OutputFilePath: outputFilePath,
		IBKRQueryID:    externalConfig.IBKR.QueryID,
	}, nil
}

// ConfigFilePath returns the path to the configuration file within the given config directory.
func ConfigFilePath(configDirPath string) string {
	return filepath.Join(configDirPath, ConfigFileName)
}

// ReadConfig reads and validates the configuration file from the given config directory.
// Returns a clear error message directing users to run "cgtctl config init" if the file is missing.
func ReadConfig(configDirPath string) (*Config, error) {
	filePath := ConfigFilePath(configDirPath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found at %s, run \"cgtctl config init\" to create one", filePath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	return NewConfig(externalConfig)
}

// InitConfig creates a new configuration file with a documented template.
// Creates the config directory if it does not exist.
// Returns the path to the created file, or an error if the file already exists.
func InitConfig(configDirPath string) (string, error) {
	filePath := ConfigFilePath(configDirPath)
	if _, err := os.Stat(filePath); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", filePath)
	}
	// Create the config directory if it does not exist.
	if err := os.MkdirAll(configDirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(configTemplate), 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}

// ValidateConfig reads and validates the configuration file from the given config directory.
func ValidateConfig(configDirPath string) error {
	_, err := ReadConfig(configDirPath)
	return err
}

// *** PRIVATE ***

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
