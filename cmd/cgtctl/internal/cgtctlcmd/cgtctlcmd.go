// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cgtctlcmd provides shared wiring for cgtctl commands
// (reading config, getting the IBKR token, constructing clients).
package cgtctlcmd

import (
	"errors"

	"buf.build/go/app/appext"
	"github.com/bufdev/cgtctl/internal/cgtctl/cgtctlconfig"
	"github.com/bufdev/cgtctl/internal/cgtctl/cgtctldownload"
	"github.com/bufdev/cgtctl/internal/pkg/flexwebservice"
)

// ibkrTokenEnvVar is the environment variable name for the IBKR Flex Web Service token.
const ibkrTokenEnvVar = "IBKR_TOKEN"

// ReadConfig reads and validates the configuration file from the appext container's
// config directory.
func ReadConfig(container appext.Container) (*cgtctlconfig.Config, error) {
	return cgtctlconfig.ReadConfig(container.ConfigDirPath())
}

// NewDownloader constructs a Downloader from the appext container by reading the
// config file, extracting the IBKR token from the environment, and creating the
// Flex Web Service client.
func NewDownloader(container appext.Container) (cgtctldownload.Downloader, error) {
	// Read and validate the configuration file.
	config, err := ReadConfig(container)
	if err != nil {
		return nil, err
	}
	if config.IBKRQueryID == "" {
		return nil, errors.New("ibkr.query_id is required in the configuration for download, see \"cgtctl config init\"")
	}
	// Read the IBKR token from the environment via the app container.
	ibkrToken := container.Env(ibkrTokenEnvVar)
	if ibkrToken == "" {
		return nil, errors.New("IBKR_TOKEN environment variable is required, set it to your IBKR Flex Web Service token (see \"cgtctl --help\" for details)")
	}
	// Extract the logger from the appext container.
	logger := container.Logger()
	// Construct the API client.
	flexWebServiceClient := flexwebservice.NewClient(logger)
	return cgtctldownload.NewDownloader(logger, ibkrToken, config, flexWebServiceClient), nil
}
