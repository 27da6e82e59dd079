// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cgtctldownload provides the download orchestrator for statement XML.
//
// Downloaded statements are stored as timestamped files in the configured
// input directory, alongside manually exported statement files, so the
// conversion pipeline picks them up on the next run.
package cgtctldownload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bufdev/cgtctl/internal/cgtctl/cgtctlconfig"
	"github.com/bufdev/cgtctl/internal/pkg/flexwebservice"
)

// statementFileTimeFormat is the timestamp layout used in downloaded file names.
const statementFileTimeFormat = "20060102T150405"

// Downloader is the interface for downloading statement XML into the input directory.
type Downloader interface {
	// Download fetches a statement via the Flex Query API and stores it in the
	// input directory, returning the path of the written file.
	Download(ctx context.Context) (string, error)
}

// NewDownloader creates a new Downloader with all required dependencies.
// The ibkrToken is the Flex Web Service token from the IBKR_TOKEN environment variable.
func NewDownloader(
	logger *slog.Logger,
	ibkrToken string,
	config *cgtctlconfig.Config,
	flexWebServiceClient flexwebservice.Client,
) Downloader {
	return &downloader{
		logger:               logger,
		ibkrToken:            ibkrToken,
		config:               config,
		flexWebServiceClient: flexWebServiceClient,
	}
}

// *** PRIVATE ***

type downloader struct {
	logger               *slog.Logger
	ibkrToken            string
	config               *cgtctlconfig.Config
	flexWebServiceClient flexwebservice.Client
}

func (d *downloader) Download(ctx context.Context) (string, error) {
	// Step 1: Create the input directory if needed.
	if err := os.MkdirAll(d.config.InputDirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating input directory: %w", err)
	}
	d.logger.Info("input directory ready", "path", d.config.InputDirPath)
	// Step 2: Fetch the raw statement XML.
	d.logger.Info("downloading flex query statement")
	xmlData, err := d.flexWebServiceClient.Download(ctx, d.ibkrToken, d.config.IBKRQueryID)
	if err != nil {
		return "", fmt.Errorf("downloading flex query statement: %w", err)
	}
	// Step 3: Store the statement with a timestamped name.
	fileName := fmt.Sprintf("flex_%s.xml", time.Now().Format(statementFileTimeFormat))
	filePath := filepath.Join(d.config.InputDirPath, fileName)
	if err := os.WriteFile(filePath, xmlData, 0o644); err != nil {
		return "", fmt.Errorf("writing statement file: %w", err)
	}
	d.logger.Info("statement written", "path", filePath, "bytes", len(xmlData))
	return filePath, nil
}
