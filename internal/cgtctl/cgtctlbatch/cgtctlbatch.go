// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cgtctlbatch runs the statement-to-ledger conversion over a
// directory of statement documents.
//
// Each *.xml file in the directory is parsed independently. A file that
// fails to parse is logged and skipped; it never aborts the batch. Files
// are processed in name order, and the final ledger order follows
// (file order, statement order within file, trade order within statement).
package cgtctlbatch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bufdev/cgtctl/internal/cgtctl/cgtctlledger"
	"github.com/bufdev/cgtctl/internal/pkg/flexstatement"
)

// ParseDirectory parses all *.xml statement documents in the directory.
//
// Malformed documents are logged with their path and skipped. Non-XML files
// are ignored. The returned documents are in file name order.
func ParseDirectory(logger *slog.Logger, dirPath string) ([]*flexstatement.FlexQueryResponse, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("reading statement directory: %w", err)
	}
	var responses []*flexstatement.FlexQueryResponse
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.Name()), ".xml") {
			continue
		}
		filePath := filepath.Join(dirPath, entry.Name())
		response, err := parseFile(filePath)
		if err != nil {
			// One malformed document must not abort the others.
			logger.Warn("skipping statement document", "path", filePath, "error", err)
			continue
		}
		responses = append(responses, response)
	}
	return responses, nil
}

// ConvertDirectory parses all statement documents in the directory and
// flattens them into one ordered ledger.
func ConvertDirectory(logger *slog.Logger, dirPath string) ([]cgtctlledger.Row, error) {
	responses, err := ParseDirectory(logger, dirPath)
	if err != nil {
		return nil, err
	}
	return cgtctlledger.Convert(responses), nil
}

// *** PRIVATE ***

func parseFile(filePath string) (*flexstatement.FlexQueryResponse, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return flexstatement.Parse(data)
}
