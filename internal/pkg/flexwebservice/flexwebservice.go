// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package flexwebservice provides an API client for the IBKR Flex Query Web Service.
//
// The Flex Query Web Service is a two-step REST API:
//  1. SendRequest: Submits a query and returns a reference code.
//  2. GetStatement: Polls with the reference code until the XML statement is ready.
//
// Both endpoints require a Flex Web Service token for authentication and
// a "Java" User-Agent header. Both endpoints may return transient errors
// (e.g., 1001 server busy, 1019 statement generating) which are retried
// with exponential backoff.
//
// The client returns the raw statement XML so it can be stored alongside
// manually exported statement files and parsed by the flexstatement package.
package flexwebservice

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bufdev/cgtctl/internal/pkg/backoff"
)

const (
	// sendRequestURL is the IBKR Flex Web Service endpoint for initiating a query.
	sendRequestURL = "https://ndcdyn.interactivebrokers.com/AccountManagement/FlexWebService/SendRequest"
	// getStatementURL is the IBKR Flex Web Service endpoint for retrieving a statement.
	getStatementURL = "https://ndcdyn.interactivebrokers.com/AccountManagement/FlexWebService/GetStatement"
	// userAgent is the required User-Agent header for IBKR (IBKR expects "Java").
	userAgent = "Java"
	// maxAttempts is the maximum number of attempts for each API call.
	maxAttempts = 10
	// initialRetryDelay is the initial delay before the first retry.
	initialRetryDelay = 2 * time.Second
	// maxRetryDelay is the maximum delay between retries.
	maxRetryDelay = 30 * time.Second
)

// Client is the interface for downloading Flex Query statement XML from IBKR.
type Client interface {
	// Download fetches the raw statement XML for the given query.
	//
	// The token is the Flex Web Service token generated in the IBKR portal.
	// The queryID identifies which Flex Query to execute.
	Download(ctx context.Context, token string, queryID string) ([]byte, error)
}

// NewClient creates a new Flex Query API client. The logger is required.
func NewClient(logger *slog.Logger) Client {
	return &client{
		httpClient: http.DefaultClient,
		logger:     logger,
	}
}

// *** PRIVATE ***

type client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// statementResponse is the XML response from both endpoints when the result
// is a status payload rather than the statement itself.
type statementResponse struct {
	XMLName       xml.Name `xml:"FlexStatementResponse"`
	Status        string   `xml:"Status"`
	ReferenceCode string   `xml:"ReferenceCode"`
	URL           string   `xml:"Url"`
	ErrorCode     string   `xml:"ErrorCode"`
	ErrorMessage  string   `xml:"ErrorMessage"`
}

// retryableErrorCodes are IBKR error codes that indicate a transient failure.
var retryableErrorCodes = map[string]bool{
	"1001": true, // Statement could not be generated at this time.
	"1019": true, // Statement is being generated, please try again shortly.
}

func (c *client) Download(ctx context.Context, token string, queryID string) ([]byte, error) {
	if token == "" {
		return nil, errors.New("token is required")
	}
	if queryID == "" {
		return nil, errors.New("query ID is required")
	}
	// Step 1: Send the request to get a reference code, with backoff on transient errors.
	referenceCode, err := c.sendRequest(ctx, token, queryID)
	if err != nil {
		return nil, fmt.Errorf("sending flex query request: %w", err)
	}
	c.logger.Info("flex query request sent", "reference_code", referenceCode)
	// Step 2: Poll for the statement XML using the reference code, with backoff.
	xmlData, err := c.getStatement(ctx, token, referenceCode)
	if err != nil {
		return nil, fmt.Errorf("getting flex query statement: %w", err)
	}
	return xmlData, nil
}

// sendRequest initiates a Flex Query and returns the reference code.
// Retries on transient IBKR errors with exponential backoff.
func (c *client) sendRequest(ctx context.Context, token string, queryID string) (string, error) {
	// Parameter order matches IBKR docs: t, q, v.
	reqURL := fmt.Sprintf("%s?t=%s&q=%s&v=3", sendRequestURL, token, queryID)
	return backoff.Retry(ctx, maxAttempts, initialRetryDelay, maxRetryDelay,
		func(ctx context.Context, attempt int) (string, bool, error) {
			if attempt > 0 {
				c.logger.Info("retrying send request", "attempt", attempt+1)
			}
			body, err := c.get(ctx, reqURL)
			if err != nil {
				return "", false, err
			}
			var sendResp statementResponse
			if err := xml.Unmarshal(body, &sendResp); err != nil {
				return "", false, fmt.Errorf("parsing send response: %w", err)
			}
			if sendResp.Status != "Success" {
				retryable := retryableErrorCodes[sendResp.ErrorCode]
				if retryable {
					c.logger.Warn("transient IBKR error, will retry", "code", sendResp.ErrorCode, "message", sendResp.ErrorMessage)
				}
				return "", retryable, fmt.Errorf("%s (code: %s)", sendResp.ErrorMessage, sendResp.ErrorCode)
			}
			return sendResp.ReferenceCode, false, nil
		},
	)
}

// getStatement polls the GetStatement endpoint until the data is ready.
// Retries on transient IBKR errors with exponential backoff.
func (c *client) getStatement(ctx context.Context, token string, referenceCode string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s?t=%s&q=%s&v=3", getStatementURL, token, referenceCode)
	return backoff.Retry(ctx, maxAttempts, initialRetryDelay, maxRetryDelay,
		func(ctx context.Context, attempt int) ([]byte, bool, error) {
			if attempt > 0 {
				c.logger.Info("waiting for flex query statement", "attempt", attempt+1)
			}
			body, err := c.get(ctx, reqURL)
			if err != nil {
				return nil, false, err
			}
			// A FlexStatementResponse payload here is a status response
			// (statement not ready, or a hard error); anything else is the
			// actual statement XML.
			bodyStr := strings.TrimSpace(string(body))
			if strings.HasPrefix(bodyStr, "<FlexStatementResponse") {
				var getResp statementResponse
				if err := xml.Unmarshal(body, &getResp); err != nil {
					return nil, false, fmt.Errorf("parsing get response: %w", err)
				}
				retryable := retryableErrorCodes[getResp.ErrorCode]
				if retryable {
					c.logger.Warn("transient IBKR error, will retry", "code", getResp.ErrorCode, "message", getResp.ErrorMessage)
				}
				return nil, retryable, fmt.Errorf("%s (code: %s)", getResp.ErrorMessage, getResp.ErrorCode)
			}
			return body, false, nil
		},
	)
}

// get performs a GET request with the IBKR-required User-Agent header and
// returns the response body.
func (c *client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	// IBKR requires the "Java" User-Agent header.
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
