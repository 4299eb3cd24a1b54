// SPDX-License-Identifier: AGPL-3.0-only

// Package provider wraps the third-party data APIs the bot posts about.
// Every fetch writes exactly one api_call_logs row, and failure is always
// surfaced to callers as a nil document rather than an error.
package provider

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pulsebot/pulsebot/internal/database"
	"github.com/pulsebot/pulsebot/internal/metrics"
	"github.com/sirupsen/logrus"
)

// FetchTimeout bounds every provider call.
const FetchTimeout = 10 * time.Second

type Client struct {
	httpClient http.Client
	db         *database.Queries
	log        *logrus.Logger
	metrics    *metrics.Collector
}

func NewClient(db *database.Queries, log *logrus.Logger, mc *metrics.Collector) *Client {
	return &Client{
		httpClient: http.Client{
			Timeout: FetchTimeout,
		},
		db:      db,
		log:     log,
		metrics: mc,
	}
}

// fetchJSON performs one GET and decodes the body as a loose document.
// Outcome, status code and latency are always persisted; the caller only
// sees the document or nil.
func (c *Client) fetchJSON(ctx context.Context, provider, endpoint string, params url.Values) map[string]any {
	start := time.Now()

	doc, status, err := c.doRequest(ctx, endpoint, params)
	elapsed := time.Since(start).Seconds()

	c.logCall(ctx, provider, endpoint, status, elapsed, err)
	c.metrics.RecordProviderCall(provider, err == nil, elapsed)

	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"provider": provider,
			"endpoint": endpoint,
			"status":   status,
		}).Error("Provider fetch failed")
		return nil
	}

	return doc
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) (map[string]any, int, error) {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("unexpected response: %v %v", resp.StatusCode, resp.Status)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response body: %v", err)
	}

	return doc, resp.StatusCode, nil
}

// logMissingKey records the credential-less terminal state. It counts as a
// fetch attempt, so it still writes a call-log row.
func (c *Client) logMissingKey(ctx context.Context, provider, endpoint string) {
	c.log.WithField("provider", provider).Error("API key not configured")
	c.logCall(ctx, provider, endpoint, 0, 0, fmt.Errorf("API key not configured"))
	c.metrics.RecordProviderCall(provider, false, 0)
}

func (c *Client) logCall(ctx context.Context, provider, endpoint string, status int, elapsed float64, callErr error) {
	errMsg := sql.NullString{}
	if callErr != nil {
		errMsg = sql.NullString{String: callErr.Error(), Valid: true}
	}

	_, err := c.db.CreateAPICallLog(ctx, database.CreateAPICallLogParams{
		ID:           uuid.New(),
		ProviderName: provider,
		Endpoint:     endpoint,
		StatusCode:   int32(status),
		ResponseTime: elapsed,
		ErrorMessage: errMsg,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		c.log.WithError(err).WithField("provider", provider).Error("Failed to persist API call log")
	}
}
