// Package simtrader provides a Go SDK for the simtrader-server API.
package simtrader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client talks to a running simtrader-server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("simtrader: server returned %d: %s", e.StatusCode, e.Message)
}

// Strategies returns the names of the strategies the server can run.
func (c *Client) Strategies(ctx context.Context) ([]string, error) {
	var body struct {
		Strategies []string `json:"strategies"`
	}
	if err := c.get(ctx, "/api/strategies", &body); err != nil {
		return nil, err
	}
	return body.Strategies, nil
}

// ListRuns returns stored run summaries, most recent first. A non-positive
// limit uses the server default.
func (c *Client) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	path := "/api/runs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var body struct {
		Runs []RunSummary `json:"runs"`
	}
	if err := c.get(ctx, path, &body); err != nil {
		return nil, err
	}
	return body.Runs, nil
}

// GetRun returns a stored run, including its trade ledger.
func (c *Client) GetRun(ctx context.Context, id int64) (*RunDetail, error) {
	var detail RunDetail
	if err := c.get(ctx, "/api/runs/"+strconv.FormatInt(id, 10), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Backtest runs a backtest on the server and returns the stored result.
func (c *Client) Backtest(ctx context.Context, req BacktestRequest) (*BacktestResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("simtrader: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/backtest", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp BacktestResponse
	if err := c.do(httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = string(data)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("simtrader: decoding response: %w", err)
	}
	return nil
}
