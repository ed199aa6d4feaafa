// Package extract calls the document extraction collaborator, which turns
// an uploaded purchase-order file (PDF, image, spreadsheet) into raw order
// records for normalization.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"novareg/internal/normalize"
	"novareg/internal/payload"
)

type Client struct {
	baseURL string
	client  *http.Client
}

// Result is the decoded extraction response. The collaborator wraps it in
// prose often enough that the body goes through payload.JSONBlock first.
type Result struct {
	Orders []normalize.Record `json:"orders"`
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Extract posts the file bytes and returns the raw records found in it.
// A response carrying no parsable JSON object is an error, not an empty
// result; the caller decides whether that fails the whole import.
func (c *Client) Extract(ctx context.Context, data []byte, mime string) ([]normalize.Record, error) {
	url := fmt.Sprintf("%s/api/extract", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mime)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(body))
	}

	block, err := payload.JSONBlock(string(body))
	if err != nil {
		return nil, fmt.Errorf("extract response: %w", err)
	}
	var res Result
	if err := json.Unmarshal([]byte(block), &res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return res.Orders, nil
}
