// Package insights calls the summarization collaborator, which reads a
// de-identified projection of the registry and returns a narrative summary
// plus tagged findings.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"novareg/internal/model"
	"novareg/internal/payload"
)

// Insight categories drive presentation downstream; anything else in a
// response fails the shape check.
const (
	CategoryPositive = "positive"
	CategoryWarning  = "warning"
	CategoryAlert    = "alert"
)

type Insight struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type Report struct {
	Summary  string    `json:"summary"`
	Insights []Insight `json:"insights"`
}

// Digest is the projection sent to the collaborator. Internal ids, line
// numbers and estimate numbers stay home.
type Digest struct {
	VendorCode       string `json:"vendorCode"`
	CustomerName     string `json:"customerName"`
	Status           string `json:"status"`
	OrderDate        string `json:"orderDate"`
	ExpectedRecvDate string `json:"expectedRecvDate"`
	Description      string `json:"description"`
}

// Project maps orders to their outbound digests. Customer names reduce to
// their short display form, dropping any address suffix.
func Project(orders []model.Order) []Digest {
	out := make([]Digest, 0, len(orders))
	for _, o := range orders {
		out = append(out, Digest{
			VendorCode:       o.VendorCode,
			CustomerName:     o.ShortName(),
			Status:           o.Status,
			OrderDate:        o.OrderDate,
			ExpectedRecvDate: o.ExpectedRecvDate,
			Description:      o.Description,
		})
	}
	return out
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Report posts the digest and decodes the collaborator's reply. The reply
// goes through payload.JSONBlock and then a shape check; a malformed reply
// is an error the caller may retry.
func (c *Client) Report(ctx context.Context, digests []Digest) (*Report, error) {
	body, err := json.Marshal(map[string]any{"orders": digests})
	if err != nil {
		return nil, fmt.Errorf("marshal digest: %w", err)
	}
	url := fmt.Sprintf("%s/api/insights", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(raw))
	}

	block, err := payload.JSONBlock(string(raw))
	if err != nil {
		return nil, fmt.Errorf("insights response: %w", err)
	}
	var rep Report
	if err := json.Unmarshal([]byte(block), &rep); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if err := checkShape(&rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func checkShape(rep *Report) error {
	if rep.Summary == "" && len(rep.Insights) == 0 {
		return errors.New("insights response carries neither summary nor insights")
	}
	for _, in := range rep.Insights {
		switch in.Category {
		case CategoryPositive, CategoryWarning, CategoryAlert:
		default:
			return fmt.Errorf("insight category %q unknown", in.Category)
		}
	}
	return nil
}
