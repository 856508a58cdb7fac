// Package importer is the HTTP client for the external PDF import
// collaborator. Extraction happens upstream; this client only ferries the
// document and returns the proposed itinerary JSON.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the import collaborator.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new import client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute, // PDF extraction can be slow
		},
	}
}

// ImportPDF sends a PDF and returns the raw itinerary document proposed by
// the collaborator. The caller validates and stores it.
func (c *Client) ImportPDF(ctx context.Context, pdf []byte) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/import/pdf", bytes.NewReader(pdf))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/pdf")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call importer: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read importer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("importer returned status %d: %s", resp.StatusCode, string(body))
	}

	var wrapper struct {
		Itinerary json.RawMessage `json:"itinerary"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse importer response: %w", err)
	}
	if len(wrapper.Itinerary) == 0 {
		return nil, fmt.Errorf("importer response missing itinerary")
	}
	return wrapper.Itinerary, nil
}
