package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/roamkit/tripcore/internal/domain"
)

// Client calls the upstream trip designer service over HTTP. One Client is
// bound to one credential, set as a bearer token on every request.
type Client struct {
	baseURL    string
	credential string
	maxRetries int
	httpClient *http.Client
}

// NewClient creates a designer client for one credential.
func NewClient(baseURL, credential string, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		credential: credential,
		maxRetries: maxRetries,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.credential)
}

// retryable reports whether an upstream HTTP status is worth retrying.
// Network-level failures are always retried.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * 200 * time.Millisecond
}

// CreateChat sends a chat request, retrying transient failures a bounded
// number of times with exponential backoff before surfacing the error.
func (c *Client) CreateChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		attempts++
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff(attempt - 1)):
			}
			log.Printf("WARN: retrying designer chat request (attempt %d): %v", attempt+1, lastErr)
		}

		resp, err := c.post(ctx, "/v1/designer/chat", body)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response: %w", readErr)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("designer API error [%d]: %s", resp.StatusCode, string(respBody))
			if !retryable(resp.StatusCode) {
				break
			}
			continue
		}

		var result ChatResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return &result, nil
	}

	return nil, &domain.UpstreamError{Attempts: attempts, Err: lastErr}
}

// CreateChatStream sends a streaming chat request. Chunks arrive as
// `data: {json}` lines terminated by `data: [DONE]`. Connection failures
// are retried only before the first chunk is delivered.
func (c *Client) CreateChatStream(ctx context.Context, req *ChatRequest, callback StreamCallback) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		attempts++
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff(attempt - 1)):
			}
		}

		resp, err := c.post(ctx, "/v1/designer/chat/stream", body)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("designer API error [%d]: %s", resp.StatusCode, string(respBody))
			if !retryable(resp.StatusCode) {
				break
			}
			continue
		}

		final, streamErr := c.readStream(ctx, resp.Body, callback)
		resp.Body.Close()
		if streamErr != nil {
			// Mid-stream failures are not retried: chunks were already
			// delivered to the caller.
			return nil, streamErr
		}
		return final, nil
	}

	return nil, &domain.UpstreamError{Attempts: attempts, Err: lastErr}
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func (c *Client) readStream(ctx context.Context, body io.Reader, callback StreamCallback) (*ChatResponse, error) {
	reader := bufio.NewReader(body)
	final := &ChatResponse{Message: ChatMessage{Role: string(domain.TurnRoleAssistant)}}
	var content strings.Builder

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read stream: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed chunks
			continue
		}

		content.WriteString(chunk.Delta)
		if len(chunk.ItineraryUpdate) > 0 {
			final.ItineraryUpdate = chunk.ItineraryUpdate
		}
		if err := callback(&chunk); err != nil {
			return nil, err
		}
	}

	final.Message.Content = content.String()
	return final, nil
}
