package llm

import (
	"context"
	"fmt"
)

// MockClient is a mock implementation of LLMClient for testing and local
// runs without an upstream designer service.
type MockClient struct{}

// NewMockClient creates a new mock designer client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements LLMClient interface.
var _ LLMClient = (*MockClient)(nil)

// CreateChat returns a mock response.
func (m *MockClient) CreateChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{
		Message: ChatMessage{
			Role:    "assistant",
			Content: m.generateMockResponse(req),
		},
	}, nil
}

// CreateChatStream simulates a streaming response.
func (m *MockClient) CreateChatStream(ctx context.Context, req *ChatRequest, callback StreamCallback) (*ChatResponse, error) {
	content := m.generateMockResponse(req)

	for _, chunk := range splitIntoChunks(content, 10) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := callback(&StreamChunk{Delta: chunk}); err != nil {
			return nil, err
		}
	}

	return &ChatResponse{
		Message: ChatMessage{Role: "assistant", Content: content},
	}, nil
}

func (m *MockClient) generateMockResponse(req *ChatRequest) string {
	var lastUserMessage string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			lastUserMessage = req.Messages[i].Content
			break
		}
	}

	if lastUserMessage == "" {
		return "[MOCK] This is a mock response from the designer client."
	}
	if req.Itinerary != nil {
		return fmt.Sprintf("[MOCK] Looking at %q: received your message %q.",
			req.Itinerary.Title, truncate(lastUserMessage, 100))
	}
	return fmt.Sprintf("[MOCK] Received your message: %q. This is a mock response.", truncate(lastUserMessage, 100))
}

// splitIntoChunks splits a string into chunks of approximately the given size.
func splitIntoChunks(s string, chunkSize int) []string {
	if len(s) == 0 {
		return []string{""}
	}

	var chunks []string
	for i := 0; i < len(s); i += chunkSize {
		end := i + chunkSize
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[i:end])
	}
	return chunks
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
