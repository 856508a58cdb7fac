// Package llm provides the client abstraction for the external trip
// designer LLM collaborator.
package llm

import (
	"context"
	"encoding/json"

	"github.com/roamkit/tripcore/internal/domain"
)

// ChatMessage is one turn of conversation context sent upstream.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries the session history plus the referenced itinerary as
// context for the designer model.
type ChatRequest struct {
	Messages  []ChatMessage     `json:"messages"`
	Itinerary *domain.Itinerary `json:"itinerary,omitempty"`
}

// ChatResponse is the designer model's reply. ItineraryUpdate, when set, is
// a full replacement document the model proposes; it is validated like any
// direct write before being applied.
type ChatResponse struct {
	Message         ChatMessage     `json:"message"`
	ItineraryUpdate json.RawMessage `json:"itinerary_update,omitempty"`
}

// StreamChunk is one incremental piece of a streaming reply.
type StreamChunk struct {
	Delta           string          `json:"delta,omitempty"`
	ItineraryUpdate json.RawMessage `json:"itinerary_update,omitempty"`
}

// StreamCallback is called for each chunk in a streaming response.
type StreamCallback func(chunk *StreamChunk) error

// LLMClient defines the designer collaborator operations. One client is
// bound to one upstream credential.
type LLMClient interface {
	// CreateChat sends a chat request (non-streaming).
	CreateChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// CreateChatStream sends a streaming chat request. The callback is
	// called for each chunk; the assembled final response is returned.
	CreateChatStream(ctx context.Context, req *ChatRequest, callback StreamCallback) (*ChatResponse, error)
}

// Factory constructs one LLMClient per upstream credential.
type Factory interface {
	ForCredential(credential string) LLMClient
}

// Ensure Client implements LLMClient interface.
var _ LLMClient = (*Client)(nil)
