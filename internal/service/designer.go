package service

import (
	"context"

	"github.com/roamkit/tripcore/internal/adapter/llm"
	"github.com/roamkit/tripcore/internal/domain"
)

// StartDesignerSession starts a chat session against an itinerary, scoped
// to the designer instance cached for credential.
func (s *Service) StartDesignerSession(ctx context.Context, credential, itineraryRef string) (string, error) {
	return s.cache.GetOrCreate(credential).StartSession(ctx, itineraryRef)
}

// SendDesignerMessage runs one chat turn on the caller's designer instance.
func (s *Service) SendDesignerMessage(ctx context.Context, credential, sessionID, content string) (domain.ChatTurn, error) {
	return s.cache.GetOrCreate(credential).SendMessage(ctx, sessionID, content)
}

// SendDesignerMessageStream is the streaming variant of SendDesignerMessage.
func (s *Service) SendDesignerMessageStream(ctx context.Context, credential, sessionID, content string, callback llm.StreamCallback) (domain.ChatTurn, error) {
	return s.cache.GetOrCreate(credential).SendMessageStream(ctx, sessionID, content, callback)
}
