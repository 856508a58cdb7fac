package designer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/roamkit/tripcore/internal/adapter/llm"
	"github.com/roamkit/tripcore/internal/domain"
	"github.com/roamkit/tripcore/internal/session"
	"github.com/roamkit/tripcore/internal/store"
)

// Orchestrator is one cached designer service instance. It owns its session
// registry exclusively: sessions created here are invisible to instances
// cached under other credentials.
type Orchestrator struct {
	sessions session.Store
	itins    store.Store
	client   llm.LLMClient
}

// NewOrchestrator wires a designer instance.
func NewOrchestrator(sessions session.Store, itins store.Store, client llm.LLMClient) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		itins:    itins,
		client:   client,
	}
}

// Sessions exposes the owned registry.
func (o *Orchestrator) Sessions() session.Store {
	return o.sessions
}

// StartSession creates a session against an existing itinerary.
func (o *Orchestrator) StartSession(ctx context.Context, itineraryRef string) (string, error) {
	if _, err := o.itins.Get(ctx, itineraryRef); err != nil {
		return "", fmt.Errorf("cannot start session: %w", err)
	}
	return o.sessions.Create(itineraryRef), nil
}

// SendMessage runs one chat turn: append the user turn, call the designer
// model with the history and referenced itinerary, append the assistant
// turn, and apply any proposed itinerary update through the validated
// store write path.
func (o *Orchestrator) SendMessage(ctx context.Context, sessionID, content string) (domain.ChatTurn, error) {
	return o.runTurn(ctx, sessionID, content, func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
		return o.client.CreateChat(ctx, req)
	})
}

// SendMessageStream is the streaming variant of SendMessage. Chunks are
// forwarded to callback as they arrive; the completed assistant turn is
// returned once the stream finishes.
func (o *Orchestrator) SendMessageStream(ctx context.Context, sessionID, content string, callback llm.StreamCallback) (domain.ChatTurn, error) {
	return o.runTurn(ctx, sessionID, content, func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
		return o.client.CreateChatStream(ctx, req, callback)
	})
}

type chatFunc func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

func (o *Orchestrator) runTurn(ctx context.Context, sessionID, content string, chat chatFunc) (domain.ChatTurn, error) {
	// The lease is held for the whole turn so concurrent messages to the
	// same session serialize instead of interleaving history.
	lease, err := o.sessions.Acquire(sessionID)
	if err != nil {
		return domain.ChatTurn{}, err
	}
	defer lease.Release()

	s := lease.Session()

	itin, err := o.itins.Get(ctx, s.ItineraryRef)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ChatTurn{}, fmt.Errorf("failed to load itinerary: %w", err)
		}
		// The referenced record disappeared since the session started; the
		// model just gets no itinerary context.
		log.Printf("WARN: session %s references missing itinerary %s", sessionID, s.ItineraryRef)
		itin = nil
	}

	userTurn := domain.ChatTurn{
		Role:      domain.TurnRoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	lease.Append(userTurn)

	req := &llm.ChatRequest{
		Messages:  historyToMessages(append(s.History, userTurn)),
		Itinerary: itin,
	}

	resp, err := chat(ctx, req)
	if err != nil {
		// Cancelled or failed turns append nothing for the assistant; the
		// history holds only complete turns.
		return domain.ChatTurn{}, err
	}

	assistantTurn := domain.ChatTurn{
		Role:      domain.TurnRoleAssistant,
		Content:   resp.Message.Content,
		CreatedAt: time.Now(),
	}
	lease.Append(assistantTurn)

	if len(resp.ItineraryUpdate) > 0 {
		if err := o.applyUpdate(ctx, itin, s.ItineraryRef, resp.ItineraryUpdate); err != nil {
			return assistantTurn, err
		}
	}

	return assistantTurn, nil
}

// applyUpdate writes a model-proposed itinerary through the store's
// validated path. The model cannot change the record's identity or
// ownership; a proposal violating schema invariants is rejected and the
// validation error surfaces to the caller.
func (o *Orchestrator) applyUpdate(ctx context.Context, current *domain.Itinerary, itineraryRef string, raw json.RawMessage) error {
	var proposed domain.Itinerary
	if err := json.Unmarshal(raw, &proposed); err != nil {
		return fmt.Errorf("designer proposed unparseable itinerary update: %w", err)
	}

	proposed.ID = itineraryRef
	if current != nil {
		proposed.CreatedBy = current.CreatedBy
	}

	if err := o.itins.Put(ctx, &proposed); err != nil {
		if verr, ok := domain.AsValidationError(err); ok {
			log.Printf("WARN: designer update for itinerary %s rejected: %v", itineraryRef, verr)
			return verr
		}
		return fmt.Errorf("failed to apply designer update: %w", err)
	}
	return nil
}

func historyToMessages(history []domain.ChatTurn) []llm.ChatMessage {
	msgs := make([]llm.ChatMessage, len(history))
	for i, t := range history {
		msgs[i] = llm.ChatMessage{Role: string(t.Role), Content: t.Content}
	}
	return msgs
}
