package domain

import "time"

// TurnRole is the author of a chat turn.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// ChatTurn is a single message in a designer session. Immutable once appended.
type ChatTurn struct {
	Role      TurnRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one ongoing designer conversation tied to an itinerary.
// It is owned by the registry of the designer instance that created it and
// is mutated only by appending turns.
type Session struct {
	ID             string     `json:"id"`
	ItineraryRef   string     `json:"itinerary_ref"`
	History        []ChatTurn `json:"history"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
}
