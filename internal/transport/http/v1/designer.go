package v1

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roamkit/tripcore/internal/adapter/llm"
)

type startSessionRequest struct {
	ItineraryID string `json:"itinerary_id"`
}

// StartDesignerSession starts a chat session against an itinerary.
// POST /api/v1/designer/sessions
func (h *Handler) StartDesignerSession(c echo.Context) error {
	cred := credential(c)
	if cred == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "api credential required"})
	}

	var req startSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.ItineraryID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "itinerary_id is required"})
	}

	sessionID, err := h.service.StartDesignerSession(c.Request().Context(), cred, req.ItineraryID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"session_id": sessionID})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendDesignerMessage runs one chat turn.
// POST /api/v1/designer/sessions/:id/messages
func (h *Handler) SendDesignerMessage(c echo.Context) error {
	cred := credential(c)
	if cred == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "api credential required"})
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}

	turn, err := h.service.SendDesignerMessage(c.Request().Context(), cred, c.Param("id"), req.Content)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": turn})
}

// StreamDesignerMessage runs one chat turn, streaming partial tokens as
// `data: {json}` lines terminated by `data: [DONE]`.
// POST /api/v1/designer/sessions/:id/messages/stream
func (h *Handler) StreamDesignerMessage(c echo.Context) error {
	cred := credential(c)
	if cred == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "api credential required"})
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}

	// The client disconnecting cancels this context, which aborts the
	// upstream call and releases the session lock.
	ctx := c.Request().Context()

	wroteHeader := false
	flusher, _ := c.Response().Writer.(http.Flusher)

	_, err := h.service.SendDesignerMessageStream(ctx, cred, c.Param("id"), req.Content, func(chunk *llm.StreamChunk) error {
		if !wroteHeader {
			c.Response().Header().Set("Content-Type", "text/event-stream")
			c.Response().Header().Set("Cache-Control", "no-cache")
			c.Response().Header().Set("Connection", "keep-alive")
			c.Response().WriteHeader(http.StatusOK)
			wroteHeader = true
		}

		data, err := json.Marshal(chunk)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response().Writer, "data: %s\n\n", data); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	if err != nil {
		// Before the first chunk a normal JSON error is still possible.
		if !wroteHeader {
			return writeError(c, err)
		}
		log.Printf("ERROR: designer stream failed mid-turn: %v", err)
		fmt.Fprintf(c.Response().Writer, "data: {\"error\": %q}\n\n", err.Error())
	}

	if !wroteHeader {
		// Empty reply: still emit a well-formed stream.
		c.Response().Header().Set("Content-Type", "text/event-stream")
		c.Response().WriteHeader(http.StatusOK)
	}

	// Write [DONE] marker
	fmt.Fprintf(c.Response().Writer, "data: [DONE]\n\n")
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}
