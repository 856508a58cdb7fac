package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamkit/tripcore/internal/domain"
)

func startSession(t *testing.T, e *echo.Echo, h *Handler, apiKey, itineraryID string) string {
	t.Helper()
	body := `{"itinerary_id": "` + itineraryID + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/designer/sessions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderCredential, apiKey)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.StartDesignerSession(c))
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func sendMessage(t *testing.T, e *echo.Echo, h *Handler, apiKey, sessionID, content string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"content": "` + content + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/designer/sessions/"+sessionID+"/messages", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderCredential, apiKey)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sessionID)

	require.NoError(t, h.SendDesignerMessage(c))
	return rec
}

func TestStartSessionRequiresCredential(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/designer/sessions", strings.NewReader(`{"itinerary_id": "x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.StartDesignerSession(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStartSessionUnknownItinerary(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/designer/sessions", strings.NewReader(`{"itinerary_id": "nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderCredential, "key-A")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.StartDesignerSession(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionSurvivesAcrossRequests(t *testing.T) {
	e := echo.New()
	h, db := newTestHandler(t)
	seedItinerary(t, db, "itin_a", "alice@example.com")

	// First request creates the session under key-A.
	s1 := startSession(t, e, h, "key-A", "itin_a")

	// Second, independent request with the same credential finds it.
	rec := sendMessage(t, e, h, "key-A", s1, "hello")
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var resp struct {
		Message domain.ChatTurn `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.TurnRoleAssistant, resp.Message.Role)
	assert.NotEmpty(t, resp.Message.Content)
}

func TestSessionInvisibleToOtherCredential(t *testing.T) {
	e := echo.New()
	h, db := newTestHandler(t)
	seedItinerary(t, db, "itin_a", "alice@example.com")

	s1 := startSession(t, e, h, "key-A", "itin_a")

	// key-B gets its own designer instance with its own registry.
	rec := sendMessage(t, e, h, "key-B", s1, "hello")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// And key-A still works.
	rec = sendMessage(t, e, h, "key-A", s1, "hello again")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSendMessageRequiresContent(t *testing.T) {
	e := echo.New()
	h, db := newTestHandler(t)
	seedItinerary(t, db, "itin_a", "alice@example.com")
	s1 := startSession(t, e, h, "key-A", "itin_a")

	rec := sendMessage(t, e, h, "key-A", s1, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamDesignerMessage(t *testing.T) {
	e := echo.New()
	h, db := newTestHandler(t)
	seedItinerary(t, db, "itin_a", "alice@example.com")
	s1 := startSession(t, e, h, "key-A", "itin_a")

	body := `{"content": "plan my trip"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/designer/sessions/"+s1+"/messages/stream", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderCredential, "key-A")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(s1)

	require.NoError(t, h.StreamDesignerMessage(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	out := rec.Body.String()
	assert.Contains(t, out, "data: {")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "data: [DONE]"), "stream must end with the completion marker, got: %s", out)
}

func TestStreamUnknownSessionIsPlainError(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	body := `{"content": "plan my trip"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/designer/sessions/nope/messages/stream", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderCredential, "key-A")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	require.NoError(t, h.StreamDesignerMessage(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
