// Package v1 provides the versioned HTTP handlers for tripcore.
package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roamkit/tripcore/internal/domain"
	"github.com/roamkit/tripcore/internal/service"
)

const (
	// HeaderIdentity scopes what data the caller can see.
	HeaderIdentity = "X-User-Email"
	// CookieIdentity is the browser-delivered identity.
	CookieIdentity = "trip_identity"
	// HeaderCredential scopes which cached designer instance serves the
	// caller. Independent axis from identity.
	HeaderCredential = "X-Api-Key"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	// Itinerary API (scoped by caller identity)
	g.GET("/itineraries", h.ListItineraries)
	g.GET("/itineraries/:id", h.GetItinerary)
	g.POST("/itineraries", h.CreateItinerary)

	// Designer API (scoped by API credential)
	g.POST("/designer/sessions", h.StartDesignerSession)
	g.POST("/designer/sessions/:id/messages", h.SendDesignerMessage)
	g.POST("/designer/sessions/:id/messages/stream", h.StreamDesignerMessage)

	// Import API
	g.POST("/agent/import/pdf", h.ImportPDF)

	e.GET("/health", h.Health)
}

// Health returns health status plus the observable counters.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "0.1.0",
		"stats":   h.service.Stats(),
	})
}

// identity extracts the caller identity, normalized to lower case, from
// the identity header or the identity cookie.
func identity(c echo.Context) string {
	if v := c.Request().Header.Get(HeaderIdentity); v != "" {
		return strings.ToLower(strings.TrimSpace(v))
	}
	if cookie, err := c.Cookie(CookieIdentity); err == nil && cookie.Value != "" {
		return strings.ToLower(strings.TrimSpace(cookie.Value))
	}
	return ""
}

// credential extracts the designer API credential.
func credential(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(HeaderCredential))
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c echo.Context, err error) error {
	if verr, ok := domain.AsValidationError(err); ok {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":      "validation failed",
			"violations": verr.Violations,
		})
	}
	if errors.Is(err, domain.ErrRecordNotFound) || errors.Is(err, domain.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
