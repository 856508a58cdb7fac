package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roamkit/tripcore/internal/domain"
)

// ListItineraries lists the caller's itineraries.
// GET /api/v1/itineraries
func (h *Handler) ListItineraries(c echo.Context) error {
	ident := identity(c)
	if ident == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "identity required"})
	}

	result, err := h.service.ListItineraries(c.Request().Context(), ident)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"itineraries":   result.Itineraries,
		"skipped":       result.Skipped,
		"count":         len(result.Itineraries),
		"skipped_count": len(result.Skipped),
	})
}

// GetItinerary fetches one itinerary.
// GET /api/v1/itineraries/:id
func (h *Handler) GetItinerary(c echo.Context) error {
	ident := identity(c)
	if ident == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "identity required"})
	}

	it, err := h.service.GetItinerary(c.Request().Context(), ident, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, it)
}

// CreateItinerary creates or replaces an itinerary owned by the caller.
// POST /api/v1/itineraries
func (h *Handler) CreateItinerary(c echo.Context) error {
	ident := identity(c)
	if ident == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "identity required"})
	}

	var it domain.Itinerary
	if err := c.Bind(&it); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	saved, err := h.service.SaveItinerary(c.Request().Context(), ident, &it)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, saved)
}
