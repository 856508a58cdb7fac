package v1

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// maxPDFBytes bounds the accepted upload size.
const maxPDFBytes = 20 << 20

// ImportPDF hands a PDF to the import collaborator and stores the result.
// POST /api/v1/agent/import/pdf
func (h *Handler) ImportPDF(c echo.Context) error {
	ident := identity(c)
	if ident == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "identity required"})
	}

	pdf, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPDFBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read body"})
	}
	if len(pdf) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "empty body"})
	}
	if len(pdf) > maxPDFBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "pdf too large"})
	}

	it, err := h.service.ImportPDF(c.Request().Context(), ident, pdf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, it)
}
