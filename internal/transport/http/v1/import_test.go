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

func fakeImporter(t *testing.T, itinerary string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/import/pdf", r.URL.Path)
		require.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"itinerary": ` + itinerary + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImportPDFStoresItinerary(t *testing.T) {
	srv := fakeImporter(t, `{
		"title": "Scanned booking",
		"start_date": "2025-05-01",
		"end_date": "2025-05-03",
		"segments": [{
			"id": "seg_1",
			"type": "FLIGHT",
			"status": "CONFIRMED",
			"start_datetime": "2025-05-01T08:00:00Z",
			"end_datetime": "2025-05-01T10:30:00Z"
		}]
	}`)

	e := echo.New()
	h, db := newTestHandlerWithImporter(t, srv.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/import/pdf", strings.NewReader("%PDF-1.4 fake"))
	req.Header.Set(HeaderIdentity, "alice@example.com")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ImportPDF(c))
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var it domain.Itinerary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &it))
	assert.Equal(t, "alice@example.com", it.CreatedBy)
	assert.NotEmpty(t, it.ID)

	stored, err := db.Get(c.Request().Context(), it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Scanned booking", stored.Title)
}

func TestImportPDFInvalidProposalRejected(t *testing.T) {
	// The collaborator proposes a segment that ends before it starts.
	srv := fakeImporter(t, `{
		"title": "Scanned booking",
		"start_date": "2025-05-01",
		"end_date": "2025-05-03",
		"segments": [{
			"id": "seg_1",
			"type": "FLIGHT",
			"status": "CONFIRMED",
			"start_datetime": "2025-05-01T10:30:00Z",
			"end_datetime": "2025-05-01T08:00:00Z"
		}]
	}`)

	e := echo.New()
	h, _ := newTestHandlerWithImporter(t, srv.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/import/pdf", strings.NewReader("%PDF-1.4 fake"))
	req.Header.Set(HeaderIdentity, "alice@example.com")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ImportPDF(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "violations")
}

func TestImportPDFRequiresIdentity(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/import/pdf", strings.NewReader("%PDF"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ImportPDF(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestImportPDFEmptyBody(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/import/pdf", strings.NewReader(""))
	req.Header.Set(HeaderIdentity, "alice@example.com")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ImportPDF(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
