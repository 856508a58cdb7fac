package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roamkit/tripcore/internal/domain"
)

// ImportPDF hands a PDF to the import collaborator and stores the resulting
// itinerary through the validated write path, owned by the caller.
func (s *Service) ImportPDF(ctx context.Context, identity string, pdf []byte) (*domain.Itinerary, error) {
	raw, err := s.importClient.ImportPDF(ctx, pdf)
	if err != nil {
		return nil, fmt.Errorf("pdf import failed: %w", err)
	}

	var it domain.Itinerary
	if err := json.Unmarshal(raw, &it); err != nil {
		return nil, fmt.Errorf("importer proposed unparseable itinerary: %w", err)
	}
	it.ID = "" // importer never picks the record id
	return s.SaveItinerary(ctx, identity, &it)
}
