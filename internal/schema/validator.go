// Package schema validates itinerary documents against structural and
// temporal rules. Pure functions, no state, no I/O.
package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roamkit/tripcore/internal/domain"
)

const dateLayout = "2006-01-02"

// Validate checks an itinerary against all rules and returns every violated
// field in one pass, or nil when the record is valid.
func Validate(it *domain.Itinerary) *domain.ValidationError {
	var violations []domain.FieldViolation

	add := func(field, msg string) {
		violations = append(violations, domain.FieldViolation{Field: field, Message: msg})
	}

	if it.ID == "" {
		add("id", "required")
	}
	if it.Title == "" {
		add("title", "required")
	}
	if it.CreatedBy == "" {
		add("created_by", "required")
	}

	start, startErr := time.Parse(dateLayout, it.StartDate)
	if startErr != nil {
		add("start_date", "must be a YYYY-MM-DD date")
	}
	end, endErr := time.Parse(dateLayout, it.EndDate)
	if endErr != nil {
		add("end_date", "must be a YYYY-MM-DD date")
	}
	if startErr == nil && endErr == nil && start.After(end) {
		add("start_date", "must not be after end_date")
	}

	for idx, seg := range it.Segments {
		prefix := fmt.Sprintf("segments[%d]", idx)
		if seg.ID == "" {
			add(prefix+".id", "required")
		}
		if !domain.ValidSegmentType(seg.Type) {
			add(prefix+".type", fmt.Sprintf("unknown segment type %q", seg.Type))
		}
		if !domain.ValidSegmentStatus(seg.Status) {
			add(prefix+".status", fmt.Sprintf("unknown segment status %q", seg.Status))
		}
		if seg.StartDatetime.IsZero() {
			add(prefix+".start_datetime", "required")
		}
		if seg.EndDatetime.IsZero() {
			add(prefix+".end_datetime", "required")
		}
		if !seg.StartDatetime.IsZero() && !seg.EndDatetime.IsZero() &&
			!seg.EndDatetime.After(seg.StartDatetime) {
			add(fmt.Sprintf("%s.end_datetime", prefix),
				fmt.Sprintf("segment %s must end after it starts", seg.ID))
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return &domain.ValidationError{Violations: violations}
}

// ParseAndValidate decodes a raw JSON document and validates it. A document
// that does not parse at all is corruption, reported as a plain error
// distinct from *domain.ValidationError.
func ParseAndValidate(raw []byte) (*domain.Itinerary, error) {
	var it domain.Itinerary
	if err := json.Unmarshal(raw, &it); err != nil {
		return nil, fmt.Errorf("corrupt itinerary document: %w", err)
	}
	if verr := Validate(&it); verr != nil {
		return nil, verr
	}
	return &it, nil
}
