// Package domain defines the core domain models for tripcore.
package domain

import (
	"sort"
	"time"
)

// SegmentType represents the kind of an itinerary segment.
type SegmentType string

const (
	SegmentTypeFlight   SegmentType = "FLIGHT"
	SegmentTypeHotel    SegmentType = "HOTEL"
	SegmentTypeTransfer SegmentType = "TRANSFER"
	SegmentTypeTrain    SegmentType = "TRAIN"
	SegmentTypeActivity SegmentType = "ACTIVITY"
	SegmentTypeCruise   SegmentType = "CRUISE"
)

// SegmentStatus represents the booking status of a segment.
type SegmentStatus string

const (
	SegmentStatusConfirmed SegmentStatus = "CONFIRMED"
	SegmentStatusTentative SegmentStatus = "TENTATIVE"
	SegmentStatusCancelled SegmentStatus = "CANCELLED"
)

// ValidSegmentType reports whether t is a known segment type.
func ValidSegmentType(t SegmentType) bool {
	switch t {
	case SegmentTypeFlight, SegmentTypeHotel, SegmentTypeTransfer,
		SegmentTypeTrain, SegmentTypeActivity, SegmentTypeCruise:
		return true
	}
	return false
}

// ValidSegmentStatus reports whether s is a known segment status.
func ValidSegmentStatus(s SegmentStatus) bool {
	switch s {
	case SegmentStatusConfirmed, SegmentStatusTentative, SegmentStatusCancelled:
		return true
	}
	return false
}

// Segment is one leg of an itinerary. EndDatetime must be strictly after
// StartDatetime.
type Segment struct {
	ID            string        `json:"id"`
	Type          SegmentType   `json:"type"`
	Status        SegmentStatus `json:"status"`
	StartDatetime time.Time     `json:"start_datetime"`
	EndDatetime   time.Time     `json:"end_datetime"`
}

// Itinerary is a full trip record. It is persisted as one JSON document and
// replaced wholesale on every write.
type Itinerary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartDate   string    `json:"start_date"` // YYYY-MM-DD
	EndDate     string    `json:"end_date"`   // YYYY-MM-DD
	Draft       bool      `json:"draft"`
	CreatedBy   string    `json:"created_by"` // normalized lower-case email
	Segments    []Segment `json:"segments"`
}

// SegmentsByTime returns a copy of the segments sorted by start time.
// The stored order is the record's own sequence; this is a view only.
func (i *Itinerary) SegmentsByTime() []Segment {
	out := make([]Segment, len(i.Segments))
	copy(out, i.Segments)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].StartDatetime.Before(out[b].StartDatetime)
	})
	return out
}
