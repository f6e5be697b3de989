package models

import (
	"fmt"
	"strings"
	"time"
)

// LocationPoint is a persisted GPS position for one surveyor.
// Points are immutable once stored; the geometry column is reserved
// and currently always NULL.
type LocationPoint struct {
	ID         int64      `json:"id,omitempty" db:"id"`
	SurveyorID string     `json:"surveyorId" db:"surveyor_id"`
	Latitude   float64    `json:"latitude" db:"latitude"`
	Longitude  float64    `json:"longitude" db:"longitude"`
	Timestamp  time.Time  `json:"timestamp" db:"timestamp"`
	Geometry   *string    `json:"geometry,omitempty" db:"geometry"`
}

// GpsSample is the ingestion payload as reported by the mobile client.
// Timestamp is optional; the server substitutes its own clock when absent.
type GpsSample struct {
	SurveyorID string     `json:"surveyorId"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

// HistoryFilter carries the optional time bounds and paging parameters
// for track-history queries. Nil bounds mean unbounded on that side.
type HistoryFilter struct {
	Start    *time.Time
	End      *time.Time
	Page     int
	PageSize int
}

// TrackPage is a paginated slice of a surveyor's track history.
type TrackPage struct {
	Data       []LocationPoint `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// BatchReport summarizes a batch ingestion run: how many samples were
// persisted, how many were deduplicated away, and the error text for
// each sample that failed.
type BatchReport struct {
	Total   int      `json:"total"`
	Stored  int      `json:"stored"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Summary renders the human-readable batch outcome returned to clients.
func (r BatchReport) Summary() string {
	s := fmt.Sprintf("Processed %d locations: %d successful, %d failed",
		r.Total, r.Stored+r.Skipped, r.Failed)
	if len(r.Errors) > 0 {
		s += ". Errors: " + strings.Join(r.Errors, "; ")
	}
	return s
}
