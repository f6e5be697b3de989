package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/neogeo/surveyor-tracking-backend/internal/broadcast"
	"github.com/neogeo/surveyor-tracking-backend/internal/models"
	"github.com/neogeo/surveyor-tracking-backend/internal/observability"
	"github.com/neogeo/surveyor-tracking-backend/internal/spatial"
)

const (
	// Dedup window: a sample under one whole minute and under ten
	// meters from the previous stored point is not persisted. Either
	// gap being large forces a save; completeness wins over dedup.
	dedupMinutes        = 1
	dedupDistanceMeters = 10.0

	// Timestamps further in the future than this are accepted but flagged.
	futureSkew = 60 * time.Second
)

// IngestStatus classifies the outcome of one ingested sample.
type IngestStatus string

const (
	StatusStored   IngestStatus = "stored"
	StatusSkipped  IngestStatus = "skipped"
	StatusRejected IngestStatus = "rejected"
)

// IngestResult is the per-sample outcome. Point is set only when the
// sample was persisted. Flagged marks samples accepted with a
// suspicious future timestamp.
type IngestResult struct {
	Status  IngestStatus
	Reason  string
	Flagged bool
	Point   *models.LocationPoint
}

// IngestService validates, deduplicates and persists incoming GPS
// samples, updating activity state and broadcasting stored points.
type IngestService struct {
	points    LocationStore
	activity  *ActivityService
	publisher broadcast.Publisher
	now       func() time.Time
}

// NewIngestService creates an IngestService.
func NewIngestService(points LocationStore, activity *ActivityService, publisher broadcast.Publisher) *IngestService {
	return &IngestService{
		points:    points,
		activity:  activity,
		publisher: publisher,
		now:       time.Now,
	}
}

// Ingest processes one GPS sample with duplicate suppression.
// Validation failures come back as a rejection with a nil error; a
// non-nil error means the persistence write itself failed.
func (s *IngestService) Ingest(sample models.GpsSample) (IngestResult, error) {
	result, err := s.process(sample, false)
	if err == nil && result.Status != StatusRejected {
		// Valid samples refresh activity whether or not they were stored.
		s.activity.RecordActivity(sample.SurveyorID)
	}
	return result, err
}

// IngestFinal processes a session-end sample. Deduplication is
// bypassed so the last known position of a session is never suppressed.
func (s *IngestService) IngestFinal(sample models.GpsSample) (IngestResult, error) {
	result, err := s.process(sample, true)
	if err == nil && result.Status != StatusRejected {
		s.activity.RecordActivity(sample.SurveyorID)
	}
	return result, err
}

// IngestBatch processes an ordered batch sequentially. A failing
// sample is isolated: processing continues and the report aggregates
// counts plus per-sample error text. The activity timestamp is
// refreshed once for the batch, keyed by the first sample's surveyor.
func (s *IngestService) IngestBatch(samples []models.GpsSample) models.BatchReport {
	report := models.BatchReport{Total: len(samples)}

	for i, sample := range samples {
		result, err := s.process(sample, false)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("sample %d: %v", i+1, err))
			continue
		}

		switch result.Status {
		case StatusStored:
			report.Stored++
		case StatusSkipped:
			report.Skipped++
		case StatusRejected:
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("sample %d: %s", i+1, result.Reason))
		}
	}

	if len(samples) > 0 {
		s.activity.RecordActivity(samples[0].SurveyorID)
	}

	return report
}

// process runs validation, timestamp resolution, deduplication and
// persistence for one sample. It does not touch activity state; the
// exported entry points decide when that side effect happens.
func (s *IngestService) process(sample models.GpsSample, force bool) (IngestResult, error) {
	if strings.TrimSpace(sample.SurveyorID) == "" {
		observability.RecordLocationRejected()
		return IngestResult{Status: StatusRejected, Reason: ErrInvalidSurveyorID.Error()}, nil
	}
	if !spatial.ValidCoordinates(sample.Latitude, sample.Longitude) {
		log.Printf("[IngestService] Invalid coordinates for surveyor %s: lat=%.6f, lon=%.6f",
			sample.SurveyorID, sample.Latitude, sample.Longitude)
		observability.RecordLocationRejected()
		return IngestResult{Status: StatusRejected, Reason: ErrInvalidCoordinates.Error()}, nil
	}

	timestamp, flagged := s.resolveTimestamp(sample)

	if !force && s.isDuplicate(sample, timestamp) {
		observability.RecordLocationDeduplicated()
		return IngestResult{Status: StatusSkipped, Flagged: flagged}, nil
	}

	saved, err := s.points.Save(&models.LocationPoint{
		SurveyorID: sample.SurveyorID,
		Latitude:   sample.Latitude,
		Longitude:  sample.Longitude,
		Timestamp:  timestamp,
	})
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to save location for surveyor %s: %w", sample.SurveyorID, err)
	}

	log.Printf("[IngestService] Saved location ID=%d for surveyor %s at %s (%.6f, %.6f)",
		saved.ID, saved.SurveyorID, saved.Timestamp.Format(time.RFC3339), saved.Latitude, saved.Longitude)
	observability.RecordLocationStored()
	s.logCaptureStats(saved.SurveyorID)

	// Persistence is the durability guarantee; the broadcast after it
	// is best-effort telemetry and never rolls anything back.
	s.broadcastPoint(saved)

	return IngestResult{Status: StatusStored, Flagged: flagged, Point: saved}, nil
}

// isDuplicate checks the incoming sample against the most recent
// stored point. Lookup failures fall through to saving: when in doubt
// the point is kept.
func (s *IngestService) isDuplicate(sample models.GpsSample, timestamp time.Time) bool {
	previous, err := s.points.LatestFor(sample.SurveyorID)
	if err != nil {
		log.Printf("[IngestService] Dedup lookup failed for %s, saving anyway: %v", sample.SurveyorID, err)
		return false
	}
	if previous == nil {
		return false
	}

	elapsedMinutes := int64(timestamp.Sub(previous.Timestamp).Minutes())
	distanceMeters := spatial.HaversineMeters(
		previous.Latitude, previous.Longitude, sample.Latitude, sample.Longitude)

	if elapsedMinutes < dedupMinutes && distanceMeters < dedupDistanceMeters {
		log.Printf("[IngestService] Skipping duplicate location for surveyor %s: time diff=%d min, distance=%.2f m",
			sample.SurveyorID, elapsedMinutes, distanceMeters)
		return true
	}
	return false
}

func (s *IngestService) resolveTimestamp(sample models.GpsSample) (time.Time, bool) {
	if sample.Timestamp == nil {
		log.Printf("[IngestService] No timestamp provided for surveyor %s, using current time", sample.SurveyorID)
		return s.now(), false
	}

	timestamp := *sample.Timestamp
	if timestamp.Sub(s.now()) > futureSkew {
		log.Printf("[IngestService] Timestamp for surveyor %s is %.0fs in the future",
			sample.SurveyorID, timestamp.Sub(s.now()).Seconds())
		observability.RecordFutureTimestamp()
		return timestamp, true
	}
	return timestamp, false
}

func (s *IngestService) broadcastPoint(point *models.LocationPoint) {
	payload, err := json.Marshal(point)
	if err != nil {
		log.Printf("[IngestService] Failed to encode broadcast for %s: %v", point.SurveyorID, err)
		observability.RecordBroadcastFailure()
		return
	}

	topic := "location." + point.SurveyorID
	if err := s.publisher.Publish(context.Background(), topic, []byte(point.SurveyorID), payload); err != nil {
		log.Printf("[IngestService] Broadcast failed for %s: %v", point.SurveyorID, err)
		observability.RecordBroadcastFailure()
	}
}

// logCaptureStats logs a running total every fifth stored point.
func (s *IngestService) logCaptureStats(surveyorID string) {
	total, err := s.points.CountFor(surveyorID)
	if err != nil {
		return
	}
	if total%5 == 0 {
		log.Printf("[IngestService] GPS stats: surveyor %s has %d total points", surveyorID, total)
	}
}
