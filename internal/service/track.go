package service

import (
	"log"
	"math"
	"time"

	"github.com/neogeo/surveyor-tracking-backend/internal/models"
	"github.com/neogeo/surveyor-tracking-backend/internal/route"
	"github.com/neogeo/surveyor-tracking-backend/internal/spatial"
)

// TrackService is the read side: latest point, history, enhanced
// history, cumulative distance and the dashboard status map. Storage
// failures on these paths degrade to empty results; availability is
// favored over surfacing the failure.
type TrackService struct {
	points    LocationStore
	surveyors SurveyorStore
	activity  *ActivityService
}

// NewTrackService creates a TrackService.
func NewTrackService(points LocationStore, surveyors SurveyorStore, activity *ActivityService) *TrackService {
	return &TrackService{
		points:    points,
		surveyors: surveyors,
		activity:  activity,
	}
}

// Latest returns the most recent point for a surveyor, or nil when
// there is no data. Storage errors are reported as no data.
func (s *TrackService) Latest(surveyorID string) *models.LocationPoint {
	point, err := s.points.LatestFor(surveyorID)
	if err != nil {
		log.Printf("[TrackService] Failed to fetch latest location for %s: %v", surveyorID, err)
		return nil
	}
	return point
}

// History returns a surveyor's points ascending by timestamp, bounded
// by whichever of start/end are present. Only a reversed range is an
// error; storage failures degrade to an empty result.
func (s *TrackService) History(surveyorID string, start, end *time.Time) ([]models.LocationPoint, error) {
	if err := validateTimeRange(start, end); err != nil {
		return nil, err
	}

	points, err := s.points.Between(surveyorID, start, end)
	if err != nil {
		log.Printf("[TrackService] Failed to fetch history for %s: %v", surveyorID, err)
		return nil, nil
	}
	return points, nil
}

// HistoryPaged returns one page of history plus paging metadata.
func (s *TrackService) HistoryPaged(surveyorID string, filter models.HistoryFilter) (*models.TrackPage, error) {
	if err := validateTimeRange(filter.Start, filter.End); err != nil {
		return nil, err
	}

	if filter.Page < 0 {
		filter.Page = 0
	}
	if filter.PageSize < 1 {
		filter.PageSize = 1000
	}
	if filter.PageSize > 5000 {
		filter.PageSize = 5000
	}

	points, total, err := s.points.BetweenPaged(surveyorID, filter.Start, filter.End, filter.Page, filter.PageSize)
	if err != nil {
		log.Printf("[TrackService] Failed to fetch paged history for %s: %v", surveyorID, err)
		points, total = nil, 0
	}

	return &models.TrackPage{
		Data:       points,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}, nil
}

// EnhancedHistory returns history with large gaps filled by
// interpolated synthetic points.
func (s *TrackService) EnhancedHistory(surveyorID string, start, end *time.Time) ([]models.LocationPoint, error) {
	points, err := s.History(surveyorID, start, end)
	if err != nil {
		return nil, err
	}
	return route.Reconstruct(points), nil
}

// TotalDistance sums consecutive haversine distances in kilometers
// over the surveyor's full stored sequence. No interpolation.
func (s *TrackService) TotalDistance(surveyorID string) float64 {
	points, err := s.points.Between(surveyorID, nil, nil)
	if err != nil {
		log.Printf("[TrackService] Failed to fetch points for distance of %s: %v", surveyorID, err)
		return 0
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += spatial.HaversineKm(
			points[i-1].Latitude, points[i-1].Longitude,
			points[i].Latitude, points[i].Longitude)
	}
	return total
}

// ListSurveyors returns the directory minus administrative accounts.
func (s *TrackService) ListSurveyors() ([]models.Surveyor, error) {
	surveyors, err := s.surveyors.FindAll()
	if err != nil {
		log.Printf("[TrackService] Failed to list surveyors: %v", err)
		return nil, nil
	}

	var valid []models.Surveyor
	for _, surveyor := range surveyors {
		if isValidSurveyor(surveyor) {
			valid = append(valid, surveyor)
		}
	}
	return valid, nil
}

// FilterSurveyors returns non-admin surveyors matching the optional
// city and project filters, each with their online flag resolved.
func (s *TrackService) FilterSurveyors(city, project string) ([]models.Surveyor, error) {
	surveyors, err := s.surveyors.FindByFilters(city, project)
	if err != nil {
		log.Printf("[TrackService] Failed to filter surveyors: %v", err)
		return nil, nil
	}

	var valid []models.Surveyor
	for _, surveyor := range surveyors {
		if !isValidSurveyor(surveyor) {
			continue
		}
		surveyor.Online = s.activity.IsOnline(surveyor.ID)
		valid = append(valid, surveyor)
	}
	return valid, nil
}

// StatusMap resolves the dashboard status string for every non-admin
// surveyor.
func (s *TrackService) StatusMap() map[string]string {
	surveyors, _ := s.ListSurveyors()

	statuses := make(map[string]string, len(surveyors))
	for _, surveyor := range surveyors {
		statuses[surveyor.ID] = s.activity.DisplayStatus(surveyor.ID)
	}
	return statuses
}

// SurveyorsWithLatestLocations pairs every non-admin surveyor with
// their most recent point and online flag for the dashboard map.
func (s *TrackService) SurveyorsWithLatestLocations() []models.SurveyorWithLocation {
	surveyors, _ := s.ListSurveyors()

	result := make([]models.SurveyorWithLocation, 0, len(surveyors))
	for _, surveyor := range surveyors {
		result = append(result, models.SurveyorWithLocation{
			Surveyor:       surveyor,
			LatestLocation: s.Latest(surveyor.ID),
			Online:         s.activity.IsOnline(surveyor.ID),
		})
	}
	return result
}

func validateTimeRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return ErrInvalidTimeRange
	}
	return nil
}
