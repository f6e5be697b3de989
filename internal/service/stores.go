package service

import (
	"errors"
	"strings"
	"time"

	"github.com/neogeo/surveyor-tracking-backend/internal/models"
)

// Validation failures surfaced to callers as rejections. No partial
// state is written when one of these is returned.
var (
	ErrInvalidSurveyorID  = errors.New("invalid surveyor id")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidTimeRange   = errors.New("start time must be before end time")
)

// LocationStore is the ordered-append point storage consumed by the
// ingestion and query services.
type LocationStore interface {
	Save(p *models.LocationPoint) (*models.LocationPoint, error)
	LatestFor(surveyorID string) (*models.LocationPoint, error)
	Between(surveyorID string, start, end *time.Time) ([]models.LocationPoint, error)
	BetweenPaged(surveyorID string, start, end *time.Time, page, size int) ([]models.LocationPoint, int64, error)
	CountFor(surveyorID string) (int64, error)
	DeleteAllFor(surveyorID string) error
}

// SurveyorStore is the directory lookup consumed by the services.
type SurveyorStore interface {
	FindByID(id string) (*models.Surveyor, error)
	FindByUsername(username string) (*models.Surveyor, error)
	FindAll() ([]models.Surveyor, error)
	FindByFilters(city, project string) ([]models.Surveyor, error)
	Save(s *models.Surveyor) (*models.Surveyor, error)
	Delete(id string) (bool, error)
	ExistsByUsername(username string) (bool, error)
	DistinctCities() ([]string, error)
	DistinctProjects() ([]string, error)
}

// isValidSurveyor excludes administrative accounts from every
// surveyor-facing read. Matches on id or username, case-insensitive.
func isValidSurveyor(s models.Surveyor) bool {
	return s.ID != "" &&
		!strings.Contains(strings.ToLower(s.ID), "admin") &&
		!strings.Contains(strings.ToLower(s.Username), "admin")
}
