package service

import (
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/neogeo/surveyor-tracking-backend/internal/models"
)

// SurveyorService owns the directory: CRUD, credential checks and the
// dropdown configuration lists consumed by the dashboard.
type SurveyorService struct {
	surveyors SurveyorStore
	points    LocationStore
	activity  *ActivityService
}

// NewSurveyorService creates a SurveyorService.
func NewSurveyorService(surveyors SurveyorStore, points LocationStore, activity *ActivityService) *SurveyorService {
	return &SurveyorService{
		surveyors: surveyors,
		points:    points,
		activity:  activity,
	}
}

// FindByID returns a surveyor or nil when not found.
func (s *SurveyorService) FindByID(id string) (*models.Surveyor, error) {
	return s.surveyors.FindByID(id)
}

// SaveOrUpdate upserts a surveyor, assigning a fresh id when absent.
func (s *SurveyorService) SaveOrUpdate(surveyor *models.Surveyor) (*models.Surveyor, error) {
	if surveyor.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if surveyor.ID == "" {
		surveyor.ID = uuid.NewString()
	}
	return s.surveyors.Save(surveyor)
}

// Delete removes a surveyor along with every stored location point.
// Returns false when the surveyor does not exist.
func (s *SurveyorService) Delete(id string) (bool, error) {
	existing, err := s.surveyors.FindByID(id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	// Points go first so a failed directory delete never orphans them.
	if err := s.points.DeleteAllFor(id); err != nil {
		return false, err
	}
	return s.surveyors.Delete(id)
}

// Authenticate compares the given credentials against the directory.
func (s *SurveyorService) Authenticate(username, password string) (*models.Surveyor, bool) {
	surveyor, err := s.surveyors.FindByUsername(username)
	if err != nil {
		log.Printf("[SurveyorService] Failed to look up %s: %v", username, err)
		return nil, false
	}
	if surveyor == nil || surveyor.Password != password {
		return nil, false
	}
	return surveyor, true
}

// Login authenticates a mobile-app session and records activity on
// success, so a freshly logged-in surveyor shows online immediately.
func (s *SurveyorService) Login(username, password string) (*models.Surveyor, bool) {
	surveyor, ok := s.Authenticate(username, password)
	if !ok {
		return nil, false
	}
	s.activity.RecordActivity(surveyor.ID)
	return surveyor, true
}

// UsernameAvailable reports whether the username is free.
func (s *SurveyorService) UsernameAvailable(username string) (bool, error) {
	exists, err := s.surveyors.ExistsByUsername(username)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Default dropdown values served when the directory is still empty.
var (
	defaultCities   = []string{"Hyderabad", "Mumbai", "Delhi", "Bangalore", "Chennai"}
	defaultProjects = []string{"PTMS", "Survey", "Mapping", "Inspection", "Construction"}

	dropdownStatuses = []string{
		"Online", "Offline", "Busy", "Available", "On Break",
		"In Meeting", "Traveling", "On Site", "Office", "Field Work",
	}
	dropdownRoles = []string{
		"Surveyor", "Supervisor", "Manager", "Coordinator", "Technician",
		"Engineer", "Analyst", "Consultant", "Inspector", "Planner",
	}
)

// Cities returns the distinct cities in the directory, falling back to
// the defaults when none exist yet.
func (s *SurveyorService) Cities() []string {
	cities, err := s.surveyors.DistinctCities()
	if err != nil {
		log.Printf("[SurveyorService] Failed to load cities: %v", err)
	}
	if len(cities) == 0 {
		return defaultCities
	}
	return cities
}

// Projects returns the distinct project names, with defaults.
func (s *SurveyorService) Projects() []string {
	projects, err := s.surveyors.DistinctProjects()
	if err != nil {
		log.Printf("[SurveyorService] Failed to load projects: %v", err)
	}
	if len(projects) == 0 {
		return defaultProjects
	}
	return projects
}

// Statuses returns the fixed status dropdown values.
func (s *SurveyorService) Statuses() []string { return dropdownStatuses }

// Roles returns the fixed role dropdown values.
func (s *SurveyorService) Roles() []string { return dropdownRoles }

// DropdownOptions bundles every dropdown list for the dashboard.
func (s *SurveyorService) DropdownOptions() map[string][]string {
	return map[string][]string{
		"cities":   s.Cities(),
		"projects": s.Projects(),
		"statuses": s.Statuses(),
		"roles":    s.Roles(),
	}
}

// ProjectsByCity narrows the project dropdown to one city.
func (s *SurveyorService) ProjectsByCity(city string) []string {
	surveyors, err := s.surveyors.FindByFilters(city, "")
	if err != nil {
		log.Printf("[SurveyorService] Failed to load projects for city %s: %v", city, err)
		return nil
	}
	return distinctNonEmpty(surveyors, func(s models.Surveyor) string { return s.ProjectName })
}

// CitiesByProject narrows the city dropdown to one project.
func (s *SurveyorService) CitiesByProject(project string) []string {
	surveyors, err := s.surveyors.FindByFilters("", project)
	if err != nil {
		log.Printf("[SurveyorService] Failed to load cities for project %s: %v", project, err)
		return nil
	}
	return distinctNonEmpty(surveyors, func(s models.Surveyor) string { return s.City })
}

func distinctNonEmpty(surveyors []models.Surveyor, field func(models.Surveyor) string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, surveyor := range surveyors {
		v := field(surveyor)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
