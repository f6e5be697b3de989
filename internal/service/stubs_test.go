package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/neogeo/surveyor-tracking-backend/internal/models"
)

// stubLocationStore keeps points in memory, ordered by insertion.
type stubLocationStore struct {
	points   []models.LocationPoint
	nextID   int64
	saveErr  error
	readErr  error
	saveCall int
}

func (s *stubLocationStore) Save(p *models.LocationPoint) (*models.LocationPoint, error) {
	s.saveCall++
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.nextID++
	saved := *p
	saved.ID = s.nextID
	s.points = append(s.points, saved)
	return &saved, nil
}

func (s *stubLocationStore) LatestFor(surveyorID string) (*models.LocationPoint, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	var latest *models.LocationPoint
	for i := range s.points {
		p := s.points[i]
		if p.SurveyorID != surveyorID {
			continue
		}
		if latest == nil || p.Timestamp.After(latest.Timestamp) {
			latest = &s.points[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (s *stubLocationStore) Between(surveyorID string, start, end *time.Time) ([]models.LocationPoint, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	var out []models.LocationPoint
	for _, p := range s.points {
		if p.SurveyorID != surveyorID {
			continue
		}
		if start != nil && p.Timestamp.Before(*start) {
			continue
		}
		if end != nil && p.Timestamp.After(*end) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *stubLocationStore) BetweenPaged(surveyorID string, start, end *time.Time, page, size int) ([]models.LocationPoint, int64, error) {
	all, err := s.Between(surveyorID, start, end)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(all))
	from := page * size
	if from >= len(all) {
		return nil, total, nil
	}
	to := from + size
	if to > len(all) {
		to = len(all)
	}
	return all[from:to], total, nil
}

func (s *stubLocationStore) CountFor(surveyorID string) (int64, error) {
	if s.readErr != nil {
		return 0, s.readErr
	}
	var n int64
	for _, p := range s.points {
		if p.SurveyorID == surveyorID {
			n++
		}
	}
	return n, nil
}

func (s *stubLocationStore) DeleteAllFor(surveyorID string) error {
	var kept []models.LocationPoint
	for _, p := range s.points {
		if p.SurveyorID != surveyorID {
			kept = append(kept, p)
		}
	}
	s.points = kept
	return nil
}

// stubSurveyorStore keeps directory entries in memory.
type stubSurveyorStore struct {
	surveyors map[string]models.Surveyor
	findErr   error
	saveCall  int
}

func newStubSurveyorStore(surveyors ...models.Surveyor) *stubSurveyorStore {
	m := make(map[string]models.Surveyor)
	for _, s := range surveyors {
		m[s.ID] = s
	}
	return &stubSurveyorStore{surveyors: m}
}

func (s *stubSurveyorStore) FindByID(id string) (*models.Surveyor, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	surveyor, ok := s.surveyors[id]
	if !ok {
		return nil, nil
	}
	return &surveyor, nil
}

func (s *stubSurveyorStore) FindByUsername(username string) (*models.Surveyor, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, surveyor := range s.surveyors {
		if surveyor.Username == username {
			copied := surveyor
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubSurveyorStore) FindAll() ([]models.Surveyor, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []models.Surveyor
	for _, surveyor := range s.surveyors {
		out = append(out, surveyor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *stubSurveyorStore) FindByFilters(city, project string) ([]models.Surveyor, error) {
	all, err := s.FindAll()
	if err != nil {
		return nil, err
	}
	var out []models.Surveyor
	for _, surveyor := range all {
		if city != "" && surveyor.City != city {
			continue
		}
		if project != "" && surveyor.ProjectName != project {
			continue
		}
		out = append(out, surveyor)
	}
	return out, nil
}

func (s *stubSurveyorStore) Save(surveyor *models.Surveyor) (*models.Surveyor, error) {
	s.saveCall++
	s.surveyors[surveyor.ID] = *surveyor
	return surveyor, nil
}

func (s *stubSurveyorStore) Delete(id string) (bool, error) {
	if _, ok := s.surveyors[id]; !ok {
		return false, nil
	}
	delete(s.surveyors, id)
	return true, nil
}

func (s *stubSurveyorStore) ExistsByUsername(username string) (bool, error) {
	surveyor, err := s.FindByUsername(username)
	return surveyor != nil, err
}

func (s *stubSurveyorStore) DistinctCities() ([]string, error) {
	return s.distinct(func(sv models.Surveyor) string { return sv.City })
}

func (s *stubSurveyorStore) DistinctProjects() ([]string, error) {
	return s.distinct(func(sv models.Surveyor) string { return sv.ProjectName })
}

func (s *stubSurveyorStore) distinct(field func(models.Surveyor) string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, surveyor := range s.surveyors {
		v := field(surveyor)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// stubPublisher records broadcasts and optionally fails them.
type stubPublisher struct {
	topics   []string
	payloads [][]byte
	err      error
}

func (p *stubPublisher) Publish(_ context.Context, topic string, _, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

var errStorage = errors.New("storage unavailable")

// fixedClock pins the service clocks for deterministic staleness math.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
