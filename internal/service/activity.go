package service

import (
	"log"
	"sync"
	"time"
)

const (
	// onlineTimeout is the staleness window for the online flag: a
	// surveyor whose freshest signal is older than this is offline.
	onlineTimeout = 720 * time.Second

	// displayRecencyWindow is the looser location-recency threshold
	// used only for the dashboard status string. Kept distinct from
	// onlineTimeout on purpose; dashboard callers depend on it.
	displayRecencyWindow = 15 * time.Minute
)

// ActivityService tracks when each surveyor was last active and
// derives online/offline status. The in-memory map is owned by the
// instance, grows one entry per surveyor, and is never evicted;
// last-write-wins under concurrent updates.
type ActivityService struct {
	surveyors SurveyorStore
	points    LocationStore

	mu           sync.Mutex
	lastActivity map[string]time.Time

	now func() time.Time
}

// NewActivityService creates an ActivityService backed by the given stores.
func NewActivityService(surveyors SurveyorStore, points LocationStore) *ActivityService {
	return &ActivityService{
		surveyors:    surveyors,
		points:       points,
		lastActivity: make(map[string]time.Time),
		now:          time.Now,
	}
}

// RecordActivity marks the surveyor active now, in memory and on the
// persisted directory record. A missing directory record is not an
// error; the in-memory timestamp still counts.
func (s *ActivityService) RecordActivity(surveyorID string) {
	now := s.now()

	s.mu.Lock()
	s.lastActivity[surveyorID] = now
	s.mu.Unlock()

	surveyor, err := s.surveyors.FindByID(surveyorID)
	if err != nil {
		log.Printf("[ActivityService] Failed to load surveyor %s: %v", surveyorID, err)
		return
	}
	if surveyor == nil {
		return
	}

	surveyor.LastActivityTimestamp = &now
	if _, err := s.surveyors.Save(surveyor); err != nil {
		log.Printf("[ActivityService] Failed to persist activity for %s: %v", surveyorID, err)
	}
}

// IsOnline reports whether the surveyor has been active within the
// online timeout. The latest GPS point is the authoritative signal:
// when one exists it short-circuits the activity-timestamp fallbacks.
func (s *ActivityService) IsOnline(surveyorID string) bool {
	latest, err := s.points.LatestFor(surveyorID)
	if err != nil {
		log.Printf("[ActivityService] Failed to read latest location for %s: %v", surveyorID, err)
		latest = nil
	}
	if latest != nil {
		return s.now().Sub(latest.Timestamp) <= onlineTimeout
	}

	s.mu.Lock()
	lastActivity, ok := s.lastActivity[surveyorID]
	s.mu.Unlock()

	if !ok {
		surveyor, err := s.surveyors.FindByID(surveyorID)
		if err != nil || surveyor == nil || surveyor.LastActivityTimestamp == nil {
			return false
		}
		lastActivity = *surveyor.LastActivityTimestamp
	}

	return s.now().Sub(lastActivity) <= onlineTimeout
}

// DisplayStatus derives the dashboard status string. "Online" when the
// latest GPS point is within the display recency window OR the online
// flag holds, else "Offline".
func (s *ActivityService) DisplayStatus(surveyorID string) string {
	latest, err := s.points.LatestFor(surveyorID)
	if err != nil {
		log.Printf("[ActivityService] Failed to read latest location for %s: %v", surveyorID, err)
		latest = nil
	}

	locationActive := latest != nil && s.now().Sub(latest.Timestamp) <= displayRecencyWindow
	if locationActive || s.IsOnline(surveyorID) {
		return "Online"
	}
	return "Offline"
}
