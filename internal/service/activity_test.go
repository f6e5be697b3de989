package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/neogeo/surveyor-tracking-backend/internal/models"
)

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newActivityFixture(points *stubLocationStore, surveyors *stubSurveyorStore) *ActivityService {
	svc := NewActivityService(surveyors, points)
	svc.now = fixedClock(now)
	return svc
}

func TestIsOnlineRecentGpsPoint(t *testing.T) {
	points := &stubLocationStore{points: []models.LocationPoint{
		{SurveyorID: "SUR001", Latitude: 17.4, Longitude: 78.5, Timestamp: now.Add(-600 * time.Second)},
	}}
	svc := newActivityFixture(points, newStubSurveyorStore())

	require.True(t, svc.IsOnline("SUR001"))
}

func TestIsOnlineStaleGpsOverridesActivityCache(t *testing.T) {
	// GPS recency is authoritative: an 800s-old point means offline
	// even though the in-memory activity timestamp is fresh.
	points := &stubLocationStore{points: []models.LocationPoint{
		{SurveyorID: "SUR001", Latitude: 17.4, Longitude: 78.5, Timestamp: now.Add(-800 * time.Second)},
	}}
	svc := newActivityFixture(points, newStubSurveyorStore())
	svc.lastActivity["SUR001"] = now.Add(-10 * time.Second)

	require.False(t, svc.IsOnline("SUR001"))
}

func TestIsOnlineFallsBackToMemory(t *testing.T) {
	svc := newActivityFixture(&stubLocationStore{}, newStubSurveyorStore())
	svc.lastActivity["SUR001"] = now.Add(-700 * time.Second)
	require.True(t, svc.IsOnline("SUR001"))

	svc.lastActivity["SUR001"] = now.Add(-721 * time.Second)
	require.False(t, svc.IsOnline("SUR001"))
}

func TestIsOnlineFallsBackToPersistedTimestamp(t *testing.T) {
	lastSeen := now.Add(-300 * time.Second)
	surveyors := newStubSurveyorStore(models.Surveyor{
		ID: "SUR001", Username: "ravi", LastActivityTimestamp: &lastSeen,
	})
	svc := newActivityFixture(&stubLocationStore{}, surveyors)

	require.True(t, svc.IsOnline("SUR001"))
}

func TestIsOnlineNoSignalAtAll(t *testing.T) {
	svc := newActivityFixture(&stubLocationStore{}, newStubSurveyorStore())
	require.False(t, svc.IsOnline("SUR001"))
}

func TestIsOnlineReadErrorDegradesToFallbacks(t *testing.T) {
	points := &stubLocationStore{readErr: errStorage}
	svc := newActivityFixture(points, newStubSurveyorStore())
	svc.lastActivity["SUR001"] = now.Add(-60 * time.Second)

	require.True(t, svc.IsOnline("SUR001"))
}

func TestRecordActivityUpdatesMemoryAndDirectory(t *testing.T) {
	surveyors := newStubSurveyorStore(models.Surveyor{ID: "SUR001", Username: "ravi"})
	svc := newActivityFixture(&stubLocationStore{}, surveyors)

	svc.RecordActivity("SUR001")

	require.Equal(t, now, svc.lastActivity["SUR001"])
	saved, err := surveyors.FindByID("SUR001")
	require.NoError(t, err)
	require.NotNil(t, saved.LastActivityTimestamp)
	require.Equal(t, now, *saved.LastActivityTimestamp)
}

func TestRecordActivityUnknownSurveyorStillCached(t *testing.T) {
	surveyors := newStubSurveyorStore()
	svc := newActivityFixture(&stubLocationStore{}, surveyors)

	svc.RecordActivity("ghost")

	require.Equal(t, now, svc.lastActivity["ghost"])
	require.Zero(t, surveyors.saveCall)
}

func TestDisplayStatusUsesLooserWindow(t *testing.T) {
	// 800s-old GPS point: IsOnline says offline (720s window) but the
	// display threshold is 15 minutes, so the dashboard shows Online.
	points := &stubLocationStore{points: []models.LocationPoint{
		{SurveyorID: "SUR001", Latitude: 17.4, Longitude: 78.5, Timestamp: now.Add(-800 * time.Second)},
	}}
	svc := newActivityFixture(points, newStubSurveyorStore())

	require.False(t, svc.IsOnline("SUR001"))
	require.Equal(t, "Online", svc.DisplayStatus("SUR001"))
}

func TestDisplayStatusOffline(t *testing.T) {
	points := &stubLocationStore{points: []models.LocationPoint{
		{SurveyorID: "SUR001", Latitude: 17.4, Longitude: 78.5, Timestamp: now.Add(-20 * time.Minute)},
	}}
	svc := newActivityFixture(points, newStubSurveyorStore())

	require.Equal(t, "Offline", svc.DisplayStatus("SUR001"))
}

func TestDisplayStatusOnlineFromActivityOnly(t *testing.T) {
	svc := newActivityFixture(&stubLocationStore{}, newStubSurveyorStore())
	svc.lastActivity["SUR001"] = now.Add(-100 * time.Second)

	require.Equal(t, "Online", svc.DisplayStatus("SUR001"))
}
