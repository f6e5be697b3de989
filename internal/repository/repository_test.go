package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/neogeo/surveyor-tracking-backend/internal/database"
	"github.com/neogeo/surveyor-tracking-backend/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrationManager(db).RunMigrations())
	return db
}

func seedSurveyor(t *testing.T, repo *SurveyorRepository, id, username, city, project string) {
	t.Helper()
	_, err := repo.Save(&models.Surveyor{
		ID: id, Username: username, Password: "pw", City: city, ProjectName: project,
	})
	require.NoError(t, err)
}

func TestLocationRepositoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	surveyors := NewSurveyorRepository(db)
	locations := NewLocationRepository(db)
	seedSurveyor(t, surveyors, "SUR001", "ravi", "Hyderabad", "PTMS")

	ts := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	saved, err := locations.Save(&models.LocationPoint{
		SurveyorID: "SUR001", Latitude: 17.385, Longitude: 78.4867, Timestamp: ts,
	})
	require.NoError(t, err)
	require.Positive(t, saved.ID)

	latest, err := locations.LatestFor("SUR001")
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, saved.ID, latest.ID)
	require.Equal(t, 17.385, latest.Latitude)
	require.True(t, latest.Timestamp.Equal(ts))
	require.Nil(t, latest.Geometry)
}

func TestLocationRepositoryLatestForEmpty(t *testing.T) {
	locations := NewLocationRepository(newTestDB(t))

	latest, err := locations.LatestFor("nobody")
	require.NoError(t, err)
	require.Nil(t, latest)
}

func TestLocationRepositoryBetweenBounds(t *testing.T) {
	db := newTestDB(t)
	surveyors := NewSurveyorRepository(db)
	locations := NewLocationRepository(db)
	seedSurveyor(t, surveyors, "SUR001", "ravi", "", "")

	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := locations.Save(&models.LocationPoint{
			SurveyorID: "SUR001",
			Latitude:   17.38 + float64(i)*0.01,
			Longitude:  78.48,
			Timestamp:  base.Add(time.Duration(i) * 10 * time.Minute),
		})
		require.NoError(t, err)
	}

	// Unbounded, ascending.
	all, err := locations.Between("SUR001", nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		require.True(t, all[i].Timestamp.After(all[i-1].Timestamp))
	}

	// Closed range is inclusive on both ends.
	start := base.Add(10 * time.Minute)
	end := base.Add(20 * time.Minute)
	ranged, err := locations.Between("SUR001", &start, &end)
	require.NoError(t, err)
	require.Len(t, ranged, 2)

	// Open-ended variants.
	fromStart, err := locations.Between("SUR001", &start, nil)
	require.NoError(t, err)
	require.Len(t, fromStart, 3)

	untilEnd, err := locations.Between("SUR001", nil, &end)
	require.NoError(t, err)
	require.Len(t, untilEnd, 3)
}

func TestLocationRepositoryPagingAndCount(t *testing.T) {
	db := newTestDB(t)
	surveyors := NewSurveyorRepository(db)
	locations := NewLocationRepository(db)
	seedSurveyor(t, surveyors, "SUR001", "ravi", "", "")

	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := locations.Save(&models.LocationPoint{
			SurveyorID: "SUR001", Latitude: 17.38, Longitude: 78.48,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	page, total, err := locations.BetweenPaged("SUR001", nil, nil, 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	require.True(t, page[0].Timestamp.Equal(base.Add(2*time.Minute)))

	count, err := locations.CountFor("SUR001")
	require.NoError(t, err)
	require.Equal(t, int64(5), count)
}

func TestLocationRepositoryDeleteAllFor(t *testing.T) {
	db := newTestDB(t)
	surveyors := NewSurveyorRepository(db)
	locations := NewLocationRepository(db)
	seedSurveyor(t, surveyors, "SUR001", "ravi", "", "")
	seedSurveyor(t, surveyors, "SUR002", "meena", "", "")

	ts := time.Now().UTC()
	for _, id := range []string{"SUR001", "SUR001", "SUR002"} {
		_, err := locations.Save(&models.LocationPoint{
			SurveyorID: id, Latitude: 17.38, Longitude: 78.48, Timestamp: ts,
		})
		require.NoError(t, err)
	}

	require.NoError(t, locations.DeleteAllFor("SUR001"))

	count, err := locations.CountFor("SUR001")
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = locations.CountFor("SUR002")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestSurveyorRepositoryUpsertAndLookups(t *testing.T) {
	repo := NewSurveyorRepository(newTestDB(t))

	lastSeen := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	_, err := repo.Save(&models.Surveyor{
		ID: "SUR001", Username: "ravi", Password: "pw",
		Name: "Ravi Kumar", City: "Hyderabad", ProjectName: "PTMS",
		LastActivityTimestamp: &lastSeen,
	})
	require.NoError(t, err)

	byID, err := repo.FindByID("SUR001")
	require.NoError(t, err)
	require.NotNil(t, byID)
	require.Equal(t, "ravi", byID.Username)
	require.NotNil(t, byID.LastActivityTimestamp)
	require.True(t, byID.LastActivityTimestamp.Equal(lastSeen))

	byUsername, err := repo.FindByUsername("ravi")
	require.NoError(t, err)
	require.NotNil(t, byUsername)
	require.Equal(t, "SUR001", byUsername.ID)

	missing, err := repo.FindByID("ghost")
	require.NoError(t, err)
	require.Nil(t, missing)

	// Upsert replaces fields for the same id.
	_, err = repo.Save(&models.Surveyor{ID: "SUR001", Username: "ravi", Password: "pw", City: "Mumbai"})
	require.NoError(t, err)

	updated, err := repo.FindByID("SUR001")
	require.NoError(t, err)
	require.Equal(t, "Mumbai", updated.City)
	require.Nil(t, updated.LastActivityTimestamp)
}

func TestSurveyorRepositoryFiltersAndDistinct(t *testing.T) {
	repo := NewSurveyorRepository(newTestDB(t))
	seedSurveyor(t, repo, "SUR001", "ravi", "Hyderabad", "PTMS")
	seedSurveyor(t, repo, "SUR002", "meena", "Mumbai", "PTMS")
	seedSurveyor(t, repo, "SUR003", "arjun", "Hyderabad", "Survey")

	byCity, err := repo.FindByFilters("Hyderabad", "")
	require.NoError(t, err)
	require.Len(t, byCity, 2)

	byBoth, err := repo.FindByFilters("Hyderabad", "PTMS")
	require.NoError(t, err)
	require.Len(t, byBoth, 1)
	require.Equal(t, "SUR001", byBoth[0].ID)

	cities, err := repo.DistinctCities()
	require.NoError(t, err)
	require.Equal(t, []string{"Hyderabad", "Mumbai"}, cities)

	projects, err := repo.DistinctProjects()
	require.NoError(t, err)
	require.Equal(t, []string{"PTMS", "Survey"}, projects)
}

func TestSurveyorRepositoryDeleteAndExists(t *testing.T) {
	repo := NewSurveyorRepository(newTestDB(t))
	seedSurveyor(t, repo, "SUR001", "ravi", "", "")

	exists, err := repo.ExistsByUsername("ravi")
	require.NoError(t, err)
	require.True(t, exists)

	deleted, err := repo.Delete("SUR001")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = repo.Delete("SUR001")
	require.NoError(t, err)
	require.False(t, deleted)

	exists, err = repo.ExistsByUsername("ravi")
	require.NoError(t, err)
	require.False(t, exists)
}
