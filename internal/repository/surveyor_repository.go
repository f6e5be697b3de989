package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/neogeo/surveyor-tracking-backend/internal/models"
)

// SurveyorRepository handles database operations for the surveyor directory
type SurveyorRepository struct {
	db *sql.DB
}

// NewSurveyorRepository creates a new surveyor repository
func NewSurveyorRepository(db *sql.DB) *SurveyorRepository {
	return &SurveyorRepository{db: db}
}

const surveyorColumns = "id, username, password, name, city, project_name, last_activity_timestamp"

// FindByID returns a surveyor by id, or nil when not found
func (r *SurveyorRepository) FindByID(id string) (*models.Surveyor, error) {
	query := "SELECT " + surveyorColumns + " FROM surveyors WHERE id = ?"
	s, err := r.scanSurveyor(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get surveyor: %w", err)
	}
	return s, nil
}

// FindByUsername returns a surveyor by username, or nil when not found
func (r *SurveyorRepository) FindByUsername(username string) (*models.Surveyor, error) {
	query := "SELECT " + surveyorColumns + " FROM surveyors WHERE username = ?"
	s, err := r.scanSurveyor(r.db.QueryRow(query, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get surveyor by username: %w", err)
	}
	return s, nil
}

// FindAll returns the whole directory ordered by username
func (r *SurveyorRepository) FindAll() ([]models.Surveyor, error) {
	query := "SELECT " + surveyorColumns + " FROM surveyors ORDER BY username"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query surveyors: %w", err)
	}
	defer rows.Close()

	return r.collectSurveyors(rows)
}

// FindByFilters returns surveyors matching the given city and/or
// project name. Empty filter values are ignored.
func (r *SurveyorRepository) FindByFilters(city, project string) ([]models.Surveyor, error) {
	query := "SELECT " + surveyorColumns + " FROM surveyors"

	var conditions []string
	var args []interface{}

	if city != "" {
		conditions = append(conditions, "city = ?")
		args = append(args, city)
	}
	if project != "" {
		conditions = append(conditions, "project_name = ?")
		args = append(args, project)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY username"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter surveyors: %w", err)
	}
	defer rows.Close()

	return r.collectSurveyors(rows)
}

// Save inserts or updates a surveyor by id
func (r *SurveyorRepository) Save(s *models.Surveyor) (*models.Surveyor, error) {
	query := `INSERT INTO surveyors (id, username, password, name, city, project_name, last_activity_timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			password = excluded.password,
			name = excluded.name,
			city = excluded.city,
			project_name = excluded.project_name,
			last_activity_timestamp = excluded.last_activity_timestamp`

	var lastActivity interface{}
	if s.LastActivityTimestamp != nil {
		lastActivity = s.LastActivityTimestamp.UnixMilli()
	}

	_, err := r.db.Exec(query, s.ID, s.Username, s.Password, s.Name, s.City, s.ProjectName, lastActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to save surveyor: %w", err)
	}
	return s, nil
}

// Delete removes a surveyor and reports whether a row existed
func (r *SurveyorRepository) Delete(id string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM surveyors WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete surveyor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// ExistsByUsername reports whether the username is already taken
func (r *SurveyorRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM surveyors WHERE username = ?", username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// DistinctCities returns the sorted distinct non-empty cities
func (r *SurveyorRepository) DistinctCities() ([]string, error) {
	return r.distinctColumn("city")
}

// DistinctProjects returns the sorted distinct non-empty project names
func (r *SurveyorRepository) DistinctProjects() ([]string, error) {
	return r.distinctColumn("project_name")
}

func (r *SurveyorRepository) distinctColumn(column string) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM surveyors WHERE %s IS NOT NULL AND TRIM(%s) != '' ORDER BY %s",
		column, column, column, column)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", column, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", column, err)
	}
	return values, nil
}

func (r *SurveyorRepository) scanSurveyor(row rowScanner) (*models.Surveyor, error) {
	var s models.Surveyor
	var name, city, project sql.NullString
	var lastActivity sql.NullInt64

	if err := row.Scan(&s.ID, &s.Username, &s.Password, &name, &city, &project, &lastActivity); err != nil {
		return nil, err
	}

	s.Name = name.String
	s.City = city.String
	s.ProjectName = project.String
	if lastActivity.Valid {
		t := time.UnixMilli(lastActivity.Int64).UTC()
		s.LastActivityTimestamp = &t
	}
	return &s, nil
}

func (r *SurveyorRepository) collectSurveyors(rows *sql.Rows) ([]models.Surveyor, error) {
	var surveyors []models.Surveyor
	for rows.Next() {
		s, err := r.scanSurveyor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan surveyor: %w", err)
		}
		surveyors = append(surveyors, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate surveyors: %w", err)
	}
	return surveyors, nil
}
