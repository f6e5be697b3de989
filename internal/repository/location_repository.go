package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/neogeo/surveyor-tracking-backend/internal/models"
)

// LocationRepository handles database operations for location points.
// Timestamps are stored as unix milliseconds in an INTEGER column.
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Save appends a location point and returns it with its assigned id
func (r *LocationRepository) Save(p *models.LocationPoint) (*models.LocationPoint, error) {
	query := `INSERT INTO location_points (surveyor_id, latitude, longitude, timestamp, geometry)
		VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.Exec(query, p.SurveyorID, p.Latitude, p.Longitude, p.Timestamp.UnixMilli(), p.Geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to save location point: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted id: %w", err)
	}

	saved := *p
	saved.ID = id
	return &saved, nil
}

// LatestFor returns the most recent point for a surveyor, or nil when
// the surveyor has no stored points
func (r *LocationRepository) LatestFor(surveyorID string) (*models.LocationPoint, error) {
	query := `SELECT id, surveyor_id, latitude, longitude, timestamp, geometry
		FROM location_points WHERE surveyor_id = ?
		ORDER BY timestamp DESC LIMIT 1`

	p, err := r.scanPoint(r.db.QueryRow(query, surveyorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest location: %w", err)
	}
	return p, nil
}

// Between returns a surveyor's points ascending by timestamp. Nil
// bounds leave that side of the range open.
func (r *LocationRepository) Between(surveyorID string, start, end *time.Time) ([]models.LocationPoint, error) {
	query := `SELECT id, surveyor_id, latitude, longitude, timestamp, geometry
		FROM location_points WHERE surveyor_id = ?`
	args := []interface{}{surveyorID}

	if start != nil {
		query += " AND timestamp >= ?"
		args = append(args, start.UnixMilli())
	}
	if end != nil {
		query += " AND timestamp <= ?"
		args = append(args, end.UnixMilli())
	}
	query += " ORDER BY timestamp ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query location points: %w", err)
	}
	defer rows.Close()

	return r.collectPoints(rows)
}

// BetweenPaged returns one page of a surveyor's points plus the total
// count for the range. Pages are zero-based.
func (r *LocationRepository) BetweenPaged(surveyorID string, start, end *time.Time, page, size int) ([]models.LocationPoint, int64, error) {
	where := "WHERE surveyor_id = ?"
	args := []interface{}{surveyorID}

	if start != nil {
		where += " AND timestamp >= ?"
		args = append(args, start.UnixMilli())
	}
	if end != nil {
		where += " AND timestamp <= ?"
		args = append(args, end.UnixMilli())
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM location_points " + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count location points: %w", err)
	}

	query := `SELECT id, surveyor_id, latitude, longitude, timestamp, geometry
		FROM location_points ` + where + ` ORDER BY timestamp ASC LIMIT ? OFFSET ?`
	args = append(args, size, page*size)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query location points: %w", err)
	}
	defer rows.Close()

	points, err := r.collectPoints(rows)
	if err != nil {
		return nil, 0, err
	}
	return points, total, nil
}

// CountFor returns the number of stored points for a surveyor
func (r *LocationRepository) CountFor(surveyorID string) (int64, error) {
	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM location_points WHERE surveyor_id = ?", surveyorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count location points: %w", err)
	}
	return count, nil
}

// DeleteAllFor removes every point for a surveyor (directory cascade)
func (r *LocationRepository) DeleteAllFor(surveyorID string) error {
	_, err := r.db.Exec("DELETE FROM location_points WHERE surveyor_id = ?", surveyorID)
	if err != nil {
		return fmt.Errorf("failed to delete location points: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *LocationRepository) scanPoint(row rowScanner) (*models.LocationPoint, error) {
	var p models.LocationPoint
	var ts int64
	var geometry sql.NullString

	if err := row.Scan(&p.ID, &p.SurveyorID, &p.Latitude, &p.Longitude, &ts, &geometry); err != nil {
		return nil, err
	}

	p.Timestamp = time.UnixMilli(ts).UTC()
	if geometry.Valid {
		p.Geometry = &geometry.String
	}
	return &p, nil
}

func (r *LocationRepository) collectPoints(rows *sql.Rows) ([]models.LocationPoint, error) {
	var points []models.LocationPoint
	for rows.Next() {
		p, err := r.scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location point: %w", err)
		}
		points = append(points, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate location points: %w", err)
	}
	return points, nil
}
