package models

import "time"

// Surveyor is a directory entry for a field surveyor. The password is
// a plain credential compared on login (matching the existing mobile
// app contract); it is omitted from JSON responses.
type Surveyor struct {
	ID                    string     `json:"id" db:"id"`
	Username              string     `json:"username" db:"username"`
	Password              string     `json:"-" db:"password"`
	Name                  string     `json:"name,omitempty" db:"name"`
	City                  string     `json:"city,omitempty" db:"city"`
	ProjectName           string     `json:"projectName,omitempty" db:"project_name"`
	LastActivityTimestamp *time.Time `json:"lastActivityTimestamp,omitempty" db:"last_activity_timestamp"`

	// Online is derived at read time, never persisted.
	Online bool `json:"online"`
}

// SurveyorWithLocation pairs a surveyor with their most recent stored
// position for the dashboard map view.
type SurveyorWithLocation struct {
	Surveyor       Surveyor        `json:"surveyor"`
	LatestLocation *LocationPoint  `json:"latestLocation,omitempty"`
	Online         bool            `json:"online"`
}
