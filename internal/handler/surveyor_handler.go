package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neogeo/surveyor-tracking-backend/internal/middleware"
	"github.com/neogeo/surveyor-tracking-backend/internal/models"
	"github.com/neogeo/surveyor-tracking-backend/internal/service"
	"github.com/neogeo/surveyor-tracking-backend/pkg/response"
)

const adminTokenTTL = 12 * time.Hour

// SurveyorHandler handles HTTP requests for the surveyor directory
type SurveyorHandler struct {
	surveyors *service.SurveyorService
	tracks    *service.TrackService
	activity  *service.ActivityService
	jwtSecret string
}

// NewSurveyorHandler creates a new surveyor handler
func NewSurveyorHandler(surveyors *service.SurveyorService, tracks *service.TrackService, activity *service.ActivityService, jwtSecret string) *SurveyorHandler {
	return &SurveyorHandler{
		surveyors: surveyors,
		tracks:    tracks,
		activity:  activity,
		jwtSecret: jwtSecret,
	}
}

// ListSurveyors handles GET /api/surveyors
func (h *SurveyorHandler) ListSurveyors(c *gin.Context) {
	surveyors, _ := h.tracks.ListSurveyors()
	response.Success(c, surveyors)
}

// FilterSurveyors handles GET /api/surveyors/filter
func (h *SurveyorHandler) FilterSurveyors(c *gin.Context) {
	surveyors, _ := h.tracks.FilterSurveyors(c.Query("city"), c.Query("project"))

	// The optional status filter narrows on the resolved online flag.
	if status := c.Query("status"); status != "" {
		wantOnline := status == "Online"
		var filtered []models.Surveyor
		for _, s := range surveyors {
			if s.Online == wantOnline {
				filtered = append(filtered, s)
			}
		}
		surveyors = filtered
	}

	response.Success(c, surveyors)
}

// GetStatuses handles GET /api/surveyors/status
func (h *SurveyorHandler) GetStatuses(c *gin.Context) {
	response.Success(c, h.tracks.StatusMap())
}

// GetSurveyorsWithLocations handles GET /api/surveyors/with-locations
func (h *SurveyorHandler) GetSurveyorsWithLocations(c *gin.Context) {
	response.Success(c, h.tracks.SurveyorsWithLatestLocations())
}

// SaveSurveyor handles POST /api/surveyors
func (h *SurveyorHandler) SaveSurveyor(c *gin.Context) {
	var payload struct {
		models.Surveyor
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "Invalid surveyor payload")
		return
	}

	surveyor := payload.Surveyor
	surveyor.Password = payload.Password

	saved, err := h.surveyors.SaveOrUpdate(&surveyor)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, saved)
}

// DeleteSurveyor handles DELETE /api/surveyors/:id
func (h *SurveyorHandler) DeleteSurveyor(c *gin.Context) {
	deleted, err := h.surveyors.Delete(c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to delete surveyor")
		return
	}
	if !deleted {
		response.NotFound(c, "Surveyor not found")
		return
	}
	response.Message(c, "Surveyor deleted", nil)
}

// CheckUsername handles GET /api/surveyors/check-username
func (h *SurveyorHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		response.BadRequest(c, "username is required")
		return
	}

	available, err := h.surveyors.UsernameAvailable(username)
	if err != nil {
		response.InternalError(c, "Failed to check username")
		return
	}
	response.Success(c, gin.H{"available": available})
}

// TouchActivity handles POST /api/surveyors/:id/activity
func (h *SurveyorHandler) TouchActivity(c *gin.Context) {
	h.activity.RecordActivity(c.Param("id"))
	response.Message(c, "Activity recorded", nil)
}

// GetSurveyorStatus handles GET /api/surveyors/:id/status
func (h *SurveyorHandler) GetSurveyorStatus(c *gin.Context) {
	response.Success(c, gin.H{"online": h.activity.IsOnline(c.Param("id"))})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/surveyors/login (mobile app session start)
func (h *SurveyorHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid login payload")
		return
	}

	surveyor, ok := h.surveyors.Login(req.Username, req.Password)
	if !ok {
		response.Unauthorized(c, "Invalid credentials")
		return
	}
	response.Success(c, gin.H{"authenticated": true, "surveyor": surveyor})
}

// AdminLogin handles POST /api/surveyors/admin/login, issuing the
// dashboard bearer token. Only administrative accounts qualify.
func (h *SurveyorHandler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid login payload")
		return
	}

	surveyor, ok := h.surveyors.Authenticate(req.Username, req.Password)
	if !ok {
		response.Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, surveyor.ID, adminTokenTTL)
	if err != nil {
		response.InternalError(c, "Failed to issue token")
		return
	}
	response.Success(c, gin.H{"token": token, "surveyor": surveyor})
}
