package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neogeo/surveyor-tracking-backend/internal/models"
	"github.com/neogeo/surveyor-tracking-backend/internal/service"
	"github.com/neogeo/surveyor-tracking-backend/pkg/response"
)

// LocationHandler handles HTTP requests for live ingestion and track queries
type LocationHandler struct {
	ingest *service.IngestService
	tracks *service.TrackService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(ingest *service.IngestService, tracks *service.TrackService) *LocationHandler {
	return &LocationHandler{
		ingest: ingest,
		tracks: tracks,
	}
}

// PublishLiveLocation handles POST /api/live/location
func (h *LocationHandler) PublishLiveLocation(c *gin.Context) {
	var sample models.GpsSample
	if err := c.ShouldBindJSON(&sample); err != nil {
		response.BadRequest(c, "Invalid location payload")
		return
	}

	result, err := h.ingest.Ingest(sample)
	if err != nil {
		response.InternalError(c, "Failed to save location")
		return
	}
	if result.Status == service.StatusRejected {
		response.BadRequest(c, result.Reason)
		return
	}

	response.Message(c, "Location updated", gin.H{
		"status":  result.Status,
		"flagged": result.Flagged,
	})
}

// PublishFinalLocation handles POST /api/live/location/final
func (h *LocationHandler) PublishFinalLocation(c *gin.Context) {
	var sample models.GpsSample
	if err := c.ShouldBindJSON(&sample); err != nil {
		response.BadRequest(c, "Invalid location payload")
		return
	}

	result, err := h.ingest.IngestFinal(sample)
	if err != nil {
		response.InternalError(c, "Failed to save location")
		return
	}
	if result.Status == service.StatusRejected {
		response.BadRequest(c, result.Reason)
		return
	}

	response.Message(c, "Final location saved", gin.H{
		"status":  result.Status,
		"flagged": result.Flagged,
	})
}

// PublishLocationBatch handles POST /api/live/location/batch
func (h *LocationHandler) PublishLocationBatch(c *gin.Context) {
	var samples []models.GpsSample
	if err := c.ShouldBindJSON(&samples); err != nil {
		response.BadRequest(c, "Invalid batch payload")
		return
	}

	report := h.ingest.IngestBatch(samples)
	response.Message(c, report.Summary(), report)
}

// GetLatestLocation handles GET /api/location/:surveyorId/latest
func (h *LocationHandler) GetLatestLocation(c *gin.Context) {
	point := h.tracks.Latest(c.Param("surveyorId"))
	if point == nil {
		response.NoContent(c)
		return
	}
	response.Success(c, point)
}

// GetTrackHistory handles GET /api/location/:surveyorId/track
func (h *LocationHandler) GetTrackHistory(c *gin.Context) {
	start, end, ok := parseTimeBounds(c)
	if !ok {
		return
	}

	filter := models.HistoryFilter{
		Start:    start,
		End:      end,
		Page:     parseIntQuery(c, "page", 0),
		PageSize: parseIntQuery(c, "size", 1000),
	}

	page, err := h.tracks.HistoryPaged(c.Param("surveyorId"), filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	if len(page.Data) == 0 {
		response.NoContent(c)
		return
	}
	response.Success(c, page)
}

// GetEnhancedTrackHistory handles GET /api/location/:surveyorId/enhanced-track
func (h *LocationHandler) GetEnhancedTrackHistory(c *gin.Context) {
	start, end, ok := parseTimeBounds(c)
	if !ok {
		return
	}

	tracks, err := h.tracks.EnhancedHistory(c.Param("surveyorId"), start, end)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	if len(tracks) == 0 {
		response.NoContent(c)
		return
	}
	response.Success(c, tracks)
}

// GetTotalDistance handles GET /api/location/:surveyorId/distance
func (h *LocationHandler) GetTotalDistance(c *gin.Context) {
	surveyorID := c.Param("surveyorId")
	response.Success(c, gin.H{
		"surveyorId": surveyorID,
		"distanceKm": h.tracks.TotalDistance(surveyorID),
	})
}

// parseTimeBounds reads the optional RFC3339 start/end query params.
// Writes its own 400 response and returns ok=false on a malformed value.
func parseTimeBounds(c *gin.Context) (start, end *time.Time, ok bool) {
	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "Invalid start time, expected RFC3339")
			return nil, nil, false
		}
		start = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "Invalid end time, expected RFC3339")
			return nil, nil, false
		}
		end = &t
	}
	return start, end, true
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
