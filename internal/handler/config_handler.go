package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/neogeo/surveyor-tracking-backend/internal/service"
	"github.com/neogeo/surveyor-tracking-backend/pkg/response"
)

// ConfigHandler serves the dashboard dropdown configuration
type ConfigHandler struct {
	surveyors *service.SurveyorService
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(surveyors *service.SurveyorService) *ConfigHandler {
	return &ConfigHandler{surveyors: surveyors}
}

// GetDropdowns handles GET /api/config/dropdowns
func (h *ConfigHandler) GetDropdowns(c *gin.Context) {
	response.Success(c, h.surveyors.DropdownOptions())
}

// GetCities handles GET /api/config/cities
func (h *ConfigHandler) GetCities(c *gin.Context) {
	response.Success(c, h.surveyors.Cities())
}

// GetProjects handles GET /api/config/projects
func (h *ConfigHandler) GetProjects(c *gin.Context) {
	response.Success(c, h.surveyors.Projects())
}

// GetStatuses handles GET /api/config/statuses
func (h *ConfigHandler) GetStatuses(c *gin.Context) {
	response.Success(c, h.surveyors.Statuses())
}

// GetRoles handles GET /api/config/roles
func (h *ConfigHandler) GetRoles(c *gin.Context) {
	response.Success(c, h.surveyors.Roles())
}

// GetProjectsByCity handles GET /api/config/projects-by-city
func (h *ConfigHandler) GetProjectsByCity(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		response.BadRequest(c, "city is required")
		return
	}
	response.Success(c, h.surveyors.ProjectsByCity(city))
}

// GetCitiesByProject handles GET /api/config/cities-by-project
func (h *ConfigHandler) GetCitiesByProject(c *gin.Context) {
	project := c.Query("project")
	if project == "" {
		response.BadRequest(c, "project is required")
		return
	}
	response.Success(c, h.surveyors.CitiesByProject(project))
}
