package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidesmedia/newsreach-backend/internal/middleware"
	"github.com/tidesmedia/newsreach-backend/internal/services"
)

// GamificationHandler handles points, streak and profile HTTP requests
type GamificationHandler struct {
	pointsService  *services.PointsService
	profileService *services.ProfileService
	badgeService   *services.BadgeService
	config         services.GamificationConfig
}

// NewGamificationHandler creates a new GamificationHandler
func NewGamificationHandler(
	pointsService *services.PointsService,
	profileService *services.ProfileService,
	badgeService *services.BadgeService,
	config services.GamificationConfig,
) *GamificationHandler {
	return &GamificationHandler{
		pointsService:  pointsService,
		profileService: profileService,
		badgeService:   badgeService,
		config:         config,
	}
}

type awardRequest struct {
	Action   string                 `json:"action" binding:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

// AwardPoints handles POST /gamification/award. A no-award outcome is a
// normal 200 with awarded=false; the response never says why.
func (h *GamificationHandler) AwardPoints(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	result := h.pointsService.AwardPoints(c.Request.Context(), userID, req.Action, req.Metadata)
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"awarded": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"awarded": true, "result": result})
}

// UpdateStreak handles POST /gamification/streak
func (h *GamificationHandler) UpdateStreak(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	result := h.pointsService.UpdateStreak(c.Request.Context(), userID)
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"updated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true, "result": result})
}

// GetProfile handles GET /gamification/profile
func (h *GamificationHandler) GetProfile(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetLevels handles GET /gamification/levels
func (h *GamificationHandler) GetLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"levels": h.config.Levels})
}
