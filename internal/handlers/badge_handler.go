package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidesmedia/newsreach-backend/internal/models"
	"github.com/tidesmedia/newsreach-backend/internal/repositories"
)

// BadgeHandler handles badge definition HTTP requests
type BadgeHandler struct {
	badgeRepo repositories.BadgeRepository
}

// NewBadgeHandler creates a new BadgeHandler
func NewBadgeHandler(badgeRepo repositories.BadgeRepository) *BadgeHandler {
	return &BadgeHandler{badgeRepo: badgeRepo}
}

// GetActiveBadges handles GET /badges
func (h *BadgeHandler) GetActiveBadges(c *gin.Context) {
	badges, err := h.badgeRepo.FindActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load badges"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": badges})
}

// CreateBadge handles POST /admin/badges. Badge definitions are curated, not
// user-generated; this sits behind the admin route group.
func (h *BadgeHandler) CreateBadge(c *gin.Context) {
	var badge models.BadgeDefinition
	if err := c.ShouldBindJSON(&badge); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if badge.Name == "" || badge.Requirement.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and requirement type are required"})
		return
	}

	if err := h.badgeRepo.Create(c.Request.Context(), &badge); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create badge"})
		return
	}
	c.JSON(http.StatusCreated, badge)
}
