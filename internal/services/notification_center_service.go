package services

import (
	"context"

	"github.com/tidesmedia/newsreach-backend/internal/models"
	"github.com/tidesmedia/newsreach-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationCenterService handles the in-app notification feed.
type NotificationCenterService struct {
	notificationRepo repositories.NotificationRepository
}

// NewNotificationCenterService creates a new NotificationCenterService
func NewNotificationCenterService(notificationRepo repositories.NotificationRepository) *NotificationCenterService {
	return &NotificationCenterService{notificationRepo: notificationRepo}
}

// GetNotifications retrieves a user's notifications with pagination
func (s *NotificationCenterService) GetNotifications(ctx context.Context, userID string, page, limit int) ([]*models.Notification, error) {
	return s.notificationRepo.FindByUserID(ctx, userID, page, limit)
}

// GetUnreadCount counts a user's unread notifications
func (s *NotificationCenterService) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// MarkRead marks a single notification as read
func (s *NotificationCenterService) MarkRead(ctx context.Context, userID string, id primitive.ObjectID) error {
	return s.notificationRepo.MarkRead(ctx, userID, id)
}

// MarkAllRead marks all of a user's notifications as read
func (s *NotificationCenterService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
