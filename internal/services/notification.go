package services

import (
	"errors"
	"time"

	"github.com/chantierly/visadoc/internal/models"
	"github.com/chantierly/visadoc/pkg/logger"
	"gorm.io/gorm"
)

// NotificationService fans events out to user inboxes. Creation is
// best-effort: a persist failure is logged and never propagated to the
// workflow transition that triggered it.
type NotificationService struct {
	db    *gorm.DB
	queue TaskQueue // optional outbound relay; nil disables it
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// SetRelayQueue wires the outbound relay queue. Each created notification is
// mirrored to it after the row is persisted.
func (s *NotificationService) SetRelayQueue(queue TaskQueue) {
	s.queue = queue
}

// Notify creates one unread notification per distinct user id. Duplicate ids
// collapse to a single notification. Never returns an error to the caller.
func (s *NotificationService) Notify(userIDs []uint, ntype, title, message string, relatedID uint) {
	seen := make(map[uint]bool, len(userIDs))
	for _, userID := range userIDs {
		if userID == 0 || seen[userID] {
			continue
		}
		seen[userID] = true

		n := models.Notification{
			UserID:    userID,
			Type:      ntype,
			Title:     title,
			Message:   message,
			RelatedID: relatedID,
			CreatedAt: time.Now(),
		}
		if err := s.db.Create(&n).Error; err != nil {
			logger.Error().Err(err).Uint("user_id", userID).Str("type", ntype).
				Msg("failed to persist notification")
			continue
		}
		if s.queue != nil {
			task := &RelayTask{
				NotificationID: n.ID,
				UserID:         n.UserID,
				Type:           n.Type,
				Title:          n.Title,
				Message:        n.Message,
				RelatedID:      n.RelatedID,
			}
			if err := s.queue.Enqueue(task); err != nil {
				logger.Warn().Err(err).Uint("notification_id", n.ID).Msg("relay enqueue failed")
			}
		}
	}
}

type NotificationListRequest struct {
	Page       int  `form:"page" binding:"min=0"`
	PageSize   int  `form:"page_size" binding:"min=0,max=100"`
	UnreadOnly bool `form:"unread_only"`
}

type NotificationListResponse struct {
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Items    []models.Notification `json:"items"`
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(userID uint, req *NotificationListRequest) (*NotificationListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if req.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	query.Count(&total)

	var items []models.Notification
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).
		Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &NotificationListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// MarkRead marks one notification as read. Idempotent: marking an already
// read notification is a no-op, not an error.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	var n models.Notification
	err := s.db.Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if n.IsRead {
		return nil
	}
	return s.db.Model(&n).Update("is_read", true).Error
}

// MarkAllRead marks every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// UnreadCount is a pure read of the user's unread notification count.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// CleanupRead deletes read notifications older than retentionDays. Returns
// the number of deleted rows.
func (s *NotificationService) CleanupRead(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	res := s.db.Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
