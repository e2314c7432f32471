package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sarthak7846/uptime-monitor/internal/events"
	"github.com/sarthak7846/uptime-monitor/internal/models"
	"github.com/sarthak7846/uptime-monitor/internal/types"
	"gorm.io/datatypes"
)

// AppendEvent writes a PENDING outbox row carrying the full event payload.
func (s *Store) AppendEvent(ctx context.Context, event *events.NotificationEvent) error {
	payload, err := event.Marshal()
	if err != nil {
		return err
	}

	row := models.NotificationEvent{
		EventID: event.ID,
		UserID:  event.UserID,
		Type:    string(event.Type),
		Payload: datatypes.JSON(payload),
		Status:  types.OutboxStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append outbox event: %w", err)
	}
	return nil
}

// PendingEvents returns up to limit PENDING rows, oldest first.
func (s *Store) PendingEvents(ctx context.Context, limit int) ([]models.NotificationEvent, error) {
	var rows []models.NotificationEvent
	if err := s.db.WithContext(ctx).
		Where("status = ?", types.OutboxStatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) MarkProcessed(ctx context.Context, id uint, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.NotificationEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       types.OutboxStatusProcessed,
			"processed_at": at,
		}).Error
}
