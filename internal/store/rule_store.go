package store

import (
	"context"

	"github.com/sarthak7846/uptime-monitor/internal/events"
	"github.com/sarthak7846/uptime-monitor/internal/models"
)

func (s *Store) CreateEndpoint(ctx context.Context, endpoint *models.NotificationEndpoint) error {
	return s.db.WithContext(ctx).Create(endpoint).Error
}

func (s *Store) ListEndpoints(ctx context.Context, userID uint) ([]models.NotificationEndpoint, error) {
	var endpoints []models.NotificationEndpoint
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&endpoints).Error; err != nil {
		return nil, err
	}
	return endpoints, nil
}

func (s *Store) GetEndpoint(ctx context.Context, userID, id uint) (*models.NotificationEndpoint, error) {
	var endpoint models.NotificationEndpoint
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&endpoint).Error; err != nil {
		return nil, translate(err)
	}
	return &endpoint, nil
}

func (s *Store) CreateRule(ctx context.Context, rule *models.NotificationRule) error {
	return s.db.WithContext(ctx).Create(rule).Error
}

func (s *Store) ListRules(ctx context.Context, userID uint) ([]models.NotificationRule, error) {
	var rules []models.NotificationRule
	if err := s.db.WithContext(ctx).Preload("Endpoint").Where("user_id = ?", userID).Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (s *Store) DeleteRule(ctx context.Context, userID, id uint) error {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.NotificationRule{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MatchingRules returns the enabled rules of the user that subscribe to the
// event type and whose monitor scope is either the given monitor or unscoped.
// Channel filtering happens at dispatch time against the registered
// deliverers.
func (s *Store) MatchingRules(ctx context.Context, userID uint, eventType events.Type, monitorID uint) ([]models.NotificationRule, error) {
	var rules []models.NotificationRule
	if err := s.db.WithContext(ctx).Preload("Endpoint").
		Where("user_id = ? AND enabled = ?", userID, true).
		Where("monitor_id = ? OR monitor_id IS NULL", monitorID).
		Find(&rules).Error; err != nil {
		return nil, err
	}

	matched := rules[:0]
	for _, rule := range rules {
		if rule.SubscribesTo(eventType) {
			matched = append(matched, rule)
		}
	}
	return matched, nil
}
