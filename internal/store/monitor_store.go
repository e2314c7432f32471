package store

import (
	"context"
	"fmt"

	"github.com/sarthak7846/uptime-monitor/internal/models"
	"gorm.io/gorm"
)

func (s *Store) CreateMonitor(ctx context.Context, monitor *models.Monitor) error {
	return s.db.WithContext(ctx).Create(monitor).Error
}

func (s *Store) GetMonitor(ctx context.Context, id uint) (*models.Monitor, error) {
	var monitor models.Monitor
	if err := s.db.WithContext(ctx).First(&monitor, id).Error; err != nil {
		return nil, translate(err)
	}
	return &monitor, nil
}

// GetUserMonitor loads a monitor only if it belongs to the given user.
func (s *Store) GetUserMonitor(ctx context.Context, userID, id uint) (*models.Monitor, error) {
	var monitor models.Monitor
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&monitor).Error; err != nil {
		return nil, translate(err)
	}
	return &monitor, nil
}

func (s *Store) ListMonitors(ctx context.Context, userID uint) ([]models.Monitor, error) {
	var monitors []models.Monitor
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&monitors).Error; err != nil {
		return nil, err
	}
	return monitors, nil
}

// ListAllMonitors returns every monitor, used to rebuild the probe schedule
// at startup.
func (s *Store) ListAllMonitors(ctx context.Context) ([]models.Monitor, error) {
	var monitors []models.Monitor
	if err := s.db.WithContext(ctx).Find(&monitors).Error; err != nil {
		return nil, err
	}
	return monitors, nil
}

func (s *Store) UpdateMonitor(ctx context.Context, monitor *models.Monitor) error {
	return s.db.WithContext(ctx).Save(monitor).Error
}

func (s *Store) DeleteMonitor(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Monitor{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordProbe persists the outcome of one probe tick: the monitor's status
// and counters together with the append-only log row, in a single
// transaction so log and state never diverge.
func (s *Store) RecordProbe(ctx context.Context, monitorID uint, status string, failures, successes int, log *models.MonitorLog) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Monitor{}).Where("id = ?", monitorID).Updates(map[string]interface{}{
			"last_status":           status,
			"consecutive_failures":  failures,
			"consecutive_successes": successes,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("monitor %d: %w", monitorID, ErrNotFound)
		}
		return tx.Create(log).Error
	})
}

func (s *Store) ListLogs(ctx context.Context, monitorID uint, limit int) ([]models.MonitorLog, error) {
	var logs []models.MonitorLog
	if err := s.db.WithContext(ctx).Where("monitor_id = ?", monitorID).
		Order("checked_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
