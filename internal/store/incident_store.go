package store

import (
	"context"
	"errors"
	"time"

	"github.com/sarthak7846/uptime-monitor/internal/models"
	"github.com/sarthak7846/uptime-monitor/internal/types"
	"gorm.io/gorm"
)

// OpenIncident creates an OPEN incident for the monitor unless one is already
// open, in which case the existing incident is returned with created=false.
// The check and the insert run in one transaction to uphold the one-open-
// incident invariant under duplicate ticks.
func (s *Store) OpenIncident(ctx context.Context, monitorID uint, reason string, at time.Time) (*models.Incident, bool, error) {
	var incident *models.Incident
	created := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Incident
		err := tx.Where("monitor_id = ? AND status = ?", monitorID, types.IncidentStatusOpen).
			Order("started_at DESC").
			First(&existing).Error
		if err == nil {
			incident = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		fresh := models.Incident{
			MonitorID:     monitorID,
			Status:        types.IncidentStatusOpen,
			TriggerReason: reason,
			StartedAt:     at,
		}
		if err := tx.Create(&fresh).Error; err != nil {
			return err
		}
		incident = &fresh
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return incident, created, nil
}

// ResolveOpenIncident closes the most recent OPEN incident for the monitor
// and returns it. Returns (nil, nil) when no incident is open, which callers
// treat as a no-op.
func (s *Store) ResolveOpenIncident(ctx context.Context, monitorID uint, at time.Time) (*models.Incident, error) {
	var resolved *models.Incident

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var incident models.Incident
		err := tx.Where("monitor_id = ? AND status = ?", monitorID, types.IncidentStatusOpen).
			Order("started_at DESC").
			First(&incident).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		incident.Status = types.IncidentStatusResolved
		incident.EndedAt = &at
		if err := tx.Save(&incident).Error; err != nil {
			return err
		}
		resolved = &incident
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// OverlappingIncidents returns incidents intersecting [from, to], open
// incidents included, ordered by start time ascending.
func (s *Store) OverlappingIncidents(ctx context.Context, monitorID uint, from, to time.Time) ([]models.Incident, error) {
	var incidents []models.Incident
	if err := s.db.WithContext(ctx).
		Where("monitor_id = ? AND started_at <= ? AND (ended_at >= ? OR ended_at IS NULL)", monitorID, to, from).
		Order("started_at ASC").
		Find(&incidents).Error; err != nil {
		return nil, err
	}
	return incidents, nil
}
