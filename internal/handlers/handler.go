package handlers

import (
	"github.com/rs/zerolog"
	"github.com/sarthak7846/uptime-monitor/internal/auth"
	"github.com/sarthak7846/uptime-monitor/internal/scheduler"
	"github.com/sarthak7846/uptime-monitor/internal/store"
	"github.com/sarthak7846/uptime-monitor/internal/uptime"
)

// Handler carries the dependencies shared by every HTTP handler.
type Handler struct {
	store  *store.Store
	auth   *auth.Manager
	sched  scheduler.JobScheduler
	uptime *uptime.Aggregator
	hub    *Hub
	logger zerolog.Logger
}

func New(s *store.Store, authManager *auth.Manager, sched scheduler.JobScheduler, agg *uptime.Aggregator, hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		store:  s,
		auth:   authManager,
		sched:  sched,
		uptime: agg,
		hub:    hub,
		logger: logger.With().Str("component", "http").Logger(),
	}
}
