package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sarthak7846/uptime-monitor/internal/models"
	"github.com/sarthak7846/uptime-monitor/internal/store"
	"github.com/sarthak7846/uptime-monitor/internal/types"
	"github.com/sarthak7846/uptime-monitor/internal/uptime"
	"github.com/sarthak7846/uptime-monitor/internal/utils"
)

const (
	defaultIntervalMs = 60000
	defaultTimeoutMs  = 30000
	minIntervalMs     = 1000

	defaultLogLimit = 50
	maxLogLimit     = 200
)

type CreateMonitorRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url" binding:"required,url"`
	Method   string `json:"method"`
	Interval *int   `json:"interval"` // milliseconds
	Timeout  *int   `json:"timeout"`  // milliseconds
}

type UpdateMonitorRequest struct {
	Name     *string `json:"name"`
	URL      *string `json:"url" binding:"omitempty,url"`
	Method   *string `json:"method"`
	Interval *int    `json:"interval"`
	Timeout  *int    `json:"timeout"`
}

func monitorResponse(m *models.Monitor) types.MonitorResponse {
	return types.MonitorResponse{
		ID:                   m.ID,
		Name:                 m.DisplayName(),
		URL:                  m.URL,
		Method:               m.Method,
		Interval:             m.Interval,
		Timeout:              m.Timeout,
		Status:               m.LastStatus,
		ConsecutiveFailures:  m.ConsecutiveFailures,
		ConsecutiveSuccesses: m.ConsecutiveSuccesses,
		CreatedAt:            m.CreatedAt,
	}
}

func (h *Handler) CreateMonitor(ctx *gin.Context) {
	var req CreateMonitorRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = "GET"
	}
	if !types.IsAllowedMethod(method) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Method must be one of " + strings.Join(types.AllowedMethods, ", ")})
		return
	}

	interval := defaultIntervalMs
	if req.Interval != nil {
		interval = *req.Interval
	}
	if interval < minIntervalMs {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Interval must be at least 1000 milliseconds"})
		return
	}

	timeout := defaultTimeoutMs
	if req.Timeout != nil {
		timeout = *req.Timeout
	}
	if timeout <= 0 || timeout > interval {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Timeout must be positive and not exceed the interval"})
		return
	}

	monitor := models.Monitor{
		UserID:   userID,
		Name:     req.Name,
		URL:      req.URL,
		Method:   method,
		Interval: interval,
		Timeout:  timeout,
	}

	if err := h.store.CreateMonitor(ctx.Request.Context(), &monitor); err != nil {
		h.logger.Error().Err(err).Msg("failed to create monitor")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create monitor"})
		return
	}

	if err := h.sched.Schedule(monitor.ID, time.Duration(monitor.Interval)*time.Millisecond); err != nil {
		h.logger.Error().Err(err).Uint("monitor_id", monitor.ID).Msg("failed to schedule monitor")
	}

	ctx.JSON(http.StatusCreated, gin.H{"monitor": monitorResponse(&monitor)})
}

func (h *Handler) ListMonitors(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	monitors, err := h.store.ListMonitors(ctx.Request.Context(), userID)

	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list monitors")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve monitors"})
		return
	}

	responses := make([]types.MonitorResponse, 0, len(monitors))
	for i := range monitors {
		responses = append(responses, monitorResponse(&monitors[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"monitors": responses})
}

func (h *Handler) GetMonitor(ctx *gin.Context) {
	monitor, ok := h.userMonitor(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"monitor": monitorResponse(monitor)})
}

func (h *Handler) UpdateMonitor(ctx *gin.Context) {
	monitor, ok := h.userMonitor(ctx)
	if !ok {
		return
	}

	var req UpdateMonitorRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	previousInterval := monitor.Interval

	if req.Name != nil {
		monitor.Name = *req.Name
	}
	if req.URL != nil {
		monitor.URL = *req.URL
	}
	if req.Method != nil {
		method := strings.ToUpper(strings.TrimSpace(*req.Method))
		if !types.IsAllowedMethod(method) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Method must be one of " + strings.Join(types.AllowedMethods, ", ")})
			return
		}
		monitor.Method = method
	}
	if req.Interval != nil {
		if *req.Interval < minIntervalMs {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Interval must be at least 1000 milliseconds"})
			return
		}
		monitor.Interval = *req.Interval
	}
	if req.Timeout != nil {
		monitor.Timeout = *req.Timeout
	}
	if monitor.Timeout <= 0 || monitor.Timeout > monitor.Interval {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Timeout must be positive and not exceed the interval"})
		return
	}

	if err := h.store.UpdateMonitor(ctx.Request.Context(), monitor); err != nil {
		h.logger.Error().Err(err).Uint("monitor_id", monitor.ID).Msg("failed to update monitor")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update monitor"})
		return
	}

	if monitor.Interval != previousInterval {
		if err := h.sched.Reschedule(monitor.ID, time.Duration(monitor.Interval)*time.Millisecond); err != nil {
			h.logger.Error().Err(err).Uint("monitor_id", monitor.ID).Msg("failed to reschedule monitor")
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"monitor": monitorResponse(monitor)})
}

func (h *Handler) DeleteMonitor(ctx *gin.Context) {
	monitor, ok := h.userMonitor(ctx)
	if !ok {
		return
	}

	if err := h.store.DeleteMonitor(ctx.Request.Context(), monitor.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Monitor not found"})
			return
		}
		h.logger.Error().Err(err).Uint("monitor_id", monitor.ID).Msg("failed to delete monitor")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete monitor"})
		return
	}

	if err := h.sched.Unschedule(monitor.ID); err != nil {
		h.logger.Error().Err(err).Uint("monitor_id", monitor.ID).Msg("failed to unschedule monitor")
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Monitor deleted successfully"})
}

func (h *Handler) GetMonitorLogs(ctx *gin.Context) {
	monitor, ok := h.userMonitor(ctx)
	if !ok {
		return
	}

	limit := defaultLogLimit
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	logs, err := h.store.ListLogs(ctx.Request.Context(), monitor.ID, limit)

	if err != nil {
		h.logger.Error().Err(err).Uint("monitor_id", monitor.ID).Msg("failed to list logs")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}

	responses := make([]types.MonitorLogResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, types.MonitorLogResponse{
			ID:           log.ID,
			Status:       log.Status,
			ResponseTime: log.ResponseTime,
			StatusCode:   log.StatusCode,
			Reason:       log.Reason,
			CheckedAt:    log.CheckedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"logs": responses})
}

func (h *Handler) GetUptime(ctx *gin.Context) {
	monitor, ok := h.userMonitor(ctx)
	if !ok {
		return
	}

	now := time.Now()
	from := now.Add(-24 * time.Hour)
	to := now

	if raw := ctx.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		from = parsed
	}
	if raw := ctx.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		to = parsed
	}

	report, err := h.uptime.Window(ctx.Request.Context(), monitor.ID, from, to)

	if err != nil {
		if errors.Is(err, uptime.ErrInvalidWindow) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Window start must be before window end"})
			return
		}
		h.logger.Error().Err(err).Uint("monitor_id", monitor.ID).Msg("failed to compute uptime")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute uptime"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"uptime": report})
}

func (h *Handler) GetUptimeSummary(ctx *gin.Context) {
	monitor, ok := h.userMonitor(ctx)
	if !ok {
		return
	}

	summary, err := h.uptime.Summarize(ctx.Request.Context(), monitor.ID)

	if err != nil {
		h.logger.Error().Err(err).Uint("monitor_id", monitor.ID).Msg("failed to summarize uptime")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute uptime"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) GetIncidents(ctx *gin.Context) {
	monitor, ok := h.userMonitor(ctx)
	if !ok {
		return
	}

	now := time.Now()
	incidents, err := h.store.OverlappingIncidents(ctx.Request.Context(), monitor.ID, now.Add(-30*24*time.Hour), now)

	if err != nil {
		h.logger.Error().Err(err).Uint("monitor_id", monitor.ID).Msg("failed to list incidents")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve incidents"})
		return
	}

	responses := make([]types.IncidentResponse, 0, len(incidents))
	for _, incident := range incidents {
		responses = append(responses, types.IncidentResponse{
			ID:            incident.ID,
			MonitorID:     incident.MonitorID,
			Status:        incident.Status,
			TriggerReason: incident.TriggerReason,
			StartedAt:     incident.StartedAt,
			EndedAt:       incident.EndedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"incidents": responses})
}

// userMonitor resolves the :monitor_id path param to a monitor owned by the
// authenticated user, writing the error response itself on failure.
func (h *Handler) userMonitor(ctx *gin.Context) (*models.Monitor, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}

	monitorID, err := utils.GetMonitorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	monitor, err := h.store.GetUserMonitor(ctx.Request.Context(), userID, monitorID)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Monitor not found"})
			return nil, false
		}
		h.logger.Error().Err(err).Msg("failed to fetch monitor")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve monitor"})
		return nil, false
	}

	return monitor, true
}
