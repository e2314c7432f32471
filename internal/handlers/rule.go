package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sarthak7846/uptime-monitor/internal/events"
	"github.com/sarthak7846/uptime-monitor/internal/models"
	"github.com/sarthak7846/uptime-monitor/internal/store"
	"github.com/sarthak7846/uptime-monitor/internal/types"
	"github.com/sarthak7846/uptime-monitor/internal/utils"
	"gorm.io/datatypes"
)

type CreateEndpointRequest struct {
	Channel string `json:"channel" binding:"required"`
	Address string `json:"address" binding:"required"`
}

type CreateRuleRequest struct {
	MonitorID  *uint    `json:"monitor_id"` // null subscribes to all of the user's monitors
	Events     []string `json:"events" binding:"required,min=1"`
	EndpointID uint     `json:"endpoint_id" binding:"required"`
	Enabled    *bool    `json:"enabled"`
}

func endpointResponse(e *models.NotificationEndpoint) types.EndpointResponse {
	return types.EndpointResponse{
		ID:      e.ID,
		Channel: e.Channel,
		Address: e.Address,
	}
}

func ruleResponse(r *models.NotificationRule) types.RuleResponse {
	var subscribed []string
	_ = json.Unmarshal(r.Events, &subscribed)

	return types.RuleResponse{
		ID:        r.ID,
		MonitorID: r.MonitorID,
		Events:    subscribed,
		Enabled:   r.Enabled,
		Endpoint:  endpointResponse(&r.Endpoint),
	}
}

func (h *Handler) CreateEndpoint(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateEndpointRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel := strings.ToUpper(strings.TrimSpace(req.Channel))
	if channel != types.ChannelEmail && channel != types.ChannelWebhook {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Channel must be EMAIL or WEBHOOK"})
		return
	}

	endpoint := models.NotificationEndpoint{
		UserID:  userID,
		Channel: channel,
		Address: strings.TrimSpace(req.Address),
	}

	if err := h.store.CreateEndpoint(ctx.Request.Context(), &endpoint); err != nil {
		h.logger.Error().Err(err).Msg("failed to create endpoint")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create endpoint"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"endpoint": endpointResponse(&endpoint)})
}

func (h *Handler) ListEndpoints(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	endpoints, err := h.store.ListEndpoints(ctx.Request.Context(), userID)

	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list endpoints")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve endpoints"})
		return
	}

	responses := make([]types.EndpointResponse, 0, len(endpoints))
	for i := range endpoints {
		responses = append(responses, endpointResponse(&endpoints[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"endpoints": responses})
}

func (h *Handler) CreateRule(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateRuleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, name := range req.Events {
		if !events.Type(name).Valid() {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event type " + name})
			return
		}
	}

	// The endpoint must belong to the same user.
	endpoint, err := h.store.GetEndpoint(ctx.Request.Context(), userID, req.EndpointID)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
			return
		}
		h.logger.Error().Err(err).Msg("failed to fetch endpoint")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve endpoint"})
		return
	}

	if req.MonitorID != nil {
		if _, err := h.store.GetUserMonitor(ctx.Request.Context(), userID, *req.MonitorID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Monitor not found"})
				return
			}
			h.logger.Error().Err(err).Msg("failed to fetch monitor")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve monitor"})
			return
		}
	}

	raw, err := json.Marshal(req.Events)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid events"})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	rule := models.NotificationRule{
		UserID:     userID,
		MonitorID:  req.MonitorID,
		Events:     datatypes.JSON(raw),
		Enabled:    enabled,
		EndpointID: endpoint.ID,
	}

	if err := h.store.CreateRule(ctx.Request.Context(), &rule); err != nil {
		h.logger.Error().Err(err).Msg("failed to create rule")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule"})
		return
	}

	rule.Endpoint = *endpoint

	ctx.JSON(http.StatusCreated, gin.H{"rule": ruleResponse(&rule)})
}

func (h *Handler) ListRules(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	rules, err := h.store.ListRules(ctx.Request.Context(), userID)

	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list rules")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rules"})
		return
	}

	responses := make([]types.RuleResponse, 0, len(rules))
	for i := range rules {
		responses = append(responses, ruleResponse(&rules[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"rules": responses})
}

func (h *Handler) DeleteRule(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ruleID, err := utils.GetRuleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.DeleteRule(ctx.Request.Context(), userID, ruleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
			return
		}
		h.logger.Error().Err(err).Msg("failed to delete rule")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rule"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Rule deleted successfully"})
}
