package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sarthak7846/uptime-monitor/internal/handlers"
	"github.com/sarthak7846/uptime-monitor/internal/types"
)

func NewRouter(h *handlers.Handler, authRequired gin.HandlerFunc) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws", authRequired, h.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.CreateUser)
			auth.POST("/login", h.LoginUser)
			auth.GET("/me", authRequired, h.Me)
		}

		monitors := api.Group("/monitors", authRequired)
		{
			monitors.POST("", h.CreateMonitor)
			monitors.GET("", h.ListMonitors)
			monitors.GET("/:monitor_id", h.GetMonitor)
			monitors.PATCH("/:monitor_id", h.UpdateMonitor)
			monitors.DELETE("/:monitor_id", h.DeleteMonitor)

			monitors.GET("/:monitor_id/logs", h.GetMonitorLogs)
			monitors.GET("/:monitor_id/incidents", h.GetIncidents)
			monitors.GET("/:monitor_id/uptime", h.GetUptime)
			monitors.GET("/:monitor_id/uptime/summary", h.GetUptimeSummary)
		}

		notifications := api.Group("/notifications", authRequired)
		{
			notifications.POST("/endpoints", h.CreateEndpoint)
			notifications.GET("/endpoints", h.ListEndpoints)
			notifications.POST("/rules", h.CreateRule)
			notifications.GET("/rules", h.ListRules)
			notifications.DELETE("/rules/:rule_id", h.DeleteRule)
		}
	}

	return r
}
