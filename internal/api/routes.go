package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/api/middleware"
)

// RouteConfig 控制接口路由配置
type RouteConfig struct {
	Auth    middleware.AuthConfig
	Limiter *middleware.RateLimiter
}

// RegisterRoutes 注册 /api/v1 路由
func RegisterRoutes(r gin.IRouter, h *Handler, cfg RouteConfig, logger *zap.Logger) {
	v1 := r.Group("/api/v1")
	v1.Use(middleware.APIKeyAuth(cfg.Auth, logger))
	if cfg.Auth.Enabled() {
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(cfg.Auth.APIKeys)))
	} else {
		logger.Warn("api authentication disabled")
	}

	// 查询
	v1.GET("/state", h.GetState)
	v1.GET("/records", h.ListRecords)
	v1.GET("/stream", h.Stream)

	// 连接管理与设备命令经过限流
	ctl := v1.Group("")
	ctl.Use(cfg.Limiter.Middleware())

	ctl.POST("/connect", h.Connect)
	ctl.POST("/connect-any", h.ConnectAny)
	ctl.POST("/disconnect", h.Disconnect)
	ctl.POST("/reconnect", h.Reconnect)
	ctl.POST("/reconnect/cancel", h.CancelReconnect)
	ctl.PUT("/auto-reconnect", h.SetAutoReconnect)

	ctl.POST("/speed", h.SetSpeed)
	ctl.POST("/mode", h.SetMode)
	ctl.POST("/start", h.Start)
	ctl.POST("/stop", h.Stop)

	ctl.PUT("/start-speed", h.SetStartSpeed)
	ctl.PUT("/max-speed", h.SetMaxSpeed)
	ctl.PUT("/sensitivity", h.SetSensitivity)
	ctl.PUT("/unit", h.SetUnit)
	ctl.PUT("/auto-start", h.SetAutoStart)
	ctl.PUT("/lock", h.SetLock)
	ctl.PUT("/calibration", h.SetCalibration)
	ctl.PUT("/display", h.SetDisplay)

	ctl.POST("/records/sync", h.SyncRecords)
}
