package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/records"
)

// GetState 设备快照
// @Summary 查询设备状态
// @Description 返回实时状态、设备参数、连接状态与平台能力
// @Tags 设备
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/state [get]
func (h *Handler) GetState(c *gin.Context) {
	h.ok(c, http.StatusOK, "ok", h.state.Snapshot())
}

// ListRecords 运动记录
// @Summary 查询运动记录
// @Tags 记录
// @Produce json
// @Security ApiKeyAuth
// @Param device query string false "设备地址"
// @Param limit query int false "数量上限(默认100)"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/records [get]
func (h *Handler) ListRecords(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.fail(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	address := c.Query("device")

	if h.records == nil {
		recs := h.state.Records()
		// 内存记录按到达顺序，返回最近的 limit 条
		if len(recs) > limit {
			recs = recs[len(recs)-limit:]
		}
		h.ok(c, http.StatusOK, "ok", gin.H{"source": "memory", "records": recs})
		return
	}

	entries, err := h.records.List(c.Request.Context(), address, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if entries == nil {
		entries = []records.Entry{}
	}
	h.ok(c, http.StatusOK, "ok", gin.H{"source": "store", "records": entries})
}

// Connect 扫描并连接 WalkingPad
// @Summary 连接设备
// @Description 默认后台连接并立即返回 202；wait=true 时等待连接结果
// @Tags 连接
// @Produce json
// @Security ApiKeyAuth
// @Param wait query bool false "是否等待连接完成"
// @Success 200 {object} StandardResponse "已连接"
// @Success 202 {object} StandardResponse "连接中"
// @Failure 404 {object} StandardResponse "未发现设备"
// @Failure 409 {object} StandardResponse "已有连接流程"
// @Router /api/v1/connect [post]
func (h *Handler) Connect(c *gin.Context) {
	h.connect(c, h.ctrl.Connect)
}

// ConnectAny 不按名称过滤
// @Summary 连接任意设备
// @Tags 连接
// @Produce json
// @Security ApiKeyAuth
// @Param wait query bool false "是否等待连接完成"
// @Success 202 {object} StandardResponse "连接中"
// @Router /api/v1/connect-any [post]
func (h *Handler) ConnectAny(c *gin.Context) {
	h.connect(c, h.ctrl.ConnectAny)
}

func (h *Handler) connect(c *gin.Context, fn func(context.Context) error) {
	wait, _ := strconv.ParseBool(c.DefaultQuery("wait", "false"))
	if !wait {
		go func() {
			if err := fn(h.base); err != nil {
				h.logger.Warn("background connect failed", zap.Error(err))
			}
		}()
		h.ok(c, http.StatusAccepted, "connecting", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.waitTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, http.StatusOK, "connected", h.state.Snapshot())
}

// Disconnect 手动断开，不触发自动重连
// @Summary 断开设备
// @Tags 连接
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/disconnect [post]
func (h *Handler) Disconnect(c *gin.Context) {
	h.ctrl.Disconnect()
	h.ok(c, http.StatusOK, "disconnected", nil)
}

// CancelReconnect 取消进行中的重连
// @Summary 取消重连
// @Tags 连接
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/reconnect/cancel [post]
func (h *Handler) CancelReconnect(c *gin.Context) {
	h.ctrl.CancelReconnect()
	h.ok(c, http.StatusOK, "reconnect cancelled", nil)
}

// Reconnect 立即尝试重连已配对或上次连接的设备
// 自动重连关闭、手动断开后、已有连接或无可用设备时不会启动
// @Summary 持续重连
// @Tags 连接
// @Produce json
// @Security ApiKeyAuth
// @Success 202 {object} StandardResponse "已开始"
// @Failure 409 {object} StandardResponse "未启动"
// @Router /api/v1/reconnect [post]
func (h *Handler) Reconnect(c *gin.Context) {
	if !h.ctrl.TryAutoReconnect(h.base) {
		h.fail(c, http.StatusConflict, "auto-reconnect not started")
		return
	}
	h.ok(c, http.StatusAccepted, "reconnecting", nil)
}

type toggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetAutoReconnect 开关自动重连
// @Summary 设置自动重连
// @Tags 连接
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body toggleRequest true "开关"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/auto-reconnect [put]
func (h *Handler) SetAutoReconnect(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	h.ctrl.SetAutoReconnect(c.Request.Context(), *req.Enabled)
	h.ok(c, http.StatusOK, "ok", gin.H{"auto_reconnect": *req.Enabled})
}
