package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

type speedRequest struct {
	Speed *int `json:"speed" binding:"required,min=0,max=255"` // 0.1 km/h
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // auto | manual | sleep
}

type sensitivityRequest struct {
	Sensitivity string `json:"sensitivity" binding:"required"` // high | medium | low
}

type unitRequest struct {
	Unit string `json:"unit" binding:"required"` // metric | imperial
}

type displayRequest struct {
	Flags *int `json:"flags" binding:"required,min=0,max=31"` // walkpad.Display* 位组合
}

// command 绑定请求体并执行设备命令
func command[T any](h *Handler, c *gin.Context, run func(req T) error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := run(req); err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, http.StatusOK, "command queued", nil)
}

// SetSpeed 设置速度
// @Summary 设置速度
// @Description 单位 0.1 km/h，例如 35 表示 3.5 km/h
// @Tags 控制
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body speedRequest true "速度"
// @Success 200 {object} StandardResponse "成功"
// @Failure 409 {object} StandardResponse "未连接"
// @Router /api/v1/speed [post]
func (h *Handler) SetSpeed(c *gin.Context) {
	command(h, c, func(req speedRequest) error { return h.ctrl.SetSpeed(*req.Speed) })
}

// SetMode 切换模式
// @Summary 切换模式
// @Tags 控制
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body modeRequest true "模式"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/mode [post]
func (h *Handler) SetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	m, ok := walkpad.ParseMode(req.Mode)
	if !ok {
		h.fail(c, http.StatusBadRequest, "unknown mode: "+req.Mode)
		return
	}
	if err := h.ctrl.SetMode(m); err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, http.StatusOK, "command queued", gin.H{"mode": m.String()})
}

// Start 启动跑带，休眠时先切换到手动模式
// @Summary 启动
// @Tags 控制
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/start [post]
func (h *Handler) Start(c *gin.Context) {
	h.simple(c, h.ctrl.Start)
}

// Stop 停止并进入休眠
// @Summary 停止
// @Tags 控制
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/stop [post]
func (h *Handler) Stop(c *gin.Context) {
	h.simple(c, h.ctrl.Stop)
}

func (h *Handler) simple(c *gin.Context, fn func() error) {
	if err := fn(); err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, http.StatusOK, "command queued", nil)
}

// SetStartSpeed 设置启动速度
// @Summary 设置启动速度
// @Tags 参数
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body speedRequest true "速度"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/start-speed [put]
func (h *Handler) SetStartSpeed(c *gin.Context) {
	command(h, c, func(req speedRequest) error { return h.ctrl.SetStartSpeed(*req.Speed) })
}

// SetMaxSpeed 设置最高速度
// @Summary 设置最高速度
// @Tags 参数
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body speedRequest true "速度"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/max-speed [put]
func (h *Handler) SetMaxSpeed(c *gin.Context) {
	command(h, c, func(req speedRequest) error { return h.ctrl.SetMaxSpeed(*req.Speed) })
}

// SetSensitivity 设置自动模式灵敏度
// @Summary 设置灵敏度
// @Tags 参数
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body sensitivityRequest true "灵敏度"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/sensitivity [put]
func (h *Handler) SetSensitivity(c *gin.Context) {
	var req sensitivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	v, ok := walkpad.ParseSensitivity(req.Sensitivity)
	if !ok {
		h.fail(c, http.StatusBadRequest, "unknown sensitivity: "+req.Sensitivity)
		return
	}
	h.simple(c, func() error { return h.ctrl.SetSensitivity(v) })
}

// SetUnit 设置显示单位
// @Summary 设置单位
// @Tags 参数
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body unitRequest true "单位"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/unit [put]
func (h *Handler) SetUnit(c *gin.Context) {
	var req unitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	u, ok := walkpad.ParseUnit(req.Unit)
	if !ok {
		h.fail(c, http.StatusBadRequest, "unknown unit: "+req.Unit)
		return
	}
	h.simple(c, func() error { return h.ctrl.SetUnit(u) })
}

// SetAutoStart 开关自动启动
// @Summary 设置自动启动
// @Tags 参数
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body toggleRequest true "开关"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/auto-start [put]
func (h *Handler) SetAutoStart(c *gin.Context) {
	command(h, c, func(req toggleRequest) error { return h.ctrl.SetAutoStart(*req.Enabled) })
}

// SetLock 开关童锁
// @Summary 设置童锁
// @Tags 参数
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body toggleRequest true "开关"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/lock [put]
func (h *Handler) SetLock(c *gin.Context) {
	command(h, c, func(req toggleRequest) error { return h.ctrl.SetLock(*req.Enabled) })
}

// SetCalibration 开关校准模式
// @Summary 设置校准模式
// @Tags 参数
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body toggleRequest true "开关"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/calibration [put]
func (h *Handler) SetCalibration(c *gin.Context) {
	command(h, c, func(req toggleRequest) error { return h.ctrl.SetCalibration(*req.Enabled) })
}

// SetDisplay 设置面板显示项
// @Summary 设置显示项
// @Tags 参数
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body displayRequest true "显示项位组合"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/display [put]
func (h *Handler) SetDisplay(c *gin.Context) {
	command(h, c, func(req displayRequest) error { return h.ctrl.SetDisplayInfo(byte(*req.Flags)) })
}

// SyncRecords 请求设备上报历史记录
// @Summary 同步运动记录
// @Tags 记录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param count query int false "条数(0=全部)"
// @Success 200 {object} StandardResponse "成功"
// @Router /api/v1/records/sync [post]
func (h *Handler) SyncRecords(c *gin.Context) {
	count := 0
	if v := c.Query("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 255 {
			h.fail(c, http.StatusBadRequest, "count must be between 0 and 255")
			return
		}
		count = n
	}
	h.simple(c, func() error { return h.ctrl.SyncRecords(byte(count)) })
}
