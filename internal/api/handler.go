package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
	"github.com/taoyao-code/walkpad-gateway/internal/records"
	"github.com/taoyao-code/walkpad-gateway/internal/state"
	"github.com/taoyao-code/walkpad-gateway/internal/supervisor"
)

// Controller 设备控制面，由 supervisor.Supervisor 实现
type Controller interface {
	Connect(ctx context.Context) error
	ConnectAny(ctx context.Context) error
	Disconnect()
	CancelReconnect()
	SetAutoReconnect(ctx context.Context, enabled bool)
	TryAutoReconnect(ctx context.Context) bool

	SetSpeed(speed int) error
	SetMode(m walkpad.Mode) error
	Start() error
	Stop() error
	SetStartSpeed(speed int) error
	SetMaxSpeed(speed int) error
	SetSensitivity(v walkpad.Sensitivity) error
	SetAutoStart(enabled bool) error
	SetUnit(u walkpad.Unit) error
	SetLock(enabled bool) error
	SetDisplayInfo(flags byte) error
	SetCalibration(enabled bool) error
	SyncRecords(n byte) error
}

// StateSource 设备快照，由 state.Store 实现
type StateSource interface {
	Snapshot() state.Snapshot
	Subscribe() (<-chan state.Snapshot, func())
	Records() []walkpad.Record
}

// RecordLister 已落库的运动记录
type RecordLister interface {
	List(ctx context.Context, address string, limit int) ([]records.Entry, error)
}

// StandardResponse 标准响应格式
type StandardResponse struct {
	Code      int         `json:"code"`           // 0=成功，其它为 HTTP 状态码
	Message   string      `json:"message"`        // 消息
	Data      interface{} `json:"data,omitempty"` // 业务数据
	RequestID string      `json:"request_id"`     // 请求追踪ID
	Timestamp int64       `json:"timestamp"`      // 时间戳
}

// Handler 控制接口处理器
type Handler struct {
	ctrl    Controller
	state   StateSource
	records RecordLister
	// base 后台连接使用的上下文，随进程退出取消
	base        context.Context
	waitTimeout time.Duration
	logger      *zap.Logger
}

// NewHandler records 可为 nil，此时只返回内存中的记录
func NewHandler(base context.Context, ctrl Controller, st StateSource, rec RecordLister, waitTimeout time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if waitTimeout <= 0 {
		waitTimeout = 45 * time.Second
	}
	return &Handler{
		ctrl:        ctrl,
		state:       st,
		records:     rec,
		base:        base,
		waitTimeout: waitTimeout,
		logger:      logger,
	}
}

func (h *Handler) ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, StandardResponse{
		Code:      0,
		Message:   message,
		Data:      data,
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().Unix(),
	})
}

func (h *Handler) fail(c *gin.Context, status int, message string) {
	c.JSON(status, StandardResponse{
		Code:      status,
		Message:   message,
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().Unix(),
	})
}

// respondError 按错误类型映射状态码
func (h *Handler) respondError(c *gin.Context, err error) {
	status := classifyError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Warn("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	h.fail(c, status, err.Error())
}

func classifyError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, supervisor.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, supervisor.ErrNotConnected),
		errors.Is(err, supervisor.ErrBusy),
		errors.Is(err, supervisor.ErrCancelled):
		return http.StatusConflict
	case errors.Is(err, ble.ErrNoDeviceFound), errors.Is(err, ble.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ble.ErrUserCancelledSelection):
		return http.StatusRequestTimeout
	case errors.Is(err, ble.ErrServiceNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ble.ErrUnsupportedTransport), errors.Is(err, ble.ErrNotSupported):
		return http.StatusServiceUnavailable
	case errors.Is(err, ble.ErrLinkUnstable), errors.Is(err, ble.ErrNotInRange), errors.Is(err, supervisor.ErrReconnectExhausted):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
