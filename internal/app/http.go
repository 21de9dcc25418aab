package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/api/middleware"
	cfgpkg "github.com/taoyao-code/walkpad-gateway/internal/config"
	"github.com/taoyao-code/walkpad-gateway/internal/httpserver"
)

// NewHTTPServer 根据配置创建 HTTP 服务器，挂载请求追踪、访问日志与 CORS
func NewHTTPServer(cfg cfgpkg.HTTPConfig, metricsPath string, metricsHandler http.Handler, readyFn func() bool, logger *zap.Logger) *httpserver.Server {
	return httpserver.New(cfg, metricsPath, metricsHandler, readyFn,
		middleware.RequestTracing(),
		middleware.AccessLog(logger),
		middleware.CORS(),
	)
}
