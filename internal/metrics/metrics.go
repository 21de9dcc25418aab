package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 业务指标
// 所有方法对 nil 接收者安全，未启用指标时组件可直接传 nil
type AppMetrics struct {
	FramesDecoded     *prometheus.CounterVec // labels: kind=info|params|record|unknown
	CommandsEnqueued  prometheus.Counter
	CommandsCoalesced prometheus.Counter
	WritesTotal       *prometheus.CounterVec // labels: result=ok|error
	QueueDepth        prometheus.Gauge
	NotifyDropped     prometheus.Counter
	SessionState      prometheus.Gauge       // 0 disconnected 1 connecting 2 connected 3 reconnecting
	ConnectTotal      *prometheus.CounterVec // labels: result=ok|error
	ReconnectAttempts prometheus.Counter
	RecordsTotal      *prometheus.CounterVec // labels: result=stored|discarded|error
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		FramesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walkpad_frames_decoded_total",
			Help: "Notification frames decoded by event kind.",
		}, []string{"kind"}),
		CommandsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "walkpad_commands_enqueued_total",
			Help: "Commands appended to the outbound queue.",
		}),
		CommandsCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "walkpad_commands_coalesced_total",
			Help: "Pending commands replaced by a newer command of the same kind.",
		}),
		WritesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walkpad_writes_total",
			Help: "Write-without-response attempts by result.",
		}, []string{"result"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "walkpad_queue_depth",
			Help: "Commands waiting in the outbound queue.",
		}),
		NotifyDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "walkpad_notifications_dropped_total",
			Help: "Notifications dropped because the dispatcher was saturated.",
		}),
		SessionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "walkpad_session_state",
			Help: "Current session state (0 disconnected, 1 connecting, 2 connected, 3 reconnecting).",
		}),
		ConnectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walkpad_connect_total",
			Help: "Session establishment attempts by result.",
		}, []string{"result"}),
		ReconnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "walkpad_reconnect_attempts_total",
			Help: "Automatic reconnect attempts.",
		}),
		RecordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walkpad_records_total",
			Help: "Workout records by outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.FramesDecoded, m.CommandsEnqueued, m.CommandsCoalesced, m.WritesTotal, m.QueueDepth,
		m.NotifyDropped, m.SessionState, m.ConnectTotal, m.ReconnectAttempts, m.RecordsTotal,
	)
	return m
}

func (m *AppMetrics) ObserveFrame(kind string) {
	if m == nil {
		return
	}
	m.FramesDecoded.WithLabelValues(kind).Inc()
}

func (m *AppMetrics) ObserveEnqueue(coalesced bool) {
	if m == nil {
		return
	}
	if coalesced {
		m.CommandsCoalesced.Inc()
		return
	}
	m.CommandsEnqueued.Inc()
}

func (m *AppMetrics) ObserveWrite(err error) {
	if m == nil {
		return
	}
	m.WritesTotal.WithLabelValues(result(err)).Inc()
}

func (m *AppMetrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

func (m *AppMetrics) ObserveNotifyDropped() {
	if m == nil {
		return
	}
	m.NotifyDropped.Inc()
}

func (m *AppMetrics) SetSessionState(v int) {
	if m == nil {
		return
	}
	m.SessionState.Set(float64(v))
}

func (m *AppMetrics) ObserveConnect(err error) {
	if m == nil {
		return
	}
	m.ConnectTotal.WithLabelValues(result(err)).Inc()
}

func (m *AppMetrics) ObserveReconnectAttempt() {
	if m == nil {
		return
	}
	m.ReconnectAttempts.Inc()
}

// ObserveRecord result: stored|discarded|error
func (m *AppMetrics) ObserveRecord(result string) {
	if m == nil {
		return
	}
	m.RecordsTotal.WithLabelValues(result).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
