package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 購入処理の総数（status: success, capacity_exceeded, conflict, lock_failed, validation, error）
	FulfillmentsTotal *prometheus.CounterVec

	// 発券済みチケットの総数
	TicketsIssuedTotal prometheus.Counter

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// 支払い待ちのまま放置されている申込数（リマインダーワーカーが更新）
	StalePendingRegistrations prometheus.Gauge
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		FulfillmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillments_total",
				Help: "Total number of ticket purchase attempts",
			},
			[]string{"status"},
		),
		TicketsIssuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tickets_issued_total",
				Help: "Total number of tickets issued after payment completion",
			},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		StalePendingRegistrations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stale_pending_registrations",
				Help: "Number of registrations still pending past the configured expiry",
			},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.FulfillmentsTotal,
		m.TicketsIssuedTotal,
		m.DistributedLockDuration,
		m.StalePendingRegistrations,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
