package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.FulfillmentsTotal)
	assert.NotNil(t, m.TicketsIssuedTotal)
	assert.NotNil(t, m.DistributedLockDuration)
	assert.NotNil(t, m.StalePendingRegistrations)
}

func TestFulfillmentsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	// 購入成功・失敗をカウント
	m.FulfillmentsTotal.WithLabelValues("success").Inc()
	m.FulfillmentsTotal.WithLabelValues("success").Inc()
	m.FulfillmentsTotal.WithLabelValues("capacity_exceeded").Inc()
	m.FulfillmentsTotal.WithLabelValues("conflict").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "fulfillments_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "fulfillments_total metric not found")
}

func TestTicketsIssuedTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.TicketsIssuedTotal.Add(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "tickets_issued_total" {
			found = true
			assert.Equal(t, float64(3), f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "tickets_issued_total metric not found")
}

func TestStalePendingRegistrations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.StalePendingRegistrations.Set(7)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "stale_pending_registrations" {
			found = true
			assert.Equal(t, float64(7), f.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found, "stale_pending_registrations metric not found")
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/events", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/registrations", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/registrations", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestInit_CreatesDefaultMetrics(t *testing.T) {
	// 既存のdefaultMetricsをバックアップ
	oldMetrics := defaultMetrics
	defer func() { defaultMetrics = oldMetrics }()

	// Initを呼ぶとデフォルトレジストリに登録するため、テストでは直接セット
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	defaultMetrics = m

	got := Get()
	assert.NotNil(t, got)
	assert.Equal(t, m, got)
}
