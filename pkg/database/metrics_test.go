package database

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func describeAll(c prometheus.Collector) []*prometheus.Desc {
	ch := make(chan *prometheus.Desc, 32)
	c.Describe(ch)
	close(ch)

	descs := make([]*prometheus.Desc, 0, 12)
	for d := range ch {
		descs = append(descs, d)
	}
	return descs
}

func TestNewPoolStatsCollector_NotNil(t *testing.T) {
	// Describe works without a pool; only Collect needs one.
	c := NewPoolStatsCollector(nil, "order-service")
	require.NotNil(t, c)
	assert.Equal(t, "order-service", c.service)
}

func TestPoolStatsCollector_Describe(t *testing.T) {
	var _ prometheus.Collector = (*PoolStatsCollector)(nil)

	descs := describeAll(NewPoolStatsCollector(nil, "order-service"))
	assert.Len(t, descs, 12)
}

func TestPoolStatsCollector_DescriptorNames(t *testing.T) {
	descs := describeAll(NewPoolStatsCollector(nil, "order-service"))

	joined := make([]string, 0, len(descs))
	for _, d := range descs {
		joined = append(joined, d.String())
	}
	all := strings.Join(joined, "\n")

	for _, name := range []string{
		"db_pool_acquired_connections",
		"db_pool_idle_connections",
		"db_pool_total_connections",
		"db_pool_max_connections",
		"db_pool_constructing_connections",
		"db_pool_acquire_count_total",
		"db_pool_acquire_duration_seconds_total",
		"db_pool_canceled_acquire_count_total",
		"db_pool_empty_acquire_count_total",
		"db_pool_new_connections_total",
		"db_pool_max_lifetime_destroy_total",
		"db_pool_max_idle_destroy_total",
	} {
		assert.Contains(t, all, `"`+name+`"`)
	}
}

func TestRegisterPoolMetrics_DuplicateRejected(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterPoolMetrics(reg, nil, "order-service"))
	assert.Error(t, RegisterPoolMetrics(reg, nil, "order-service"))
}
