package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	first := NewMetrics(prometheus.NewRegistry())
	second := NewMetrics(prometheus.NewRegistry())

	first.CacheRequestsTotal.WithLabelValues("hit").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(first.CacheRequestsTotal.WithLabelValues("hit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.CacheRequestsTotal.WithLabelValues("hit")))
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	assert.Panics(t, func() { NewMetrics(reg) })
}
