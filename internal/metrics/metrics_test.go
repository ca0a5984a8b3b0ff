package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LinksCreatedTotal.WithLabelValues(ResultSuccess).Inc()
	m.RedirectsTotal.WithLabelValues(ResultNotFound).Inc()
	m.ClickIncrementsTotal.WithLabelValues(ResultError).Add(2)
	m.CodeCollisionsTotal.Inc()
	m.CacheLookupsTotal.WithLabelValues(ResultHit).Inc()
	m.HTTPRequestsTotal.WithLabelValues("GET", "/{short_code}", "301").Inc()
	m.HTTPRequestDuration.WithLabelValues("GET", "/{short_code}").Observe(0.01)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinksCreatedTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClickIncrementsTotal.WithLabelValues(ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CodeCollisionsTotal))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.ElementsMatch(t, []string{
		"http_requests_total",
		"http_request_duration_seconds",
		"links_created_total",
		"redirects_total",
		"click_increments_total",
		"code_collisions_total",
		"url_cache_lookups_total",
	}, names)
}

func TestNew_TwiceOnOneRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}

func TestNewUnregistered_Independent(t *testing.T) {
	first := NewUnregistered()
	second := NewUnregistered()

	first.CodeCollisionsTotal.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(first.CodeCollisionsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.CodeCollisionsTotal))
}

func TestHandler(t *testing.T) {
	m := NewUnregistered()
	m.RedirectsTotal.WithLabelValues(ResultSuccess).Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `redirects_total{result="success"} 1`)
}
