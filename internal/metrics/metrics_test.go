package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labextract-server/internal/domain"
)

func TestObserveExtraction(t *testing.T) {
	m := New(false)
	result := &domain.ExtractionResult{
		DocumentType: domain.DocumentBiomarker,
		Biomarkers: []domain.ResolvedBiomarker{
			{Matched: true}, {Matched: true}, {Matched: false},
		},
		Variants:   []domain.ResolvedVariant{},
		Confidence: 42,
	}

	m.ObserveExtraction(domain.SourceText, result, 3*time.Millisecond, 1200, true, false)
	m.ObserveExtraction(domain.SourceUpload, result, time.Millisecond, 250000, true, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("biomarker", "text")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("biomarker", "upload")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.EntitiesTotal.WithLabelValues("biomarker", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntitiesTotal.WithLabelValues("biomarker", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReviewsTotal.WithLabelValues("biomarker")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TruncationsTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DocumentConfidence))
}

func TestObserveCacheStoreAndText(t *testing.T) {
	m := New(false)

	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveStore("save_result", nil)
	m.ObserveStore("save_result", errors.New("boom"))
	m.ObserveTextExtraction("unsupported")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("save_result", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TextExtractionsTotal.WithLabelValues("unsupported")))
}

func TestObserveHTTPAndHandler(t *testing.T) {
	m := New(false)
	m.ObserveHTTP(http.MethodPost, "/api/v1/extract", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/extract", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "labextract_http_requests_total"))
	assert.False(t, strings.Contains(body, "go_goroutines"))
}

func TestNewWithRuntimeCollectors(t *testing.T) {
	m := New(true)
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
}
