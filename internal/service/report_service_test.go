package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labextract-server/internal/cache"
	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/internal/extraction"
	"github.com/labextract-server/internal/metrics"
	"github.com/labextract-server/internal/store"
	"github.com/labextract-server/internal/textract"
	"github.com/labextract-server/pkg/vocabulary"
)

const chemistry = "Glucose: 95.5 mg/dL\nTotal Cholesterol: 180 mg/dL"

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newEngine(t *testing.T) *extraction.Engine {
	t.Helper()
	e, err := extraction.NewEngine(domain.DefaultExtractionConfig())
	require.NoError(t, err)
	return e
}

func newSQLite(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "entities.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type fakeRecorder struct {
	runs []*domain.ExtractionRun
	err  error
}

func (f *fakeRecorder) Create(_ context.Context, run *domain.ExtractionRun) error {
	f.runs = append(f.runs, run)
	return f.err
}

type failingStore struct {
	store.Store
}

func (failingStore) SaveResult(context.Context, string, string, *domain.ExtractionResult) (*store.SaveSummary, error) {
	return nil, errors.New("disk full")
}

func TestTruncateInput(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		max       int
		want      string
		truncated bool
	}{
		{"within budget", "Glucose 95", 100, "Glucose 95", false},
		{"no limit", "Glucose 95", 0, "Glucose 95", false},
		{"exact budget", "abcd", 4, "abcd", false},
		{"cut at line break", "line one\nline two\nline three", 20, "line one\nline two", true},
		{"no line break", "abcdefghij", 4, "abcd", true},
		{"only break is leading", "\nGlucose 95 mg/dL", 8, "", true},
		{"break just inside budget", "Glucose\nInsulin 12", 9, "Glucose", true},
		{"counts runes", "µµµµµµ", 3, "µµµ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := TruncateInput(tt.text, tt.max)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.truncated, truncated)
		})
	}
}

func TestNeedsReview(t *testing.T) {
	tests := []struct {
		name   string
		result domain.ExtractionResult
		want   bool
	}{
		{"confident biomarker report", domain.ExtractionResult{DocumentType: domain.DocumentBiomarker, Confidence: 85}, false},
		{"below threshold", domain.ExtractionResult{DocumentType: domain.DocumentGenetic, Confidence: 59.9}, true},
		{"at threshold", domain.ExtractionResult{DocumentType: domain.DocumentGenetic, Confidence: 60}, false},
		{"unknown document", domain.ExtractionResult{DocumentType: domain.DocumentUnknown, Confidence: 95}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsReview(&tt.result, 60))
		})
	}
}

func TestReportServiceExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("empty text is rejected", func(t *testing.T) {
		svc := NewReportService(newEngine(t), domain.ServiceConfig{}, WithLogger(quietLogger()))
		_, err := svc.Extract(ctx, ExtractRequest{Text: "  \n"})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "text", verr.Field)
	})

	t.Run("biomarker report", func(t *testing.T) {
		svc := NewReportService(newEngine(t), domain.ServiceConfig{ReviewThreshold: 60}, WithLogger(quietLogger()))
		resp, err := svc.Extract(ctx, ExtractRequest{Text: chemistry})
		require.NoError(t, err)

		assert.Equal(t, domain.DocumentBiomarker, resp.DocumentType)
		assert.Len(t, resp.Biomarkers, 2)
		assert.False(t, resp.NeedsReview)
		assert.False(t, resp.Truncated)
		assert.False(t, resp.CacheHit)
		assert.Equal(t, len([]rune(chemistry)), resp.InputChars)
		assert.NotEmpty(t, resp.ReportID)
		assert.Nil(t, resp.Saved)
	})

	t.Run("unknown document needs review", func(t *testing.T) {
		svc := NewReportService(newEngine(t), domain.ServiceConfig{ReviewThreshold: 60}, WithLogger(quietLogger()))
		resp, err := svc.Extract(ctx, ExtractRequest{Text: "Thank you for choosing our clinic."})
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentUnknown, resp.DocumentType)
		assert.True(t, resp.NeedsReview)
		assert.Equal(t, 0, resp.EntityCount())
	})

	t.Run("oversized input is truncated", func(t *testing.T) {
		svc := NewReportService(newEngine(t), domain.ServiceConfig{MaxInputChars: 20}, WithLogger(quietLogger()))
		resp, err := svc.Extract(ctx, ExtractRequest{Text: chemistry, TypeHint: domain.DocumentBiomarker})
		require.NoError(t, err)
		assert.True(t, resp.Truncated)
		assert.Equal(t, len([]rune(chemistry)), resp.InputChars)
		require.Len(t, resp.Biomarkers, 1)
		assert.Equal(t, "glucose", resp.Biomarkers[0].CanonicalKey)
	})
}

func TestReportServiceCaching(t *testing.T) {
	ctx := context.Background()
	results := cache.NewWithClient(domain.CacheConfig{}, nil, quietLogger())
	m := metrics.New(false)
	svc := NewReportService(newEngine(t), domain.ServiceConfig{},
		WithCache(results), WithMetrics(m), WithLogger(quietLogger()))

	first, err := svc.Extract(ctx, ExtractRequest{Text: chemistry})
	require.NoError(t, err)
	second, err := svc.Extract(ctx, ExtractRequest{Text: chemistry})
	require.NoError(t, err)

	assert.False(t, first.CacheHit)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.DocumentType, second.DocumentType)
	assert.Equal(t, first.Confidence, second.Confidence)
	require.Len(t, second.Biomarkers, len(first.Biomarkers))
	for i := range first.Biomarkers {
		assert.Equal(t, first.Biomarkers[i].Key(), second.Biomarkers[i].Key())
		assert.Equal(t, first.Biomarkers[i].Value, second.Biomarkers[i].Value)
	}
	assert.NotEqual(t, first.ReportID, second.ReportID)

	// a different hint is a different cache entry
	third, err := svc.Extract(ctx, ExtractRequest{Text: chemistry, TypeHint: domain.DocumentBiomarker})
	require.NoError(t, err)
	assert.False(t, third.CacheHit)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("biomarker", "text")))
}

func TestReportServicePersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("related analytes keep separate rows", func(t *testing.T) {
		svc := NewReportService(newEngine(t), domain.ServiceConfig{Persist: true},
			WithStore(newSQLite(t)), WithLogger(quietLogger()))

		panel := "Albumin: 4.4 g/dL\nGlobulin: 2.8 g/dL\nAlbumin/Globulin Ratio: 1.6"
		_, err := svc.Extract(ctx, ExtractRequest{Text: panel, TypeHint: domain.DocumentBiomarker, UserID: "user-2"})
		require.NoError(t, err)

		list, err := svc.ListBiomarkers(ctx, "user-2", 0, 0)
		require.NoError(t, err)
		values := make(map[string]float64, len(list))
		for _, rec := range list {
			values[rec.Key] = rec.Value
		}
		assert.Equal(t, 2.8, values["globulin"])
		assert.Equal(t, 1.6, values["albumin_globulin_ratio"])
		assert.Equal(t, 4.4, values["albumin"])
	})

	t.Run("saves entities for a user", func(t *testing.T) {
		entities := newSQLite(t)
		runs := &fakeRecorder{}
		svc := NewReportService(newEngine(t), domain.ServiceConfig{Persist: true},
			WithStore(entities), WithRunRecorder(runs), WithLogger(quietLogger()))

		resp, err := svc.Extract(ctx, ExtractRequest{
			Text: chemistry, UserID: "user-1", Source: domain.SourceMCP, RequestID: "req-1",
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Saved)
		assert.Equal(t, 2, resp.Saved.Biomarkers)

		list, err := svc.ListBiomarkers(ctx, "user-1", 0, 0)
		require.NoError(t, err)
		assert.Len(t, list, 2)
		for _, rec := range list {
			assert.Equal(t, resp.ReportID, rec.ReportID)
		}

		variants, err := svc.ListVariants(ctx, "user-1", 0, 0)
		require.NoError(t, err)
		assert.Empty(t, variants)

		require.Len(t, runs.runs, 1)
		run := runs.runs[0]
		assert.Equal(t, resp.ReportID, run.ID.String())
		assert.Equal(t, "user-1", run.UserID)
		assert.Equal(t, domain.SourceMCP, run.Source)
		assert.Equal(t, 2, run.BiomarkerCount)
		assert.Equal(t, "req-1", run.RequestID)
	})

	t.Run("anonymous requests are not saved", func(t *testing.T) {
		entities := newSQLite(t)
		svc := NewReportService(newEngine(t), domain.ServiceConfig{Persist: true},
			WithStore(entities), WithLogger(quietLogger()))

		resp, err := svc.Extract(ctx, ExtractRequest{Text: chemistry})
		require.NoError(t, err)
		assert.Nil(t, resp.Saved)

		counts, err := entities.Count(ctx, "")
		require.NoError(t, err)
		assert.Zero(t, counts.Biomarkers)
	})

	t.Run("store failure fails the request", func(t *testing.T) {
		svc := NewReportService(newEngine(t), domain.ServiceConfig{Persist: true},
			WithStore(failingStore{}), WithLogger(quietLogger()))

		_, err := svc.Extract(ctx, ExtractRequest{Text: chemistry, UserID: "user-1"})
		assert.ErrorIs(t, err, ErrPersistence)
	})

	t.Run("run recorder failure is tolerated", func(t *testing.T) {
		runs := &fakeRecorder{err: errors.New("connection refused")}
		svc := NewReportService(newEngine(t), domain.ServiceConfig{},
			WithRunRecorder(runs), WithLogger(quietLogger()))

		_, err := svc.Extract(ctx, ExtractRequest{Text: chemistry})
		require.NoError(t, err)
		assert.Len(t, runs.runs, 1)
	})

	t.Run("listing without a store", func(t *testing.T) {
		svc := NewReportService(newEngine(t), domain.ServiceConfig{}, WithLogger(quietLogger()))
		_, err := svc.ListBiomarkers(ctx, "user-1", 10, 0)
		assert.ErrorIs(t, err, ErrPersistenceDisabled)
		_, err = svc.ListVariants(ctx, "user-1", 10, 0)
		assert.ErrorIs(t, err, ErrPersistenceDisabled)
	})
}

func TestReportServiceExtractDocument(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(false)
	runs := &fakeRecorder{}
	svc := NewReportService(newEngine(t), domain.ServiceConfig{},
		WithMetrics(m), WithRunRecorder(runs), WithLogger(quietLogger()))

	t.Run("plain text upload", func(t *testing.T) {
		resp, err := svc.ExtractDocument(ctx, textract.Document{
			Filename: "panel.txt", ContentType: "text/plain", Data: []byte(chemistry),
		}, ExtractRequest{})
		require.NoError(t, err)
		assert.Len(t, resp.Biomarkers, 2)

		run := runs.runs[len(runs.runs)-1]
		assert.Equal(t, domain.SourceUpload, run.Source)
		assert.Equal(t, "panel.txt", run.Filename)
	})

	t.Run("unsupported document", func(t *testing.T) {
		_, err := svc.ExtractDocument(ctx, textract.Document{
			Filename: "scan.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7"),
		}, ExtractRequest{})
		assert.ErrorIs(t, err, textract.ErrUnsupportedContentType)
	})

	t.Run("blank document", func(t *testing.T) {
		_, err := svc.ExtractDocument(ctx, textract.Document{
			Filename: "blank.txt", ContentType: "text/plain", Data: []byte("   "),
		}, ExtractRequest{})
		assert.ErrorIs(t, err, textract.ErrEmptyText)
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TextExtractionsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TextExtractionsTotal.WithLabelValues("unsupported")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TextExtractionsTotal.WithLabelValues("empty")))
}

func TestReportServiceResolve(t *testing.T) {
	svc := NewReportService(newEngine(t), domain.ServiceConfig{}, WithLogger(quietLogger()))

	m, err := svc.Resolve(vocabulary.KindBiomarker, "Ferritin, Serum")
	require.NoError(t, err)
	assert.True(t, m.Matched())
	assert.Equal(t, "ferritin", m.Key)

	m, err = svc.Resolve(vocabulary.KindVariant, "MTHFR C677T")
	require.NoError(t, err)
	assert.Equal(t, "mthfr_c677t", m.Key)

	m, err = svc.Resolve(vocabulary.KindBiomarker, "Widgetase Activity")
	require.NoError(t, err)
	assert.False(t, m.Matched())

	_, err = svc.Resolve(vocabulary.KindBiomarker, " ")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "name"))
}

func TestConfigFingerprint(t *testing.T) {
	base := domain.DefaultExtractionConfig()
	tuned := domain.DefaultExtractionConfig()
	tuned.MinConfidence = 65

	assert.Equal(t, configFingerprint(base), configFingerprint(domain.DefaultExtractionConfig()))
	assert.NotEqual(t, configFingerprint(base), configFingerprint(tuned))
}
