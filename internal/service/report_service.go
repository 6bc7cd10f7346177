package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/labextract-server/internal/cache"
	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/internal/metrics"
	"github.com/labextract-server/internal/store"
	"github.com/labextract-server/internal/textract"
	"github.com/labextract-server/pkg/vocabulary"
)

var (
	// ErrPersistenceDisabled is returned by history and entity queries when no store is wired.
	ErrPersistenceDisabled = errors.New("persistence is disabled")
	// ErrPersistence wraps store failures so callers can map them to a database error.
	ErrPersistence = errors.New("persistence failed")
)

// Engine is the extraction pipeline the service drives.
type Engine interface {
	Extract(text string, hint domain.DocumentType) *domain.ExtractionResult
	Vocabulary() *vocabulary.Vocabulary
	Config() domain.ExtractionConfig
}

// ResultCache stores finished results by input digest.
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.ExtractionResult, bool)
	Set(ctx context.Context, key string, result *domain.ExtractionResult) error
}

// RunRecorder receives the audit record of every extraction.
type RunRecorder interface {
	Create(ctx context.Context, run *domain.ExtractionRun) error
}

// ExtractRequest is one report submission.
type ExtractRequest struct {
	Text      string
	TypeHint  domain.DocumentType
	UserID    string
	Source    domain.RunSource
	Filename  string
	RequestID string
}

// ExtractResponse is the engine result plus the caller-side policy outcome.
type ExtractResponse struct {
	ReportID string `json:"report_id"`
	*domain.ExtractionResult
	NeedsReview bool               `json:"needs_review"`
	Truncated   bool               `json:"truncated"`
	InputChars  int                `json:"input_chars"`
	CacheHit    bool               `json:"cache_hit"`
	DurationMS  int64              `json:"duration_ms"`
	Saved       *store.SaveSummary `json:"saved,omitempty"`
}

// ReportService applies the input budget, caching, review gate and persistence around the
// engine.
type ReportService struct {
	engine      Engine
	cfg         domain.ServiceConfig
	fingerprint string
	logger      *logrus.Logger

	text    textract.Extractor
	store   store.Store
	runs    RunRecorder
	results ResultCache
	metrics *metrics.Metrics
}

// Option customises a ReportService.
type Option func(*ReportService)

// WithStore enables entity persistence.
func WithStore(s store.Store) Option {
	return func(r *ReportService) { r.store = s }
}

// WithRunRecorder enables the extraction audit trail.
func WithRunRecorder(rec RunRecorder) Option {
	return func(r *ReportService) { r.runs = rec }
}

// WithCache enables result caching.
func WithCache(c ResultCache) Option {
	return func(r *ReportService) { r.results = c }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *ReportService) { r.metrics = m }
}

// WithTextExtractor replaces the plain-text-only document reader.
func WithTextExtractor(e textract.Extractor) Option {
	return func(r *ReportService) { r.text = e }
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(r *ReportService) { r.logger = logger }
}

// NewReportService creates a service. Zero policy values take the defaults.
func NewReportService(engine Engine, cfg domain.ServiceConfig, opts ...Option) *ReportService {
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = 200000
	}
	s := &ReportService{
		engine:      engine,
		cfg:         cfg,
		fingerprint: configFingerprint(engine.Config()),
		text:        textract.NewChain(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.New()
	}
	return s
}

// configFingerprint identifies an engine configuration for cache keys. Map keys marshal in
// sorted order, so equal configurations give equal fingerprints.
func configFingerprint(cfg domain.ExtractionConfig) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "unversioned"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Extract runs one text submission through the pipeline.
func (s *ReportService) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.NewValidationError("text", "report text is required", "")
	}
	if req.Source == "" {
		req.Source = domain.SourceText
	}

	start := time.Now()
	inputChars := utf8.RuneCountInString(req.Text)
	text, truncated := TruncateInput(req.Text, s.cfg.MaxInputChars)

	result, cacheHit := s.lookup(ctx, text, req.TypeHint)
	if !cacheHit {
		result = s.engine.Extract(text, req.TypeHint)
		s.remember(ctx, text, req.TypeHint, result)
	}
	elapsed := time.Since(start)

	resp := &ExtractResponse{
		ReportID:         uuid.New().String(),
		ExtractionResult: result,
		NeedsReview:      NeedsReview(result, s.cfg.ReviewThreshold),
		Truncated:        truncated,
		InputChars:       inputChars,
		CacheHit:         cacheHit,
		DurationMS:       elapsed.Milliseconds(),
	}

	if s.metrics != nil {
		s.metrics.ObserveExtraction(req.Source, result, elapsed, inputChars, resp.NeedsReview, truncated)
	}

	fields := logrus.Fields{
		"report_id":     resp.ReportID,
		"request_id":    req.RequestID,
		"source":        req.Source,
		"document_type": result.DocumentType,
		"biomarkers":    len(result.Biomarkers),
		"variants":      len(result.Variants),
		"confidence":    result.Confidence,
		"needs_review":  resp.NeedsReview,
		"truncated":     truncated,
		"cache_hit":     cacheHit,
	}

	if s.cfg.Persist && s.store != nil && req.UserID != "" && result.EntityCount() > 0 {
		saved, err := s.store.SaveResult(ctx, req.UserID, resp.ReportID, result)
		if s.metrics != nil {
			s.metrics.ObserveStore("save_result", err)
		}
		if err != nil {
			s.logger.WithFields(fields).WithError(err).Error("Failed to persist extraction")
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		resp.Saved = saved
	}

	s.record(ctx, req, resp)
	s.logger.WithFields(fields).Info("Report extracted")
	return resp, nil
}

// ExtractDocument converts an uploaded document to text and extracts it.
func (s *ReportService) ExtractDocument(ctx context.Context, doc textract.Document, req ExtractRequest) (*ExtractResponse, error) {
	text, err := s.text.ExtractText(ctx, doc)
	if s.metrics != nil {
		s.metrics.ObserveTextExtraction(textOutcome(err))
	}
	if err != nil {
		return nil, err
	}
	req.Text = text
	if req.Source == "" {
		req.Source = domain.SourceUpload
	}
	if req.Filename == "" {
		req.Filename = doc.Filename
	}
	return s.Extract(ctx, req)
}

func textOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, textract.ErrUnsupportedContentType):
		return "unsupported"
	case errors.Is(err, textract.ErrEmptyText):
		return "empty"
	}
	return "error"
}

func (s *ReportService) lookup(ctx context.Context, text string, hint domain.DocumentType) (*domain.ExtractionResult, bool) {
	if s.results == nil {
		return nil, false
	}
	result, ok := s.results.Get(ctx, cache.Key(text, hint, s.fingerprint))
	if s.metrics != nil {
		s.metrics.ObserveCache(ok)
	}
	return result, ok
}

func (s *ReportService) remember(ctx context.Context, text string, hint domain.DocumentType, result *domain.ExtractionResult) {
	if s.results == nil {
		return
	}
	if err := s.results.Set(ctx, cache.Key(text, hint, s.fingerprint), result); err != nil {
		s.logger.WithError(err).Warn("Failed to cache extraction result")
	}
}

func (s *ReportService) record(ctx context.Context, req ExtractRequest, resp *ExtractResponse) {
	if s.runs == nil {
		return
	}
	id, _ := uuid.Parse(resp.ReportID)
	run := &domain.ExtractionRun{
		ID:             id,
		UserID:         req.UserID,
		Source:         req.Source,
		Filename:       req.Filename,
		DocumentType:   resp.DocumentType,
		BiomarkerCount: len(resp.Biomarkers),
		VariantCount:   len(resp.Variants),
		Confidence:     resp.Confidence,
		NeedsReview:    resp.NeedsReview,
		Truncated:      resp.Truncated,
		InputChars:     resp.InputChars,
		DurationMS:     resp.DurationMS,
		CacheHit:       resp.CacheHit,
		RequestID:      req.RequestID,
	}
	// The audit trail is best effort; a failed insert never fails the extraction.
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.WithError(err).WithField("report_id", resp.ReportID).Warn("Failed to record extraction run")
	}
}

// Resolve maps a raw name to its canonical vocabulary entry.
func (s *ReportService) Resolve(kind vocabulary.Kind, name string) (vocabulary.Match, error) {
	if strings.TrimSpace(name) == "" {
		return vocabulary.Match{}, domain.NewValidationError("name", "name is required", name)
	}
	return s.engine.Vocabulary().Resolve(kind, name), nil
}

// Vocabulary returns the engine vocabulary.
func (s *ReportService) Vocabulary() *vocabulary.Vocabulary {
	return s.engine.Vocabulary()
}

// ListBiomarkers returns the biomarkers stored for a user.
func (s *ReportService) ListBiomarkers(ctx context.Context, userID string, limit, offset int) ([]*store.BiomarkerRecord, error) {
	if s.store == nil {
		return nil, ErrPersistenceDisabled
	}
	out, err := s.store.ListBiomarkers(ctx, userID, limit, offset)
	if s.metrics != nil {
		s.metrics.ObserveStore("list_biomarkers", err)
	}
	return out, err
}

// ListVariants returns the variants stored for a user.
func (s *ReportService) ListVariants(ctx context.Context, userID string, limit, offset int) ([]*store.VariantRecord, error) {
	if s.store == nil {
		return nil, ErrPersistenceDisabled
	}
	out, err := s.store.ListVariants(ctx, userID, limit, offset)
	if s.metrics != nil {
		s.metrics.ObserveStore("list_variants", err)
	}
	return out, err
}

// NeedsReview is the acceptance gate: unclassified documents and scores below threshold
// go to a human.
func NeedsReview(result *domain.ExtractionResult, threshold float64) bool {
	return result.DocumentType == domain.DocumentUnknown || result.Confidence < threshold
}

// TruncateInput cuts text to at most maxChars runes, preferring the last line break inside
// the budget so no line is split.
func TruncateInput(text string, maxChars int) (string, bool) {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text, false
	}
	cut := 0
	for i := range text {
		if maxChars == 0 {
			cut = i
			break
		}
		maxChars--
	}
	head := text[:cut]
	if nl := strings.LastIndexByte(head, '\n'); nl >= 0 {
		return head[:nl], true
	}
	return head, true
}
