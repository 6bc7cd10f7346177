package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunSource tells which surface submitted a report.
type RunSource string

const (
	SourceText   RunSource = "text"
	SourceUpload RunSource = "upload"
	SourceMCP    RunSource = "mcp"
	SourceCLI    RunSource = "cli"
)

// ExtractionRun is the audit record of one extraction call. It never holds report text.
type ExtractionRun struct {
	ID             uuid.UUID    `json:"id"`
	UserID         string       `json:"user_id,omitempty"`
	Source         RunSource    `json:"source"`
	Filename       string       `json:"filename,omitempty"`
	DocumentType   DocumentType `json:"document_type"`
	BiomarkerCount int          `json:"biomarker_count"`
	VariantCount   int          `json:"variant_count"`
	Confidence     float64      `json:"confidence"`
	NeedsReview    bool         `json:"needs_review"`
	Truncated      bool         `json:"truncated"`
	InputChars     int          `json:"input_chars"`
	DurationMS     int64        `json:"duration_ms"`
	CacheHit       bool         `json:"cache_hit"`
	RequestID      string       `json:"request_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// RunSummary aggregates runs over a time window.
type RunSummary struct {
	Total          int64                  `json:"total"`
	NeedsReview    int64                  `json:"needs_review"`
	MeanConfidence float64                `json:"mean_confidence"`
	ByDocumentType map[DocumentType]int64 `json:"by_document_type"`
}
