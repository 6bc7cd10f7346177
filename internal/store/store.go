// Package store persists extracted biomarkers and variants per user.
// Repeated submissions of the same entity update the existing row in place.
package store

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/labextract-server/internal/domain"
)

// BiomarkerRecord is one stored biomarker, unique on (UserID, Key).
type BiomarkerRecord struct {
	ID            int64     `json:"id,omitempty"`
	UserID        string    `json:"user_id"`
	Key           string    `json:"key"`
	Name          string    `json:"name"`
	CanonicalKey  string    `json:"canonical_key,omitempty"`
	Value         float64   `json:"value"`
	Comparator    string    `json:"comparator,omitempty"`
	Unit          string    `json:"unit,omitempty"`
	ReferenceLow  *float64  `json:"reference_low,omitempty"`
	ReferenceHigh *float64  `json:"reference_high,omitempty"`
	ReferenceText string    `json:"reference_text,omitempty"`
	Status        string    `json:"status,omitempty"`
	Confidence    float64   `json:"confidence"`
	Strategy      string    `json:"strategy"`
	Matched       bool      `json:"matched"`
	ReportID      string    `json:"report_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VariantRecord is one stored genotype call, unique on (UserID, Key).
type VariantRecord struct {
	ID           int64     `json:"id,omitempty"`
	UserID       string    `json:"user_id"`
	Key          string    `json:"key"`
	RawName      string    `json:"raw_name"`
	Identifier   string    `json:"identifier,omitempty"`
	Gene         string    `json:"gene,omitempty"`
	Notation     string    `json:"notation,omitempty"`
	Genotype     string    `json:"genotype"`
	Zygosity     string    `json:"zygosity,omitempty"`
	CanonicalKey string    `json:"canonical_key,omitempty"`
	Confidence   float64   `json:"confidence"`
	Strategy     string    `json:"strategy"`
	Matched      bool      `json:"matched"`
	ReportID     string    `json:"report_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SaveSummary reports what a SaveResult call wrote.
type SaveSummary struct {
	Biomarkers int `json:"biomarkers"`
	Variants   int `json:"variants"`
	Skipped    int `json:"skipped"`
}

// Counts is the number of stored entities for a user.
type Counts struct {
	Biomarkers int64 `json:"biomarkers"`
	Variants   int64 `json:"variants"`
}

// Store defines the persistence operations the service relies on.
type Store interface {
	// SaveResult upserts every entity of result for userID in one transaction.
	SaveResult(ctx context.Context, userID, reportID string, result *domain.ExtractionResult) (*SaveSummary, error)

	// GetBiomarker returns domain.ErrNotFound when nothing is stored under key.
	GetBiomarker(ctx context.Context, userID, key string) (*BiomarkerRecord, error)

	// GetVariant returns domain.ErrNotFound when nothing is stored under key.
	GetVariant(ctx context.Context, userID, key string) (*VariantRecord, error)

	ListBiomarkers(ctx context.Context, userID string, limit, offset int) ([]*BiomarkerRecord, error)
	ListVariants(ctx context.Context, userID string, limit, offset int) ([]*VariantRecord, error)
	Count(ctx context.Context, userID string) (*Counts, error)

	// ExportJSON writes every entity stored for userID.
	ExportJSON(ctx context.Context, userID string, writer io.Writer) error

	// DeleteUser removes every entity stored for userID and returns the number of rows removed.
	DeleteUser(ctx context.Context, userID string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// Export is the JSON export format.
type Export struct {
	Version    string             `json:"version"`
	ExportedAt time.Time          `json:"exported_at"`
	UserID     string             `json:"user_id"`
	Biomarkers []*BiomarkerRecord `json:"biomarkers"`
	Variants   []*VariantRecord   `json:"variants"`
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// BiomarkerRecords converts the resolved biomarkers of a result into rows. Results are
// ranked, so only the first entry per key is kept and a report never writes a key twice.
func BiomarkerRecords(userID, reportID string, biomarkers []domain.ResolvedBiomarker) []BiomarkerRecord {
	out := make([]BiomarkerRecord, 0, len(biomarkers))
	seen := make(map[string]bool, len(biomarkers))
	for i := range biomarkers {
		b := &biomarkers[i]
		rec := BiomarkerRecord{
			UserID:       userID,
			Key:          b.Key(),
			Name:         b.Name,
			CanonicalKey: b.CanonicalKey,
			Value:        b.Value,
			Comparator:   b.Comparator,
			Unit:         b.Unit,
			Status:       string(b.Status),
			Confidence:   b.Confidence,
			Strategy:     string(b.Strategy),
			Matched:      b.Matched,
			ReportID:     reportID,
		}
		if b.Range != nil {
			rec.ReferenceLow = b.Range.Low
			rec.ReferenceHigh = b.Range.High
			rec.ReferenceText = b.Range.Text
		}
		if seen[rec.Key] {
			continue
		}
		seen[rec.Key] = true
		out = append(out, rec)
	}
	return out
}

// VariantRecords converts the resolved variants of a result into rows. Variants without any
// identity are returned as skipped.
func VariantRecords(userID, reportID string, variants []domain.ResolvedVariant) (out []VariantRecord, skipped int) {
	out = make([]VariantRecord, 0, len(variants))
	seen := make(map[string]bool, len(variants))
	for i := range variants {
		v := &variants[i]
		key := v.Key()
		if key == "" {
			skipped++
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, VariantRecord{
			UserID:       userID,
			Key:          key,
			RawName:      v.RawName,
			Identifier:   strings.ToLower(v.Identifier),
			Gene:         v.Gene,
			Notation:     v.Notation,
			Genotype:     v.Genotype,
			Zygosity:     string(v.Zygosity),
			CanonicalKey: v.CanonicalKey,
			Confidence:   v.Confidence,
			Strategy:     string(v.Strategy),
			Matched:      v.Matched,
			ReportID:     reportID,
		})
	}
	return out, skipped
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
