package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBiomarker(s scanner) (*BiomarkerRecord, error) {
	rec := &BiomarkerRecord{}
	var low, high sql.NullFloat64
	err := s.Scan(
		&rec.ID, &rec.UserID, &rec.Key, &rec.Name, &rec.CanonicalKey, &rec.Value, &rec.Comparator, &rec.Unit,
		&low, &high, &rec.ReferenceText, &rec.Status,
		&rec.Confidence, &rec.Strategy, &rec.Matched, &rec.ReportID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.ReferenceLow = floatPtr(low)
	rec.ReferenceHigh = floatPtr(high)
	return rec, nil
}

func scanVariant(s scanner) (*VariantRecord, error) {
	rec := &VariantRecord{}
	err := s.Scan(
		&rec.ID, &rec.UserID, &rec.Key, &rec.RawName, &rec.Identifier, &rec.Gene, &rec.Notation,
		&rec.Genotype, &rec.Zygosity, &rec.CanonicalKey, &rec.Confidence, &rec.Strategy, &rec.Matched,
		&rec.ReportID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}

func exportJSON(ctx context.Context, s Store, userID string, writer io.Writer) error {
	biomarkers, err := s.ListBiomarkers(ctx, userID, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list biomarkers: %w", err)
	}
	variants, err := s.ListVariants(ctx, userID, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list variants: %w", err)
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		UserID:     userID,
		Biomarkers: biomarkers,
		Variants:   variants,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}
