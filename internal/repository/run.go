package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/labextract-server/internal/domain"
)

// RunRepository persists the extraction audit trail
type RunRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *pgxpool.Pool, logger *logrus.Logger) *RunRepository {
	return &RunRepository{
		db:  db,
		log: logger,
	}
}

const runColumns = `id, user_id, source, filename, document_type, biomarker_count, variant_count,
	confidence, needs_review, truncated, input_chars, duration_ms, cache_hit, request_id, created_at`

// Create inserts a run. A zero ID or timestamp is filled in.
func (r *RunRepository) Create(ctx context.Context, run *domain.ExtractionRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO extraction_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.Exec(ctx, query,
		run.ID,
		run.UserID,
		string(run.Source),
		run.Filename,
		string(run.DocumentType),
		run.BiomarkerCount,
		run.VariantCount,
		run.Confidence,
		run.NeedsReview,
		run.Truncated,
		run.InputChars,
		run.DurationMS,
		run.CacheHit,
		run.RequestID,
		run.CreatedAt,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"run_id":        run.ID,
			"document_type": run.DocumentType,
			"error":         err,
		}).Error("Failed to record extraction run")
		return fmt.Errorf("creating extraction run: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"run_id":        run.ID,
		"document_type": run.DocumentType,
		"confidence":    run.Confidence,
		"needs_review":  run.NeedsReview,
	}).Debug("Extraction run recorded")
	return nil
}

// GetByID retrieves a run by its ID
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error) {
	query := `SELECT ` + runColumns + ` FROM extraction_runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("extraction run not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting extraction run by ID: %w", err)
	}
	return run, nil
}

// ListByUser returns a user's runs, newest first
func (r *RunRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.ExtractionRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + runColumns + ` FROM extraction_runs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying extraction runs: %w", err)
	}
	defer rows.Close()

	runs := []*domain.ExtractionRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning extraction run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating extraction run rows: %w", err)
	}
	return runs, nil
}

// Summary aggregates the runs created since the given time
func (r *RunRepository) Summary(ctx context.Context, since time.Time) (*domain.RunSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT document_type, COUNT(*), COUNT(*) FILTER (WHERE needs_review), COALESCE(SUM(confidence), 0)
		FROM extraction_runs
		WHERE created_at >= $1
		GROUP BY document_type`, since)
	if err != nil {
		return nil, fmt.Errorf("summarizing extraction runs: %w", err)
	}
	defer rows.Close()

	summary := &domain.RunSummary{ByDocumentType: map[domain.DocumentType]int64{}}
	var confidenceSum float64
	for rows.Next() {
		var (
			docType      string
			count, flags int64
			sum          float64
		)
		if err := rows.Scan(&docType, &count, &flags, &sum); err != nil {
			return nil, fmt.Errorf("scanning run summary: %w", err)
		}
		summary.ByDocumentType[domain.DocumentType(docType)] = count
		summary.Total += count
		summary.NeedsReview += flags
		confidenceSum += sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run summary rows: %w", err)
	}
	if summary.Total > 0 {
		summary.MeanConfidence = confidenceSum / float64(summary.Total)
	}
	return summary, nil
}

// DeleteOlderThan removes runs created before cutoff and returns how many were removed
func (r *RunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM extraction_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting extraction runs: %w", err)
	}
	n := result.RowsAffected()
	if n > 0 {
		r.log.WithField("deleted", n).Info("Pruned extraction runs")
	}
	return n, nil
}

func scanRun(row pgx.Row) (*domain.ExtractionRun, error) {
	var (
		run           domain.ExtractionRun
		source, dtype string
	)
	err := row.Scan(
		&run.ID,
		&run.UserID,
		&source,
		&run.Filename,
		&dtype,
		&run.BiomarkerCount,
		&run.VariantCount,
		&run.Confidence,
		&run.NeedsReview,
		&run.Truncated,
		&run.InputChars,
		&run.DurationMS,
		&run.CacheHit,
		&run.RequestID,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Source = domain.RunSource(source)
	run.DocumentType = domain.DocumentType(dtype)
	return &run, nil
}
