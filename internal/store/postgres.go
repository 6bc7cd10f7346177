package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"

	"github.com/labextract-server/internal/domain"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL entity store.
// It expects the schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL entity store from a connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

const pgUpsertBiomarker = `
	INSERT INTO biomarkers (
		user_id, key, name, canonical_key, value, comparator, unit,
		reference_low, reference_high, reference_text, status,
		confidence, strategy, matched, report_id, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (user_id, key) DO UPDATE SET
		name = EXCLUDED.name,
		canonical_key = EXCLUDED.canonical_key,
		value = EXCLUDED.value,
		comparator = EXCLUDED.comparator,
		unit = EXCLUDED.unit,
		reference_low = EXCLUDED.reference_low,
		reference_high = EXCLUDED.reference_high,
		reference_text = EXCLUDED.reference_text,
		status = EXCLUDED.status,
		confidence = EXCLUDED.confidence,
		strategy = EXCLUDED.strategy,
		matched = EXCLUDED.matched,
		report_id = EXCLUDED.report_id,
		updated_at = EXCLUDED.updated_at`

const pgUpsertVariant = `
	INSERT INTO variants (
		user_id, key, raw_name, identifier, gene, notation, genotype, zygosity,
		canonical_key, confidence, strategy, matched, report_id, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (user_id, key) DO UPDATE SET
		raw_name = EXCLUDED.raw_name,
		identifier = EXCLUDED.identifier,
		gene = EXCLUDED.gene,
		notation = EXCLUDED.notation,
		genotype = EXCLUDED.genotype,
		zygosity = EXCLUDED.zygosity,
		canonical_key = EXCLUDED.canonical_key,
		confidence = EXCLUDED.confidence,
		strategy = EXCLUDED.strategy,
		matched = EXCLUDED.matched,
		report_id = EXCLUDED.report_id,
		updated_at = EXCLUDED.updated_at`

// SaveResult upserts the result's entities in a single transaction.
func (s *PostgresStore) SaveResult(ctx context.Context, userID, reportID string, result *domain.ExtractionResult) (*SaveSummary, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user_id", "user id is required", userID)
	}
	biomarkers := BiomarkerRecords(userID, reportID, result.Biomarkers)
	variants, skipped := VariantRecords(userID, reportID, result.Variants)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range biomarkers {
		b := &biomarkers[i]
		if _, err := tx.ExecContext(ctx, pgUpsertBiomarker,
			b.UserID, b.Key, b.Name, b.CanonicalKey, b.Value, b.Comparator, b.Unit,
			nullFloat(b.ReferenceLow), nullFloat(b.ReferenceHigh), b.ReferenceText, b.Status,
			b.Confidence, b.Strategy, b.Matched, b.ReportID, now, now,
		); err != nil {
			return nil, fmt.Errorf("failed to upsert biomarker %s: %w", b.Key, err)
		}
	}
	for i := range variants {
		v := &variants[i]
		if _, err := tx.ExecContext(ctx, pgUpsertVariant,
			v.UserID, v.Key, v.RawName, v.Identifier, v.Gene, v.Notation, v.Genotype, v.Zygosity,
			v.CanonicalKey, v.Confidence, v.Strategy, v.Matched, v.ReportID, now, now,
		); err != nil {
			return nil, fmt.Errorf("failed to upsert variant %s: %w", v.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return &SaveSummary{Biomarkers: len(biomarkers), Variants: len(variants), Skipped: skipped}, nil
}

const pgBiomarkerSelect = `SELECT id, user_id, key, name, canonical_key, value, comparator, unit,
	reference_low, reference_high, reference_text, status,
	confidence, strategy, matched, report_id, created_at, updated_at FROM biomarkers`

const pgVariantSelect = `SELECT id, user_id, key, raw_name, identifier, gene, notation, genotype, zygosity,
	canonical_key, confidence, strategy, matched, report_id, created_at, updated_at FROM variants`

// GetBiomarker retrieves one biomarker by key.
func (s *PostgresStore) GetBiomarker(ctx context.Context, userID, key string) (*BiomarkerRecord, error) {
	rec, err := scanBiomarker(s.db.QueryRowContext(ctx,
		pgBiomarkerSelect+" WHERE user_id = $1 AND key = $2", userID, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get biomarker: %w", err)
	}
	return rec, nil
}

// GetVariant retrieves one variant by key.
func (s *PostgresStore) GetVariant(ctx context.Context, userID, key string) (*VariantRecord, error) {
	rec, err := scanVariant(s.db.QueryRowContext(ctx,
		pgVariantSelect+" WHERE user_id = $1 AND key = $2", userID, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}
	return rec, nil
}

// ListBiomarkers returns a user's biomarkers ordered by key.
func (s *PostgresStore) ListBiomarkers(ctx context.Context, userID string, limit, offset int) ([]*BiomarkerRecord, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := s.db.QueryContext(ctx,
		pgBiomarkerSelect+" WHERE user_id = $1 ORDER BY key LIMIT $2 OFFSET $3", userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list biomarkers: %w", err)
	}
	defer rows.Close()

	result := []*BiomarkerRecord{}
	for rows.Next() {
		rec, err := scanBiomarker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan biomarker: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// ListVariants returns a user's variants ordered by key.
func (s *PostgresStore) ListVariants(ctx context.Context, userID string, limit, offset int) ([]*VariantRecord, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := s.db.QueryContext(ctx,
		pgVariantSelect+" WHERE user_id = $1 ORDER BY key LIMIT $2 OFFSET $3", userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer rows.Close()

	result := []*VariantRecord{}
	for rows.Next() {
		rec, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Count returns the number of stored entities for a user.
func (s *PostgresStore) Count(ctx context.Context, userID string) (*Counts, error) {
	c := &Counts{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM biomarkers WHERE user_id = $1),
			(SELECT COUNT(*) FROM variants WHERE user_id = $1)
	`, userID).Scan(&c.Biomarkers, &c.Variants)
	if err != nil {
		return nil, fmt.Errorf("failed to count entities: %w", err)
	}
	return c, nil
}

// ExportJSON exports every entity stored for a user.
func (s *PostgresStore) ExportJSON(ctx context.Context, userID string, writer io.Writer) error {
	return exportJSON(ctx, s, userID, writer)
}

// DeleteUser removes every entity stored for a user.
func (s *PostgresStore) DeleteUser(ctx context.Context, userID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var total int64
	for _, table := range []string{"biomarkers", "variants"} {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id = $1", userID)
		if err != nil {
			return 0, fmt.Errorf("failed to delete %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return total, nil
}

// Ping checks that the database answers.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
