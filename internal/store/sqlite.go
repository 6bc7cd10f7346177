package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/labextract-server/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite entity store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS biomarkers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		key TEXT NOT NULL,
		name TEXT NOT NULL,
		canonical_key TEXT DEFAULT '',
		value REAL NOT NULL,
		comparator TEXT DEFAULT '',
		unit TEXT DEFAULT '',
		reference_low REAL,
		reference_high REAL,
		reference_text TEXT DEFAULT '',
		status TEXT DEFAULT '',
		confidence REAL NOT NULL,
		strategy TEXT NOT NULL,
		matched INTEGER NOT NULL DEFAULT 0,
		report_id TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, key)
	);

	CREATE TABLE IF NOT EXISTS variants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		key TEXT NOT NULL,
		raw_name TEXT DEFAULT '',
		identifier TEXT DEFAULT '',
		gene TEXT DEFAULT '',
		notation TEXT DEFAULT '',
		genotype TEXT NOT NULL,
		zygosity TEXT DEFAULT '',
		canonical_key TEXT DEFAULT '',
		confidence REAL NOT NULL,
		strategy TEXT NOT NULL,
		matched INTEGER NOT NULL DEFAULT 0,
		report_id TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_biomarkers_user ON biomarkers(user_id);
	CREATE INDEX IF NOT EXISTS idx_variants_user ON variants(user_id);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveResult upserts the result's entities in a single transaction.
func (s *SQLiteStore) SaveResult(ctx context.Context, userID, reportID string, result *domain.ExtractionResult) (*SaveSummary, error) {
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
		_, err := tx.ExecContext(ctx, `
			INSERT INTO biomarkers (
				user_id, key, name, canonical_key, value, comparator, unit,
				reference_low, reference_high, reference_text, status,
				confidence, strategy, matched, report_id, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, key) DO UPDATE SET
				name = excluded.name,
				canonical_key = excluded.canonical_key,
				value = excluded.value,
				comparator = excluded.comparator,
				unit = excluded.unit,
				reference_low = excluded.reference_low,
				reference_high = excluded.reference_high,
				reference_text = excluded.reference_text,
				status = excluded.status,
				confidence = excluded.confidence,
				strategy = excluded.strategy,
				matched = excluded.matched,
				report_id = excluded.report_id,
				updated_at = excluded.updated_at
		`,
			b.UserID, b.Key, b.Name, b.CanonicalKey, b.Value, b.Comparator, b.Unit,
			nullFloat(b.ReferenceLow), nullFloat(b.ReferenceHigh), b.ReferenceText, b.Status,
			b.Confidence, b.Strategy, b.Matched, b.ReportID, now, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert biomarker %s: %w", b.Key, err)
		}
	}

	for i := range variants {
		v := &variants[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO variants (
				user_id, key, raw_name, identifier, gene, notation, genotype, zygosity,
				canonical_key, confidence, strategy, matched, report_id, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, key) DO UPDATE SET
				raw_name = excluded.raw_name,
				identifier = excluded.identifier,
				gene = excluded.gene,
				notation = excluded.notation,
				genotype = excluded.genotype,
				zygosity = excluded.zygosity,
				canonical_key = excluded.canonical_key,
				confidence = excluded.confidence,
				strategy = excluded.strategy,
				matched = excluded.matched,
				report_id = excluded.report_id,
				updated_at = excluded.updated_at
		`,
			v.UserID, v.Key, v.RawName, v.Identifier, v.Gene, v.Notation, v.Genotype, v.Zygosity,
			v.CanonicalKey, v.Confidence, v.Strategy, v.Matched, v.ReportID, now, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert variant %s: %w", v.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return &SaveSummary{Biomarkers: len(biomarkers), Variants: len(variants), Skipped: skipped}, nil
}

const sqliteBiomarkerColumns = `id, user_id, key, name, canonical_key, value, comparator, unit,
	reference_low, reference_high, reference_text, status,
	confidence, strategy, matched, report_id, created_at, updated_at`

const sqliteVariantColumns = `id, user_id, key, raw_name, identifier, gene, notation, genotype, zygosity,
	canonical_key, confidence, strategy, matched, report_id, created_at, updated_at`

// GetBiomarker retrieves one biomarker by key.
func (s *SQLiteStore) GetBiomarker(ctx context.Context, userID, key string) (*BiomarkerRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sqliteBiomarkerColumns+" FROM biomarkers WHERE user_id = ? AND key = ?", userID, key)
	rec, err := scanBiomarker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rec, nil
}

// GetVariant retrieves one variant by key.
func (s *SQLiteStore) GetVariant(ctx context.Context, userID, key string) (*VariantRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sqliteVariantColumns+" FROM variants WHERE user_id = ? AND key = ?", userID, key)
	rec, err := scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rec, nil
}

// ListBiomarkers returns a user's biomarkers ordered by key.
func (s *SQLiteStore) ListBiomarkers(ctx context.Context, userID string, limit, offset int) ([]*BiomarkerRecord, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sqliteBiomarkerColumns+" FROM biomarkers WHERE user_id = ? ORDER BY key LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	result := []*BiomarkerRecord{}
	for rows.Next() {
		rec, err := scanBiomarker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// ListVariants returns a user's variants ordered by key.
func (s *SQLiteStore) ListVariants(ctx context.Context, userID string, limit, offset int) ([]*VariantRecord, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sqliteVariantColumns+" FROM variants WHERE user_id = ? ORDER BY key LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	result := []*VariantRecord{}
	for rows.Next() {
		rec, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Count returns the number of stored entities for a user.
func (s *SQLiteStore) Count(ctx context.Context, userID string) (*Counts, error) {
	c := &Counts{}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM biomarkers WHERE user_id = ?", userID).Scan(&c.Biomarkers); err != nil {
		return nil, fmt.Errorf("failed to count biomarkers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM variants WHERE user_id = ?", userID).Scan(&c.Variants); err != nil {
		return nil, fmt.Errorf("failed to count variants: %w", err)
	}
	return c, nil
}

// ExportJSON exports every entity stored for a user.
func (s *SQLiteStore) ExportJSON(ctx context.Context, userID string, writer io.Writer) error {
	return exportJSON(ctx, s, userID, writer)
}

// DeleteUser removes every entity stored for a user.
func (s *SQLiteStore) DeleteUser(ctx context.Context, userID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var total int64
	for _, table := range []string{"biomarkers", "variants"} {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id = ?", userID)
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
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
