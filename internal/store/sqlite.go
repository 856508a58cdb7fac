package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roamkit/tripcore/internal/domain"
	"github.com/roamkit/tripcore/internal/schema"
)

// SQLiteStore implements Store using SQLite. Each itinerary is one row
// holding the full JSON document; a write replaces the row in a single
// statement so the previous version is never observable half-overwritten.
type SQLiteStore struct {
	db    *sql.DB
	stats stats
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dsn and migrates it.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS itineraries (
			itinerary_id TEXT PRIMARY KEY,
			created_by TEXT NOT NULL,
			doc TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_itineraries_owner ON itineraries(created_by)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put validates and persists an itinerary, replacing any previous version.
func (s *SQLiteStore) Put(ctx context.Context, it *domain.Itinerary) error {
	it.CreatedBy = strings.ToLower(it.CreatedBy)
	if verr := schema.Validate(it); verr != nil {
		return verr
	}

	doc, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("failed to marshal itinerary: %w", err)
	}

	// Single upsert statement: SQLite applies it atomically, so concurrent
	// writes to the same id serialize and readers never see a torn record.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO itineraries (itinerary_id, created_by, doc, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(itinerary_id) DO UPDATE SET
			created_by = excluded.created_by,
			doc = excluded.doc,
			updated_at = excluded.updated_at`,
		it.ID, it.CreatedBy, string(doc))
	if err != nil {
		return fmt.Errorf("failed to persist itinerary: %w", err)
	}
	return nil
}

// Get retrieves a single itinerary by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Itinerary, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM itineraries WHERE itinerary_id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	it, verr := s.decode(id, []byte(doc))
	if verr != nil {
		// A stored record that no longer parses or validates is reported,
		// not served.
		return nil, domain.ErrRecordNotFound
	}
	return it, nil
}

// ListByOwner returns all valid records owned by identity plus diagnostics
// for every excluded record.
func (s *SQLiteStore) ListByOwner(ctx context.Context, identity string) (*ListResult, error) {
	identity = strings.ToLower(identity)
	rows, err := s.db.QueryContext(ctx,
		`SELECT itinerary_id, doc FROM itineraries WHERE created_by = ? ORDER BY itinerary_id`,
		identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &ListResult{Itineraries: []domain.Itinerary{}}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		it, diag := s.decode(id, []byte(doc))
		if diag != nil {
			result.Skipped = append(result.Skipped, *diag)
			continue
		}
		result.Itineraries = append(result.Itineraries, *it)
	}
	return result, rows.Err()
}

// decode parses and validates a stored document, classifying failures and
// bumping the matching counter.
func (s *SQLiteStore) decode(id string, doc []byte) (*domain.Itinerary, *SkipDiagnostic) {
	it, err := schema.ParseAndValidate(doc)
	if err == nil {
		return it, nil
	}

	if verr, ok := domain.AsValidationError(err); ok {
		s.stats.invalid.Add(1)
		log.Printf("WARN: itinerary %s excluded from listing, validation failed: %v", id, verr)
		return nil, &SkipDiagnostic{ItineraryID: id, Reason: SkipReasonInvalid, Detail: verr.Error()}
	}

	s.stats.corrupt.Add(1)
	log.Printf("ERROR: itinerary %s excluded from listing, corrupt document: %v", id, err)
	return nil, &SkipDiagnostic{ItineraryID: id, Reason: SkipReasonCorrupt, Detail: err.Error()}
}

// Stats returns the exclusion counters.
func (s *SQLiteStore) Stats() StatsSnapshot {
	return s.stats.snapshot()
}
