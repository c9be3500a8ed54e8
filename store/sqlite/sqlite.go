/*
Package sqlite provides the SQLite-backed client profile store.

PURPOSE:
  Persists accounting-client records: identity, tax profile fields and alert
  configuration. The calendar engine and alert scheduler only ever READ these
  records; computed tax events are transient and are never persisted (the
  profile is the unit of truth).

SCHEMA:
  clients:
    Loosely-typed profile fields (classification/regime/periodicity stored as
    text, obligation flags as a JSON object, alert days and destination
    emails as JSON arrays). The factory package converts these records into
    strongly-typed profiles and makes every default explicit in one place.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/clients.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - factory/profile.go: boundary conversion and defaults
  - alert/scheduler.go: ListAlertEnabled consumer
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ClientRecord is the raw, loosely-typed client row. Strings may be empty
// and slices nil; defaulting is NOT done here but at the factory boundary,
// so that every default lives in exactly one place.
type ClientRecord struct {
	ID             string
	Name           string
	NIT            string
	Classification string
	Regime         string
	VATPeriodicity string
	FlagsJSON      string
	AlertDays      []int
	Emails         []string
	AlertsEnabled  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Store implements client persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		nit TEXT NOT NULL,
		classification TEXT NOT NULL,
		regime TEXT,
		vat_periodicity TEXT,
		flags_json TEXT NOT NULL DEFAULT '{}',
		alert_days_json TEXT,
		emails_json TEXT NOT NULL DEFAULT '[]',
		alerts_enabled INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_clients_alerts_enabled ON clients(alerts_enabled);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CLIENT CRUD
// =============================================================================

// SaveClient inserts or replaces a client record.
func (s *Store) SaveClient(ctx context.Context, c ClientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alertDays, err := marshalNullable(c.AlertDays)
	if err != nil {
		return fmt.Errorf("failed to encode alert days: %w", err)
	}
	emails, err := json.Marshal(emptyIfNil(c.Emails))
	if err != nil {
		return fmt.Errorf("failed to encode emails: %w", err)
	}
	flags := c.FlagsJSON
	if flags == "" {
		flags = "{}"
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, nit, classification, regime, vat_periodicity,
			flags_json, alert_days_json, emails_json, alerts_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			nit = excluded.nit,
			classification = excluded.classification,
			regime = excluded.regime,
			vat_periodicity = excluded.vat_periodicity,
			flags_json = excluded.flags_json,
			alert_days_json = excluded.alert_days_json,
			emails_json = excluded.emails_json,
			alerts_enabled = excluded.alerts_enabled,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, c.NIT, c.Classification, c.Regime, c.VATPeriodicity,
		flags, alertDays, string(emails), boolToInt(c.AlertsEnabled),
		c.CreatedAt.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save client %s: %w", c.ID, err)
	}
	return nil
}

// GetClient returns one client, or nil when the id is unknown.
func (s *Store) GetClient(ctx context.Context, id string) (*ClientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectClients+" WHERE id = ?", id)
	rec, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListClients returns every client, ordered by name.
func (s *Store) ListClients(ctx context.Context) ([]ClientRecord, error) {
	return s.queryClients(ctx, selectClients+" ORDER BY name, id")
}

// ListAlertEnabled returns the clients with alerting switched on, ordered by
// id so batch runs walk them in a stable order.
func (s *Store) ListAlertEnabled(ctx context.Context) ([]ClientRecord, error) {
	return s.queryClients(ctx, selectClients+" WHERE alerts_enabled = 1 ORDER BY id")
}

// DeleteClient removes a client record.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete client %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Reset clears all data. Development and scenario loading only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM clients")
	return err
}

// =============================================================================
// ROW SCANNING
// =============================================================================

const selectClients = `
	SELECT id, name, nit, classification, regime, vat_periodicity,
	       flags_json, alert_days_json, emails_json, alerts_enabled,
	       created_at, updated_at
	FROM clients`

func (s *Store) queryClients(ctx context.Context, query string, args ...any) ([]ClientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var out []ClientRecord
	for rows.Next() {
		rec, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (ClientRecord, error) {
	var (
		rec                  ClientRecord
		regime, periodicity  sql.NullString
		alertDaysJSON        sql.NullString
		emailsJSON           string
		enabled              int
		createdAt, updatedAt string
	)
	err := row.Scan(&rec.ID, &rec.Name, &rec.NIT, &rec.Classification,
		&regime, &periodicity, &rec.FlagsJSON, &alertDaysJSON, &emailsJSON,
		&enabled, &createdAt, &updatedAt)
	if err != nil {
		return rec, err
	}

	rec.Regime = regime.String
	rec.VATPeriodicity = periodicity.String
	rec.AlertsEnabled = enabled != 0

	if alertDaysJSON.Valid && alertDaysJSON.String != "" {
		if err := json.Unmarshal([]byte(alertDaysJSON.String), &rec.AlertDays); err != nil {
			return rec, fmt.Errorf("client %s: malformed alert days: %w", rec.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(emailsJSON), &rec.Emails); err != nil {
		return rec, fmt.Errorf("client %s: malformed emails: %w", rec.ID, err)
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		rec.UpdatedAt = t
	}
	return rec, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// marshalNullable keeps the distinction between "no alert-day configuration"
// (NULL) and an explicit empty list; the factory treats only the former as
// "use the default".
func marshalNullable(days []int) (any, error) {
	if days == nil {
		return nil, nil
	}
	b, err := json.Marshal(days)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
