package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/clarifier/pkg/clarifier/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// one connection serializes batch workers on the ledger
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS descriptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	term TEXT NOT NULL,
	text TEXT NOT NULL,
	freq REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_descriptions_term ON descriptions(source, term);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	items TEXT NOT NULL,
	status TEXT NOT NULL,
	query_candidates INTEGER DEFAULT 0,
	item_candidates INTEGER DEFAULT 0,
	error TEXT DEFAULT '',
	started_at TEXT NOT NULL,
	finished_at TEXT DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_query ON runs(query);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// ImportDescriptions appends descriptions in one transaction. Rows keep
// their input order for frequency ties. On error nothing is written and
// the count is 0.
func (s *sqliteStore) ImportDescriptions(ctx context.Context, descs []store.Description) (int, error) {
	if len(descs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO descriptions (source, term, text, freq) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, d := range descs {
		if d.Source == "" || d.Term == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, d.Source, d.Term, d.Text, d.Freq); err != nil {
			return 0, fmt.Errorf("insert %s/%s: %w", d.Source, d.Term, err)
		}
		n++
	}
	return n, tx.Commit()
}

// Descriptions returns up to limit descriptions of term in source, most
// frequent first, ties in import order.
func (s *sqliteStore) Descriptions(ctx context.Context, source, term string, limit int) ([]store.Description, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT source, term, text, freq
FROM descriptions
WHERE source = ? AND term = ?
ORDER BY freq DESC, id ASC
LIMIT ?;
`, source, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Description
	for rows.Next() {
		var d store.Description
		if err := rows.Scan(&d.Source, &d.Term, &d.Text, &d.Freq); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountDescriptions returns the number of rows per source.
func (s *sqliteStore) CountDescriptions(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM descriptions GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var src string
		var n int64
		if err := rows.Scan(&src, &n); err != nil {
			return nil, err
		}
		out[src] = n
	}
	return out, rows.Err()
}

// BeginRun inserts a ledger entry, replacing any entry with the same ID.
func (s *sqliteStore) BeginRun(ctx context.Context, r store.Run) error {
	itemsJSON, err := json.Marshal(r.Items)
	if err != nil {
		return err
	}
	if r.Status == "" {
		r.Status = store.RunRunning
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs (id, query, items, status, started_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	query=excluded.query,
	items=excluded.items,
	status=excluded.status,
	started_at=excluded.started_at;
`, r.ID, r.Query, string(itemsJSON), string(r.Status), formatTime(r.StartedAt))
	return err
}

// FinishRun records the outcome of a run.
func (s *sqliteStore) FinishRun(ctx context.Context, r store.Run) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE runs
SET status = ?, query_candidates = ?, item_candidates = ?, error = ?, finished_at = ?
WHERE id = ?;
`, string(r.Status), r.QueryCandidates, r.ItemCandidates, r.Error, formatTime(r.FinishedAt), r.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: no such run", r.ID)
	}
	return nil
}

// GetRun returns a ledger entry by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, query, items, status, query_candidates, item_candidates, error, started_at, finished_at
FROM runs WHERE id = ?;
`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return r, true, nil
}

// ListRuns returns ledger entries, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, f store.RunFilter) ([]store.Run, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, query, items, status, query_candidates, item_candidates, error, started_at, finished_at
FROM runs
WHERE (? = '' OR query = ?) AND (? = '' OR status = ?)
ORDER BY id DESC
LIMIT ?;
`, f.Query, f.Query, string(f.Status), string(f.Status), f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var r store.Run
	var itemsJSON, status, started, finished string
	if err := row.Scan(&r.ID, &r.Query, &itemsJSON, &status, &r.QueryCandidates,
		&r.ItemCandidates, &r.Error, &started, &finished); err != nil {
		return store.Run{}, err
	}
	if err := json.Unmarshal([]byte(itemsJSON), &r.Items); err != nil {
		return store.Run{}, err
	}
	r.Status = store.RunStatus(status)
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return r, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
