// Package history stores benchmark summaries in a SQLite database so that
// runs can be listed and compared later.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/abdul-hamid-achik/apictl/packages/benchmark"
)

// Filename is the database file created inside the cache directory.
const Filename = "history.db"

// timeLayout has a fixed width so stored times sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when no stored run matches an id.
var ErrRunNotFound = errors.New("benchmark run not found")

const schema = `
CREATE TABLE IF NOT EXISTS benchmark_runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	requests    TEXT NOT NULL,
	workers     INTEGER NOT NULL,
	iterations  INTEGER NOT NULL,
	samples     INTEGER NOT NULL,
	errors      INTEGER NOT NULL,
	duration_us INTEGER NOT NULL,
	throughput  REAL NOT NULL,
	mean_us     INTEGER NOT NULL,
	p95_us      INTEGER NOT NULL,
	stats       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS benchmark_runs_started_at ON benchmark_runs (started_at);
`

// Run is one stored benchmark.
type Run struct {
	ID        string
	StartedAt time.Time
	Stats     *benchmark.Stats
}

// Store is a handle on the history database
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// Path returns the database location inside cacheDir.
func Path(cacheDir string) string {
	return filepath.Join(cacheDir, Filename)
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{
		db:    db,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores stats under a new id.
func (s *Store) Save(ctx context.Context, stats *benchmark.Stats) (*Run, error) {
	blob, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("encoding stats: %w", err)
	}

	run := &Run{
		ID:        s.newID(),
		StartedAt: s.now().UTC().Add(-stats.TotalDuration),
		Stats:     stats,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO benchmark_runs
			(id, started_at, requests, workers, iterations, samples, errors,
			 duration_us, throughput, mean_us, p95_us, stats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.Format(timeLayout),
		strings.Join(stats.Requests, ","),
		stats.Workers,
		stats.Iterations,
		stats.Count,
		stats.Errors,
		stats.TotalDuration.Microseconds(),
		stats.Throughput,
		stats.Mean.Microseconds(),
		stats.Percentile(95).Microseconds(),
		string(blob),
	)
	if err != nil {
		return nil, fmt.Errorf("saving benchmark run: %w", err)
	}
	return run, nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT id, started_at, stats FROM benchmark_runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Get returns the run whose id starts with prefix. An ambiguous prefix is
// an error.
func (s *Store) Get(ctx context.Context, prefix string) (*Run, error) {
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, stats FROM benchmark_runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`,
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("id prefix %q matches several runs", prefix)
	}
}

// Delete removes the run with exactly this id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM benchmark_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting benchmark run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting benchmark run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run       Run
		startedAt string
		blob      string
	)
	if err := row.Scan(&run.ID, &startedAt, &blob); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("run %s: bad start time: %w", run.ID, err)
	}
	run.StartedAt = t

	run.Stats = &benchmark.Stats{}
	if err := json.Unmarshal([]byte(blob), run.Stats); err != nil {
		return nil, fmt.Errorf("run %s: decoding stats: %w", run.ID, err)
	}
	return &run, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
