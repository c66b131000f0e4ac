// Package results stores computed evapotranspiration runs in SQLite.
package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/chrissnell/evapo/internal/log"
	"github.com/chrissnell/evapo/internal/storage"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const dayLayout = "2006-01-02"

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS et_runs (
	id TEXT PRIMARY KEY,
	site TEXT NOT NULL,
	method TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS et_results (
	run_id TEXT NOT NULL REFERENCES et_runs(id) ON DELETE CASCADE,
	site TEXT NOT NULL,
	method TEXT NOT NULL,
	day TEXT NOT NULL,
	et_mm REAL,
	PRIMARY KEY (run_id, day)
);
CREATE INDEX IF NOT EXISTS et_results_site_day ON et_results (site, day);
`

// Store is a SQLite backed storage.ResultStore
type Store struct {
	db *sql.DB
}

var _ storage.ResultStore = (*Store)(nil)

// New opens or creates the results database at path
func New(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create results tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Save writes a run and all its daily values in one transaction
func (s *Store) Save(ctx context.Context, run storage.Run) error {
	if len(run.Days) != len(run.ET) {
		return fmt.Errorf("run %s has %d days but %d values", run.ID, len(run.Days), len(run.ET))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO et_runs (id, site, method, created_at) VALUES (?, ?, ?, ?)`,
		run.ID.String(), run.Site, run.Method, run.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO et_results (run_id, site, method, day, et_mm) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, day := range run.Days {
		if _, err := stmt.ExecContext(ctx, run.ID.String(), run.Site, run.Method, day.Format(dayLayout), nullable(run.ET[i])); err != nil {
			return fmt.Errorf("failed to insert %s of run %s: %w", day.Format(dayLayout), run.ID, err)
		}
	}

	return tx.Commit()
}

// Load returns a stored run
func (s *Store) Load(ctx context.Context, id uuid.UUID) (storage.Run, error) {
	run := storage.Run{ID: id}

	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT site, method, created_at FROM et_runs WHERE id = ?`, id.String()).
		Scan(&run.Site, &run.Method, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Run{}, fmt.Errorf("%w: %s", storage.ErrRunNotFound, id)
	}
	if err != nil {
		return storage.Run{}, fmt.Errorf("failed to query run %s: %w", id, err)
	}
	run.CreatedAt = time.Unix(0, created).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT day, et_mm FROM et_results WHERE run_id = ? ORDER BY day`, id.String())
	if err != nil {
		return storage.Run{}, fmt.Errorf("failed to query values of run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		var v sql.NullFloat64
		if err := rows.Scan(&day, &v); err != nil {
			return storage.Run{}, err
		}
		t, err := time.Parse(dayLayout, day)
		if err != nil {
			return storage.Run{}, err
		}
		run.Days = append(run.Days, t)
		run.ET = append(run.ET, value(v))
	}

	return run, rows.Err()
}

// Site returns the most recent value of each method for every day of the
// site in [from, to)
func (s *Store) Site(ctx context.Context, site string, from, to time.Time) ([]storage.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, r.method, r.day, r.et_mm
		FROM et_results r JOIN et_runs u ON u.id = r.run_id
		WHERE r.site = ? AND r.day >= ? AND r.day < ?
		ORDER BY r.day, r.method, u.created_at DESC`,
		site, from.Format(dayLayout), to.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query results of %s: %w", site, err)
	}
	defer rows.Close()

	var out []storage.Record
	for rows.Next() {
		var id, method, day string
		var v sql.NullFloat64
		if err := rows.Scan(&id, &method, &day, &v); err != nil {
			return nil, err
		}

		// rows of a (day, method) pair arrive newest first
		if n := len(out); n > 0 && out[n-1].Method == method && out[n-1].Day.Format(dayLayout) == day {
			continue
		}

		runID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		t, err := time.Parse(dayLayout, day)
		if err != nil {
			return nil, err
		}
		out = append(out, storage.Record{RunID: runID, Site: site, Method: method, Day: t, ET: value(v)})
	}

	return out, rows.Err()
}

// StartStorageEngine creates a goroutine loop that receives runs and writes
// them to the database
func (s *Store) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- storage.Run {
	log.Info("starting results storage engine...")
	runChan := make(chan storage.Run, 10)
	wg.Add(1)
	go s.processRuns(ctx, wg, runChan)
	return runChan
}

func (s *Store) processRuns(ctx context.Context, wg *sync.WaitGroup, rchan <-chan storage.Run) {
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := s.Save(ctx, r); err != nil {
				log.Errorf("could not store run %s for %s: %v", r.ID, r.Site, err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received.  Cancelling results processor.")
			return
		}
	}
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// NaN days are stored as NULL
func nullable(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func value(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
