// Package history keeps a SQLite record of search runs: one row per era and
// every improving best schedule, so that long runs can be inspected and the
// best schedule recovered after the process is gone.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/ihtc/ihtp-ga/pkg/algorithms"
	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	instance TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	config BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS eras (
	run_id TEXT NOT NULL REFERENCES runs(id),
	era INTEGER NOT NULL,
	best_soft_cost INTEGER NOT NULL,
	mean_soft_cost REAL NOT NULL,
	worst_soft_cost INTEGER NOT NULL,
	unique_schedules INTEGER NOT NULL,
	stagnation INTEGER NOT NULL,
	accepted INTEGER NOT NULL,
	infeasible INTEGER NOT NULL,
	injected INTEGER NOT NULL,
	enforced INTEGER NOT NULL,
	crossover REAL NOT NULL,
	mutation REAL NOT NULL,
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (run_id, era)
);
CREATE TABLE IF NOT EXISTS best_solutions (
	run_id TEXT NOT NULL REFERENCES runs(id),
	era INTEGER NOT NULL,
	soft_cost INTEGER NOT NULL,
	payload BLOB NOT NULL,
	PRIMARY KEY (run_id, era)
);`

// Store is a run history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "ihtp-history.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// RunInfo describes a recorded run.
type RunInfo struct {
	ID        string
	Instance  string
	StartedAt time.Time
	Config    algorithms.Config
}

// EraRecord is the stored summary of one era.
type EraRecord struct {
	Era               int
	BestSoftCost      int
	MeanSoftCost      float64
	WorstSoftCost     int
	Unique            int
	Stagnation        int
	Accepted          int
	Infeasible        int
	Injected          int
	EnforcedInjection bool
	Crossover         float64
	Mutation          float64
	Duration          time.Duration
}

// Run records the eras of one search. It implements algorithms.Observer.
type Run struct {
	store *Store
	id    string
}

var _ algorithms.Observer = &Run{}

// StartRun registers a new run and returns its recorder.
func (s *Store) StartRun(ctx context.Context, instance string, cfg algorithms.Config) (*Run, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO runs(id, instance, started_at, config) VALUES(?,?,?,?)`,
		id, instance, time.Now().UTC(), data); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Run{store: s, id: id}, nil
}

// ID identifies the run in the store.
func (r *Run) ID() string { return r.id }

// ObserveEra stores the era and, when the best changed, its schedule.
func (r *Run) ObserveEra(ctx context.Context, st algorithms.EraStats) (retErr error) {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO eras(run_id, era, best_soft_cost, mean_soft_cost, worst_soft_cost,
		unique_schedules, stagnation, accepted, infeasible, injected, enforced, crossover, mutation, duration_ms)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.id, st.Era, st.BestSoftCost, st.MeanSoftCost, st.WorstSoftCost, st.Unique, st.Stagnation,
		st.Accepted, st.Infeasible, st.Injected, st.EnforcedInjection,
		st.Probabilities.Crossover, st.Probabilities.Mutation, st.Duration.Milliseconds()); err != nil {
		return fmt.Errorf("insert era %d: %w", st.Era, err)
	}
	if st.BestChanged && st.Best != nil {
		payload, err := json.Marshal(st.Best.Solution())
		if err != nil {
			return fmt.Errorf("encode best schedule: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO best_solutions(run_id, era, soft_cost, payload) VALUES(?,?,?,?)`,
			r.id, st.Era, st.BestSoftCost, payload); err != nil {
			return fmt.Errorf("insert best schedule: %w", err)
		}
	}
	return tx.Commit()
}

// Runs lists the recorded runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, instance, started_at, config FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var runs []RunInfo
	for rows.Next() {
		var (
			info RunInfo
			data []byte
		)
		if err := rows.Scan(&info.ID, &info.Instance, &info.StartedAt, &data); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := json.Unmarshal(data, &info.Config); err != nil {
			return nil, fmt.Errorf("decode config of run %s: %w", info.ID, err)
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// Eras returns the eras of a run in order.
func (s *Store) Eras(ctx context.Context, runID string) ([]EraRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT era, best_soft_cost, mean_soft_cost, worst_soft_cost, unique_schedules,
		stagnation, accepted, infeasible, injected, enforced, crossover, mutation, duration_ms
		FROM eras WHERE run_id = ? ORDER BY era`, runID)
	if err != nil {
		return nil, fmt.Errorf("select eras: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var eras []EraRecord
	for rows.Next() {
		var (
			e  EraRecord
			ms int64
		)
		if err := rows.Scan(&e.Era, &e.BestSoftCost, &e.MeanSoftCost, &e.WorstSoftCost, &e.Unique, &e.Stagnation,
			&e.Accepted, &e.Infeasible, &e.Injected, &e.EnforcedInjection, &e.Crossover, &e.Mutation, &ms); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		eras = append(eras, e)
	}
	return eras, rows.Err()
}

// ErrNoSolution is returned when a run never recorded a best schedule.
var ErrNoSolution = errors.New("no best schedule recorded")

// BestSolution returns the last best schedule recorded for a run with its
// soft cost.
func (s *Store) BestSolution(ctx context.Context, runID string) (*v1alpha1.Solution, int, error) {
	var (
		cost    int
		payload []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT soft_cost, payload FROM best_solutions WHERE run_id = ? ORDER BY era DESC LIMIT 1`, runID).
		Scan(&cost, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("run %s: %w", runID, ErrNoSolution)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("select best schedule: %w", err)
	}
	sol := &v1alpha1.Solution{}
	if err := json.Unmarshal(payload, sol); err != nil {
		return nil, 0, fmt.Errorf("decode best schedule: %w", err)
	}
	return sol, cost, nil
}
