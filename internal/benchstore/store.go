// Package benchstore records benchmark runs of a world in a SQLite database.
package benchstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// fixed width, so that start times sort lexicographically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is a single benchmark run.
type Run struct {
	ID        string
	StartedAt time.Time

	Frames    int
	FrameTime time.Duration

	// wall clock time of the run
	Duration time.Duration

	// number of live entities at the end of the run
	Entities int

	Systems []SystemTiming
}

// SystemTiming holds the measurements of one system during a run.
type SystemTiming struct {
	Stage  string
	System string

	Count   int
	Min     time.Duration
	Max     time.Duration
	Average time.Duration
}

// NewRunID returns a new time ordered run id.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the database at the given path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// sqlite supports a single writer only
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a run together with its system timings.
func (s *Store) Save(ctx context.Context, run Run) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, frames, frame_time, duration, entities) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.Frames,
		int64(run.FrameTime), int64(run.Duration), run.Entities,
	)

	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for position, timing := range run.Systems {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO system_timings (run_id, position, stage, system, count, min, max, average) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, position, timing.Stage, timing.System, timing.Count,
			int64(timing.Min), int64(timing.Max), int64(timing.Average),
		)

		if err != nil {
			return fmt.Errorf("insert timing of %s: %w", timing.System, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}

	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, frames, frame_time, duration, entities FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)

	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var runs []Run

	for rows.Next() {
		var run Run
		var startedAt string
		var frameTime, duration int64

		if err := rows.Scan(&run.ID, &startedAt, &run.Frames, &frameTime, &duration, &run.Entities); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse start time of run %s: %w", run.ID, err)
		}

		run.FrameTime = time.Duration(frameTime)
		run.Duration = time.Duration(duration)

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for idx := range runs {
		runs[idx].Systems, err = s.systemTimings(ctx, runs[idx].ID)
		if err != nil {
			return nil, err
		}
	}

	return runs, nil
}

func (s *Store) systemTimings(ctx context.Context, runID string) ([]SystemTiming, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stage, system, count, min, max, average FROM system_timings WHERE run_id = ? ORDER BY position`,
		runID,
	)

	if err != nil {
		return nil, fmt.Errorf("query timings of run %s: %w", runID, err)
	}

	defer func() { _ = rows.Close() }()

	var timings []SystemTiming

	for rows.Next() {
		var timing SystemTiming
		var minTime, maxTime, average int64

		if err := rows.Scan(&timing.Stage, &timing.System, &timing.Count, &minTime, &maxTime, &average); err != nil {
			return nil, fmt.Errorf("scan timing: %w", err)
		}

		timing.Min = time.Duration(minTime)
		timing.Max = time.Duration(maxTime)
		timing.Average = time.Duration(average)

		timings = append(timings, timing)
	}

	return timings, rows.Err()
}
