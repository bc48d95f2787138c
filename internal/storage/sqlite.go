//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"polysome/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			config_path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			run_time REAL NOT NULL,
			time_step REAL NOT NULL,
			created_unix INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS counts (
			run_id TEXT NOT NULL,
			time REAL NOT NULL,
			species TEXT NOT NULL,
			count INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS counts_run_idx ON counts (run_id, time);
	`)
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run model.Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, schema_version, codec_version, config_path, seed, run_time, time_step, created_unix)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			config_path = excluded.config_path,
			seed = excluded.seed,
			run_time = excluded.run_time,
			time_step = excluded.time_step,
			created_unix = excluded.created_unix
	`, run.ID, run.SchemaVersion, run.CodecVersion, run.ConfigPath, run.Seed, run.RunTime, run.TimeStep, run.CreatedUnix)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (model.Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Run{}, false, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT id, schema_version, codec_version, config_path, seed, run_time, time_step, created_unix
		FROM runs WHERE id = ?
	`, id)

	var run model.Run
	err = row.Scan(&run.ID, &run.SchemaVersion, &run.CodecVersion, &run.ConfigPath,
		&run.Seed, &run.RunTime, &run.TimeStep, &run.CreatedUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, false, nil
	}
	if err != nil {
		return model.Run{}, false, err
	}
	return run, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]model.Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, schema_version, codec_version, config_path, seed, run_time, time_step, created_unix
		FROM runs ORDER BY created_unix
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.SchemaVersion, &run.CodecVersion, &run.ConfigPath,
			&run.Seed, &run.RunTime, &run.TimeStep, &run.CreatedUnix); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveCounts(ctx context.Context, samples []model.CountSample) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, sample := range samples {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO counts (run_id, time, species, count) VALUES (?, ?, ?, ?)
		`, sample.RunID, sample.Time, sample.Species, sample.Count); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetCounts(ctx context.Context, runID string) ([]model.CountSample, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, time, species, count FROM counts WHERE run_id = ? ORDER BY time, species
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CountSample
	for rows.Next() {
		var sample model.CountSample
		if err := rows.Scan(&sample.RunID, &sample.Time, &sample.Species, &sample.Count); err != nil {
			return nil, err
		}
		out = append(out, sample)
	}
	return out, rows.Err()
}
