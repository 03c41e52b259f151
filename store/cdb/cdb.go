package cdb

import (
	"database/sql"

	"github.com/Ahmed-Sermani/retweetrank/store"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/xerrors"
)

const (
	createRunsTableQuery = `
  CREATE TABLE IF NOT EXISTS runs (
    id UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    damping_factor DOUBLE PRECISION NOT NULL,
    iterations INT NOT NULL,
    residual DOUBLE PRECISION NOT NULL,
    converged BOOL NOT NULL
  )
  `
	createScoresTableQuery = `
  CREATE TABLE IF NOT EXISTS scores (
    run_id UUID NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    score DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (run_id, user_id)
  )
  `
	insertRunQuery = `
  INSERT INTO runs (id, created_at, damping_factor, iterations, residual, converged) VALUES ($1, $2, $3, $4, $5, $6)
  `
	getRunQuery = `
  SELECT created_at, damping_factor, iterations, residual, converged FROM runs WHERE id=$1
  `
	iterScoresQuery = `
  SELECT user_id, score FROM scores WHERE run_id=$1 ORDER BY score DESC, user_id ASC
  `
)

var _ store.ScoreStore = (*CockroachDBScoreStore)(nil)

// CockroachDBScoreStore persists ranking runs in CockroachDB or any other
// database speaking the postgres wire protocol.
type CockroachDBScoreStore struct {
	db *sql.DB
}

// NewCockroachDBScoreStore connects to the database at dsn and creates the
// tables it needs if they are missing.
func NewCockroachDBScoreStore(dsn string) (*CockroachDBScoreStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	for _, q := range []string{createRunsTableQuery, createScoresTableQuery} {
		if _, err = db.Exec(q); err != nil {
			_ = db.Close()
			return nil, xerrors.Errorf("create schema: %w", err)
		}
	}
	return &CockroachDBScoreStore{db}, nil
}

func (c *CockroachDBScoreStore) Close() error {
	return c.db.Close()
}

// SaveRun inserts the run and bulk-loads its scores in a single transaction.
func (c *CockroachDBScoreStore) SaveRun(run *store.Run) error {
	runID := run.ID
	if runID == uuid.Nil {
		runID = uuid.New()
	}

	tx, err := c.db.Begin()
	if err != nil {
		return xerrors.Errorf("save run: %w", err)
	}
	if err = saveRun(tx, runID, run); err != nil {
		_ = tx.Rollback()
		return xerrors.Errorf("save run: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return xerrors.Errorf("save run: %w", err)
	}

	run.ID = runID
	return nil
}

func saveRun(tx *sql.Tx, runID uuid.UUID, run *store.Run) error {
	_, err := tx.Exec(insertRunQuery, runID, run.CreatedAt.UTC(), run.DampingFactor, run.Iterations, run.Residual, run.Converged)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(pq.CopyIn("scores", "run_id", "user_id", "score"))
	if err != nil {
		return err
	}
	for _, s := range run.Scores {
		if _, err = stmt.Exec(runID, s.ID, s.Score); err != nil {
			_ = stmt.Close()
			return err
		}
	}
	// an Exec without arguments flushes the buffered rows.
	if _, err = stmt.Exec(); err != nil {
		_ = stmt.Close()
		return err
	}
	return stmt.Close()
}

func (c *CockroachDBScoreStore) FindRun(id uuid.UUID) (*store.Run, error) {
	row := c.db.QueryRow(getRunQuery, id)
	run := &store.Run{ID: id}
	if err := row.Scan(&run.CreatedAt, &run.DampingFactor, &run.Iterations, &run.Residual, &run.Converged); err != nil {
		if xerrors.Is(err, sql.ErrNoRows) {
			return nil, xerrors.Errorf("find run: %w", store.ErrNotFound)
		}
		return nil, xerrors.Errorf("find run: %w", err)
	}
	run.CreatedAt = run.CreatedAt.UTC()
	return run, nil
}

func (c *CockroachDBScoreStore) Scores(runID uuid.UUID) (store.ScoreIterator, error) {
	if _, err := c.FindRun(runID); err != nil {
		return nil, xerrors.Errorf("scores: %w", err)
	}

	rows, err := c.db.Query(iterScoresQuery, runID)
	if err != nil {
		return nil, xerrors.Errorf("scores: %w", err)
	}
	return &scoreIterator{rows: rows}, nil
}
