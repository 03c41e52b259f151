/*
   Persists the outcome of ranking runs.
*/
package store

import (
	"time"

	"github.com/Ahmed-Sermani/retweetrank/ranker"
	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

var (
	// ErrNotFound is returned when looking up a run that does not exist.
	ErrNotFound = xerrors.New("not found")

	// ErrUnsupportedURI is returned for store URIs with an unknown scheme.
	ErrUnsupportedURI = xerrors.New("unsupported store URI")
)

// Run describes a completed ranking run.
type Run struct {
	// ID is assigned by SaveRun when left empty.
	ID        uuid.UUID
	CreatedAt time.Time

	DampingFactor float64
	Iterations    int
	Residual      float64
	Converged     bool

	// Scores holds the score of every ranked user. It is only populated
	// when saving a run; use ScoreStore.Scores to read them back.
	Scores []ranker.Score
}

// ScoreIterator is implemented by objects that can iterate the scores of a run.
type ScoreIterator interface {
	// Next advances the iterator. If no more items are available or an
	// error occurs, calls to Next() return false.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with an iterator.
	Close() error

	// Score returns the currently fetched score.
	Score() ranker.Score
}

// ScoreStore is implemented by objects that can persist ranking runs.
type ScoreStore interface {
	// SaveRun stores run together with its scores. A missing run ID is
	// generated and written back to run.
	SaveRun(run *Run) error

	// FindRun looks up the metadata of a run by its ID.
	FindRun(id uuid.UUID) (*Run, error)

	// Scores returns an iterator over the scores of a run ordered by
	// descending score; ties are ordered by user id.
	Scores(runID uuid.UUID) (ScoreIterator, error)

	Close() error
}
