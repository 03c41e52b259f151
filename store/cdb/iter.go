package cdb

import (
	"database/sql"

	"github.com/Ahmed-Sermani/retweetrank/ranker"
	"golang.org/x/xerrors"
)

type scoreIterator struct {
	rows         *sql.Rows
	lastErr      error
	latchedScore ranker.Score
}

func (i *scoreIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	var score ranker.Score
	if i.lastErr = i.rows.Scan(&score.ID, &score.Score); i.lastErr != nil {
		return false
	}
	i.latchedScore = score
	return true
}

func (i *scoreIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}
	return i.rows.Err()
}

func (i *scoreIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return xerrors.Errorf("score iter: %w", err)
	}
	return nil
}

func (i *scoreIterator) Score() ranker.Score {
	return i.latchedScore
}
