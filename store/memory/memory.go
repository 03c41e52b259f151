package memory

import (
	"sync"

	"github.com/Ahmed-Sermani/retweetrank/ranker"
	"github.com/Ahmed-Sermani/retweetrank/store"
	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

var _ store.ScoreStore = (*InMemoryScoreStore)(nil)

// InMemoryScoreStore keeps ranking runs in memory. It is safe for
// concurrent use.
type InMemoryScoreStore struct {
	mu sync.RWMutex

	runs   map[uuid.UUID]*store.Run
	scores map[uuid.UUID][]ranker.Score
}

// NewInMemoryScoreStore creates a new in-memory score store.
func NewInMemoryScoreStore() *InMemoryScoreStore {
	return &InMemoryScoreStore{
		runs:   make(map[uuid.UUID]*store.Run),
		scores: make(map[uuid.UUID][]ranker.Score),
	}
}

func (s *InMemoryScoreStore) SaveRun(run *store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == uuid.Nil {
		for {
			run.ID = uuid.New()
			if s.runs[run.ID] == nil {
				break
			}
		}
	}

	rCopy := new(store.Run)
	*rCopy = *run
	rCopy.CreatedAt = rCopy.CreatedAt.UTC()
	rCopy.Scores = nil
	s.runs[rCopy.ID] = rCopy

	scores := append([]ranker.Score(nil), run.Scores...)
	ranker.SortScores(scores)
	s.scores[rCopy.ID] = scores
	return nil
}

func (s *InMemoryScoreStore) FindRun(id uuid.UUID) (*store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := s.runs[id]
	if run == nil {
		return nil, xerrors.Errorf("find run: %w", store.ErrNotFound)
	}

	rCopy := new(store.Run)
	*rCopy = *run
	return rCopy, nil
}

func (s *InMemoryScoreStore) Scores(runID uuid.UUID) (store.ScoreIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.runs[runID] == nil {
		return nil, xerrors.Errorf("scores: %w", store.ErrNotFound)
	}
	// saved score lists are never modified, so the iterator can share them.
	return &scoreIterator{scores: s.scores[runID]}, nil
}

func (s *InMemoryScoreStore) Close() error { return nil }
