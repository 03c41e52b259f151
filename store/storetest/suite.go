// Package storetest provides a test-suite shared by all ScoreStore
// implementations.
package storetest

import (
	"fmt"
	"time"

	"github.com/Ahmed-Sermani/retweetrank/ranker"
	"github.com/Ahmed-Sermani/retweetrank/store"
	"github.com/google/uuid"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

// SuiteBase defines a re-usable set of ScoreStore tests that can be
// executed against any type that implements store.ScoreStore.
type SuiteBase struct {
	s store.ScoreStore
}

// SetStore configures the test-suite to run all tests against s.
func (s *SuiteBase) SetStore(st store.ScoreStore) {
	s.s = st
}

func (s *SuiteBase) TestSaveAndFindRun(c *gc.C) {
	createdAt := time.Date(2021, time.March, 4, 10, 30, 0, 0, time.UTC)
	run := &store.Run{
		CreatedAt:     createdAt,
		DampingFactor: 0.9,
		Iterations:    57,
		Residual:      7.5e-10,
		Converged:     true,
		Scores: []ranker.Score{
			{ID: "alice", Score: 0.25},
			{ID: "bob", Score: 0.75},
		},
	}
	c.Assert(s.s.SaveRun(run), gc.IsNil)
	c.Assert(run.ID, gc.Not(gc.Equals), uuid.Nil, gc.Commentf("expected a run ID to be assigned"))

	got, err := s.s.FindRun(run.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(got.ID, gc.Equals, run.ID)
	c.Assert(got.CreatedAt.Equal(createdAt), gc.Equals, true)
	c.Assert(got.DampingFactor, gc.Equals, 0.9)
	c.Assert(got.Iterations, gc.Equals, 57)
	c.Assert(got.Residual, gc.Equals, 7.5e-10)
	c.Assert(got.Converged, gc.Equals, true)
	c.Assert(got.Scores, gc.HasLen, 0)
}

func (s *SuiteBase) TestSaveRunWithExplicitID(c *gc.C) {
	id := uuid.New()
	run := &store.Run{ID: id, CreatedAt: time.Now()}
	c.Assert(s.s.SaveRun(run), gc.IsNil)
	c.Assert(run.ID, gc.Equals, id)

	got, err := s.s.FindRun(id)
	c.Assert(err, gc.IsNil)
	c.Assert(got.ID, gc.Equals, id)
}

func (s *SuiteBase) TestFindMissingRun(c *gc.C) {
	_, err := s.s.FindRun(uuid.New())
	c.Assert(xerrors.Is(err, store.ErrNotFound), gc.Equals, true)

	_, err = s.s.Scores(uuid.New())
	c.Assert(xerrors.Is(err, store.ErrNotFound), gc.Equals, true)
}

func (s *SuiteBase) TestScoresAreOrdered(c *gc.C) {
	run := &store.Run{
		CreatedAt: time.Now(),
		Scores: []ranker.Score{
			{ID: "d", Score: 0.1},
			{ID: "b", Score: 0.3},
			{ID: "c", Score: 0.3},
			{ID: "a", Score: 0.3},
			{ID: "e", Score: 0.0},
		},
	}
	c.Assert(s.s.SaveRun(run), gc.IsNil)

	c.Assert(s.collectScores(c, run.ID), gc.DeepEquals, []ranker.Score{
		{ID: "a", Score: 0.3},
		{ID: "b", Score: 0.3},
		{ID: "c", Score: 0.3},
		{ID: "d", Score: 0.1},
		{ID: "e", Score: 0.0},
	})
}

func (s *SuiteBase) TestRunsAreIsolated(c *gc.C) {
	var runs []*store.Run
	for r := 0; r < 3; r++ {
		run := &store.Run{CreatedAt: time.Now()}
		for i := 0; i <= r; i++ {
			run.Scores = append(run.Scores, ranker.Score{ID: fmt.Sprintf("run%d-user%d", r, i), Score: float64(i)})
		}
		c.Assert(s.s.SaveRun(run), gc.IsNil)
		runs = append(runs, run)
	}

	for r, run := range runs {
		scores := s.collectScores(c, run.ID)
		c.Assert(scores, gc.HasLen, r+1, gc.Commentf("run %d", r))
		c.Assert(scores[0].ID, gc.Equals, fmt.Sprintf("run%d-user%d", r, r))
	}
}

func (s *SuiteBase) TestSavedScoresAreCopied(c *gc.C) {
	run := &store.Run{
		CreatedAt: time.Now(),
		Scores:    []ranker.Score{{ID: "a", Score: 1}},
	}
	c.Assert(s.s.SaveRun(run), gc.IsNil)
	run.Scores[0].Score = 42

	c.Assert(s.collectScores(c, run.ID), gc.DeepEquals, []ranker.Score{{ID: "a", Score: 1}})
}

func (s *SuiteBase) collectScores(c *gc.C, runID uuid.UUID) []ranker.Score {
	it, err := s.s.Scores(runID)
	c.Assert(err, gc.IsNil)

	var scores []ranker.Score
	for it.Next() {
		scores = append(scores, it.Score())
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	return scores
}
