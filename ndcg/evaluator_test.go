package ndcg_test

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/Ahmed-Sermani/retweetrank/ndcg"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(EvaluatorTestSuite))

type EvaluatorTestSuite struct{}

func (s *EvaluatorTestSuite) TestEvaluate(c *gc.C) {
	groups := []ndcg.QueryGroup{
		{
			QueryID: "q2",
			Docs: []ndcg.Judgement{
				{DocID: "a", Score: 0.5, Relevance: 2},
				{DocID: "b", Score: 0.9, Relevance: 1},
				{DocID: "c", Score: 0.1, Relevance: 0},
			},
		},
		{QueryID: "q3"},
		{
			QueryID: "q1",
			Docs: []ndcg.Judgement{
				{DocID: "x", Score: 2, Relevance: 1},
				{DocID: "y", Score: 1, Relevance: 0},
			},
		},
		{
			QueryID: "q0",
			Docs: []ndcg.Judgement{
				{DocID: "z", Score: 1},
			},
		},
	}

	e, err := ndcg.NewEvaluator(ndcg.Config{Workers: 3})
	c.Assert(err, gc.IsNil)

	rep, err := e.Evaluate(context.TODO(), groups)
	c.Assert(err, gc.IsNil)
	c.Assert(rep.Skipped, gc.DeepEquals, []string{"q3"})
	c.Assert(rep.PerQuery, gc.HasLen, 3)

	expIDs := []string{"q0", "q1", "q2"}
	expNDCG := []float64{0, 1, 0.7967075809905066}
	for i, res := range rep.PerQuery {
		c.Assert(res.QueryID, gc.Equals, expIDs[i])
		assertClose(c, res.NDCG, expNDCG[i])
	}
	assertClose(c, rep.Mean, (0+1+0.7967075809905066)/3)
}

func (s *EvaluatorTestSuite) TestMeanIsIndependentOfWorkers(c *gc.C) {
	rng := rand.New(rand.NewSource(11))
	var groups []ndcg.QueryGroup
	for q := 0; q < 100; q++ {
		g := ndcg.QueryGroup{QueryID: fmt.Sprintf("q%03d", q)}
		for i := 0; i < rng.Intn(15); i++ {
			g.Docs = append(g.Docs, ndcg.Judgement{
				DocID:     fmt.Sprint(i),
				Score:     rng.NormFloat64(),
				Relevance: float64(rng.Intn(3)),
			})
		}
		groups = append(groups, g)
	}

	var reports []*ndcg.Report
	for _, workers := range []int{1, 8} {
		e, err := ndcg.NewEvaluator(ndcg.Config{K: 10, Workers: workers})
		c.Assert(err, gc.IsNil)
		rep, err := e.Evaluate(context.TODO(), groups)
		c.Assert(err, gc.IsNil)
		reports = append(reports, rep)
	}
	c.Assert(reports[1], gc.DeepEquals, reports[0])
	c.Assert(len(reports[0].PerQuery)+len(reports[0].Skipped), gc.Equals, len(groups))
}

func (s *EvaluatorTestSuite) TestNoGroups(c *gc.C) {
	e, err := ndcg.NewEvaluator(ndcg.Config{})
	c.Assert(err, gc.IsNil)

	rep, err := e.Evaluate(context.TODO(), nil)
	c.Assert(err, gc.IsNil)
	c.Assert(rep.Mean, gc.Equals, 0.0)
	c.Assert(rep.PerQuery, gc.HasLen, 0)

	rep, err = e.Evaluate(context.TODO(), []ndcg.QueryGroup{{QueryID: "empty"}})
	c.Assert(err, gc.IsNil)
	c.Assert(rep.Mean, gc.Equals, 0.0)
	c.Assert(rep.Skipped, gc.DeepEquals, []string{"empty"})
	c.Assert(math.IsNaN(rep.Mean), gc.Equals, false)
}

func (s *EvaluatorTestSuite) TestInvalidGroupAbortsEvaluation(c *gc.C) {
	e, err := ndcg.NewEvaluator(ndcg.Config{Workers: 2})
	c.Assert(err, gc.IsNil)

	_, err = e.Evaluate(context.TODO(), []ndcg.QueryGroup{
		{QueryID: "ok", Docs: []ndcg.Judgement{{DocID: "a", Relevance: 1}}},
		{QueryID: "bad", Docs: []ndcg.Judgement{{DocID: "b", Relevance: -1}}},
	})
	c.Assert(xerrors.Is(err, ndcg.ErrInvalidArgument), gc.Equals, true, gc.Commentf("got %v", err))
}

func (s *EvaluatorTestSuite) TestInvalidConfig(c *gc.C) {
	_, err := ndcg.NewEvaluator(ndcg.Config{K: -1, Workers: -1})
	c.Assert(xerrors.Is(err, ndcg.ErrInvalidArgument), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, "(?s).*cut-off cannot be negative.*number of workers cannot be negative.*")
}

func (s *EvaluatorTestSuite) TestContextCancelled(c *gc.C) {
	e, err := ndcg.NewEvaluator(ndcg.Config{})
	c.Assert(err, gc.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Evaluate(ctx, []ndcg.QueryGroup{{QueryID: "q", Docs: []ndcg.Judgement{{DocID: "a"}}}})
	c.Assert(xerrors.Is(err, context.Canceled), gc.Equals, true)
}
