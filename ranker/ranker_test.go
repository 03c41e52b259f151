package ranker_test

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/Ahmed-Sermani/retweetrank/graph"
	"github.com/Ahmed-Sermani/retweetrank/ranker"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(RankerTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type RankerTestSuite struct{}

func (s *RankerTestSuite) TestRetweetScenario(c *gc.C) {
	cfg := ranker.DefaultConfig()
	cfg.Tolerance = 1e-9
	res := s.rank(c, cfg, buildGraph(
		"diane", "bob",
		"charlie", "alice",
		"bob", "diane",
		"alice", "parisa",
	))

	c.Assert(res.Converged, gc.Equals, true)
	c.Assert(res.Scores, gc.HasLen, 5)
	assertMass(c, res)

	// bob and diane retweet each other and keep most of the mass; parisa
	// is a sink whose score is spread back uniformly.
	c.Assert(res.Scores["bob"], gc.Equals, res.Scores["diane"])
	c.Assert(res.Scores["bob"] > res.Scores["parisa"], gc.Equals, true)
	c.Assert(res.Scores["parisa"] > res.Scores["alice"], gc.Equals, true)
	c.Assert(res.Scores["alice"] > res.Scores["charlie"], gc.Equals, true)

	// charlie is never retweeted: it only receives the teleport share plus
	// its share of the dangling mass.
	teleport := (1 - cfg.DampingFactor) / 5
	c.Assert(res.Scores["charlie"] >= teleport, gc.Equals, true)
	c.Assert(res.Scores["charlie"]-teleport-cfg.DampingFactor*res.Scores["parisa"]/5 < 1e-6, gc.Equals, true)

	exp := map[string]float64{
		"bob":     0.390472,
		"diane":   0.390472,
		"parisa":  0.105818,
		"alice":   0.074190,
		"charlie": 0.039047,
	}
	for id, score := range exp {
		c.Assert(math.Abs(res.Scores[id]-score) < 1e-5, gc.Equals, true, gc.Commentf("user %s: got %v, want %v", id, res.Scores[id], score))
	}
}

func (s *RankerTestSuite) TestSelfLoopDanglingPolicy(c *gc.C) {
	cfg := ranker.DefaultConfig()
	cfg.Dangling = ranker.DanglingSelfLoop
	res := s.rank(c, cfg, buildGraph(
		"diane", "bob",
		"charlie", "alice",
		"bob", "diane",
		"alice", "parisa",
	))

	assertMass(c, res)
	// Without redistribution a user nobody retweets is left with exactly
	// the teleport share.
	c.Assert(math.Abs(res.Scores["charlie"]-0.1/5) < 1e-12, gc.Equals, true)
	c.Assert(res.Scores["parisa"] > res.Scores["bob"], gc.Equals, true)
}

func (s *RankerTestSuite) TestEmptyGraph(c *gc.C) {
	b := graph.NewBuilder()
	b.Add(graph.RetweetEvent{RetweetingUserID: "solo", RetweetedUserID: "solo"})

	res := s.rank(c, ranker.DefaultConfig(), b.Build())
	c.Assert(res.Scores, gc.HasLen, 0)
	c.Assert(res.Iterations, gc.Equals, 0)
	c.Assert(res.Converged, gc.Equals, true)
}

func (s *RankerTestSuite) TestRing(c *gc.C) {
	const n = 7
	var pairs []string
	for i := 0; i < n; i++ {
		pairs = append(pairs, fmt.Sprint(i), fmt.Sprint((i+1)%n))
	}

	res := s.rank(c, ranker.DefaultConfig(), buildGraph(pairs...))
	c.Assert(res.Converged, gc.Equals, true)
	for id, score := range res.Scores {
		c.Assert(math.Abs(score-1.0/n) < 1e-9, gc.Equals, true, gc.Commentf("user %s: %v", id, score))
	}
}

func (s *RankerTestSuite) TestStarConservesMass(c *gc.C) {
	var pairs []string
	for i := 0; i < 9; i++ {
		pairs = append(pairs, fmt.Sprintf("leaf-%d", i), "hub")
	}
	g := buildGraph(pairs...)

	for _, policy := range []ranker.DanglingPolicy{ranker.DanglingUniform, ranker.DanglingSelfLoop} {
		cfg := ranker.DefaultConfig()
		cfg.Dangling = policy
		res := s.rank(c, cfg, g)

		c.Logf("policy %s: hub=%v after %d iterations", policy, res.Scores["hub"], res.Iterations)
		assertMass(c, res)
		for id, score := range res.Scores {
			if id != "hub" {
				c.Assert(res.Scores["hub"] > score, gc.Equals, true, gc.Commentf("policy %s, user %s", policy, id))
			}
		}
	}
}

func (s *RankerTestSuite) TestMassConservedOnRandomGraphs(c *gc.C) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 10; round++ {
		b := graph.NewBuilder()
		users := 2 + rng.Intn(50)
		for i := 0; i < users*3; i++ {
			b.Add(graph.RetweetEvent{
				RetweetingUserID: fmt.Sprint(rng.Intn(users)),
				RetweetedUserID:  fmt.Sprint(rng.Intn(users)),
			})
		}
		g := b.Build()
		if g.NumNodes() == 0 {
			continue
		}

		for _, norm := range []ranker.Norm{ranker.NormL1, ranker.NormL2} {
			cfg := ranker.DefaultConfig()
			cfg.Norm = norm
			cfg.ComputeWorkers = 4
			res := s.rank(c, cfg, g)
			c.Assert(res.Scores, gc.HasLen, g.NumNodes())
			assertMass(c, res)
			for id, score := range res.Scores {
				c.Assert(score > 0, gc.Equals, true, gc.Commentf("round %d, user %s", round, id))
			}
		}
	}
}

func (s *RankerTestSuite) TestDeterministicAcrossWorkerCounts(c *gc.C) {
	rng := rand.New(rand.NewSource(7))
	b := graph.NewBuilder()
	for i := 0; i < 2000; i++ {
		b.Add(graph.RetweetEvent{
			RetweetingUserID: fmt.Sprint(rng.Intn(300)),
			RetweetedUserID:  fmt.Sprint(rng.Intn(300)),
		})
	}
	g := b.Build()

	cfg := ranker.DefaultConfig()
	cfg.ComputeWorkers = 1
	serial := s.rank(c, cfg, g)

	cfg.ComputeWorkers = 8
	parallel := s.rank(c, cfg, g)

	c.Assert(parallel.Iterations, gc.Equals, serial.Iterations)
	c.Assert(parallel.Residual, gc.Equals, serial.Residual)
	c.Assert(parallel.Scores, gc.DeepEquals, serial.Scores)
}

func (s *RankerTestSuite) TestIterationBound(c *gc.C) {
	cfg := ranker.DefaultConfig()
	cfg.MaxIterations = 1
	cfg.Tolerance = 1e-12
	res := s.rank(c, cfg, buildGraph(
		"diane", "bob",
		"charlie", "alice",
		"bob", "diane",
		"alice", "parisa",
	))

	c.Assert(res.Converged, gc.Equals, false)
	c.Assert(res.Iterations, gc.Equals, 1)
	c.Assert(res.Residual > cfg.Tolerance, gc.Equals, true)
	assertMass(c, res)
}

func (s *RankerTestSuite) TestRankerIsReusable(c *gc.C) {
	r, err := ranker.NewRanker(ranker.DefaultConfig())
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(r.Close(), gc.IsNil) }()

	first, err := r.Rank(context.TODO(), buildGraph("a", "b", "b", "c"))
	c.Assert(err, gc.IsNil)
	second, err := r.Rank(context.TODO(), buildGraph("x", "y"))
	c.Assert(err, gc.IsNil)
	third, err := r.Rank(context.TODO(), buildGraph("a", "b", "b", "c"))
	c.Assert(err, gc.IsNil)

	c.Assert(second.Scores, gc.HasLen, 2)
	c.Assert(third.Scores, gc.DeepEquals, first.Scores)
}

func (s *RankerTestSuite) TestContextCancelled(c *gc.C) {
	r, err := ranker.NewRanker(ranker.DefaultConfig())
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(r.Close(), gc.IsNil) }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Rank(ctx, buildGraph("a", "b"))
	c.Assert(xerrors.Is(err, context.Canceled), gc.Equals, true)
}

func (s *RankerTestSuite) TestInvalidConfig(c *gc.C) {
	specs := []struct {
		descr string
		mutFn func(*ranker.Config)
	}{
		{"damping of one", func(cfg *ranker.Config) { cfg.DampingFactor = 1.0 }},
		{"negative damping", func(cfg *ranker.Config) { cfg.DampingFactor = -0.1 }},
		{"NaN damping", func(cfg *ranker.Config) { cfg.DampingFactor = math.NaN() }},
		{"negative tolerance", func(cfg *ranker.Config) { cfg.Tolerance = -1 }},
		{"negative iterations", func(cfg *ranker.Config) { cfg.MaxIterations = -3 }},
		{"unknown norm", func(cfg *ranker.Config) { cfg.Norm = "linf" }},
		{"unknown dangling policy", func(cfg *ranker.Config) { cfg.Dangling = "drop" }},
		{"negative workers", func(cfg *ranker.Config) { cfg.ComputeWorkers = -1 }},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		cfg := ranker.DefaultConfig()
		spec.mutFn(&cfg)
		_, err := ranker.NewRanker(cfg)
		c.Assert(xerrors.Is(err, ranker.ErrInvalidConfig), gc.Equals, true, gc.Commentf("got %v", err))
	}
}

func (s *RankerTestSuite) TestZeroValueConfigGetsDefaults(c *gc.C) {
	// A zero damping factor is valid and turns PageRank into a uniform
	// distribution.
	res := s.rank(c, ranker.Config{}, buildGraph("a", "b", "c", "b"))
	c.Assert(res.Converged, gc.Equals, true)
	for id, score := range res.Scores {
		c.Assert(math.Abs(score-1.0/3) < 1e-12, gc.Equals, true, gc.Commentf("user %s", id))
	}
}

func (s *RankerTestSuite) rank(c *gc.C, cfg ranker.Config, g *graph.Graph) *ranker.Result {
	r, err := ranker.NewRanker(cfg)
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(r.Close(), gc.IsNil) }()

	res, err := r.Rank(context.TODO(), g)
	c.Assert(err, gc.IsNil)
	return res
}

func assertMass(c *gc.C, res *ranker.Result) {
	sum := res.Sum()
	c.Assert(math.Abs(sum-1.0) < 1e-6, gc.Equals, true, gc.Commentf("scores sum to %v", sum))
}

// buildGraph creates a graph from a flat list of (retweeting, retweeted)
// user id pairs.
func buildGraph(pairs ...string) *graph.Graph {
	b := graph.NewBuilder()
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Add(graph.RetweetEvent{RetweetingUserID: pairs[i], RetweetedUserID: pairs[i+1]})
	}
	return b.Build()
}
