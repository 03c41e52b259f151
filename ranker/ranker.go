/*
   Implements Google famous and first
   PageRank algorithm https://en.wikipedia.org/wiki/PageRank
   over the retweet graph.
*/
package ranker

import (
	"context"
	"sort"

	"github.com/Ahmed-Sermani/retweetrank/bsp"
	"github.com/Ahmed-Sermani/retweetrank/bsp/aggregators"
	"github.com/Ahmed-Sermani/retweetrank/graph"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

/*
   PageRank works by counting the number and quality of retweets a user
   receives to determine a rough estimate of how influential the user is.
   The underlying assumption is that influential users are likely to be
   retweeted by other influential users.

   To calculate the score for each vertex in the graph,
   the PageRank algorithm utilizes the model of the random surfer.
   The surfer lands on a user and from that point on randomly selects one of:

       Follow one of the retweets of the current user to the retweeted author.
       Surfers choose this option with a probability equal to the damping factor.

       Teleport to a user picked uniformly at random.

   PageRank score values reflect the probability that a surfer lands on a particular user:
       Each PageRank score is a value in the [0, 1] range
       The sum of all assigned PageRank scores is equal to 1
*/

const (
	danglingAccName = "dangling"
	residualAccName = "residual"
)

// Result holds the outcome of a PageRank run.
type Result struct {
	// Scores maps each user id to its PageRank score.
	Scores map[string]float64

	// Iterations is the number of power iterations that were executed.
	Iterations int

	// Residual is the distance between the last two score vectors.
	Residual float64

	// Converged is false when the run hit the iteration bound before
	// the residual dropped below the configured tolerance.
	Converged bool
}

// Sum returns the total score mass. Scores are added in id order so the
// result is reproducible.
func (r *Result) Sum() float64 {
	ids := make([]string, 0, len(r.Scores))
	for id := range r.Scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sum float64
	for _, id := range ids {
		sum += r.Scores[id]
	}
	return sum
}

// TopK returns the k highest ranked users. See TopK.
func (r *Result) TopK(k int) ([]Score, error) {
	return TopK(r.Scores, k)
}

// Ranker executes the iterative version of the PageRank algorithm
// on a graph until the desired level of convergence is reached.
// A Ranker is not safe for concurrent use; create one per goroutine.
type Ranker struct {
	g   *bsp.Graph[float64, any]
	cfg Config

	executorFactory bsp.ExecutorFactory[float64, any]
}

// NewRanker returns a new Ranker instance using the provided config
// options.
func NewRanker(cfg Config) (*Ranker, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("PageRank ranker config validation failed: %w", err)
	}

	g, err := bsp.NewGraph(bsp.GraphConfig[float64, any]{
		ComputeWorkers: cfg.ComputeWorkers,
		ComputeFn:      makeRankerComputeFunc(cfg.DampingFactor, cfg.Dangling),
	})
	if err != nil {
		return nil, err
	}

	return &Ranker{
		cfg:             cfg,
		g:               g,
		executorFactory: bsp.NewExecutor[float64, any],
	}, nil
}

// Close releases any resources allocated by this PageRank ranker instance.
func (c *Ranker) Close() error {
	return c.g.Close()
}

// SetExecutorFactory configures the ranker to use the a custom executor
// factory when the Executor method is invoked.
func (c *Ranker) SetExecutorFactory(factory bsp.ExecutorFactory[float64, any]) {
	c.executorFactory = factory
}

// Load replaces the current vertex set with the users and edges of rg and
// assigns every user the initial score 1/N.
func (c *Ranker) Load(rg *graph.Graph) error {
	if err := c.g.Reset(); err != nil {
		return err
	}

	nodes := rg.Nodes()
	initScore := 0.0
	if len(nodes) > 0 {
		initScore = 1.0 / float64(len(nodes))
	}
	for _, id := range nodes {
		c.g.AddVertex(id, initScore)
	}

	return rg.Edges(func(src, dst string) error {
		return c.g.AddEdge(src, dst, nil)
	})
}

// Graph returns the underlying bsp.Graph instance.
func (c *Ranker) Graph() *bsp.Graph[float64, any] {
	return c.g
}

// Executor creates and return a bsp.Executor for running the PageRank
// algorithm once the graph layout has been properly set up.
func (c *Ranker) Executor() *bsp.Executor[float64, any] {
	c.registerAggregators()
	cb := bsp.ExecutorHooks[float64, any]{
		PreStep: func(_ context.Context, g *bsp.Graph[float64, any]) error {
			// Collect the score held by dead-ends so the compute function
			// can spread it. This runs on a single goroutine, keeping the
			// summation order fixed.
			mass := 0.0
			if c.cfg.Dangling == DanglingUniform {
				mass = danglingMass(g)
			}
			g.Aggregator(danglingAccName).Set(mass)
			return nil
		},
		PostStepKeepRunning: func(_ context.Context, g *bsp.Graph[float64, any], _ int) (bool, error) {
			res := residual(g, c.cfg.Norm)
			g.Aggregator(residualAccName).Set(res)
			c.cfg.Logger.WithFields(logrus.Fields{
				"iteration": g.Superstep(),
				"residual":  res,
			}).Debug("PageRank iteration completed")
			return res >= c.cfg.Tolerance, nil
		},
	}

	return c.executorFactory(c.g, cb)
}

// Rank loads rg, runs power iterations until convergence or until
// MaxIterations is reached and returns the resulting scores. An empty
// graph yields an empty result.
func (c *Ranker) Rank(ctx context.Context, rg *graph.Graph) (*Result, error) {
	if err := c.Load(rg); err != nil {
		return nil, xerrors.Errorf("rank: %w", err)
	}

	if len(c.g.Vertices()) == 0 {
		return &Result{Scores: make(map[string]float64), Converged: true}, nil
	}

	ex := c.Executor()
	if err := ex.RunSteps(ctx, c.cfg.MaxIterations); err != nil {
		return nil, xerrors.Errorf("rank: %w", err)
	}

	res := &Result{
		Scores:     make(map[string]float64, len(c.g.Vertices())),
		Iterations: ex.Superstep(),
		Residual:   c.g.Aggregator(residualAccName).Get().(float64),
	}
	res.Converged = res.Residual < c.cfg.Tolerance
	err := c.Scores(func(id string, score float64) error {
		res.Scores[id] = score
		return nil
	})
	return res, err
}

// registerAggregators creates and registers the aggregator instances that we
// need to run the PageRank ranker algorithm.
func (c *Ranker) registerAggregators() {
	c.g.RegisterAggregator(danglingAccName, new(aggregators.Float64Aggregator))
	c.g.RegisterAggregator(residualAccName, new(aggregators.Float64Aggregator))
}

// Scores invokes the provided visitor function for each vertex in the graph.
func (c *Ranker) Scores(visitFn func(id string, score float64) error) error {
	for _, v := range c.g.Vertices() {
		if err := visitFn(v.ID(), c.g.Value(v)); err != nil {
			return err
		}
	}
	return nil
}
