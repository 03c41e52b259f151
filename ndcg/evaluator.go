package ndcg

import (
	"context"
	"io/ioutil"
	"sort"

	"github.com/Ahmed-Sermani/retweetrank/pipeline"
	"github.com/Ahmed-Sermani/retweetrank/pipeline/runners"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Config encapsulates the settings for an Evaluator.
type Config struct {
	// K is the rank cut-off; zero evaluates the full list of every group.
	K int

	// Workers is the number of groups scored in parallel. Defaults to 1.
	Workers int

	// Logger for per-query results. If not defined, output is discarded.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.K < 0 {
		err = multierror.Append(err, xerrors.Errorf("cut-off cannot be negative: %w", ErrInvalidArgument))
	}
	if cfg.Workers < 0 {
		err = multierror.Append(err, xerrors.Errorf("number of workers cannot be negative: %w", ErrInvalidArgument))
	} else if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// QueryResult is the NDCG of a single query group.
type QueryResult struct {
	QueryID string
	NDCG    float64
}

// Report is the outcome of evaluating a set of query groups.
type Report struct {
	// Mean is the arithmetic mean of the per-query NDCG values, or 0 if no
	// group was evaluated.
	Mean float64

	// PerQuery lists the evaluated groups ordered by query id.
	PerQuery []QueryResult

	// Skipped lists, in query id order, the groups without documents.
	Skipped []string
}

// Evaluator computes NDCG@K over query groups in parallel.
type Evaluator struct {
	cfg      Config
	pipeline *pipeline.Pipeline
}

// NewEvaluator returns an Evaluator for cfg.
func NewEvaluator(cfg Config) (*Evaluator, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("NDCG evaluator config validation failed: %w", err)
	}
	return &Evaluator{
		cfg: cfg,
		pipeline: pipeline.New(
			runners.FixedWorkerPool(newGroupScorer(cfg.K), cfg.Workers),
		),
	}, nil
}

// Evaluate scores every group and aggregates the results. Groups without
// documents are reported as skipped and do not contribute to the mean. The
// first invalid group aborts the evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, groups []QueryGroup) (*Report, error) {
	sink := new(collectingSink)
	err := e.pipeline.Process(ctx, &groupSource{groups: groups}, sink)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, xerrors.Errorf("evaluate NDCG@%d: %w", e.cfg.K, err)
	}

	// results arrive in completion order; sort them so the summation order
	// and the report do not depend on scheduling.
	sort.Slice(sink.results, func(i, j int) bool {
		ri, rj := sink.results[i], sink.results[j]
		if ri.Group.QueryID != rj.Group.QueryID {
			return ri.Group.QueryID < rj.Group.QueryID
		}
		return ri.Index < rj.Index
	})

	rep := new(Report)
	var sum float64
	for _, res := range sink.results {
		if res.Skipped {
			rep.Skipped = append(rep.Skipped, res.Group.QueryID)
			continue
		}
		rep.PerQuery = append(rep.PerQuery, QueryResult{QueryID: res.Group.QueryID, NDCG: res.NDCG})
		sum += res.NDCG
		e.cfg.Logger.WithFields(logrus.Fields{
			"query": res.Group.QueryID,
			"ndcg":  res.NDCG,
		}).Debug("evaluated query")
	}
	if len(rep.PerQuery) > 0 {
		rep.Mean = sum / float64(len(rep.PerQuery))
	}

	e.cfg.Logger.WithFields(logrus.Fields{
		"k":       e.cfg.K,
		"queries": len(rep.PerQuery),
		"skipped": len(rep.Skipped),
		"mean":    rep.Mean,
	}).Info("NDCG evaluation completed")
	return rep, nil
}

type groupScorer struct {
	k int
}

func newGroupScorer(k int) *groupScorer {
	return &groupScorer{k: k}
}

func (s *groupScorer) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*groupPayload)
	if len(payload.Group.Docs) == 0 {
		payload.Skipped = true
		return payload, nil
	}

	score, err := NDCG(payload.Group, s.k)
	if err != nil {
		return nil, err
	}
	payload.NDCG = score
	return payload, nil
}
