package rank

import (
	"context"
	"os"

	"github.com/Ahmed-Sermani/retweetrank/graph"
	"github.com/Ahmed-Sermani/retweetrank/ranker"
	"github.com/Ahmed-Sermani/retweetrank/store"
	"github.com/Ahmed-Sermani/retweetrank/tweet"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Report summarizes a single ranking run.
type Report struct {
	// RunID is set when the run was persisted.
	RunID uuid.UUID

	Ingest tweet.Stats
	Graph  graph.Stats
	Users  int
	Edges  int

	Result *ranker.Result
	Top    []ranker.Score
}

// Service builds the retweet graph from a tweet dump, ranks its users and
// optionally stores the scores, either once or periodically.
type Service struct {
	cfg    Config
	ranker *ranker.Ranker
}

// NewService creates a new rank service instance with the specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("rank service: config validation failed: %w", err)
	}

	rankerCfg := cfg.Ranker
	if rankerCfg.Logger == nil {
		rankerCfg.Logger = cfg.Logger
	}
	r, err := ranker.NewRanker(rankerCfg)
	if err != nil {
		return nil, xerrors.Errorf("rank service: %w", err)
	}
	return &Service{
		cfg:    cfg,
		ranker: r,
	}, nil
}

// Name implements service.Service
func (svc *Service) Name() string { return "rank" }

// Run implements service.Service. It executes a run immediately and then,
// if an update interval is configured, after every interval until ctx is
// cancelled.
func (svc *Service) Run(ctx context.Context) error {
	svc.cfg.Logger.WithField("update_interval", svc.cfg.UpdateInterval.String()).Info("starting service")
	defer svc.cfg.Logger.Info("stopped service")

	for {
		if _, err := svc.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if svc.cfg.UpdateInterval == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-svc.cfg.Clock.After(svc.cfg.UpdateInterval):
		}
	}
}

// Close releases the compute workers of the service. The service cannot be
// used after Close returns.
func (svc *Service) Close() error {
	return svc.ranker.Close()
}

// RunOnce ingests the configured tweet dump, ranks the resulting graph and
// stores the outcome.
func (svc *Service) RunOnce(ctx context.Context) (*Report, error) {
	tick := svc.cfg.Clock.Now()

	b := graph.NewBuilder()
	ingestStats, err := svc.ingest(ctx, b)
	if err != nil {
		return nil, err
	}
	g := b.Build()

	svc.cfg.Logger.WithFields(logrus.Fields{
		"users": g.NumNodes(),
		"edges": g.NumEdges(),
	}).Info("built retweet graph")

	res, err := svc.ranker.Rank(ctx, g)
	if err != nil {
		return nil, xerrors.Errorf("rank: %w", err)
	}

	rep := &Report{
		Ingest: ingestStats,
		Graph:  b.Stats(),
		Users:  g.NumNodes(),
		Edges:  g.NumEdges(),
		Result: res,
	}
	if rep.Top, err = res.TopK(svc.cfg.TopK); err != nil {
		return nil, xerrors.Errorf("rank: %w", err)
	}
	for i, s := range rep.Top {
		svc.cfg.Logger.WithFields(logrus.Fields{
			"rank":  i + 1,
			"user":  s.ID,
			"score": s.Score,
		}).Info("top user")
	}

	if svc.cfg.Store != nil {
		run := &store.Run{
			CreatedAt:     tick,
			DampingFactor: svc.cfg.Ranker.DampingFactor,
			Iterations:    res.Iterations,
			Residual:      res.Residual,
			Converged:     res.Converged,
			Scores:        allScores(res),
		}
		if err = svc.cfg.Store.SaveRun(run); err != nil {
			return nil, xerrors.Errorf("rank: %w", err)
		}
		rep.RunID = run.ID
	}

	svc.cfg.Logger.WithFields(logrus.Fields{
		"run_id":     rep.RunID.String(),
		"iterations": res.Iterations,
		"residual":   res.Residual,
		"converged":  res.Converged,
		"elapsed":    svc.cfg.Clock.Now().Sub(tick).String(),
	}).Info("completed ranking run")
	return rep, nil
}

func (svc *Service) ingest(ctx context.Context, b *graph.Builder) (tweet.Stats, error) {
	f, err := os.Open(svc.cfg.EventsPath)
	if err != nil {
		return tweet.Stats{}, xerrors.Errorf("open events: %w", err)
	}
	defer func() { _ = f.Close() }()

	return tweet.Ingest(ctx, f, b, tweet.Config{
		DecodeWorkers: svc.cfg.IngestWorkers,
		Logger:        svc.cfg.Logger,
	})
}

func allScores(res *ranker.Result) []ranker.Score {
	scores := make([]ranker.Score, 0, len(res.Scores))
	for id, score := range res.Scores {
		scores = append(scores, ranker.Score{ID: id, Score: score})
	}
	ranker.SortScores(scores)
	return scores
}
