package evaluate

import (
	"context"
	"io/ioutil"
	"os"

	"github.com/Ahmed-Sermani/retweetrank/letor"
	"github.com/Ahmed-Sermani/retweetrank/ndcg"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Config encapsulates the settings for configuring the evaluate service.
type Config struct {
	// JudgementsPath points to a judgement file in the LETOR text format.
	JudgementsPath string

	// Scorer assigns a score to each judged document.
	Scorer letor.Scorer

	// ScoreWorkers is the maximum number of concurrent Scorer calls.
	// Defaults to 1.
	ScoreWorkers int

	// Evaluator configures the NDCG cut-off and parallelism.
	Evaluator ndcg.Config

	// Logger to use. If not defined an output-discarding logger will be used
	// instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.JudgementsPath == "" {
		err = multierror.Append(err, xerrors.Errorf("judgements path has not been provided"))
	}
	if cfg.Scorer == nil {
		err = multierror.Append(err, xerrors.Errorf("scorer has not been provided"))
	}
	if cfg.ScoreWorkers < 0 {
		err = multierror.Append(err, xerrors.Errorf("number of score workers cannot be negative"))
	} else if cfg.ScoreWorkers == 0 {
		cfg.ScoreWorkers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Service scores a judgement file with the configured model and reports
// its mean NDCG.
type Service struct {
	cfg       Config
	evaluator *ndcg.Evaluator
}

// NewService creates a new evaluate service instance with the specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("evaluate service: config validation failed: %w", err)
	}

	evalCfg := cfg.Evaluator
	if evalCfg.Logger == nil {
		evalCfg.Logger = cfg.Logger
	}
	e, err := ndcg.NewEvaluator(evalCfg)
	if err != nil {
		return nil, xerrors.Errorf("evaluate service: %w", err)
	}
	return &Service{cfg: cfg, evaluator: e}, nil
}

// Name implements service.Service
func (svc *Service) Name() string { return "evaluate" }

// Run implements service.Service. The evaluation runs once.
func (svc *Service) Run(ctx context.Context) error {
	svc.cfg.Logger.Info("starting service")
	defer svc.cfg.Logger.Info("stopped service")

	if _, err := svc.RunOnce(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// RunOnce loads and scores the judgement file and evaluates the resulting
// rankings.
func (svc *Service) RunOnce(ctx context.Context) (*ndcg.Report, error) {
	f, err := os.Open(svc.cfg.JudgementsPath)
	if err != nil {
		return nil, xerrors.Errorf("open judgements: %w", err)
	}

	// the reader closes f once it has been drained.
	groups, err := letor.ScoreGroups(ctx, letor.NewReader(f), svc.cfg.Scorer, svc.cfg.ScoreWorkers)
	if err != nil {
		return nil, err
	}
	svc.cfg.Logger.WithField("queries", len(groups)).Info("scored judgements")

	return svc.evaluator.Evaluate(ctx, groups)
}
