package ranker

import (
	"io/ioutil"
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// ErrInvalidConfig is wrapped by every configuration validation error.
var ErrInvalidConfig = xerrors.New("invalid ranker configuration")

// Norm selects the distance used to measure the change between two
// successive score vectors.
type Norm string

const (
	// NormL1 is the sum of absolute differences.
	NormL1 Norm = "l1"
	// NormL2 is the euclidean distance.
	NormL2 Norm = "l2"
)

// DanglingPolicy selects what happens to the score held by users that
// nobody retweets back into the graph (out-degree zero).
type DanglingPolicy string

const (
	// DanglingUniform spreads the total dangling score evenly across all
	// users, as if the random surfer teleported away from a sink.
	DanglingUniform DanglingPolicy = "uniform"

	// DanglingSelfLoop lets a sink keep its damped score, as if it linked
	// to itself.
	DanglingSelfLoop DanglingPolicy = "self-loop"
)

const (
	defaultDampingFactor = 0.9
	defaultTolerance     = 1e-6
	defaultMaxIterations = 1000
)

// Config encapsulates the settings for configuring the PageRank ranker.
type Config struct {
	// DampingFactor is the probability of following an edge instead of
	// teleporting to a random user. It must lie in [0, 1).
	DampingFactor float64

	// Tolerance is the residual below which the scores are considered
	// converged. Defaults to 1e-6.
	Tolerance float64

	// MaxIterations bounds the number of power iterations. Defaults to 1000.
	MaxIterations int

	// Norm used for the residual between successive iterations. Defaults
	// to NormL1.
	Norm Norm

	// Dangling selects the convention for users without outgoing edges.
	// Defaults to DanglingUniform.
	Dangling DanglingPolicy

	// ComputeWorkers is the number of workers that update scores within an
	// iteration. Defaults to 1.
	ComputeWorkers int

	// Logger receives per-iteration debug output. Defaults to a
	// discarding logger.
	Logger *logrus.Entry
}

// DefaultConfig returns a Config populated with the default damping factor
// of 0.9 and default values for every other option.
func DefaultConfig() Config {
	return Config{
		DampingFactor:  defaultDampingFactor,
		Tolerance:      defaultTolerance,
		MaxIterations:  defaultMaxIterations,
		Norm:           NormL1,
		Dangling:       DanglingUniform,
		ComputeWorkers: 1,
	}
}

// validate checks the configuration and fills in defaults for unset
// options. DampingFactor is never defaulted since zero is a valid value.
func (cfg *Config) validate() error {
	var err error
	if math.IsNaN(cfg.DampingFactor) || cfg.DampingFactor < 0 || cfg.DampingFactor >= 1 {
		err = multierror.Append(err, xerrors.Errorf("damping factor %v outside [0, 1): %w", cfg.DampingFactor, ErrInvalidConfig))
	}

	switch {
	case math.IsNaN(cfg.Tolerance) || cfg.Tolerance < 0:
		err = multierror.Append(err, xerrors.Errorf("tolerance %v must be positive: %w", cfg.Tolerance, ErrInvalidConfig))
	case cfg.Tolerance == 0:
		cfg.Tolerance = defaultTolerance
	}

	switch {
	case cfg.MaxIterations < 0:
		err = multierror.Append(err, xerrors.Errorf("max iterations %d must be positive: %w", cfg.MaxIterations, ErrInvalidConfig))
	case cfg.MaxIterations == 0:
		cfg.MaxIterations = defaultMaxIterations
	}

	switch cfg.Norm {
	case "":
		cfg.Norm = NormL1
	case NormL1, NormL2:
	default:
		err = multierror.Append(err, xerrors.Errorf("unsupported norm %q: %w", cfg.Norm, ErrInvalidConfig))
	}

	switch cfg.Dangling {
	case "":
		cfg.Dangling = DanglingUniform
	case DanglingUniform, DanglingSelfLoop:
	default:
		err = multierror.Append(err, xerrors.Errorf("unsupported dangling policy %q: %w", cfg.Dangling, ErrInvalidConfig))
	}

	switch {
	case cfg.ComputeWorkers < 0:
		err = multierror.Append(err, xerrors.Errorf("compute workers %d cannot be negative: %w", cfg.ComputeWorkers, ErrInvalidConfig))
	case cfg.ComputeWorkers == 0:
		cfg.ComputeWorkers = 1
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}
