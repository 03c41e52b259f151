package rank

import (
	"io/ioutil"
	"time"

	"github.com/Ahmed-Sermani/retweetrank/ranker"
	"github.com/Ahmed-Sermani/retweetrank/store"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Config encapsulates the settings for configuring the rank service.
type Config struct {
	// EventsPath points to a file with line-delimited tweet objects.
	EventsPath string

	// Ranker configures the PageRank computation.
	Ranker ranker.Config

	// TopK is the number of users reported after each run. Defaults to 10.
	TopK int

	// IngestWorkers is the number of workers decoding tweets. Defaults to 1.
	IngestWorkers int

	// UpdateInterval is the time between subsequent runs. A zero interval
	// executes a single run.
	UpdateInterval time.Duration

	// Store persists every run. Optional.
	Store store.ScoreStore

	// Clock used for scheduling and timestamping runs. If not specified,
	// a wall-clock will be used instead.
	Clock clock.Clock

	// Logger to use. If not defined an output-discarding logger will be used
	// instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.EventsPath == "" {
		err = multierror.Append(err, xerrors.Errorf("events path has not been provided"))
	}
	if cfg.TopK < 0 {
		err = multierror.Append(err, xerrors.Errorf("top-k cannot be negative"))
	} else if cfg.TopK == 0 {
		cfg.TopK = 10
	}
	if cfg.IngestWorkers < 0 {
		err = multierror.Append(err, xerrors.Errorf("number of ingest workers cannot be negative"))
	}
	if cfg.UpdateInterval < 0 {
		err = multierror.Append(err, xerrors.Errorf("update interval cannot be negative"))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}
