package tweet

import (
	"context"
	"io"
	"io/ioutil"

	"github.com/Ahmed-Sermani/retweetrank/bsp/aggregators"
	"github.com/Ahmed-Sermani/retweetrank/pipeline"
	"github.com/Ahmed-Sermani/retweetrank/pipeline/runners"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Config encapsulates the settings for ingesting a tweet dump.
type Config struct {
	// DecodeWorkers is the number of workers decoding tweets in parallel.
	// Defaults to 1.
	DecodeWorkers int

	// Logger for reporting skipped lines. If not defined, output is discarded.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.DecodeWorkers < 0 {
		err = multierror.Append(err, xerrors.New("number of decode workers cannot be negative"))
	} else if cfg.DecodeWorkers == 0 {
		cfg.DecodeWorkers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Stats summarizes an ingestion run.
type Stats struct {
	// Lines is the number of lines read from the input.
	Lines int
	// Malformed is the number of lines that could not be decoded.
	Malformed int
	// NotRetweets is the number of decoded tweets that are not retweets.
	NotRetweets int
	// Events is the number of retweet events handed to the builder.
	Events int
}

// Ingest reads line-delimited tweet objects from r and feeds every retweet
// into b. Blank lines are ignored while lines that are not valid JSON or
// exceed maxLineSize are counted as malformed and skipped. Calls to Ingest block until r is exhausted, a read
// error occurs or the context is cancelled.
func Ingest(ctx context.Context, r io.Reader, b GraphBuilder, cfg Config) (Stats, error) {
	if err := cfg.validate(); err != nil {
		return Stats{}, xerrors.Errorf("tweet ingest config validation failed: %w", err)
	}

	var malformed, notRetweets aggregators.IntAggregator
	p := pipeline.New(
		runners.FixedWorkerPool(
			newDecoder(cfg.Logger, &malformed, &notRetweets),
			cfg.DecodeWorkers,
		),
		runners.FIFO(newGraphUpdater(b)),
	)

	source := newLineSource(r, &malformed)
	sink := &countingSink{}
	err := p.Process(ctx, source, sink)
	if err == nil {
		// the pipeline stops silently when its context is cancelled.
		err = ctx.Err()
	}

	stats := Stats{
		Lines:       source.lineNo,
		Malformed:   malformed.Int(),
		NotRetweets: notRetweets.Int(),
		Events:      sink.getCount(),
	}
	cfg.Logger.WithFields(logrus.Fields{
		"lines":        stats.Lines,
		"malformed":    stats.Malformed,
		"not_retweets": stats.NotRetweets,
		"events":       stats.Events,
	}).Info("tweet ingestion completed")

	if err != nil {
		return stats, xerrors.Errorf("ingest tweets: %w", err)
	}
	return stats, nil
}
