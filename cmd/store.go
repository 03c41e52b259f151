package cmd

import (
	"net/url"

	"github.com/Ahmed-Sermani/retweetrank/store"
	"github.com/Ahmed-Sermani/retweetrank/store/cdb"
	"github.com/Ahmed-Sermani/retweetrank/store/memory"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// openScoreStore returns the score store for storeURI. Supported URIs are
// in-memory:// and postgresql://user@host:26257/retweetrank?sslmode=disable.
func openScoreStore(storeURI string, logger *logrus.Entry) (store.ScoreStore, error) {
	if storeURI == "" {
		return nil, xerrors.Errorf("score store URI must be specified with --store-uri")
	}

	uri, err := url.Parse(storeURI)
	if err != nil {
		return nil, xerrors.Errorf("could not parse score store URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory score store")
		return memory.NewInMemoryScoreStore(), nil
	case "postgresql":
		logger.Info("using CDB score store")
		return cdb.NewCockroachDBScoreStore(storeURI)
	default:
		return nil, xerrors.Errorf("score store URI scheme %q: %w", uri.Scheme, store.ErrUnsupportedURI)
	}
}
