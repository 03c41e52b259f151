package tweet

import (
	"bytes"
	"context"

	"github.com/Ahmed-Sermani/retweetrank/bsp/aggregators"
	"github.com/Ahmed-Sermani/retweetrank/pipeline"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var (
	_ pipeline.Processor = (*decoder)(nil)

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// decoder parses a raw line into a retweet event. Lines that are blank, not
// valid JSON or not retweets are dropped from the pipeline.
type decoder struct {
	logger *logrus.Entry

	malformed   *aggregators.IntAggregator
	notRetweets *aggregators.IntAggregator
}

func newDecoder(logger *logrus.Entry, malformed, notRetweets *aggregators.IntAggregator) *decoder {
	return &decoder{
		logger:      logger,
		malformed:   malformed,
		notRetweets: notRetweets,
	}
}

func (d *decoder) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*tweetPayload)
	if len(bytes.TrimSpace(payload.Raw)) == 0 {
		return nil, nil
	}

	var tw Tweet
	if err := json.Unmarshal(payload.Raw, &tw); err != nil {
		d.malformed.Inc()
		d.logger.WithField("line", payload.LineNo).WithError(err).Debug("skipping malformed tweet")
		return nil, nil
	}

	ev, ok := tw.RetweetEvent()
	if !ok {
		d.notRetweets.Inc()
		return nil, nil
	}

	payload.Event = ev
	return payload, nil
}
