package tweet

import (
	"context"

	"github.com/Ahmed-Sermani/retweetrank/graph"
	"github.com/Ahmed-Sermani/retweetrank/pipeline"
)

var _ pipeline.Processor = (*graphUpdater)(nil)

// GraphBuilder is implemented by objects that accumulate retweet events.
type GraphBuilder interface {
	Add(ev graph.RetweetEvent) bool
}

type graphUpdater struct {
	b GraphBuilder
}

func newGraphUpdater(b GraphBuilder) *graphUpdater {
	return &graphUpdater{
		b: b,
	}
}

func (gu *graphUpdater) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*tweetPayload)
	// The builder filters self-retweets and duplicates on its own; the
	// event still counts as ingested.
	gu.b.Add(payload.Event)
	return p, nil
}
