package ndcg

import (
	"context"

	"github.com/Ahmed-Sermani/retweetrank/pipeline"
)

var _ pipeline.Payload = (*groupPayload)(nil)

type groupPayload struct {
	Index int
	Group QueryGroup

	Skipped bool
	NDCG    float64
}

func (p *groupPayload) Clone() pipeline.Payload {
	newp := *p
	return &newp
}

func (p *groupPayload) MarkAsProcessed() {}

type groupSource struct {
	groups []QueryGroup
	next   int
}

func (s *groupSource) Next(ctx context.Context) bool {
	if ctx.Err() != nil || s.next >= len(s.groups) {
		return false
	}
	s.next++
	return true
}

func (s *groupSource) Payload() pipeline.Payload {
	return &groupPayload{Index: s.next - 1, Group: s.groups[s.next-1]}
}

func (s *groupSource) Error() error { return nil }

// collectingSink gathers the scored groups. The pipeline drives the sink from
// a single goroutine so no locking is needed.
type collectingSink struct {
	results []*groupPayload
}

func (s *collectingSink) Consume(_ context.Context, p pipeline.Payload) error {
	s.results = append(s.results, p.(*groupPayload))
	return nil
}
