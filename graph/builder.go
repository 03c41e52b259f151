package graph

import (
	"sort"
	"sync"

	"github.com/Ahmed-Sermani/retweetrank/bsp/aggregators"
	"golang.org/x/xerrors"
)

type edgeKey struct {
	src, dst string
}

// Stats summarizes the events a Builder has seen.
type Stats struct {
	// Accepted is the number of events that produced a new edge.
	Accepted int
	// Duplicates is the number of events whose edge already existed.
	Duplicates int
	// SelfRetweets is the number of events where a user retweeted themselves.
	SelfRetweets int
	// Incomplete is the number of events missing one of the user ids.
	Incomplete int
}

// Builder accumulates retweet events into a Graph. Invalid events are
// dropped and counted, never reported as errors. It is safe to call Add
// from concurrent goroutines.
type Builder struct {
	mu    sync.Mutex
	edges map[edgeKey]struct{}

	accepted     aggregators.IntAggregator
	duplicates   aggregators.IntAggregator
	selfRetweets aggregators.IntAggregator
	incomplete   aggregators.IntAggregator
}

// NewBuilder returns an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		edges: make(map[edgeKey]struct{}),
	}
}

// Add records ev and returns true if it introduced a new edge.
func (b *Builder) Add(ev RetweetEvent) bool {
	switch {
	case ev.RetweetingUserID == "" || ev.RetweetedUserID == "":
		b.incomplete.Inc()
		return false
	case ev.RetweetingUserID == ev.RetweetedUserID:
		b.selfRetweets.Inc()
		return false
	}

	k := edgeKey{src: ev.RetweetingUserID, dst: ev.RetweetedUserID}
	b.mu.Lock()
	_, exists := b.edges[k]
	if !exists {
		b.edges[k] = struct{}{}
	}
	b.mu.Unlock()

	if exists {
		b.duplicates.Inc()
		return false
	}
	b.accepted.Inc()
	return true
}

// AddAll drains it into the builder. Only iterator failures are returned.
func (b *Builder) AddAll(it EventIterator) error {
	for it.Next() {
		b.Add(it.Event())
	}
	if err := it.Error(); err != nil {
		_ = it.Close()
		return xerrors.Errorf("add events: %w", err)
	}
	if err := it.Close(); err != nil {
		return xerrors.Errorf("add events: %w", err)
	}
	return nil
}

// Stats returns the counters collected so far.
func (b *Builder) Stats() Stats {
	return Stats{
		Accepted:     b.accepted.Int(),
		Duplicates:   b.duplicates.Int(),
		SelfRetweets: b.selfRetweets.Int(),
		Incomplete:   b.incomplete.Int(),
	}
}

// Build returns an immutable snapshot of the graph. The node set consists of
// the endpoints of the accepted edges; the layout does not depend on the
// order in which events were added.
func (b *Builder) Build() *Graph {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]struct{}, len(b.edges))
	for k := range b.edges {
		seen[k.src] = struct{}{}
		seen[k.dst] = struct{}{}
	}

	g := &Graph{
		nodes:    make([]string, 0, len(seen)),
		index:    make(map[string]int, len(seen)),
		numEdges: len(b.edges),
	}
	for id := range seen {
		g.nodes = append(g.nodes, id)
	}
	sort.Strings(g.nodes)
	for i, id := range g.nodes {
		g.index[id] = i
	}

	g.out = make([][]int, len(g.nodes))
	g.in = make([][]int, len(g.nodes))
	for k := range b.edges {
		src, dst := g.index[k.src], g.index[k.dst]
		g.out[src] = append(g.out[src], dst)
		g.in[dst] = append(g.in[dst], src)
	}
	for i := range g.nodes {
		sort.Ints(g.out[i])
		sort.Ints(g.in[i])
	}
	return g
}
