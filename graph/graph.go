/*
   Builds the directed "who retweets whom" graph that the ranker operates on.
*/
package graph

import "sort"

// Iterator is implemented by lazy sequences of graph inputs.
type Iterator interface {
	// Next advances the iterator. If no more items are available or an
	// error occurs, calls to Next return false.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with the iterator.
	Close() error
}

// RetweetEvent records that RetweetingUserID retweeted a tweet authored by
// RetweetedUserID. Both fields hold user ids, never display names.
type RetweetEvent struct {
	RetweetingUserID string
	RetweetedUserID  string
}

// EventIterator is implemented by objects that can iterate retweet events.
type EventIterator interface {
	Iterator

	// Event returns the currently fetched retweet event.
	Event() RetweetEvent
}

// Graph is an immutable, unweighted directed graph of users. An edge u -> v
// means that u retweeted v at least once. Self loops and isolated nodes
// never appear in a Graph.
type Graph struct {
	nodes []string
	index map[string]int
	out   [][]int
	in    [][]int

	numEdges int
}

// NumNodes returns the number of users in the graph.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the number of unique edges in the graph.
func (g *Graph) NumEdges() int { return g.numEdges }

// Nodes returns the user ids of the graph in ascending order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// HasNode returns true if id takes part in at least one edge.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// HasEdge returns true if src retweeted dst.
func (g *Graph) HasEdge(src, dst string) bool {
	s, ok := g.index[src]
	if !ok {
		return false
	}
	d, ok := g.index[dst]
	if !ok {
		return false
	}
	adj := g.out[s]
	i := sort.SearchInts(adj, d)
	return i < len(adj) && adj[i] == d
}

// OutDegree returns the number of distinct users retweeted by id.
func (g *Graph) OutDegree(id string) int {
	if i, ok := g.index[id]; ok {
		return len(g.out[i])
	}
	return 0
}

// InDegree returns the number of distinct users that retweeted id.
func (g *Graph) InDegree(id string) int {
	if i, ok := g.index[id]; ok {
		return len(g.in[i])
	}
	return 0
}

// Edges invokes visitFn for each edge of the graph. Edges are visited
// grouped by source, sources and destinations in ascending id order.
func (g *Graph) Edges(visitFn func(src, dst string) error) error {
	for src, adj := range g.out {
		for _, dst := range adj {
			if err := visitFn(g.nodes[src], g.nodes[dst]); err != nil {
				return err
			}
		}
	}
	return nil
}
