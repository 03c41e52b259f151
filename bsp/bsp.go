/*
   implements the BSP https://en.wikipedia.org/wiki/Bulk_synchronous_parallel computing model
   used to run iterative vertex programs (PageRank) over the retweet graph.

   Each vertex owns two value slots. During superstep S the compute function
   reads the slot at S%2 (the values produced by the previous superstep) and
   writes the slot at (S+1)%2. The slots are swapped only after every vertex
   has been processed, so no vertex ever observes a half-updated vector.
*/
package bsp

import (
	"golang.org/x/xerrors"
)

var (
	// ErrUnknownEdgeSource is returned by AddEdge when the source vertex
	// has not been added to the graph.
	ErrUnknownEdgeSource = xerrors.New("source vertex is not part of the graph")

	// ErrUnknownEdgeDestination is returned by AddEdge when the destination
	// vertex has not been added to the graph.
	ErrUnknownEdgeDestination = xerrors.New("destination vertex is not part of the graph")
)

type Aggregator interface {
	Type() string
	Set(val any)
	Get() any
	// updates the Aggregator value based on the current value.
	Aggregate(val any)
}
