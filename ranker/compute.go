package ranker

import (
	"math"

	"github.com/Ahmed-Sermani/retweetrank/bsp"
)

// makeRankerComputeFunc returns a ComputeFunc that executes one PageRank
// power iteration for a single vertex using the provided dampingFactor.
//
// Each vertex pulls the previous scores of the users that retweeted it,
// each divided by the out-degree of that user. Contributions are summed in
// in-edge order, which the graph keeps fixed.
func makeRankerComputeFunc(dampingFactor float64, dangling DanglingPolicy) bsp.ComputeFunc[float64, any] {
	return func(g *bsp.Graph[float64, any], v *bsp.Vertex[float64, any]) error {
		userCount := float64(len(g.Vertices()))

		// Teleport share: with probability 1-d the surfer jumps to a user
		// picked uniformly at random.
		newScore := (1.0 - dampingFactor) / userCount
		for _, e := range v.InEdges() {
			src := g.Source(e)
			newScore += dampingFactor * g.Value(src) / float64(len(src.Edges()))
		}

		switch dangling {
		case DanglingSelfLoop:
			if len(v.Edges()) == 0 {
				newScore += dampingFactor * g.Value(v)
			}
		default:
			// The score held by dead-ends during the previous iteration
			// was summed up by the PreStep hook; every vertex gets an
			// equal share of it.
			newScore += dampingFactor * g.Aggregator(danglingAccName).Get().(float64) / userCount
		}

		g.SetValue(v, newScore)
		return nil
	}
}

// danglingMass sums the scores of all vertices without outgoing edges.
func danglingMass(g *bsp.Graph[float64, any]) float64 {
	var sum float64
	for _, v := range g.Vertices() {
		if len(v.Edges()) == 0 {
			sum += g.Value(v)
		}
	}
	return sum
}

// residual returns the distance between the score vectors produced by the
// last two supersteps.
func residual(g *bsp.Graph[float64, any], norm Norm) float64 {
	var sum float64
	for _, v := range g.Vertices() {
		delta := g.Value(v) - g.PrevValue(v)
		if norm == NormL2 {
			sum += delta * delta
		} else {
			sum += math.Abs(delta)
		}
	}
	if norm == NormL2 {
		return math.Sqrt(sum)
	}
	return sum
}
