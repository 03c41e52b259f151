package bsp

import (
	"sync"
	"sync/atomic"

	"golang.org/x/xerrors"
)

// ComputeFunc is a function that a graph instance invokes on each vertex when
// executing a superstep.
type ComputeFunc[VT, ET any] func(g *Graph[VT, ET], v *Vertex[VT, ET]) error

type Vertex[VT, ET any] struct {
	id  string
	idx int
	// two value slots are needed
	// the slot at super-step%2 holds the value visible in the current super-step
	// the slot at (super-step + 1)%2 receives the value for the next super-step
	value   [2]VT
	edges   []*Edge[ET]
	inEdges []*Edge[ET]
}

func (v *Vertex[VT, ET]) ID() string { return v.id }

// Index returns the position of the vertex in insertion order.
func (v *Vertex[VT, ET]) Index() int { return v.idx }

// Edges returns the outgoing edges of the vertex.
func (v *Vertex[VT, ET]) Edges() []*Edge[ET] { return v.edges }

// InEdges returns the incoming edges of the vertex in the order they were added.
func (v *Vertex[VT, ET]) InEdges() []*Edge[ET] { return v.inEdges }

type Edge[ET any] struct {
	value ET
	src   int
	dst   int
	srcID string
	dstID string
}

func (e *Edge[ET]) SrcID() string { return e.srcID }

func (e *Edge[ET]) DstID() string { return e.dstID }

func (e *Edge[ET]) Value() ET { return e.value }

func (e *Edge[ET]) SetValue(val ET) { e.value = val }

// Graph implements a parallel graph processor based on the concepts described
// in the Pregel paper https://15799.courses.cs.cmu.edu/fall2013/static/papers/p135-malewicz.pdf .
// Vertices pull the previous values of their neighbors instead of exchanging
// messages; this keeps the order in which contributions are summed fixed and
// makes every superstep reproducible regardless of the number of workers.
type Graph[VT, ET any] struct {
	superstep   int
	vertices    []*Vertex[VT, ET]
	index       map[string]*Vertex[VT, ET]
	aggregators map[string]Aggregator
	computeFunc ComputeFunc[VT, ET]

	// wg used for compute workers
	wg sync.WaitGroup

	// vertexCh polled by compute function workers to obtain the next
	// vertex to be processed
	vertexCh chan *Vertex[VT, ET]

	// errCh is buffered channel where workers publish any errors that occurs
	// during invoking the compute function.
	// if the channel is full, another error has already been written to it, the new error will
	// be safely ignored.
	errCh chan error

	// stepCompletedCh channel allows compute workers to signal
	// when the last enqueued vertex has been processed.
	stepCompletedCh chan struct{}

	// pendingInStep is the number of pending vertices to be processed in the superstep
	// it's set to len(vertices) at the start of the superstep
	pendingInStep int64
}

// NewGraph creates a new Graph instance using the specified configuration. It
// is important for callers to invoke Close() on the returned graph instance
// when they are done using it.
func NewGraph[VT, ET any](cfg GraphConfig[VT, ET]) (*Graph[VT, ET], error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("graph config validation failed: %w", err)
	}

	g := &Graph[VT, ET]{
		computeFunc: cfg.ComputeFn,
		aggregators: make(map[string]Aggregator),
		index:       make(map[string]*Vertex[VT, ET]),
	}
	g.startWorkers(cfg.ComputeWorkers)

	return g, nil
}

// Close releases any resources associated with the graph.
func (g *Graph[VT, ET]) Close() error {
	close(g.vertexCh)
	g.wg.Wait()

	return g.Reset()
}

// Reset the state of the graph by removing any existing vertices or
// aggregators and resetting the superstep counter.
func (g *Graph[VT, ET]) Reset() error {
	g.superstep = 0
	g.vertices = nil
	g.index = make(map[string]*Vertex[VT, ET])
	g.aggregators = make(map[string]Aggregator)
	return nil
}

// AddVertex inserts a new vertex with the specified id and initial value into
// the graph. If the vertex already exists, AddVertex will just overwrite its
// value with the provided initValue.
func (g *Graph[VT, ET]) AddVertex(id string, initValue VT) {
	v := g.index[id]
	if v == nil {
		v = &Vertex[VT, ET]{id: id, idx: len(g.vertices)}
		g.vertices = append(g.vertices, v)
		g.index[id] = v
	}
	v.value[0], v.value[1] = initValue, initValue
}

// AddEdge inserts a directed edge from src to destination and annotates it
// with the specified initValue. Both endpoints must already be part of the graph.
func (g *Graph[VT, ET]) AddEdge(srcID, dstID string, initValue ET) error {
	srcVertex := g.index[srcID]
	if srcVertex == nil {
		return xerrors.Errorf("create edge from %q to %q: %w", srcID, dstID, ErrUnknownEdgeSource)
	}
	dstVertex := g.index[dstID]
	if dstVertex == nil {
		return xerrors.Errorf("create edge from %q to %q: %w", srcID, dstID, ErrUnknownEdgeDestination)
	}

	e := &Edge[ET]{
		value: initValue,
		src:   srcVertex.idx,
		dst:   dstVertex.idx,
		srcID: srcID,
		dstID: dstID,
	}
	srcVertex.edges = append(srcVertex.edges, e)
	dstVertex.inEdges = append(dstVertex.inEdges, e)
	return nil
}

func (g *Graph[VT, ET]) RegisterAggregator(name string, aggregator Aggregator) {
	g.aggregators[name] = aggregator
}

func (g *Graph[VT, ET]) Aggregator(name string) Aggregator {
	return g.aggregators[name]
}

func (g *Graph[VT, ET]) Aggregators() map[string]Aggregator { return g.aggregators }

func (g *Graph[VT, ET]) Superstep() int { return g.superstep }

// Vertices returns the graph vertices in insertion order.
func (g *Graph[VT, ET]) Vertices() []*Vertex[VT, ET] { return g.vertices }

// Vertex looks up a vertex by id.
func (g *Graph[VT, ET]) Vertex(id string) (*Vertex[VT, ET], bool) {
	v, ok := g.index[id]
	return v, ok
}

// Source returns the vertex an edge originates from.
func (g *Graph[VT, ET]) Source(e *Edge[ET]) *Vertex[VT, ET] { return g.vertices[e.src] }

// Destination returns the vertex an edge points to.
func (g *Graph[VT, ET]) Destination(e *Edge[ET]) *Vertex[VT, ET] { return g.vertices[e.dst] }

// Value returns the value of v as produced by the previous superstep.
func (g *Graph[VT, ET]) Value(v *Vertex[VT, ET]) VT { return v.value[g.superstep%2] }

// PrevValue returns the value v held one superstep before Value. Executor
// hooks use it to measure how much a superstep changed the graph.
func (g *Graph[VT, ET]) PrevValue(v *Vertex[VT, ET]) VT { return v.value[(g.superstep+1)%2] }

// SetValue stores the value of v for the next superstep. Values written by
// SetValue become visible through Value only after the current superstep
// completes.
func (g *Graph[VT, ET]) SetValue(v *Vertex[VT, ET], val VT) { v.value[(g.superstep+1)%2] = val }

// startWorkers allocates the required channels and spins up numWorkers to
// execute each superstep.
func (g *Graph[VT, ET]) startWorkers(numWorkers int) {
	g.vertexCh = make(chan *Vertex[VT, ET])
	g.errCh = make(chan error, 1)
	g.stepCompletedCh = make(chan struct{})

	g.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go g.stepWorker()
	}
}

// stepWorker consumes vertexCh for incoming vertices and executes the configured
// ComputeFunc for each one. The worker exits when vertexCh gets
// closed.
func (g *Graph[VT, ET]) stepWorker() {
	defer g.wg.Done()
	for v := range g.vertexCh {
		// carry the current value over so vertices that leave their value
		// untouched keep it in the next superstep.
		v.value[(g.superstep+1)%2] = v.value[g.superstep%2]
		if err := g.computeFunc(g, v); err != nil {
			emitError(g.errCh, xerrors.Errorf("error while running compute function for vertex %q: %w", v.ID(), err))
		}
		if atomic.AddInt64(&g.pendingInStep, -1) == 0 {
			g.stepCompletedCh <- struct{}{}
		}
	}
}

// step executes the compute function once for every vertex and blocks until
// all of them have been processed. It returns the number of processed vertices.
// The caller is responsible for advancing the superstep counter, which swaps
// the value slots.
func (g *Graph[VT, ET]) step() (int, error) {
	// at the start of the superstep
	// it's safe to assign values to these variables directly
	g.pendingInStep = int64(len(g.vertices))

	// no work to do
	if g.pendingInStep == 0 {
		return 0, nil
	}

	for _, v := range g.vertices {
		g.vertexCh <- v
	}

	// block until the worker pool has finished processing all vertices
	<-g.stepCompletedCh

	var err error
	select {
	case err = <-g.errCh:
	default: // no error
	}

	return len(g.vertices), err
}

func emitError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default: // the channel already contains an error
	}
}
