package pipeline

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Payload is implemented by values that can be sent to the pipeline.
type Payload interface {
	// Clone returns a new Payload that's a deep-copy of the original.
	Clone() Payload

	// MarkAsProcessed is invoked once the payload has reached the sink or
	// was dropped by a stage.
	MarkAsProcessed()
}

// Processor is implemented by types that transform payloads inside a stage.
type Processor interface {
	// Process operates on the input payload and returns the payload to be
	// forwarded to the next stage. Returning a nil payload drops it.
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc is an adapter that allows plain functions to act as a Processor.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageParams is passed to StageRunner.Run and describes where a stage sits
// in the pipeline.
type StageParams interface {
	// StageIndex returns the position of a stage in the pipeline.
	StageIndex() int
	// Input returns a channel for reading the input Payload into the stage.
	Input() <-chan Payload
	// Output returns a channel for writing the stage output.
	Output() chan<- Payload
	// Error returns a channel for writing the errors that were encountered
	// during the stage execution.
	Error() chan<- error
}

// StageRunner is implemented by types that can be chained together to form
// a multi-stage pipeline.
type StageRunner interface {
	// Run reads payloads from the stage input channel and writes the
	// processed ones to its output channel. It returns once the input is
	// closed, the context is cancelled or a payload fails to process.
	Run(context.Context, StageParams)
}

// Source feeds payloads into the first stage of a pipeline.
type Source interface {
	// Next advances to the next payload. It returns false once the source
	// is exhausted or fails.
	Next(context.Context) bool

	// Payload returns the payload Next advanced to.
	Payload() Payload

	// Error returns the error that stopped the source, if any.
	Error() error
}

// Sink receives the payloads that made it through every stage.
type Sink interface {
	Consume(context.Context, Payload) error
}

type Pipeline struct {
	stages []StageRunner
}

// New returns a pipeline that pushes every payload through stages in order.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{
		stages: stages,
	}
}

// Process drains source through the pipeline stages into sink. It blocks
// until the source is exhausted or ctx is cancelled. The first failing
// worker cancels the rest and every reported error is collected into a
// multierror. A cancelled ctx on its own is not reported.
//
// Process may be called concurrently with different sources and sinks.
func (p *Pipeline) Process(ctx context.Context, source Source, sink Sink) error {
	var wg sync.WaitGroup
	ctx, ctxCancel := context.WithCancel(ctx)
	defer ctxCancel()

	// stageCh[i] feeds stage i; the last channel feeds the sink.
	stageCh := make([]chan Payload, len(p.stages)+1)
	errCh := make(chan error, len(p.stages)+2)
	for i := range stageCh {
		stageCh[i] = make(chan Payload)
	}

	wg.Add(len(p.stages))
	for i := range p.stages {
		go func(stage int) {
			defer wg.Done()
			p.stages[stage].Run(ctx, &workerParams{
				stage: stage,
				inCh:  stageCh[stage],
				outCh: stageCh[stage+1],
				errCh: errCh,
			})
			close(stageCh[stage+1])
		}(i)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		sourceWorker(ctx, source, stageCh[0], errCh)
		close(stageCh[0])
	}()

	go func() {
		defer wg.Done()
		sinkWorker(ctx, sink, stageCh[len(stageCh)-1], errCh)
	}()

	// errCh is closed once every worker has returned.
	go func() {
		wg.Wait()
		close(errCh)
		ctxCancel()
	}()

	var err error
	for pErr := range errCh {
		err = multierror.Append(err, pErr)
		ctxCancel()
	}
	return err
}
