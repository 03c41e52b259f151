package pipeline

import (
	"context"

	"golang.org/x/xerrors"
)

// sourceWorker forwards payloads from source to the first stage.
func sourceWorker(ctx context.Context, source Source, outCh chan<- Payload, errCh chan<- error) {
	for source.Next(ctx) {
		select {
		case outCh <- source.Payload():
		case <-ctx.Done():
			return
		}
	}

	if err := source.Error(); err != nil {
		reportError(errCh, xerrors.Errorf("pipeline source: %w", err))
	}
}

// sinkWorker hands every payload leaving the last stage to sink and marks
// it as processed.
func sinkWorker(ctx context.Context, sink Sink, inCh <-chan Payload, errCh chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, open := <-inCh:
			if !open {
				return
			}
			if err := sink.Consume(ctx, payload); err != nil {
				reportError(errCh, xerrors.Errorf("pipeline sink: %w", err))
			}
			payload.MarkAsProcessed()
		}
	}
}

// reportError drops err when errCh is already full.
func reportError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}
