package pipeline_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/Ahmed-Sermani/retweetrank/pipeline"
	"github.com/Ahmed-Sermani/retweetrank/pipeline/runners"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(PipelineTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type PipelineTestSuite struct{}

func (s *PipelineTestSuite) TestFIFOKeepsOrder(c *gc.C) {
	p := pipeline.New(
		runners.FIFO(double()),
		runners.FIFO(double()),
	)

	src := &sourceStub{data: []int{1, 2, 3, 4, 5}}
	sink := new(sinkStub)
	c.Assert(p.Process(context.TODO(), src, sink), gc.IsNil)
	c.Assert(sink.data, gc.DeepEquals, []int{4, 8, 12, 16, 20})
}

func (s *PipelineTestSuite) TestWorkerPools(c *gc.C) {
	for _, stage := range []pipeline.StageRunner{
		runners.FixedWorkerPool(double(), 4),
		runners.DynamicWorkerPool(double(), 4),
	} {
		var data []int
		for i := 0; i < 100; i++ {
			data = append(data, i)
		}

		p := pipeline.New(stage)
		sink := new(sinkStub)
		c.Assert(p.Process(context.TODO(), &sourceStub{data: data}, sink), gc.IsNil)

		sort.Ints(sink.data)
		c.Assert(sink.data, gc.HasLen, 100)
		for i, v := range sink.data {
			c.Assert(v, gc.Equals, 2*i)
		}
	}
}

func (s *PipelineTestSuite) TestDroppedPayloads(c *gc.C) {
	evenOnly := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		if p.(*intPayload).val%2 != 0 {
			return nil, nil
		}
		return p, nil
	})

	src := &sourceStub{data: []int{1, 2, 3, 4}}
	sink := new(sinkStub)
	c.Assert(pipeline.New(runners.FIFO(evenOnly)).Process(context.TODO(), src, sink), gc.IsNil)
	c.Assert(sink.data, gc.DeepEquals, []int{2, 4})
	c.Assert(src.processed(), gc.Equals, 4)
}

func (s *PipelineTestSuite) TestProcessorError(c *gc.C) {
	failing := pipeline.ProcessorFunc(func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
		return nil, errors.New("some error")
	})

	err := pipeline.New(runners.FIFO(failing)).Process(context.TODO(), &sourceStub{data: []int{1}}, new(sinkStub))
	c.Assert(err, gc.ErrorMatches, "(?s).*pipeline stage 0: some error.*")
}

func (s *PipelineTestSuite) TestSourceError(c *gc.C) {
	src := &sourceStub{err: errors.New("source failed")}
	err := pipeline.New(runners.FIFO(double())).Process(context.TODO(), src, new(sinkStub))
	c.Assert(err, gc.ErrorMatches, "(?s).*pipeline source: source failed.*")
}

func (s *PipelineTestSuite) TestSinkError(c *gc.C) {
	sink := &sinkStub{err: errors.New("sink failed")}
	err := pipeline.New(runners.FIFO(double())).Process(context.TODO(), &sourceStub{data: []int{1}}, sink)
	c.Assert(err, gc.ErrorMatches, "(?s).*pipeline sink: sink failed.*")
}

func double() pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		p.(*intPayload).val *= 2
		return p, nil
	})
}

type intPayload struct {
	val       int
	processed *int
	mu        *sync.Mutex
}

func (p *intPayload) Clone() pipeline.Payload {
	return &intPayload{val: p.val, processed: p.processed, mu: p.mu}
}

func (p *intPayload) MarkAsProcessed() {
	p.mu.Lock()
	*p.processed++
	p.mu.Unlock()
}

type sourceStub struct {
	index int
	data  []int
	err   error

	mu             sync.Mutex
	processedCount int
}

func (s *sourceStub) Next(context.Context) bool {
	if s.err != nil || s.index == len(s.data) {
		return false
	}
	s.index++
	return true
}

func (s *sourceStub) Error() error { return s.err }

func (s *sourceStub) Payload() pipeline.Payload {
	return &intPayload{val: s.data[s.index-1], processed: &s.processedCount, mu: &s.mu}
}

func (s *sourceStub) processed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processedCount
}

type sinkStub struct {
	data []int
	err  error
}

func (s *sinkStub) Consume(_ context.Context, p pipeline.Payload) error {
	if s.err != nil {
		return s.err
	}
	s.data = append(s.data, p.(*intPayload).val)
	return nil
}
