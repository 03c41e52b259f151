package aggregators

import (
	"math/rand"
	"testing"

	"github.com/Ahmed-Sermani/retweetrank/bsp"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(AggregatorTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type AggregatorTestSuite struct{}

func (s *AggregatorTestSuite) TestIntAggregator(c *gc.C) {
	numValues := 100
	values := make([]interface{}, numValues)
	var exp int
	for i := 0; i < numValues; i++ {
		next := rand.Intn(1 << 20)
		values[i] = next
		exp += next
	}

	got := s.testConcurrentAccess(new(IntAggregator), values).(int)
	c.Assert(got, gc.Equals, exp)
}

func (s *AggregatorTestSuite) TestFloat64Aggregator(c *gc.C) {
	// Small integral values keep the sum exact regardless of the order in
	// which the goroutines get to aggregate.
	numValues := 100
	values := make([]interface{}, numValues)
	var exp float64
	for i := 0; i < numValues; i++ {
		next := float64(rand.Intn(1000))
		values[i] = next
		exp += next
	}

	got := s.testConcurrentAccess(new(Float64Aggregator), values).(float64)
	c.Assert(got, gc.Equals, exp)
}

func (s *AggregatorTestSuite) TestSetOverridesAccumulatedValue(c *gc.C) {
	ia := new(IntAggregator)
	ia.Aggregate(5)
	ia.Set(10)
	ia.Inc()
	c.Assert(ia.Int(), gc.Equals, 11)

	fa := new(Float64Aggregator)
	fa.Aggregate(2.0)
	fa.Set(1.5)
	fa.Aggregate(2.0)
	c.Assert(fa.Float64(), gc.Equals, 3.5)
}

func (s *AggregatorTestSuite) testConcurrentAccess(a bsp.Aggregator, values []interface{}) interface{} {
	startedCh := make(chan struct{})
	syncCh := make(chan struct{})
	doneCh := make(chan struct{})
	for i := 0; i < len(values); i++ {
		go func(i int) {
			startedCh <- struct{}{}
			<-syncCh
			a.Aggregate(values[i])
			doneCh <- struct{}{}
		}(i)
	}

	// Wait for all go-routines to start
	for i := 0; i < len(values); i++ {
		<-startedCh
	}

	close(syncCh)

	// Wait for all go-routines to exit
	for i := 0; i < len(values); i++ {
		<-doneCh
	}

	return a.Get()
}
