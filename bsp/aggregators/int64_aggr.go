package aggregators

import (
	"sync/atomic"

	"github.com/Ahmed-Sermani/retweetrank/bsp"
)

var _ bsp.Aggregator = (*IntAggregator)(nil)

// IntAggregator implements a concurrent-safe accumulator for int values.
// It uses mutex free implementation.
type IntAggregator struct {
	curSum int64
}

func (a *IntAggregator) Type() string {
	return "IntAggregator"
}

func (a *IntAggregator) Get() any {
	return int(atomic.LoadInt64(&a.curSum))
}

// Int is a typed shortcut for Get.
func (a *IntAggregator) Int() int {
	return int(atomic.LoadInt64(&a.curSum))
}

func (a *IntAggregator) Set(v any) {
	atomic.StoreInt64(&a.curSum, int64(v.(int)))
}

func (a *IntAggregator) Aggregate(v any) {
	_ = atomic.AddInt64(&a.curSum, int64(v.(int)))
}

// Inc adds one to the aggregator.
func (a *IntAggregator) Inc() {
	_ = atomic.AddInt64(&a.curSum, 1)
}
