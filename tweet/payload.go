package tweet

import (
	"sync"

	"github.com/Ahmed-Sermani/retweetrank/graph"
	"github.com/Ahmed-Sermani/retweetrank/pipeline"
)

var (
	_ pipeline.Payload = (*tweetPayload)(nil)

	// Ingestion pushes one payload per input line through the pipeline.
	// Recycling them keeps the pressure on the GC low for large dumps.
	payloadPool = sync.Pool{
		New: func() any { return new(tweetPayload) },
	}
)

type tweetPayload struct {
	LineNo int
	Raw    []byte

	Event graph.RetweetEvent
}

func (p *tweetPayload) Clone() pipeline.Payload {
	newp := payloadPool.Get().(*tweetPayload)
	newp.LineNo = p.LineNo
	newp.Raw = append(newp.Raw[:0], p.Raw...)
	newp.Event = p.Event
	return newp
}

// MarkAsProcessed resets the payload and returns it to the pool. The raw
// buffer keeps its capacity so the next line can reuse it.
func (p *tweetPayload) MarkAsProcessed() {
	p.LineNo = 0
	p.Raw = p.Raw[:0]
	p.Event = graph.RetweetEvent{}
	payloadPool.Put(p)
}
