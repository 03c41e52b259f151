package tweet

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/Ahmed-Sermani/retweetrank/bsp/aggregators"
	"github.com/Ahmed-Sermani/retweetrank/pipeline"
)

// maxLineSize bounds the size of a single tweet object. Longer lines are
// skipped and counted as malformed.
const maxLineSize = 1 << 20

type lineSource struct {
	r         *bufio.Reader
	line      []byte
	lineNo    int
	oversized *aggregators.IntAggregator
	err       error
}

func newLineSource(r io.Reader, oversized *aggregators.IntAggregator) *lineSource {
	return &lineSource{
		r:         bufio.NewReaderSize(r, maxLineSize),
		oversized: oversized,
	}
}

func (ls *lineSource) Error() error { return ls.err }

func (ls *lineSource) Next(ctx context.Context) bool {
	for ctx.Err() == nil {
		line, err := ls.r.ReadSlice('\n')
		switch {
		case err == bufio.ErrBufferFull:
			ls.lineNo++
			ls.oversized.Inc()
			if err = ls.discardLine(); err != nil {
				ls.err = err
				return false
			}
			continue
		case err == io.EOF:
			// last line without a trailing newline.
			if len(line) == 0 {
				return false
			}
		case err != nil:
			ls.err = err
			return false
		}

		ls.lineNo++
		ls.line = bytes.TrimRight(line, "\r\n")
		return true
	}
	return false
}

// discardLine drops the remainder of the current line.
func (ls *lineSource) discardLine() error {
	for {
		_, err := ls.r.ReadSlice('\n')
		switch err {
		case bufio.ErrBufferFull:
			continue
		case nil, io.EOF:
			return nil
		default:
			return err
		}
	}
}

func (ls *lineSource) Payload() pipeline.Payload {
	payload := payloadPool.Get().(*tweetPayload)
	payload.LineNo = ls.lineNo
	// the reader reuses its buffer on the next call to Next.
	payload.Raw = append(payload.Raw[:0], ls.line...)
	return payload
}

type countingSink struct {
	count int
}

func (s *countingSink) Consume(_ context.Context, p pipeline.Payload) error {
	s.count++
	return nil
}

func (s *countingSink) getCount() int {
	return s.count
}
