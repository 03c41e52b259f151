package letor

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

var _ SampleIterator = (*Reader)(nil)

// Reader iterates the samples of a judgement file in the LETOR text format:
//
//	<relevance> qid:<query> <index>:<value> ... #docid = <document> ...
//
// Blank lines and lines starting with '#' are ignored. Samples without a
// docid annotation are named after their query and line number.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	lineNo  int
	cur     Sample
	err     error
}

// NewReader returns a Reader for r. If r is an io.Closer, closing the
// Reader closes r.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{scanner: bufio.NewScanner(r)}
	rd.scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}
	return rd
}

func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	for r.scanner.Scan() {
		r.lineNo++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		sample, err := parseLine(line, r.lineNo)
		if err != nil {
			r.err = xerrors.Errorf("line %d: %w", r.lineNo, err)
			return false
		}
		r.cur = sample
		return true
	}
	if err := r.scanner.Err(); err != nil {
		r.err = xerrors.Errorf("read judgements: %w", err)
	}
	return false
}

func (r *Reader) Sample() Sample { return r.cur }

func (r *Reader) Error() error { return r.err }

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func parseLine(line string, lineNo int) (Sample, error) {
	var comment string
	if hash := strings.IndexByte(line, '#'); hash >= 0 {
		line, comment = line[:hash], line[hash+1:]
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Sample{}, xerrors.Errorf("expected relevance and query id: %w", ErrSyntax)
	}

	rel, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || rel < 0 {
		return Sample{}, xerrors.Errorf("relevance %q: %w", fields[0], ErrSyntax)
	}
	if !strings.HasPrefix(fields[1], "qid:") || len(fields[1]) == len("qid:") {
		return Sample{}, xerrors.Errorf("query id %q: %w", fields[1], ErrSyntax)
	}

	s := Sample{
		QueryID:   strings.TrimPrefix(fields[1], "qid:"),
		Relevance: rel,
		Features:  make(map[int]float64, len(fields)-2),
	}
	for _, f := range fields[2:] {
		idx, val, err := parseFeature(f)
		if err != nil {
			return Sample{}, err
		}
		s.Features[idx] = val
	}

	if s.DocID = docID(comment); s.DocID == "" {
		s.DocID = "q" + s.QueryID + "-" + strconv.Itoa(lineNo)
	}
	return s, nil
}

// docID extracts the document id from a trailing comment which may read
// "docid = D" or "docid=D".
func docID(comment string) string {
	fields := strings.Fields(comment)
	for i, f := range fields {
		switch {
		case f == "docid" && i+2 < len(fields) && fields[i+1] == "=":
			return fields[i+2]
		case strings.HasPrefix(f, "docid="):
			return strings.TrimPrefix(f, "docid=")
		}
	}
	return ""
}
