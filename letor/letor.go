/*
   Loads learning-to-rank judgement files and scores them with a point-wise
   model so they can be evaluated with NDCG.
*/
package letor

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/Ahmed-Sermani/retweetrank/letor Scorer

// ErrSyntax is returned when a judgement line cannot be parsed.
var ErrSyntax = xerrors.New("syntax error")

// Sample is a single judged (query, document) pair.
type Sample struct {
	QueryID   string
	DocID     string
	Relevance float64

	// Features maps a 1-based feature index to its value.
	Features map[int]float64
}

// SampleIterator is implemented by objects that can iterate samples.
type SampleIterator interface {
	// Next advances the iterator. If no more items are available or an
	// error occurs, calls to Next() return false.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with an iterator.
	Close() error

	// Sample returns the currently fetched sample.
	Sample() Sample
}

// Scorer is implemented by point-wise ranking models. Implementations must
// be safe for concurrent use.
type Scorer interface {
	Score(features map[int]float64) (float64, error)
}

// LinearScorer scores a document as the weighted sum of its features plus
// a bias. Features without a weight are ignored.
type LinearScorer struct {
	Weights map[int]float64
	Bias    float64
}

// Score implements Scorer.
func (s *LinearScorer) Score(features map[int]float64) (float64, error) {
	idx := make([]int, 0, len(features))
	for i := range features {
		if _, ok := s.Weights[i]; ok {
			idx = append(idx, i)
		}
	}
	// keep the summation order fixed.
	sort.Ints(idx)

	score := s.Bias
	for _, i := range idx {
		score += s.Weights[i] * features[i]
	}
	return score, nil
}

// ParseWeights parses a comma separated list of index:weight pairs such as
// "1:0.5,3:-1.2" into a weight map for a LinearScorer.
func ParseWeights(s string) (map[int]float64, error) {
	weights := make(map[int]float64)
	for _, pair := range strings.Split(s, ",") {
		if pair = strings.TrimSpace(pair); pair == "" {
			continue
		}
		idx, val, err := parseFeature(pair)
		if err != nil {
			return nil, err
		}
		weights[idx] = val
	}
	return weights, nil
}

func parseFeature(s string) (int, float64, error) {
	sep := strings.IndexByte(s, ':')
	if sep <= 0 {
		return 0, 0, xerrors.Errorf("feature %q: %w", s, ErrSyntax)
	}
	idx, err := strconv.Atoi(s[:sep])
	if err != nil || idx <= 0 {
		return 0, 0, xerrors.Errorf("feature index %q: %w", s[:sep], ErrSyntax)
	}
	val, err := strconv.ParseFloat(s[sep+1:], 64)
	if err != nil {
		return 0, 0, xerrors.Errorf("feature value %q: %w", s[sep+1:], ErrSyntax)
	}
	return idx, val, nil
}
