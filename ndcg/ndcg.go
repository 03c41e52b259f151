/*
   Normalized discounted cumulative gain for graded relevance judgements.
*/
package ndcg

import (
	"math"
	"sort"

	"golang.org/x/xerrors"
)

// ErrInvalidArgument is returned for negative cut-offs, invalid relevance grades
// or NaN scores.
var ErrInvalidArgument = xerrors.New("invalid argument")

// Judgement pairs the score a model predicted for a document with the graded
// relevance assigned to it by an assessor.
type Judgement struct {
	DocID     string
	Score     float64
	Relevance float64
}

// QueryGroup holds the judged documents returned for a single query.
type QueryGroup struct {
	QueryID string
	Docs    []Judgement
}

// Ranked returns the documents ordered by predicted score, highest first.
// Documents with equal scores keep their input order.
func (g QueryGroup) Ranked() []Judgement {
	docs := append([]Judgement(nil), g.Docs...)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	return docs
}

// Ideal returns the documents ordered by relevance, highest first.
func (g QueryGroup) Ideal() []Judgement {
	docs := append([]Judgement(nil), g.Docs...)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Relevance > docs[j].Relevance })
	return docs
}

// DCG computes the discounted cumulative gain of a list of relevance grades
// truncated at the first k positions:
//
//	DCG = Σ (2^rel_i - 1) / log2(i + 1), i = 1..k
//
// A k of zero, or one larger than the list, covers the whole list.
func DCG(rels []float64, k int) (float64, error) {
	if k < 0 {
		return 0, xerrors.Errorf("cut-off %d: %w", k, ErrInvalidArgument)
	}
	if k == 0 || k > len(rels) {
		k = len(rels)
	}

	var dcg float64
	for i, rel := range rels[:k] {
		if rel < 0 || math.IsNaN(rel) {
			return 0, xerrors.Errorf("relevance %v at position %d: %w", rel, i+1, ErrInvalidArgument)
		}
		dcg += (math.Pow(2, rel) - 1) / math.Log2(float64(i+2))
	}
	return dcg, nil
}

// NDCG returns the DCG of the predicted ranking of g divided by the DCG of
// its ideal ranking, both truncated at k. The result lies in [0, 1]; a group
// without any relevant document scores 0. Negative or NaN grades and NaN
// scores are rejected with ErrInvalidArgument.
func NDCG(g QueryGroup, k int) (float64, error) {
	for _, d := range g.Docs {
		if d.Relevance < 0 || math.IsNaN(d.Relevance) {
			return 0, xerrors.Errorf("query %q, document %q: relevance %v: %w", g.QueryID, d.DocID, d.Relevance, ErrInvalidArgument)
		}
		// NaN scores have no place in a strict weak ordering.
		if math.IsNaN(d.Score) {
			return 0, xerrors.Errorf("query %q, document %q: score %v: %w", g.QueryID, d.DocID, d.Score, ErrInvalidArgument)
		}
	}

	dcg, err := DCG(relevances(g.Ranked()), k)
	if err != nil {
		return 0, err
	}
	idcg, err := DCG(relevances(g.Ideal()), k)
	if err != nil {
		return 0, err
	}
	if idcg == 0 {
		return 0, nil
	}
	return dcg / idcg, nil
}

func relevances(docs []Judgement) []float64 {
	rels := make([]float64, len(docs))
	for i, d := range docs {
		rels[i] = d.Relevance
	}
	return rels
}
