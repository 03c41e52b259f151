package ranker

import (
	"sort"

	"golang.org/x/xerrors"
)

// ErrInvalidK is returned by TopK when k is not positive.
var ErrInvalidK = xerrors.New("k must be positive")

// Score pairs a user id with its PageRank score.
type Score struct {
	ID    string
	Score float64
}

// TopK returns the k users with the highest scores in descending score
// order. Ties are broken by user id in ascending order. If scores holds
// fewer than k entries all of them are returned. scores is not modified.
func TopK(scores map[string]float64, k int) ([]Score, error) {
	if k <= 0 {
		return nil, xerrors.Errorf("top %d: %w", k, ErrInvalidK)
	}

	list := make([]Score, 0, len(scores))
	for id, score := range scores {
		list = append(list, Score{ID: id, Score: score})
	}
	SortScores(list)

	if len(list) > k {
		list = list[:k]
	}
	return list, nil
}

// SortScores orders list by descending score, breaking ties by id.
func SortScores(list []Score) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].ID < list[j].ID
	})
}
