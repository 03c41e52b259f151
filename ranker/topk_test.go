package ranker_test

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/Ahmed-Sermani/retweetrank/ranker"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(TopKTestSuite))

type TopKTestSuite struct{}

func (s *TopKTestSuite) TestOrderAndTies(c *gc.C) {
	scores := map[string]float64{
		"parisa": 0.1,
		"bob":    0.4,
		"diane":  0.4,
		"alice":  0.07,
		"carl":   0.03,
	}

	got, err := ranker.TopK(scores, 3)
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.DeepEquals, []ranker.Score{
		{ID: "bob", Score: 0.4},
		{ID: "diane", Score: 0.4},
		{ID: "parisa", Score: 0.1},
	})
}

func (s *TopKTestSuite) TestFewerThanK(c *gc.C) {
	got, err := ranker.TopK(map[string]float64{"a": 0.5, "b": 0.5}, 10)
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.DeepEquals, []ranker.Score{{ID: "a", Score: 0.5}, {ID: "b", Score: 0.5}})

	got, err = ranker.TopK(nil, 1)
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.HasLen, 0)
}

func (s *TopKTestSuite) TestInvalidK(c *gc.C) {
	for _, k := range []int{0, -1} {
		_, err := ranker.TopK(map[string]float64{"a": 1}, k)
		c.Assert(xerrors.Is(err, ranker.ErrInvalidK), gc.Equals, true, gc.Commentf("k=%d", k))
	}
}

func (s *TopKTestSuite) TestConsistentWithFullSort(c *gc.C) {
	rng := rand.New(rand.NewSource(1))
	scores := make(map[string]float64)
	for i := 0; i < 500; i++ {
		// Coarse values force plenty of ties.
		scores[fmt.Sprintf("user-%03d", i)] = float64(rng.Intn(20)) / 20
	}
	orig := make(map[string]float64, len(scores))
	for k, v := range scores {
		orig[k] = v
	}

	full := make([]ranker.Score, 0, len(scores))
	for id, score := range scores {
		full = append(full, ranker.Score{ID: id, Score: score})
	}
	sort.SliceStable(full, func(i, j int) bool { return full[i].ID < full[j].ID })
	sort.SliceStable(full, func(i, j int) bool { return full[i].Score > full[j].Score })

	first, err := ranker.TopK(scores, 25)
	c.Assert(err, gc.IsNil)
	second, err := ranker.TopK(scores, 25)
	c.Assert(err, gc.IsNil)

	c.Assert(first, gc.DeepEquals, second)
	c.Assert(first, gc.DeepEquals, full[:25])
	c.Assert(scores, gc.DeepEquals, orig)
}
