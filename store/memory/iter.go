package memory

import "github.com/Ahmed-Sermani/retweetrank/ranker"

type scoreIterator struct {
	scores []ranker.Score
	curIdx int
}

func (i *scoreIterator) Next() bool {
	if i.curIdx >= len(i.scores) {
		return false
	}
	i.curIdx++
	return true
}

func (i *scoreIterator) Score() ranker.Score {
	return i.scores[i.curIdx-1]
}

func (i *scoreIterator) Error() error {
	return nil
}

func (i *scoreIterator) Close() error {
	return nil
}
