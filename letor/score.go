package letor

import (
	"context"
	"sort"

	"github.com/Ahmed-Sermani/retweetrank/ndcg"
	"github.com/Ahmed-Sermani/retweetrank/pipeline"
	"github.com/Ahmed-Sermani/retweetrank/pipeline/runners"
	"golang.org/x/xerrors"
)

// ScoreGroups drains it, scores every sample with scorer using up to
// workers concurrent calls and groups the results by query. Groups appear
// in the order their query was first seen and documents keep their input
// order, so the output does not depend on the scheduling of the scorer.
func ScoreGroups(ctx context.Context, it SampleIterator, scorer Scorer, workers int) ([]ndcg.QueryGroup, error) {
	if workers <= 0 {
		workers = 1
	}

	p := pipeline.New(runners.DynamicWorkerPool(newSampleScorer(scorer), workers))
	sink := new(scoredSink)
	err := p.Process(ctx, &sampleSource{it: it}, sink)
	if err == nil {
		err = ctx.Err()
	}
	if cErr := it.Close(); err == nil && cErr != nil {
		err = cErr
	}
	if err != nil {
		return nil, xerrors.Errorf("score samples: %w", err)
	}

	sort.Slice(sink.scored, func(i, j int) bool { return sink.scored[i].Index < sink.scored[j].Index })

	var (
		groups  []ndcg.QueryGroup
		groupAt = make(map[string]int)
	)
	for _, sc := range sink.scored {
		pos, ok := groupAt[sc.Sample.QueryID]
		if !ok {
			pos = len(groups)
			groupAt[sc.Sample.QueryID] = pos
			groups = append(groups, ndcg.QueryGroup{QueryID: sc.Sample.QueryID})
		}
		groups[pos].Docs = append(groups[pos].Docs, ndcg.Judgement{
			DocID:     sc.Sample.DocID,
			Score:     sc.Score,
			Relevance: sc.Sample.Relevance,
		})
	}
	return groups, nil
}

type scoredSample struct {
	Index  int
	Sample Sample
	Score  float64
}

func (p *scoredSample) Clone() pipeline.Payload {
	newp := *p
	return &newp
}

func (p *scoredSample) MarkAsProcessed() {}

type sampleSource struct {
	it   SampleIterator
	next int
}

func (s *sampleSource) Next(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	return s.it.Next()
}

func (s *sampleSource) Payload() pipeline.Payload {
	p := &scoredSample{Index: s.next, Sample: s.it.Sample()}
	s.next++
	return p
}

func (s *sampleSource) Error() error { return s.it.Error() }

type scoredSink struct {
	scored []*scoredSample
}

func (s *scoredSink) Consume(_ context.Context, p pipeline.Payload) error {
	s.scored = append(s.scored, p.(*scoredSample))
	return nil
}

type sampleScorer struct {
	scorer Scorer
}

func newSampleScorer(scorer Scorer) *sampleScorer {
	return &sampleScorer{scorer: scorer}
}

func (s *sampleScorer) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*scoredSample)
	score, err := s.scorer.Score(payload.Sample.Features)
	if err != nil {
		return nil, xerrors.Errorf("query %q, document %q: %w", payload.Sample.QueryID, payload.Sample.DocID, err)
	}
	payload.Score = score
	return payload, nil
}
