package relevance

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ScoreParallel computes the same entries as Score, spreading candidate
// term frequencies, IDF weights and per-candidate sums over at most
// workers goroutines. Output is bit-identical to Score.
func ScoreParallel(ctx context.Context, queryIndex int, documents []Document, workers int) ([]ScoreEntry, error) {
	if len(documents) == 0 {
		return []ScoreEntry{}, nil
	}
	query, candidates, err := Split(queryIndex, documents)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	candidateTFs := make([]TermFrequencyMap, len(candidates))
	if err := forEach(ctx, len(candidates), workers, func(k int) {
		candidateTFs[k] = TermFrequency(candidates[k])
	}); err != nil {
		return nil, err
	}

	queryTF := TermFrequency(query)
	terms := queryTF.Terms()
	vocab := make([]WeightedTerm, len(terms))
	if err := forEach(ctx, len(terms), workers, func(i int) {
		vocab[i] = WeightedTerm{
			Term:    terms[i],
			QueryTF: queryTF[terms[i]],
			IDF:     IDF(terms[i], candidateTFs),
		}
	}); err != nil {
		return nil, err
	}

	scores := make([]ScoreEntry, len(candidates))
	if err := forEach(ctx, len(candidates), workers, func(k int) {
		scores[k] = ScoreEntry{
			Index: originalIndex(k, queryIndex),
			Score: weightedSum(vocab, candidateTFs[k]),
		}
	}); err != nil {
		return nil, err
	}
	return scores, nil
}

// forEach runs fn(0..n-1) with bounded concurrency. Each index writes
// only its own slot, so no locking is needed.
func forEach(ctx context.Context, n, workers int, fn func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
