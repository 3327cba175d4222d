package relevance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/errors"
)

var sampleParagraphs = []string{
	"I have a pen, I have a book",
	"My name is Pencil",
	"I have books, book",
	"I have booked.",
}

func sampleCorpus() []Document {
	docs := make([]Document, len(sampleParagraphs))
	for i, p := range sampleParagraphs {
		docs[i] = tokenizer.Tokenize(p)
	}
	return docs
}

func TestTermFrequency_DoubleNormalization(t *testing.T) {
	tf := TermFrequency(Document{"i", "have", "a", "pen", "i", "have", "a", "book"})

	assert.Equal(t, 1.0, tf["i"])
	assert.Equal(t, 1.0, tf["have"])
	assert.Equal(t, 1.0, tf["a"])
	assert.Equal(t, 0.75, tf["pen"])
	assert.Equal(t, 0.75, tf["book"])
	assert.Len(t, tf, 5)
	assert.Zero(t, tf.Get("pencil"))
}

func TestTermFrequency_ValuesInHalfOpenRange(t *testing.T) {
	docs := []Document{
		{"a"},
		{"a", "a", "a", "b"},
		{"x", "y", "z", "x", "x", "x", "x", "y"},
	}
	for _, doc := range docs {
		tf := TermFrequency(doc)
		maxCount, maxTerm := 0, ""
		counts := map[string]int{}
		for _, term := range doc {
			counts[term]++
			if counts[term] > maxCount {
				maxCount, maxTerm = counts[term], term
			}
		}
		for term, v := range tf {
			assert.Greater(t, v, 0.5, term)
			assert.LessOrEqual(t, v, 1.0, term)
		}
		assert.Equal(t, 1.0, tf[maxTerm])
	}
}

func TestTermFrequency_EmptyDocument(t *testing.T) {
	tf := TermFrequency(Document{})
	require.NotNil(t, tf)
	assert.Empty(t, tf)
	assert.Empty(t, TermFrequency(nil).Terms())
}

func TestTermFrequencyMap_TermsSorted(t *testing.T) {
	tf := TermFrequency(Document{"pear", "apple", "fig", "apple"})
	assert.Equal(t, []string{"apple", "fig", "pear"}, tf.Terms())
}

func TestIDF_Formula(t *testing.T) {
	maps := []TermFrequencyMap{
		{"book": 1.0},
		{"book": 0.75, "pen": 1.0},
		{"pencil": 1.0},
	}
	assert.InDelta(t, math.Log(4.0/3.0), IDF("book", maps), 1e-12)
	assert.InDelta(t, math.Log(2.0), IDF("pen", maps), 1e-12)
	assert.InDelta(t, math.Log(4.0), IDF("missing", maps), 1e-12)
	assert.Equal(t, 0.0, IDF("anything", nil))
}

func TestIDF_IgnoresNonPositiveStoredValues(t *testing.T) {
	maps := []TermFrequencyMap{{"a": 0}, {"a": 1}}
	assert.InDelta(t, math.Log(3.0/2.0), IDF("a", maps), 1e-12)
}

func TestIDF_MonotonicAndFinite(t *testing.T) {
	for n := 0; n <= 6; n++ {
		prev := math.Inf(1)
		for count := 0; count <= n; count++ {
			maps := make([]TermFrequencyMap, n)
			for i := range maps {
				maps[i] = TermFrequencyMap{}
				if i < count {
					maps[i]["t"] = 1
				}
			}
			got := IDF("t", maps)
			assert.False(t, math.IsInf(got, 0) || math.IsNaN(got), "n=%d count=%d", n, count)
			assert.LessOrEqual(t, got, prev, "n=%d count=%d", n, count)
			prev = got
		}
		if n > 0 {
			assert.Equal(t, 0.0, prev, "term in every candidate")
		}
	}
}

func TestVocabulary_OrderedAndDeduplicated(t *testing.T) {
	query := TermFrequency(Document{"b", "a", "b", "c"})
	vocab := Vocabulary(query, []TermFrequencyMap{{"a": 1}})

	require.Len(t, vocab, 3)
	assert.Equal(t, "a", vocab[0].Term)
	assert.Equal(t, "b", vocab[1].Term)
	assert.Equal(t, "c", vocab[2].Term)
	assert.Equal(t, 1.0, vocab[1].QueryTF)
	assert.InDelta(t, 0.0, vocab[0].IDF, 1e-12)
	assert.InDelta(t, math.Log(2), vocab[2].IDF, 1e-12)
}

func TestSplit_DoesNotMutateCaller(t *testing.T) {
	docs := []Document{{"a"}, {"b"}, {"c"}}
	query, candidates, err := Split(1, docs)
	require.NoError(t, err)

	assert.Equal(t, Document{"b"}, query)
	assert.Equal(t, []Document{{"a"}, {"c"}}, candidates)
	assert.Equal(t, []Document{{"a"}, {"b"}, {"c"}}, docs)
}

func TestScore_SampleScenario(t *testing.T) {
	scores, err := Score(0, sampleCorpus())
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Equal(t, 1, scores[0].Index)
	assert.Equal(t, 2, scores[1].Index)
	assert.Equal(t, 3, scores[2].Index)

	ln := math.Log(4.0 / 3.0)
	assert.Equal(t, 0.0, scores[0].Score)
	assert.InDelta(t, 2.25*ln, scores[1].Score, 1e-12)
	assert.InDelta(t, 2.75*ln, scores[2].Score, 1e-12)
	assert.Greater(t, scores[1].Score, scores[0].Score)
}

func TestScore_IndexConsistency(t *testing.T) {
	docs := []Document{{"a"}, {"b"}, {"a", "b"}, {"c"}}
	for q := range docs {
		t.Run(fmt.Sprintf("query_%d", q), func(t *testing.T) {
			scores, err := Score(q, docs)
			require.NoError(t, err)
			require.Len(t, scores, len(docs)-1)

			want := make([]int, 0, len(docs)-1)
			for i := range docs {
				if i != q {
					want = append(want, i)
				}
			}
			got := make([]int, len(scores))
			for i, s := range scores {
				got[i] = s.Index
				assert.NotEqual(t, q, s.Index)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestScore_InvalidQueryIndex(t *testing.T) {
	docs := []Document{{"a"}, {"b"}}
	for _, idx := range []int{-1, 2, 100} {
		scores, err := Score(idx, docs)
		assert.Nil(t, scores)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument), "index %d", idx)
	}
}

func TestScore_EmptyInputs(t *testing.T) {
	scores, err := Score(0, nil)
	require.NoError(t, err)
	assert.Empty(t, scores)

	scores, err = Score(5, []Document{})
	require.NoError(t, err)
	assert.Empty(t, scores)

	scores, err = Score(0, []Document{{"only"}})
	require.NoError(t, err)
	require.NotNil(t, scores)
	assert.Empty(t, scores)
}

func TestScore_EmptyDocuments(t *testing.T) {
	scores, err := Score(0, []Document{{}, {"a"}, {}})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, 0.0, scores[0].Score)
	assert.Equal(t, 0.0, scores[1].Score)

	scores, err = Score(1, []Document{{}, {"a"}, {"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, []int{scores[0].Index, scores[1].Index})
	assert.Equal(t, 0.0, scores[0].Score)
}

func TestScore_CandidateOnlyTermsIgnored(t *testing.T) {
	base, err := Score(0, []Document{{"a"}, {"a"}, {"b"}})
	require.NoError(t, err)
	extra, err := Score(0, []Document{{"a"}, {"a", "zzz"}, {"b"}})
	require.NoError(t, err)

	// "zzz" changes the candidate's own tf for "a" only through maxCount,
	// which stays 1, so the score is unchanged.
	assert.Equal(t, base, extra)
}

func TestScore_Idempotent(t *testing.T) {
	docs := sampleCorpus()
	first, err := Score(2, docs)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Score(2, docs)
		require.NoError(t, err)
		for k := range first {
			assert.Equal(t, math.Float64bits(first[k].Score), math.Float64bits(again[k].Score))
			assert.Equal(t, first[k].Index, again[k].Index)
		}
	}
}

func TestScoreParallel_MatchesSequential(t *testing.T) {
	docs := make([]Document, 0, 60)
	words := []string{"alpha", "beta", "gamma", "delta", "eps", "zeta", "eta"}
	for i := 0; i < 60; i++ {
		doc := Document{}
		for j := 0; j <= i%9; j++ {
			doc = append(doc, words[(i*j+j)%len(words)])
		}
		docs = append(docs, doc)
	}

	for _, q := range []int{0, 17, 59} {
		want, err := Score(q, docs)
		require.NoError(t, err)
		for _, workers := range []int{0, 1, 4, 64} {
			got, err := ScoreParallel(context.Background(), q, docs, workers)
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for k := range want {
				assert.Equal(t, want[k].Index, got[k].Index)
				assert.Equal(t, math.Float64bits(want[k].Score), math.Float64bits(got[k].Score))
			}
		}
	}
}

func TestScoreParallel_Errors(t *testing.T) {
	_, err := ScoreParallel(context.Background(), 3, []Document{{"a"}}, 2)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))

	scores, err := ScoreParallel(context.Background(), 0, nil, 2)
	require.NoError(t, err)
	assert.Empty(t, scores)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ScoreParallel(ctx, 0, sampleCorpus(), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkScore(b *testing.B) {
	docs := make([]Document, 200)
	for i := range docs {
		docs[i] = tokenizer.Tokenize(sampleParagraphs[i%len(sampleParagraphs)])
	}
	b.Run("sequential", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = Score(0, docs)
		}
	})
	b.Run("parallel", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = ScoreParallel(context.Background(), 0, docs, 0)
		}
	})
}
