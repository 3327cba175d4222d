package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/relevance"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/scoring/executor"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/redis"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, pkgredis.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

const variant = "stemmer=porter2;default_limit=0"

var req = executor.Request{Paragraphs: []string{"a b", "b c"}, QueryIndex: 0}

func result() *executor.Result {
	return &executor.Result{
		QueryIndex: 0,
		Documents:  2,
		Vocabulary: []string{"a", "b"},
		Results:    []relevance.ScoreEntry{{Index: 1, Score: 0.25}},
		Mode:       executor.ModeSequential,
	}
}

func TestGetOrCompute_MissThenHit(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, variant, nil)

	calls := 0
	compute := func() (*executor.Result, error) {
		calls++
		return result(), nil
	}

	got, hit, err := c.GetOrCompute(context.Background(), req, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, result(), got)

	got, hit, err = c.GetOrCompute(context.Background(), req, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, result(), got)
	assert.Equal(t, 1, calls)
	assert.Equal(t, time.Minute, store.ttls[BuildKey(variant, req)])

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, variant, nil)
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute(context.Background(), req, func() (*executor.Result, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.data)
}

func TestGetOrCompute_StoreFailureIsAMiss(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection reset")
	c := New(store, time.Minute, variant, nil)

	got, hit, err := c.GetOrCompute(context.Background(), req, func() (*executor.Result, error) { return result(), nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, got.Documents)
}

func TestGetOrCompute_ConcurrentMissesShareComputation(t *testing.T) {
	c := New(newMemStore(), time.Minute, variant, nil)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.GetOrCompute(context.Background(), req, func() (*executor.Result, error) {
				calls.Add(1)
				<-release
				return result(), nil
			})
			assert.NoError(t, err)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Less(t, calls.Load(), int32(8), "singleflight should collapse concurrent misses")
}

func TestBuildKey_SensitiveToEveryField(t *testing.T) {
	base := BuildKey(variant, req)
	variants := []executor.Request{
		{Paragraphs: []string{"a b", "b d"}, QueryIndex: 0},
		{Paragraphs: req.Paragraphs, QueryIndex: 1},
		{Paragraphs: req.Paragraphs, Limit: 1},
		{Paragraphs: req.Paragraphs, Ranked: true},
		{Paragraphs: req.Paragraphs, IncludeTokens: true},
		{Paragraphs: []string{"a", "b b c"}},
	}
	for _, v := range variants {
		assert.NotEqual(t, base, BuildKey(variant, v), "%+v", v)
	}
	assert.Equal(t, base, BuildKey(variant, executor.Request{Paragraphs: []string{"a b", "b c"}}))
	assert.NotEqual(t, base, BuildKey("stemmer=none;default_limit=0", req))
	assert.Regexp(t, `^score:[0-9a-f]{32}$`, base)
}

func TestGetOrCompute_StemmersDoNotShareEntries(t *testing.T) {
	store := newMemStore()
	stemmed := newExecutor(t, "porter2")
	plain := newExecutor(t, "none")
	stemmedCache := New(store, time.Minute, stemmed.Variant(), nil)
	plainCache := New(store, time.Minute, plain.Variant(), nil)

	r := executor.Request{Paragraphs: []string{"books x", "book", "y"}, QueryIndex: 0}
	ctx := context.Background()

	first, hit, err := stemmedCache.GetOrCompute(ctx, r, func() (*executor.Result, error) {
		return stemmed.Execute(ctx, r)
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"book", "x"}, first.Vocabulary)

	second, hit, err := plainCache.GetOrCompute(ctx, r, func() (*executor.Result, error) {
		return plain.Execute(ctx, r)
	})
	require.NoError(t, err)
	assert.False(t, hit, "a cache with another stemmer must not serve the stemmed result")
	assert.Equal(t, []string{"books", "x"}, second.Vocabulary)
	assert.Len(t, store.data, 2)
}

func newExecutor(t *testing.T, stemmer string) *executor.Executor {
	t.Helper()
	cfg := config.Default().Scoring
	cfg.Stemmer = stemmer
	e, err := executor.New(cfg, nil, false)
	require.NoError(t, err)
	return e
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, variant, nil)
	c.Set(context.Background(), req, result())
	store.data["other:key"] = []byte("x")

	n, err := c.Invalidate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, store.data, "other:key")
}
