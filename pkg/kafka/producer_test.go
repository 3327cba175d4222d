package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	batches [][]kafka.Message
	err     error
	closed  bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, msgs)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish_EncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "score-events")

	err := p.Publish(context.Background(), Event{Key: "k", Value: map[string]int{"documents": 4}})
	require.NoError(t, err)
	require.Len(t, w.batches, 1)
	assert.Equal(t, "k", string(w.batches[0][0].Key))
	assert.JSONEq(t, `{"documents":4}`, string(w.batches[0][0].Value))
}

func TestPublishBatch(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "t")

	require.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.Empty(t, w.batches)

	require.NoError(t, p.PublishBatch(context.Background(), []Event{{Key: "a", Value: 1}, {Key: "b", Value: 2}}))
	require.Len(t, w.batches, 1)
	assert.Len(t, w.batches[0], 2)
}

func TestPublish_EncodeError(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "t")

	err := p.Publish(context.Background(), Event{Key: "bad", Value: make(chan int)})
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "bad", encErr.Key)
	assert.Empty(t, w.batches)
}

func TestPublish_WriterError(t *testing.T) {
	broker := errors.New("broker down")
	p := newProducer(&fakeWriter{err: broker}, "t")
	err := p.Publish(context.Background(), Event{Key: "k", Value: 1})
	assert.ErrorIs(t, err, broker)
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newProducer(w, "t").Close())
	assert.True(t, w.closed)
}
