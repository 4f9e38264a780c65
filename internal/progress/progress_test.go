package progress

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mailblast/internal/dispatch"
)

func TestHubDeliversInOrder(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(10)
	defer cancel()

	for i := 1; i <= 3; i++ {
		h.Publish(dispatch.Event{RunID: "r", Type: dispatch.EventItemCompleted, Current: i})
	}

	for i := 1; i <= 3; i++ {
		e := <-ch
		assert.Equal(t, i, e.Current)
	}
}

func TestHubNonBlockingWhenSubscriberFull(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Second publish must not block even though nobody is reading.
		h.Publish(dispatch.Event{Current: 1})
		h.Publish(dispatch.Event{Current: 2})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	e := <-ch
	assert.Equal(t, 1, e.Current)
}

func TestHubCancelUnsubscribes(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe(1)
	assert.Equal(t, 1, h.SubscriberCount())
	cancel()
	assert.Equal(t, 0, h.SubscriberCount())
	// Double cancel is safe.
	cancel()
	assert.Equal(t, 0, h.SubscriberCount())
}

func TestHubMultipleSubscribers(t *testing.T) {
	h := NewHub()
	ch1, cancel1 := h.Subscribe(5)
	ch2, cancel2 := h.Subscribe(5)
	defer cancel1()
	defer cancel2()

	h.Publish(dispatch.Event{RunID: "r", Current: 7})
	assert.Equal(t, 7, (<-ch1).Current)
	assert.Equal(t, 7, (<-ch2).Current)
}

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	s := NewRedisStore(client, time.Minute)
	t.Cleanup(s.Close)
	return s
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Publish(dispatch.Event{
		RunID:      "run-1",
		Type:       dispatch.EventItemCompleted,
		Total:      10,
		Current:    4,
		Successful: 3,
		Failed:     1,
	})

	// The write goes through an async worker.
	var got *dispatch.Event
	require.Eventually(t, func() bool {
		e, err := s.Get(ctx, "run-1")
		if err != nil || e == nil {
			return false
		}
		got = e
		return true
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, dispatch.EventItemCompleted, got.Type)
	assert.Equal(t, 4, got.Current)
	assert.Equal(t, 3, got.Successful)
}

func TestRedisStoreLatestWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Publish(dispatch.Event{RunID: "run-2", Type: dispatch.EventStarted, Total: 2})
	s.Publish(dispatch.Event{RunID: "run-2", Type: dispatch.EventFinished, Total: 2, Successful: 2})

	require.Eventually(t, func() bool {
		e, err := s.Get(ctx, "run-2")
		return err == nil && e != nil && e.Type == dispatch.EventFinished
	}, time.Second, 10*time.Millisecond)
}

func TestRedisStoreGetMissing(t *testing.T) {
	s := newTestStore(t)
	e, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestMultiFansOut(t *testing.T) {
	h1 := NewHub()
	h2 := NewHub()
	ch1, cancel1 := h1.Subscribe(1)
	ch2, cancel2 := h2.Subscribe(1)
	defer cancel1()
	defer cancel2()

	m := Multi{h1, nil, h2}
	m.Publish(dispatch.Event{Current: 9})

	assert.Equal(t, 9, (<-ch1).Current)
	assert.Equal(t, 9, (<-ch2).Current)
}
