package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/mailblast/internal/dispatch"
	"github.com/ignite/mailblast/internal/pkg/logger"
)

// =====================================================
// Redis Progress Snapshots
// =====================================================

const (
	progressKeyPrefix = "dispatch:progress:"
	defaultTTL        = 1 * time.Hour
	writeQueueSize    = 256
	writeTimeout      = 2 * time.Second
)

// RedisStore keeps the latest event per run in Redis so progress survives a
// dropped SSE connection and can be polled from another instance. Writes go
// through a single worker so Publish never blocks the send loop and events
// land in order.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	queue  chan dispatch.Event
	done   chan struct{}
}

// NewRedisStore starts the write worker. ttl zero or negative uses the
// default of one hour.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s := &RedisStore{
		client: client,
		ttl:    ttl,
		queue:  make(chan dispatch.Event, writeQueueSize),
		done:   make(chan struct{}),
	}
	go s.worker()
	return s
}

// Publish queues the event for the write worker. A full queue drops the
// event rather than stalling the caller.
func (s *RedisStore) Publish(e dispatch.Event) {
	select {
	case s.queue <- e:
	default:
		logger.Warn("progress write queue full, dropping event", "runID", e.RunID)
	}
}

// Get returns the latest stored event for a run, or nil when none exists.
func (s *RedisStore) Get(ctx context.Context, runID string) (*dispatch.Event, error) {
	raw, err := s.client.Get(ctx, progressKeyPrefix+runID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading progress for run %s: %w", runID, err)
	}
	var e dispatch.Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decoding progress for run %s: %w", runID, err)
	}
	return &e, nil
}

// Close stops the write worker after draining queued events.
func (s *RedisStore) Close() {
	close(s.queue)
	<-s.done
}

func (s *RedisStore) worker() {
	defer close(s.done)
	for e := range s.queue {
		s.write(e)
	}
}

func (s *RedisStore) write(e dispatch.Event) {
	raw, err := json.Marshal(e)
	if err != nil {
		logger.Error("encoding progress event", "runID", e.RunID, "error", err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.client.Set(ctx, progressKeyPrefix+e.RunID, raw, s.ttl).Err(); err != nil {
		logger.Error("writing progress event", "runID", e.RunID, "error", err.Error())
	}
}
