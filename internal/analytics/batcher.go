// Package analytics buffers search events and flushes them to a redis
// stream in batches. Publishing is fire-and-forget: delivery failures are
// logged and never reach the request path.
package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type event struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload"`
}

// Batcher accumulates events up to flushSize or flushEvery, whichever
// trips first, then appends the batch to a stream via XADD. The buffer is
// bounded: when full and a flush is already in flight, new events are
// dropped (and counted) rather than growing without limit.
type Batcher struct {
	rdb        *redis.Client
	stream     string
	flushSize  int
	flushEvery time.Duration
	log        *slog.Logger

	mu      sync.Mutex
	buf     []event
	dropped int64

	done chan struct{}
	wg   sync.WaitGroup
}

func NewBatcher(rdb *redis.Client, stream string, flushSize int, flushEvery time.Duration, log *slog.Logger) *Batcher {
	if log == nil {
		log = slog.Default()
	}
	if flushSize < 1 {
		flushSize = 50
	}
	if flushEvery <= 0 {
		flushEvery = 10 * time.Second
	}

	b := &Batcher{
		rdb:        rdb,
		stream:     stream,
		flushSize:  flushSize,
		flushEvery: flushEvery,
		log:        log,
		buf:        make([]event, 0, flushSize),
		done:       make(chan struct{}),
	}

	b.wg.Add(1)
	go b.loop()
	return b
}

// Publish enqueues one event. Never blocks the caller on I/O.
func (b *Batcher) Publish(eventName string, payload map[string]any) {
	ev := event{
		ID:      uuid.NewString(),
		Name:    eventName,
		At:      time.Now().UTC(),
		Payload: payload,
	}

	b.mu.Lock()
	if len(b.buf) >= b.flushSize*2 {
		b.dropped++
		b.mu.Unlock()
		return
	}
	b.buf = append(b.buf, ev)
	full := len(b.buf) >= b.flushSize
	b.mu.Unlock()

	if full {
		go b.flush()
	}
}

func (b *Batcher) loop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.flush()
		case <-b.done:
			b.flush()
			return
		}
	}
}

func (b *Batcher) flush() {
	b.mu.Lock()
	if len(b.buf) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.buf
	b.buf = make([]event, 0, b.flushSize)
	dropped := b.dropped
	b.dropped = 0
	b.mu.Unlock()

	if dropped > 0 {
		b.log.Warn("analytics events dropped under backpressure", "count", dropped)
	}
	if b.rdb == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	pipe := b.rdb.Pipeline()
	for _, ev := range batch {
		body, err := json.Marshal(ev.Payload)
		if err != nil {
			continue
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: b.stream,
			Values: map[string]any{
				"id":      ev.ID,
				"name":    ev.Name,
				"at":      ev.At.Format(time.RFC3339Nano),
				"payload": string(body),
			},
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		b.log.Warn("analytics flush failed", "stream", b.stream, "events", len(batch), "error", err)
	}
}

// Close flushes any buffered events and stops the timer loop.
func (b *Batcher) Close() {
	close(b.done)
	b.wg.Wait()
}
