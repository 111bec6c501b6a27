package cache

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Invalidator is the optional pub/sub alternative to TTL-only expiry.
// When the posting service publishes a data-change signal on the configured
// channel, all cached search pages are dropped. Best-effort throughout: a
// failed scan or delete leaves entries to age out on their TTLs.
type Invalidator struct {
	rdb     *redis.Client
	channel string
	log     *slog.Logger
}

func NewInvalidator(rdb *redis.Client, channel string, log *slog.Logger) *Invalidator {
	if log == nil {
		log = slog.Default()
	}
	return &Invalidator{rdb: rdb, channel: channel, log: log}
}

// Listen blocks consuming invalidation signals until ctx is cancelled.
// Intended to run on its own goroutine.
func (inv *Invalidator) Listen(ctx context.Context) {
	if inv.rdb == nil || inv.channel == "" {
		return
	}

	sub := inv.rdb.Subscribe(ctx, inv.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			inv.log.Info("cache invalidation signal received", "channel", inv.channel, "payload", msg.Payload)
			inv.flush(ctx)
		}
	}
}

// flush deletes every cached search page in batches.
func (inv *Invalidator) flush(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := inv.rdb.Scan(ctx, cursor, keyPrefix+":*", 200).Result()
		if err != nil {
			inv.log.Warn("cache invalidation scan failed", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := inv.rdb.Del(ctx, keys...).Err(); err != nil {
				inv.log.Warn("cache invalidation delete failed", "error", err)
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
