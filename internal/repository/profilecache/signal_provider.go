// Package profilecache reads user behavior signals from the key space the
// profile service maintains in redis. The profile service owns the data;
// this adapter only consumes it.
package profilecache

import (
	"context"
	"encoding/json"
	"fmt"

	"go-jobsearch-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

const signalKeyFormat = "profile:signals:%s"

type signalProvider struct {
	rdb *redis.Client
}

func NewSignalProvider(rdb *redis.Client) domain.SignalProvider {
	return &signalProvider{rdb: rdb}
}

// GetSignals returns the user's preference vector, or (nil, nil) when the
// profile service has not published one.
func (p *signalProvider) GetSignals(ctx context.Context, userID string) (*domain.UserSignal, error) {
	if p.rdb == nil {
		return nil, nil
	}

	payload, err := p.rdb.Get(ctx, fmt.Sprintf(signalKeyFormat, userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var signal domain.UserSignal
	if err := json.Unmarshal(payload, &signal); err != nil {
		return nil, fmt.Errorf("profilecache: corrupt signal payload for %s: %w", userID, err)
	}
	return &signal, nil
}
