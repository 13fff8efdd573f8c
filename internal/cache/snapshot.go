package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"clubdesk/internal/models"

	"github.com/redis/go-redis/v9"
)

// The entire application state is persisted as one JSON blob under a
// single key: it is read once at startup and rewritten after every
// state transition.
const snapshotKey = "clubdesk:state"

var (
	// ErrNoSnapshot means the cache has no snapshot yet (first run).
	ErrNoSnapshot = errors.New("no snapshot in cache")
	// ErrCorruptSnapshot means the stored blob failed to deserialize.
	// Callers recover by starting from an empty default state.
	ErrCorruptSnapshot = errors.New("snapshot is corrupt")
)

// SnapshotStore is the durable local cache of the full AppState.
type SnapshotStore interface {
	Load(ctx context.Context) (*models.AppState, error)
	Save(ctx context.Context, state *models.AppState) error
}

type redisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) SnapshotStore {
	return &redisSnapshotStore{client: client}
}

func (s *redisSnapshotStore) Load(ctx context.Context) (*models.AppState, error) {
	raw, err := s.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	state := &models.AppState{}
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return state, nil
}

func (s *redisSnapshotStore) Save(ctx context.Context, state *models.AppState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
