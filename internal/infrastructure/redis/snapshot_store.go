package redis

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// RedisSnapshotStore keeps the snapshot blob under a single key. The
// whole aggregate is replaced wholesale on every save; a missing key
// means no snapshot has ever been written.
type RedisSnapshotStore struct {
	client *redis.Client
	key    string
}

func NewRedisSnapshotStore(client *redis.Client, key string) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, key: key}
}

func (r *RedisSnapshotStore) Write(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, 0).Err()
}

func (r *RedisSnapshotStore) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
