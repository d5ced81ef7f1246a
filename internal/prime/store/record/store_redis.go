package record

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"primelab/internal/prime/models"
)

const redisKeyPrefix = "primelab:primes"

// RedisStore pushes JSON records onto one list per algorithm and bit-length.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(algorithm models.Algorithm, bits int) string {
	return fmt.Sprintf("%s:%s:%d", redisKeyPrefix, algorithm, bits)
}

func (s *RedisStore) Append(ctx context.Context, rec *models.Record) error {
	data, err := rec.Marshal()
	if err != nil {
		return fmt.Errorf("encode prime record: %w", err)
	}
	if err := s.client.RPush(ctx, redisKey(rec.Algorithm, rec.Bits), data).Err(); err != nil {
		return fmt.Errorf("push prime record: %w", err)
	}
	return nil
}

// List returns the records for one algorithm and bit-length in push order.
func (s *RedisStore) List(ctx context.Context, algorithm models.Algorithm, bits int) ([]*models.Record, error) {
	items, err := s.client.LRange(ctx, redisKey(algorithm, bits), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list prime records: %w", err)
	}
	out := make([]*models.Record, 0, len(items))
	for _, item := range items {
		rec, err := models.UnmarshalRecord([]byte(item))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
