package repository

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"
)

// SubscribersRepository keeps the gateway's subscriber list in a Redis set.
type SubscribersRepository interface {
	Add(ctx context.Context, email string) (bool, error)
	Remove(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]string, error)
}

type subscribersRepository struct {
	rds *redis.Client
	key string
}

func NewSubscribersRepository(rds *redis.Client, key string) SubscribersRepository {
	if key == "" {
		key = "contentgw:subscribers"
	}
	return &subscribersRepository{rds: rds, key: key}
}

// Add reports whether the address was newly added.
func (r *subscribersRepository) Add(ctx context.Context, email string) (bool, error) {
	n, err := r.rds.SAdd(ctx, r.key, email).Result()
	return n > 0, err
}

// Remove reports whether the address was present.
func (r *subscribersRepository) Remove(ctx context.Context, email string) (bool, error) {
	n, err := r.rds.SRem(ctx, r.key, email).Result()
	return n > 0, err
}

// List returns subscribers sorted for stable output.
func (r *subscribersRepository) List(ctx context.Context) ([]string, error) {
	out, err := r.rds.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
