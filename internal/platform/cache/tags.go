package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// TagStore caches JSON-encoded computations in Redis with a bounded TTL.
// Every cached key is registered under one or more tags; Invalidate evicts
// all keys belonging to a tag at once. Concurrent misses for the same key
// are collapsed into a single loader execution.
type TagStore struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewTagStore instantiates the cache helper.
func NewTagStore(client *redis.Client, ttl time.Duration) *TagStore {
	return &TagStore{client: client, ttl: ttl}
}

// TTL exposes the configured cache lifetime.
func (s *TagStore) TTL() time.Duration {
	if s == nil {
		return 0
	}
	return s.ttl
}

func tagKey(tag string) string {
	return "tag:" + tag
}

// FetchJSON loads a cached value into dest, populating it with loader on a
// miss. The key is registered under each tag at population time.
func (s *TagStore) FetchJSON(ctx context.Context, key string, tags []string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if s == nil || s.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}

	payload, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}

	result := s.group.DoChan(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			return nil, err
		}
		for _, tag := range tags {
			if err := s.client.SAdd(ctx, tagKey(tag), key).Err(); err != nil {
				return nil, err
			}
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Invalidate evicts every key registered under each of the given tags.
func (s *TagStore) Invalidate(ctx context.Context, tags ...string) error {
	if s == nil || s.client == nil {
		return nil
	}
	for _, tag := range tags {
		members, err := s.client.SMembers(ctx, tagKey(tag)).Result()
		if err != nil {
			return err
		}
		if len(members) > 0 {
			if err := s.client.Del(ctx, members...).Err(); err != nil {
				return err
			}
		}
		if err := s.client.Del(ctx, tagKey(tag)).Err(); err != nil {
			return err
		}
	}
	return nil
}
