package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "dashboard:snapshot:"

// RedisStore is the multi-node Store implementation. The latest snapshot per
// path lives in a Redis key and change notifications travel over pub/sub, so
// every dashboard node sees publishes made by any other node.
type RedisStore struct {
	client *redis.Client

	mu     sync.Mutex
	subs   map[string]map[uint64]func(Snapshot)
	pubsub map[string]*redis.PubSub
	nextID uint64
}

// NewRedisStore creates a store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		subs:   make(map[string]map[uint64]func(Snapshot)),
		pubsub: make(map[string]*redis.PubSub),
	}
}

// Subscribe implements Store. The first subscriber for a path opens the
// pub/sub channel; the last one closes it.
func (s *RedisStore) Subscribe(path string, fn func(Snapshot)) UnsubscribeFunc {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.subs[path] == nil {
		s.subs[path] = make(map[uint64]func(Snapshot))
		ps := s.client.Subscribe(context.Background(), redisKeyPrefix+path)
		s.pubsub[path] = ps
		go s.receive(path, ps)
	}
	s.subs[path][id] = fn
	s.mu.Unlock()

	if current, err := s.client.Get(context.Background(), redisKeyPrefix+path).Bytes(); err == nil {
		fn(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[path], id)
			if len(s.subs[path]) == 0 {
				delete(s.subs, path)
				if ps := s.pubsub[path]; ps != nil {
					_ = ps.Close()
					delete(s.pubsub, path)
				}
			}
			s.mu.Unlock()
		})
	}
}

// Publish implements Store.
func (s *RedisStore) Publish(ctx context.Context, path string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	key := redisKeyPrefix + path
	if err := s.client.Set(ctx, key, encoded, 0).Err(); err != nil {
		return err
	}
	return s.client.Publish(ctx, key, encoded).Err()
}

func (s *RedisStore) receive(path string, ps *redis.PubSub) {
	for msg := range ps.Channel() {
		s.mu.Lock()
		fns := make([]func(Snapshot), 0, len(s.subs[path]))
		for _, fn := range s.subs[path] {
			fns = append(fns, fn)
		}
		s.mu.Unlock()
		for _, fn := range fns {
			fn(Snapshot(msg.Payload))
		}
	}
	log.Printf("realtime: pubsub channel closed for path %s", path)
}
