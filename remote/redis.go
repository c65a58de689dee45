package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wastebank/storefront/apperrors"
)

const (
	redisKeyPrefix     = "rtdb:"
	redisChannelPrefix = "rtdbev:"
)

// RedisStore is a Store backend over Redis, used for local development
// and integration testing. Each document lives as a JSON string at its
// full path; subtree reads assemble the nested object with a prefix
// scan; watches ride on pub/sub, one publish per mutated path.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, apperrors.ErrTransport.With(err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) key(path string) string     { return redisKeyPrefix + path }
func (s *RedisStore) channel(path string) string { return redisChannelPrefix + path }

func (s *RedisStore) Get(ctx context.Context, path string) (Snapshot, error) {
	exact, err := s.client.Get(ctx, s.key(path)).Bytes()
	if err != nil && err != redis.Nil {
		return Snapshot{}, apperrors.ErrTransport.With(err)
	}
	haveExact := err == nil

	tree := map[string]any{}
	prefix := s.key(path) + "/"
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return Snapshot{}, apperrors.ErrTransport.With(err)
		}
		for _, k := range keys {
			val, err := s.client.Get(ctx, k).Bytes()
			if err == redis.Nil {
				continue // expired between scan and get
			}
			if err != nil {
				return Snapshot{}, apperrors.ErrTransport.With(err)
			}
			insertPath(tree, strings.Split(k[len(prefix):], "/"), json.RawMessage(val))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(tree) == 0 {
		if !haveExact {
			return Snapshot{}, nil
		}
		return NewSnapshot(exact), nil
	}
	if haveExact {
		mergeLeafObject(tree, exact)
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(raw), nil
}

func (s *RedisStore) Set(ctx context.Context, path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	// A set replaces the whole subtree below the path.
	if err := s.deleteSubtree(ctx, path); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(path), raw, 0).Err(); err != nil {
		return apperrors.ErrTransport.With(err)
	}
	// A lost publish means watchers silently miss this change, so it
	// fails the write like any other transport error.
	if err := s.client.Publish(ctx, s.channel(path), "set").Err(); err != nil {
		return apperrors.ErrTransport.With(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, path string) error {
	if err := s.client.Del(ctx, s.key(path)).Err(); err != nil {
		return apperrors.ErrTransport.With(err)
	}
	if err := s.deleteSubtree(ctx, path); err != nil {
		return err
	}
	if err := s.client.Publish(ctx, s.channel(path), "delete").Err(); err != nil {
		return apperrors.ErrTransport.With(err)
	}
	return nil
}

func (s *RedisStore) deleteSubtree(ctx context.Context, path string) error {
	prefix := s.key(path) + "/"
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return apperrors.ErrTransport.With(err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return apperrors.ErrTransport.With(err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// PushKey generates the key client side, the way the mobile SDKs do; no
// round trip is needed for uniqueness.
func (s *RedisStore) PushKey(_ context.Context, _ string) (string, error) {
	return newPushID(time.Now()), nil
}

func (s *RedisStore) Watch(ctx context.Context, path string) (Watcher, error) {
	pubsub := s.client.PSubscribe(ctx, s.channel(path), s.channel(path)+"/*")
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, apperrors.ErrTransport.With(err)
	}

	w := &redisWatcher{pubsub: pubsub, events: make(chan Event, 1)}
	go w.run(ctx, s, path)
	return w, nil
}

type redisWatcher struct {
	pubsub *redis.PubSub
	events chan Event
	once   sync.Once
}

func (w *redisWatcher) Events() <-chan Event { return w.events }

// Close releases the pub/sub registration. Idempotent.
func (w *redisWatcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.pubsub.Close()
	})
	return err
}

func (w *redisWatcher) run(ctx context.Context, s *RedisStore, path string) {
	defer close(w.events)
	defer func() { _ = w.Close() }()

	emit := func() bool {
		snap, err := s.Get(ctx, path)
		if err != nil {
			w.send(Event{Err: err})
			return false
		}
		w.send(Event{Snapshot: snap})
		return true
	}

	// Watchers always start from the current state.
	if !emit() {
		return
	}

	msgs := w.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-msgs:
			if !ok {
				return
			}
			if !emit() {
				return
			}
		}
	}
}

// send keeps only the latest event when the consumer lags.
func (w *redisWatcher) send(ev Event) {
	for {
		select {
		case w.events <- ev:
			return
		default:
			select {
			case <-w.events:
			default:
			}
		}
	}
}
