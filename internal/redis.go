package internal

import (
	"strings"

	"github.com/pkg/errors"
	r "gopkg.in/redis.v5"
)

// DefaultRedisPrefix scopes every key this program writes
const DefaultRedisPrefix = "_GUJJAR_GPT_"

// RedisStore keeps keys in redis under a fixed prefix with no expiry
type RedisStore struct {
	client *r.Client
	prefix string
}

// NewRedisStore connects to the redis server at url
func NewRedisStore(url, prefix string) (*RedisStore, error) {
	if url == "" {
		return nil, &StorageError{Op: "open", Key: "redis", Err: errors.New("redis url is required")}
	}
	opts, err := r.ParseURL(url)
	if err != nil {
		return nil, &StorageError{Op: "open", Key: url, Err: errors.Wrap(err, "parse redis url")}
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	client := r.NewClient(opts)
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, &StorageError{Op: "open", Key: url, Err: errors.Wrap(err, "redis ping")}
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	value, err := s.client.Get(s.prefix + key).Result()
	if err == r.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Op: "get", Key: key, Err: err}
	}
	return value, true, nil
}

func (s *RedisStore) Set(key, value string) error {
	if err := s.client.Set(s.prefix+key, value, 0).Err(); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) Remove(key string) error {
	if err := s.client.Del(s.prefix + key).Err(); err != nil {
		return &StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) Keys(prefix string) ([]string, error) {
	found, err := s.client.Keys(s.prefix + prefix + "*").Result()
	if err != nil {
		return nil, &StorageError{Op: "list", Key: prefix, Err: err}
	}
	keys := make([]string, 0, len(found))
	for _, k := range found {
		keys = append(keys, strings.TrimPrefix(k, s.prefix))
	}
	return keys, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
