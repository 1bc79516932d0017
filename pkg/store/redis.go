package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
)

// DefaultRedisKey is the hash holding every map.
const DefaultRedisKey = "mindcanvas:maps"

// RedisConfig holds connection settings for a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisStore keeps all maps as fields of one Redis hash. Each field value
// is a JSON [Record].
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, storageErr(err, "connect redis %s", cfg.Addr)
	}
	return NewRedisStoreFromClient(client, cfg.Key), nil
}

// NewRedisStoreFromClient wraps an existing client. An empty key selects
// [DefaultRedisKey].
func NewRedisStoreFromClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// hashGetter is satisfied by both *redis.Client and *redis.Tx.
type hashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

func (s *RedisStore) get(ctx context.Context, c hashGetter, name string) (*Record, error) {
	raw, err := c.HGet(ctx, s.key, name).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err, "redis get %q", name)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, storageErr(err, "parse map %q", name)
	}
	return &rec, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, data []byte) error {
	if err := checkSave(name, data); err != nil {
		return err
	}
	return s.watch(ctx, func(tx *redis.Tx) error {
		prev, err := s.get(ctx, tx, name)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(newRecord(name, data, prev))
		if err != nil {
			return storageErr(err, "marshal map %q", name)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.key, name, raw)
			return nil
		})
		return err
	})
}

func (s *RedisStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, false, err
	}
	rec, err := s.get(ctx, s.client, name)
	if err != nil || rec == nil {
		return nil, false, err
	}
	return []byte(rec.Tree), true, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	n, err := s.client.HDel(ctx, s.key, name).Result()
	if err != nil {
		return storageErr(err, "redis delete %q", name)
	}
	if n == 0 {
		return notFound(name)
	}
	return nil
}

func (s *RedisStore) Rename(ctx context.Context, oldName, newName string) error {
	if err := checkRename(oldName, newName); err != nil {
		return err
	}
	return s.watch(ctx, func(tx *redis.Tx) error {
		rec, err := s.get(ctx, tx, oldName)
		if err != nil {
			return err
		}
		if rec == nil {
			return notFound(oldName)
		}
		if oldName == newName {
			return nil
		}
		exists, err := tx.HExists(ctx, s.key, newName).Result()
		if err != nil {
			return storageErr(err, "redis exists %q", newName)
		}
		if exists {
			return alreadyExists(newName)
		}
		rec.Name = newName
		raw, err := json.Marshal(rec)
		if err != nil {
			return storageErr(err, "marshal map %q", newName)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.key, newName, raw)
			pipe.HDel(ctx, s.key, oldName)
			return nil
		})
		return err
	})
}

// watch runs fn in an optimistic transaction on the hash key.
func (s *RedisStore) watch(ctx context.Context, fn func(*redis.Tx) error) error {
	err := s.client.Watch(ctx, fn, s.key)
	if err == nil {
		return nil
	}
	var coded *errors.Error
	if stderrors.As(err, &coded) {
		return err
	}
	return storageErr(err, "redis transaction")
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.HKeys(ctx, s.key).Result()
	if err != nil {
		return nil, storageErr(err, "redis list")
	}
	slices.Sort(names)
	return names, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
