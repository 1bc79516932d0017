package store

import (
	"context"
	"time"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/observability"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend" envconfig:"BACKEND"`

	// File backend.
	Dir string `toml:"dir" envconfig:"DIR"`

	// Redis backend.
	RedisAddr     string `toml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db" envconfig:"REDIS_DB"`
	RedisKey      string `toml:"redis_key" envconfig:"REDIS_KEY"`

	// Mongo backend.
	MongoURI        string `toml:"mongo_uri" envconfig:"MONGO_URI"`
	MongoDatabase   string `toml:"mongo_database" envconfig:"MONGO_DATABASE"`
	MongoCollection string `toml:"mongo_collection" envconfig:"MONGO_COLLECTION"`

	// Postgres backend.
	PostgresDSN string `toml:"postgres_dsn" envconfig:"POSTGRES_DSN"`
}

// Open connects to the configured backend. An empty backend name selects
// the file store. The returned store reports every call to the registered
// observability store hooks.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	backend := cfg.Backend
	if backend == "" {
		backend = BackendFile
	}
	switch backend {
	case BackendFile:
		s, err = NewFileStore(cfg.Dir)
	case BackendMemory:
		s = NewMemoryStore()
	case BackendRedis:
		s, err = NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		})
	case BackendMongo:
		s, err = NewMongoStore(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	case BackendPostgres:
		s, err = NewPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(s, backend), nil
}

// Instrument wraps s so each call is reported to the store hooks under the
// given backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (i *instrumented) report(ctx context.Context, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, i.backend, op, time.Since(start), err)
}

func (i *instrumented) Save(ctx context.Context, name string, data []byte) error {
	start := time.Now()
	err := i.Store.Save(ctx, name, data)
	i.report(ctx, "save", start, err)
	return err
}

func (i *instrumented) Load(ctx context.Context, name string) ([]byte, bool, error) {
	start := time.Now()
	data, ok, err := i.Store.Load(ctx, name)
	i.report(ctx, "load", start, err)
	return data, ok, err
}

func (i *instrumented) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := i.Store.Delete(ctx, name)
	i.report(ctx, "delete", start, err)
	return err
}

func (i *instrumented) Rename(ctx context.Context, oldName, newName string) error {
	start := time.Now()
	err := i.Store.Rename(ctx, oldName, newName)
	i.report(ctx, "rename", start, err)
	return err
}

func (i *instrumented) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := i.Store.List(ctx)
	i.report(ctx, "list", start, err)
	return names, err
}
