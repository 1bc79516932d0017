package store

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS maps (
	name       text PRIMARY KEY,
	doc_id     uuid NOT NULL,
	tree       jsonb NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
)`

// PostgresStore keeps one row per map in the maps table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and creates the maps table if needed.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "postgres store requires a DSN")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, storageErr(err, "connect postgres")
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, storageErr(err, "create maps table")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, name string, data []byte) error {
	if err := checkSave(name, data); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO maps (name, doc_id, tree) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET tree = EXCLUDED.tree, updated_at = now()`,
		name, uuid.NewString(), data)
	if err != nil {
		return storageErr(err, "postgres save %q", name)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, false, err
	}
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT tree::text FROM maps WHERE name = $1`, name).Scan(&data)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr(err, "postgres load %q", name)
	}
	return data, true, nil
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM maps WHERE name = $1`, name)
	if err != nil {
		return storageErr(err, "postgres delete %q", name)
	}
	if tag.RowsAffected() == 0 {
		return notFound(name)
	}
	return nil
}

func (s *PostgresStore) Rename(ctx context.Context, oldName, newName string) error {
	if err := checkRename(oldName, newName); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE maps SET name = $2, updated_at = now() WHERE name = $1`, oldName, newName)
	if err != nil {
		if isUniqueViolation(err) {
			return alreadyExists(newName)
		}
		return storageErr(err, "postgres rename %q", oldName)
	}
	if tag.RowsAffected() == 0 {
		return notFound(oldName)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM maps ORDER BY name`)
	if err != nil {
		return nil, storageErr(err, "postgres list")
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storageErr(err, "postgres list")
	}
	return names, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ Store = (*PostgresStore)(nil)
