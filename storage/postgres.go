package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Namespace(owner string) KV {
	return &postgresKV{db: p.db, owner: owner}
}

type postgresKV struct {
	db    *sqlx.DB
	owner string
}

type row struct {
	Owner     string    `db:"owner"`
	Key       string    `db:"key"`
	Value     []byte    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (kv *postgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
	SELECT value
	FROM storage_entries
	WHERE owner = $1 AND key = $2`

	var v []byte
	if err := kv.db.GetContext(ctx, &v, q, kv.owner, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("selecting entry[%s/%s]: %w", kv.owner, key, err)
	}
	return v, nil
}

func (kv *postgresKV) Set(ctx context.Context, key string, value []byte) error {
	const q = `
	INSERT INTO storage_entries (owner, key, value, updated_at)
	VALUES (:owner, :key, :value, :updated_at)
	ON CONFLICT (owner, key) DO UPDATE
	SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	r := row{
		Owner:     kv.owner,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	if _, err := kv.db.NamedExecContext(ctx, q, r); err != nil {
		return fmt.Errorf("upserting entry[%s/%s]: %w", kv.owner, key, err)
	}
	return nil
}

func (kv *postgresKV) Delete(ctx context.Context, key string) error {
	const q = `
	DELETE FROM storage_entries
	WHERE owner = $1 AND key = $2`

	if _, err := kv.db.ExecContext(ctx, q, kv.owner, key); err != nil {
		return fmt.Errorf("deleting entry[%s/%s]: %w", kv.owner, key, err)
	}
	return nil
}
