package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresSlotRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSlotRepository returns a Postgres-backed implementation over session_slots.
func NewPostgresSlotRepository(pool *pgxpool.Pool) SlotRepository {
	return &postgresSlotRepository{pool: pool}
}

func (r *postgresSlotRepository) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM session_slots WHERE slot = $1`

	var value string
	err := r.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrSlotEmpty
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *postgresSlotRepository) Set(ctx context.Context, key, value string) error {
	const query = `
        INSERT INTO session_slots (slot, value)
        VALUES ($1, $2)
        ON CONFLICT (slot) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query, key, value)
	return err
}

func (r *postgresSlotRepository) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM session_slots WHERE slot = $1`

	_, err := r.pool.Exec(ctx, query, key)
	return err
}
