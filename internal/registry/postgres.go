package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository persists subscriptions in PostgreSQL via a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() { r.pool.Close() }

func (r *PostgresRepository) GetAll(ctx context.Context) ([]Subscription, error) {
	q := `SELECT id, url, event_type, is_active, created_at
          FROM webhook_subscriptions
          ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Subscription, error) {
	q := `SELECT id, url, event_type, is_active, created_at
          FROM webhook_subscriptions
          WHERE id = $1`

	var s Subscription
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.URL, &s.EventType, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) GetActiveByEventType(ctx context.Context, eventType string) ([]Subscription, error) {
	q := `SELECT id, url, event_type, is_active, created_at
          FROM webhook_subscriptions
          WHERE event_type = $1 AND is_active`

	rows, err := r.pool.Query(ctx, q, eventType)
	if err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

func (r *PostgresRepository) Add(ctx context.Context, sub *Subscription) error {
	q := `INSERT INTO webhook_subscriptions (id, url, event_type, is_active, created_at)
          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, q, sub.ID, sub.URL, sub.EventType, sub.IsActive, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, sub *Subscription) error {
	q := `UPDATE webhook_subscriptions
          SET url = $2, event_type = $3, is_active = $4
          WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q, sub.ID, sub.URL, sub.EventType, sub.IsActive)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM webhook_subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubscriptions(rows pgx.Rows) ([]Subscription, error) {
	var out []Subscription
	for rows.Next() {
		var s Subscription
		if err := rows.Scan(&s.ID, &s.URL, &s.EventType, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return out, nil
}
