package shops

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	sferrors "storefront/internal/errors"
)

const (
	listShopsQuery = `SELECT id, name, opening_hours FROM shops ORDER BY id`
	getShopQuery   = `SELECT id, name, opening_hours FROM shops WHERE id = $1`
)

// querier is the subset of *pgxpool.Pool the store uses.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads shops from a table whose opening_hours column is a
// text[].
type PostgresStore struct {
	db   querier
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and verifies the connection.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return &PostgresStore{db: pool, pool: pool}, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Shop, error) {
	rows, err := s.db.Query(ctx, listShopsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer rows.Close()

	out := []Shop{}
	for rows.Next() {
		var shop Shop
		if err := rows.Scan(&shop.ID, &shop.Name, &shop.OpeningHours); err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		out = append(out, shop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Shop, error) {
	var shop Shop
	err := s.db.QueryRow(ctx, getShopQuery, id).Scan(&shop.ID, &shop.Name, &shop.OpeningHours)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shop{}, fmt.Errorf("%w: %q", sferrors.ErrShopNotFound, id)
	}
	if err != nil {
		return Shop{}, fmt.Errorf("failed to get shop %q: %w", id, err)
	}
	return shop, nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
