package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// RunMigrations runs database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			user_id BIGSERIAL PRIMARY KEY,
			discord_id TEXT NOT NULL UNIQUE,
			user_name TEXT NOT NULL,
			reg_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS categories (
			category_id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			category_name TEXT NOT NULL,
			UNIQUE (user_id, category_name)
		);
		CREATE TABLE IF NOT EXISTS expenses (
			expense_id BIGSERIAL PRIMARY KEY,
			category_id BIGINT NOT NULL REFERENCES categories(category_id) ON DELETE CASCADE,
			expense_name TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS transactions (
			transaction_id BIGSERIAL PRIMARY KEY,
			expense_id BIGINT NOT NULL REFERENCES expenses(expense_id) ON DELETE CASCADE,
			cost DOUBLE PRECISION NOT NULL,
			created_date DATE NOT NULL,
			amount INTEGER NOT NULL DEFAULT 1,
			comment TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_categories_user_id ON categories(user_id);
		CREATE INDEX IF NOT EXISTS idx_expenses_category_id ON expenses(category_id);
		CREATE INDEX IF NOT EXISTS idx_expenses_name ON expenses(expense_name);
		CREATE INDEX IF NOT EXISTS idx_transactions_expense_id ON transactions(expense_id);
	`)
	return err
}
