package database

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

func Connect() (*sqlx.DB, error) {
	dsn := viper.GetString("DB_DSN")
	return sqlx.Connect("pgx", dsn)
}

// Migrate creates the application tables. Safe to call on every start; all
// statements use IF NOT EXISTS. Statements run one at a time because pgx's
// extended protocol rejects multi-statement strings.
func Migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	// Accounts: the owner never has a row here, only customers do.
	`CREATE TABLE IF NOT EXISTS users (
	    id         SERIAL PRIMARY KEY,
	    username   TEXT NOT NULL UNIQUE,
	    password   TEXT NOT NULL,
	    role       TEXT NOT NULL DEFAULT 'customer',
	    rate       BIGINT NOT NULL DEFAULT 0,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// Delivery records, append-only. Quantity is liters at 2-decimal precision.
	`CREATE TABLE IF NOT EXISTS milk_records (
	    id         SERIAL PRIMARY KEY,
	    user_id    INTEGER NOT NULL REFERENCES users(id),
	    quantity   NUMERIC(10,2) NOT NULL,
	    date       DATE NOT NULL DEFAULT CURRENT_DATE,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_milk_records_user_id ON milk_records(user_id)`,
}
