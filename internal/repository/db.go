package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS collectives (
			id INTEGER PRIMARY KEY,
			slug TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			currency TEXT NOT NULL,
			settings TEXT NOT NULL DEFAULT '{}',
			tags TEXT NOT NULL DEFAULT '',
			host_collective_id INTEGER,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_collectives_type ON collectives(type)`,
		`CREATE INDEX IF NOT EXISTS idx_collectives_host ON collectives(host_collective_id)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY,
			uuid TEXT UNIQUE NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			amount INTEGER NOT NULL,
			currency TEXT NOT NULL,
			amount_in_host_currency INTEGER NOT NULL,
			host_currency TEXT NOT NULL,
			net_amount_in_collective_currency INTEGER NOT NULL,
			collective_id INTEGER NOT NULL,
			from_collective_id INTEGER NOT NULL,
			host_collective_id INTEGER NOT NULL,
			using_virtual_card_from_collective_id INTEGER,
			payment_method_id INTEGER,
			order_id INTEGER,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (collective_id) REFERENCES collectives(id),
			FOREIGN KEY (from_collective_id) REFERENCES collectives(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_from ON transactions(from_collective_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_host ON transactions(host_collective_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_vcard ON transactions(using_virtual_card_from_collective_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at)`,

		`CREATE TABLE IF NOT EXISTS members (
			id INTEGER PRIMARY KEY,
			collective_id INTEGER NOT NULL,
			member_collective_id INTEGER NOT NULL,
			role TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			since DATETIME NOT NULL,
			FOREIGN KEY (collective_id) REFERENCES collectives(id),
			FOREIGN KEY (member_collective_id) REFERENCES collectives(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_members_collective ON members(collective_id)`,
		`CREATE INDEX IF NOT EXISTS idx_members_member ON members(member_collective_id)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY,
			from_collective_id INTEGER NOT NULL,
			collective_id INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			total_amount INTEGER NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (collective_id) REFERENCES collectives(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_collective ON orders(collective_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY,
			collective_id INTEGER NOT NULL,
			user_collective_id INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			amount INTEGER NOT NULL,
			currency TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (collective_id) REFERENCES collectives(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_collective ON expenses(collective_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_status ON expenses(status)`,

		`CREATE TABLE IF NOT EXISTS updates (
			id INTEGER PRIMARY KEY,
			collective_id INTEGER NOT NULL,
			slug TEXT NOT NULL,
			title TEXT NOT NULL,
			html TEXT NOT NULL DEFAULT '',
			is_private INTEGER NOT NULL DEFAULT 0,
			published_at DATETIME,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (collective_id) REFERENCES collectives(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_updates_collective ON updates(collective_id)`,

		`CREATE TABLE IF NOT EXISTS payment_methods (
			id INTEGER PRIMARY KEY,
			collective_id INTEGER NOT NULL,
			type TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (collective_id) REFERENCES collectives(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_methods_collective ON payment_methods(collective_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	return nil
}
