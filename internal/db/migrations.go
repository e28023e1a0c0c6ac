package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT    NOT NULL UNIQUE,
		password_hash TEXT    NOT NULL,
		first_name    TEXT    NOT NULL,
		last_name     TEXT    NOT NULL,
		phone_number  TEXT    NOT NULL DEFAULT '',
		house_number  TEXT    UNIQUE,
		role          TEXT    NOT NULL DEFAULT 'tenant' CHECK (role IN ('landlord', 'tenant')),
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		landlord_id INTEGER NOT NULL REFERENCES users(id),
		name        TEXT    NOT NULL,
		address     TEXT    NOT NULL,
		rent_amount REAL    NOT NULL,
		description TEXT    NOT NULL DEFAULT '',
		image_url   TEXT    NOT NULL DEFAULT '',
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id      INTEGER NOT NULL REFERENCES users(id),
		property_id    INTEGER NOT NULL REFERENCES properties(id),
		amount         REAL    NOT NULL,
		payment_method TEXT    NOT NULL DEFAULT 'mpesa',
		transaction_id TEXT    NOT NULL DEFAULT '',
		status         TEXT    NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'failed')),
		payment_date   DATETIME DEFAULT CURRENT_TIMESTAMP,
		phone_number   TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id   INTEGER NOT NULL REFERENCES users(id),
		receiver_id INTEGER NOT NULL REFERENCES users(id),
		property_id INTEGER REFERENCES properties(id),
		content     TEXT    NOT NULL,
		timestamp   DATETIME DEFAULT CURRENT_TIMESTAMP,
		read        INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_transaction ON payments(transaction_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_property ON messages(property_id)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions (idempotent — checks if column exists first)
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"payments", "receipt", "TEXT NOT NULL DEFAULT ''"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			return nil // column already exists
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
