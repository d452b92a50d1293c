package sqlite

import (
	"context"
	"fmt"
)

// schema is applied at startup. Statements are idempotent so the store can
// run it on every boot, including right after a restore.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		permissions TEXT NOT NULL DEFAULT '[]'
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT NOT NULL UNIQUE,
		name          TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role_id       INTEGER NOT NULL REFERENCES roles(id),
		active        INTEGER NOT NULL DEFAULT 1,
		last_login_at DATETIME,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS suppliers (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		name    TEXT NOT NULL,
		phone   TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		email   TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		sku          TEXT NOT NULL UNIQUE,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		category_id  INTEGER NOT NULL REFERENCES categories(id),
		supplier_id  INTEGER REFERENCES suppliers(id),
		cost_price   REAL NOT NULL DEFAULT 0,
		sale_price   REAL NOT NULL DEFAULT 0,
		quantity     INTEGER NOT NULL DEFAULT 0,
		min_quantity INTEGER NOT NULL DEFAULT 0,
		barcode      TEXT NOT NULL DEFAULT '',
		active       INTEGER NOT NULL DEFAULT 1,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS customers (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		phone      TEXT NOT NULL DEFAULT '',
		address    TEXT NOT NULL DEFAULT '',
		notes      TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS sales (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_number TEXT NOT NULL UNIQUE,
		customer_id    INTEGER REFERENCES customers(id),
		subtotal       REAL NOT NULL,
		discount_mode  TEXT NOT NULL DEFAULT 'flat',
		discount_value REAL NOT NULL DEFAULT 0,
		discount       REAL NOT NULL DEFAULT 0,
		tax_rate       REAL NOT NULL DEFAULT 0,
		tax            REAL NOT NULL DEFAULT 0,
		total          REAL NOT NULL,
		paid           REAL NOT NULL DEFAULT 0,
		change_due     REAL NOT NULL DEFAULT 0,
		payment_method TEXT NOT NULL DEFAULT 'cash',
		user_id        INTEGER NOT NULL DEFAULT 0,
		note           TEXT NOT NULL DEFAULT '',
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS sale_items (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id    INTEGER NOT NULL REFERENCES sales(id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		name       TEXT NOT NULL,
		quantity   INTEGER NOT NULL,
		unit_price REAL NOT NULL,
		unit_cost  REAL NOT NULL DEFAULT 0,
		line_total REAL NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS returns (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id    INTEGER NOT NULL REFERENCES sales(id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity   INTEGER NOT NULL,
		amount     REAL NOT NULL,
		reason     TEXT NOT NULL DEFAULT '',
		user_id    INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS repairs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_number TEXT NOT NULL UNIQUE,
		customer_id   INTEGER REFERENCES customers(id),
		customer_name TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		device_type   TEXT NOT NULL,
		device_model  TEXT NOT NULL DEFAULT '',
		serial_number TEXT NOT NULL DEFAULT '',
		problem       TEXT NOT NULL,
		diagnosis     TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL,
		parts_cost    REAL NOT NULL DEFAULT 0,
		labor_cost    REAL NOT NULL DEFAULT 0,
		total_cost    REAL NOT NULL DEFAULT 0,
		deposit       REAL NOT NULL DEFAULT 0,
		user_id       INTEGER NOT NULL DEFAULT 0,
		entry_date    DATETIME NOT NULL,
		exit_date     DATETIME,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS transfers (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		reference     TEXT NOT NULL UNIQUE,
		channel       TEXT NOT NULL,
		direction     TEXT NOT NULL,
		customer_name TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		wallet_number TEXT NOT NULL DEFAULT '',
		amount        REAL NOT NULL,
		commission    REAL NOT NULL DEFAULT 0,
		note          TEXT NOT NULL DEFAULT '',
		user_id       INTEGER NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS stock_movements (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id    INTEGER NOT NULL REFERENCES products(id),
		change_qty    INTEGER NOT NULL,
		movement_type TEXT NOT NULL,
		reference_id  TEXT NOT NULL DEFAULT '',
		user_id       INTEGER NOT NULL DEFAULT 0,
		note          TEXT NOT NULL DEFAULT '',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL DEFAULT 0,
		action     TEXT NOT NULL,
		module     TEXT NOT NULL,
		record_id  TEXT NOT NULL DEFAULT '',
		details    TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS backups (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		file_name  TEXT NOT NULL,
		path       TEXT NOT NULL,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		compressed INTEGER NOT NULL DEFAULT 0,
		automatic  INTEGER NOT NULL DEFAULT 0,
		user_id    INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS sys_sequences (
		key         TEXT PRIMARY KEY,
		current_val INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_barcode ON products(barcode)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created ON sales(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_returns_sale ON returns(sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_repairs_status ON repairs(status)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_product ON stock_movements(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_logs(created_at)`,
}

// Migrate applies the schema.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.conn().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
