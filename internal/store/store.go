// Package store persists user profiles, the transaction ledger,
// obligations, budgets, saved investment plans and the safety audit
// trail in SQLite. The planner never reads the database directly; it
// gets a fresh UserFinancialState snapshot computed here each turn.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite handle. Writes are serialized with a mutex;
// SQLite's single-writer model makes finer locking pointless.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the database and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL keeps reads cheap while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("store opened: %s", path)
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id              TEXT PRIMARY KEY,
			age_bracket          TEXT NOT NULL DEFAULT '26-35',
			risk_tolerance       TEXT NOT NULL DEFAULT 'moderate',
			income_type          TEXT NOT NULL DEFAULT 'salaried',
			literacy_level       INTEGER NOT NULL DEFAULT 2,
			monthly_income       REAL NOT NULL DEFAULT 0,
			monthly_rent         REAL NOT NULL DEFAULT 0,
			monthly_emi          REAL NOT NULL DEFAULT 0,
			monthly_surplus      REAL NOT NULL DEFAULT 0,
			daily_essential      REAL NOT NULL DEFAULT 0,
			has_credit_card_debt INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			type        TEXT NOT NULL,
			amount      TEXT NOT NULL,
			category    TEXT,
			description TEXT,
			date        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_txn_user_date ON transactions(user_id, date)`,

		`CREATE TABLE IF NOT EXISTS budgets (
			user_id        TEXT NOT NULL,
			category       TEXT NOT NULL,
			monthly_budget REAL NOT NULL,
			PRIMARY KEY (user_id, category)
		)`,

		`CREATE TABLE IF NOT EXISTS obligations (
			user_id  TEXT NOT NULL,
			name     TEXT NOT NULL,
			amount   REAL NOT NULL,
			due_date INTEGER NOT NULL,
			PRIMARY KEY (user_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS investments (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			asset_class TEXT NOT NULL,
			fund_name   TEXT NOT NULL,
			ticker      TEXT,
			weight      REAL NOT NULL,
			unit_price  REAL,
			status      TEXT NOT NULL DEFAULT 'active',
			created_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inv_user ON investments(user_id)`,

		`CREATE TABLE IF NOT EXISTS holdings (
			user_id           TEXT NOT NULL,
			symbol            TEXT NOT NULL,
			quantity          TEXT NOT NULL,
			average_buy_price TEXT NOT NULL,
			updated_at        INTEGER NOT NULL,
			PRIMARY KEY (user_id, symbol)
		)`,

		`CREATE TABLE IF NOT EXISTS safety_log (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL,
			timestamp  INTEGER NOT NULL,
			is_safe    INTEGER NOT NULL,
			warnings   TEXT,
			blocked    TEXT,
			context    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_safety_user_ts ON safety_log(user_id, timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
