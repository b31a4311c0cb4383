// Package persistence provides SQLite-backed storage for player state
// snapshots and the durable transaction ledger. The engine treats the
// snapshot as an opaque blob; only the ledger is unpacked into columns
// for history queries.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/uchumi/internal/state"
)

// DB wraps a SQLite connection for game state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS player_state (
		player_id TEXT PRIMARY KEY,
		snapshot TEXT NOT NULL,
		updated_at_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ledger (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount REAL NOT NULL,
		description TEXT NOT NULL,
		at_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_player ON ledger(player_id, at_ms);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Save upserts the full state snapshot and appends any ledger entries
// not yet recorded. Transaction ids are unique, so re-inserting the
// whole in-state log is idempotent.
func (db *DB) Save(st *state.EconomicState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	var latest int64
	for _, tx := range st.Transactions {
		if tx.AtMs > latest {
			latest = tx.AtMs
		}
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO player_state (player_id, snapshot, updated_at_ms) VALUES (?, ?, ?)`,
		st.Identity.PlayerID, string(raw), latest,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	stmt, err := tx.Preparex(
		`INSERT OR IGNORE INTO ledger (id, player_id, type, amount, description, at_ms) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range st.Transactions {
		if _, err := stmt.Exec(entry.ID, st.Identity.PlayerID, string(entry.Type), entry.Amount, entry.Description, entry.AtMs); err != nil {
			return fmt.Errorf("insert ledger entry %s: %w", entry.ID, err)
		}
	}

	return tx.Commit()
}

// Load restores a player's snapshot, or returns (nil, nil) when no
// state has been saved for this player yet.
func (db *DB) Load(playerID string) (*state.EconomicState, error) {
	var raw string
	err := db.conn.Get(&raw, "SELECT snapshot FROM player_state WHERE player_id = ?", playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var st state.EconomicState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &st, nil
}

// LedgerRow is one durable ledger entry.
type LedgerRow struct {
	ID          string  `db:"id" json:"id"`
	PlayerID    string  `db:"player_id" json:"player_id"`
	Type        string  `db:"type" json:"type"`
	Amount      float64 `db:"amount" json:"amount"`
	Description string  `db:"description" json:"description"`
	AtMs        int64   `db:"at_ms" json:"at_ms"`
}

// RecentLedger returns the most recent ledger entries for a player.
func (db *DB) RecentLedger(playerID string, limit int) ([]LedgerRow, error) {
	var rows []LedgerRow
	err := db.conn.Select(&rows,
		"SELECT id, player_id, type, amount, description, at_ms FROM ledger WHERE player_id = ? ORDER BY at_ms DESC LIMIT ?",
		playerID, limit,
	)
	return rows, err
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
