package main

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// AccountRow represents an account record in the database
type AccountRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// ProfileRow represents lifetime per-account stats
type ProfileRow struct {
	PlayerID       int64
	BestMass       float64
	Predations     int
	TimesEaten     int
	Consumed       int
	Divisions      int
	CurrencyEarned float64
	Playtime       float64 // seconds
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is still usable
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS profiles (
		player_id INTEGER PRIMARY KEY REFERENCES accounts(id),
		best_mass REAL NOT NULL DEFAULT 0,
		predations INTEGER NOT NULL DEFAULT 0,
		times_eaten INTEGER NOT NULL DEFAULT 0,
		consumed INTEGER NOT NULL DEFAULT 0,
		divisions INTEGER NOT NULL DEFAULT 0,
		currency_earned REAL NOT NULL DEFAULT 0,
		playtime REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Error().Err(err).Msg("db migration")
	}
	return err
}

// CreateAccount creates a new account plus its empty profile row
func (db *DB) CreateAccount(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO accounts (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = db.conn.Exec("INSERT INTO profiles (player_id) VALUES (?)", id)
	return id, err
}

// GetAccountByUsername returns an account by username, nil when absent
func (db *DB) GetAccountByUsername(username string) (*AccountRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM accounts WHERE username = ?",
		username,
	)
	a := &AccountRow{}
	err := row.Scan(&a.ID, &a.Username, &a.PassHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM accounts WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// GetProfile returns lifetime stats for an account, nil when absent
func (db *DB) GetProfile(playerID int64) (*ProfileRow, error) {
	row := db.conn.QueryRow(
		`SELECT player_id, best_mass, predations, times_eaten, consumed, divisions, currency_earned, playtime
		 FROM profiles WHERE player_id = ?`,
		playerID,
	)
	p := &ProfileRow{}
	err := row.Scan(&p.PlayerID, &p.BestMass, &p.Predations, &p.TimesEaten,
		&p.Consumed, &p.Divisions, &p.CurrencyEarned, &p.Playtime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ApplyProfileDelta folds one accumulated delta into a profile row.
// Counters add; best mass keeps the maximum.
func (db *DB) ApplyProfileDelta(tx *sql.Tx, d ProfileDelta) error {
	_, err := tx.Exec(`
		UPDATE profiles SET
			best_mass = MAX(best_mass, ?),
			predations = predations + ?,
			times_eaten = times_eaten + ?,
			consumed = consumed + ?,
			divisions = divisions + ?,
			currency_earned = currency_earned + ?,
			playtime = playtime + ?
		WHERE player_id = ?`,
		d.BestMass, d.Predations, d.TimesEaten, d.Consumed,
		d.Divisions, d.CurrencyEarned, d.Playtime, d.PlayerID,
	)
	return err
}

// GetSetting returns a settings value, "" when absent
func (db *DB) GetSetting(key string) string {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return ""
	}
	return value
}

// SetSetting upserts a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
