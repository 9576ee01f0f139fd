package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY,
	username   TEXT NOT NULL DEFAULT '',
	full_name  TEXT NOT NULL DEFAULT '',
	joined_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS giveaways (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	channel_ids        TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL,
	media_id           TEXT NOT NULL DEFAULT '',
	media_type         TEXT NOT NULL DEFAULT '',
	button_text        TEXT NOT NULL,
	publish_channel_id INTEGER NOT NULL DEFAULT 0,
	publish_message_id INTEGER NOT NULL DEFAULT 0,
	end_time           TIMESTAMP,
	status             TEXT NOT NULL DEFAULT 'active',
	created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS participants (
	user_id     INTEGER NOT NULL,
	giveaway_id INTEGER NOT NULL,
	is_winner   INTEGER NOT NULL DEFAULT 0,
	joined_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, giveaway_id),
	FOREIGN KEY (user_id) REFERENCES users (id),
	FOREIGN KEY (giveaway_id) REFERENCES giveaways (id)
);

CREATE TABLE IF NOT EXISTS admin_channels (
	channel_id INTEGER PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	username   TEXT NOT NULL DEFAULT '',
	added_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps the sqlite connection shared by the feature repositories.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database file and ensures the schema
// exists. Pass ":memory:" for an ephemeral database.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// sqlite serializes writers; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Conn exposes the underlying pool to repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is usable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
