// Package sqlite implements the repository interfaces on SQLite.
//
// The driver is modernc.org/sqlite, a pure Go translation of SQLite, so the
// binary builds without cgo. Uniqueness of titles, slugs, tag names,
// usernames, and emails lives here as UNIQUE constraints; the rest of the
// application treats a violation as a recoverable conflict, never a crash.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB pool and exposes one repository per entity, all
// sharing the same connection pool.
type DB struct {
	conn *sql.DB

	Articles *ArticleRepo
	Snippets *SnippetRepo
	Tags     *TagRepo
	Users    *UserRepo
	Tokens   *TokenRepo
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// one connection: SQLite allows a single writer anyway, and ":memory:"
	// databases exist per connection, so a pool would see different data
	conn.SetMaxOpenConns(1)

	// WAL lets reads proceed while a write is in flight; foreign keys are
	// off by default in SQLite and we rely on them for the join tables.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	db.Articles = &ArticleRepo{conn: conn}
	db.Snippets = &SnippetRepo{conn: conn}
	db.Tags = &TagRepo{conn: conn}
	db.Users = &UserRepo{conn: conn}
	db.Tokens = &TokenRepo{conn: conn}
	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			active        INTEGER NOT NULL DEFAULT 1,
			avatar_name   TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS articles (
			id           TEXT PRIMARY KEY,
			author_id    TEXT NOT NULL REFERENCES users(id),
			title        TEXT NOT NULL UNIQUE,
			slug         TEXT NOT NULL UNIQUE,
			description  TEXT NOT NULL DEFAULT '',
			content      TEXT NOT NULL,
			image_url    TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			published_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at);

		CREATE TABLE IF NOT EXISTS snippets (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL UNIQUE,
			slug         TEXT NOT NULL UNIQUE,
			description  TEXT NOT NULL DEFAULT '',
			code         TEXT NOT NULL,
			language     TEXT NOT NULL,
			author       TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			published_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_published_at ON snippets(published_at);

		CREATE TABLE IF NOT EXISTS tags (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS article_tags (
			article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			tag_id     TEXT NOT NULL REFERENCES tags(id),
			PRIMARY KEY (article_id, tag_id)
		);

		CREATE TABLE IF NOT EXISTS snippet_tags (
			snippet_id TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			tag_id     TEXT NOT NULL REFERENCES tags(id),
			PRIMARY KEY (snippet_id, tag_id)
		);

		CREATE TABLE IF NOT EXISTS article_likes (
			article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			PRIMARY KEY (article_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS revoked_tokens (
			jti        TEXT PRIMARY KEY,
			expires_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite surfaces these as plain errors carrying the SQLite
// message, so string matching is the available discriminator.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
