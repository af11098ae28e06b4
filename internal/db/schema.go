package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// sort_order carries no unique index: range shifts rewrite rows one at a time
// and would collide midway. Density of each scope is kept by the ordering
// package inside a single transaction.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'viewer' CHECK (role IN ('admin', 'editor', 'viewer')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS slideshows (
    id          TEXT PRIMARY KEY,
    page        TEXT NOT NULL,
    section     TEXT NOT NULL,
    title_en    TEXT NOT NULL DEFAULT '',
    title_ta    TEXT NOT NULL DEFAULT '',
    interval_ms INTEGER NOT NULL DEFAULT 5000,
    autoplay    INTEGER NOT NULL DEFAULT 1,
    is_active   INTEGER NOT NULL DEFAULT 1,
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_slideshows_placement
    ON slideshows(page, section);

CREATE TABLE IF NOT EXISTS slides (
    id           TEXT PRIMARY KEY,
    slideshow_id TEXT NOT NULL REFERENCES slideshows(id) ON DELETE CASCADE,
    sort_order   INTEGER NOT NULL CHECK (sort_order > 0),
    is_active    INTEGER NOT NULL DEFAULT 1,
    title_en     TEXT NOT NULL DEFAULT '',
    title_ta     TEXT NOT NULL DEFAULT '',
    subtitle_en  TEXT NOT NULL DEFAULT '',
    subtitle_ta  TEXT NOT NULL DEFAULT '',
    button_en    TEXT NOT NULL DEFAULT '',
    button_ta    TEXT NOT NULL DEFAULT '',
    image_url    TEXT NOT NULL DEFAULT '',
    link_url     TEXT NOT NULL DEFAULT '',
    duration_ms  INTEGER NOT NULL DEFAULT 5000,
    image        BLOB,
    image_mime   TEXT,
    created_at   DATETIME NOT NULL,
    updated_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_slides_scope
    ON slides(slideshow_id, sort_order);

CREATE TABLE IF NOT EXISTS slide_moves (
    id                INTEGER PRIMARY KEY,
    slide_id          TEXT NOT NULL REFERENCES slides(id) ON DELETE CASCADE,
    from_slideshow_id TEXT NOT NULL,
    to_slideshow_id   TEXT NOT NULL,
    from_order        INTEGER NOT NULL,
    to_order          INTEGER NOT NULL,
    moved_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    moved_by          TEXT
);

CREATE TABLE IF NOT EXISTS announcements (
    id         TEXT PRIMARY KEY,
    page       TEXT NOT NULL,
    sort_order INTEGER NOT NULL CHECK (sort_order > 0),
    is_active  INTEGER NOT NULL DEFAULT 1,
    title_en   TEXT NOT NULL DEFAULT '',
    title_ta   TEXT NOT NULL DEFAULT '',
    content_en TEXT NOT NULL DEFAULT '',
    content_ta TEXT NOT NULL DEFAULT '',
    link_url   TEXT NOT NULL DEFAULT '',
    starts_at  DATETIME,
    ends_at    DATETIME,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_announcements_scope
    ON announcements(page, sort_order);

CREATE TABLE IF NOT EXISTS books (
    id          INTEGER PRIMARY KEY,
    title_en    TEXT NOT NULL DEFAULT '',
    title_ta    TEXT NOT NULL DEFAULT '',
    author_en   TEXT NOT NULL DEFAULT '',
    author_ta   TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    isbn        TEXT NOT NULL DEFAULT '',
    price_paise INTEGER NOT NULL DEFAULT 0 CHECK (price_paise >= 0),
    published   INTEGER NOT NULL DEFAULT 0,
    cover       BLOB,
    cover_mime  TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at  DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_books_isbn_active
    ON books(isbn) WHERE deleted_at IS NULL AND isbn <> '';
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
