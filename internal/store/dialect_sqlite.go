package store

import (
	"fmt"
	"strings"
)

// SQLiteDialect implements Dialect for SQLite via modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string { return "sqlite" }

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS entities (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    api        TEXT,
    form_type  TEXT NOT NULL DEFAULT 'schema',
    component  TEXT,
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS entity_columns (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_id       TEXT NOT NULL,
    header_name     TEXT NOT NULL,
    field           TEXT NOT NULL,
    renderer        TEXT,
    renderer_params TEXT,
    hidden          INTEGER NOT NULL DEFAULT 0,
    sort_order      INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_entity_columns_entity ON entity_columns(entity_id);

CREATE TABLE IF NOT EXISTS entity_fields (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_id  TEXT NOT NULL,
    name       TEXT NOT NULL,
    label      TEXT,
    type       TEXT NOT NULL DEFAULT 'text',
    required   INTEGER NOT NULL DEFAULT 0,
    depends_on TEXT,
    config     TEXT,
    sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_entity_fields_entity ON entity_fields(entity_id);

CREATE TABLE IF NOT EXISTS entity_actions (
    id             TEXT NOT NULL,
    entity_id      TEXT NOT NULL,
    label          TEXT,
    tooltip        TEXT,
    type           TEXT NOT NULL DEFAULT 'form',
    icon           TEXT,
    icon_color     TEXT,
    form           TEXT,
    api            TEXT,
    method         TEXT,
    handler        TEXT,
    confirm        INTEGER NOT NULL DEFAULT 0,
    dialog_options TEXT,
    id_field       TEXT NOT NULL DEFAULT 'id',
    PRIMARY KEY (entity_id, id)
);

CREATE TABLE IF NOT EXISTS entity_rows (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_id  TEXT NOT NULL,
    data       TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_entity_rows_entity ON entity_rows(entity_id);
`

func (d *SQLiteDialect) SchemaSQL() string {
	return sqliteSchemaSQL
}

func (d *SQLiteDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "constraint failed: UNIQUE") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}
