package store

import (
	"fmt"
	"strings"
)

// PostgresDialect implements Dialect for PostgreSQL via pgx/stdlib.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string { return "pgx" }

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS entities (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    api        TEXT,
    form_type  TEXT NOT NULL DEFAULT 'schema',
    component  TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS entity_columns (
    id              BIGSERIAL PRIMARY KEY,
    entity_id       TEXT NOT NULL,
    header_name     TEXT NOT NULL,
    field           TEXT NOT NULL,
    renderer        TEXT,
    renderer_params TEXT,
    hidden          BOOLEAN NOT NULL DEFAULT false,
    sort_order      INT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_entity_columns_entity ON entity_columns(entity_id);

CREATE TABLE IF NOT EXISTS entity_fields (
    id         BIGSERIAL PRIMARY KEY,
    entity_id  TEXT NOT NULL,
    name       TEXT NOT NULL,
    label      TEXT,
    type       TEXT NOT NULL DEFAULT 'text',
    required   BOOLEAN NOT NULL DEFAULT false,
    depends_on TEXT,
    config     TEXT,
    sort_order INT NOT NULL DEFAULT 0
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
    confirm        BOOLEAN NOT NULL DEFAULT false,
    dialog_options TEXT,
    id_field       TEXT NOT NULL DEFAULT 'id',
    PRIMARY KEY (entity_id, id)
);

CREATE TABLE IF NOT EXISTS entity_rows (
    id         BIGSERIAL PRIMARY KEY,
    entity_id  TEXT NOT NULL,
    data       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_entity_rows_entity ON entity_rows(entity_id);
`

func (d *PostgresDialect) SchemaSQL() string {
	return postgresSchemaSQL
}

func (d *PostgresDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	// With pgx/stdlib the underlying error message includes the PG code.
	errStr := err.Error()
	if strings.Contains(errStr, "23505") || strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "duplicate key") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}
