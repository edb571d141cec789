package store

// Dialect abstracts database-specific SQL generation and behavior.
//
// Both dialects accept $N placeholders (SQLite supports the $NNN form), so
// query text is shared; only DDL and error mapping differ.
type Dialect interface {
	// DriverName returns the database/sql driver name ("pgx" or "sqlite").
	DriverName() string

	// SchemaSQL returns the DDL for the five metadata tables.
	SchemaSQL() string

	// MapError inspects a driver error and returns a well-known sentinel
	// error if applicable.
	MapError(err error) error
}

// NewDialect creates a Dialect for the given driver name ("postgres" or "sqlite").
func NewDialect(driver string) Dialect {
	switch driver {
	case "postgres":
		return &PostgresDialect{}
	default:
		return &SQLiteDialect{}
	}
}
