package store

import (
	"context"
	"fmt"
	"strings"
)

// Bootstrap creates the five metadata tables if they do not exist.
// Statements are executed one at a time; neither driver reliably accepts
// multi-statement Exec.
func (s *Store) Bootstrap(ctx context.Context) error {
	for _, stmt := range splitStatements(s.Dialect.SchemaSQL()) {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

func splitStatements(schema string) []string {
	var stmts []string
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
