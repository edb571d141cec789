package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formgrid-backend/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := New(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		Path:   t.TempDir(),
		Name:   "test",
	})
	require.NoError(t, err)
	require.NoError(t, s.Bootstrap(ctx))
	t.Cleanup(s.Close)
	return s
}

func TestBootstrapIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Bootstrap(ctx))

	for _, table := range []string{"entities", "entity_columns", "entity_fields", "entity_actions", "entity_rows"} {
		_, err := QueryRows(ctx, s.DB, "SELECT * FROM "+table)
		assert.NoError(t, err, table)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Seed(ctx))
	require.NoError(t, s.Seed(ctx))

	rows, err := QueryRows(ctx, s.DB, "SELECT id FROM entities ORDER BY id")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0]["id"])
	assert.Equal(t, "b", rows[1]["id"])

	// Dependents are delete-and-reinserted, not duplicated.
	cols, err := QueryRows(ctx, s.DB, "SELECT id FROM entity_columns WHERE entity_id = $1", "a")
	require.NoError(t, err)
	assert.Len(t, cols, 7)

	recs, err := QueryRows(ctx, s.DB, "SELECT id FROM entity_rows WHERE entity_id = $1", "a")
	require.NoError(t, err)
	assert.Len(t, recs, 4)
}

func TestQueryRowNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := QueryRow(ctx, s.DB, "SELECT id FROM entities WHERE id = $1", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMapErrorUniqueViolation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := Exec(ctx, s.DB, "INSERT INTO entities (id, title) VALUES ($1, $2)", "a", "A")
	require.NoError(t, err)
	_, err = Exec(ctx, s.DB, "INSERT INTO entities (id, title) VALUES ($1, $2)", "a", "A")
	require.Error(t, err)
	assert.ErrorIs(t, s.MapError(err), ErrUniqueViolation)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sentinel := errors.New("boom")
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := Exec(ctx, tx, "INSERT INTO entities (id, title) VALUES ($1, $2)", "tx", "TX"); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	_, err = QueryRow(ctx, s.DB, "SELECT id FROM entities WHERE id = $1", "tx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDatetimeParsingLimitedToCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := Exec(ctx, s.DB,
		"INSERT INTO entities (id, title) VALUES ($1, $2)", "log", "2024-01-01 10:00:00")
	require.NoError(t, err)

	row, err := QueryRow(ctx, s.DB,
		"SELECT id, title, created_at FROM entities WHERE id = $1", "log")
	require.NoError(t, err)

	// A title that looks like a timestamp stays a string.
	assert.Equal(t, "2024-01-01 10:00:00", row["title"])
	assert.IsType(t, time.Time{}, row["created_at"])
}
