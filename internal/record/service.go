package record

import (
	"context"
	"encoding/json"
	"fmt"

	"formgrid-backend/internal/meta"
	"formgrid-backend/internal/store"
)

// Service is CRUD over opaque per-entity JSON rows. Row data is schema-free;
// nothing here checks it against the entity's field definitions.
type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// List returns every row for the entity, newest id first, each as
// {id, ...data, created_at}. The stored object's keys are spread at the top
// level; id and created_at are set after the spread so they win collisions.
func (s *Service) List(ctx context.Context, entityID string) ([]map[string]any, error) {
	rows, err := store.QueryRows(ctx, s.store.DB,
		`SELECT id, data, created_at FROM entity_rows
		 WHERE LOWER(entity_id) = LOWER($1) ORDER BY id DESC`, entityID)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, spread(r))
	}
	return out, nil
}

// Get returns a single row in the same spread shape, or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, entityID string, recordID int64) (map[string]any, error) {
	row, err := store.QueryRow(ctx, s.store.DB,
		`SELECT id, data, created_at FROM entity_rows
		 WHERE id = $1 AND LOWER(entity_id) = LOWER($2)`, recordID, entityID)
	if err != nil {
		return nil, err
	}
	return spread(row), nil
}

// Create serializes the data object and inserts it, returning the generated id.
func (s *Service) Create(ctx context.Context, entityID string, data map[string]any) (int64, error) {
	blob, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("marshal row data: %w", err)
	}
	id, err := store.InsertReturningID(ctx, s.store.DB,
		"INSERT INTO entity_rows (entity_id, data) VALUES ($1, $2) RETURNING id",
		entityID, string(blob))
	if err != nil {
		return 0, fmt.Errorf("create row: %w", err)
	}
	return id, nil
}

// Update overwrites the stored JSON blob (a full replace, not a merge),
// scoped by both record id and entity id.
func (s *Service) Update(ctx context.Context, entityID string, recordID int64, data map[string]any) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal row data: %w", err)
	}
	_, err = store.Exec(ctx, s.store.DB,
		"UPDATE entity_rows SET data = $1 WHERE id = $2 AND LOWER(entity_id) = LOWER($3)",
		string(blob), recordID, entityID)
	if err != nil {
		return fmt.Errorf("update row: %w", err)
	}
	return nil
}

// Delete removes a row; deleting an absent id is a no-op.
func (s *Service) Delete(ctx context.Context, entityID string, recordID int64) error {
	_, err := store.Exec(ctx, s.store.DB,
		"DELETE FROM entity_rows WHERE id = $1 AND LOWER(entity_id) = LOWER($2)",
		recordID, entityID)
	if err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	return nil
}

func spread(row map[string]any) map[string]any {
	out := meta.ParseJSONObject(row["data"])
	out["id"] = row["id"]
	out["created_at"] = row["created_at"]
	return out
}
