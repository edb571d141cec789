package meta

import (
	"context"
	"fmt"

	"formgrid-backend/internal/store"
)

// ColumnService is narrow CRUD over one entity's column rows, used by the
// per-tab admin flow rather than the full-document editor.
type ColumnService struct {
	store *store.Store
}

func NewColumnService(s *store.Store) *ColumnService {
	return &ColumnService{store: s}
}

// List returns the entity's columns ordered by sort_order, with
// renderer_params parsed and hidden as a boolean.
func (s *ColumnService) List(ctx context.Context, entityID string) ([]Column, error) {
	rows, err := store.QueryRows(ctx, s.store.DB,
		`SELECT id, header_name, field, renderer, renderer_params, hidden, sort_order
		 FROM entity_columns WHERE LOWER(entity_id) = LOWER($1)
		 ORDER BY sort_order, id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	cols := make([]Column, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, columnFromRow(r))
	}
	return cols, nil
}

// Create inserts a column and returns the generated id.
func (s *ColumnService) Create(ctx context.Context, entityID string, payload map[string]any) (int64, error) {
	id, err := store.InsertReturningID(ctx, s.store.DB,
		`INSERT INTO entity_columns (entity_id, header_name, field, renderer, renderer_params, hidden, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		entityID,
		StringOf(Pick(payload, "header_name", "headerName")),
		StringOf(payload["field"]),
		StringOf(payload["renderer"]),
		MarshalJSONObject(Pick(payload, "renderer_params", "rendererParams")),
		BoolOf(payload["hidden"]),
		sortOrderOf(payload, 0))
	if err != nil {
		return 0, fmt.Errorf("create column: %w", err)
	}
	return id, nil
}

// Update overwrites a column row, scoped by both column id and entity id so a
// colliding id from another entity can never be touched.
func (s *ColumnService) Update(ctx context.Context, entityID string, columnID int64, payload map[string]any) error {
	_, err := store.Exec(ctx, s.store.DB,
		`UPDATE entity_columns
		 SET header_name = $1, field = $2, renderer = $3, renderer_params = $4, hidden = $5, sort_order = $6
		 WHERE id = $7 AND LOWER(entity_id) = LOWER($8)`,
		StringOf(Pick(payload, "header_name", "headerName")),
		StringOf(payload["field"]),
		StringOf(payload["renderer"]),
		MarshalJSONObject(Pick(payload, "renderer_params", "rendererParams")),
		BoolOf(payload["hidden"]),
		sortOrderOf(payload, 0),
		columnID, entityID)
	if err != nil {
		return fmt.Errorf("update column: %w", err)
	}
	return nil
}

// Delete removes a column; deleting an absent id is a no-op.
func (s *ColumnService) Delete(ctx context.Context, entityID string, columnID int64) error {
	_, err := store.Exec(ctx, s.store.DB,
		"DELETE FROM entity_columns WHERE id = $1 AND LOWER(entity_id) = LOWER($2)",
		columnID, entityID)
	if err != nil {
		return fmt.Errorf("delete column: %w", err)
	}
	return nil
}
