package meta

import (
	"context"
	"fmt"

	"formgrid-backend/internal/store"
)

// FieldService is narrow CRUD over one entity's field rows. Unlike GetFull,
// it returns config as a nested object for the admin editor.
type FieldService struct {
	store *store.Store
}

func NewFieldService(s *store.Store) *FieldService {
	return &FieldService{store: s}
}

// FieldRecord is the sub-service field shape: config stays nested.
type FieldRecord struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Label     string         `json:"label"`
	Type      string         `json:"type"`
	Required  bool           `json:"required"`
	DependsOn string         `json:"depends_on"`
	Config    map[string]any `json:"config"`
	SortOrder int            `json:"sort_order"`
}

// List returns the entity's fields ordered by sort_order, with config parsed
// and required as a boolean.
func (s *FieldService) List(ctx context.Context, entityID string) ([]FieldRecord, error) {
	rows, err := store.QueryRows(ctx, s.store.DB,
		`SELECT id, name, label, type, required, depends_on, config, sort_order
		 FROM entity_fields WHERE LOWER(entity_id) = LOWER($1)
		 ORDER BY sort_order, id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	fields := make([]FieldRecord, 0, len(rows))
	for _, r := range rows {
		f := fieldFromRow(r)
		fields = append(fields, FieldRecord{
			ID:        f.ID,
			Name:      f.Name,
			Label:     f.Label,
			Type:      f.Type,
			Required:  f.Required,
			DependsOn: f.DependsOn,
			Config:    f.Config,
			SortOrder: f.SortOrder,
		})
	}
	return fields, nil
}

// Create inserts a field and returns the generated id. A top-level requiredIf
// folds into config the same way the full-document path does.
func (s *FieldService) Create(ctx context.Context, entityID string, payload map[string]any) (int64, error) {
	id, err := store.InsertReturningID(ctx, s.store.DB,
		`INSERT INTO entity_fields (entity_id, name, label, type, required, depends_on, config, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		entityID,
		StringOf(payload["name"]),
		StringOf(payload["label"]),
		fieldTypeOf(payload),
		BoolOf(payload["required"]),
		StringOf(Pick(payload, "depends_on", "dependsOn")),
		MarshalJSONObject(FieldConfig(payload)),
		sortOrderOf(payload, 0))
	if err != nil {
		return 0, fmt.Errorf("create field: %w", err)
	}
	return id, nil
}

// Update overwrites a field row, scoped by both field id and entity id.
func (s *FieldService) Update(ctx context.Context, entityID string, fieldID int64, payload map[string]any) error {
	_, err := store.Exec(ctx, s.store.DB,
		`UPDATE entity_fields
		 SET name = $1, label = $2, type = $3, required = $4, depends_on = $5, config = $6, sort_order = $7
		 WHERE id = $8 AND LOWER(entity_id) = LOWER($9)`,
		StringOf(payload["name"]),
		StringOf(payload["label"]),
		fieldTypeOf(payload),
		BoolOf(payload["required"]),
		StringOf(Pick(payload, "depends_on", "dependsOn")),
		MarshalJSONObject(FieldConfig(payload)),
		sortOrderOf(payload, 0),
		fieldID, entityID)
	if err != nil {
		return fmt.Errorf("update field: %w", err)
	}
	return nil
}

// Delete removes a field; deleting an absent id is a no-op.
func (s *FieldService) Delete(ctx context.Context, entityID string, fieldID int64) error {
	_, err := store.Exec(ctx, s.store.DB,
		"DELETE FROM entity_fields WHERE id = $1 AND LOWER(entity_id) = LOWER($2)",
		fieldID, entityID)
	if err != nil {
		return fmt.Errorf("delete field: %w", err)
	}
	return nil
}
