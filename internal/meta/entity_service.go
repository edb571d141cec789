package meta

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"formgrid-backend/internal/store"
)

// EntityService assembles and disassembles the nested entity document.
type EntityService struct {
	store *store.Store
}

func NewEntityService(s *store.Store) *EntityService {
	return &EntityService{store: s}
}

const entityColumns = "id, title, api, form_type, component, created_at"

// List returns all shallow entity records, newest first.
func (s *EntityService) List(ctx context.Context) ([]Entity, error) {
	rows, err := store.QueryRows(ctx, s.store.DB,
		"SELECT "+entityColumns+" FROM entities ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	entities := make([]Entity, 0, len(rows))
	for _, r := range rows {
		entities = append(entities, entityFromRow(r))
	}
	return entities, nil
}

// Get returns a single shallow entity; the id match is case-insensitive.
func (s *EntityService) Get(ctx context.Context, id string) (Entity, error) {
	row, err := store.QueryRow(ctx, s.store.DB,
		"SELECT "+entityColumns+" FROM entities WHERE LOWER(id) = LOWER($1)", id)
	if err != nil {
		return Entity{}, err
	}
	return entityFromRow(row), nil
}

// GetFull returns the nested document for one entity: columns and fields
// ordered by sort_order, field config merged to the top level, action JSON
// sub-fields parsed.
func (s *EntityService) GetFull(ctx context.Context, id string) (FullEntity, error) {
	entity, err := s.Get(ctx, id)
	if err != nil {
		return FullEntity{}, err
	}
	return s.assemble(ctx, entity)
}

// ListFull returns the nested document for every entity, newest first.
func (s *EntityService) ListFull(ctx context.Context) ([]FullEntity, error) {
	entities, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	full := make([]FullEntity, 0, len(entities))
	for _, e := range entities {
		doc, err := s.assemble(ctx, e)
		if err != nil {
			return nil, err
		}
		full = append(full, doc)
	}
	return full, nil
}

func (s *EntityService) assemble(ctx context.Context, entity Entity) (FullEntity, error) {
	doc := FullEntity{
		Entity:  entity,
		Columns: []Column{},
		Fields:  []Field{},
		Actions: []Action{},
	}

	cols, err := store.QueryRows(ctx, s.store.DB,
		`SELECT id, header_name, field, renderer, renderer_params, hidden, sort_order
		 FROM entity_columns WHERE LOWER(entity_id) = LOWER($1)
		 ORDER BY sort_order, id`, entity.ID)
	if err != nil {
		return FullEntity{}, fmt.Errorf("load columns: %w", err)
	}
	for _, c := range cols {
		doc.Columns = append(doc.Columns, columnFromRow(c))
	}

	flds, err := store.QueryRows(ctx, s.store.DB,
		`SELECT id, name, label, type, required, depends_on, config, sort_order
		 FROM entity_fields WHERE LOWER(entity_id) = LOWER($1)
		 ORDER BY sort_order, id`, entity.ID)
	if err != nil {
		return FullEntity{}, fmt.Errorf("load fields: %w", err)
	}
	for _, f := range flds {
		doc.Fields = append(doc.Fields, fieldFromRow(f))
	}

	acts, err := store.QueryRows(ctx, s.store.DB,
		`SELECT id, label, tooltip, type, icon, icon_color, form, api, method,
		        handler, confirm, dialog_options, id_field
		 FROM entity_actions WHERE LOWER(entity_id) = LOWER($1)
		 ORDER BY id`, entity.ID)
	if err != nil {
		return FullEntity{}, fmt.Errorf("load actions: %w", err)
	}
	for _, a := range acts {
		doc.Actions = append(doc.Actions, actionFromRow(a))
	}

	return doc, nil
}

// CreateFull inserts a shallow entity row plus any supplied columns, fields
// and actions, all in one transaction. Case-variant duplicates are rejected:
// two entities may never differ only by id casing.
func (s *EntityService) CreateFull(ctx context.Context, doc map[string]any) (string, error) {
	id := StringOf(doc["id"])
	if id == "" {
		return "", NewAppError("INVALID_PAYLOAD", 400, "entity id is required")
	}

	err := s.store.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := store.QueryRow(ctx, tx,
			"SELECT id FROM entities WHERE LOWER(id) = LOWER($1)", id)
		if err == nil {
			return store.ErrUniqueViolation
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		_, err = store.Exec(ctx, tx,
			`INSERT INTO entities (id, title, api, form_type, component)
			 VALUES ($1, $2, $3, $4, $5)`,
			id,
			StringOf(doc["title"]),
			StringOf(doc["api"]),
			formTypeOf(doc),
			StringOf(doc["component"]))
		if err != nil {
			return s.store.MapError(err)
		}

		return insertDependents(ctx, tx, id, doc)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateFull atomically replaces the whole document: the shallow entity
// fields are updated, every existing column/field/action is deleted, and the
// supplied ones are reinserted. A failure anywhere rolls the call back,
// leaving the prior document intact. Concurrent callers race last-writer-wins
// at the storage engine's isolation level.
func (s *EntityService) UpdateFull(ctx context.Context, id string, doc map[string]any) error {
	return s.store.WithTx(ctx, func(tx *sql.Tx) error {
		// Resolve the stored id so dependents are keyed with its exact casing.
		row, err := store.QueryRow(ctx, tx,
			"SELECT id FROM entities WHERE LOWER(id) = LOWER($1)", id)
		if err != nil {
			return err
		}
		storedID := StringOf(row["id"])

		_, err = store.Exec(ctx, tx,
			`UPDATE entities SET title = $1, api = $2, form_type = $3, component = $4
			 WHERE id = $5`,
			StringOf(doc["title"]),
			StringOf(doc["api"]),
			formTypeOf(doc),
			StringOf(doc["component"]),
			storedID)
		if err != nil {
			return fmt.Errorf("update entity: %w", err)
		}

		for _, table := range []string{"entity_columns", "entity_fields", "entity_actions"} {
			if _, err := store.Exec(ctx, tx,
				"DELETE FROM "+table+" WHERE entity_id = $1", storedID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		return insertDependents(ctx, tx, storedID, doc)
	})
}

// Delete removes the entity and every dependent column, field, action and row
// in one transaction. Deleting an absent entity is a no-op.
func (s *EntityService) Delete(ctx context.Context, id string) error {
	return s.store.WithTx(ctx, func(tx *sql.Tx) error {
		row, err := store.QueryRow(ctx, tx,
			"SELECT id FROM entities WHERE LOWER(id) = LOWER($1)", id)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		storedID := StringOf(row["id"])

		for _, table := range []string{"entity_rows", "entity_actions", "entity_fields", "entity_columns", "entities"} {
			col := "entity_id"
			if table == "entities" {
				col = "id"
			}
			if _, err := store.Exec(ctx, tx,
				"DELETE FROM "+table+" WHERE "+col+" = $1", storedID); err != nil {
				return fmt.Errorf("delete from %s: %w", table, err)
			}
		}
		return nil
	})
}

// --- document disassembly ---

func insertDependents(ctx context.Context, tx *sql.Tx, entityID string, doc map[string]any) error {
	for i, c := range asList(doc["columns"]) {
		if err := insertColumn(ctx, tx, entityID, c, i); err != nil {
			return fmt.Errorf("insert column %d: %w", i, err)
		}
	}
	for i, f := range asList(doc["fields"]) {
		if err := insertField(ctx, tx, entityID, f, i); err != nil {
			return fmt.Errorf("insert field %d: %w", i, err)
		}
	}
	for i, a := range asList(doc["actions"]) {
		if err := insertAction(ctx, tx, entityID, a, i); err != nil {
			return fmt.Errorf("insert action %d: %w", i, err)
		}
	}
	return nil
}

func insertColumn(ctx context.Context, q store.Querier, entityID string, c map[string]any, pos int) error {
	args := []any{
		entityID,
		StringOf(Pick(c, "header_name", "headerName")),
		StringOf(c["field"]),
		StringOf(c["renderer"]),
		MarshalJSONObject(Pick(c, "renderer_params", "rendererParams")),
		BoolOf(c["hidden"]),
		sortOrderOf(c, pos),
	}
	// A supplied id is preserved so a replace with the same document is
	// byte-for-byte idempotent.
	if id := IntOf(c["id"]); id > 0 {
		_, err := store.Exec(ctx, q,
			`INSERT INTO entity_columns (entity_id, header_name, field, renderer, renderer_params, hidden, sort_order, id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			append(args, id)...)
		return err
	}
	_, err := store.Exec(ctx, q,
		`INSERT INTO entity_columns (entity_id, header_name, field, renderer, renderer_params, hidden, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		args...)
	return err
}

func insertField(ctx context.Context, q store.Querier, entityID string, f map[string]any, pos int) error {
	args := []any{
		entityID,
		StringOf(f["name"]),
		StringOf(f["label"]),
		fieldTypeOf(f),
		BoolOf(f["required"]),
		StringOf(Pick(f, "depends_on", "dependsOn")),
		MarshalJSONObject(FieldConfig(f)),
		sortOrderOf(f, pos),
	}
	if id := IntOf(f["id"]); id > 0 {
		_, err := store.Exec(ctx, q,
			`INSERT INTO entity_fields (entity_id, name, label, type, required, depends_on, config, sort_order, id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			append(args, id)...)
		return err
	}
	_, err := store.Exec(ctx, q,
		`INSERT INTO entity_fields (entity_id, name, label, type, required, depends_on, config, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		args...)
	return err
}

func insertAction(ctx context.Context, q store.Querier, entityID string, a map[string]any, pos int) error {
	id := StringOf(a["id"])
	if id == "" {
		id = uuid.NewString()
	}
	idField := StringOf(Pick(a, "id_field", "idField"))
	if idField == "" {
		idField = "id"
	}
	_, err := store.Exec(ctx, q,
		`INSERT INTO entity_actions (id, entity_id, label, tooltip, type, icon, icon_color,
		                             form, api, method, handler, confirm, dialog_options, id_field)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		id,
		entityID,
		StringOf(a["label"]),
		StringOf(a["tooltip"]),
		actionTypeOf(a),
		StringOf(a["icon"]),
		StringOf(Pick(a, "icon_color", "iconColor")),
		MarshalJSONObject(a["form"]),
		StringOf(a["api"]),
		StringOf(a["method"]),
		StringOf(a["handler"]),
		BoolOf(a["confirm"]),
		MarshalJSONObject(Pick(a, "dialog_options", "dialogOptions")),
		idField)
	return err
}

// --- row conversion ---

func entityFromRow(r map[string]any) Entity {
	return Entity{
		ID:        StringOf(r["id"]),
		Title:     StringOf(r["title"]),
		API:       StringOf(r["api"]),
		FormType:  StringOf(r["form_type"]),
		Component: StringOf(r["component"]),
		CreatedAt: timeOf(r["created_at"]),
	}
}

func columnFromRow(r map[string]any) Column {
	return Column{
		ID:             int64(IntOf(r["id"])),
		HeaderName:     StringOf(r["header_name"]),
		Field:          StringOf(r["field"]),
		Renderer:       StringOf(r["renderer"]),
		RendererParams: ParseJSONObject(r["renderer_params"]),
		Hidden:         BoolOf(r["hidden"]),
		SortOrder:      IntOf(r["sort_order"]),
	}
}

func fieldFromRow(r map[string]any) Field {
	return Field{
		ID:        int64(IntOf(r["id"])),
		Name:      StringOf(r["name"]),
		Label:     StringOf(r["label"]),
		Type:      StringOf(r["type"]),
		Required:  BoolOf(r["required"]),
		DependsOn: StringOf(r["depends_on"]),
		SortOrder: IntOf(r["sort_order"]),
		Config:    ParseJSONObject(r["config"]),
	}
}

func actionFromRow(r map[string]any) Action {
	idField := StringOf(r["id_field"])
	if idField == "" {
		idField = "id"
	}
	return Action{
		ID:            StringOf(r["id"]),
		Label:         StringOf(r["label"]),
		Tooltip:       StringOf(r["tooltip"]),
		Type:          StringOf(r["type"]),
		Icon:          StringOf(r["icon"]),
		IconColor:     StringOf(r["icon_color"]),
		Form:          ParseJSONObject(r["form"]),
		API:           StringOf(r["api"]),
		Method:        StringOf(r["method"]),
		Handler:       StringOf(r["handler"]),
		Confirm:       BoolOf(r["confirm"]),
		DialogOptions: ParseJSONObject(r["dialog_options"]),
		IDField:       idField,
	}
}

// --- payload helpers ---

func asList(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func sortOrderOf(m map[string]any, pos int) int {
	if v := Pick(m, "sort_order", "sortOrder"); v != nil {
		return IntOf(v)
	}
	return pos
}

func formTypeOf(doc map[string]any) string {
	ft := StringOf(Pick(doc, "form_type", "formType"))
	if ft == "" {
		ft = "schema"
	}
	return ft
}

func fieldTypeOf(f map[string]any) string {
	t := StringOf(f["type"])
	if t == "" {
		t = "text"
	}
	return t
}

func actionTypeOf(a map[string]any) string {
	t := StringOf(a["type"])
	if t == "" {
		t = "form"
	}
	return t
}
