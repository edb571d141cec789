package meta

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formgrid-backend/internal/config"
	"formgrid-backend/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.New(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		Path:   t.TempDir(),
		Name:   "test",
	})
	require.NoError(t, err)
	require.NoError(t, s.Bootstrap(ctx))
	t.Cleanup(s.Close)
	return s
}

func productDoc() map[string]any {
	return map[string]any{
		"id":        "products",
		"title":     "Products",
		"api":       "/api/data/products",
		"form_type": "schema",
		"columns": []any{
			// Mixed casing on purpose; sort_order out of payload order.
			map[string]any{"headerName": "Price", "field": "price", "sortOrder": 2,
				"renderer": "price", "rendererParams": map[string]any{"currencyField": "currency"}},
			map[string]any{"header_name": "Name", "field": "name", "sort_order": 1},
			map[string]any{"header_name": "Currency", "field": "currency", "sort_order": 3, "hidden": true},
		},
		"fields": []any{
			map[string]any{"name": "name", "label": "Name", "type": "text", "required": true, "sort_order": 1},
			map[string]any{"name": "price", "label": "Price", "type": "number", "sort_order": 2},
			map[string]any{"name": "currency", "label": "Currency", "type": "dynamic-select",
				"dependsOn": "price", "sort_order": 3,
				"config": map[string]any{"optionsAPI": "/api/currencies"}},
		},
		"actions": []any{
			map[string]any{"id": "archive", "label": "Archive", "type": "api",
				"api": "/api/data/products/{id}", "method": "DELETE", "confirm": true,
				"dialogOptions": map[string]any{"title": "Archive?"}},
		},
	}
}

func TestCreateFullAndGetFull(t *testing.T) {
	ctx := context.Background()
	svc := NewEntityService(newTestStore(t))

	id, err := svc.CreateFull(ctx, productDoc())
	require.NoError(t, err)
	assert.Equal(t, "products", id)

	doc, err := svc.GetFull(ctx, "products")
	require.NoError(t, err)

	assert.Equal(t, "Products", doc.Title)
	assert.Equal(t, "schema", doc.FormType)

	// Columns come back ascending by sort_order regardless of payload order.
	require.Len(t, doc.Columns, 3)
	assert.Equal(t, "Name", doc.Columns[0].HeaderName)
	assert.Equal(t, "Price", doc.Columns[1].HeaderName)
	assert.Equal(t, "Currency", doc.Columns[2].HeaderName)

	// Booleans are booleans, blob fields are objects.
	assert.False(t, doc.Columns[0].Hidden)
	assert.True(t, doc.Columns[2].Hidden)
	assert.Equal(t, map[string]any{"currencyField": "currency"}, doc.Columns[1].RendererParams)
	assert.Equal(t, map[string]any{}, doc.Columns[0].RendererParams)

	require.Len(t, doc.Fields, 3)
	assert.True(t, doc.Fields[0].Required)
	assert.False(t, doc.Fields[1].Required)
	assert.Equal(t, "price", doc.Fields[2].DependsOn)

	require.Len(t, doc.Actions, 1)
	assert.Equal(t, "archive", doc.Actions[0].ID)
	assert.True(t, doc.Actions[0].Confirm)
	assert.Equal(t, map[string]any{"title": "Archive?"}, doc.Actions[0].DialogOptions)
	assert.Equal(t, "id", doc.Actions[0].IDField)
	assert.Equal(t, map[string]any{}, doc.Actions[0].Form)
}

func TestCreateFullGeneratesActionID(t *testing.T) {
	ctx := context.Background()
	svc := NewEntityService(newTestStore(t))

	_, err := svc.CreateFull(ctx, map[string]any{
		"id": "orders", "title": "Orders", "form_type": "schema",
		"actions": []any{
			map[string]any{"label": "Ship", "type": "api",
				"api": "/api/data/orders/{id}/ship", "method": "POST"},
		},
	})
	require.NoError(t, err)

	doc, err := svc.GetFull(ctx, "orders")
	require.NoError(t, err)

	require.Len(t, doc.Actions, 1)
	assert.NotEmpty(t, doc.Actions[0].ID)
	_, err = uuid.Parse(doc.Actions[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, "Ship", doc.Actions[0].Label)
}

func TestGetFullMergesConfigToTopLevel(t *testing.T) {
	ctx := context.Background()
	svc := NewEntityService(newTestStore(t))

	_, err := svc.CreateFull(ctx, map[string]any{
		"id": "d", "title": "Items", "api": "/api/data/d", "form_type": "schema",
		"fields": []any{
			map[string]any{"name": "category", "type": "dynamic-select",
				"config": map[string]any{"optionsAPI": "/api/categories"}},
		},
	})
	require.NoError(t, err)

	doc, err := svc.GetFull(ctx, "D")
	require.NoError(t, err)
	require.Len(t, doc.Fields, 1)

	out, err := json.Marshal(doc.Fields[0])
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "/api/categories", m["optionsAPI"])
	assert.Equal(t, "category", m["name"])
	assert.NotContains(t, m, "config")
}

func TestGetCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc := NewEntityService(newTestStore(t))

	_, err := svc.CreateFull(ctx, map[string]any{"id": "Products", "title": "Products"})
	require.NoError(t, err)

	e, err := svc.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, "Products", e.ID)

	doc, err := svc.GetFull(ctx, "PRODUCTS")
	require.NoError(t, err)
	assert.Equal(t, "Products", doc.ID)
}

func TestCreateRejectsCaseVariantDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewEntityService(newTestStore(t))

	_, err := svc.CreateFull(ctx, map[string]any{"id": "A", "title": "First"})
	require.NoError(t, err)

	_, err = svc.CreateFull(ctx, map[string]any{"id": "a", "title": "Second"})
	assert.ErrorIs(t, err, store.ErrUniqueViolation)

	_, err = svc.CreateFull(ctx, map[string]any{"id": "A", "title": "Third"})
	assert.ErrorIs(t, err, store.ErrUniqueViolation)
}

func TestUpdateFullReplacesDocument(t *testing.T) {
	ctx := context.Background()
	svc := NewEntityService(newTestStore(t))

	_, err := svc.CreateFull(ctx, productDoc())
	require.NoError(t, err)

	err = svc.UpdateFull(ctx, "PRODUCTS", map[string]any{
		"title": "Catalogue", "api": "/api/data/products", "form_type": "schema",
		"columns": []any{
			map[string]any{"header_name": "SKU", "field": "sku"},
		},
	})
	require.NoError(t, err)

	doc, err := svc.GetFull(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, "Catalogue", doc.Title)
	require.Len(t, doc.Columns, 1)
	assert.Equal(t, "SKU", doc.Columns[0].HeaderName)
	assert.Empty(t, doc.Fields)
	assert.Empty(t, doc.Actions)
}

func TestUpdateFullUnknownEntity(t *testing.T) {
	ctx := context.Background()
	svc := NewEntityService(newTestStore(t))

	err := svc.UpdateFull(ctx, "ghost", map[string]any{"title": "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateFullAtomicRollback(t *testing.T) {
	ctx := context.Background()
	svc := NewEntityService(newTestStore(t))

	_, err := svc.CreateFull(ctx, productDoc())
	require.NoError(t, err)
	before, err := svc.GetFull(ctx, "products")
	require.NoError(t, err)

	// Two actions with the same id violate the (entity_id, id) primary key
	// on the second insert, after the old dependents were already deleted
	// and new columns inserted. The whole call must roll back.
	err = svc.UpdateFull(ctx, "products", map[string]any{
		"title": "Broken",
		"columns": []any{
			map[string]any{"header_name": "New", "field": "new"},
		},
		"actions": []any{
			map[string]any{"id": "dup", "label": "One"},
			map[string]any{"id": "dup", "label": "Two"},
		},
	})
	require.Error(t, err)

	after, err := svc.GetFull(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Columns, after.Columns)
	assert.Equal(t, before.Fields, after.Fields)
	assert.Equal(t, before.Actions, after.Actions)
}

func TestUpdateFullRoundTripIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewEntityService(newTestStore(t))

	_, err := svc.CreateFull(ctx, productDoc())
	require.NoError(t, err)

	first, err := svc.GetFull(ctx, "products")
	require.NoError(t, err)

	// Re-submit the document exactly as read back.
	raw, err := json.Marshal(first)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.NoError(t, svc.UpdateFull(ctx, "products", doc))

	second, err := svc.GetFull(ctx, "products")
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
}

func TestDeleteRemovesEntityAndDependents(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewEntityService(st)

	_, err := svc.CreateFull(ctx, productDoc())
	require.NoError(t, err)
	_, err = store.Exec(ctx, st.DB,
		"INSERT INTO entity_rows (entity_id, data) VALUES ($1, $2)",
		"products", `{"name":"Widget"}`)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "PRODUCTS"))

	entities, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entities)

	_, err = svc.Get(ctx, "products")
	assert.ErrorIs(t, err, store.ErrNotFound)

	cols, err := NewColumnService(st).List(ctx, "products")
	require.NoError(t, err)
	assert.Empty(t, cols)

	fields, err := NewFieldService(st).List(ctx, "products")
	require.NoError(t, err)
	assert.Empty(t, fields)

	rows, err := store.QueryRows(ctx, st.DB,
		"SELECT id FROM entity_rows WHERE entity_id = $1", "products")
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Deleting again is a no-op, not an error.
	assert.NoError(t, svc.Delete(ctx, "products"))
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewEntityService(st)

	// Explicit timestamps: same-second inserts would tie otherwise.
	for _, e := range []struct{ id, created string }{
		{"old", "2024-01-01 10:00:00"},
		{"new", "2024-06-01 10:00:00"},
	} {
		_, err := store.Exec(ctx, st.DB,
			"INSERT INTO entities (id, title, created_at) VALUES ($1, $2, $3)",
			e.id, e.id, e.created)
		require.NoError(t, err)
	}

	entities, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "new", entities[0].ID)
	assert.Equal(t, "old", entities[1].ID)

	full, err := svc.ListFull(ctx)
	require.NoError(t, err)
	require.Len(t, full, 2)
	assert.Equal(t, "new", full[0].ID)
}

func TestMalformedStoredJSONRecoveredAsEmptyObject(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewEntityService(st)

	_, err := svc.CreateFull(ctx, map[string]any{"id": "e", "title": "E"})
	require.NoError(t, err)
	_, err = store.Exec(ctx, st.DB,
		`INSERT INTO entity_fields (entity_id, name, config, sort_order) VALUES ($1, $2, $3, $4)`,
		"e", "broken", `{"unterminated`, 0)
	require.NoError(t, err)

	doc, err := svc.GetFull(ctx, "e")
	require.NoError(t, err)
	require.Len(t, doc.Fields, 1)
	assert.Equal(t, map[string]any{}, doc.Fields[0].Config)
}
