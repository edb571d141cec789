package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Sample catalogue mirroring the demo frontend: one schema-driven entity and
// one component-backed entity. Seeding is idempotent: entities are upserted,
// dependents and rows are deleted and reinserted.

type seedEntity struct {
	id, title, api, formType, component string

	columns []seedColumn
	fields  []seedField
	actions []seedAction
	rows    []string // raw JSON blobs
}

type seedColumn struct {
	header, field, renderer, params string
	hidden                          bool
}

type seedField struct {
	name, label, typ, dependsOn, config string
	required                            bool
}

type seedAction struct {
	id, label, tooltip, typ, icon, iconColor string
	form, api, method, handler, dialog       string
	confirm                                  bool
}

var seedCatalogue = []seedEntity{
	{
		id: "a", title: "Schema Form A", api: "/api/data/a", formType: "schema",
		columns: []seedColumn{
			{header: "Name", field: "name"},
			{header: "Age", field: "age"},
			{header: "Country", field: "country"},
			{header: "State", field: "state"},
			{header: "BirthDate", field: "birthDate"},
			{header: "Salary", field: "salary", renderer: "price", params: `{"currencyField":"currency"}`},
			{header: "Currency", field: "currency", hidden: true},
		},
		fields: []seedField{
			{name: "name", label: "Name", typ: "text", required: true},
			{name: "age", label: "Age", typ: "number"},
			{name: "country", label: "Country", typ: "dynamic-select",
				config: `{"optionsAPI":"/api/countries","optionLabel":"name","optionValue":"code"}`},
			{name: "state", label: "State", typ: "dynamic-select", dependsOn: "country",
				config: `{"optionsAPI":"/api/states?country={country}","optionLabel":"name","optionValue":"code"}`},
			{name: "birthDate", label: "Birth Date", typ: "date"},
			{name: "salary", label: "Salary", typ: "number"},
			{name: "currency", label: "Currency", typ: "select",
				config: `{"options":[{"label":"USD","value":"USD"},{"label":"EUR","value":"EUR"},{"label":"GBP","value":"GBP"},{"label":"INR","value":"INR"}],"optionLabel":"label","optionValue":"value"}`},
		},
		actions: []seedAction{
			{id: "viewDetails", label: "View Details", tooltip: "View detailed information",
				typ: "form", icon: "info", iconColor: "primary",
				form: `{"type":"schema","fields":[{"name":"name","label":"Name","type":"text","readOnly":true},{"name":"age","label":"Age","type":"number","readOnly":true}]}`},
			{id: "deactivate", label: "Deactivate", tooltip: "Deactivate this record",
				typ: "api", icon: "block", iconColor: "warning",
				api: "/api/data/a/{id}", method: "DELETE", confirm: true,
				dialog: `{"title":"Deactivate record","content":"This record will be removed."}`},
		},
		rows: []string{
			`{"name":"John Doe","age":30,"country":"US","state":"NY","birthDate":"1993-05-15","salary":60000,"currency":"USD"}`,
			`{"name":"Jane Smith","age":25,"country":"US","state":"NJ","birthDate":"1998-08-22","salary":75000,"currency":"USD"}`,
			`{"name":"Alice Johnson","age":28,"country":"US","state":"NC","birthDate":"1995-12-03","salary":80000,"currency":"USD"}`,
			`{"name":"Bob Brown","age":41,"country":"IN","state":"KA","birthDate":"1982-11-11","salary":1200000,"currency":"INR"}`,
		},
	},
	{
		id: "b", title: "Custom Form B", api: "/api/data/b", formType: "component", component: "FormB",
		columns: []seedColumn{
			{header: "Product", field: "product"},
			{header: "Quantity", field: "quantity"},
			{header: "Price", field: "price", renderer: "price", params: `{"currencyField":"currency"}`},
			{header: "Currency", field: "currency", hidden: true},
		},
		fields: []seedField{
			{name: "product", label: "Product", typ: "text", required: true},
			{name: "quantity", label: "Quantity", typ: "number"},
			{name: "price", label: "Price", typ: "number"},
		},
		rows: []string{
			`{"product":"Laptop","quantity":2,"price":1200,"currency":"USD"}`,
			`{"product":"Monitor","quantity":5,"price":300,"currency":"USD"}`,
		},
	},
}

// Seed installs the sample catalogue inside one transaction.
func (s *Store) Seed(ctx context.Context) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		for _, e := range seedCatalogue {
			if err := seedOne(ctx, tx, e); err != nil {
				return fmt.Errorf("seed entity %s: %w", e.id, err)
			}
		}
		return nil
	})
}

func seedOne(ctx context.Context, tx *sql.Tx, e seedEntity) error {
	_, err := Exec(ctx, tx,
		`INSERT INTO entities (id, title, api, form_type, component)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT(id) DO UPDATE SET title = $2, api = $3, form_type = $4, component = $5`,
		e.id, e.title, e.api, e.formType, e.component)
	if err != nil {
		return err
	}

	for _, table := range []string{"entity_columns", "entity_fields", "entity_actions", "entity_rows"} {
		if _, err := Exec(ctx, tx, "DELETE FROM "+table+" WHERE entity_id = $1", e.id); err != nil {
			return err
		}
	}

	for i, c := range e.columns {
		params := c.params
		if params == "" {
			params = "{}"
		}
		if _, err := Exec(ctx, tx,
			`INSERT INTO entity_columns (entity_id, header_name, field, renderer, renderer_params, hidden, sort_order)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.id, c.header, c.field, c.renderer, params, c.hidden, i); err != nil {
			return err
		}
	}

	for i, f := range e.fields {
		config := f.config
		if config == "" {
			config = "{}"
		}
		if _, err := Exec(ctx, tx,
			`INSERT INTO entity_fields (entity_id, name, label, type, required, depends_on, config, sort_order)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.id, f.name, f.label, f.typ, f.required, f.dependsOn, config, i); err != nil {
			return err
		}
	}

	for _, a := range e.actions {
		form := a.form
		if form == "" {
			form = "{}"
		}
		dialog := a.dialog
		if dialog == "" {
			dialog = "{}"
		}
		if _, err := Exec(ctx, tx,
			`INSERT INTO entity_actions (id, entity_id, label, tooltip, type, icon, icon_color,
			                             form, api, method, handler, confirm, dialog_options, id_field)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'id')`,
			a.id, e.id, a.label, a.tooltip, a.typ, a.icon, a.iconColor,
			form, a.api, a.method, a.handler, a.confirm, dialog); err != nil {
			return err
		}
	}

	for _, data := range e.rows {
		if _, err := Exec(ctx, tx,
			"INSERT INTO entity_rows (entity_id, data) VALUES ($1, $2)", e.id, data); err != nil {
			return err
		}
	}

	return nil
}
