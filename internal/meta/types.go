package meta

import (
	"encoding/json"
	"time"
)

// Entity is the shallow entity record.
type Entity struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	API       string    `json:"api"`
	FormType  string    `json:"form_type"`
	Component string    `json:"component,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FullEntity is the nested document: an entity plus all its columns, fields
// and actions.
type FullEntity struct {
	Entity
	Columns []Column `json:"columns"`
	Fields  []Field  `json:"fields"`
	Actions []Action `json:"actions"`
}

// Column is a single table/grid display definition.
type Column struct {
	ID             int64          `json:"id"`
	HeaderName     string         `json:"header_name"`
	Field          string         `json:"field"`
	Renderer       string         `json:"renderer,omitempty"`
	RendererParams map[string]any `json:"renderer_params"`
	Hidden         bool           `json:"hidden"`
	SortOrder      int            `json:"sort_order"`
}

// Field is a single form input definition. Config is an extension bag whose
// keys are spread into the top-level JSON representation; the named struct
// fields can never be shadowed by it.
type Field struct {
	ID        int64
	Name      string
	Label     string
	Type      string
	Required  bool
	DependsOn string
	SortOrder int
	Config    map[string]any
}

func (f Field) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":         f.ID,
		"name":       f.Name,
		"label":      f.Label,
		"type":       f.Type,
		"required":   f.Required,
		"depends_on": f.DependsOn,
		"sort_order": f.SortOrder,
	}
	MergeConfig(out, f.Config)
	return json.Marshal(out)
}

// Action is a row-level operation definition.
type Action struct {
	ID            string         `json:"id"`
	Label         string         `json:"label"`
	Tooltip       string         `json:"tooltip,omitempty"`
	Type          string         `json:"type"`
	Icon          string         `json:"icon,omitempty"`
	IconColor     string         `json:"icon_color,omitempty"`
	Form          map[string]any `json:"form"`
	API           string         `json:"api,omitempty"`
	Method        string         `json:"method,omitempty"`
	Handler       string         `json:"handler,omitempty"`
	Confirm       bool           `json:"confirm"`
	DialogOptions map[string]any `json:"dialog_options"`
	IDField       string         `json:"id_field"`
}

func timeOf(v any) time.Time {
	if t, ok := v.(time.Time); ok {
		return t
	}
	return time.Time{}
}
