package server

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
)

// CamelCaseResponse rewrites all JSON object keys in outgoing responses from
// snake_case to camelCase. The core speaks canonical snake_case; this single
// edge transform keeps the admin and data surfaces consistent. Keys without
// underscores (including camelCase keys stored inside config blobs) pass
// through untouched.
func CamelCaseResponse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		ct := string(c.Response().Header.ContentType())
		if !strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}
		out, err := CamelizeJSON(body)
		if err != nil {
			// Not valid JSON after all; leave the body as-is.
			return nil
		}
		c.Response().SetBodyRaw(out)
		return nil
	}
}

// CamelizeJSON rewrites every object key in a JSON document to camelCase.
func CamelizeJSON(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return json.Marshal(camelizeValue(doc))
}

func camelizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[SnakeToCamel(k)] = camelizeValue(inner)
		}
		return out
	case []any:
		for i, inner := range val {
			val[i] = camelizeValue(inner)
		}
		return val
	default:
		return v
	}
}

// SnakeToCamel converts an underscore-separated key to camelCase. Keys
// without underscores are returned unchanged.
func SnakeToCamel(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	parts := strings.Split(key, "_")
	var b strings.Builder
	first := true
	for _, p := range parts {
		if p == "" {
			continue
		}
		if first {
			b.WriteString(p)
			first = false
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	if b.Len() == 0 {
		return key
	}
	return b.String()
}
