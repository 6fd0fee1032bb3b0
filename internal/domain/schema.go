package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldType is the primitive shape of a record field.
type FieldType int

const (
	FieldNumber FieldType = iota
	FieldText
	FieldBool
	FieldTextList // list of strings
	FieldItemList // list of objects described by Field.Items
	FieldObject   // free-form object
)

func (t FieldType) String() string {
	switch t {
	case FieldNumber:
		return "number"
	case FieldText:
		return "text"
	case FieldBool:
		return "bool"
	case FieldTextList:
		return "text-list"
	case FieldItemList:
		return "item-list"
	case FieldObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field declares one named value of a category schema.
type Field struct {
	Name  string
	Type  FieldType
	Items []Field // sub-schema for FieldItemList
}

// Schema is the declared value shape of a category.
type Schema struct {
	Fields []Field
}

// Lookup returns the declared field with the given name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// reserved names are assigned by the store, never by callers.
var reserved = map[string]bool{"id": true, "timestamp": true}

// Validate checks values against the schema and returns a normalized copy in
// the JSON-decoded representation (float64, string, bool, []any,
// map[string]any). Unknown fields and type mismatches are rejected; missing
// fields are allowed and default-filled on read.
func (s Schema) Validate(values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for name, v := range values {
		if reserved[name] {
			return nil, fmt.Errorf("%w: field %q is assigned automatically", ErrInvalidRecord, name)
		}
		f, ok := s.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidRecord, name)
		}
		nv, err := normalize(f, v)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidRecord, name, err)
		}
		out[name] = nv
	}
	return out, nil
}

// Fill sets every declared field missing from values to its zero value.
func (s Schema) Fill(values map[string]any) {
	for _, f := range s.Fields {
		if _, ok := values[f.Name]; !ok {
			values[f.Name] = zeroValue(f.Type)
		}
	}
}

func zeroValue(t FieldType) any {
	switch t {
	case FieldNumber:
		return float64(0)
	case FieldText:
		return ""
	case FieldBool:
		return false
	case FieldTextList, FieldItemList:
		return []any{}
	default:
		return map[string]any{}
	}
}

func normalize(f Field, v any) (any, error) {
	switch f.Type {
	case FieldNumber:
		n, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("want number, got %T", v)
		}
		return n, nil
	case FieldText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want text, got %T", v)
		}
		return s, nil
	case FieldBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", v)
		}
		return b, nil
	case FieldTextList:
		switch list := v.(type) {
		case []string:
			out := make([]any, len(list))
			for i, s := range list {
				out[i] = s
			}
			return out, nil
		case []any:
			out := make([]any, len(list))
			for i, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("item %d: want text, got %T", i, item)
				}
				out[i] = s
			}
			return out, nil
		}
		return nil, fmt.Errorf("want text list, got %T", v)
	case FieldItemList:
		var items []map[string]any
		switch list := v.(type) {
		case []map[string]any:
			items = list
		case []any:
			for i, item := range list {
				m, ok := item.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("item %d: want object, got %T", i, item)
				}
				items = append(items, m)
			}
		default:
			return nil, fmt.Errorf("want item list, got %T", v)
		}
		sub := Schema{Fields: f.Items}
		out := make([]any, 0, len(items))
		for i, item := range items {
			nm, err := sub.Validate(withoutReserved(item))
			if err != nil {
				return nil, fmt.Errorf("item %d: %v", i, err)
			}
			if id, ok := item["id"]; ok {
				n, ok := toFloat(id)
				if !ok {
					return nil, fmt.Errorf("item %d: id: want number, got %T", i, id)
				}
				nm["id"] = n
			}
			out = append(out, nm)
		}
		return out, nil
	case FieldObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("want object, got %T", v)
		}
		// Round-trip through JSON so nested values share the decoded shape.
		data, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported field type %s", f.Type)
}

// withoutReserved drops the item-level "id" so the sub-schema check does not
// reject it; item ids are numbered by the caller.
func withoutReserved(item map[string]any) map[string]any {
	out := make(map[string]any, len(item))
	for k, v := range item {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ParseValue converts a textual form value into the field's type. Lists are
// split on commas; objects must be JSON.
func ParseValue(f Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Type {
	case FieldNumber:
		if raw == "" {
			return float64(0), nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %q is not a number", ErrInvalidRecord, f.Name, raw)
		}
		return n, nil
	case FieldText:
		return raw, nil
	case FieldBool:
		if raw == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %q is not a boolean", ErrInvalidRecord, f.Name, raw)
		}
		return b, nil
	case FieldTextList:
		out := []any{}
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	default:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidRecord, f.Name, err)
		}
		return v, nil
	}
}
