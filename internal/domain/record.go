package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// TimestampLayout is the ISO-8601 form stored with every record.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is one immutable user-submitted entry. Fields hold the
// category-specific values in their JSON-decoded shape; ID and Timestamp are
// assigned by the store on append.
type Record struct {
	ID        string
	Timestamp time.Time
	Fields    map[string]any
}

// MarshalJSON flattens the record: category fields sit beside "id" and
// "timestamp" in one object.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		m[k] = v
	}
	if r.ID != "" {
		m["id"] = r.ID
	}
	if !r.Timestamp.IsZero() {
		m["timestamp"] = r.Timestamp.UTC().Format(TimestampLayout)
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts the flattened form. A malformed timestamp leaves
// Timestamp zero rather than failing the whole record.
func (r *Record) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*r = Record{Fields: m}
	if id, ok := m["id"].(string); ok {
		r.ID = id
	}
	delete(m, "id")
	if ts, ok := m["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			r.Timestamp = t
		}
	}
	delete(m, "timestamp")
	if r.Fields == nil {
		r.Fields = map[string]any{}
	}
	return nil
}

// Number returns a numeric field, or zero when missing or malformed.
func (r Record) Number(name string) float64 {
	n, ok := toFloat(r.Fields[name])
	if !ok {
		return 0
	}
	return n
}

// Text returns a text field, or "" when missing or not text.
func (r Record) Text(name string) string {
	s, _ := r.Fields[name].(string)
	return s
}

// Truthy reports whether a field holds a non-empty, non-zero, non-false value.
func (r Record) Truthy(name string) bool {
	return truthy(r.Fields[name])
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	if n, ok := toFloat(v); ok {
		return n != 0
	}
	return true
}

// Strings returns the text entries of a list field, skipping non-text items.
func (r Record) Strings(name string) []string {
	list, _ := r.Fields[name].([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Items returns the object entries of a list field as field-only records,
// skipping anything that is not an object.
func (r Record) Items(name string) []Record {
	list, _ := r.Fields[name].([]any)
	out := make([]Record, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record{Fields: m})
		}
	}
	return out
}

// FieldNames returns the record's field names, sorted.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
