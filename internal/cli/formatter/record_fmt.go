package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/daylog/internal/domain"
)

const valuesWidth = 60

// RecordRow is one line of a record listing.
type RecordRow struct {
	Category domain.Category
	Bucket   domain.DateBucket
	Record   domain.Record
}

// FormatValues renders the meaningful fields of rec as "name=value" pairs
// in schema order. Zero values are omitted.
func FormatValues(c domain.Category, rec domain.Record) string {
	var parts []string
	for _, f := range c.Schema().Fields {
		v, ok := rec.Fields[f.Name]
		if !ok || !nonZero(v) {
			continue
		}
		parts = append(parts, f.Name+"="+formatValue(f, v))
	}
	if len(parts) == 0 {
		return Dim("(empty)")
	}
	return strings.Join(parts, " ")
}

func nonZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}

func formatValue(f domain.Field, v any) string {
	switch f.Type {
	case domain.FieldNumber:
		if n, ok := v.(float64); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	case domain.FieldBool:
		return "yes"
	case domain.FieldText:
		if s, ok := v.(string); ok {
			if strings.ContainsAny(s, " \t") {
				return strconv.Quote(s)
			}
			return s
		}
	case domain.FieldTextList:
		if list, ok := v.([]any); ok {
			items := make([]string, 0, len(list))
			for _, item := range list {
				items = append(items, fmt.Sprint(item))
			}
			return "[" + strings.Join(items, ", ") + "]"
		}
	case domain.FieldItemList:
		if list, ok := v.([]any); ok {
			return formatItems(list)
		}
	}
	return fmt.Sprint(v)
}

// formatItems summarizes finance-style item lists as "2 items, 42.50".
func formatItems(list []any) string {
	total := 0.0
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			if n, ok := m["amount"].(float64); ok {
				total += n
			}
		}
	}
	noun := "items"
	if len(list) == 1 {
		noun = "item"
	}
	return fmt.Sprintf("(%d %s, %.2f)", len(list), noun, total)
}

// FormatRecords renders rows as a table, or a placeholder line when empty.
func FormatRecords(rows []RecordRow, today domain.DateBucket) string {
	if len(rows) == 0 {
		return Dim("No records.") + "\n"
	}
	headers := []string{"CATEGORY", "DAY", "TIME", "ID", "VALUES"}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			CategoryBadge(r.Category),
			RelativeDay(r.Bucket, today),
			ClockTime(r.Record.Timestamp),
			TruncID(r.Record.ID),
			Truncate(FormatValues(r.Category, r.Record), valuesWidth),
		})
	}
	return RenderTable(headers, out)
}

// FormatSchema lists every category with its declared fields.
func FormatSchema() string {
	headers := []string{"CATEGORY", "FIELDS"}
	rows := make([][]string, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		fields := make([]string, 0, len(c.Schema().Fields))
		for _, f := range c.Schema().Fields {
			fields = append(fields, fmt.Sprintf("%s:%s", f.Name, Dim(f.Type.String())))
		}
		rows = append(rows, []string{StyleFg.Render(string(c)), strings.Join(fields, " ")})
	}
	return RenderTable(headers, rows)
}
