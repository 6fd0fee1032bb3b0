package cli

import (
	"testing"

	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectValues_SkipsBlankInputs(t *testing.T) {
	schema := domain.CategorySupplements.Schema()
	raw := make([]string, len(schema.Fields))
	flags := make([]bool, len(schema.Fields))
	flags[0] = true // iron

	values, err := collectValues(schema, raw, flags)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"iron":      true,
		"vitaminDK": false,
		"magnesium": false,
	}, values)
}

func TestCollectValues_ParsesTypedFields(t *testing.T) {
	schema := domain.CategoryStudy.Schema()
	raw := []string{"math", " 45 ", "", "chapter 3"}

	values, err := collectValues(schema, raw, make([]bool, len(raw)))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"subject":  "math",
		"duration": float64(45),
		"summary":  "chapter 3",
	}, values)
}

func TestCollectValues_RejectsBadNumber(t *testing.T) {
	schema := domain.CategorySleep.Schema()
	raw := []string{"eight", "", ""}

	_, err := collectValues(schema, raw, make([]bool, len(raw)))
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name    string
		c       domain.Category
		sets    []string
		want    map[string]any
		wantErr bool
	}{
		{
			name: "number and text",
			c:    domain.CategorySleep,
			sets: []string{"duration=7.5", "feeling=ok"},
			want: map[string]any{"duration": 7.5, "feeling": "ok"},
		},
		{
			name: "text list splits on commas",
			c:    domain.CategoryWork,
			sets: []string{"todo=a, b,,c"},
			want: map[string]any{"todo": []any{"a", "b", "c"}},
		},
		{
			name: "value may contain equals",
			c:    domain.CategoryLunch,
			sets: []string{"content=x=y"},
			want: map[string]any{"content": "x=y"},
		},
		{
			name: "bool",
			c:    domain.CategoryHousework,
			sets: []string{"garbage=true"},
			want: map[string]any{"garbage": true},
		},
		{
			name: "item list as JSON",
			c:    domain.CategoryFinance,
			sets: []string{`expenses=[{"amount":12.5}]`},
			want: map[string]any{"expenses": []any{map[string]any{"amount": 12.5}}},
		},
		{
			name: "unknown field passes through raw",
			c:    domain.CategorySleep,
			sets: []string{"snoring=loud"},
			want: map[string]any{"snoring": "loud"},
		},
		{
			name:    "missing equals",
			c:       domain.CategorySleep,
			sets:    []string{"duration"},
			wantErr: true,
		},
		{
			name:    "empty name",
			c:       domain.CategorySleep,
			sets:    []string{"=5"},
			wantErr: true,
		},
		{
			name:    "bad bool",
			c:       domain.CategoryHousework,
			sets:    []string{"garbage=maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAssignments(tt.c, tt.sets)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaylogHuhTheme(t *testing.T) {
	assert.NotNil(t, daylogHuhTheme())
}
