package facttable

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestFilterMatches(t *testing.T) {
	row := Row{
		Year:          2024,
		Period:        7,
		StatementType: "income_statement",
		Account:       "4000",
		Category:      "Revenue",
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{
			name:   "empty filter matches everything",
			filter: Filter{},
			want:   true,
		},
		{
			name:   "string equality",
			filter: Filter{"category": "Revenue"},
			want:   true,
		},
		{
			name:   "string inequality",
			filter: Filter{"category": "COGS"},
			want:   false,
		},
		{
			name:   "int equality",
			filter: Filter{"year": 2024},
			want:   true,
		},
		{
			name:   "json number equality",
			filter: Filter{"year": float64(2024)},
			want:   true,
		},
		{
			name:   "membership hit",
			filter: Filter{"account": []any{"4000", "4100"}},
			want:   true,
		},
		{
			name:   "membership miss",
			filter: Filter{"account": []any{"5000", "5100"}},
			want:   false,
		},
		{
			name:   "typed string list",
			filter: Filter{"account": []string{"4000"}},
			want:   true,
		},
		{
			name:   "typed int list",
			filter: Filter{"period": []int{6, 7, 8}},
			want:   true,
		},
		{
			name:   "json number list on int attribute",
			filter: Filter{"year": []any{float64(2023), float64(2024)}},
			want:   true,
		},
		{
			name:   "conditions are AND'ed",
			filter: Filter{"category": "Revenue", "year": 2024},
			want:   true,
		},
		{
			name:   "one failing condition rejects",
			filter: Filter{"category": "Revenue", "year": 2023},
			want:   false,
		},
		{
			name:   "unknown attribute never matches",
			filter: Filter{"cost_center": "CC-100"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(row))
		})
	}
}

func TestFilterMatchesExtraAttributes(t *testing.T) {
	row := Row{Year: 2024, Extra: map[string]string{"region": "EMEA"}}

	assert.True(t, Filter{"region": "EMEA"}.Matches(row))
	assert.False(t, Filter{"region": "APAC"}.Matches(row))
	assert.True(t, Filter{"region": []any{"APAC", "EMEA"}}.Matches(row))
}
