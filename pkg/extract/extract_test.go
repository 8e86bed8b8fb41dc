package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternExtractor_ExtractReferences(t *testing.T) {
	tests := []struct {
		name        string
		calculation string
		expected    []string
	}{
		{
			name:        "single table reference",
			calculation: "SELECT COUNT(*) FROM raw.users",
			expected:    []string{"raw.users"},
		},
		{
			name:        "multiple references deduplicated",
			calculation: "SELECT SUM(billing.amount) FROM billing.amount JOIN raw.users",
			expected:    []string{"billing.amount", "raw.users"},
		},
		{
			name:        "uppercase input is lowercased",
			calculation: "SELECT * FROM RAW.EVENTS",
			expected:    []string{"raw.events"},
		},
		{
			name:        "no qualified references",
			calculation: "COUNT(DISTINCT user_id)",
			expected:    nil,
		},
		{
			name:        "results are sorted",
			calculation: "z_schema.z_table + a_schema.a_table",
			expected:    []string{"a_schema.a_table", "z_schema.z_table"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewPatternExtractor()
			assert.Equal(t, tt.expected, e.ExtractReferences(tt.calculation))
		})
	}
}

func TestLooksLikeSQL(t *testing.T) {
	assert.True(t, LooksLikeSQL("SELECT COUNT(*) FROM raw.users"))
	assert.True(t, LooksLikeSQL("select 1"))
	assert.False(t, LooksLikeSQL("count users today"))
}
