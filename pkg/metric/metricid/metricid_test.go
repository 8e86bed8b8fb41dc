package metricid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple name", input: "Revenue", expected: "revenue"},
		{name: "spaces become underscores", input: "Active Users", expected: "active_users"},
		{name: "mixed case multi word", input: "Revenue per Customer", expected: "revenue_per_customer"},
		{name: "surrounding whitespace trimmed", input: "  Churn Rate  ", expected: "churn_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Derive(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestDerive_EmptyName(t *testing.T) {
	_, err := Derive("   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestIsTableReference(t *testing.T) {
	assert.True(t, IsTableReference("raw.users"))
	assert.True(t, IsTableReference("subscriptions.active"))
	assert.False(t, IsTableReference("active_users"))
}
