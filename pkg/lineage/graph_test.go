package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_SetEdges(t *testing.T) {
	g := NewGraph()
	g.SetEdges("revenue", []string{"billing.invoices", "active_users"})
	g.SetEdges("active_users", []string{"raw.events"})

	assert.Equal(t, []string{"billing.invoices", "active_users"}, g.Dependencies("revenue"))
	assert.Equal(t, []string{"revenue"}, g.Downstream("active_users"))

	// Re-applying the same edge set is a no-op
	g.SetEdges("revenue", []string{"billing.invoices", "active_users"})
	assert.Equal(t, []string{"revenue"}, g.Downstream("active_users"))

	// Changing the edge set updates the inverse index incrementally
	g.SetEdges("revenue", []string{"billing.invoices"})
	assert.Empty(t, g.Downstream("active_users"))
	assert.Equal(t, []string{"revenue"}, g.Downstream("billing.invoices"))
}

func TestGraph_SetEdges_DeduplicatesDependencies(t *testing.T) {
	g := NewGraph()
	g.SetEdges("churn", []string{"raw.users", "raw.users"})

	assert.Equal(t, []string{"raw.users"}, g.Dependencies("churn"))
}

func TestGraph_Downstream(t *testing.T) {
	g := NewGraph()
	g.SetEdges("active_users", []string{"raw.events"})
	g.SetEdges("dau", []string{"active_users"})
	g.SetEdges("wau", []string{"active_users"})
	g.SetEdges("retention", []string{"Active Users"})

	assert.Equal(t, []string{"dau", "wau"}, g.Downstream("active_users"))

	// Legacy display-name references resolve through aliases
	assert.Equal(t, []string{"dau", "retention", "wau"}, g.Downstream("active_users", "Active Users"))

	assert.Empty(t, g.Downstream("unknown_metric"))
}

func TestGraph_Remove(t *testing.T) {
	g := NewGraph()
	g.SetEdges("a", []string{"b"})
	g.SetEdges("b", []string{"raw.t"})

	g.Remove("b")

	assert.Empty(t, g.Dependencies("b"))
	assert.Empty(t, g.Downstream("raw.t"))
	// The dangling reference from a is now terminal, not fatal
	assert.Equal(t, []string{"a"}, g.Downstream("b"))
}

func TestGraph_UpstreamTree(t *testing.T) {
	g := NewGraph()
	g.SetEdges("ltv", []string{"revenue", "churn"})
	g.SetEdges("revenue", []string{"billing.invoices"})
	g.SetEdges("churn", []string{"raw.users"})

	tree := g.UpstreamTree("ltv", 3)
	require.NotNil(t, tree)
	assert.Equal(t, "ltv", tree.ID)
	assert.False(t, tree.ExternalRef)
	require.Len(t, tree.Children, 2)

	revenue := tree.Children[0]
	assert.Equal(t, "revenue", revenue.ID)
	require.Len(t, revenue.Children, 1)
	assert.Equal(t, "billing.invoices", revenue.Children[0].ID)
	assert.True(t, revenue.Children[0].ExternalRef)
	assert.Empty(t, revenue.Children[0].Children)
}

func TestGraph_UpstreamTree_DepthBounded(t *testing.T) {
	g := NewGraph()
	g.SetEdges("a", []string{"b"})
	g.SetEdges("b", []string{"c"})
	g.SetEdges("c", []string{"raw.t"})

	tree := g.UpstreamTree("a", 0)
	assert.Empty(t, tree.Children)

	tree = g.UpstreamTree("a", 1)
	require.Len(t, tree.Children, 1)
	assert.Empty(t, tree.Children[0].Children)
}

func TestGraph_UpstreamTree_CycleTerminates(t *testing.T) {
	g := NewGraph()
	g.SetEdges("a", []string{"b"})
	g.SetEdges("b", []string{"a"})

	// Traversal must terminate even though the graph holds a cycle
	tree := g.UpstreamTree("a", 10)
	require.Len(t, tree.Children, 1)
	b := tree.Children[0]
	assert.Equal(t, "b", b.ID)
	// a reappears as a child of b but does not expand itself
	require.Len(t, b.Children, 1)
	assert.Equal(t, "a", b.Children[0].ID)
	assert.Empty(t, b.Children[0].Children)
}

func TestGraph_UpstreamTree_SharedNodeOnSiblingBranches(t *testing.T) {
	g := NewGraph()
	g.SetEdges("top", []string{"left", "right"})
	g.SetEdges("left", []string{"base"})
	g.SetEdges("right", []string{"base"})
	g.SetEdges("base", []string{"raw.t"})

	// base may expand under both branches; the visited set is path-local
	tree := g.UpstreamTree("top", 5)
	require.Len(t, tree.Children, 2)
	for _, branch := range tree.Children {
		require.Len(t, branch.Children, 1)
		assert.Equal(t, "base", branch.Children[0].ID)
		assert.Len(t, branch.Children[0].Children, 1)
	}
}

func TestGraph_UpstreamTree_UnknownID(t *testing.T) {
	g := NewGraph()

	tree := g.UpstreamTree("ghost", 3)
	require.NotNil(t, tree)
	assert.True(t, tree.ExternalRef)
	assert.Empty(t, tree.Children)
}

func TestGraph_DetectCycle(t *testing.T) {
	tests := []struct {
		name     string
		edges    map[string][]string
		start    string
		expected bool
	}{
		{
			name:     "direct self reference",
			edges:    map[string][]string{"a": {"a"}},
			start:    "a",
			expected: true,
		},
		{
			name: "three node cycle",
			edges: map[string][]string{
				"a": {"b"},
				"b": {"c"},
				"c": {"a"},
			},
			start:    "a",
			expected: true,
		},
		{
			name: "dag of same size",
			edges: map[string][]string{
				"a": {"b", "c"},
				"b": {"c"},
				"c": {"raw.t"},
			},
			start:    "a",
			expected: false,
		},
		{
			name: "diamond sharing is not a cycle",
			edges: map[string][]string{
				"top":   {"left", "right"},
				"left":  {"base"},
				"right": {"base"},
				"base":  {},
			},
			start:    "top",
			expected: false,
		},
		{
			name: "cycle not reachable from start",
			edges: map[string][]string{
				"a": {"raw.t"},
				"b": {"c"},
				"c": {"b"},
			},
			start:    "a",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			for id, deps := range tt.edges {
				g.SetEdges(id, deps)
			}

			assert.Equal(t, tt.expected, g.DetectCycle(tt.start))
		})
	}
}

func TestGraph_DetectCycle_UnknownID(t *testing.T) {
	g := NewGraph()
	assert.False(t, g.DetectCycle("ghost"))
}
