package lineage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_Info(t *testing.T) {
	g := NewGraph()
	g.SetEdges("base", []string{"raw.events"})
	g.SetEdges("mid", []string{"base"})
	g.SetEdges("top", []string{"mid"})

	info := g.Info()
	require.NotNil(t, info)
	assert.Equal(t, 3, info.TotalMetrics)
	assert.Equal(t, 2, info.MaxLevel)
	assert.Equal(t, []string{"base"}, info.Levels[0])
	assert.Equal(t, []string{"mid"}, info.Levels[1])
	assert.Equal(t, []string{"top"}, info.Levels[2])
	assert.Equal(t, []string{"base"}, info.RootMetrics)
}

func TestGraph_Info_CyclicTerminates(t *testing.T) {
	g := NewGraph()
	g.SetEdges("a", []string{"b"})
	g.SetEdges("b", []string{"a"})

	info := g.Info()
	assert.Equal(t, 2, info.TotalMetrics)
}

func TestGraph_DOT(t *testing.T) {
	g := NewGraph()
	g.SetEdges("revenue", []string{"billing.invoices"})

	dot := g.DOT()
	assert.True(t, strings.HasPrefix(dot, "digraph lineage {"))
	assert.Contains(t, dot, `"revenue";`)
	assert.Contains(t, dot, `"billing.invoices" [shape=box, style=filled, fillcolor=lightblue];`)
	assert.Contains(t, dot, `"billing.invoices" -> "revenue";`)
	assert.True(t, strings.HasSuffix(dot, "}"))
}
