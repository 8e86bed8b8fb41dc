package lineage

import (
	"fmt"
	"sort"

	"github.com/heimdalr/dag"
)

// CycleEdge is a dependency edge that could not be admitted into an
// acyclic rebuild of the graph, meaning it closes a cycle.
type CycleEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Detail string `json:"detail"`
}

// AuditResult summarizes a whole-graph acyclicity audit.
type AuditResult struct {
	Acyclic    bool        `json:"acyclic"`
	CycleEdges []CycleEdge `json:"cycle_edges,omitempty"`
}

// Audit attempts to rebuild the current edge set into a strict DAG and
// reports every edge that would close a cycle. The lineage graph itself
// retains its cycles; the audit only reports them.
func (g *Graph) Audit() AuditResult {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	d := dag.NewDAG()
	result := AuditResult{Acyclic: true}

	vertices := make(map[string]struct{})
	addVertex := func(id string) {
		if _, ok := vertices[id]; ok {
			return
		}
		vertices[id] = struct{}{}
		// Duplicate ids cannot occur here, so the error is unreachable
		_ = d.AddVertexByID(id, id)
	}

	for _, id := range g.sortedIDs() {
		addVertex(id)
		for _, dep := range g.edges[id] {
			addVertex(dep)
		}
	}

	for _, id := range g.sortedIDs() {
		for _, dep := range g.edges[id] {
			if err := d.AddEdge(dep, id); err != nil {
				result.Acyclic = false
				result.CycleEdges = append(result.CycleEdges, CycleEdge{
					From:   id,
					To:     dep,
					Detail: fmt.Sprintf("edge %s → %s rejected: %v", dep, id, err),
				})
			}
		}
	}

	return result
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.edges))
	for id := range g.edges {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
