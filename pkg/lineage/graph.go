// Package lineage maintains the directed dependency graph over metric
// identifiers and external table references. Unlike a build DAG, the
// lineage graph must be able to hold cyclic edge sets: cycles are
// detected and reported as findings, never rejected at insert time.
package lineage

import (
	"sort"
	"sync"
)

// TreeNode is one node of a depth-bounded upstream dependency tree.
type TreeNode struct {
	ID          string      `json:"id"`
	ExternalRef bool        `json:"external_ref"`
	Children    []*TreeNode `json:"children,omitempty"`
}

// Graph manages dependency edges between metrics and external references.
type Graph struct {
	mutex sync.RWMutex

	// edges maps a metric id to its dependency references
	edges map[string][]string
	// inverse maps a reference to the set of metric ids depending on it,
	// maintained incrementally so downstream lookups avoid full scans
	inverse map[string]map[string]struct{}
}

// NewGraph creates an empty lineage graph.
func NewGraph() *Graph {
	return &Graph{
		edges:   make(map[string][]string),
		inverse: make(map[string]map[string]struct{}),
	}
}

// SetEdges registers the full dependency set for a metric, replacing any
// previous edges. Re-applying an identical edge set is a no-op; on change
// the inverse index is updated incrementally.
func (g *Graph) SetEdges(id string, deps []string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	for _, old := range g.edges[id] {
		if dependents, ok := g.inverse[old]; ok {
			delete(dependents, id)
			if len(dependents) == 0 {
				delete(g.inverse, old)
			}
		}
	}

	set := make([]string, 0, len(deps))
	seen := make(map[string]struct{}, len(deps))
	for _, dep := range deps {
		if _, ok := seen[dep]; ok {
			continue
		}
		seen[dep] = struct{}{}
		set = append(set, dep)

		if g.inverse[dep] == nil {
			g.inverse[dep] = make(map[string]struct{})
		}
		g.inverse[dep][id] = struct{}{}
	}

	g.edges[id] = set
}

// Remove deletes a metric and its outgoing edges from the graph.
// Incoming references from other metrics are left in place; they become
// dangling external-style references, which is valid and terminal.
func (g *Graph) Remove(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	for _, dep := range g.edges[id] {
		if dependents, ok := g.inverse[dep]; ok {
			delete(dependents, id)
			if len(dependents) == 0 {
				delete(g.inverse, dep)
			}
		}
	}

	delete(g.edges, id)
}

// Dependencies returns the direct dependency references of a metric.
// Unknown ids yield an empty result.
func (g *Graph) Dependencies(id string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	deps := make([]string, len(g.edges[id]))
	copy(deps, g.edges[id])

	return deps
}

// Downstream returns the sorted metric ids whose dependency set contains
// any of the given references. Callers pass the metric id plus any legacy
// aliases (such as the display name) it may be referenced by.
func (g *Graph) Downstream(refs ...string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	seen := make(map[string]struct{})
	for _, ref := range refs {
		for id := range g.inverse[ref] {
			seen[id] = struct{}{}
		}
	}

	dependents := make([]string, 0, len(seen))
	for id := range seen {
		dependents = append(dependents, id)
	}

	sort.Strings(dependents)

	return dependents
}

// UpstreamTree builds a depth-bounded tree of dependencies starting at id.
// A node expands only if it is itself a known metric; external references
// are leaves. The visited set is local to the current path, so a node may
// appear again along a sibling branch but can never expand itself.
// maxDepth counts whole levels; zero returns the node with no children.
func (g *Graph) UpstreamTree(id string, maxDepth int) *TreeNode {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	_, known := g.edges[id]
	root := &TreeNode{ID: id, ExternalRef: !known}
	onPath := map[string]struct{}{id: {}}
	g.expand(root, maxDepth, onPath)

	return root
}

func (g *Graph) expand(node *TreeNode, depth int, onPath map[string]struct{}) {
	if depth <= 0 || node.ExternalRef {
		return
	}

	for _, dep := range g.edges[node.ID] {
		_, known := g.edges[dep]
		child := &TreeNode{ID: dep, ExternalRef: !known}
		node.Children = append(node.Children, child)

		if _, seen := onPath[dep]; seen {
			continue
		}

		onPath[dep] = struct{}{}
		g.expand(child, depth-1, onPath)
		delete(onPath, dep)
	}
}

// DetectCycle reports whether a directed cycle is reachable from id,
// including a direct self-reference. Traversal uses an explicit path set
// with push-before-recurse/pop-after-return, giving linear-time behavior.
// Unknown ids degrade gracefully to false.
func (g *Graph) DetectCycle(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if _, known := g.edges[id]; !known {
		return false
	}

	onPath := make(map[string]struct{})
	safe := make(map[string]struct{})

	return g.walk(id, onPath, safe)
}

func (g *Graph) walk(id string, onPath, safe map[string]struct{}) bool {
	if _, ok := safe[id]; ok {
		return false
	}
	if _, seen := onPath[id]; seen {
		return true
	}

	onPath[id] = struct{}{}
	defer delete(onPath, id)

	for _, dep := range g.edges[id] {
		// External references are terminal and cannot close a cycle
		if _, known := g.edges[dep]; !known {
			continue
		}
		if g.walk(dep, onPath, safe) {
			return true
		}
	}

	safe[id] = struct{}{}

	return false
}

// MetricIDs returns all known metric ids in the graph, sorted.
func (g *Graph) MetricIDs() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ids := make([]string, 0, len(g.edges))
	for id := range g.edges {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
