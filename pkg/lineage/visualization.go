package lineage

import (
	"fmt"
	"sort"
	"strings"
)

// GraphInfo contains lineage visualization information.
type GraphInfo struct {
	Levels       map[int][]string
	MaxLevel     int
	RootMetrics  []string
	TotalMetrics int
}

// Info returns level and root summaries for the graph. Metrics involved
// in a cycle stabilize at the level reached when propagation stops.
func (g *Graph) Info() *GraphInfo {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	levels := g.calculateLevels()

	levelGroups := make(map[int][]string)
	maxLevel := 0
	for id, level := range levels {
		if level > maxLevel {
			maxLevel = level
		}
		levelGroups[level] = append(levelGroups[level], id)
	}

	for level := range levelGroups {
		sort.Strings(levelGroups[level])
	}

	return &GraphInfo{
		Levels:       levelGroups,
		MaxLevel:     maxLevel,
		RootMetrics:  g.findRoots(),
		TotalMetrics: len(g.edges),
	}
}

// calculateLevels assigns each metric a dependency depth level. Iteration
// is capped at the vertex count so cyclic graphs terminate.
func (g *Graph) calculateLevels() map[string]int {
	levels := make(map[string]int)
	for id := range g.edges {
		levels[id] = 0
	}

	for range g.edges {
		changed := false
		for id := range g.edges {
			maxDepLevel := -1
			for _, dep := range g.edges[id] {
				if depLevel, exists := levels[dep]; exists && depLevel > maxDepLevel {
					maxDepLevel = depLevel
				}
			}

			if maxDepLevel >= 0 && maxDepLevel+1 > levels[id] {
				levels[id] = maxDepLevel + 1
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return levels
}

// findRoots finds all metrics that depend only on external references.
func (g *Graph) findRoots() []string {
	roots := []string{}
	for id, deps := range g.edges {
		isRoot := true
		for _, dep := range deps {
			if _, known := g.edges[dep]; known {
				isRoot = false
				break
			}
		}
		if isRoot {
			roots = append(roots, id)
		}
	}

	sort.Strings(roots)

	return roots
}

// DOT generates a DOT format representation of the lineage graph.
// External table references are drawn as filled boxes.
func (g *Graph) DOT() string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var sb strings.Builder
	sb.WriteString("digraph lineage {\n")
	sb.WriteString("  rankdir=LR;\n")

	externals := make(map[string]struct{})
	for _, id := range g.sortedIDs() {
		fmt.Fprintf(&sb, "  %q;\n", id)
		for _, dep := range g.edges[id] {
			if _, known := g.edges[dep]; !known {
				externals[dep] = struct{}{}
			}
		}
	}

	externalIDs := make([]string, 0, len(externals))
	for id := range externals {
		externalIDs = append(externalIDs, id)
	}
	sort.Strings(externalIDs)
	for _, id := range externalIDs {
		fmt.Fprintf(&sb, "  %q [shape=box, style=filled, fillcolor=lightblue];\n", id)
	}

	for _, id := range g.sortedIDs() {
		for _, dep := range g.edges[id] {
			fmt.Fprintf(&sb, "  %q -> %q;\n", dep, id)
		}
	}

	sb.WriteString("}")

	return sb.String()
}
