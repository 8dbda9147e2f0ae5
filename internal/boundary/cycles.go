package boundary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gauge-sh/tach/internal/modtree"
)

// DetectCycles runs Tarjan's strongly-connected-components algorithm over
// the graph of non-deprecated internal edges and returns one Dependency
// error per component with more than one node, or any node with a
// self-loop, per spec.md §4.5's circular-dependency check. Grounded on the
// pack's file-level DFS-coloring cycle detector, generalized to module
// nodes and to a proper Tarjan SCC pass so every cyclic component is
// reported in one traversal instead of one DFS per unvisited start node.
func DetectCycles(edges []Edge) []Diagnostic {
	g := newGraph(edges)
	t := &tarjan{graph: g, index: make(map[modtree.DottedPath]int), lowlink: make(map[modtree.DottedPath]int), onStack: make(map[modtree.DottedPath]bool)}

	nodes := g.sortedNodes()
	for _, n := range nodes {
		if _, seen := t.index[n]; !seen {
			t.strongconnect(n)
		}
	}

	var diags []Diagnostic
	for _, comp := range t.components {
		if len(comp) > 1 || selfLoop(g, comp[0]) {
			diags = append(diags, Diagnostic{
				File:     "",
				Line:     0,
				Kind:     KindDependency,
				Severity: SeverityError,
				Message:  fmt.Sprintf("circular dependency: %s", cyclePath(g, comp)),
			})
		}
	}
	return diags
}

func selfLoop(g *graph, n modtree.DottedPath) bool {
	for _, t := range g.edges[n] {
		if t == n {
			return true
		}
	}
	return false
}

// cyclePath renders a component as an arrow-joined path back to its start,
// e.g. "a -> b -> a", by walking g's real edges rather than an arbitrary
// ordering of the component's members: the rendered path always corresponds
// to actual edges in the graph.
//
// It searches for the longest simple cycle starting at the component's
// alphabetically-smallest node (for deterministic output), preferring
// alphabetically-smaller next-hops when more than one edge is available.
// Every strongly-connected component has at least one simple cycle through
// its start node; if no cycle covers every member (possible for components
// with more complex internal structure), the longest one found is rendered.
func cyclePath(g *graph, comp []modtree.DottedPath) string {
	if len(comp) == 0 {
		return ""
	}

	members := make(map[modtree.DottedPath]bool, len(comp))
	start := comp[0]
	for _, n := range comp {
		members[n] = true
		if n < start {
			start = n
		}
	}

	sortedEdges := func(n modtree.DottedPath) []modtree.DottedPath {
		var out []modtree.DottedPath
		for _, t := range g.edges[n] {
			if members[t] {
				out = append(out, t)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		return out
	}

	visited := map[modtree.DottedPath]bool{start: true}
	path := []modtree.DottedPath{start}
	best := []modtree.DottedPath{start}

	var walk func(cur modtree.DottedPath)
	walk = func(cur modtree.DottedPath) {
		for _, t := range sortedEdges(cur) {
			if t == start && len(path) > len(best) {
				best = append([]modtree.DottedPath{}, path...)
				break
			}
		}
		if len(path) == len(members) {
			return
		}
		for _, next := range sortedEdges(cur) {
			if next == start || visited[next] {
				continue
			}
			visited[next] = true
			path = append(path, next)
			walk(next)
			path = path[:len(path)-1]
			visited[next] = false
		}
	}
	walk(start)

	parts := make([]string, 0, len(best)+1)
	for _, n := range best {
		parts = append(parts, string(n))
	}
	parts = append(parts, string(start))
	return strings.Join(parts, " -> ")
}

type graph struct {
	edges map[modtree.DottedPath][]modtree.DottedPath
	nodes map[modtree.DottedPath]bool
}

func newGraph(edges []Edge) *graph {
	g := &graph{edges: make(map[modtree.DottedPath][]modtree.DottedPath), nodes: make(map[modtree.DottedPath]bool)}
	for _, e := range edges {
		if e.Deprecated {
			continue
		}
		g.nodes[e.From] = true
		g.nodes[e.To] = true
		g.edges[e.From] = append(g.edges[e.From], e.To)
	}
	return g
}

func (g *graph) sortedNodes() []modtree.DottedPath {
	out := make([]modtree.DottedPath, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// tarjan implements the standard iterative-by-recursion SCC algorithm.
type tarjan struct {
	graph      *graph
	index      map[modtree.DottedPath]int
	lowlink    map[modtree.DottedPath]int
	onStack    map[modtree.DottedPath]bool
	stack      []modtree.DottedPath
	counter    int
	components [][]modtree.DottedPath
}

func (t *tarjan) strongconnect(v modtree.DottedPath) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph.edges[v] {
		if _, seen := t.index[w]; !seen {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var comp []modtree.DottedPath
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		t.components = append(t.components, comp)
	}
}
