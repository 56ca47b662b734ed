package siggraph

import (
	"fmt"
	"sort"

	"gosigtest/domain/core"
)

// Reduction is the result of TransitiveReduce.
type Reduction struct {
	Graph *Digraph
	// Cycles lists the strongly connected components with more than one
	// node, each sorted ascending. Significance should order systems
	// strictly, so any entry here is a data anomaly.
	Cycles [][]int
}

// Acyclic reports whether the input digraph had no cycles.
func (r Reduction) Acyclic() bool { return len(r.Cycles) == 0 }

// Warning returns nil for an acyclic input and otherwise an error wrapping
// core.ErrCycleDetected that names the offending components. The reduced
// graph is still returned in that case; it is not repaired.
func (r Reduction) Warning() error {
	if r.Acyclic() {
		return nil
	}
	return fmt.Errorf("%w: components %v", core.ErrCycleDetected, r.Cycles)
}

// TransitiveReduce removes every edge u → v for which another path from u
// to v exists.
//
// For an acyclic input the result is the unique transitive reduction: it
// has the same reachability as the input and reducing it again changes
// nothing. A cyclic input carries no such guarantee. An edge is dropped
// whenever u reaches v through a different successor, so reachability out
// of a cycle may be lost; two-node cycles survive. Reduction.Warning
// reports the cycles.
func TransitiveReduce(g *Digraph) Reduction {
	n := g.N()
	reach := make([][]bool, n)
	for w := 0; w < n; w++ {
		reach[w] = reachableFrom(g, w)
	}

	out := newDigraph(n)
	for u := 0; u < n; u++ {
		succ := g.Successors(u)
		for _, v := range succ {
			redundant := false
			for _, w := range succ {
				if w != v && reach[w][v] {
					redundant = true
					break
				}
			}
			if !redundant {
				out.adj[u][v] = true
			}
		}
	}
	return Reduction{Graph: out, Cycles: StronglyConnected(g)}
}

// reachableFrom marks the nodes reachable from s by a path of one or more edges.
func reachableFrom(g *Digraph, s int) []bool {
	seen := make([]bool, g.N())
	stack := append([]int(nil), g.Successors(s)...)
	for _, v := range stack {
		seen[v] = true
	}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, v := range g.Successors(u) {
			if !seen[v] {
				seen[v] = true
				stack = append(stack, v)
			}
		}
	}
	return seen
}

// StronglyConnected returns the strongly connected components of g that
// contain more than one node, using Tarjan's algorithm.
func StronglyConnected(g *Digraph) [][]int {
	n := g.N()
	t := &tarjan{
		g:       g,
		index:   make([]int, n),
		low:     make([]int, n),
		onStack: make([]bool, n),
	}
	for i := range t.index {
		t.index[i] = -1
	}
	for v := 0; v < n; v++ {
		if t.index[v] < 0 {
			t.visit(v)
		}
	}
	sort.Slice(t.comps, func(a, b int) bool { return t.comps[a][0] < t.comps[b][0] })
	return t.comps
}

type tarjan struct {
	g       *Digraph
	next    int
	index   []int
	low     []int
	onStack []bool
	stack   []int
	comps   [][]int
}

func (t *tarjan) visit(v int) {
	t.index[v] = t.next
	t.low[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.Successors(v) {
		switch {
		case t.index[w] < 0:
			t.visit(w)
			t.low[v] = min(t.low[v], t.low[w])
		case t.onStack[w]:
			t.low[v] = min(t.low[v], t.index[w])
		}
	}

	if t.low[v] != t.index[v] {
		return
	}
	var comp []int
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		comp = append(comp, w)
		if w == v {
			break
		}
	}
	if len(comp) > 1 {
		sort.Ints(comp)
		t.comps = append(t.comps, comp)
	}
}
