// Package siggraph turns a comparison matrix into graphs over system
// indices: the directed "significantly greater than" graph and the
// undirected "not significantly different" graph.
//
// Nodes are the integers 0..n-1. Both graphs keep an n×n adjacency matrix
// for O(1) edge tests and derive sorted neighbour lists on demand; n is the
// number of compared systems, which is small.
//
// Complexity:
//
//   - BuildDigraph / BuildEquivalenceGraph: O(n²)
//   - TransitiveReduce:                    O(n·(n+E))
//   - MaximalCliques:                      O(3^(n/3)) worst case
package siggraph

import (
	"fmt"
	"math"

	"gosigtest/domain/core"
	"gosigtest/domain/pairwise"
)

// DefaultThreshold is the significance level used when none is given.
const DefaultThreshold = 0.05

// Edge is a directed edge From → To.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Digraph is an immutable directed graph over nodes 0..n-1.
type Digraph struct {
	adj [][]bool
}

// NewDigraph builds a digraph with n nodes and the given edges.
func NewDigraph(n int, edges []Edge) (*Digraph, error) {
	g := newDigraph(n)
	for _, e := range edges {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n || e.From == e.To {
			return nil, fmt.Errorf("invalid edge %d→%d for %d nodes", e.From, e.To, n)
		}
		g.adj[e.From][e.To] = true
	}
	return g, nil
}

func newDigraph(n int) *Digraph {
	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	return &Digraph{adj: adj}
}

// N returns the number of nodes.
func (g *Digraph) N() int { return len(g.adj) }

// HasEdge reports whether u → v is present.
func (g *Digraph) HasEdge(u, v int) bool {
	return u >= 0 && u < len(g.adj) && v >= 0 && v < len(g.adj) && g.adj[u][v]
}

// Successors returns the out-neighbours of u in ascending order.
func (g *Digraph) Successors(u int) []int {
	var out []int
	for v, ok := range g.adj[u] {
		if ok {
			out = append(out, v)
		}
	}
	return out
}

// Edges returns all edges ordered by (From, To).
func (g *Digraph) Edges() []Edge {
	var out []Edge
	for u, row := range g.adj {
		for v, ok := range row {
			if ok {
				out = append(out, Edge{From: u, To: v})
			}
		}
	}
	return out
}

// EdgeCount returns the number of edges.
func (g *Digraph) EdgeCount() int {
	count := 0
	for _, row := range g.adj {
		for _, ok := range row {
			if ok {
				count++
			}
		}
	}
	return count
}

// Equal reports whether g and h have the same nodes and edges.
func (g *Digraph) Equal(h *Digraph) bool {
	if g.N() != h.N() {
		return false
	}
	for u := range g.adj {
		for v := range g.adj[u] {
			if g.adj[u][v] != h.adj[u][v] {
				return false
			}
		}
	}
	return true
}

// Graph is an immutable undirected graph over nodes 0..n-1.
type Graph struct {
	adj [][]bool
}

// NewGraph builds an undirected graph with n nodes and the given edges.
func NewGraph(n int, edges [][2]int) (*Graph, error) {
	g := newGraph(n)
	for _, e := range edges {
		u, v := e[0], e[1]
		if u < 0 || u >= n || v < 0 || v >= n || u == v {
			return nil, fmt.Errorf("invalid edge %d-%d for %d nodes", u, v, n)
		}
		g.adj[u][v] = true
		g.adj[v][u] = true
	}
	return g, nil
}

func newGraph(n int) *Graph {
	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	return &Graph{adj: adj}
}

// N returns the number of nodes.
func (g *Graph) N() int { return len(g.adj) }

// HasEdge reports whether the undirected edge u-v is present.
func (g *Graph) HasEdge(u, v int) bool {
	return u >= 0 && u < len(g.adj) && v >= 0 && v < len(g.adj) && g.adj[u][v]
}

// Neighbors returns the neighbours of u in ascending order.
func (g *Graph) Neighbors(u int) []int {
	var out []int
	for v, ok := range g.adj[u] {
		if ok {
			out = append(out, v)
		}
	}
	return out
}

// Edges returns each undirected edge once as (u, v) with u < v.
func (g *Graph) Edges() [][2]int {
	var out [][2]int
	for u, row := range g.adj {
		for v := u + 1; v < len(row); v++ {
			if row[v] {
				out = append(out, [2]int{u, v})
			}
		}
	}
	return out
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int { return len(g.Edges()) }

// ValidateThreshold checks that t is a usable significance level.
func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("%w: got %v", core.ErrInvalidThreshold, t)
	}
	return nil
}

// BuildDigraph adds an edge towards the higher scorer of every pair whose
// p-value is at most threshold. All n nodes are present.
func BuildDigraph(m pairwise.Matrix, threshold float64) (*Digraph, error) {
	if err := checkInputs(m, threshold); err != nil {
		return nil, err
	}
	g := newDigraph(m.Systems())
	m.Each(func(i, j int, v pairwise.Verdict) {
		if v.PValue > threshold {
			return
		}
		if v.BBigger {
			g.adj[i][j] = true
		} else {
			g.adj[j][i] = true
		}
	})
	return g, nil
}

// BuildEquivalenceGraph joins every pair whose p-value exceeds threshold.
// Together with BuildDigraph at the same threshold it partitions all pairs.
func BuildEquivalenceGraph(m pairwise.Matrix, threshold float64) (*Graph, error) {
	if err := checkInputs(m, threshold); err != nil {
		return nil, err
	}
	g := newGraph(m.Systems())
	m.Each(func(i, j int, v pairwise.Verdict) {
		if v.PValue <= threshold {
			return
		}
		g.adj[i][j] = true
		g.adj[j][i] = true
	})
	return g, nil
}

func checkInputs(m pairwise.Matrix, threshold float64) error {
	if err := ValidateThreshold(threshold); err != nil {
		return err
	}
	return m.Validate()
}
