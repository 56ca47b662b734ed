package siggraph

import "slices"

// MaximalCliques enumerates every maximal clique of g exactly once using
// Bron–Kerbosch with pivoting. Isolated nodes form singleton cliques. Each
// clique is sorted ascending; the enumeration order is deterministic for a
// given graph and is the order in which letters are later assigned.
func MaximalCliques(g *Graph) [][]int {
	n := g.N()
	if n == 0 {
		return nil
	}
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	bk := &bronKerbosch{g: g}
	bk.expand(nil, p, nil)
	return bk.cliques
}

type bronKerbosch struct {
	g       *Graph
	cliques [][]int
}

// expand reports every maximal clique that extends r with nodes from p and
// none from x. p and x are sorted ascending.
func (bk *bronKerbosch) expand(r, p, x []int) {
	if len(p) == 0 {
		if len(x) == 0 {
			clique := append([]int(nil), r...)
			slices.Sort(clique)
			bk.cliques = append(bk.cliques, clique)
		}
		return
	}

	pivot := bk.pivot(p, x)
	var candidates []int
	for _, v := range p {
		if !bk.g.adj[pivot][v] {
			candidates = append(candidates, v)
		}
	}

	for _, v := range candidates {
		bk.expand(append(r[:len(r):len(r)], v), bk.neighbours(p, v), bk.neighbours(x, v))
		p = remove(p, v)
		x = insert(x, v)
	}
}

// pivot picks the node of p ∪ x with the most neighbours in p; ties go to
// the first such node, scanning p then x.
func (bk *bronKerbosch) pivot(p, x []int) int {
	best, bestCount := -1, -1
	consider := func(u int) {
		count := 0
		for _, v := range p {
			if bk.g.adj[u][v] {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = u, count
		}
	}
	for _, u := range p {
		consider(u)
	}
	for _, u := range x {
		consider(u)
	}
	return best
}

func (bk *bronKerbosch) neighbours(set []int, v int) []int {
	var out []int
	for _, u := range set {
		if bk.g.adj[v][u] {
			out = append(out, u)
		}
	}
	return out
}

func remove(set []int, v int) []int {
	out := make([]int, 0, len(set))
	for _, u := range set {
		if u != v {
			out = append(out, u)
		}
	}
	return out
}

func insert(set []int, v int) []int {
	out := make([]int, 0, len(set)+1)
	placed := false
	for _, u := range set {
		if !placed && v < u {
			out = append(out, v)
			placed = true
		}
		out = append(out, u)
	}
	if !placed {
		out = append(out, v)
	}
	return out
}
