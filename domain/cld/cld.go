package cld

import (
	"strings"

	"gosigtest/domain/siggraph"
)

// Labeling is a compact letter display. Two systems share a letter exactly
// when both belong to the same maximal clique of the equivalence graph.
type Labeling struct {
	// Cliques in discovery order; clique c carries letter NumToLetters(c).
	Cliques [][]int `json:"cliques"`
	// Letters[i] lists the letters of system i in clique order.
	Letters [][]string `json:"letters"`
}

// Build enumerates the maximal cliques of g and assigns the letter of every
// clique to each of its members. A graph with no edges gives each system
// its own letter and a complete graph gives every system "a".
func Build(g *siggraph.Graph) Labeling {
	cliques := siggraph.MaximalCliques(g)
	letters := make([][]string, g.N())
	for c, clique := range cliques {
		code := NumToLetters(c)
		for _, member := range clique {
			letters[member] = append(letters[member], code)
		}
	}
	return Labeling{Cliques: cliques, Letters: letters}
}

// Systems returns the number of labelled systems.
func (l Labeling) Systems() int { return len(l.Letters) }

// Code joins the letters of system i, e.g. "ab".
func (l Labeling) Code(i int) string {
	if i < 0 || i >= len(l.Letters) {
		return ""
	}
	return strings.Join(l.Letters[i], "")
}

// ShareLetter reports whether systems i and j have a letter in common.
func (l Labeling) ShareLetter(i, j int) bool {
	for _, clique := range l.Cliques {
		hasI, hasJ := false, false
		for _, m := range clique {
			hasI = hasI || m == i
			hasJ = hasJ || m == j
		}
		if hasI && hasJ {
			return true
		}
	}
	return false
}
