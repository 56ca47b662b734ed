// Package report renders significance results for people: Graphviz DOT for
// the Hasse diagram, and a spreadsheet or HTML table for letter displays.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gosigtest/domain/siggraph"
)

// Node describes how one system appears in a rendering.
type Node struct {
	Label string
	Score float64
}

// WriteHasseDOT writes g as a Graphviz digraph. Edges point from the lower
// to the higher scoring system; rank follows the edge direction bottom-up.
func WriteHasseDOT(w io.Writer, g *siggraph.Digraph, nodes []Node) error {
	if len(nodes) != g.N() {
		return fmt.Errorf("have %d node labels for %d nodes", len(nodes), g.N())
	}
	var b strings.Builder
	b.WriteString("digraph hasse {\n")
	b.WriteString("  rankdir=BT;\n")
	b.WriteString("  node [shape=box];\n")
	for i, n := range nodes {
		fmt.Fprintf(&b, "  n%d [label=%s];\n", i, strconv.Quote(fmt.Sprintf("%s\n%.4f", n.Label, n.Score)))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  n%d -> n%d;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}
