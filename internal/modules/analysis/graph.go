package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is the thresholded correlation network: one node per instrument in
// the matrix, one undirected edge per pair whose correlation meets the
// threshold, edge weight = correlation. Instruments with no qualifying edges
// remain as isolated nodes. Node IDs are indices into the matrix's symbol
// order, so the mapping is stable for a given matrix.
type Graph struct {
	g       *simple.WeightedUndirectedGraph
	symbols []string
	index   map[string]int64
}

// Edge is one weighted undirected edge, reported with Source < Target
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// BuildGraph builds the correlation graph from a matrix and an edge
// admission threshold. NaN correlations never qualify (NaN >= t is false),
// and self-loops are excluded by construction. There are no error cases;
// an edgeless graph is valid output.
func BuildGraph(m *CorrelationMatrix, threshold float64) *Graph {
	symbols := m.Symbols()

	g := simple.NewWeightedUndirectedGraph(0, 0)
	index := make(map[string]int64, len(symbols))
	for i, symbol := range symbols {
		id := int64(i)
		g.AddNode(simple.Node(id))
		index[symbol] = id
	}

	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			w := m.at(i, j)
			if w >= threshold {
				g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(int64(i)), simple.Node(int64(j)), w))
			}
		}
	}

	return &Graph{
		g:       g,
		symbols: symbols,
		index:   index,
	}
}

// HasNode reports whether a symbol is a node of the graph
func (gr *Graph) HasNode(symbol string) bool {
	_, ok := gr.index[symbol]
	return ok
}

// Symbols returns all node symbols in matrix order
func (gr *Graph) Symbols() []string {
	out := make([]string, len(gr.symbols))
	copy(out, gr.symbols)
	return out
}

// SymbolOf maps a node ID back to its instrument symbol
func (gr *Graph) SymbolOf(id int64) string {
	return gr.symbols[id]
}

// NumNodes returns the node count
func (gr *Graph) NumNodes() int {
	return len(gr.symbols)
}

// NumEdges returns the edge count
func (gr *Graph) NumEdges() int {
	return gr.g.Edges().Len()
}

// Degree returns the number of edges incident to a symbol, or 0 for
// unknown symbols
func (gr *Graph) Degree(symbol string) int {
	id, ok := gr.index[symbol]
	if !ok {
		return 0
	}
	return gr.g.From(id).Len()
}

// EdgeWeight returns the weight of the edge between two symbols, if present
func (gr *Graph) EdgeWeight(a, b string) (float64, bool) {
	i, ok := gr.index[a]
	if !ok {
		return 0, false
	}
	j, ok := gr.index[b]
	if !ok {
		return 0, false
	}
	if i == j {
		return 0, false
	}
	e := gr.g.WeightedEdge(i, j)
	if e == nil {
		return 0, false
	}
	return e.Weight(), true
}

// Edges lists all edges sorted by (source, target) symbol for deterministic
// iteration
func (gr *Graph) Edges() []Edge {
	var edges []Edge

	it := gr.g.WeightedEdges()
	for it.Next() {
		e := it.WeightedEdge()
		a := gr.symbols[e.From().ID()]
		b := gr.symbols[e.To().ID()]
		if a > b {
			a, b = b, a
		}
		edges = append(edges, Edge{Source: a, Target: b, Weight: e.Weight()})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})

	return edges
}

// Undirected exposes the underlying gonum graph for algorithms that consume
// the standard graph interfaces (community detection, layout)
func (gr *Graph) Undirected() graph.Undirected {
	return gr.g
}
