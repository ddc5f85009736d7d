package analysis

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
)

// Layout spacing constants. Communities are laid out independently and
// offset horizontally so they do not overlap; isolated nodes go on their
// own row below the communities.
const (
	communitySpacing = 6.0
	communityRowY    = 1.0
	isolatedSpacing  = 1.0
	isolatedRowY     = -2.0

	layoutUpdates = 100
	layoutSeed    = 42
)

// NetworkNode is one positioned node of the rendered correlation network
type NetworkNode struct {
	Symbol    string  `json:"symbol"`
	Community int     `json:"community"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Network is the renderable view of a session: positioned nodes plus
// weighted edges. Rendering itself is a client concern; this is only the
// data a network chart needs.
type Network struct {
	Nodes []NetworkNode `json:"nodes"`
	Edges []Edge        `json:"edges"`
}

// BuildNetwork computes a 2-D layout for the session's graph: one
// force-directed sub-layout per community (fixed seed, so layouts are
// reproducible), offset horizontally per community, with isolated nodes
// collected on a separate bottom row.
func BuildNetwork(s *Session) *Network {
	nodes := make([]NetworkNode, 0, s.Graph.NumNodes())

	for i, members := range s.Communities {
		xOffset := float64(i) * communitySpacing
		positions := layoutCommunity(s.Graph, members)

		for _, symbol := range members {
			pos := positions[symbol]
			nodes = append(nodes, NetworkNode{
				Symbol:    symbol,
				Community: i,
				X:         pos[0] + xOffset,
				Y:         pos[1] + communityRowY,
			})
		}
	}

	// Isolated nodes get a dedicated row regardless of which singleton
	// community they landed in
	isolated := 0
	for n := range nodes {
		if s.Graph.Degree(nodes[n].Symbol) == 0 {
			nodes[n].X = float64(isolated) * isolatedSpacing
			nodes[n].Y = isolatedRowY
			isolated++
		}
	}

	return &Network{
		Nodes: nodes,
		Edges: s.Graph.Edges(),
	}
}

// layoutCommunity runs a force-directed layout over the subgraph induced by
// the community's members and returns per-symbol coordinates
func layoutCommunity(g *Graph, members []string) map[string][2]float64 {
	positions := make(map[string][2]float64, len(members))

	if len(members) == 1 {
		positions[members[0]] = [2]float64{0, 0}
		return positions
	}

	sub := simple.NewWeightedUndirectedGraph(0, 0)
	for _, symbol := range members {
		sub.AddNode(simple.Node(g.index[symbol]))
	}
	for i, a := range members {
		for _, b := range members[i+1:] {
			if w, ok := g.EdgeWeight(a, b); ok {
				sub.SetWeightedEdge(sub.NewWeightedEdge(simple.Node(g.index[a]), simple.Node(g.index[b]), w))
			}
		}
	}

	eades := layout.EadesR2{
		Repulsion: 1,
		Rate:      0.05,
		Updates:   layoutUpdates,
		Theta:     0.1,
		Src:       rand.NewPCG(layoutSeed, layoutSeed),
	}
	optimizer := layout.NewOptimizerR2(orderedGraph{sub}, eades.Update)
	for optimizer.Update() {
	}

	for _, symbol := range members {
		coord := optimizer.Coord2(g.index[symbol])
		positions[symbol] = [2]float64{coord.X, coord.Y}
	}

	return positions
}

// orderedGraph wraps a weighted undirected graph with node iteration in ID
// order. simple graphs iterate nodes in map order, which varies the
// floating-point accumulation order inside the force-directed optimizer and
// perturbs coordinates at the last ULP between otherwise identical runs.
type orderedGraph struct {
	*simple.WeightedUndirectedGraph
}

func (g orderedGraph) Nodes() graph.Nodes {
	return iterator.NewOrderedNodes(sortedNodes(g.WeightedUndirectedGraph.Nodes()))
}

func (g orderedGraph) From(id int64) graph.Nodes {
	return iterator.NewOrderedNodes(sortedNodes(g.WeightedUndirectedGraph.From(id)))
}

func sortedNodes(it graph.Nodes) []graph.Node {
	nodes := graph.NodesOf(it)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	return nodes
}
