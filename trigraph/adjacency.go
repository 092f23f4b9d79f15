package trigraph

import (
	"sort"
)

// Neighbor is one entry of a node's undirected neighbor list. Count is the
// number of edges between the two nodes in either direction.
type Neighbor struct {
	Node  NodeID
	Count int
}

// Adjacency is the undirected connectivity of a diagram. It is built once
// per layout call and read only afterwards.
type Adjacency struct {
	neighbors [][]Neighbor
	degree    []int
}

type nodePair struct {
	a NodeID
	b NodeID
}

func orderedPair(a, b NodeID) nodePair {
	if a > b {
		a, b = b, a
	}
	return nodePair{a, b}
}

// NewAdjacency counts edges per unordered node pair and materializes a
// symmetric neighbor list per node. A self loop appears once in its node's
// list and adds one to its degree.
func NewAdjacency(d *Diagram) *Adjacency {
	adj := &Adjacency{
		neighbors: make([][]Neighbor, len(d.Nodes)),
		degree:    make([]int, len(d.Nodes)),
	}

	counts := make(map[nodePair]int)
	var pairs []nodePair
	for _, e := range d.EdgesByOrder() {
		p := orderedPair(e.From, e.To)
		if _, ok := counts[p]; !ok {
			pairs = append(pairs, p)
		}
		counts[p]++
	}

	for _, p := range pairs {
		n := counts[p]
		adj.neighbors[p.a] = append(adj.neighbors[p.a], Neighbor{Node: p.b, Count: n})
		adj.degree[p.a] += n
		if p.a != p.b {
			adj.neighbors[p.b] = append(adj.neighbors[p.b], Neighbor{Node: p.a, Count: n})
			adj.degree[p.b] += n
		}
	}

	for _, list := range adj.neighbors {
		sort.SliceStable(list, func(i, j int) bool {
			return d.Nodes[list[i].Node].Order < d.Nodes[list[j].Node].Order
		})
	}
	return adj
}

// Neighbors returns n's neighbors sorted by declaration order. Unknown nodes
// have none.
func (adj *Adjacency) Neighbors(n NodeID) []Neighbor {
	if int(n) < 0 || int(n) >= len(adj.neighbors) {
		return nil
	}
	return adj.neighbors[n]
}

func (adj *Adjacency) Degree(n NodeID) int {
	if int(n) < 0 || int(n) >= len(adj.degree) {
		return 0
	}
	return adj.degree[n]
}

// Count returns the number of edges between a and b.
func (adj *Adjacency) Count(a, b NodeID) int {
	for _, nb := range adj.Neighbors(a) {
		if nb.Node == b {
			return nb.Count
		}
	}
	return 0
}

// NodeWeight splits a node's edges into those staying inside a group and
// those leaving it.
type NodeWeight struct {
	In  int
	Out int
}

// ExternalRatio is the fraction of edges leaving the group, 0 without edges.
func (w NodeWeight) ExternalRatio() float64 {
	total := w.In + w.Out
	if total == 0 {
		return 0
	}
	return float64(w.Out) / float64(total)
}

// NodeWeights computes a NodeWeight for each direct child node of group.
func (adj *Adjacency) NodeWeights(d *Diagram, group GroupID) map[NodeID]NodeWeight {
	g := d.Group(group)
	inside := make(map[NodeID]struct{}, len(g.ChildNodes))
	for _, n := range g.ChildNodes {
		inside[n] = struct{}{}
	}

	weights := make(map[NodeID]NodeWeight, len(g.ChildNodes))
	for _, n := range g.ChildNodes {
		var w NodeWeight
		for _, nb := range adj.Neighbors(n) {
			if _, ok := inside[nb.Node]; ok {
				w.In += nb.Count
			} else {
				w.Out += nb.Count
			}
		}
		weights[n] = w
	}
	return weights
}

// GroupPair is an unordered pair of groups with A <= B.
type GroupPair struct {
	A GroupID
	B GroupID
}

func NewGroupPair(a, b GroupID) GroupPair {
	if a > b {
		a, b = b, a
	}
	return GroupPair{a, b}
}

// GroupAdjacency counts edges whose endpoints are owned by different
// groups, keyed by the owning group pair.
func GroupAdjacency(d *Diagram) map[GroupPair]int {
	counts := make(map[GroupPair]int)
	for _, e := range d.Edges {
		from := d.Node(e.From).Group
		to := d.Node(e.To).Group
		if from == to {
			continue
		}
		counts[NewGroupPair(from, to)]++
	}
	return counts
}
