package triradial

import (
	"container/heap"
	"math"

	"oss.terrastruct.com/trident/trigraph"
)

// Sector is the arc a subtree is drawn in, in radians.
type Sector struct {
	Start float64
	Span  float64
}

func (s Sector) Mid() float64 {
	return s.Start + s.Span/2
}

type TreeEdge struct {
	Parent trigraph.NodeID
	Child  trigraph.NodeID
}

// SpanningTree is a maximum weight spanning tree over the nodes of one
// container. Nodes no edge reaches hang directly off the root.
type SpanningTree struct {
	Root trigraph.NodeID

	// attached lists nodes in the order they joined the tree, root first.
	attached []trigraph.NodeID
	parent   map[trigraph.NodeID]trigraph.NodeID
	children map[trigraph.NodeID][]trigraph.NodeID
	depth    map[trigraph.NodeID]int
	sector   map[trigraph.NodeID]Sector
}

// NewSpanningTree builds the tree with Prim's algorithm, heaviest arrows
// first. Only edges with both ends in nodes count. nodes must not be
// empty.
func NewSpanningTree(d *trigraph.Diagram, adj *trigraph.Adjacency, nodes []trigraph.NodeID) *SpanningTree {
	inScope := make(map[trigraph.NodeID]bool, len(nodes))
	for _, n := range nodes {
		inScope[n] = true
	}
	incident := make(map[trigraph.NodeID][]*trigraph.Edge)
	for _, e := range d.EdgesByOrder() {
		if e.From == e.To || !inScope[e.From] || !inScope[e.To] {
			continue
		}
		incident[e.From] = append(incident[e.From], e)
		incident[e.To] = append(incident[e.To], e)
	}

	root := findRoot(d, adj, nodes)
	t := &SpanningTree{
		Root:     root,
		parent:   make(map[trigraph.NodeID]trigraph.NodeID),
		children: make(map[trigraph.NodeID][]trigraph.NodeID),
		depth:    make(map[trigraph.NodeID]int),
		sector:   make(map[trigraph.NodeID]Sector),
	}

	f := &frontier{d: d}
	push := func(from trigraph.NodeID) {
		for _, e := range incident[from] {
			to := e.To
			if to == from {
				to = e.From
			}
			if t.contains(to) {
				continue
			}
			heap.Push(f, candidate{weight: e.Arrow.Weight(), from: from, to: to})
		}
	}

	t.attach(root, root, 0)
	push(root)
	for f.Len() > 0 {
		c := heap.Pop(f).(candidate)
		if t.contains(c.to) {
			continue
		}
		t.attach(c.to, c.from, t.depth[c.from]+1)
		push(c.to)
	}

	rest := append([]trigraph.NodeID(nil), nodes...)
	d.SortNodes(rest)
	for _, n := range rest {
		if !t.contains(n) {
			t.attach(n, root, 1)
		}
	}

	for _, n := range t.attached {
		d.SortNodes(t.children[n])
	}
	t.assignSectors()
	return t
}

// findRoot picks the fixed node declared first, or else the node with the
// highest degree, ties by declaration order.
func findRoot(d *trigraph.Diagram, adj *trigraph.Adjacency, nodes []trigraph.NodeID) trigraph.NodeID {
	sorted := append([]trigraph.NodeID(nil), nodes...)
	d.SortNodes(sorted)
	for _, n := range sorted {
		if d.Node(n).IsFixed() {
			return n
		}
	}
	root := sorted[0]
	for _, n := range sorted[1:] {
		if adj.Degree(n) > adj.Degree(root) {
			root = n
		}
	}
	return root
}

func (t *SpanningTree) attach(n, parent trigraph.NodeID, depth int) {
	t.attached = append(t.attached, n)
	t.depth[n] = depth
	if n != parent {
		t.parent[n] = parent
		t.children[parent] = append(t.children[parent], n)
	}
}

func (t *SpanningTree) contains(n trigraph.NodeID) bool {
	_, ok := t.depth[n]
	return ok
}

// assignSectors splits every node's sector among its children in
// proportion to their subtree sizes. The root owns the full circle.
func (t *SpanningTree) assignSectors() {
	size := make(map[trigraph.NodeID]int, len(t.attached))
	// Children always attach after their parent.
	for i := len(t.attached) - 1; i >= 0; i-- {
		n := t.attached[i]
		size[n]++
		if p, ok := t.parent[n]; ok {
			size[p] += size[n]
		}
	}

	t.sector[t.Root] = Sector{Start: 0, Span: 2 * math.Pi}
	for _, n := range t.attached {
		kids := t.children[n]
		if len(kids) == 0 {
			continue
		}
		total := 0
		for _, c := range kids {
			total += size[c]
		}
		sec := t.sector[n]
		start := sec.Start
		for _, c := range kids {
			span := sec.Span * float64(size[c]) / float64(total)
			t.sector[c] = Sector{Start: start, Span: span}
			start += span
		}
	}
}

func (t *SpanningTree) Len() int {
	return len(t.attached)
}

// Nodes lists the tree's nodes in the order they were attached.
func (t *SpanningTree) Nodes() []trigraph.NodeID {
	return t.attached
}

// Parent returns n's parent. The root has none.
func (t *SpanningTree) Parent(n trigraph.NodeID) (trigraph.NodeID, bool) {
	p, ok := t.parent[n]
	return p, ok
}

// Children are sorted by declaration order.
func (t *SpanningTree) Children(n trigraph.NodeID) []trigraph.NodeID {
	return t.children[n]
}

func (t *SpanningTree) Depth(n trigraph.NodeID) int {
	return t.depth[n]
}

func (t *SpanningTree) Sector(n trigraph.NodeID) Sector {
	return t.sector[n]
}

// Edges returns one edge per non root node, in attachment order.
func (t *SpanningTree) Edges() []TreeEdge {
	edges := make([]TreeEdge, 0, len(t.attached))
	for _, n := range t.attached {
		if p, ok := t.parent[n]; ok {
			edges = append(edges, TreeEdge{Parent: p, Child: n})
		}
	}
	return edges
}

type candidate struct {
	weight int
	from   trigraph.NodeID
	to     trigraph.NodeID
}

// frontier is a max heap of candidate edges: heaviest first, then the
// endpoint declared first.
type frontier struct {
	d     *trigraph.Diagram
	items []candidate
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	a, b := f.items[i], f.items[j]
	if a.weight != b.weight {
		return a.weight > b.weight
	}
	if fa, fb := f.d.Node(a.from).Order, f.d.Node(b.from).Order; fa != fb {
		return fa < fb
	}
	return f.d.Node(a.to).Order < f.d.Node(b.to).Order
}

func (f *frontier) Swap(i, j int) { f.items[i], f.items[j] = f.items[j], f.items[i] }

func (f *frontier) Push(x any) { f.items = append(f.items, x.(candidate)) }

func (f *frontier) Pop() any {
	last := f.items[len(f.items)-1]
	f.items = f.items[:len(f.items)-1]
	return last
}
