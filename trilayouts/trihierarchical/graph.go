package trihierarchical

import (
	"sort"
)

type edge struct {
	from int
	to   int
}

// graph is the dependency graph of one kind of sibling, nodes or groups.
// Vertices index the sibling list, which is sorted by declaration order, so
// comparing vertices compares declaration order.
type graph struct {
	n    int
	succ [][]int
	pred [][]int
	// adj is the undirected neighborhood used for crossing minimization.
	// It includes edges that carry no hierarchy.
	adj [][]int

	edges map[edge]struct{}
	links map[edge]struct{}
}

func newGraph(n int) *graph {
	return &graph{
		n:     n,
		succ:  make([][]int, n),
		pred:  make([][]int, n),
		adj:   make([][]int, n),
		edges: make(map[edge]struct{}),
		links: make(map[edge]struct{}),
	}
}

// addEdge records that parent ranks above child.
func (g *graph) addEdge(parent, child int) {
	if parent == child {
		return
	}
	g.link(parent, child)
	e := edge{parent, child}
	if _, ok := g.edges[e]; ok {
		return
	}
	g.edges[e] = struct{}{}
	g.succ[parent] = append(g.succ[parent], child)
	g.pred[child] = append(g.pred[child], parent)
}

func (g *graph) link(a, b int) {
	if a == b {
		return
	}
	if a > b {
		a, b = b, a
	}
	e := edge{a, b}
	if _, ok := g.links[e]; ok {
		return
	}
	g.links[e] = struct{}{}
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
}

// finalize sorts every list so iteration follows declaration order no matter
// the order edges were added in.
func (g *graph) finalize() {
	for i := 0; i < g.n; i++ {
		sort.Ints(g.succ[i])
		sort.Ints(g.pred[i])
		sort.Ints(g.adj[i])
	}
}

// dfs walks the graph depth first, starting from the roots in order and then
// from the lowest vertex not reached yet. It returns the vertices in reverse
// post order and the edges that close a cycle. Dropping those edges leaves
// a DAG for which the returned order is topological.
func (g *graph) dfs() (topo []int, back map[edge]bool) {
	const (
		white = iota
		gray
		black
	)
	type frame struct {
		v    int
		next int
	}

	back = make(map[edge]bool)
	color := make([]int, g.n)
	post := make([]int, 0, g.n)

	var starts []int
	for v := 0; v < g.n; v++ {
		if len(g.pred[v]) == 0 {
			starts = append(starts, v)
		}
	}
	for v := 0; v < g.n; v++ {
		starts = append(starts, v)
	}

	for _, start := range starts {
		if color[start] != white {
			continue
		}
		color[start] = gray
		stack := []frame{{v: start}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(g.succ[top.v]) {
				w := g.succ[top.v][top.next]
				top.next++
				switch color[w] {
				case white:
					color[w] = gray
					stack = append(stack, frame{v: w})
				case gray:
					back[edge{top.v, w}] = true
				}
				continue
			}
			color[top.v] = black
			post = append(post, top.v)
			stack = stack[:len(stack)-1]
		}
	}

	topo = make([]int, len(post))
	for i, v := range post {
		topo[len(post)-1-i] = v
	}
	return topo, back
}

// assignRanks is longest path layering. seed holds the rank of fixed
// vertices and -1 for free ones. Free roots start at rank 0 and every free
// vertex ends at least one rank below each of its parents, except across
// edges that close a cycle. Fixed vertices keep their seed.
func (g *graph) assignRanks(seed []int) []int {
	topo, back := g.dfs()
	ranks := make([]int, g.n)
	for v := range ranks {
		if seed[v] >= 0 {
			ranks[v] = seed[v]
		}
	}
	for _, u := range topo {
		for _, v := range g.succ[u] {
			if back[edge{u, v}] || seed[v] >= 0 {
				continue
			}
			if ranks[u]+1 > ranks[v] {
				ranks[v] = ranks[u] + 1
			}
		}
	}
	return ranks
}
