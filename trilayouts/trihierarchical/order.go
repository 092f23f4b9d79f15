package trihierarchical

import (
	"sort"
)

// layersOf groups vertices by rank. Empty ranks are dropped, so layer
// indexes are consecutive while the relative order of ranks is kept.
// Vertices start in declaration order inside each layer.
func layersOf(ranks []int) [][]int {
	if len(ranks) == 0 {
		return nil
	}
	distinct := make(map[int]struct{})
	for _, r := range ranks {
		distinct[r] = struct{}{}
	}
	values := make([]int, 0, len(distinct))
	for r := range distinct {
		values = append(values, r)
	}
	sort.Ints(values)
	index := make(map[int]int, len(values))
	for i, r := range values {
		index[r] = i
	}

	layers := make([][]int, len(values))
	for v, r := range ranks {
		i := index[r]
		layers[i] = append(layers[i], v)
	}
	return layers
}

type positions struct {
	layer []int
	index []int
}

func positionsOf(n int, layers [][]int) positions {
	p := positions{
		layer: make([]int, n),
		index: make([]int, n),
	}
	for li, l := range layers {
		for i, v := range l {
			p.layer[v] = li
			p.index[v] = i
		}
	}
	return p
}

// sortByBarycenter reorders layer li by the mean index of each vertex's
// neighbors in layer ref. A vertex without such neighbors keeps its current
// index. Ties go to declaration order.
func (g *graph) sortByBarycenter(layers [][]int, li, ref int) {
	pos := positionsOf(g.n, layers)
	l := layers[li]
	keys := make(map[int]float64, len(l))
	for i, v := range l {
		sum, count := 0, 0
		for _, w := range g.adj[v] {
			if pos.layer[w] == ref {
				sum += pos.index[w]
				count++
			}
		}
		if count == 0 {
			keys[v] = float64(i)
		} else {
			keys[v] = float64(sum) / float64(count)
		}
	}
	sort.SliceStable(l, func(i, j int) bool {
		ki, kj := keys[l[i]], keys[l[j]]
		if ki != kj {
			return ki < kj
		}
		return l[i] < l[j]
	})
}

func (g *graph) sweep(layers [][]int) {
	for li := 1; li < len(layers); li++ {
		g.sortByBarycenter(layers, li, li-1)
	}
	for li := len(layers) - 2; li >= 0; li-- {
		g.sortByBarycenter(layers, li, li+1)
	}
}

// minimizeCrossings runs SWEEPS barycenter iterations and returns the
// ordering with the fewest crossings seen, the initial one included.
func (g *graph) minimizeCrossings(layers [][]int) ([][]int, int) {
	best := copyLayers(layers)
	bestCrossings := g.crossings(layers)
	cur := copyLayers(layers)
	for i := 0; i < SWEEPS && bestCrossings > 0; i++ {
		g.sweep(cur)
		c := g.crossings(cur)
		if c < bestCrossings {
			best = copyLayers(cur)
			bestCrossings = c
		}
	}
	return best, bestCrossings
}

// crossings counts pairs of edges that cross between adjacent layers. For
// each pair of layers the edges are sorted by their upper endpoint and the
// inversions among lower endpoints are counted with a Fenwick tree.
func (g *graph) crossings(layers [][]int) int {
	pos := positionsOf(g.n, layers)
	total := 0
	for li := 0; li+1 < len(layers); li++ {
		type pair struct{ upper, lower int }
		var pairs []pair
		for _, u := range layers[li] {
			for _, w := range g.adj[u] {
				if pos.layer[w] == li+1 {
					pairs = append(pairs, pair{pos.index[u], pos.index[w]})
				}
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].upper != pairs[j].upper {
				return pairs[i].upper < pairs[j].upper
			}
			return pairs[i].lower < pairs[j].lower
		})

		tree := newFenwick(len(layers[li+1]))
		for i, p := range pairs {
			// Earlier edges ending strictly right of this one cross it.
			total += i - tree.prefix(p.lower)
			tree.add(p.lower)
		}
	}
	return total
}

func copyLayers(layers [][]int) [][]int {
	out := make([][]int, len(layers))
	for i, l := range layers {
		out[i] = append([]int(nil), l...)
	}
	return out
}

// fenwick counts inserted values in [0, n).
type fenwick []int

func newFenwick(n int) fenwick {
	return make(fenwick, n+1)
}

func (f fenwick) add(i int) {
	for i++; i < len(f); i += i & -i {
		f[i]++
	}
}

// prefix returns how many inserted values are <= i.
func (f fenwick) prefix(i int) int {
	sum := 0
	for i++; i > 0; i -= i & -i {
		sum += f[i]
	}
	return sum
}
