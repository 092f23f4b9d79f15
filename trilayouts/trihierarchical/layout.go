// Package trihierarchical is the default layout. Children of a container
// are ranked from the hierarchy their edges imply (supertypes and owners
// above), reordered within ranks to reduce crossings and packed row by row.
package trihierarchical

import (
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/lib/spatial"
	"oss.terrastruct.com/trident/trigraph"
)

// siblings is one kind of child, nodes or groups, prepared for layering.
// Index i of every slice describes the same child.
type siblings struct {
	sizes []geo.Size
	fixed []bool
	// seed is the rank of fixed children, -1 for free ones.
	seed  []int
	place func(i int, p geo.Point)
	g     *graph
}

func Place(ctx context.Context, s *trigraph.Scope) {
	grid := s.NewGrid()
	y := s.Origin().Y

	if len(s.FreeNodes) > 0 {
		sib := nodeSiblings(s)
		y = layout(ctx, s, grid, sib, y, "nodes")
	}
	if len(s.FreeGroups) > 0 {
		sib := groupSiblings(s)
		layout(ctx, s, grid, sib, y, "groups")
	}
}

func layout(ctx context.Context, s *trigraph.Scope, grid *spatial.Grid, sib *siblings, y int, kind string) int {
	ranks := sib.g.assignRanks(sib.seed)
	layers, crossings := sib.g.minimizeCrossings(layersOf(ranks))
	log.Debug(ctx, "ranked siblings",
		slog.F("group", s.Group),
		slog.F("kind", kind),
		slog.F("count", sib.g.n),
		slog.F("layers", len(layers)),
		slog.F("crossings", crossings),
	)
	return pack(s, grid, sib, layers, y)
}

// pack stacks layers top to bottom starting at y. Inside a layer free
// children sit on a column pitch of the widest one plus the gap, wrapping
// to a new row past the row width. Every candidate is probed against the
// grid. It returns the y the next block of children should start at.
func pack(s *trigraph.Scope, grid *spatial.Grid, sib *siblings, layers [][]int, y int) int {
	cfg := s.Config
	origin := s.Origin()
	for _, l := range layers {
		pitch, rowH := 0, 0
		for _, v := range l {
			if !sib.fixed[v] {
				pitch = go2.Max(pitch, sib.sizes[v].W+cfg.Gap)
				rowH = go2.Max(rowH, sib.sizes[v].H)
			}
		}
		if pitch == 0 {
			continue
		}

		rowY := y
		bottom := y
		col := 0
		for _, v := range l {
			if sib.fixed[v] {
				continue
			}
			sz := sib.sizes[v]
			x := origin.X + col*pitch
			if col > 0 && x+sz.W > cfg.MaxRowW {
				col = 0
				x = origin.X
				rowY += rowH + cfg.Gap
			}
			r := grid.FindFree(geo.NewRect(geo.NewPoint(x, rowY), sz), origin.X, cfg.MaxRowW)
			sib.place(v, r.Pos())
			s.Reserve(grid, r)
			bottom = go2.Max(bottom, r.Bottom())
			col++
		}
		y = bottom + cfg.Gap
	}
	return y
}

// layerHeight quantizes fixed Y positions into ranks.
func layerHeight(cfg *trigraph.Config, sizes []geo.Size) int {
	h := 0
	for _, sz := range sizes {
		h = go2.Max(h, sz.H)
	}
	return go2.Max(1, h+cfg.Gap)
}

func seedRank(y, layerH int) int {
	return go2.Max(0, geo.FloorDiv(y, layerH))
}

func nodeSiblings(s *trigraph.Scope) *siblings {
	d := s.Diagram
	nodes := s.Nodes()
	index := make(map[trigraph.NodeID]int, len(nodes))
	sib := &siblings{
		sizes: make([]geo.Size, len(nodes)),
		fixed: make([]bool, len(nodes)),
		seed:  make([]int, len(nodes)),
		g:     newGraph(len(nodes)),
		place: func(i int, p geo.Point) {
			s.PlaceNode(nodes[i], p)
		},
	}
	for i, n := range nodes {
		index[n] = i
		sib.sizes[i] = s.NodeSize(n)
		sib.fixed[i] = d.Node(n).IsFixed()
	}
	layerH := layerHeight(s.Config, sib.sizes)
	for i, n := range nodes {
		sib.seed[i] = -1
		if sib.fixed[i] {
			sib.seed[i] = seedRank(d.Node(n).Pos.Y, layerH)
		}
	}

	for _, e := range d.EdgesByOrder() {
		from, okFrom := index[e.From]
		to, okTo := index[e.To]
		if !okFrom || !okTo {
			continue
		}
		parent, child, ok := e.Arrow.Hierarchy(e.From, e.To)
		if !ok {
			sib.g.link(from, to)
			continue
		}
		sib.g.addEdge(index[parent], index[child])
	}
	sib.g.finalize()
	return sib
}

// groupSiblings lays child groups out with the same procedure. An edge
// between nodes anywhere below two different child groups counts as an edge
// between those groups.
func groupSiblings(s *trigraph.Scope) *siblings {
	d := s.Diagram
	groups := s.Groups()
	index := make(map[trigraph.GroupID]int, len(groups))
	sib := &siblings{
		sizes: make([]geo.Size, len(groups)),
		fixed: make([]bool, len(groups)),
		seed:  make([]int, len(groups)),
		g:     newGraph(len(groups)),
		place: func(i int, p geo.Point) {
			s.PlaceGroup(groups[i], p)
		},
	}
	for i, c := range groups {
		index[c] = i
		sib.sizes[i] = s.GroupBounds(c).Size()
		sib.fixed[i] = d.Group(c).IsFixed()
	}
	layerH := layerHeight(s.Config, sib.sizes)
	for i, c := range groups {
		sib.seed[i] = -1
		if sib.fixed[i] {
			sib.seed[i] = seedRank(d.Group(c).Pos.Y, layerH)
		}
	}

	for pair := range trigraph.GroupAdjacency(d) {
		a, okA := childAncestor(d, pair.A, s.Group)
		b, okB := childAncestor(d, pair.B, s.Group)
		if okA && okB && a != b {
			sib.g.link(index[a], index[b])
		}
	}
	for _, e := range d.EdgesByOrder() {
		parent, child, ok := e.Arrow.Hierarchy(e.From, e.To)
		if !ok {
			continue
		}
		pg, okP := s.ChildGroupOf(parent)
		cg, okC := s.ChildGroupOf(child)
		if okP && okC && pg != cg {
			sib.g.addEdge(index[pg], index[cg])
		}
	}
	sib.g.finalize()
	return sib
}

// childAncestor returns the ancestor of g, g included, whose parent is
// container.
func childAncestor(d *trigraph.Diagram, g, container trigraph.GroupID) (trigraph.GroupID, bool) {
	for steps := 0; steps <= len(d.Groups); steps++ {
		p := d.Group(g).Parent
		if p == nil {
			return 0, false
		}
		if *p == container {
			return g, true
		}
		g = *p
	}
	return 0, false
}
