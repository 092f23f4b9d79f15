// Package triradial draws a container's nodes as a mind map: the most
// connected node sits in the middle and its spanning tree fans out in
// rings, each subtree in an arc as wide as its share of the nodes. A short
// force refinement then tightens edges and pulls nodes apart.
package triradial

import (
	"context"
	"math"

	"cdr.dev/slog"

	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/trigraph"
)

func Place(ctx context.Context, s *trigraph.Scope) {
	if len(s.FreeNodes) > 0 {
		placeNodes(ctx, s)
	}
	s.PackFreeGroups()
}

func placeNodes(ctx context.Context, s *trigraph.Scope) {
	tree := NewSpanningTree(s.Diagram, s.Adjacency, s.Nodes())
	pos := initialPositions(s, tree)

	sm := newSim(s, pos)
	passes := 0
	for i := 0; i < FORCE_ITERATIONS; i++ {
		sm.attract()
		sm.repelEdges()
		passes += sm.separate()
	}

	var free []*body
	for _, b := range sm.bodies {
		if !b.fixed {
			free = append(free, b)
		}
	}
	if len(s.FixedNodes) == 0 {
		shift := s.Origin().Minus(minCorner(free))
		for _, b := range free {
			b.pos = b.pos.Add(shift)
		}
	}

	order := make([]trigraph.NodeID, 0, len(free))
	for _, b := range free {
		s.PlaceNode(b.id, b.pos)
		order = append(order, b.id)
	}
	s.Settle(order)

	log.Debug(ctx, "radial placement",
		slog.F("group", s.Group),
		slog.F("root", tree.Root),
		slog.F("nodes", tree.Len()),
		slog.F("overlap_passes", passes),
	)
}

// initialPositions puts the root at its fixed position or centered on
// (CENTER_X, CENTER_Y), and every other free node on the ring of its depth
// around the root, in the middle of its sector.
func initialPositions(s *trigraph.Scope, tree *SpanningTree) map[trigraph.NodeID]geo.Point {
	nodes := tree.Nodes()
	pos := make(map[trigraph.NodeID]geo.Point, len(nodes))

	sum := 0
	for _, n := range nodes {
		sz := s.NodeSize(n)
		sum += (sz.W + sz.H) / 2
	}
	levelRadius := float64(sum/len(nodes) + s.Config.Gap)

	rootSize := s.NodeSize(tree.Root)
	rootPos := geo.NewPoint(CENTER_X-rootSize.W/2, CENTER_Y-rootSize.H/2)
	if p := s.Diagram.Node(tree.Root).Pos; p != nil {
		rootPos = *p
	}
	rootCenter := rootPos.Add(geo.NewPoint(rootSize.W/2, rootSize.H/2))

	for _, n := range nodes {
		if p := s.Diagram.Node(n).Pos; p != nil {
			pos[n] = *p
			continue
		}
		if n == tree.Root {
			pos[n] = rootPos
			continue
		}
		sz := s.NodeSize(n)
		v := geo.NewVectorFromProperties(levelRadius*float64(tree.Depth(n)), tree.Sector(n).Mid())
		pos[n] = geo.NewPoint(
			rootCenter.X+trunc(v.X)-sz.W/2,
			rootCenter.Y+trunc(v.Y)-sz.H/2,
		)
	}
	return pos
}

func minCorner(bodies []*body) geo.Point {
	p := geo.NewPoint(math.MaxInt, math.MaxInt)
	for _, b := range bodies {
		p.X = go2.Min(p.X, b.pos.X)
		p.Y = go2.Min(p.Y, b.pos.Y)
	}
	return p
}
