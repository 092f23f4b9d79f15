// Package triconstrained places nodes at the barycenter of their already
// placed neighbors, without ranking. It is the algorithm of choice when a
// diagram carries many fixed positions: free nodes gather around the anchors
// they connect to.
package triconstrained

import (
	"context"
	"math"

	"cdr.dev/slog"
	"golang.org/x/exp/slices"

	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/lib/spatial"
	"oss.terrastruct.com/trident/trigraph"
)

func Place(ctx context.Context, s *trigraph.Scope) {
	order := placementOrder(s)

	placed := make(map[trigraph.NodeID]geo.Point)
	for _, n := range s.FixedNodes {
		placed[n] = s.NodeRect(n).Pos()
	}

	grid := s.NewGrid()
	sp := newSpiral(s.Origin(), float64(s.Config.ClassSize.W+s.Config.Gap))
	spiraled := 0
	for _, n := range order {
		sz := s.NodeSize(n)
		var p geo.Point
		if center, ok := barycenter(s, n, placed); ok {
			p = geo.NewPoint(center.X-sz.W/2, center.Y-sz.H/2)
		} else {
			p = sp.nextFree(grid, sz)
			spiraled++
		}
		placed[n] = p
		s.PlaceNode(n, p)
		s.Reserve(grid, geo.NewRect(p, sz))
	}

	passes := resolveOverlaps(s, append(append([]trigraph.NodeID(nil), s.FixedNodes...), order...))
	s.Settle(order)

	log.Debug(ctx, "constrained placement",
		slog.F("group", s.Group),
		slog.F("nodes", len(order)),
		slog.F("spiraled", spiraled),
		slog.F("overlap_passes", passes),
	)

	s.PackFreeGroups()
}

// placementOrder sorts free nodes by degree, highest first. Among equal
// degrees nodes with fewer edges leaving the group go first so boundary
// facing nodes end up on the outer rings. Remaining ties go by declaration
// order.
func placementOrder(s *trigraph.Scope) []trigraph.NodeID {
	weights := s.Adjacency.NodeWeights(s.Diagram, s.Group)
	order := append([]trigraph.NodeID(nil), s.FreeNodes...)
	slices.SortStableFunc(order, func(a, b trigraph.NodeID) int {
		da, db := s.Adjacency.Degree(a), s.Adjacency.Degree(b)
		if da != db {
			return db - da
		}
		if oa, ob := weights[a].Out, weights[b].Out; oa != ob {
			return oa - ob
		}
		return s.Diagram.Node(a).Order - s.Diagram.Node(b).Order
	})
	return order
}

// barycenter returns the center of n's placed neighbors in the container,
// weighted by edge count.
func barycenter(s *trigraph.Scope, n trigraph.NodeID, placed map[trigraph.NodeID]geo.Point) (geo.Point, bool) {
	var sumX, sumY, weight int
	for _, nb := range s.Adjacency.Neighbors(n) {
		if nb.Node == n || !s.Contains(nb.Node) {
			continue
		}
		p, ok := placed[nb.Node]
		if !ok {
			continue
		}
		c := geo.NewRect(p, s.NodeSize(nb.Node)).Center()
		sumX += c.X * nb.Count
		sumY += c.Y * nb.Count
		weight += nb.Count
	}
	if weight == 0 {
		return geo.Point{}, false
	}
	return geo.NewPoint(sumX/weight, sumY/weight), true
}

// resolveOverlaps pushes free nodes away from any node they overlap, the
// other one expanded by the gap, along the dominant axis between their
// centers. Fixed nodes never move. It returns the number of passes run.
func resolveOverlaps(s *trigraph.Scope, order []trigraph.NodeID) int {
	gap := s.Config.Gap
	pass := 0
	for pass < OVERLAP_PASSES {
		pass++
		moved := false
		for _, n := range order {
			if s.Diagram.Node(n).IsFixed() {
				continue
			}
			r := s.NodeRect(n)
			for _, other := range order {
				if other == n {
					continue
				}
				o := s.NodeRect(other)
				if !r.Overlaps(o.Expand(gap)) {
					continue
				}
				c, oc := r.Center(), o.Center()
				dx, dy := c.X-oc.X, c.Y-oc.Y
				if geo.Abs(dx) > geo.Abs(dy) {
					if dx >= 0 {
						r.X = o.Right() + gap
					} else {
						r.X = o.X - r.W - gap
					}
				} else {
					if dy >= 0 {
						r.Y = o.Bottom() + gap
					} else {
						r.Y = o.Y - r.H - gap
					}
				}
				moved = true
			}
			s.PlaceNode(n, r.Pos())
		}
		if !moved {
			break
		}
	}
	return pass
}

// spiral yields points on rings around an origin, six per ring. The radius
// starts at zero and grows by step after every full turn.
type spiral struct {
	origin geo.Point
	step   float64
	angle  float64
	radius float64
}

func newSpiral(origin geo.Point, step float64) *spiral {
	return &spiral{origin: origin, step: step}
}

func (sp *spiral) next() geo.Point {
	p := geo.NewPoint(
		sp.origin.X+int(math.Round(sp.radius*math.Cos(sp.angle))),
		sp.origin.Y+int(math.Round(sp.radius*math.Sin(sp.angle))),
	)
	sp.angle += SPIRAL_STEP
	if sp.angle >= 2*math.Pi-1e-9 {
		sp.angle = 0
		sp.radius += sp.step
	}
	return p
}

// nextFree returns the first upcoming spiral point where a box of size sz
// overlaps nothing in grid.
func (sp *spiral) nextFree(grid *spatial.Grid, sz geo.Size) geo.Point {
	p := sp.next()
	for i := 1; i < SPIRAL_PROBES && grid.OverlapsAny(geo.NewRect(p, sz)); i++ {
		p = sp.next()
	}
	return p
}
