package triradial

import (
	"math"
	"sort"

	"fortio.org/safecast"

	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/trigraph"
)

type body struct {
	id    trigraph.NodeID
	pos   geo.Point
	size  geo.Size
	fixed bool
}

func (b *body) rect() geo.Rect {
	return geo.NewRect(b.pos, b.size)
}

func (b *body) center() geo.Vector {
	return b.rect().Center().ToVector()
}

// move shifts b by v truncated to whole pixels.
func (b *body) move(v geo.Vector) {
	b.pos.X += trunc(v.X)
	b.pos.Y += trunc(v.Y)
}

// trunc drops the fraction of a displacement. A value that does not fit
// an int moves nothing.
func trunc(v float64) int {
	i, err := safecast.Truncate[int](v)
	if err != nil {
		return 0
	}
	return i
}

type link struct {
	a *body
	b *body
}

type pairKey struct {
	a trigraph.NodeID
	b trigraph.NodeID
}

type movement struct {
	b *body
	v geo.Vector
}

// sim refines the positions of one container's nodes. Bodies are kept
// sorted by node id and every force visits and moves them in that order.
type sim struct {
	adj    *trigraph.Adjacency
	gap    int
	bodies []*body
	byID   map[trigraph.NodeID]*body
	links  []link
	// weights holds the heaviest arrow weight between two nodes, keyed
	// both ways.
	weights map[pairKey]int
}

func newSim(s *trigraph.Scope, pos map[trigraph.NodeID]geo.Point) *sim {
	sm := &sim{
		adj:     s.Adjacency,
		gap:     s.Config.Gap,
		byID:    make(map[trigraph.NodeID]*body),
		weights: make(map[pairKey]int),
	}
	for _, n := range s.Nodes() {
		b := &body{
			id:    n,
			pos:   pos[n],
			size:  s.NodeSize(n),
			fixed: s.Diagram.Node(n).IsFixed(),
		}
		sm.bodies = append(sm.bodies, b)
		sm.byID[n] = b
	}
	sort.Slice(sm.bodies, func(i, j int) bool {
		return sm.bodies[i].id < sm.bodies[j].id
	})

	for _, e := range s.Diagram.EdgesByOrder() {
		a, okA := sm.byID[e.From]
		b, okB := sm.byID[e.To]
		if !okA || !okB {
			continue
		}
		w := e.Arrow.Weight()
		for _, k := range []pairKey{{e.From, e.To}, {e.To, e.From}} {
			if w > sm.weights[k] {
				sm.weights[k] = w
			}
		}
		if a != b {
			sm.links = append(sm.links, link{a: a, b: b})
		}
	}
	return sm
}

func (sm *sim) apply(moves []movement) {
	for _, m := range moves {
		m.b.move(m.v)
	}
}

// attract pulls every free node toward its neighbors in the container,
// harder for heavier arrows and for fixed neighbors. The pull is the
// weighted mean over neighbors further than half the ideal distance.
func (sm *sim) attract() {
	lineWeight := float64(trigraph.Line.Weight())
	var moves []movement
	for _, b := range sm.bodies {
		if b.fixed {
			continue
		}
		c := b.center()
		var total geo.Vector
		totalWeight := 0.0
		for _, nb := range sm.adj.Neighbors(b.id) {
			o, ok := sm.byID[nb.Node]
			if !ok || o == b {
				continue
			}
			delta := o.center().Minus(c)
			dist := delta.Length()
			ideal := float64((b.size.W+o.size.W)/2 + sm.gap)
			if dist <= ideal*0.5 {
				continue
			}

			w, ok := sm.weights[pairKey{b.id, o.id}]
			if !ok {
				w = trigraph.Line.Weight()
			}
			strength := ATTRACTION
			weight := float64(nb.Count) * float64(w) / lineWeight
			if o.fixed {
				strength = FIXED_ATTRACTION
				weight *= FIXED_WEIGHT
			}
			pull := math.Max(dist-ideal, 0)*strength + dist*BASE_ATTRACTION
			total = total.Add(delta.Multiply(pull * weight / math.Max(dist, 1)))
			totalWeight += weight
		}
		if totalWeight > 0 {
			moves = append(moves, movement{b: b, v: total.Multiply(1 / totalWeight)})
		}
	}
	sm.apply(moves)
}

// repelEdges pushes free nodes off the straight path of edges they are not
// an end of, so lines do not run underneath them.
func (sm *sim) repelEdges() {
	var moves []movement
	for _, b := range sm.bodies {
		if b.fixed {
			continue
		}
		c := b.center()
		reach := 2 * float64((b.size.W+b.size.H)/4+sm.gap)
		var total geo.Vector
		count := 0
		for _, l := range sm.links {
			if l.a == b || l.b == b {
				continue
			}
			a, z := l.a.center(), l.b.center()
			ab := z.Minus(a)
			if ab.Dot(ab) < 1 {
				continue
			}
			away := c.Minus(geo.ClosestOnSegment(c, a, z))
			dist := away.Length()
			if dist <= MIN_EDGE_DISTANCE || dist >= reach {
				continue
			}
			push := (reach - dist) * EDGE_REPULSION
			total = total.Add(away.Multiply(push / dist))
			count++
		}
		if count > 0 {
			moves = append(moves, movement{b: b, v: total.Multiply(1 / float64(count))})
		}
	}
	sm.apply(moves)
}

// separate pushes free nodes out of any node they overlap, the other
// expanded by the gap. Moves apply immediately and the push weakens every
// pass. It returns the number of passes run.
func (sm *sim) separate() int {
	pass := 0
	for pass < OVERLAP_PASSES {
		damping := OVERLAP_DAMPING / (1 + float64(pass)*DAMPING_FALLOFF)
		pass++
		moved := false
		for _, b := range sm.bodies {
			if b.fixed {
				continue
			}
			r := b.rect()
			c := b.center()
			var total geo.Vector
			count := 0
			for _, o := range sm.bodies {
				if o == b || !r.Overlaps(o.rect().Expand(sm.gap)) {
					continue
				}
				delta := c.Minus(o.center())
				dist := math.Max(delta.Length(), 1)
				minDist := float64((b.size.W+o.size.W)/2 + sm.gap)
				push := math.Max(minDist-dist, 0) * damping
				if push <= 0 {
					continue
				}
				total = total.Add(delta.Multiply(push / dist))
				count++
			}
			if count > 0 && (math.Abs(total.X) > MIN_MOVE || math.Abs(total.Y) > MIN_MOVE) {
				b.move(total)
				moved = true
			}
		}
		if !moved {
			break
		}
	}
	return pass
}
