// Package trichaos generates random diagrams for property tests. The same
// seed always yields the same structure: groups, nodes, edges, arrows,
// fixed positions and sizes all come from the seeded source.
package trichaos

import (
	mathrand "math/rand"
	"strconv"

	"oss.terrastruct.com/util-go/go2"
	"oss.terrastruct.com/util-go/xrand"

	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/trigraph"
)

type Options struct {
	// Labels adds random labels to some nodes and edges. Labels widen
	// nodes and are not derived from the seed.
	Labels bool
	// NoFixed disables fixed positions.
	NoFixed bool
}

// GenDiagram runs up to maxi generator steps seeded by seed.
func GenDiagram(seed int64, maxi int, opts *Options) *trigraph.Diagram {
	if opts == nil {
		opts = &Options{}
	}
	gs := &genState{
		rand: mathrand.New(mathrand.NewSource(seed)),
		d:    trigraph.NewDiagram(),
		opts: opts,
	}
	gs.gen(go2.Max(maxi, 1))
	return gs.d
}

type genState struct {
	rand *mathrand.Rand
	d    *trigraph.Diagram
	opts *Options
}

func (gs *genState) gen(maxi int) {
	maxi = gs.rand.Intn(maxi) + 1

	for i := 0; i < maxi; i++ {
		switch gs.roll(15, 35, 50) {
		case 0:
			// 15% chance of creating a new group.
			gs.group()
		case 1:
			// 35% chance of creating a new node.
			gs.node()
		case 2:
			// 50% chance of connecting two random nodes.
			gs.edge()
		}
	}
}

func (gs *genState) group() {
	parent := gs.randGroup()
	g := gs.d.AddGroup(parent, "")
	if gs.roll(50, 50) == 0 {
		name := "g" + strconv.Itoa(int(g.ID))
		g.Name = &name
	}
	if !gs.opts.NoFixed && gs.roll(90, 10) == 1 {
		// 10% chance of pinning the group.
		g.Pos = go2.Pointer(gs.randPoint())
	}
}

func (gs *genState) node() *trigraph.Node {
	kind := trigraph.KindClass
	if gs.roll(70, 30) == 1 {
		kind = trigraph.KindNode
	}
	n := gs.d.AddNode(gs.randGroup(), kind, "n"+strconv.Itoa(len(gs.d.Nodes)))

	if gs.roll(80, 20) == 1 {
		n.Modifiers = []string{"abstract"}
	}
	if gs.roll(60, 40) == 1 {
		for i := gs.rand.Intn(5); i >= 0; i-- {
			n.BodyLines = append(n.BodyLines, "+field"+strconv.Itoa(i))
		}
		if gs.roll(50, 50) == 0 {
			n.BodyLines = append(n.BodyLines, "--", "+method()")
		}
	}
	if gs.roll(85, 15) == 1 {
		n.Width = go2.Pointer(40 + gs.rand.Intn(300))
		n.Height = go2.Pointer(30 + gs.rand.Intn(200))
	}
	if gs.opts.Labels && gs.roll(75, 25) == 1 {
		n.Label = go2.Pointer(xrand.String(gs.rand.Intn(40), nil))
	}
	if !gs.opts.NoFixed && gs.roll(85, 15) == 1 {
		// 15% chance of pinning the node.
		n.Pos = go2.Pointer(gs.randPoint())
	}
	return n
}

func (gs *genState) edge() {
	from := gs.randNode()
	to := gs.randNode()
	arrows := trigraph.ArrowRegistry()
	e := gs.d.AddEdge(from, to, arrows[gs.rand.Intn(len(arrows))].Arrow)
	if gs.opts.Labels && gs.roll(50, 50) == 0 {
		e.Label = go2.Pointer(xrand.String(gs.rand.Intn(20), nil))
	}
}

// randGroup returns the root half of the time, another group otherwise.
func (gs *genState) randGroup() trigraph.GroupID {
	if len(gs.d.Groups) == 1 || gs.roll(50, 50) == 0 {
		return gs.d.Root
	}
	return trigraph.GroupID(gs.rand.Intn(len(gs.d.Groups)))
}

func (gs *genState) randNode() trigraph.NodeID {
	if len(gs.d.Nodes) == 0 {
		return gs.node().ID
	}
	return trigraph.NodeID(gs.rand.Intn(len(gs.d.Nodes)))
}

func (gs *genState) randPoint() geo.Point {
	return geo.NewPoint(gs.rand.Intn(1200)-100, gs.rand.Intn(900)-100)
}

func (gs *genState) roll(probs ...int) int {
	total := 0
	for _, p := range probs {
		total += p
	}

	n := gs.rand.Intn(total)
	var acc int
	for i, p := range probs {
		if n >= acc && n < acc+p {
			return i
		}
		acc += p
	}

	panic("trichaos: unreachable")
}
