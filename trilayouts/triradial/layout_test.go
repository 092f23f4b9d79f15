package triradial_test

import (
	"context"
	"testing"

	tassert "github.com/stretchr/testify/assert"

	"oss.terrastruct.com/util-go/assert"
	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/trigraph"
	"oss.terrastruct.com/trident/trilayouts/triradial"
)

func run(t *testing.T, d *trigraph.Diagram) *trigraph.Result {
	ctx := log.WithTB(context.Background(), t, nil)
	assert.Success(t, d.Validate())
	return trigraph.Accumulate(ctx, d, trigraph.DefaultConfig(), trigraph.NewAdjacency(d), triradial.Place)
}

func assertNoOverlap(t *testing.T, res *trigraph.Result, ids []trigraph.NodeID) {
	t.Helper()
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			tassert.Falsef(t, res.NodeWorldBounds[a].Expand(24).Overlaps(res.NodeWorldBounds[b]),
				"%v overlaps %v", res.NodeWorldBounds[a], res.NodeWorldBounds[b])
		}
	}
}

func star(leaves int) (*trigraph.Diagram, []trigraph.NodeID) {
	d := trigraph.NewDiagram()
	hub := d.AddNode(d.Root, trigraph.KindClass, "hub")
	ids := []trigraph.NodeID{hub.ID}
	for i := 0; i < leaves; i++ {
		n := d.AddNode(d.Root, trigraph.KindClass, string(rune('a'+i)))
		d.AddEdge(hub.ID, n.ID, trigraph.Assoc)
		ids = append(ids, n.ID)
	}
	return d, ids
}

func TestStar(t *testing.T) {
	t.Parallel()

	d, ids := star(3)
	res := run(t, d)
	assertNoOverlap(t, res, ids)
	for _, n := range ids {
		p := res.NodeLocalPos[n]
		tassert.GreaterOrEqual(t, p.X, 24)
		tassert.GreaterOrEqual(t, p.Y, 24)
		assert.True(t, res.GroupWorldBounds[d.Root].Contains(res.NodeWorldBounds[n]))
	}

	seen := make(map[geo.Point]bool)
	for _, n := range ids {
		tassert.False(t, seen[res.NodeLocalPos[n]])
		seen[res.NodeLocalPos[n]] = true
	}

	again := run(t, d)
	tassert.Equal(t, res.NodeWorldPos, again.NodeWorldPos)
	tassert.Equal(t, res.GroupWorldBounds, again.GroupWorldBounds)
}

func TestFixedHub(t *testing.T) {
	t.Parallel()

	d, ids := star(6)
	hub := d.Node(ids[0])
	hub.Pos = go2.Pointer(geo.NewPoint(400, 300))

	res := run(t, d)
	assert.Equal(t, geo.NewPoint(400, 300), res.NodeLocalPos[hub.ID])
	assertNoOverlap(t, res, ids)
}

func TestFixedInGroup(t *testing.T) {
	t.Parallel()

	d := trigraph.NewDiagram()
	g := d.AddGroup(d.Root, "g")
	fixed := d.AddNode(g.ID, trigraph.KindClass, "fixed")
	fixed.Pos = go2.Pointer(geo.NewPoint(50, 60))

	res := run(t, d)
	assert.Equal(t, geo.NewPoint(50, 60), res.NodeLocalPos[fixed.ID])
	assert.True(t, res.GroupWorldBounds[g.ID].Contains(res.NodeWorldBounds[fixed.ID]))
}

func TestChainAndGroups(t *testing.T) {
	t.Parallel()

	d := trigraph.NewDiagram()
	pkg := d.AddGroup(d.Root, "pkg")
	var ids []trigraph.NodeID
	var prev *trigraph.Node
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		n := d.AddNode(pkg.ID, trigraph.KindClass, name)
		if prev != nil {
			d.AddEdge(prev.ID, n.ID, trigraph.Extends)
		}
		prev = n
		ids = append(ids, n.ID)
	}
	outside := d.AddNode(d.Root, trigraph.KindNode, "outside")
	d.AddEdge(outside.ID, ids[0], trigraph.Dep)
	empty := d.AddGroup(d.Root, "")

	res := run(t, d)
	assertNoOverlap(t, res, ids)
	for _, n := range ids {
		assert.True(t, res.GroupWorldBounds[pkg.ID].Contains(res.NodeWorldBounds[n]))
	}
	for _, gid := range []trigraph.GroupID{pkg.ID, empty.ID} {
		tassert.False(t, res.GroupWorldBounds[gid].Expand(24).Overlaps(res.NodeWorldBounds[outside.ID]))
	}
	tassert.False(t, res.GroupWorldBounds[pkg.ID].Expand(24).Overlaps(res.GroupWorldBounds[empty.ID]))
}
