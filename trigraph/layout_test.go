package trigraph_test

import (
	"context"
	"testing"

	tassert "github.com/stretchr/testify/assert"

	"oss.terrastruct.com/util-go/assert"
	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/trigraph"
)

// rowPlacer lays free nodes out in one row and packs free groups below.
func rowPlacer(ctx context.Context, s *trigraph.Scope) {
	grid := s.NewGrid()
	p := s.Origin()
	for _, n := range s.FreeNodes {
		r := grid.FindFree(geo.NewRect(p, s.NodeSize(n)), 0, 0)
		s.PlaceNode(n, r.Pos())
		s.Reserve(grid, r)
		p.X = r.Right() + s.Config.Gap
	}
	s.PackGroups(grid, s.FreeGroups)
}

func TestTraversalOrder(t *testing.T) {
	t.Parallel()

	d := trigraph.NewDiagram()
	a := d.AddGroup(d.Root, "a")
	aa := d.AddGroup(a.ID, "aa")
	b := d.AddGroup(d.Root, "b")
	ab := d.AddGroup(a.ID, "ab")

	tassert.Equal(t, []trigraph.GroupID{aa.ID, ab.ID, a.ID, b.ID, d.Root}, d.PostOrderGroups())
	tassert.Equal(t, []trigraph.GroupID{d.Root, a.ID, aa.ID, ab.ID, b.ID}, d.PreOrderGroups())
}

func TestAccumulate(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	cfg := trigraph.DefaultConfig()

	d := trigraph.NewDiagram()
	g := d.AddGroup(d.Root, "g")
	a := d.AddNode(d.Root, trigraph.KindClass, "a")
	b := d.AddNode(d.Root, trigraph.KindClass, "b")
	c := d.AddNode(g.ID, trigraph.KindClass, "c")
	assert.Success(t, d.Validate())

	res := trigraph.Accumulate(ctx, d, cfg, trigraph.NewAdjacency(d), rowPlacer)

	// Class boxes are 220x44 with the default config.
	assert.Equal(t, geo.NewPoint(24, 24), res.NodeLocalPos[c.ID])
	assert.Equal(t, geo.Rect{X: 0, Y: 0, W: 268, H: 92}, res.GroupLocalBounds[g.ID])

	assert.Equal(t, geo.NewPoint(24, 24), res.NodeLocalPos[a.ID])
	assert.Equal(t, geo.NewPoint(268, 24), res.NodeLocalPos[b.ID])
	// Below the nodes: 24 + 44 + gap.
	assert.Equal(t, geo.NewPoint(24, 92), res.GroupLocalPos[g.ID])

	assert.Equal(t, geo.NewPoint(24, 92), res.GroupWorldPos[g.ID])
	assert.Equal(t, geo.NewPoint(48, 116), res.NodeWorldPos[c.ID])
	assert.Equal(t, geo.Rect{X: 48, Y: 116, W: 220, H: 44}, res.NodeWorldBounds[c.ID])
	assert.Equal(t, geo.Rect{X: 24, Y: 92, W: 268, H: 92}, res.GroupWorldBounds[g.ID])
	assert.Equal(t, geo.Rect{X: 0, Y: 0, W: 512, H: 208}, res.GroupWorldBounds[d.Root])

	for _, n := range d.Nodes {
		owner := res.GroupWorldBounds[n.Group]
		assert.True(t, owner.Contains(res.NodeWorldBounds[n.ID]))
	}
}

func TestAccumulateFixed(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	cfg := trigraph.DefaultConfig()

	d := trigraph.NewDiagram()
	g := d.AddGroup(d.Root, "g")
	g.Pos = go2.Pointer(geo.NewPoint(300, 10))
	n := d.AddNode(g.ID, trigraph.KindClass, "n")
	n.Pos = go2.Pointer(geo.NewPoint(50, 60))
	empty := d.AddGroup(d.Root, "empty")

	res := trigraph.Accumulate(ctx, d, cfg, trigraph.NewAdjacency(d), rowPlacer)
	assert.Equal(t, geo.NewPoint(50, 60), res.NodeLocalPos[n.ID])
	assert.Equal(t, geo.NewPoint(300, 10), res.GroupLocalPos[g.ID])
	assert.Equal(t, geo.NewPoint(350, 70), res.NodeWorldPos[n.ID])
	assert.Equal(t, geo.NewRect(geo.Point{}, cfg.MinGroupSize), res.GroupLocalBounds[empty.ID])

	// The free empty group stays clear of the fixed one.
	tassert.False(t, res.GroupWorldBounds[empty.ID].Overlaps(res.GroupWorldBounds[g.ID]))
}

func TestAccumulateLeftovers(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	cfg := trigraph.DefaultConfig()

	d := trigraph.NewDiagram()
	var ids []trigraph.NodeID
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		ids = append(ids, d.AddNode(d.Root, trigraph.KindClass, name).ID)
	}
	d.AddGroup(d.Root, "g")

	noop := func(ctx context.Context, s *trigraph.Scope) {}
	res := trigraph.Accumulate(ctx, d, cfg, trigraph.NewAdjacency(d), noop)

	for i := range ids {
		r := res.NodeWorldBounds[ids[i]]
		tassert.LessOrEqual(t, r.Right(), cfg.MaxRowW)
		for j := i + 1; j < len(ids); j++ {
			tassert.Falsef(t, r.Expand(cfg.Gap).Overlaps(res.NodeWorldBounds[ids[j]]), "%d overlaps %d", ids[i], ids[j])
		}
	}
}

func TestAccumulateCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(log.WithTB(context.Background(), t, nil))
	cancel()
	cfg := trigraph.DefaultConfig()

	d := trigraph.NewDiagram()
	g := d.AddGroup(d.Root, "g")
	a := d.AddNode(d.Root, trigraph.KindClass, "a")
	b := d.AddNode(d.Root, trigraph.KindClass, "b")
	c := d.AddNode(g.ID, trigraph.KindClass, "c")

	called := false
	res := trigraph.Accumulate(ctx, d, cfg, trigraph.NewAdjacency(d), func(ctx context.Context, s *trigraph.Scope) {
		called = true
	})
	tassert.False(t, called)

	tassert.False(t, res.NodeWorldBounds[a.ID].Overlaps(res.NodeWorldBounds[b.ID]))
	tassert.False(t, res.GroupWorldBounds[g.ID].Overlaps(res.NodeWorldBounds[a.ID]))
	tassert.False(t, res.GroupWorldBounds[g.ID].Overlaps(res.NodeWorldBounds[b.ID]))
	assert.True(t, res.GroupWorldBounds[g.ID].Contains(res.NodeWorldBounds[c.ID]))
}

func TestAccumulateOrphanPanics(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	d := trigraph.NewDiagram()
	g := d.AddGroup(d.Root, "g")
	g.Parent = nil

	tassert.Panics(t, func() {
		trigraph.Accumulate(ctx, d, trigraph.DefaultConfig(), trigraph.NewAdjacency(d), rowPlacer)
	})
}

func TestScopePlaceFixedPanics(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	d := trigraph.NewDiagram()
	n := d.AddNode(d.Root, trigraph.KindClass, "n")
	n.Pos = go2.Pointer(geo.NewPoint(0, 0))
	d.AddNode(d.Root, trigraph.KindClass, "free")

	tassert.Panics(t, func() {
		trigraph.Accumulate(ctx, d, trigraph.DefaultConfig(), trigraph.NewAdjacency(d), func(ctx context.Context, s *trigraph.Scope) {
			s.PlaceNode(n.ID, geo.NewPoint(1, 1))
		})
	})
}
