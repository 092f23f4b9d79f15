package trigrid_test

import (
	"context"
	"strconv"
	"testing"

	"oss.terrastruct.com/util-go/assert"
	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/trigraph"
	"oss.terrastruct.com/trident/trilayouts/trigrid"
)

func run(t *testing.T, d *trigraph.Diagram) *trigraph.Result {
	ctx := log.WithTB(context.Background(), t, nil)
	assert.Success(t, d.Validate())
	return trigraph.Accumulate(ctx, d, trigraph.DefaultConfig(), trigraph.NewAdjacency(d), trigrid.Place)
}

func TestPlace(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		nodes  int
		fixed  *geo.Point
		expPos []geo.Point
	}{
		{
			name:   "single",
			nodes:  1,
			expPos: []geo.Point{{X: 24, Y: 24}},
		},
		{
			// Class boxes are 220x44, so the pitch is 244x68 and three
			// columns fit in 1000 minus padding.
			name:  "wrap",
			nodes: 5,
			expPos: []geo.Point{
				{X: 24, Y: 24}, {X: 268, Y: 24}, {X: 512, Y: 24},
				{X: 24, Y: 92}, {X: 268, Y: 92},
			},
		},
		{
			name:  "fixed_cell_skipped",
			nodes: 2,
			fixed: go2.Pointer(geo.NewPoint(24, 24)),
			expPos: []geo.Point{
				{X: 268, Y: 24}, {X: 512, Y: 24},
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := trigraph.NewDiagram()
			if tc.fixed != nil {
				n := d.AddNode(d.Root, trigraph.KindClass, "fixed")
				n.Pos = tc.fixed
			}
			var ids []trigraph.NodeID
			for i := 0; i < tc.nodes; i++ {
				n := d.AddNode(d.Root, trigraph.KindClass, strconv.Itoa(i))
				ids = append(ids, n.ID)
			}
			// Grid ignores edges.
			if len(ids) > 1 {
				d.AddEdge(ids[len(ids)-1], ids[0], trigraph.Extends)
			}

			res := run(t, d)
			for i, id := range ids {
				assert.Equal(t, tc.expPos[i], res.NodeLocalPos[id])
			}
		})
	}
}

func TestGroupsAfterNodes(t *testing.T) {
	t.Parallel()

	d := trigraph.NewDiagram()
	a := d.AddNode(d.Root, trigraph.KindClass, "a")
	g := d.AddGroup(d.Root, "g")
	b := d.AddNode(d.Root, trigraph.KindClass, "b")

	res := run(t, d)
	assert.Equal(t, geo.NewPoint(24, 24), res.NodeLocalPos[a.ID])
	assert.Equal(t, geo.NewPoint(268, 24), res.NodeLocalPos[b.ID])
	assert.Equal(t, geo.Rect{X: 24, Y: 92, W: 200, H: 120}, res.GroupWorldBounds[g.ID])
	assert.Equal(t, geo.Rect{X: 0, Y: 0, W: 512, H: 236}, res.GroupWorldBounds[d.Root])
}
