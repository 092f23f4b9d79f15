package trilayouts_test

import (
	"context"
	"encoding/json"
	mathrand "math/rand"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	tassert "github.com/stretchr/testify/assert"

	"oss.terrastruct.com/util-go/assert"
	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/trident/lib/env"
	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/trichaos"
	"oss.terrastruct.com/trident/trigraph"
	"oss.terrastruct.com/trident/trilayouts"
)

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in     string
		exp    trilayouts.Algorithm
		expErr string
	}{
		{in: "", exp: trilayouts.Hierarchical},
		{in: "hierarchical", exp: trilayouts.Hierarchical},
		{in: "Grid", exp: trilayouts.Grid},
		{in: " CONSTRAINED ", exp: trilayouts.Constrained},
		{in: "radial", exp: trilayouts.Radial},
		{in: "dagre", expErr: `unknown layout algorithm "dagre", expected one of: hierarchical, grid, constrained, radial`},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			algo, err := trilayouts.ParseAlgorithm(tc.in)
			if tc.expErr != "" {
				assert.ErrorString(t, err, tc.expErr)
				return
			}
			assert.Success(t, err)
			assert.Equal(t, tc.exp, algo)
		})
	}
}

func TestAlgorithmText(t *testing.T) {
	t.Parallel()

	for _, info := range trilayouts.Algorithms() {
		b, err := info.Algorithm.MarshalText()
		assert.Success(t, err)
		assert.String(t, info.Name, string(b))
		assert.String(t, info.Name, info.Algorithm.String())

		var algo trilayouts.Algorithm
		assert.Success(t, algo.UnmarshalText(b))
		assert.Equal(t, info.Algorithm, algo)
	}
	_, err := trilayouts.Algorithm(42).MarshalText()
	assert.ErrorString(t, err, "unknown layout algorithm 42")
}

func TestLayoutRejectsInvalid(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)

	d := trigraph.NewDiagram()
	d.AddNode(d.Root, trigraph.KindClass, "a")
	d.AddEdge(0, 7, trigraph.Assoc)
	_, err := trilayouts.Layout(ctx, d, nil, trilayouts.Hierarchical)
	assert.ErrorString(t, err, "failed to lay out diagram: edge 0: to node 7 out of range")

	cfg := trigraph.DefaultConfig()
	cfg.Gap = -1
	_, err = trilayouts.Layout(ctx, trigraph.NewDiagram(), cfg, trilayouts.Grid)
	assert.ErrorString(t, err, "failed to lay out diagram: gap must not be negative, got -1")

	_, err = trilayouts.Layout(ctx, trigraph.NewDiagram(), nil, trilayouts.Algorithm(9))
	assert.ErrorString(t, err, "failed to lay out diagram: unknown layout algorithm 9")
}

func TestLayoutCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(log.WithTB(context.Background(), t, nil))
	cancel()

	for _, info := range trilayouts.Algorithms() {
		d := trigraph.NewDiagram()
		a := d.AddNode(d.Root, trigraph.KindClass, "a")
		b := d.AddNode(d.Root, trigraph.KindClass, "b")
		d.AddEdge(a.ID, b.ID, trigraph.Assoc)

		res, err := trilayouts.Layout(ctx, d, nil, info.Algorithm)
		assert.ErrorString(t, err, "failed to lay out diagram: context canceled")
		tassert.Nil(t, res)
	}
}

func TestChainRanks(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)

	d := trigraph.NewDiagram()
	a := d.AddNode(d.Root, trigraph.KindClass, "A")
	b := d.AddNode(d.Root, trigraph.KindClass, "B")
	c := d.AddNode(d.Root, trigraph.KindClass, "C")
	d.AddEdge(a.ID, b.ID, trigraph.Assoc)
	d.AddEdge(b.ID, c.ID, trigraph.Assoc)

	res, err := trilayouts.Layout(ctx, d, nil, trilayouts.Hierarchical)
	assert.Success(t, err)
	tassert.Less(t, res.NodeWorldPos[a.ID].Y, res.NodeWorldPos[b.ID].Y)
	tassert.Less(t, res.NodeWorldPos[b.ID].Y, res.NodeWorldPos[c.ID].Y)
	assertProperties(t, d, trigraph.DefaultConfig(), res)
}

func TestFixedInEmptyGroup(t *testing.T) {
	t.Parallel()

	for _, info := range trilayouts.Algorithms() {
		info := info
		t.Run(info.Name, func(t *testing.T) {
			t.Parallel()

			ctx := log.WithTB(context.Background(), t, nil)
			d := trigraph.NewDiagram()
			g := d.AddGroup(d.Root, "g")
			n := d.AddNode(g.ID, trigraph.KindClass, "pinned")
			n.Pos = go2.Pointer(geo.NewPoint(50, 60))

			res, err := trilayouts.Layout(ctx, d, nil, info.Algorithm)
			assert.Success(t, err)
			assert.Equal(t, geo.NewPoint(50, 60), res.NodeLocalPos[n.ID])
			assertProperties(t, d, trigraph.DefaultConfig(), res)
		})
	}
}

// TestChaos lays out random diagrams with every algorithm and checks the
// properties every layout must have.
//
// usage: TRIDENT_CHAOS_N=200 TRIDENT_CHAOS_MAXI=100 go test ./trilayouts
func TestChaos(t *testing.T) {
	t.Parallel()

	n, ok := env.ChaosN()
	if !ok {
		n = 25
	}
	maxi, ok := env.ChaosMaxi()
	if !ok {
		maxi = 40
	}

	for _, info := range trilayouts.Algorithms() {
		info := info
		t.Run(info.Name, func(t *testing.T) {
			t.Parallel()

			for seed := int64(0); seed < int64(n); seed++ {
				seed := seed
				t.Run(strconv.FormatInt(seed, 10), func(t *testing.T) {
					ctx := log.WithTB(context.Background(), t, nil)
					d := trichaos.GenDiagram(seed, maxi, nil)
					cfg := trigraph.DefaultConfig()

					res, err := trilayouts.Layout(ctx, d, cfg, info.Algorithm)
					assert.Success(t, err)
					assertProperties(t, d, cfg, res)

					again, err := trilayouts.Layout(ctx, d, cfg, info.Algorithm)
					assert.Success(t, err)
					if diff := cmp.Diff(res, again, cmp.AllowUnexported(trigraph.Result{})); diff != "" {
						t.Fatalf("layout is not deterministic (-first +second):\n%s", diff)
					}

					permuted := permute(t, d, seed)
					shuffled, err := trilayouts.Layout(ctx, permuted, cfg, info.Algorithm)
					assert.Success(t, err)
					assert.JSON(t, res, shuffled)
				})
			}
		})
	}
}

// permute round trips d through JSON with its arenas shuffled.
func permute(t *testing.T, d *trigraph.Diagram, seed int64) *trigraph.Diagram {
	t.Helper()

	b, err := d.Marshal()
	assert.Success(t, err)
	var raw map[string]json.RawMessage
	assert.Success(t, json.Unmarshal(b, &raw))

	r := mathrand.New(mathrand.NewSource(seed))
	for _, key := range []string{"groups", "nodes", "edges"} {
		var items []json.RawMessage
		assert.Success(t, json.Unmarshal(raw[key], &items))
		r.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
		raw[key], err = json.Marshal(items)
		assert.Success(t, err)
	}

	b, err = json.Marshal(raw)
	assert.Success(t, err)
	out, err := trigraph.ParseDiagram(b)
	assert.Success(t, err)
	return out
}

func assertProperties(t *testing.T, d *trigraph.Diagram, cfg *trigraph.Config, res *trigraph.Result) {
	t.Helper()

	for _, n := range d.Nodes {
		if n.Pos != nil {
			assert.Equal(t, *n.Pos, res.NodeLocalPos[n.ID])
		}
		tassert.Truef(t, res.GroupWorldBounds[n.Group].Contains(res.NodeWorldBounds[n.ID]),
			"node %d %v escapes group %d %v", n.ID, res.NodeWorldBounds[n.ID], n.Group, res.GroupWorldBounds[n.Group])
	}

	for _, g := range d.Groups {
		if g.Pos != nil {
			assert.Equal(t, *g.Pos, res.GroupLocalPos[g.ID])
		}
		if g.Parent != nil {
			tassert.Truef(t, res.GroupWorldBounds[*g.Parent].Contains(res.GroupWorldBounds[g.ID]),
				"group %d escapes group %d", g.ID, *g.Parent)
		}

		// Free nodes keep a gap to every sibling node.
		for i, a := range g.ChildNodes {
			for _, b := range g.ChildNodes[i+1:] {
				if d.Node(a).IsFixed() && d.Node(b).IsFixed() {
					continue
				}
				ra, rb := res.NodeWorldBounds[a], res.NodeWorldBounds[b]
				tassert.Falsef(t, ra.Expand(cfg.Gap).Overlaps(rb),
					"nodes %d %v and %d %v in group %d are closer than the gap", a, ra, b, rb, g.ID)
			}
		}
	}
}
