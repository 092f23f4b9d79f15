package trichaos_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"oss.terrastruct.com/util-go/assert"

	"oss.terrastruct.com/trident/trichaos"
)

func TestGenDiagram(t *testing.T) {
	t.Parallel()

	for seed := int64(0); seed < 50; seed++ {
		d := trichaos.GenDiagram(seed, 60, nil)
		assert.Success(t, d.Validate())

		again := trichaos.GenDiagram(seed, 60, nil)
		a, err := d.Marshal()
		assert.Success(t, err)
		b, err := again.Marshal()
		assert.Success(t, err)
		if diff := cmp.Diff(string(a), string(b)); diff != "" {
			t.Fatalf("seed %d is not reproducible (-first +second):\n%s", seed, diff)
		}
	}
}

func TestNoFixed(t *testing.T) {
	t.Parallel()

	for seed := int64(0); seed < 20; seed++ {
		d := trichaos.GenDiagram(seed, 60, &trichaos.Options{NoFixed: true, Labels: true})
		assert.Success(t, d.Validate())
		for _, n := range d.Nodes {
			assert.True(t, n.Pos == nil)
		}
		for _, g := range d.Groups {
			assert.True(t, g.Pos == nil)
		}
	}
}
