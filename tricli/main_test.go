package tricli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tassert "github.com/stretchr/testify/assert"

	"oss.terrastruct.com/util-go/assert"
	"oss.terrastruct.com/util-go/xmain"
	"oss.terrastruct.com/util-go/xos"

	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/tricli"
	"oss.terrastruct.com/trident/trigraph"
	"oss.terrastruct.com/trident/tritarget"
)

func TestRun(t *testing.T) {
	t.Parallel()

	tca := []struct {
		name string
		run  func(t *testing.T, ctx context.Context, dir string, env *xos.Env)
	}{
		{
			name: "default_output",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				writeFile(t, dir, "in.json", diagramJSON(t))
				err := runTestMain(t, ctx, dir, env, "in.json")
				assert.Success(t, err)

				d := decode(t, readFile(t, dir, "in.layout.json"), tritarget.FormatJSON)
				assert.String(t, "hierarchical", d.Algorithm)
				_, ok := d.Node("A")
				assert.True(t, ok)
				tassert.Nil(t, d.Error)
			},
		},
		{
			name: "msgpack_by_extension",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				writeFile(t, dir, "in.json", diagramJSON(t))
				err := runTestMain(t, ctx, dir, env, "--layout=grid", "in.json", "out.msgpack")
				assert.Success(t, err)

				d := decode(t, readFile(t, dir, "out.msgpack"), tritarget.FormatMsgpack)
				assert.String(t, "grid", d.Algorithm)
				b, ok := d.Node("B")
				assert.True(t, ok)
				assert.Equal(t, geo.Rect{X: 268, Y: 24, W: 220, H: 44}, b.Bounds)
			},
		},
		{
			name: "format_flag",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				writeFile(t, dir, "in.json", diagramJSON(t))
				err := runTestMain(t, ctx, dir, env, "--format=msgpack", "-l", "radial", "in.json")
				assert.Success(t, err)

				d := decode(t, readFile(t, dir, "in.layout.msgpack"), tritarget.FormatMsgpack)
				assert.String(t, "radial", d.Algorithm)
			},
		},
		{
			name: "config",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				writeFile(t, dir, "in.json", diagramJSON(t))
				writeFile(t, dir, "trident.toml", []byte("gap = 100\n"))
				err := runTestMain(t, ctx, dir, env, "--config=trident.toml", "--layout=grid", "in.json")
				assert.Success(t, err)

				d := decode(t, readFile(t, dir, "in.layout.json"), tritarget.FormatJSON)
				b, ok := d.Node("B")
				assert.True(t, ok)
				assert.Equal(t, 344, b.Bounds.X)
			},
		},
		{
			name: "stdin",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				stdin := bytes.NewBuffer(diagramJSON(t))
				stdout := &bytes.Buffer{}
				tms := testMain(dir, env, "--layout=constrained", "-")
				tms.Stdin = stdin
				tms.Stdout = stdout
				tms.Start(t, ctx)
				defer tms.Cleanup(t)
				err := tms.Wait(ctx)
				assert.Success(t, err)

				d := decode(t, stdout.Bytes(), tritarget.FormatJSON)
				assert.String(t, "constrained", d.Algorithm)
				assert.Equal(t, 3, len(d.Nodes))
			},
		},
		{
			name: "invalid_diagram",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				writeFile(t, dir, "bad.json", []byte(`{"root": 0, "groups": []}`))
				err := runTestMain(t, ctx, dir, env, "bad.json")
				tassert.ErrorContains(t, err, "failed to parse diagram: diagram has no groups")

				d := decode(t, readFile(t, dir, "bad.layout.json"), tritarget.FormatJSON)
				assert.String(t, "failed to parse diagram: diagram has no groups", d.Error.Message)
			},
		},
		{
			name: "unknown_layout",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				writeFile(t, dir, "in.json", diagramJSON(t))
				err := runTestMain(t, ctx, dir, env, "--layout=dagre", "in.json")
				assert.ErrorString(t, err, `failed to wait xmain test: tricli/trident: bad usage: unknown layout algorithm "dagre", expected one of: hierarchical, grid, constrained, radial`)
			},
		},
		{
			name: "unknown_format",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				writeFile(t, dir, "in.json", diagramJSON(t))
				err := runTestMain(t, ctx, dir, env, "--format=svg", "in.json")
				assert.ErrorString(t, err, `failed to wait xmain test: tricli/trident: bad usage: unknown output format "svg", expected json or msgpack`)
			},
		},
		{
			name: "bad_config",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				writeFile(t, dir, "in.json", diagramJSON(t))
				writeFile(t, dir, "trident.toml", []byte("padding = 3\n"))
				err := runTestMain(t, ctx, dir, env, "--config=trident.toml", "in.json")
				tassert.ErrorContains(t, err, "bad usage: failed to load config")
				tassert.ErrorContains(t, err, "unknown keys: padding")
			},
		},
		{
			name: "too_many_args",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				err := runTestMain(t, ctx, dir, env, "a.json", "b.json", "c.json")
				assert.ErrorString(t, err, `failed to wait xmain test: tricli/trident: bad usage: too many arguments passed`)
			},
		},
		{
			name: "watch_stdin",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				err := runTestMain(t, ctx, dir, env, "--watch", "-")
				assert.ErrorString(t, err, `failed to wait xmain test: tricli/trident: bad usage: -w[atch] cannot be combined with reading from stdin`)
			},
		},
		{
			name: "batch",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				writeFile(t, dir, "a.json", diagramJSON(t))
				writeFile(t, dir, "nested/b.json", diagramJSON(t))
				err := runTestMain(t, ctx, dir, env, "--layout=grid", "--jobs=2", "batch", "a.json", "nested/b.json")
				assert.Success(t, err)

				a := decode(t, readFile(t, dir, "a.layout.json"), tritarget.FormatJSON)
				b := decode(t, readFile(t, dir, "nested/b.layout.json"), tritarget.FormatJSON)
				tassert.Equal(t, a, b)
			},
		},
		{
			name: "batch_partial_failure",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				writeFile(t, dir, "a.json", diagramJSON(t))
				writeFile(t, dir, "b.json", []byte(`{`))
				err := runTestMain(t, ctx, dir, env, "batch", "a.json", "b.json")
				tassert.ErrorContains(t, err, "input 1: failed to parse diagram")

				a := decode(t, readFile(t, dir, "a.layout.json"), tritarget.FormatJSON)
				tassert.Nil(t, a.Error)
				b := decode(t, readFile(t, dir, "b.layout.json"), tritarget.FormatJSON)
				tassert.NotNil(t, b.Error)
			},
		},
		{
			name: "validate",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				writeFile(t, dir, "in.json", diagramJSON(t))
				err := runTestMain(t, ctx, dir, env, "validate", "in.json")
				assert.Success(t, err)

				writeFile(t, dir, "bad.json", []byte(`{"root": 0, "groups": [null]}`))
				err = runTestMain(t, ctx, dir, env, "validate", "bad.json")
				tassert.ErrorContains(t, err, "failed to validate: failed to parse diagram: group 0 is null")

				err = runTestMain(t, ctx, dir, env, "validate")
				tassert.ErrorContains(t, err, "validate must be passed an input file to be validated")
			},
		},
		{
			name: "layouts",
			run: func(t *testing.T, ctx context.Context, dir string, env *xos.Env) {
				stdout := &bytes.Buffer{}
				tms := testMain(dir, env, "layouts")
				tms.Stdout = stdout
				tms.Start(t, ctx)
				defer tms.Cleanup(t)
				err := tms.Wait(ctx)
				assert.Success(t, err)

				tassert.Contains(t, stdout.String(), "hierarchical (default) - ")
				tassert.Contains(t, stdout.String(), "\nradial - ")
			},
		},
	}

	ctx := context.Background()
	for _, tc := range tca {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()

			dir, cleanup := assert.TempDir(t)
			defer cleanup()

			env := xos.NewEnv(nil)

			tc.run(t, ctx, dir, env)
		})
	}
}

func diagramJSON(t *testing.T) []byte {
	t.Helper()

	d := trigraph.NewDiagram()
	pkg := d.AddGroup(d.Root, "pkg")
	a := d.AddNode(d.Root, trigraph.KindClass, "A")
	b := d.AddNode(d.Root, trigraph.KindClass, "B")
	c := d.AddNode(pkg.ID, trigraph.KindNode, "C")
	d.AddEdge(a.ID, b.ID, trigraph.Extends)
	d.AddEdge(b.ID, c.ID, trigraph.Dep)
	out, err := d.Marshal()
	assert.Success(t, err)
	return out
}

func decode(t *testing.T, b []byte, f tritarget.Format) *tritarget.Diagram {
	t.Helper()
	d, err := tritarget.Decode(bytes.NewReader(b), f)
	assert.Success(t, err)
	return d
}

func testMain(dir string, env *xos.Env, args ...string) *xmain.TestState {
	return &xmain.TestState{
		Run:  tricli.Run,
		Env:  env,
		Args: append([]string{"tricli/trident"}, args...),
		PWD:  dir,
	}
}

func runTestMain(tb testing.TB, ctx context.Context, dir string, env *xos.Env, args ...string) error {
	tms := testMain(dir, env, args...)
	tms.Start(tb, ctx)
	defer tms.Cleanup(tb)
	return tms.Wait(ctx)
}

func writeFile(tb testing.TB, dir, fp string, data []byte) {
	tb.Helper()
	err := os.MkdirAll(filepath.Dir(filepath.Join(dir, fp)), 0755)
	assert.Success(tb, err)
	assert.WriteFile(tb, filepath.Join(dir, fp), data, 0644)
}

func readFile(tb testing.TB, dir, fp string) []byte {
	tb.Helper()
	return assert.ReadFile(tb, filepath.Join(dir, fp))
}
