// Package trilib ties parsing, layout and export together for callers that
// start from serialized diagrams.
package trilib

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"cdr.dev/slog"
	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"oss.terrastruct.com/util-go/xdefer"

	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/triexporter"
	"oss.terrastruct.com/trident/trigraph"
	"oss.terrastruct.com/trident/trilayouts"
	"oss.terrastruct.com/trident/tritarget"
)

type LayoutOptions struct {
	Algorithm trilayouts.Algorithm
	// Config defaults to trigraph.DefaultConfig.
	Config *trigraph.Config
	// Timeout bounds each layout. Zero means no limit. TRIDENT_TIMEOUT
	// overrides it.
	Timeout time.Duration
}

// Layout parses a diagram, lays it out and exports the result. The parsed
// diagram is returned alongside for callers that write positions back.
func Layout(ctx context.Context, input []byte, opts *LayoutOptions) (*tritarget.Diagram, *trigraph.Diagram, error) {
	if opts == nil {
		opts = &LayoutOptions{}
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = trigraph.DefaultConfig()
	}

	ctx, cancel := log.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	d, err := trigraph.ParseDiagram(input)
	if err != nil {
		return nil, nil, err
	}
	res, err := trilayouts.Layout(ctx, d, cfg, opts.Algorithm)
	if err != nil {
		return nil, nil, err
	}
	diagram, err := triexporter.Export(ctx, d, cfg, res)
	if err != nil {
		return nil, nil, err
	}
	diagram.Algorithm = opts.Algorithm.String()
	return diagram, d, nil
}

// LayoutBatch lays out every input concurrently with at most jobs layouts in
// flight, GOMAXPROCS when jobs is not positive. Results are in input order.
// An input that fails, or that ctx ends before it runs, gets an error
// diagram and contributes to the returned error. The others still complete.
func LayoutBatch(ctx context.Context, inputs [][]byte, opts *LayoutOptions, jobs int) ([]*tritarget.Diagram, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]*tritarget.Diagram, len(inputs))
	errs := make([]error, len(inputs))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			var diagram *tritarget.Diagram
			err := ctx.Err()
			if err == nil {
				diagram, _, err = Layout(ctx, input, opts)
			}
			if err != nil {
				results[i] = tritarget.NewErrorDiagram(err)
				errs[i] = fmt.Errorf("input %d: %w", i, err)
				return nil
			}
			results[i] = diagram
			return nil
		})
	}
	// Failures are recorded per input in errs.
	_ = g.Wait()

	var err error
	for _, e := range errs {
		err = multierr.Append(err, e)
	}
	log.Debug(ctx, "laid out batch", slog.F("inputs", len(inputs)), slog.F("failed", len(multierr.Errors(err))))
	return results, err
}

// LoadConfig reads a TOML config file. Keys it does not set keep their
// defaults and unknown keys are an error.
func LoadConfig(path string) (_ *trigraph.Config, err error) {
	defer xdefer.Errorf(&err, "failed to load config %q", path)

	cfg := trigraph.DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	return checkConfig(cfg, md)
}

func ParseConfig(s string) (_ *trigraph.Config, err error) {
	defer xdefer.Errorf(&err, "failed to parse config")

	cfg := trigraph.DefaultConfig()
	md, err := toml.Decode(s, cfg)
	if err != nil {
		return nil, err
	}
	return checkConfig(cfg, md)
}

func checkConfig(cfg *trigraph.Config, md toml.MetaData) (*trigraph.Config, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
