// Package trilayouts selects a placement algorithm and runs it over a
// diagram.
package trilayouts

import (
	"context"
	"fmt"
	"strings"

	"cdr.dev/slog"

	"oss.terrastruct.com/util-go/xdefer"

	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/trigraph"
	"oss.terrastruct.com/trident/trilayouts/triconstrained"
	"oss.terrastruct.com/trident/trilayouts/trigrid"
	"oss.terrastruct.com/trident/trilayouts/trihierarchical"
	"oss.terrastruct.com/trident/trilayouts/triradial"
)

type Algorithm int

const (
	Hierarchical Algorithm = iota
	Grid
	Constrained
	Radial
)

// AlgorithmInfo describes an algorithm for help output.
type AlgorithmInfo struct {
	Algorithm Algorithm
	Name      string
	ShortHelp string
	placer    trigraph.Placer
}

var algorithms = []AlgorithmInfo{
	{
		Algorithm: Hierarchical,
		Name:      "hierarchical",
		ShortHelp: "Ranked layers, supertypes and owners above, with crossing reduction. The default.",
		placer:    trihierarchical.Place,
	},
	{
		Algorithm: Grid,
		Name:      "grid",
		ShortHelp: "Rows at a fixed pitch in declaration order, ignoring edges.",
		placer:    trigrid.Place,
	},
	{
		Algorithm: Constrained,
		Name:      "constrained",
		ShortHelp: "Nodes gather around the placed neighbors they connect to. Suited to many fixed positions.",
		placer:    triconstrained.Place,
	},
	{
		Algorithm: Radial,
		Name:      "radial",
		ShortHelp: "Mind map around the most connected node, refined by a short force simulation.",
		placer:    triradial.Place,
	},
}

// Algorithms lists every algorithm, the default first.
func Algorithms() []AlgorithmInfo {
	return append([]AlgorithmInfo(nil), algorithms...)
}

func (a Algorithm) info() (AlgorithmInfo, bool) {
	if a < Hierarchical || int(a) >= len(algorithms) {
		return AlgorithmInfo{}, false
	}
	return algorithms[a], true
}

func (a Algorithm) String() string {
	if info, ok := a.info(); ok {
		return info.Name
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

func (a Algorithm) MarshalText() ([]byte, error) {
	info, ok := a.info()
	if !ok {
		return nil, fmt.Errorf("unknown layout algorithm %d", int(a))
	}
	return []byte(info.Name), nil
}

func (a *Algorithm) UnmarshalText(b []byte) error {
	v, err := ParseAlgorithm(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAlgorithm matches name case-insensitively. An empty name selects
// Hierarchical.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Hierarchical, nil
	}
	var names []string
	for _, info := range algorithms {
		if strings.EqualFold(info.Name, name) {
			return info.Algorithm, nil
		}
		names = append(names, info.Name)
	}
	return 0, fmt.Errorf("unknown layout algorithm %q, expected one of: %s", name, strings.Join(names, ", "))
}

// Layout validates d and cfg and lays d out with algo. A valid diagram
// always gets a complete result unless ctx is done first, in which case
// ctx.Err is returned.
func Layout(ctx context.Context, d *trigraph.Diagram, cfg *trigraph.Config, algo Algorithm) (_ *trigraph.Result, err error) {
	defer xdefer.Errorf(&err, "failed to lay out diagram")

	ctx = log.WithDefault(ctx)
	if cfg == nil {
		cfg = trigraph.DefaultConfig()
	}
	info, ok := algo.info()
	if !ok {
		return nil, fmt.Errorf("unknown layout algorithm %d", int(algo))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	log.Debug(ctx, "layout",
		slog.F("algorithm", info.Name),
		slog.F("groups", len(d.Groups)),
		slog.F("nodes", len(d.Nodes)),
		slog.F("edges", len(d.Edges)),
	)
	res := trigraph.Accumulate(ctx, d, cfg, trigraph.NewAdjacency(d), info.placer)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
