package trigraph

import (
	"fmt"
	"sort"
	"strings"
)

type ArrowKind int

const (
	ArrowAssoc ArrowKind = iota
	ArrowExtends
	ArrowImplements
	ArrowDep
	ArrowCompose
	ArrowAggregate
	ArrowLine
	ArrowDotted
)

type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
)

type HeadStyle string

const (
	HeadNone          HeadStyle = "none"
	HeadArrow         HeadStyle = "arrow"
	HeadTriangle      HeadStyle = "triangle"
	HeadDiamondFilled HeadStyle = "diamond_filled"
	HeadDiamondEmpty  HeadStyle = "diamond_empty"
)

// ArrowDefinition describes an arrow kind in its right pointing form.
type ArrowDefinition struct {
	Kind ArrowKind
	// Token is the right pointing source spelling.
	Token     string
	Name      string
	Detail    string
	LineStyle LineStyle
	HeadStyle HeadStyle
	// Directional kinds get _left and _right variants.
	Directional bool
	// Hierarchy kinds influence ranking. When HierarchyReversed is set the
	// "to" end is the parent, as with inheritance.
	Hierarchy         bool
	HierarchyReversed bool
	// Weight is the edge strength used to build radial spanning trees.
	Weight int
}

var ArrowDefinitions = []ArrowDefinition{
	{
		Kind:        ArrowAssoc,
		Token:       "-->",
		Name:        "assoc",
		Detail:      "Association arrow",
		LineStyle:   LineSolid,
		HeadStyle:   HeadArrow,
		Directional: true,
		Hierarchy:   true,
		Weight:      40,
	},
	{
		Kind:              ArrowExtends,
		Token:             "--|>",
		Name:              "extends",
		Detail:            "Inheritance/extends arrow",
		LineStyle:         LineSolid,
		HeadStyle:         HeadTriangle,
		Directional:       true,
		Hierarchy:         true,
		HierarchyReversed: true,
		Weight:            100,
	},
	{
		Kind:              ArrowImplements,
		Token:             "..|>",
		Name:              "implements",
		Detail:            "Implements/realizes arrow",
		LineStyle:         LineDashed,
		HeadStyle:         HeadTriangle,
		Directional:       true,
		Hierarchy:         true,
		HierarchyReversed: true,
		Weight:            100,
	},
	{
		Kind:        ArrowDep,
		Token:       "..>",
		Name:        "dep",
		Detail:      "Dependency arrow",
		LineStyle:   LineDashed,
		HeadStyle:   HeadArrow,
		Directional: true,
		Hierarchy:   true,
		Weight:      60,
	},
	{
		Kind:        ArrowCompose,
		Token:       "*--",
		Name:        "compose",
		Detail:      "Composition (strong ownership)",
		LineStyle:   LineSolid,
		HeadStyle:   HeadDiamondFilled,
		Directional: true,
		Hierarchy:   true,
		Weight:      80,
	},
	{
		Kind:        ArrowAggregate,
		Token:       "o--",
		Name:        "aggregate",
		Detail:      "Aggregation (weak ownership)",
		LineStyle:   LineSolid,
		HeadStyle:   HeadDiamondEmpty,
		Directional: true,
		Hierarchy:   true,
		Weight:      80,
	},
	{
		Kind:      ArrowLine,
		Token:     "---",
		Name:      "line",
		Detail:    "Simple line (no direction)",
		LineStyle: LineSolid,
		HeadStyle: HeadNone,
		Weight:    20,
	},
	{
		Kind:      ArrowDotted,
		Token:     "..",
		Name:      "dotted",
		Detail:    "Dotted line (no direction)",
		LineStyle: LineDashed,
		HeadStyle: HeadNone,
		Weight:    20,
	},
}

// Arrow is an arrow kind plus the side it points to. Left arrows point from
// "to" back to "from". Non-directional kinds are never Left.
type Arrow struct {
	Kind ArrowKind
	Left bool
}

var (
	Assoc      = Arrow{Kind: ArrowAssoc}
	Extends    = Arrow{Kind: ArrowExtends}
	Implements = Arrow{Kind: ArrowImplements}
	Dep        = Arrow{Kind: ArrowDep}
	Compose    = Arrow{Kind: ArrowCompose}
	Aggregate  = Arrow{Kind: ArrowAggregate}
	Line       = Arrow{Kind: ArrowLine}
	Dotted     = Arrow{Kind: ArrowDotted}
)

func (a Arrow) valid() bool {
	if a.Kind < ArrowAssoc || a.Kind > ArrowDotted {
		return false
	}
	return !a.Left || a.Definition().Directional
}

func (a Arrow) Definition() ArrowDefinition {
	for _, def := range ArrowDefinitions {
		if def.Kind == a.Kind {
			return def
		}
	}
	panic(fmt.Sprintf("trigraph: unknown arrow kind %d", a.Kind))
}

// String returns the canonical name, e.g. assoc_right, extends_left, line.
func (a Arrow) String() string {
	def := a.Definition()
	if !def.Directional {
		return def.Name
	}
	if a.Left {
		return def.Name + "_left"
	}
	return def.Name + "_right"
}

// Token returns the source spelling. Left tokens mirror the right token.
func (a Arrow) Token() string {
	def := a.Definition()
	if a.Left {
		return reverseToken(def.Token)
	}
	return def.Token
}

// Flip returns the opposite pointing variant of a directional arrow.
func (a Arrow) Flip() Arrow {
	if !a.Definition().Directional {
		return a
	}
	return Arrow{Kind: a.Kind, Left: !a.Left}
}

func (a Arrow) Weight() int {
	return a.Definition().Weight
}

// Hierarchy orients an edge for ranking. parent ranks above child. ok is
// false for kinds that carry no hierarchy.
func (a Arrow) Hierarchy(from, to NodeID) (parent, child NodeID, ok bool) {
	def := a.Definition()
	if !def.Hierarchy {
		return 0, 0, false
	}
	// Left flips the pointing direction, reversed flips who is the parent.
	if def.HierarchyReversed != a.Left {
		return to, from, true
	}
	return from, to, true
}

func (a Arrow) MarshalText() ([]byte, error) {
	if !a.valid() {
		return nil, fmt.Errorf("invalid arrow %#v", a)
	}
	return []byte(a.String()), nil
}

func (a *Arrow) UnmarshalText(b []byte) error {
	parsed, err := ParseArrow(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseArrow parses a canonical arrow name.
func ParseArrow(name string) (Arrow, error) {
	base := name
	left := false
	suffixed := false
	if s, ok := strings.CutSuffix(name, "_left"); ok {
		base, left, suffixed = s, true, true
	} else if s, ok := strings.CutSuffix(name, "_right"); ok {
		base, suffixed = s, true
	}
	for _, def := range ArrowDefinitions {
		if def.Name != base {
			continue
		}
		if def.Directional != suffixed {
			break
		}
		return Arrow{Kind: def.Kind, Left: left}, nil
	}
	return Arrow{}, fmt.Errorf("unknown arrow %q", name)
}

type ArrowEntry struct {
	Token string
	Arrow Arrow
}

// ArrowRegistry lists every arrow spelling, longest token first so a
// tokenizer can match greedily.
func ArrowRegistry() []ArrowEntry {
	var entries []ArrowEntry
	for _, def := range ArrowDefinitions {
		right := Arrow{Kind: def.Kind}
		entries = append(entries, ArrowEntry{Token: right.Token(), Arrow: right})
		if def.Directional {
			left := Arrow{Kind: def.Kind, Left: true}
			entries = append(entries, ArrowEntry{Token: left.Token(), Arrow: left})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].Token) > len(entries[j].Token)
	})
	return entries
}

func ArrowFromToken(tok string) (Arrow, bool) {
	for _, e := range ArrowRegistry() {
		if e.Token == tok {
			return e.Arrow, true
		}
	}
	return Arrow{}, false
}

func reverseToken(tok string) string {
	r := []rune(tok)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	for i, c := range r {
		switch c {
		case '>':
			r[i] = '<'
		case '<':
			r[i] = '>'
		}
	}
	return string(r)
}
