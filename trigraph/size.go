package trigraph

import (
	"strings"
	"unicode/utf8"

	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/trident/lib/geo"
)

// DefaultNodeSize is used when a node's size cannot be looked up.
var DefaultNodeSize = geo.NewSize(100, 80)

// Size returns the node's box size. Explicit dimensions win. Otherwise the
// width is the kind default, widened for long text lines, and the height
// fits the rendered lines: an optional stereotype line, the title, the
// separator and the body.
func (n *Node) Size(cfg *Config) geo.Size {
	def := cfg.ClassSize
	if n.Kind == KindNode {
		def = cfg.NodeSize
	}

	var s geo.Size
	if n.Width != nil {
		s.W = *n.Width
	} else {
		s.W = n.contentWidth(cfg, def.W)
	}
	if n.Height != nil {
		s.H = *n.Height
	} else {
		s.H = n.contentHeight(&cfg.NodeRendering)
	}
	return s
}

func (n *Node) contentWidth(cfg *Config, minWidth int) int {
	r := cfg.NodeRendering
	widest := utf8.RuneCountInString(n.Title())
	if st := n.Stereotype(); st != "" {
		widest = go2.Max(widest, utf8.RuneCountInString(st))
	}
	for _, l := range n.BodyLines {
		if IsSeparatorLine(l) {
			continue
		}
		widest = go2.Max(widest, utf8.RuneCountInString(l))
	}
	return go2.Max(minWidth, widest*r.CharWidth+2*r.Padding)
}

func (n *Node) contentHeight(r *NodeRendering) int {
	lines := 0
	if len(n.Modifiers) > 0 || n.Kind != KindClass {
		// stereotype
		lines++
	}
	// title and separator
	lines += 2
	lines += len(n.BodyLines)
	return r.Padding + lines*r.LineHeight + r.Padding
}

// Stereotype formats modifiers and non class kinds as «guillemet» tags.
func (n *Node) Stereotype() string {
	var parts []string
	for _, m := range n.Modifiers {
		parts = append(parts, "«"+m+"»")
	}
	if n.Kind != KindClass {
		parts = append(parts, "«"+n.Kind+"»")
	}
	return strings.Join(parts, " ")
}

// IsSeparatorLine reports whether a body line is a --- divider.
func IsSeparatorLine(l string) bool {
	l = strings.TrimSpace(l)
	return l != "" && strings.Trim(l, "-") == ""
}
