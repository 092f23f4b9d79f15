// Package triexporter turns a diagram and its layout into the render
// boundary types of tritarget.
package triexporter

import (
	"context"
	"fmt"

	"cdr.dev/slog"

	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/trigraph"
	"oss.terrastruct.com/trident/tritarget"
)

// Export copies world geometry out of res. res must have been computed for
// d.
func Export(ctx context.Context, d *trigraph.Diagram, cfg *trigraph.Config, res *trigraph.Result) (*tritarget.Diagram, error) {
	if len(res.NodeWorldBounds) != len(d.Nodes) || len(res.GroupWorldBounds) != len(d.Groups) {
		return nil, fmt.Errorf("layout result covers %d groups and %d nodes, diagram has %d and %d",
			len(res.GroupWorldBounds), len(res.NodeWorldBounds), len(d.Groups), len(d.Nodes))
	}
	if cfg == nil {
		cfg = trigraph.DefaultConfig()
	}

	diagram := &tritarget.Diagram{
		Bounds:        res.GroupWorldBounds[d.Root],
		Groups:        []tritarget.Group{},
		Nodes:         make([]tritarget.Node, len(d.Nodes)),
		Edges:         make([]tritarget.Edge, len(d.Edges)),
		ImplicitNodes: []string{},
	}

	for _, g := range d.Groups {
		if g.ID == d.Root || g.Name == nil {
			continue
		}
		diagram.Groups = append(diagram.Groups, toGroup(g, res))
	}
	for i, n := range d.Nodes {
		diagram.Nodes[i] = toNode(n, cfg, res)
		if !n.Explicit {
			diagram.ImplicitNodes = append(diagram.ImplicitNodes, n.Name)
		}
	}
	for i, e := range d.Edges {
		diagram.Edges[i] = toEdge(d, e)
	}

	log.Debug(ctx, "exported diagram",
		slog.F("groups", len(diagram.Groups)),
		slog.F("nodes", len(diagram.Nodes)),
		slog.F("edges", len(diagram.Edges)),
	)
	return diagram, nil
}

func toGroup(g *trigraph.Group, res *trigraph.Result) tritarget.Group {
	return tritarget.Group{
		ID:           *g.Name,
		Bounds:       res.GroupWorldBounds[g.ID],
		HasPos:       g.IsFixed(),
		ParentOffset: res.GroupWorldPos[*g.Parent],
	}
}

func toNode(n *trigraph.Node, cfg *trigraph.Config, res *trigraph.Result) tritarget.Node {
	r := cfg.NodeRendering
	modifiers := n.Modifiers
	if modifiers == nil {
		modifiers = []string{}
	}
	return tritarget.Node{
		ID:           n.Name,
		Kind:         n.Kind,
		Modifiers:    modifiers,
		Label:        n.Label,
		BodyLines:    n.BodyLines,
		TextElements: textElements(n, &r),
		Rendering: tritarget.RenderingConfig{
			Padding:          r.Padding,
			LineHeight:       r.LineHeight,
			SeparatorSpacing: r.SeparatorSpacing,
			CharWidth:        r.CharWidth,
		},
		Bounds:       res.NodeWorldBounds[n.ID],
		HasPos:       n.IsFixed(),
		ParentOffset: res.GroupWorldPos[n.Group],
		Explicit:     n.Explicit,
	}
}

// textElements lays out the lines of a node's box top to bottom, one line
// height each, matching the height Node.Size computes.
func textElements(n *trigraph.Node, r *trigraph.NodeRendering) []tritarget.TextElement {
	var out []tritarget.TextElement
	y := r.Padding

	if st := n.Stereotype(); st != "" {
		out = append(out, tritarget.TextElement{
			Type:     tritarget.TextStereotype,
			Text:     st,
			Y:        y + tritarget.STEREOTYPE_FONT_SIZE,
			FontSize: tritarget.STEREOTYPE_FONT_SIZE,
		})
		y += r.LineHeight
	}

	out = append(out, tritarget.TextElement{
		Type:     tritarget.TextTitle,
		Text:     n.Title(),
		Y:        y + tritarget.TITLE_FONT_SIZE,
		FontSize: tritarget.TITLE_FONT_SIZE,
		Italic:   go2.Contains(n.Modifiers, "abstract"),
	})
	y += r.LineHeight

	out = append(out, separator(y, r))
	y += r.LineHeight

	for _, l := range n.BodyLines {
		if trigraph.IsSeparatorLine(l) {
			out = append(out, separator(y, r))
		} else {
			out = append(out, tritarget.TextElement{
				Type:     tritarget.TextBody,
				Text:     l,
				Y:        y + tritarget.BODY_FONT_SIZE,
				FontSize: tritarget.BODY_FONT_SIZE,
			})
		}
		y += r.LineHeight
	}
	return out
}

func separator(y int, r *trigraph.NodeRendering) tritarget.TextElement {
	return tritarget.TextElement{
		Type: tritarget.TextSeparator,
		Y:    y + r.LineHeight/2,
	}
}

func toEdge(d *trigraph.Diagram, e *trigraph.Edge) tritarget.Edge {
	return tritarget.Edge{
		From:  d.Node(e.From).Name,
		To:    d.Node(e.To).Name,
		Arrow: e.Arrow.String(),
		Token: e.Arrow.Token(),
		Label: e.Label,
	}
}
