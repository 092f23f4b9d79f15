// Package trigraph holds the diagram IR consumed by the layout engines and
// the pieces every engine shares: arrow semantics, node sizing, adjacency,
// layout results and the container tree traversal that turns local child
// positions into world coordinates.
//
// A Diagram is an arena: Groups, Nodes and Edges are indexed by their ids.
// The layout engines never mutate it.
package trigraph

import (
	"fmt"
	"sort"

	"oss.terrastruct.com/trident/lib/geo"
)

type GroupID int

type NodeID int

type EdgeID int

type Diagram struct {
	Root   GroupID  `json:"root"`
	Groups []*Group `json:"groups"`
	Nodes  []*Node  `json:"nodes"`
	Edges  []*Edge  `json:"edges"`

	nextOrder int
}

type Group struct {
	ID GroupID `json:"id"`
	// Name is nil for anonymous groups.
	Name   *string  `json:"name,omitempty"`
	Parent *GroupID `json:"parent,omitempty"`
	// Pos is relative to the parent group. Non-nil means fixed.
	Pos         *geo.Point `json:"pos,omitempty"`
	ChildGroups []GroupID  `json:"child_groups,omitempty"`
	ChildNodes  []NodeID   `json:"child_nodes,omitempty"`
	Order       int        `json:"order"`
}

type Node struct {
	ID        NodeID   `json:"id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Modifiers []string `json:"modifiers,omitempty"`
	Label     *string  `json:"label,omitempty"`
	Group     GroupID  `json:"group"`
	// Pos is relative to the owning group. Non-nil means fixed.
	Pos       *geo.Point `json:"pos,omitempty"`
	Width     *int       `json:"width,omitempty"`
	Height    *int       `json:"height,omitempty"`
	BodyLines []string   `json:"body_lines,omitempty"`
	// Explicit is false for nodes the compiler created while resolving an
	// edge endpoint. Layout treats both the same.
	Explicit bool `json:"explicit"`
	Order    int  `json:"order"`
}

type Edge struct {
	ID    EdgeID  `json:"id"`
	From  NodeID  `json:"from"`
	To    NodeID  `json:"to"`
	Arrow Arrow   `json:"arrow"`
	Label *string `json:"label,omitempty"`
	Order int     `json:"order"`
}

const (
	KindClass = "class"
	KindNode  = "node"
)

// NewDiagram returns a diagram holding only the anonymous root group.
func NewDiagram() *Diagram {
	d := &Diagram{}
	d.Groups = append(d.Groups, &Group{
		ID:    0,
		Order: d.takeOrder(),
	})
	d.Root = 0
	return d
}

func (d *Diagram) takeOrder() int {
	o := d.nextOrder
	d.nextOrder++
	return o
}

// AddGroup appends a named child group to parent. An empty name creates an
// anonymous group.
func (d *Diagram) AddGroup(parent GroupID, name string) *Group {
	g := &Group{
		ID:     GroupID(len(d.Groups)),
		Parent: &parent,
		Order:  d.takeOrder(),
	}
	if name != "" {
		g.Name = &name
	}
	d.Groups = append(d.Groups, g)
	p := d.Group(parent)
	p.ChildGroups = append(p.ChildGroups, g.ID)
	return g
}

func (d *Diagram) AddNode(group GroupID, kind, name string) *Node {
	n := &Node{
		ID:       NodeID(len(d.Nodes)),
		Name:     name,
		Kind:     kind,
		Group:    group,
		Explicit: true,
		Order:    d.takeOrder(),
	}
	d.Nodes = append(d.Nodes, n)
	g := d.Group(group)
	g.ChildNodes = append(g.ChildNodes, n.ID)
	return n
}

func (d *Diagram) AddEdge(from, to NodeID, arrow Arrow) *Edge {
	e := &Edge{
		ID:    EdgeID(len(d.Edges)),
		From:  from,
		To:    to,
		Arrow: arrow,
		Order: d.takeOrder(),
	}
	d.Edges = append(d.Edges, e)
	return e
}

// Group panics on an unknown id. Ids come from the diagram itself so a miss
// is a programming error.
func (d *Diagram) Group(id GroupID) *Group {
	if int(id) < 0 || int(id) >= len(d.Groups) {
		panic(fmt.Sprintf("trigraph: unknown group %d", id))
	}
	return d.Groups[id]
}

func (d *Diagram) Node(id NodeID) *Node {
	if int(id) < 0 || int(id) >= len(d.Nodes) {
		panic(fmt.Sprintf("trigraph: unknown node %d", id))
	}
	return d.Nodes[id]
}

func (d *Diagram) HasNode(id NodeID) bool {
	return int(id) >= 0 && int(id) < len(d.Nodes)
}

// EdgesByOrder returns the edges sorted by declaration order.
func (d *Diagram) EdgesByOrder() []*Edge {
	edges := make([]*Edge, len(d.Edges))
	copy(edges, d.Edges)
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Order < edges[j].Order
	})
	return edges
}

// SortNodes sorts ids in place by declaration order.
func (d *Diagram) SortNodes(ids []NodeID) {
	sort.SliceStable(ids, func(i, j int) bool {
		return d.Nodes[ids[i]].Order < d.Nodes[ids[j]].Order
	})
}

func (d *Diagram) SortGroups(ids []GroupID) {
	sort.SliceStable(ids, func(i, j int) bool {
		return d.Groups[ids[i]].Order < d.Groups[ids[j]].Order
	})
}

// OwnerChain returns the groups from the node's owner up to the root.
func (d *Diagram) OwnerChain(n NodeID) []GroupID {
	var chain []GroupID
	gid := d.Node(n).Group
	for steps := 0; steps <= len(d.Groups); steps++ {
		chain = append(chain, gid)
		g := d.Group(gid)
		if gid == d.Root || g.Parent == nil {
			return chain
		}
		gid = *g.Parent
	}
	panic("trigraph: group parent cycle")
}

func (g *Group) IsFixed() bool {
	return g.Pos != nil
}

func (n *Node) IsFixed() bool {
	return n.Pos != nil
}

// Title is the label when set, else the node name.
func (n *Node) Title() string {
	if n.Label != nil {
		return *n.Label
	}
	return n.Name
}
