package trigraph

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants the compiler guarantees. The
// layout engines assume them and panic when they do not hold, so callers
// at the boundary validate first.
func (d *Diagram) Validate() error {
	if len(d.Groups) == 0 {
		return errors.New("diagram has no groups")
	}
	if int(d.Root) < 0 || int(d.Root) >= len(d.Groups) {
		return fmt.Errorf("root group %d out of range", d.Root)
	}
	for i, g := range d.Groups {
		if g == nil {
			return fmt.Errorf("group %d is null", i)
		}
		if int(g.ID) != i {
			return fmt.Errorf("group at index %d has id %d", i, g.ID)
		}
	}
	for i, n := range d.Nodes {
		if n == nil {
			return fmt.Errorf("node %d is null", i)
		}
		if int(n.ID) != i {
			return fmt.Errorf("node at index %d has id %d", i, n.ID)
		}
		if int(n.Group) < 0 || int(n.Group) >= len(d.Groups) {
			return fmt.Errorf("node %d: owning group %d out of range", n.ID, n.Group)
		}
		if n.Width != nil && *n.Width <= 0 {
			return fmt.Errorf("node %d: width must be positive, got %d", n.ID, *n.Width)
		}
		if n.Height != nil && *n.Height <= 0 {
			return fmt.Errorf("node %d: height must be positive, got %d", n.ID, *n.Height)
		}
	}
	for i, e := range d.Edges {
		if e == nil {
			return fmt.Errorf("edge %d is null", i)
		}
		if int(e.ID) != i {
			return fmt.Errorf("edge at index %d has id %d", i, e.ID)
		}
		if !d.HasNode(e.From) {
			return fmt.Errorf("edge %d: from node %d out of range", e.ID, e.From)
		}
		if !d.HasNode(e.To) {
			return fmt.Errorf("edge %d: to node %d out of range", e.ID, e.To)
		}
		if !e.Arrow.valid() {
			return fmt.Errorf("edge %d: invalid arrow", e.ID)
		}
	}

	if d.Groups[d.Root].Parent != nil {
		return fmt.Errorf("root group %d has a parent", d.Root)
	}
	for _, g := range d.Groups {
		if g.ID == d.Root {
			continue
		}
		if g.Parent == nil {
			return fmt.Errorf("group %d has no parent", g.ID)
		}
		if int(*g.Parent) < 0 || int(*g.Parent) >= len(d.Groups) {
			return fmt.Errorf("group %d: parent %d out of range", g.ID, *g.Parent)
		}
	}

	// Every group must be reached exactly once from the root through
	// ChildGroups, and every node exactly once through ChildNodes.
	seenGroups := make([]bool, len(d.Groups))
	seenNodes := make([]bool, len(d.Nodes))
	stack := []GroupID{d.Root}
	seenGroups[d.Root] = true
	for len(stack) > 0 {
		gid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		g := d.Groups[gid]
		for _, c := range g.ChildGroups {
			if int(c) < 0 || int(c) >= len(d.Groups) {
				return fmt.Errorf("group %d: child group %d out of range", gid, c)
			}
			if seenGroups[c] {
				return fmt.Errorf("group %d is reachable more than once", c)
			}
			child := d.Groups[c]
			if child.Parent == nil || *child.Parent != gid {
				return fmt.Errorf("group %d lists child group %d with a different parent", gid, c)
			}
			seenGroups[c] = true
			stack = append(stack, c)
		}
		for _, n := range g.ChildNodes {
			if !d.HasNode(n) {
				return fmt.Errorf("group %d: child node %d out of range", gid, n)
			}
			if seenNodes[n] {
				return fmt.Errorf("node %d is listed more than once", n)
			}
			if d.Nodes[n].Group != gid {
				return fmt.Errorf("group %d lists node %d owned by group %d", gid, n, d.Nodes[n].Group)
			}
			seenNodes[n] = true
		}
	}
	for i, ok := range seenGroups {
		if !ok {
			return fmt.Errorf("group %d is not reachable from the root", i)
		}
	}
	for i, ok := range seenNodes {
		if !ok {
			return fmt.Errorf("node %d is not listed by its group", i)
		}
	}
	return nil
}
