package trigraph

import (
	"context"
	"fmt"

	"cdr.dev/slog"

	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/lib/spatial"
)

// Placer lays out the free children of one container. Fixed children are
// already in place when it runs and child groups already have their local
// bounds.
type Placer func(ctx context.Context, s *Scope)

// PostOrderGroups lists groups children first, siblings in ChildGroups
// order. The traversal uses an explicit stack so deep nesting cannot
// exhaust the goroutine stack.
func (d *Diagram) PostOrderGroups() []GroupID {
	type frame struct {
		id   GroupID
		next int
	}
	out := make([]GroupID, 0, len(d.Groups))
	stack := []frame{{id: d.Root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		g := d.Group(top.id)
		if top.next < len(g.ChildGroups) {
			c := g.ChildGroups[top.next]
			top.next++
			stack = append(stack, frame{id: c})
			continue
		}
		out = append(out, top.id)
		stack = stack[:len(stack)-1]
	}
	return out
}

// PreOrderGroups lists groups parents first.
func (d *Diagram) PreOrderGroups() []GroupID {
	out := make([]GroupID, 0, len(d.Groups))
	stack := []GroupID{d.Root}
	for len(stack) > 0 {
		gid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, gid)
		g := d.Group(gid)
		for i := len(g.ChildGroups) - 1; i >= 0; i-- {
			stack = append(stack, g.ChildGroups[i])
		}
	}
	return out
}

// ComputeGroupLocalBounds returns the box of g relative to its own
// position: the union of its children expanded by padding, or the minimum
// group size at the origin when g is empty.
func ComputeGroupLocalBounds(d *Diagram, g GroupID, cfg *Config, res *Result) geo.Rect {
	grp := d.Group(g)

	var bb geo.Rect
	found := false
	add := func(r geo.Rect) {
		if !found {
			bb = r
			found = true
			return
		}
		bb = bb.Union(r)
	}
	for _, c := range grp.ChildGroups {
		add(res.localBounds(c, cfg).Translate(res.GroupLocalPos[c]))
	}
	for _, n := range grp.ChildNodes {
		add(geo.NewRect(res.NodeLocalPos[n], d.Node(n).Size(cfg)))
	}

	if !found {
		return geo.NewRect(geo.Point{}, cfg.MinGroupSize)
	}
	return bb.Expand(cfg.GroupPadding)
}

// Accumulate runs the two layout passes shared by every algorithm. The
// first pass walks containers children first, places fixed children, lets
// placer lay out the free ones and sizes the container. The second pass
// walks parents first and turns local positions into world positions.
//
// Once ctx is done placer is no longer called and the remaining containers
// are only packed. Callers that honor deadlines check ctx.Err afterwards.
func Accumulate(ctx context.Context, d *Diagram, cfg *Config, adj *Adjacency, placer Placer) *Result {
	res := NewResult(d)
	sizes := make([]geo.Size, len(d.Nodes))
	for i, n := range d.Nodes {
		sizes[i] = n.Size(cfg)
	}

	root := d.Group(d.Root)
	if root.Pos != nil {
		res.setGroupLocal(d.Root, *root.Pos)
	} else {
		res.setGroupLocal(d.Root, geo.Point{})
	}

	for _, gid := range d.PostOrderGroups() {
		s := newScope(d, cfg, adj, res, sizes, gid)
		for _, c := range s.FixedGroups {
			res.setGroupLocal(c, *d.Group(c).Pos)
		}
		for _, n := range s.FixedNodes {
			res.setNodeLocal(n, *d.Node(n).Pos)
		}
		if len(s.FreeNodes) > 0 || len(s.FreeGroups) > 0 {
			if ctx.Err() == nil {
				placer(ctx, s)
			}
			s.placeLeftovers(ctx)
		}

		res.GroupLocalBounds[gid] = ComputeGroupLocalBounds(d, gid, cfg, res)
		res.boundsDone[gid] = true
	}

	for _, gid := range d.PreOrderGroups() {
		g := d.Group(gid)
		var world geo.Point
		if gid != d.Root {
			if g.Parent == nil {
				panic(fmt.Sprintf("trigraph: non-root group %d has no parent", gid))
			}
			world = res.GroupWorldPos[*g.Parent].Add(res.GroupLocalPos[gid])
		}
		res.GroupWorldPos[gid] = world
		res.GroupWorldBounds[gid] = res.GroupLocalBounds[gid].Translate(world)

		for _, n := range g.ChildNodes {
			p := world.Add(res.NodeLocalPos[n])
			res.NodeWorldPos[n] = p
			res.NodeWorldBounds[n] = geo.NewRect(p, sizes[n])
		}
	}

	log.Debug(ctx, "accumulated layout",
		slog.F("groups", len(d.Groups)),
		slog.F("nodes", len(d.Nodes)),
		slog.F("bounds", res.GroupWorldBounds[d.Root].String()),
	)
	return res
}

// Scope is the view a Placer gets of one container. Child lists are sorted
// by declaration order.
type Scope struct {
	Diagram   *Diagram
	Config    *Config
	Adjacency *Adjacency
	Group     GroupID

	FixedNodes  []NodeID
	FreeNodes   []NodeID
	FixedGroups []GroupID
	FreeGroups  []GroupID

	res   *Result
	sizes []geo.Size
	// owner maps every node below the container to the direct child
	// group holding it.
	owner map[NodeID]GroupID
}

func newScope(d *Diagram, cfg *Config, adj *Adjacency, res *Result, sizes []geo.Size, gid GroupID) *Scope {
	g := d.Group(gid)
	s := &Scope{
		Diagram:   d,
		Config:    cfg,
		Adjacency: adj,
		Group:     gid,
		res:       res,
		sizes:     sizes,
	}
	for _, n := range g.ChildNodes {
		if d.Node(n).IsFixed() {
			s.FixedNodes = append(s.FixedNodes, n)
		} else {
			s.FreeNodes = append(s.FreeNodes, n)
		}
	}
	for _, c := range g.ChildGroups {
		if d.Group(c).IsFixed() {
			s.FixedGroups = append(s.FixedGroups, c)
		} else {
			s.FreeGroups = append(s.FreeGroups, c)
		}
	}
	d.SortNodes(s.FixedNodes)
	d.SortNodes(s.FreeNodes)
	d.SortGroups(s.FixedGroups)
	d.SortGroups(s.FreeGroups)
	return s
}

// Nodes returns every direct child node in declaration order.
func (s *Scope) Nodes() []NodeID {
	out := make([]NodeID, 0, len(s.FixedNodes)+len(s.FreeNodes))
	out = append(out, s.FixedNodes...)
	out = append(out, s.FreeNodes...)
	s.Diagram.SortNodes(out)
	return out
}

func (s *Scope) Groups() []GroupID {
	out := make([]GroupID, 0, len(s.FixedGroups)+len(s.FreeGroups))
	out = append(out, s.FixedGroups...)
	out = append(out, s.FreeGroups...)
	s.Diagram.SortGroups(out)
	return out
}

// Contains reports whether n is a direct child node of the container.
func (s *Scope) Contains(n NodeID) bool {
	return s.Diagram.HasNode(n) && s.Diagram.Node(n).Group == s.Group
}

// ChildGroupOf returns the direct child group that holds n at any depth.
func (s *Scope) ChildGroupOf(n NodeID) (GroupID, bool) {
	if s.owner == nil {
		s.owner = make(map[NodeID]GroupID)
		for _, c := range s.Diagram.Group(s.Group).ChildGroups {
			stack := []GroupID{c}
			for len(stack) > 0 {
				gid := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				g := s.Diagram.Group(gid)
				for _, cn := range g.ChildNodes {
					s.owner[cn] = c
				}
				stack = append(stack, g.ChildGroups...)
			}
		}
	}
	c, ok := s.owner[n]
	return c, ok
}

func (s *Scope) NodeSize(n NodeID) geo.Size {
	if int(n) < 0 || int(n) >= len(s.sizes) {
		return DefaultNodeSize
	}
	return s.sizes[n]
}

// NodeRect is the node's box relative to the container.
func (s *Scope) NodeRect(n NodeID) geo.Rect {
	return geo.NewRect(s.res.NodeLocalPos[n], s.NodeSize(n))
}

// GroupBounds is a child group's box relative to its own position.
func (s *Scope) GroupBounds(g GroupID) geo.Rect {
	return s.res.localBounds(g, s.Config)
}

// GroupRect is a child group's box relative to the container.
func (s *Scope) GroupRect(g GroupID) geo.Rect {
	return s.GroupBounds(g).Translate(s.res.GroupLocalPos[g])
}

func (s *Scope) NodePlaced(n NodeID) bool {
	return s.res.nodePlaced[n]
}

func (s *Scope) GroupPlaced(g GroupID) bool {
	return s.res.groupPlaced[g]
}

// PlaceNode sets the local position of a free child node.
func (s *Scope) PlaceNode(n NodeID, p geo.Point) {
	node := s.Diagram.Node(n)
	if node.Group != s.Group {
		panic(fmt.Sprintf("trigraph: node %d is not a child of group %d", n, s.Group))
	}
	if node.IsFixed() {
		panic(fmt.Sprintf("trigraph: cannot move fixed node %d", n))
	}
	s.res.setNodeLocal(n, p)
}

// PlaceGroup moves a free child group so its box's top left corner lands
// on p.
func (s *Scope) PlaceGroup(g GroupID, p geo.Point) {
	grp := s.Diagram.Group(g)
	if grp.Parent == nil || *grp.Parent != s.Group {
		panic(fmt.Sprintf("trigraph: group %d is not a child of group %d", g, s.Group))
	}
	if grp.IsFixed() {
		panic(fmt.Sprintf("trigraph: cannot move fixed group %d", g))
	}
	s.res.setGroupLocal(g, p.Minus(s.GroupBounds(g).Pos()))
}

// Origin is where packing starts inside the container.
func (s *Scope) Origin() geo.Point {
	return geo.NewPoint(s.Config.GroupPadding, s.Config.GroupPadding)
}

// NewGrid returns a spatial grid seeded with the fixed children. Stored
// rects are expanded by the gap so probing a bare rect keeps siblings at
// least a gap apart.
func (s *Scope) NewGrid() *spatial.Grid {
	cfg := s.Config
	g := spatial.New(go2.Max(cfg.ClassSize.W, cfg.ClassSize.H))
	for _, n := range s.FixedNodes {
		s.Reserve(g, s.NodeRect(n))
	}
	for _, c := range s.FixedGroups {
		s.Reserve(g, s.GroupRect(c))
	}
	return g
}

// Reserve inserts r expanded by the gap.
func (s *Scope) Reserve(g *spatial.Grid, r geo.Rect) {
	g.Insert(r.Expand(s.Config.Gap))
}

// Content returns the union of every placed child box.
func (s *Scope) Content() (geo.Rect, bool) {
	var bb geo.Rect
	found := false
	add := func(r geo.Rect) {
		if !found {
			bb, found = r, true
			return
		}
		bb = bb.Union(r)
	}
	for _, n := range s.Nodes() {
		if s.NodePlaced(n) {
			add(s.NodeRect(n))
		}
	}
	for _, c := range s.Groups() {
		if s.GroupPlaced(c) {
			add(s.GroupRect(c))
		}
	}
	return bb, found
}

// Settle makes sure the given free nodes overlap neither each other nor
// the fixed children. Nodes are visited in the order given and shifted
// right until free.
func (s *Scope) Settle(nodes []NodeID) {
	g := s.NewGrid()
	for _, n := range nodes {
		r := g.FindFree(s.NodeRect(n), 0, 0)
		s.PlaceNode(n, r.Pos())
		s.Reserve(g, r)
	}
}

// PackGroups places free child groups in rows below the placed content,
// wrapping at the configured row width. grid must already hold everything
// placed in the container.
func (s *Scope) PackGroups(grid *spatial.Grid, groups []GroupID) {
	if len(groups) == 0 {
		return
	}
	cfg := s.Config
	origin := s.Origin()
	start := origin
	if bb, ok := s.Content(); ok {
		start.Y = go2.Max(origin.Y, bb.Bottom()+cfg.Gap)
	}

	x, y := start.X, start.Y
	rowH := 0
	for _, c := range groups {
		b := s.GroupBounds(c)
		if x+b.W > cfg.MaxRowW && x > start.X {
			x = start.X
			y += rowH + cfg.Gap
			rowH = 0
		}
		r := grid.FindFree(geo.NewRect(geo.NewPoint(x, y), b.Size()), start.X, cfg.MaxRowW)
		s.PlaceGroup(c, r.Pos())
		s.Reserve(grid, r)
		x = r.Right() + cfg.Gap
		y = r.Y
		rowH = go2.Max(rowH, r.H)
	}
}

// PackFreeGroups packs the free child groups below every child placed so
// far.
func (s *Scope) PackFreeGroups() {
	if len(s.FreeGroups) == 0 {
		return
	}
	grid := s.NewGrid()
	for _, n := range s.FreeNodes {
		if s.NodePlaced(n) {
			s.Reserve(grid, s.NodeRect(n))
		}
	}
	s.PackGroups(grid, s.FreeGroups)
}

// placeLeftovers packs any free child the placer did not place. Placers
// are expected to place everything, this keeps the result total.
func (s *Scope) placeLeftovers(ctx context.Context) {
	var nodes []NodeID
	for _, n := range s.FreeNodes {
		if !s.NodePlaced(n) {
			nodes = append(nodes, n)
		}
	}
	var groups []GroupID
	for _, c := range s.FreeGroups {
		if !s.GroupPlaced(c) {
			groups = append(groups, c)
		}
	}
	if len(nodes) == 0 && len(groups) == 0 {
		return
	}
	if ctx.Err() == nil {
		log.Warn(ctx, "placer left children unplaced",
			slog.F("group", s.Group),
			slog.F("nodes", len(nodes)),
			slog.F("groups", len(groups)),
		)
	}

	grid := s.NewGrid()
	for _, n := range s.FreeNodes {
		if s.NodePlaced(n) {
			s.Reserve(grid, s.NodeRect(n))
		}
	}
	for _, c := range s.FreeGroups {
		if s.GroupPlaced(c) {
			s.Reserve(grid, s.GroupRect(c))
		}
	}
	origin := s.Origin()
	for _, n := range nodes {
		r := grid.FindFree(geo.NewRect(origin, s.NodeSize(n)), origin.X, s.Config.MaxRowW)
		s.PlaceNode(n, r.Pos())
		s.Reserve(grid, r)
	}
	s.PackGroups(grid, groups)
}
