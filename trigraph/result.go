package trigraph

import (
	"oss.terrastruct.com/trident/lib/geo"
)

// Result holds the geometry of one layout call, indexed by group and node
// id. Local positions are relative to the parent group, world positions are
// absolute. Group bounds include padding and are expressed relative to the
// group's own position (local) or absolutely (world).
type Result struct {
	GroupLocalPos    []geo.Point `json:"group_local_pos"`
	GroupWorldPos    []geo.Point `json:"group_world_pos"`
	GroupLocalBounds []geo.Rect  `json:"group_local_bounds"`
	GroupWorldBounds []geo.Rect  `json:"group_world_bounds"`

	NodeLocalPos    []geo.Point `json:"node_local_pos"`
	NodeWorldPos    []geo.Point `json:"node_world_pos"`
	NodeWorldBounds []geo.Rect  `json:"node_world_bounds"`

	groupPlaced []bool
	nodePlaced  []bool
	boundsDone  []bool
}

func NewResult(d *Diagram) *Result {
	ng, nn := len(d.Groups), len(d.Nodes)
	return &Result{
		GroupLocalPos:    make([]geo.Point, ng),
		GroupWorldPos:    make([]geo.Point, ng),
		GroupLocalBounds: make([]geo.Rect, ng),
		GroupWorldBounds: make([]geo.Rect, ng),

		NodeLocalPos:    make([]geo.Point, nn),
		NodeWorldPos:    make([]geo.Point, nn),
		NodeWorldBounds: make([]geo.Rect, nn),

		groupPlaced: make([]bool, ng),
		nodePlaced:  make([]bool, nn),
		boundsDone:  make([]bool, ng),
	}
}

func (r *Result) setGroupLocal(g GroupID, p geo.Point) {
	r.GroupLocalPos[g] = p
	r.groupPlaced[g] = true
}

func (r *Result) setNodeLocal(n NodeID, p geo.Point) {
	r.NodeLocalPos[n] = p
	r.nodePlaced[n] = true
}

// localBounds falls back to the minimum group size at the origin for
// groups whose bounds are not computed yet.
func (r *Result) localBounds(g GroupID, cfg *Config) geo.Rect {
	if int(g) < len(r.boundsDone) && r.boundsDone[g] {
		return r.GroupLocalBounds[g]
	}
	return geo.NewRect(geo.Point{}, cfg.MinGroupSize)
}
