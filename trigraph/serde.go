package trigraph

import (
	"encoding/json"
	"math"
	"sort"

	"oss.terrastruct.com/util-go/go2"
	"oss.terrastruct.com/util-go/xdefer"
)

// ParseDiagram decodes a JSON diagram. Arenas are re-indexed by id so the
// textual order of the input arrays never matters, then the result is
// validated.
func ParseDiagram(b []byte) (_ *Diagram, err error) {
	defer xdefer.Errorf(&err, "failed to parse diagram")

	var d Diagram
	err = json.Unmarshal(b, &d)
	if err != nil {
		return nil, err
	}
	d.reindex()
	err = d.Validate()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Diagram) reindex() {
	// Null entries sort last and are rejected by Validate.
	sort.SliceStable(d.Groups, func(i, j int) bool {
		return sortKey(d.Groups[i] == nil, func() int { return int(d.Groups[i].ID) }) <
			sortKey(d.Groups[j] == nil, func() int { return int(d.Groups[j].ID) })
	})
	sort.SliceStable(d.Nodes, func(i, j int) bool {
		return sortKey(d.Nodes[i] == nil, func() int { return int(d.Nodes[i].ID) }) <
			sortKey(d.Nodes[j] == nil, func() int { return int(d.Nodes[j].ID) })
	})
	sort.SliceStable(d.Edges, func(i, j int) bool {
		return sortKey(d.Edges[i] == nil, func() int { return int(d.Edges[i].ID) }) <
			sortKey(d.Edges[j] == nil, func() int { return int(d.Edges[j].ID) })
	})

	next := 0
	for _, g := range d.Groups {
		if g != nil {
			next = go2.Max(next, g.Order+1)
		}
	}
	for _, n := range d.Nodes {
		if n != nil {
			next = go2.Max(next, n.Order+1)
		}
	}
	for _, e := range d.Edges {
		if e != nil {
			next = go2.Max(next, e.Order+1)
		}
	}
	d.nextOrder = next
}

func sortKey(isNil bool, id func() int) int {
	if isNil {
		return math.MaxInt
	}
	return id()
}

// Marshal encodes d as indented JSON.
func (d *Diagram) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
