// Package spatial implements a uniform hash grid over rectangles.
//
// Inserted rectangles are bucketed into every cell they touch so overlap
// queries only look at nearby candidates. Candidates are always confirmed
// with an exact overlap test.
package spatial

import (
	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/trident/lib/geo"
)

type cell struct {
	x int
	y int
}

type Grid struct {
	cellSize int
	cells    map[cell][]geo.Rect
	n        int
}

// New returns an empty grid. cellSize should be about the largest expected
// item dimension and is clamped to at least 1.
func New(cellSize int) *Grid {
	return &Grid{
		cellSize: go2.Max(cellSize, 1),
		cells:    make(map[cell][]geo.Rect),
	}
}

func (g *Grid) CellSize() int {
	return g.cellSize
}

// Len returns the number of inserted rectangles.
func (g *Grid) Len() int {
	return g.n
}

// cellRange returns the inclusive cell bounds r spans. The right and bottom
// edges are exclusive so a rect ending exactly on a cell boundary does not
// spill into the next cell.
func (g *Grid) cellRange(r geo.Rect) (minX, minY, maxX, maxY int) {
	minX = geo.FloorDiv(r.X, g.cellSize)
	minY = geo.FloorDiv(r.Y, g.cellSize)
	maxX = geo.FloorDiv(r.Right()-1, g.cellSize)
	maxY = geo.FloorDiv(r.Bottom()-1, g.cellSize)
	return minX, minY, maxX, maxY
}

func (g *Grid) Insert(r geo.Rect) {
	minX, minY, maxX, maxY := g.cellRange(r)
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			c := cell{cx, cy}
			g.cells[c] = append(g.cells[c], r)
		}
	}
	g.n++
}

// Query returns every inserted rect sharing a cell with r, de-duplicated by
// exact coordinates. The result may contain rects that do not overlap r.
func (g *Grid) Query(r geo.Rect) []geo.Rect {
	var out []geo.Rect
	seen := make(map[geo.Rect]struct{})
	minX, minY, maxX, maxY := g.cellRange(r)
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			for _, cand := range g.cells[cell{cx, cy}] {
				if _, ok := seen[cand]; ok {
					continue
				}
				seen[cand] = struct{}{}
				out = append(out, cand)
			}
		}
	}
	return out
}

func (g *Grid) OverlapsAny(r geo.Rect) bool {
	_, ok := g.Blocker(r)
	return ok
}

// Blocker returns the first inserted rect that overlaps r.
func (g *Grid) Blocker(r geo.Rect) (geo.Rect, bool) {
	for _, cand := range g.Query(r) {
		if r.Overlaps(cand) {
			return cand, true
		}
	}
	return geo.Rect{}, false
}

// FindFree moves r until it overlaps nothing in the grid. Each blocked
// candidate is shifted right past its blocker. Once the candidate would
// extend beyond maxRight it wraps back to rowStart below the blocker.
// A maxRight <= 0 disables wrapping.
//
// Every shift strictly increases X within a row and every wrap strictly
// increases Y, so the probe terminates for any finite grid.
func (g *Grid) FindFree(r geo.Rect, rowStart, maxRight int) geo.Rect {
	for {
		b, ok := g.Blocker(r)
		if !ok {
			return r
		}
		next := r
		next.X = b.Right()
		if maxRight > 0 && next.Right() > maxRight {
			next.X = rowStart
			next.Y = b.Bottom()
		}
		r = next
	}
}
