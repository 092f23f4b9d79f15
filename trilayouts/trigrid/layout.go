// Package trigrid places children in a plain grid, ignoring edges. It is the
// deterministic fallback and the baseline the other algorithms are compared
// against.
package trigrid

import (
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/trident/lib/geo"
	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/trigraph"
)

// Place fills free nodes left to right, top to bottom at a fixed pitch.
// Cells that would overlap a fixed child are skipped. Free groups follow on
// the next row.
func Place(ctx context.Context, s *trigraph.Scope) {
	cfg := s.Config
	grid := s.NewGrid()
	origin := s.Origin()

	pitch := cellSize(s)
	cols := go2.Max(1, (cfg.MaxRowW-2*cfg.GroupPadding)/pitch.W)

	col, row := 0, 0
	skipped := 0
	for _, n := range s.FreeNodes {
		for {
			p := geo.NewPoint(origin.X+col*pitch.W, origin.Y+row*pitch.H)
			r := geo.NewRect(p, s.NodeSize(n))
			col++
			if col >= cols {
				col = 0
				row++
			}
			if grid.OverlapsAny(r) {
				skipped++
				continue
			}
			s.PlaceNode(n, p)
			s.Reserve(grid, r)
			break
		}
	}

	log.Debug(ctx, "grid placed nodes",
		slog.F("group", s.Group),
		slog.F("nodes", len(s.FreeNodes)),
		slog.F("cols", cols),
		slog.F("pitch", pitch.String()),
		slog.F("skipped_cells", skipped),
	)

	s.PackGroups(grid, s.FreeGroups)
}

// cellSize is the largest free node plus the gap, so any free node fits in
// any cell.
func cellSize(s *trigraph.Scope) geo.Size {
	var largest geo.Size
	for _, n := range s.FreeNodes {
		sz := s.NodeSize(n)
		largest.W = go2.Max(largest.W, sz.W)
		largest.H = go2.Max(largest.H, sz.H)
	}
	return geo.NewSize(
		go2.Max(1, largest.W+s.Config.Gap),
		go2.Max(1, largest.H+s.Config.Gap),
	)
}
