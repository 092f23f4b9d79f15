package geo

import (
	"fmt"

	"oss.terrastruct.com/util-go/go2"
)

// Rect is an axis aligned box anchored at its top left corner.
type Rect struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
	W int `json:"w" msgpack:"w"`
	H int `json:"h" msgpack:"h"`
}

func NewRect(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, W: s.W, H: s.H}
}

func (r Rect) Right() int {
	return r.X + r.W
}

func (r Rect) Bottom() int {
	return r.Y + r.H
}

func (r Rect) Pos() Point {
	return Point{X: r.X, Y: r.Y}
}

func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// Center rounds toward the top left corner.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Overlaps reports whether the interiors of r and o intersect.
// Rects that only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() &&
		r.Right() > o.X &&
		r.Y < o.Bottom() &&
		r.Bottom() > o.Y
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X &&
		o.Y >= r.Y &&
		o.Right() <= r.Right() &&
		o.Bottom() <= r.Bottom()
}

func (r Rect) Union(o Rect) Rect {
	x0 := go2.Min(r.X, o.X)
	y0 := go2.Min(r.Y, o.Y)
	x1 := go2.Max(r.Right(), o.Right())
	y1 := go2.Max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Expand grows r by d on every side.
func (r Rect) Expand(d int) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

func (r Rect) Translate(p Point) Rect {
	return Rect{X: r.X + p.X, Y: r.Y + p.Y, W: r.W, H: r.H}
}

func (r Rect) String() string {
	return fmt.Sprintf("{X: %d, Y: %d, W: %d, H: %d}", r.X, r.Y, r.W, r.H)
}
