package geo

import "fmt"

// Point is an integer position. Layout coordinates are always whole pixels.
type Point struct {
	X int `json:"x" msgpack:"x" toml:"x"`
	Y int `json:"y" msgpack:"y" toml:"y"`
}

func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Minus(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) ToVector() Vector {
	return Vector{X: float64(p.X), Y: float64(p.Y)}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

type Size struct {
	W int `json:"w" msgpack:"w" toml:"w"`
	H int `json:"h" msgpack:"h" toml:"h"`
}

func NewSize(w, h int) Size {
	return Size{W: w, H: h}
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}
