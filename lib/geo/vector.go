package geo

import (
	"math"
)

// Vector is a 2D float displacement. Force based refinement accumulates in
// floats and truncates back to integer positions once per step.
type Vector struct {
	X float64
	Y float64
}

func NewVector(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// NewVectorFromProperties returns a vector of the given length pointing at
// angle, measured clockwise from the positive X axis in screen coordinates.
func NewVectorFromProperties(length float64, angleInRadians float64) Vector {
	return Vector{
		X: length * math.Cos(angleInRadians),
		Y: length * math.Sin(angleInRadians),
	}
}

func (a Vector) Add(b Vector) Vector {
	return Vector{X: a.X + b.X, Y: a.Y + b.Y}
}

func (a Vector) Minus(b Vector) Vector {
	return Vector{X: a.X - b.X, Y: a.Y - b.Y}
}

func (a Vector) Multiply(v float64) Vector {
	return Vector{X: a.X * v, Y: a.Y * v}
}

func (a Vector) Dot(b Vector) float64 {
	return a.X*b.X + a.Y*b.Y
}

func (a Vector) Length() float64 {
	return EuclideanDistance(0, 0, a.X, a.Y)
}

// Unit returns the zero vector for a zero length input.
func (a Vector) Unit() Vector {
	l := a.Length()
	if l == 0 {
		return Vector{}
	}
	return a.Multiply(1 / l)
}

// ClosestOnSegment returns the point of segment ab closest to p.
// A degenerate segment returns a.
func ClosestOnSegment(p, a, b Vector) Vector {
	ab := b.Minus(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return a
	}
	t := Clamp(p.Minus(a).Dot(ab)/lenSq, 0, 1)
	return a.Add(ab.Multiply(t))
}
