package sim

import "math"

// Vec2 is a 2D vector in world units. All methods except Clamp are pure.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(w Vec2) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Len returns the Euclidean length.
func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Man returns the Manhattan length, used for cheap click and repel tests.
func (v Vec2) Man() float64 {
	return math.Abs(v.X) + math.Abs(v.Y)
}

// Perp returns v rotated 90° counter-clockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Clamp rescales v in place so that its length does not exceed max.
// A zero vector is left alone.
func (v *Vec2) Clamp(max float64) {
	l := v.Len()
	if l == 0 || l <= max {
		return
	}
	if max < 0 {
		max = 0
	}
	v.X = v.X / l * max
	v.Y = v.Y / l * max
}

// Clamped is the value form of Clamp.
func (v Vec2) Clamped(max float64) Vec2 {
	v.Clamp(max)
	return v
}

// Normalise returns the unit vector along v, or v itself when it has no length.
func (v Vec2) Normalise() Vec2 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// RotAlign rotates v by the angle that takes (1,0) onto other.
// A zero-length other is the identity rotation.
func (v Vec2) RotAlign(other Vec2) Vec2 {
	den := other.Len()
	if den == 0 {
		return v
	}
	cos := other.X / den
	sin := other.Y / den
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}
