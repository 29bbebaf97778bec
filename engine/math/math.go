package math

import (
	"math"

	"golang.org/x/exp/constraints"
)

type Vec2 struct {
	X, Y float32
}

type Vec3 struct {
	X, Y, Z float32
}

type Vec4 struct {
	X, Y, Z, W float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// Mat4 is a column-major 4x4 matrix, matching GLSL uniform layout.
type Mat4 struct {
	Data [16]float32
}

func NewMat4Identity() Mat4 {
	m := Mat4{}
	m.Data[0] = 1
	m.Data[5] = 1
	m.Data[10] = 1
	m.Data[15] = 1
	return m
}

func NewMat4Translation(position Vec3) Mat4 {
	m := NewMat4Identity()
	m.Data[12] = position.X
	m.Data[13] = position.Y
	m.Data[14] = position.Z
	return m
}

func NewMat4Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	m := NewMat4Identity()
	m.Data[0] = 2.0 / (right - left)
	m.Data[5] = 2.0 / (top - bottom)
	m.Data[10] = 1.0 / (far - near)
	m.Data[12] = -(right + left) / (right - left)
	m.Data[13] = -(top + bottom) / (top - bottom)
	m.Data[14] = -near / (far - near)
	return m
}

func (m Mat4) Mul(o Mat4) Mat4 {
	out := Mat4{}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m.Data[k*4+row] * o.Data[col*4+k]
			}
			out.Data[col*4+row] = sum
		}
	}
	return out
}

func Clamp[T constraints.Ordered](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func RadToDeg(rad float32) float32 {
	return rad * 180.0 / math.Pi
}

func DegToRad(deg float32) float32 {
	return deg * math.Pi / 180.0
}
