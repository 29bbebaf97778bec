package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMat4IdentityMul(t *testing.T) {
	id := NewMat4Identity()
	m := NewMat4Translation(NewVec3(3, 4, 5))
	assert.Equal(t, m, id.Mul(m))
	assert.Equal(t, m, m.Mul(id))
}

func TestMat4TranslationCompose(t *testing.T) {
	a := NewMat4Translation(NewVec3(1, 2, 3))
	b := NewMat4Translation(NewVec3(10, 20, 30))
	c := a.Mul(b)
	assert.Equal(t, float32(11), c.Data[12])
	assert.Equal(t, float32(22), c.Data[13])
	assert.Equal(t, float32(33), c.Data[14])
}

func TestMat4Orthographic(t *testing.T) {
	m := NewMat4Orthographic(0, 800, 600, 0, 0, 1)

	// center of the viewport maps to NDC origin
	x := m.Data[0]*400 + m.Data[12]
	y := m.Data[5]*300 + m.Data[13]
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)

	// corners map to the NDC extremes
	assert.InDelta(t, -1, m.Data[12], 1e-5)
	assert.InDelta(t, 1, m.Data[0]*800+m.Data[12], 1e-5)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(3, 5, 10))
	assert.Equal(t, 10, Clamp(12, 5, 10))
	assert.Equal(t, 7, Clamp(7, 5, 10))
	assert.Equal(t, 1.5, Clamp(1.5, 1.0, 2.0))
}

func TestAngleConversion(t *testing.T) {
	assert.InDelta(t, 180, RadToDeg(DegToRad(180)), 1e-4)
	assert.InDelta(t, 3.14159265, DegToRad(180), 1e-5)
}
