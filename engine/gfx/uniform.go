package gfx

import "github.com/google/uuid"

type uniformResource struct {
	id      ResourceID
	layout  UniformLayout
	traceID uuid.UUID
}

// UniformBuffer is a persistent device-local uniform block handle.
type UniformBuffer struct {
	res *uniformResource
}

func (u *UniformBuffer) ID() ResourceID {
	return u.res.id
}

func (u *UniformBuffer) Layout() UniformLayout {
	return u.res.layout
}

// ImmUniform is a byte range in the current frame's uniform scratch buffer.
// Valid only until the frame is submitted.
type ImmUniform struct {
	Start uint32
	Len   uint32
}
