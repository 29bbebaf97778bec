package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"

	"github.com/krill-engine/krill/engine/gfx"
)

func TestAlignDeviceSize(t *testing.T) {
	assert.Equal(t, vk.DeviceSize(0), alignDeviceSize(0, 64))
	assert.Equal(t, vk.DeviceSize(64), alignDeviceSize(1, 64))
	assert.Equal(t, vk.DeviceSize(64), alignDeviceSize(64, 64))
	assert.Equal(t, vk.DeviceSize(128), alignDeviceSize(65, 64))
}

func TestUploadPlanStageAlignment(t *testing.T) {
	var plan uploadPlan

	off := plan.stage([]byte{1, 2, 3})
	assert.Equal(t, vk.DeviceSize(0), off)

	off = plan.stage([]byte{4, 5})
	assert.Equal(t, vk.DeviceSize(STAGING_BUFFER_ALIGN), off)
	assert.Equal(t, int(STAGING_BUFFER_ALIGN)+2, len(plan.bytes))

	// padding bytes are zeroed, payloads land at their offsets
	assert.Equal(t, byte(1), plan.bytes[0])
	assert.Equal(t, byte(0), plan.bytes[3])
	assert.Equal(t, byte(4), plan.bytes[STAGING_BUFFER_ALIGN])
}

func TestFreeResourceDefersToOwningFrame(t *testing.T) {
	r := &Renderer{
		uniforms: map[gfx.ResourceID]*VulkanBuffer{7: {}},
		frames:   [2]*FrameResourceSet{{}, {}},
	}

	r.freeResource(r.frames[0], gfx.FreeUpdate{ID: 7, Category: gfx.FreeUniform})

	// the buffer leaves the live map and parks on this parity's queue
	assert.NotContains(t, r.uniforms, gfx.ResourceID(7))
	assert.False(t, r.frames[0].DestroyQueue.Empty())
	assert.True(t, r.frames[1].DestroyQueue.Empty())

	// draining the other parity must not touch it
	r.frames[1].DestroyQueue.Drain(&VulkanContext{})
	assert.False(t, r.frames[0].DestroyQueue.Empty())

	r.frames[0].DestroyQueue.Drain(&VulkanContext{})
	assert.True(t, r.frames[0].DestroyQueue.Empty())
}

func TestFreeResourceUnknownIDIsNoOp(t *testing.T) {
	r := &Renderer{
		uniforms: map[gfx.ResourceID]*VulkanBuffer{},
		frames:   [2]*FrameResourceSet{{}, {}},
	}
	r.freeResource(r.frames[0], gfx.FreeUpdate{ID: 99, Category: gfx.FreeUniform})
	assert.True(t, r.frames[0].DestroyQueue.Empty())
}
