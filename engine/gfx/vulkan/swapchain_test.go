package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireDisposition(t *testing.T) {
	ok, dirty, err := acquireDisposition(vk.Success)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, dirty)

	ok, dirty, err = acquireDisposition(vk.Suboptimal)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, dirty)

	// out of date is recoverable: skip the screen, rebuild next frame
	ok, dirty, err = acquireDisposition(vk.ErrorOutOfDate)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, dirty)

	// a lost surface or device cannot be recovered by a rebuild
	_, _, err = acquireDisposition(vk.ErrorSurfaceLost)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VK_ERROR_SURFACE_LOST_KHR")

	_, _, err = acquireDisposition(vk.ErrorDeviceLost)
	assert.Error(t, err)
}
